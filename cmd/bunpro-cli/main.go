package main

import (
	"bunpro-assist/cmd/bunpro-cli/commands"
	"bunpro-assist/lib/serviceutil"
	"bunpro-assist/lib/telemetry"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "bunpro-cli")
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
