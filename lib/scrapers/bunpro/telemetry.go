package bunpro

import (
	"bunpro-assist/lib/restyutil"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/bunpro")

var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
