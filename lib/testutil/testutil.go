package testutil

import (
	"testing"

	"bunpro-assist/lib/telemetry"
)

type ServiceParams struct {
	Name string
}

// SetupService prepares the ambient environment (slog + otel) shared
// by all service tests.
func SetupService(t testing.TB, params ServiceParams) func() {
	return telemetry.SetupForTesting(t, "test:"+params.Name)
}
