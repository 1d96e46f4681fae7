package main

import (
	"unidocs-backend/cmd/docgen-cli/commands"
	"unidocs-backend/lib/osutil"
	"unidocs-backend/lib/telemetry"
)

func main() {
	ctx := osutil.SignalContext()
	telemetry.InitSlog(false)
	tel, err := telemetry.SetupFromEnv(ctx, "docgen-cli")
	if err == nil {
		defer tel.Shutdown(ctx)
		telemetry.InstrumentPerfStats(ctx)
	}
	commands.ExecuteContext(ctx)
}
