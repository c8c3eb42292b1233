package main

import (
	"context"

	"camwatch/cmd/camwatch/commands"
	"camwatch/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "camwatch-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
