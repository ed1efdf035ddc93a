package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/Circlebit/procurement-analysis/cmd/procurement-notices/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	commands.ExecuteContext(ctx)
}
