package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/charmbracelet/fang"

	"github.com/pthm/loctally/internal/cmd"
	"github.com/pthm/loctally/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := fang.Execute(ctx, cmd.RootCmd, fang.WithVersion(version.Short()))
	stop()

	if err != nil {
		os.Exit(1)
	}
}
