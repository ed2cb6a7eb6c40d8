package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/datasweeper/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode := 0
	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		exitCode = 1
	}
	stop()
	os.Exit(exitCode)
}
