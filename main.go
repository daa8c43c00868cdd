// imgbuild main entrypoint
//
// Builds the server container image from a staged copy of the project tree
// and optionally pushes it to the registry. Run it from the project root.
//
// Keep this file simple: logging, signals, execute. Everything else lives in
// internal/.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"imgbuild/internal/cli"
	"imgbuild/internal/config"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	// Interrupts cancel the running engine command; deferred cleanup still runs.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		// A second Ctrl-C gets the default behavior.
		stop()
	}()

	rootCmd := cli.NewRootCommand(config.NewViper())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logrus.Fatalf("Error: %v", err)
	}
}
