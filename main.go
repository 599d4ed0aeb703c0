package main

import (
	"context"
	"os"

	"github.com/mosaic-build/mosaic/cli"
	"github.com/mosaic-build/mosaic/internal/errors"
	"github.com/mosaic-build/mosaic/pkg/log"
)

// The main entrypoint for mosaic.
func main() {
	logger := log.Default()

	// Parse MOSAIC_LOG_LEVEL immediately so even startup failures log at the
	// requested level.
	if level := os.Getenv("MOSAIC_LOG_LEVEL"); level != "" {
		if err := logger.SetLevel(level); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
	}

	defer errors.Recover(exitWithError(logger))

	app := cli.NewApp(logger)

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		exitWithError(logger)(err)
	}
}

// exitWithError displays the error in the console and exits with a non-zero
// exit code, keeping the stack trace at trace level.
func exitWithError(logger log.Logger) func(error) {
	return func(err error) {
		logger.Error(err.Error())

		if errStack := errors.ErrorStack(err); errStack != "" {
			logger.Trace(errStack)
		}

		os.Exit(1)
	}
}
