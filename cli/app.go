// Package cli wires the workspace resolver into a command-line application.
package cli

import (
	"github.com/urfave/cli/v2"

	"github.com/mosaic-build/mosaic/pkg/log"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// NewApp creates the mosaic CLI application.
func NewApp(logger log.Logger) *cli.App {
	return &cli.App{
		Name:    "mosaic",
		Usage:   "resolve a workspace of mosaic.toml projects into one consistent view",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "set the log level (trace, debug, info, warn, error)",
				EnvVars: []string{"MOSAIC_LOG_LEVEL"},
			},
		},
		Before: func(ctx *cli.Context) error {
			if level := ctx.String("log-level"); level != "" {
				return logger.SetLevel(level)
			}

			return nil
		},
		Commands: []*cli.Command{
			NewFindCommand(logger),
			NewSettingsCommand(logger),
		},
	}
}
