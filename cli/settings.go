package cli

import (
	"encoding/json"

	"github.com/urfave/cli/v2"

	"github.com/mosaic-build/mosaic/internal/errors"
	"github.com/mosaic-build/mosaic/internal/workspace"
	"github.com/mosaic-build/mosaic/pkg/log"
)

// settingsView is the JSON shape emitted by `mosaic settings`.
type settingsView struct {
	Member  string            `json:"member"`
	OutDir  string            `json:"out_dir"`
	Jobs    int               `json:"jobs"`
	Sources map[string]string `json:"sources,omitempty"`

	RequireChecksums bool `json:"require_checksums"`
}

// NewSettingsCommand returns the `settings` command, which prints the merged
// effective configuration for the workspace or a single member. URLs embedded
// in source overrides are redacted before printing.
func NewSettingsCommand(logger log.Logger) *cli.Command {
	return &cli.Command{
		Name:      "settings",
		Usage:     "print merged effective configuration",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "member",
				Usage: "print settings for the named member instead of the workspace root",
			},
		},
		Action: func(ctx *cli.Context) error {
			startDir := ctx.Args().First()
			if startDir == "" {
				startDir = "."
			}

			ws, err := workspace.NewDiscovery(startDir).WithLogger(logger).Discover(ctx.Context)
			if err != nil {
				return err
			}

			member := ws.Root()

			if name := ctx.String("member"); name != "" {
				found, ok := ws.Find(name)
				if !ok {
					return errors.Errorf("no member named %q in workspace %s", name, ws.Root().Path())
				}

				member = found
			}

			cfg := member.Config()

			view := settingsView{
				Member:           member.Name(),
				OutDir:           cfg.Build.OutDir,
				Jobs:             cfg.Build.Jobs,
				RequireChecksums: cfg.Build.RequireChecksums,
			}

			if len(cfg.Sources) > 0 {
				view.Sources = make(map[string]string, len(cfg.Sources))
				for name, src := range cfg.Sources {
					view.Sources[name] = src.String()
				}
			}

			encoder := json.NewEncoder(ctx.App.Writer)
			encoder.SetIndent("", "  ")

			return errors.WithStackTrace(encoder.Encode(view))
		},
	}
}
