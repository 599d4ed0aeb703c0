package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mosaic-build/mosaic/internal/workspace"
	"github.com/mosaic-build/mosaic/pkg/log"
)

// foundMember is the JSON shape emitted by `mosaic find --json`.
type foundMember struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Root bool   `json:"root,omitempty"`
}

// NewFindCommand returns the `find` command, which discovers the workspace
// containing the given directory and prints its members in canonical order.
func NewFindCommand(logger log.Logger) *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "discover the workspace and list its members",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "emit members as JSON",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "number of concurrent workers for member parsing",
			},
		},
		Action: func(ctx *cli.Context) error {
			startDir := ctx.Args().First()
			if startDir == "" {
				startDir = "."
			}

			discovery := workspace.NewDiscovery(startDir).WithLogger(logger)
			if workers := ctx.Int("workers"); workers > 0 {
				discovery = discovery.WithNumWorkers(workers)
			}

			ws, err := discovery.Discover(ctx.Context)
			if err != nil {
				return err
			}

			for _, warn := range ws.Warnings() {
				fmt.Fprintf(os.Stderr, "warning: %s\n", warn)
			}

			if ctx.Bool("json") {
				return printMembersJSON(ctx, ws)
			}

			for _, member := range ws.Members() {
				fmt.Fprintf(ctx.App.Writer, "%s\t%s\n", member.Name(), member.Path())
			}

			return nil
		},
	}
}

func printMembersJSON(ctx *cli.Context, ws *workspace.Workspace) error {
	members := ws.Members()

	found := make([]foundMember, 0, len(members))
	for _, member := range members {
		found = append(found, foundMember{
			Name: member.Name(),
			Path: member.Path(),
			Root: member.IsRoot(),
		})
	}

	encoder := json.NewEncoder(ctx.App.Writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(found)
}
