package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	vcsurl "github.com/gitsight/go-vcsurl"
	"github.com/gobwas/glob"
	urlhelper "github.com/hashicorp/go-getter/helper/url"
	version "github.com/hashicorp/go-version"
	"github.com/mitchellh/mapstructure"

	"github.com/mosaic-build/mosaic/internal/errors"
	"github.com/mosaic-build/mosaic/util"
)

// rawDocument mirrors the TOML structure of a manifest before validation.
type rawDocument struct {
	Project   *rawProject          `toml:"project"`
	Workspace *rawWorkspace        `toml:"workspace"`
	Sources   map[string]rawSource `toml:"sources"`
	Tool      map[string]any       `toml:"tool"`
}

type rawProject struct {
	Name         string            `toml:"name"`
	Version      string            `toml:"version"`
	Requires     string            `toml:"requires"`
	Dependencies map[string]string `toml:"dependencies"`
}

type rawWorkspace struct {
	Members []string `toml:"members"`
	Exclude []string `toml:"exclude"`
}

type rawSource struct {
	Path   string `toml:"path"`
	Git    string `toml:"git"`
	Rev    string `toml:"rev"`
	Branch string `toml:"branch"`
	Tag    string `toml:"tag"`
	Index  string `toml:"index"`
}

// Parse turns the raw bytes of a manifest file into a typed Document.
// Parsing is pure: sourcePath is recorded for diagnostics and relative path
// resolution, but no filesystem access happens here.
func Parse(data []byte, sourcePath string) (*Document, error) {
	var raw rawDocument

	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, errors.New(MalformedManifestError{Path: sourcePath, Err: err})
	}

	if raw.Project == nil || raw.Project.Name == "" {
		return nil, errors.New(MissingRequiredFieldError{Path: sourcePath, Field: "project.name"})
	}

	doc := &Document{
		Project: Project{
			Name:         raw.Project.Name,
			Version:      raw.Project.Version,
			Requires:     raw.Project.Requires,
			Dependencies: raw.Project.Dependencies,
		},
		sourcePath: sourcePath,
	}

	if doc.Project.Requires != "" {
		if _, err := version.NewConstraint(doc.Project.Requires); err != nil {
			return nil, errors.New(MalformedManifestError{
				Path: sourcePath,
				Err:  fmt.Errorf("invalid requires constraint %q: %w", doc.Project.Requires, err),
			})
		}
	}

	if raw.Workspace != nil {
		decl, err := parseWorkspaceDecl(raw.Workspace, sourcePath)
		if err != nil {
			return nil, err
		}

		doc.Workspace = decl
	}

	if len(raw.Sources) > 0 {
		doc.Sources = make(map[string]Source, len(raw.Sources))

		// Sources are independent of each other, so all invalid entries are
		// reported at once instead of one per parse attempt.
		var errs *errors.MultiError

		for name, rawSrc := range raw.Sources {
			src, err := parseSource(name, rawSrc, sourcePath)
			if err != nil {
				errs = errs.Append(err)
				continue
			}

			doc.Sources[name] = src
		}

		if err := errs.ErrorOrNil(); err != nil {
			return nil, err
		}
	}

	if raw.Tool != nil {
		tool, err := parseTool(raw.Tool, sourcePath)
		if err != nil {
			return nil, err
		}

		doc.Tool = tool
	}

	return doc, nil
}

// parseWorkspaceDecl validates the membership rule. Member patterns are globs
// relative to the root directory: empty or absolute patterns cannot be
// interpreted. Exclude patterns must compile so a bad pattern fails the root
// parse instead of silently matching nothing during discovery.
func parseWorkspaceDecl(raw *rawWorkspace, sourcePath string) (*WorkspaceDecl, error) {
	for _, member := range raw.Members {
		if member == "" {
			return nil, errors.New(InvalidWorkspaceDeclarationError{
				Path:   sourcePath,
				Reason: "empty member pattern",
			})
		}

		if filepath.IsAbs(member) {
			return nil, errors.New(InvalidWorkspaceDeclarationError{
				Path:   sourcePath,
				Reason: fmt.Sprintf("member pattern %q must be relative to the workspace root", member),
			})
		}
	}

	for _, pattern := range raw.Exclude {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return nil, errors.New(InvalidWorkspaceDeclarationError{
				Path:   sourcePath,
				Reason: fmt.Sprintf("exclude pattern %q does not compile: %v", pattern, err),
			})
		}
	}

	return &WorkspaceDecl{
		Members: raw.Members,
		Exclude: raw.Exclude,
	}, nil
}

// parseSource validates that exactly one acquisition method is declared and
// that git and index URLs are well formed. URLs in diagnostics are redacted.
func parseSource(name string, raw rawSource, sourcePath string) (Source, error) {
	src := Source{
		Path:   raw.Path,
		Git:    raw.Git,
		Rev:    raw.Rev,
		Branch: raw.Branch,
		Tag:    raw.Tag,
		Index:  raw.Index,
	}

	declared := 0
	for _, val := range []string{src.Path, src.Git, src.Index} {
		if val != "" {
			declared++
		}
	}

	if declared != 1 {
		return Source{}, errors.New(MalformedManifestError{
			Path: sourcePath,
			Err:  fmt.Errorf("source %q must declare exactly one of path, git, or index", name),
		})
	}

	refs := 0
	for _, val := range []string{src.Rev, src.Branch, src.Tag} {
		if val != "" {
			refs++
		}
	}

	if refs > 0 && src.Git == "" {
		return Source{}, errors.New(MalformedManifestError{
			Path: sourcePath,
			Err:  fmt.Errorf("source %q declares a git reference without a git URL", name),
		})
	}

	if refs > 1 {
		return Source{}, errors.New(MalformedManifestError{
			Path: sourcePath,
			Err:  fmt.Errorf("source %q must declare at most one of rev, branch, or tag", name),
		})
	}

	if src.Git != "" {
		// vcsurl understands the common hosting providers; URLs on hosts it
		// does not recognize only need to be structurally valid.
		if _, err := vcsurl.Parse(src.Git); err != nil {
			if _, urlErr := urlhelper.Parse(src.Git); urlErr != nil {
				return Source{}, errors.New(MalformedManifestError{
					Path: sourcePath,
					Err:  fmt.Errorf("source %q has unparsable git URL %s: %w", name, util.RedactURL(src.Git), urlErr),
				})
			}
		}
	}

	if src.Index != "" {
		if _, err := urlhelper.Parse(src.Index); err != nil {
			return Source{}, errors.New(MalformedManifestError{
				Path: sourcePath,
				Err:  fmt.Errorf("source %q has unparsable index URL %s: %w", name, util.RedactURL(src.Index), err),
			})
		}
	}

	return src, nil
}

// parseTool decodes recognized sections of the tool sub-tree into typed
// settings and preserves everything else in Extra, unvalidated.
func parseTool(tree map[string]any, sourcePath string) (*ToolConfig, error) {
	tool := &ToolConfig{Extra: map[string]any{}}

	for key, val := range tree {
		if key != "build" {
			tool.Extra[key] = val
			continue
		}

		settings := &BuildSettings{}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result: settings,
		})
		if err != nil {
			return nil, errors.WithStackTrace(err)
		}

		if err := decoder.Decode(val); err != nil {
			return nil, errors.New(MalformedManifestError{
				Path: sourcePath,
				Err:  fmt.Errorf("tool.build does not decode: %w", err),
			})
		}

		tool.Build = settings
	}

	return tool, nil
}
