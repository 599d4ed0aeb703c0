// Package manifest models the mosaic.toml project manifest: parsing the raw
// TOML document into a typed representation that discovery and merging consume
// without re-touching the filesystem.
package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/mosaic-build/mosaic/util"
)

// Filename is the conventional manifest filename per project directory.
const Filename = "mosaic.toml"

// Document is the parsed, typed representation of one project manifest.
// It is created once per file read and folded into a workspace member.
type Document struct {
	// Project is the declared project identity. Always present.
	Project Project

	// Workspace is the workspace declaration, set only on workspace roots.
	Workspace *WorkspaceDecl

	// Sources maps dependency identities to acquisition overrides.
	Sources map[string]Source

	// Tool is the build-tool configuration sub-tree, if declared.
	Tool *ToolConfig

	// sourcePath is the path of the manifest file this document was parsed from.
	sourcePath string
}

// Path returns the path of the manifest file this document was parsed from.
func (doc *Document) Path() string {
	return doc.sourcePath
}

// Dir returns the directory containing the manifest file. Relative path
// settings declared in the manifest resolve against this directory.
func (doc *Document) Dir() string {
	return filepath.Dir(doc.sourcePath)
}

// HasWorkspace reports whether the manifest declares a workspace section.
func (doc *Document) HasWorkspace() bool {
	return doc.Workspace != nil
}

// Project is the declared identity of one project.
type Project struct {
	// Name uniquely identifies the project within a workspace.
	Name string

	// Version is the declared project version, if any.
	Version string

	// Requires is the minimum tool version constraint, if any.
	Requires string

	// Dependencies maps dependency identities to requirement strings. The
	// requirements are opaque to this package beyond counting and iterating;
	// constraint validation happens downstream.
	Dependencies map[string]string
}

// WorkspaceDecl is the membership rule declared by a workspace root:
// include globs and exclude globs, both relative to the root directory.
// Exclude always wins over include for a given candidate path.
type WorkspaceDecl struct {
	Members []string
	Exclude []string
}

// SourceKind identifies the acquisition method of a Source.
type SourceKind int

const (
	// SourceKindNone marks a source with no acquisition method set.
	SourceKindNone SourceKind = iota
	// SourceKindPath acquires the dependency from a local directory.
	SourceKindPath
	// SourceKindGit acquires the dependency from a git reference.
	SourceKindGit
	// SourceKindIndex acquires the dependency from an explicit package index.
	SourceKindIndex
)

// String returns a string representation of the SourceKind.
func (kind SourceKind) String() string {
	switch kind {
	case SourceKindPath:
		return "path"
	case SourceKindGit:
		return "git"
	case SourceKindIndex:
		return "index"
	default:
		return "none"
	}
}

// Source is a per-dependency acquisition override. Exactly one of Path, Git,
// or Index is set; Rev, Branch, and Tag qualify a Git source.
type Source struct {
	Path   string
	Git    string
	Rev    string
	Branch string
	Tag    string
	Index  string
}

// Kind returns the acquisition method of the source.
func (src Source) Kind() SourceKind {
	switch {
	case src.Path != "":
		return SourceKindPath
	case src.Git != "":
		return SourceKindGit
	case src.Index != "":
		return SourceKindIndex
	default:
		return SourceKindNone
	}
}

// String returns a loggable description of the source. Any embedded
// credentials are redacted.
func (src Source) String() string {
	switch src.Kind() {
	case SourceKindPath:
		return fmt.Sprintf("path %s", src.Path)
	case SourceKindGit:
		ref := src.Rev
		if ref == "" {
			ref = src.Branch
		}

		if ref == "" {
			ref = src.Tag
		}

		if ref == "" {
			return fmt.Sprintf("git %s", util.RedactURL(src.Git))
		}

		return fmt.Sprintf("git %s@%s", util.RedactURL(src.Git), ref)
	case SourceKindIndex:
		return fmt.Sprintf("index %s", util.RedactURL(src.Index))
	default:
		return "none"
	}
}

// ToolConfig is the `[tool]` sub-tree of a manifest. Recognized sections are
// decoded into typed settings; everything else is preserved in Extra without
// validation so forward-compatible extensions survive a round trip.
type ToolConfig struct {
	Build *BuildSettings
	Extra map[string]any
}

// BuildSettings are the recognized `[tool.build]` settings.
type BuildSettings struct {
	// OutDir is the build output directory. Relative values resolve against
	// the directory of the manifest that declared them.
	OutDir string `mapstructure:"out-dir"`

	// Jobs caps build parallelism.
	Jobs *int `mapstructure:"jobs"`

	// RequireChecksums requires checksum verification for fetched packages.
	// This setting is workspace-enforced: a member manifest declaring a
	// conflicting value is a configuration conflict, not an override.
	RequireChecksums *bool `mapstructure:"require-checksums"`
}
