package workspace

import (
	"fmt"

	"github.com/mosaic-build/mosaic/internal/manifest"
)

// Member is one workspace participant: its canonical root directory, the
// manifest it was parsed from, and its merged effective configuration.
type Member struct {
	path      string
	doc       *manifest.Document
	config    *EffectiveConfig
	isRoot    bool
	outOfTree bool
}

// Name returns the member's declared project name, unique within a workspace.
func (m *Member) Name() string {
	return m.doc.Project.Name
}

// Path returns the member's canonical root directory.
func (m *Member) Path() string {
	return m.path
}

// Manifest returns the member's parsed manifest document.
func (m *Member) Manifest() *manifest.Document {
	return m.doc
}

// Config returns the member's merged effective configuration.
func (m *Member) Config() *EffectiveConfig {
	return m.config
}

// IsRoot reports whether this member is the workspace root itself.
func (m *Member) IsRoot() bool {
	return m.isRoot
}

// IsOutOfTree reports whether the member was explicitly declared outside the
// workspace root subtree.
func (m *Member) IsOutOfTree() bool {
	return m.outOfTree
}

// EffectiveConfig is the configuration visible to downstream consumers after
// merging: member setting over workspace setting over built-in default. All
// relative paths are resolved; callers never see an unresolved relative path.
type EffectiveConfig struct {
	// Sources maps dependency identities to acquisition overrides, merged per
	// key with member-over-workspace precedence. Path sources are absolute.
	Sources map[string]manifest.Source

	// Build holds the resolved build settings.
	Build BuildConfig
}

// BuildConfig is the fully resolved form of manifest.BuildSettings with
// built-in defaults applied.
type BuildConfig struct {
	// OutDir is the absolute build output directory.
	OutDir string

	// Jobs caps build parallelism.
	Jobs int

	// RequireChecksums requires checksum verification for fetched packages.
	// Workspace-enforced: members cannot override it.
	RequireChecksums bool
}

// Warning is a non-fatal diagnostic produced during discovery, such as a
// skipped unparsable member or an ignored nested workspace declaration.
// Warnings are a side-channel distinct from the fatal error return; callers
// may surface, log, or ignore them.
type Warning struct {
	// Path is the directory or manifest the warning refers to.
	Path string

	// Err is the underlying typed error, already redacted where it contains URLs.
	Err error
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}
