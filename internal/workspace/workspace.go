package workspace

import (
	"context"
	"slices"
	"strings"

	"github.com/mosaic-build/mosaic/internal/errors"
	"github.com/mosaic-build/mosaic/util"
)

// Workspace is the final composed graph: the root, the ordered members, and
// the merged top-level configuration. It is immutable once built; all
// mutation happens during the build phase, never after the caller receives
// the Workspace. Reconfiguration requires rediscovering a new Workspace.
type Workspace struct {
	root     *Member
	members  []*Member
	byName   map[string]*Member
	warnings []Warning
}

// Discover locates and resolves the workspace containing the given start
// directory with default options. Use NewDiscovery for finer control.
func Discover(ctx context.Context, startDir string) (*Workspace, error) {
	return NewDiscovery(startDir).Discover(ctx)
}

// build performs the final invariant checks and assembles the Workspace.
// members must contain the root member; ordering of the rest is irrelevant,
// the result is always root first, then remaining members sorted by their
// canonical path so downstream consumers get stable iteration across runs.
func build(members []*Member, warnings []Warning) (*Workspace, error) {
	var root *Member

	for _, m := range members {
		if m.IsRoot() {
			root = m
			break
		}
	}

	if root == nil {
		return nil, errors.Errorf("workspace has no root member")
	}

	ordered := make([]*Member, 0, len(members))
	ordered = append(ordered, root)

	rest := make([]*Member, 0, len(members)-1)

	for _, m := range members {
		if !m.IsRoot() {
			rest = append(rest, m)
		}
	}

	slices.SortFunc(rest, func(a, b *Member) int {
		return strings.Compare(a.Path(), b.Path())
	})

	ordered = append(ordered, rest...)

	// Checks run in canonical order so the reported paths are stable across
	// runs regardless of fan-in order.
	byName := make(map[string]*Member, len(ordered))

	for _, m := range ordered {
		if prev, ok := byName[m.Name()]; ok {
			return nil, errors.New(DuplicateMemberNameError{
				Name:       m.Name(),
				FirstPath:  prev.Path(),
				SecondPath: m.Path(),
			})
		}

		byName[m.Name()] = m

		if !m.IsRoot() && !m.IsOutOfTree() && !util.ContainsPath(root.Path(), m.Path()) {
			return nil, errors.New(MemberOutsideWorkspaceError{Path: m.Path(), Root: root.Path()})
		}
	}

	return &Workspace{
		root:     root,
		members:  ordered,
		byName:   byName,
		warnings: warnings,
	}, nil
}

// Root returns the workspace root member.
func (ws *Workspace) Root() *Member {
	return ws.root
}

// Members returns all members in canonical order: root first, then remaining
// members sorted by canonical path. The returned slice is a copy.
func (ws *Workspace) Members() []*Member {
	return slices.Clone(ws.members)
}

// Find looks up a member by its declared project name.
func (ws *Workspace) Find(name string) (*Member, bool) {
	m, ok := ws.byName[name]
	return m, ok
}

// Settings returns the merged top-level configuration, i.e. the root member's
// effective configuration.
func (ws *Workspace) Settings() *EffectiveConfig {
	return ws.root.Config()
}

// Warnings returns the non-fatal diagnostics collected during discovery.
// The returned slice is a copy.
func (ws *Workspace) Warnings() []Warning {
	return slices.Clone(ws.warnings)
}
