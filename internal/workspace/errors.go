package workspace

import (
	"fmt"
)

// NoWorkspaceFoundError is returned when no ancestor of the start path
// contains a manifest file.
type NoWorkspaceFoundError struct {
	Start string
}

func (err NoWorkspaceFoundError) Error() string {
	return fmt.Sprintf("no workspace found: no manifest in %s or any ancestor directory", err.Start)
}

// DuplicateMemberNameError is returned when two members declare the same
// project name.
type DuplicateMemberNameError struct {
	Name       string
	FirstPath  string
	SecondPath string
}

func (err DuplicateMemberNameError) Error() string {
	return fmt.Sprintf("duplicate member name %q declared by both %s and %s", err.Name, err.FirstPath, err.SecondPath)
}

// MemberOutsideWorkspaceError is returned when a member path escapes the
// workspace root subtree without an explicit out-of-tree declaration.
type MemberOutsideWorkspaceError struct {
	Path string
	Root string
}

func (err MemberOutsideWorkspaceError) Error() string {
	return fmt.Sprintf("member %s lies outside workspace root %s and is not declared as an out-of-tree member", err.Path, err.Root)
}

// NestedWorkspaceIgnoredError is recorded when a workspace declaration is
// found nested inside (or outside) an already established workspace root.
// The closer declaration wins; the other one is ignored, because workspaces
// may be legitimately nested in monorepos.
type NestedWorkspaceIgnoredError struct {
	Declared string
	Root     string
}

func (err NestedWorkspaceIgnoredError) Error() string {
	return fmt.Sprintf("workspace declaration in %s is ignored: discovery is rooted at %s", err.Declared, err.Root)
}

// ConfigurationConflictError is recorded when a member attempts to override a
// workspace-enforced setting.
type ConfigurationConflictError struct {
	Path    string
	Setting string
}

func (err ConfigurationConflictError) Error() string {
	return fmt.Sprintf("member %s overrides workspace-enforced setting %q", err.Path, err.Setting)
}
