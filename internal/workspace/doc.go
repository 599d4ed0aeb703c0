// Package workspace discovers and resolves a workspace: a root project plus
// zero or more member sub-projects found on disk, combined into one logical
// unit for dependency resolution and build tooling.
//
// Discovery proceeds in three stages. The root search walks upward from a
// start directory until it finds a manifest declaring a workspace section (or
// a self-sufficient project manifest with no workspace above it). Member
// enumeration expands the root's include globs, drops anything matching an
// exclude pattern, and keeps only directories containing a manifest,
// deduplicated by canonical path. Resolution parses each candidate's manifest
// and layers workspace-level configuration over member-level configuration,
// fanning out per member once the root configuration is fixed.
//
// Per-candidate failures are downgraded to warnings so one broken member
// never blocks discovery of the others; root-level failures and invariant
// violations at workspace construction are fatal. The resulting Workspace is
// immutable and deterministic: two runs against an unchanged filesystem
// produce identical member ordering and identical merged settings.
package workspace
