package workspace_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaic-build/mosaic/internal/workspace"
)

func writeManifestOS(t *testing.T, dir string, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mosaic.toml"), []byte(content), 0644))
}

func TestDiscoverOnOSFilesystem(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	writeManifestOS(t, tmpDir, `
[project]
name = "ws-root"

[workspace]
members = ["packages/*"]
exclude = ["packages/skipped"]
`)
	writeManifestOS(t, filepath.Join(tmpDir, "packages", "a"), "[project]\nname = \"a\"\n")
	writeManifestOS(t, filepath.Join(tmpDir, "packages", "b"), "[project]\nname = \"b\"\n")
	writeManifestOS(t, filepath.Join(tmpDir, "packages", "skipped"), "[project]\nname = \"skipped\"\n")

	// Directories matched by the include pattern but without a manifest do
	// not qualify.
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "packages", "empty"), 0755))

	ws, err := workspace.Discover(context.Background(), filepath.Join(tmpDir, "packages", "a"))
	require.NoError(t, err)

	assert.Equal(t, []string{"ws-root", "a", "b"}, memberNames(ws))
	assert.Empty(t, ws.Warnings())
}

func TestDiscoverSymlinkedMemberOutsideWorkspaceIsFatal(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	wsDir := filepath.Join(tmpDir, "ws")

	writeManifestOS(t, wsDir, `
[project]
name = "ws-root"

[workspace]
members = ["packages/*"]
`)

	// A glob-matched symlink resolving outside the root subtree is not an
	// explicit out-of-tree declaration.
	outside := filepath.Join(tmpDir, "outside", "proj")
	writeManifestOS(t, outside, "[project]\nname = \"esc\"\n")

	require.NoError(t, os.MkdirAll(filepath.Join(wsDir, "packages"), 0755))
	require.NoError(t, os.Symlink(outside, filepath.Join(wsDir, "packages", "esc")))

	_, err := workspace.Discover(context.Background(), wsDir)
	require.Error(t, err)

	var outsideErr workspace.MemberOutsideWorkspaceError
	assert.ErrorAs(t, err, &outsideErr)
}

func TestDiscoverSymlinkAliasDeduplicated(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	writeManifestOS(t, tmpDir, `
[project]
name = "ws-root"

[workspace]
members = ["packages/*", "mirror/a"]
`)
	writeManifestOS(t, filepath.Join(tmpDir, "packages", "a"), "[project]\nname = \"a\"\n")

	// Two routes to the same directory collapse to one member by canonical path.
	require.NoError(t, os.Symlink(filepath.Join(tmpDir, "packages"), filepath.Join(tmpDir, "mirror")))

	ws, err := workspace.Discover(context.Background(), tmpDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"ws-root", "a"}, memberNames(ws))
	assert.Len(t, ws.Members(), 2)
}
