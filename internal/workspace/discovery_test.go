package workspace_test

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaic-build/mosaic/internal/vfs"
	"github.com/mosaic-build/mosaic/internal/workspace"
)

// failingStatFS wraps a filesystem and fails Stat calls for one path.
type failingStatFS struct {
	vfs.FS
	failPath string
}

func (f failingStatFS) Stat(name string) (os.FileInfo, error) {
	if name == f.failPath {
		return nil, &os.PathError{Op: "stat", Path: name, Err: syscall.EACCES}
	}

	return f.FS.Stat(name)
}

// writeManifest creates dir and writes a manifest into it.
func writeManifest(t *testing.T, fsys vfs.FS, dir string, content string) {
	t.Helper()

	require.NoError(t, fsys.MkdirAll(dir, 0755))
	require.NoError(t, afero.WriteFile(fsys, filepath.Join(dir, "mosaic.toml"), []byte(content), 0644))
}

func memberNames(ws *workspace.Workspace) []string {
	members := ws.Members()

	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name())
	}

	return names
}

func memberPaths(ws *workspace.Workspace) []string {
	members := ws.Members()

	paths := make([]string, 0, len(members))
	for _, m := range members {
		paths = append(paths, m.Path())
	}

	return paths
}

func TestDiscoverIncludeExclude(t *testing.T) {
	t.Parallel()

	fsys := vfs.NewMemMapFS()

	writeManifest(t, fsys, "/ws", `
[project]
name = "ws-root"

[workspace]
members = ["packages/*"]
exclude = ["packages/deprecated"]
`)
	writeManifest(t, fsys, "/ws/packages/a", "[project]\nname = \"a\"\n")
	writeManifest(t, fsys, "/ws/packages/b", "[project]\nname = \"b\"\n")
	writeManifest(t, fsys, "/ws/packages/deprecated", "[project]\nname = \"deprecated\"\n")

	ws, err := workspace.NewDiscovery("/ws").WithVFS(fsys).Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"ws-root", "a", "b"}, memberNames(ws))
	assert.Empty(t, ws.Warnings())

	_, found := ws.Find("deprecated")
	assert.False(t, found)
}

func TestDiscoverFromNestedStartDir(t *testing.T) {
	t.Parallel()

	fsys := vfs.NewMemMapFS()

	writeManifest(t, fsys, "/ws", `
[project]
name = "ws-root"

[workspace]
members = ["packages/*"]
`)
	writeManifest(t, fsys, "/ws/packages/a", "[project]\nname = \"a\"\n")

	ws, err := workspace.NewDiscovery("/ws/packages/a").WithVFS(fsys).Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/ws", ws.Root().Path())
	assert.Equal(t, []string{"ws-root", "a"}, memberNames(ws))
}

func TestDiscoverBrokenMemberIsWarningNotError(t *testing.T) {
	t.Parallel()

	fsys := vfs.NewMemMapFS()

	writeManifest(t, fsys, "/ws", `
[project]
name = "ws-root"

[workspace]
members = ["packages/*"]
`)
	writeManifest(t, fsys, "/ws/packages/a", "[project]\nname = \"a\"\n")
	writeManifest(t, fsys, "/ws/packages/broken", "not toml ::")

	ws, err := workspace.NewDiscovery("/ws").WithVFS(fsys).Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"ws-root", "a"}, memberNames(ws))

	warnings := ws.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Path, "packages/broken")
}

func TestDiscoverUnreadableCandidateIsWarningNotError(t *testing.T) {
	t.Parallel()

	fsys := vfs.NewMemMapFS()

	writeManifest(t, fsys, "/ws", `
[project]
name = "ws-root"

[workspace]
members = ["packages/*", "../denied/proj"]
`)
	writeManifest(t, fsys, "/ws/packages/a", "[project]\nname = \"a\"\n")
	writeManifest(t, fsys, "/denied/proj", "[project]\nname = \"denied\"\n")

	failing := failingStatFS{FS: fsys, failPath: "/denied/proj/mosaic.toml"}

	ws, err := workspace.NewDiscovery("/ws").WithVFS(failing).Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"ws-root", "a"}, memberNames(ws))

	warnings := ws.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Path, "denied/proj")
	assert.ErrorIs(t, warnings[0].Err, syscall.EACCES)
}

func TestDiscoverNoWorkspaceFound(t *testing.T) {
	t.Parallel()

	fsys := vfs.NewMemMapFS()
	require.NoError(t, fsys.MkdirAll("/empty/dir", 0755))

	_, err := workspace.NewDiscovery("/empty/dir").WithVFS(fsys).Discover(context.Background())
	require.Error(t, err)

	var notFound workspace.NoWorkspaceFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDiscoverSelfSufficientRoot(t *testing.T) {
	t.Parallel()

	fsys := vfs.NewMemMapFS()

	writeManifest(t, fsys, "/proj", "[project]\nname = \"solo\"\n")

	ws, err := workspace.NewDiscovery("/proj").WithVFS(fsys).Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"solo"}, memberNames(ws))
	assert.True(t, ws.Root().IsRoot())
}

func TestDiscoverDeduplicatesOverlappingPatterns(t *testing.T) {
	t.Parallel()

	fsys := vfs.NewMemMapFS()

	writeManifest(t, fsys, "/ws", `
[project]
name = "ws-root"

[workspace]
members = ["packages/*", "packages/a"]
`)
	writeManifest(t, fsys, "/ws/packages/a", "[project]\nname = \"a\"\n")

	ws, err := workspace.NewDiscovery("/ws").WithVFS(fsys).Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"ws-root", "a"}, memberNames(ws))
}

func TestDiscoverNestedWorkspaceCloserWins(t *testing.T) {
	t.Parallel()

	fsys := vfs.NewMemMapFS()

	writeManifest(t, fsys, "/outer", `
[project]
name = "outer"

[workspace]
members = ["inner"]
`)
	writeManifest(t, fsys, "/outer/inner", `
[project]
name = "inner"

[workspace]
members = ["packages/*"]
`)
	writeManifest(t, fsys, "/outer/inner/packages/a", "[project]\nname = \"a\"\n")

	ws, err := workspace.NewDiscovery("/outer/inner/packages/a").WithVFS(fsys).Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/outer/inner", ws.Root().Path())
	assert.Equal(t, []string{"inner", "a"}, memberNames(ws))

	warnings := ws.Warnings()
	require.NotEmpty(t, warnings)

	var nested workspace.NestedWorkspaceIgnoredError
	assert.ErrorAs(t, warnings[0].Err, &nested)
}

func TestDiscoverMemberDeclaringWorkspaceIsIgnoredWithWarning(t *testing.T) {
	t.Parallel()

	fsys := vfs.NewMemMapFS()

	writeManifest(t, fsys, "/ws", `
[project]
name = "ws-root"

[workspace]
members = ["packages/*"]
`)
	writeManifest(t, fsys, "/ws/packages/a", `
[project]
name = "a"

[workspace]
members = ["sub/*"]
`)

	ws, err := workspace.NewDiscovery("/ws").WithVFS(fsys).Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"ws-root", "a"}, memberNames(ws))

	warnings := ws.Warnings()
	require.Len(t, warnings, 1)

	var nested workspace.NestedWorkspaceIgnoredError
	assert.ErrorAs(t, warnings[0].Err, &nested)
}

func TestDiscoverOutOfTreeLiteralMember(t *testing.T) {
	t.Parallel()

	fsys := vfs.NewMemMapFS()

	writeManifest(t, fsys, "/ws", `
[project]
name = "ws-root"

[workspace]
members = ["packages/*", "../shared/lib"]
`)
	writeManifest(t, fsys, "/ws/packages/a", "[project]\nname = \"a\"\n")
	writeManifest(t, fsys, "/shared/lib", "[project]\nname = \"lib\"\n")

	ws, err := workspace.NewDiscovery("/ws").WithVFS(fsys).Discover(context.Background())
	require.NoError(t, err)

	lib, found := ws.Find("lib")
	require.True(t, found)
	assert.True(t, lib.IsOutOfTree())
	assert.Equal(t, "/shared/lib", lib.Path())
}

func TestDiscoverDuplicateMemberName(t *testing.T) {
	t.Parallel()

	fsys := vfs.NewMemMapFS()

	writeManifest(t, fsys, "/ws", `
[project]
name = "ws-root"

[workspace]
members = ["packages/*"]
`)
	writeManifest(t, fsys, "/ws/packages/a", "[project]\nname = \"dup\"\n")
	writeManifest(t, fsys, "/ws/packages/b", "[project]\nname = \"dup\"\n")

	_, err := workspace.NewDiscovery("/ws").WithVFS(fsys).Discover(context.Background())
	require.Error(t, err)

	var dup workspace.DuplicateMemberNameError
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, "dup", dup.Name)
}

func TestDiscoverSkipsHiddenDirectoriesByDefault(t *testing.T) {
	t.Parallel()

	fsys := vfs.NewMemMapFS()

	writeManifest(t, fsys, "/ws", `
[project]
name = "ws-root"

[workspace]
members = ["*"]
`)
	writeManifest(t, fsys, "/ws/visible", "[project]\nname = \"visible\"\n")
	writeManifest(t, fsys, "/ws/.hidden", "[project]\nname = \"hidden\"\n")

	ws, err := workspace.NewDiscovery("/ws").WithVFS(fsys).Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ws-root", "visible"}, memberNames(ws))

	ws, err = workspace.NewDiscovery("/ws").WithVFS(fsys).WithHidden().Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ws-root", "hidden", "visible"}, memberNames(ws))
}

func TestDiscoverIsDeterministic(t *testing.T) {
	t.Parallel()

	fsys := vfs.NewMemMapFS()

	writeManifest(t, fsys, "/ws", `
[project]
name = "ws-root"

[workspace]
members = ["packages/*"]
`)

	for _, name := range []string{"zeta", "alpha", "mid", "omega", "beta"} {
		writeManifest(t, fsys, "/ws/packages/"+name, "[project]\nname = \""+name+"\"\n")
	}

	first, err := workspace.NewDiscovery("/ws").WithVFS(fsys).Discover(context.Background())
	require.NoError(t, err)

	second, err := workspace.NewDiscovery("/ws").WithVFS(fsys).Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, memberPaths(first), memberPaths(second))
	assert.Equal(t, memberNames(first), memberNames(second))
}

func TestDiscoverRebuildFromRootIsEquivalent(t *testing.T) {
	t.Parallel()

	fsys := vfs.NewMemMapFS()

	writeManifest(t, fsys, "/ws", `
[project]
name = "ws-root"

[workspace]
members = ["packages/*"]
`)
	writeManifest(t, fsys, "/ws/packages/a", "[project]\nname = \"a\"\n")
	writeManifest(t, fsys, "/ws/packages/b", "[project]\nname = \"b\"\n")

	ws, err := workspace.NewDiscovery("/ws/packages/b").WithVFS(fsys).Discover(context.Background())
	require.NoError(t, err)

	rebuilt, err := workspace.NewDiscovery(ws.Root().Path()).WithVFS(fsys).Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, memberPaths(ws), memberPaths(rebuilt))
}
