package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/mattn/go-zglob"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/mosaic-build/mosaic/internal/errors"
	"github.com/mosaic-build/mosaic/internal/manifest"
	"github.com/mosaic-build/mosaic/internal/vfs"
	"github.com/mosaic-build/mosaic/pkg/log"
	"github.com/mosaic-build/mosaic/util"
)

const (
	defaultDiscoveryWorkers = 4
	maxDiscoveryWorkers     = 32
)

// Discovery is the configuration for workspace discovery.
type Discovery struct {
	// fsys is the filesystem discovery runs against.
	fsys vfs.FS

	// logger receives discovery diagnostics.
	logger log.Logger

	// startDir is the directory the root search starts from.
	startDir string

	// manifestFilename is the manifest filename to discover.
	manifestFilename string

	// numWorkers determines the number of concurrent workers for member parsing.
	numWorkers int

	// maxUpwardLevels bounds the upward root search. Zero means unbounded.
	maxUpwardLevels int

	// hidden determines whether hidden directories participate in enumeration.
	hidden bool
}

// NewDiscovery creates a new Discovery starting from the given directory.
func NewDiscovery(startDir string) *Discovery {
	return &Discovery{
		fsys:             vfs.NewOSFS(),
		logger:           log.Default(),
		startDir:         startDir,
		manifestFilename: manifest.Filename,
		numWorkers:       defaultDiscoveryWorkers,
	}
}

// Discover performs the full discovery process: locate the workspace root by
// walking upward from the start directory, enumerate member candidates from
// the root's membership rule, parse and merge each member concurrently, and
// assemble the final Workspace. It either returns a complete,
// invariant-satisfying Workspace or an error, never a partial one.
func (d *Discovery) Discover(ctx context.Context) (*Workspace, error) {
	start, err := util.ResolveCanonicalPath(d.fsys, d.startDir, "")
	if err != nil {
		return nil, err
	}

	rootDoc, warns, err := d.findRoot(start)
	if err != nil {
		return nil, err
	}

	d.logger.Debugf("workspace root found at %s", rootDoc.Dir())

	candidates, enumWarns, err := d.enumerateCandidates(rootDoc)
	if err != nil {
		return nil, err
	}

	warns = append(warns, enumWarns...)

	members, memberWarns, err := d.resolveMembers(ctx, rootDoc, candidates)
	if err != nil {
		return nil, err
	}

	warns = append(warns, memberWarns...)

	for _, warn := range warns {
		d.logger.WithField("path", warn.Path).Warnf("%v", warn.Err)
	}

	return build(members, warns)
}

// findRoot walks upward through ancestor directories. The first ancestor whose
// manifest declares a workspace section is the root; if no ancestor declares
// one, the nearest manifest is a self-sufficient single-member root. Nested
// workspace declarations are resolved closer-wins: once a root is fixed, an
// outer declaration farther up produces a warning and is ignored.
func (d *Discovery) findRoot(start string) (*manifest.Document, []Warning, error) {
	var (
		warns   []Warning
		nearest *manifest.Document
		root    *manifest.Document
	)

	dir := start

	for level := 0; d.maxUpwardLevels == 0 || level < d.maxUpwardLevels; level++ {
		manifestPath := filepath.Join(dir, d.manifestFilename)

		exists, err := vfs.FileExists(d.fsys, manifestPath)
		if err != nil {
			return nil, warns, errors.WithStackTrace(err)
		}

		if exists {
			doc, parseErr := d.parseManifestFile(manifestPath)

			switch {
			case parseErr != nil && nearest == nil && root == nil:
				// The nearest manifest establishes the root; if it does not
				// parse there is nothing to anchor discovery to.
				return nil, warns, parseErr
			case parseErr != nil:
				warns = append(warns, Warning{Path: manifestPath, Err: parseErr})
			case root != nil && doc.HasWorkspace():
				warns = append(warns, Warning{Path: manifestPath, Err: NestedWorkspaceIgnoredError{
					Declared: manifestPath,
					Root:     root.Dir(),
				}})

				return root, warns, nil
			case root == nil && doc.HasWorkspace():
				root = doc
			case nearest == nil:
				nearest = doc
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	if root != nil {
		return root, warns, nil
	}

	if nearest != nil {
		return nearest, warns, nil
	}

	return nil, warns, errors.New(NoWorkspaceFoundError{Start: start})
}

// parseManifestFile reads and parses one manifest file.
func (d *Discovery) parseManifestFile(path string) (*manifest.Document, error) {
	data, err := vfs.ReadFile(d.fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(util.PathNotFoundError{Path: path})
		}

		return nil, errors.WithStackTraceAndPrefix(err, "reading manifest %s", path)
	}

	return manifest.Parse(data, path)
}

// candidate is one directory produced by membership-rule evaluation, before
// its manifest has been parsed.
type candidate struct {
	// path is the canonical directory of the candidate.
	path string

	// outOfTree marks candidates declared via a literal (non-glob) member
	// entry, which is the only way a member may live outside the root subtree.
	outOfTree bool
}

// enumerateCandidates evaluates the root's membership rule against the
// directory subtree. Include globs are expanded relative to the root, a
// candidate qualifies only if it contains a manifest file, exclude patterns
// are checked after include and always win, and duplicates reached via
// different glob expansions are collapsed by canonical path, first wins.
func (d *Discovery) enumerateCandidates(rootDoc *manifest.Document) ([]candidate, []Warning, error) {
	decl := rootDoc.Workspace
	if decl == nil || len(decl.Members) == 0 {
		// No explicit include patterns: the root alone is the sole member.
		return nil, nil, nil
	}

	rootDir := rootDoc.Dir()

	excludes, err := compileExcludes(decl.Exclude)
	if err != nil {
		// Exclude patterns were validated at parse time.
		return nil, nil, err
	}

	var (
		warns      []Warning
		candidates []candidate
	)

	seen := make(map[string]bool)

	for _, pattern := range util.RemoveDuplicatesFromList(decl.Members) {
		literal := !isGlobPattern(pattern)

		var matches []string

		if literal {
			matches = []string{filepath.Join(rootDir, pattern)}
		} else {
			matches, err = d.expandGlob(rootDir, pattern)
			if err != nil {
				return nil, warns, err
			}
		}

		for _, match := range matches {
			cand, warn, ok := d.qualifyCandidate(rootDir, match, literal, excludes)
			if warn != nil {
				warns = append(warns, *warn)
			}

			if !ok || seen[cand.path] {
				continue
			}

			seen[cand.path] = true

			candidates = append(candidates, cand)
		}
	}

	return candidates, warns, nil
}

// expandGlob expands one include pattern into candidate directories. Against
// the OS filesystem the expansion is delegated to zglob; in-memory filesystems
// are walked and matched against the compiled pattern instead.
func (d *Discovery) expandGlob(rootDir, pattern string) ([]string, error) {
	if vfs.IsOSFS(d.fsys) {
		matches, err := zglob.Glob(filepath.Join(rootDir, pattern))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				// Patterns that match nothing are not an error.
				return nil, nil
			}

			return nil, errors.WithStackTrace(err)
		}

		return matches, nil
	}

	g, err := glob.Compile(filepath.ToSlash(pattern), '/')
	if err != nil {
		return nil, errors.New(manifest.InvalidWorkspaceDeclarationError{
			Path:   filepath.Join(rootDir, d.manifestFilename),
			Reason: err.Error(),
		})
	}

	var matches []string

	err = afero.Walk(d.fsys, rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() || path == rootDir {
			return err
		}

		rel, relErr := util.GetPathRelativeTo(path, rootDir)
		if relErr != nil {
			return relErr
		}

		if g.Match(rel) {
			matches = append(matches, path)
		}

		return nil
	})
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}

	return matches, nil
}

// qualifyCandidate decides whether a matched path is a member candidate.
// Candidates that simply do not apply (no manifest, not a directory, hidden,
// excluded) are skipped silently; anything that fails with a real error is
// recorded as a warning so no failure disappears without a diagnostic.
func (d *Discovery) qualifyCandidate(rootDir, match string, literal bool, excludes []glob.Glob) (candidate, *Warning, bool) {
	canonical, err := util.ResolveCanonicalPath(d.fsys, match, rootDir)
	if err != nil {
		var notFound util.PathNotFoundError
		if !literal && errors.As(err, &notFound) {
			// Glob expansions already reflect what exists on disk.
			return candidate{}, nil, false
		}

		return candidate{}, &Warning{Path: match, Err: err}, false
	}

	isDir, err := vfs.DirExists(d.fsys, canonical)
	if err != nil {
		return candidate{}, &Warning{Path: canonical, Err: errors.WithStackTrace(err)}, false
	}

	if !isDir {
		return candidate{}, nil, false
	}

	rel, err := util.GetPathRelativeTo(canonical, rootDir)
	if err != nil {
		return candidate{}, &Warning{Path: canonical, Err: err}, false
	}

	if !d.hidden && hasHiddenSegment(rel) {
		return candidate{}, nil, false
	}

	// Exclude is checked after include and always wins.
	for _, g := range excludes {
		if g.Match(rel) {
			d.logger.Debugf("candidate %s excluded by membership rule", canonical)
			return candidate{}, nil, false
		}
	}

	manifestExists, err := vfs.FileExists(d.fsys, filepath.Join(canonical, d.manifestFilename))
	if err != nil {
		return candidate{}, &Warning{Path: canonical, Err: errors.WithStackTrace(err)}, false
	}

	if !manifestExists {
		return candidate{}, nil, false
	}

	return candidate{path: canonical, outOfTree: literal && !util.ContainsPath(rootDir, canonical)}, nil, true
}

// resolveMembers parses each candidate's manifest and computes its merged
// configuration. The root's configuration is resolved first; per-candidate
// work then fans out concurrently and fans back in for deterministic
// assembly. A broken candidate never blocks discovery of the others: its
// failure is downgraded to a warning.
func (d *Discovery) resolveMembers(ctx context.Context, rootDoc *manifest.Document, candidates []candidate) ([]*Member, []Warning, error) {
	rootCfg, warns, err := mergeMemberConfig(d.logger, rootDoc, rootDoc)
	if err != nil {
		return nil, nil, err
	}

	rootDir := rootDoc.Dir()

	rootMember := &Member{path: rootDir, doc: rootDoc, config: rootCfg, isRoot: true}

	results := xsync.NewMapOf[string, *Member]()

	var mu sync.Mutex // guards warns

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.numWorkers)

	for _, cand := range candidates {
		if cand.path == rootDir {
			continue
		}

		cand := cand
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			member, memberWarns, err := d.resolveMember(rootDoc, cand)

			mu.Lock()
			warns = append(warns, memberWarns...)

			if err != nil {
				warns = append(warns, Warning{Path: cand.path, Err: err})
			}
			mu.Unlock()

			if err == nil {
				results.LoadOrStore(member.path, member)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, warns, err
	}

	members := make([]*Member, 0, results.Size()+1)
	members = append(members, rootMember)

	results.Range(func(_ string, member *Member) bool {
		members = append(members, member)
		return true
	})

	return members, warns, nil
}

// resolveMember parses one candidate manifest and merges its configuration.
func (d *Discovery) resolveMember(rootDoc *manifest.Document, cand candidate) (*Member, []Warning, error) {
	manifestPath := filepath.Join(cand.path, d.manifestFilename)

	doc, err := d.parseManifestFile(manifestPath)
	if err != nil {
		return nil, nil, err
	}

	var warns []Warning

	if doc.HasWorkspace() {
		warns = append(warns, Warning{Path: manifestPath, Err: NestedWorkspaceIgnoredError{
			Declared: manifestPath,
			Root:     rootDoc.Dir(),
		}})
	}

	cfg, mergeWarns, err := mergeMemberConfig(d.logger, rootDoc, doc)
	if err != nil {
		return nil, warns, err
	}

	warns = append(warns, mergeWarns...)

	return &Member{path: cand.path, doc: doc, config: cfg, outOfTree: cand.outOfTree}, warns, nil
}

// compileExcludes compiles the exclude patterns of a membership rule.
func compileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))

	for _, pattern := range patterns {
		g, err := glob.Compile(filepath.ToSlash(pattern), '/')
		if err != nil {
			return nil, errors.WithStackTrace(err)
		}

		globs = append(globs, g)
	}

	return globs, nil
}

// isGlobPattern reports whether the pattern contains glob metacharacters.
// Literal entries are joined directly instead of expanded, which is also the
// explicit declaration mechanism for out-of-tree members.
func isGlobPattern(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// hasHiddenSegment reports whether any path segment is hidden.
func hasHiddenSegment(rel string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(segment, ".") && segment != "." && segment != ".." {
			return true
		}
	}

	return false
}
