package workspace

import (
	"path/filepath"
	"runtime"

	"dario.cat/mergo"

	"github.com/mosaic-build/mosaic/internal/errors"
	"github.com/mosaic-build/mosaic/internal/manifest"
	"github.com/mosaic-build/mosaic/pkg/log"
	"github.com/mosaic-build/mosaic/util"
)

// defaultOutDir is the built-in build output directory, relative to the
// member that the configuration is computed for.
const defaultOutDir = "dist"

// mergeMemberConfig layers workspace-level settings over member-level settings:
// member setting > workspace setting > built-in default. Table-valued settings
// (sources) merge per key; scalar settings merge member-wins-silently except
// workspace-enforced keys, which produce a ConfigurationConflict warning and
// keep the workspace value. Relative paths are resolved against the directory
// of the manifest that declared them before merging, so callers never observe
// an unresolved relative path.
func mergeMemberConfig(l log.Logger, rootDoc, memberDoc *manifest.Document) (*EffectiveConfig, []Warning, error) {
	var warns []Warning

	wsSettings := resolvedBuildSettings(rootDoc)

	memberSettings := resolvedBuildSettings(memberDoc)

	// Workspace-enforced settings cannot be overridden at member level. The
	// attempt is surfaced as a diagnostic and the workspace value is kept.
	if rootDoc != memberDoc && wsSettings.RequireChecksums != nil && memberSettings.RequireChecksums != nil &&
		*wsSettings.RequireChecksums != *memberSettings.RequireChecksums {
		warns = append(warns, Warning{
			Path: memberDoc.Path(),
			Err:  ConfigurationConflictError{Path: memberDoc.Path(), Setting: "tool.build.require-checksums"},
		})

		memberSettings.RequireChecksums = nil
	}

	merged := memberSettings
	if err := mergo.Merge(&merged, wsSettings); err != nil {
		return nil, warns, errors.WithStackTrace(err)
	}

	sources, err := mergeSources(l, rootDoc, memberDoc)
	if err != nil {
		return nil, warns, err
	}

	cfg := &EffectiveConfig{
		Sources: sources,
		Build:   applyBuildDefaults(merged, memberDoc.Dir()),
	}

	return cfg, warns, nil
}

// resolvedBuildSettings returns a copy of the manifest's build settings with
// relative paths resolved against the manifest's own directory.
func resolvedBuildSettings(doc *manifest.Document) manifest.BuildSettings {
	if doc.Tool == nil || doc.Tool.Build == nil {
		return manifest.BuildSettings{}
	}

	settings := *doc.Tool.Build

	if settings.OutDir != "" && !filepath.IsAbs(settings.OutDir) {
		if resolved, err := util.CanonicalPath(settings.OutDir, doc.Dir()); err == nil {
			settings.OutDir = resolved
		}
	}

	return settings
}

// applyBuildDefaults fills the built-in defaults, the lowest layer of the
// precedence chain, and collapses optional settings into concrete values.
func applyBuildDefaults(settings manifest.BuildSettings, memberDir string) BuildConfig {
	cfg := BuildConfig{
		OutDir: settings.OutDir,
		Jobs:   runtime.NumCPU(),
	}

	if cfg.OutDir == "" {
		cfg.OutDir = filepath.Join(memberDir, defaultOutDir)
	}

	if settings.Jobs != nil && *settings.Jobs > 0 {
		cfg.Jobs = *settings.Jobs
	}

	if settings.RequireChecksums != nil {
		cfg.RequireChecksums = *settings.RequireChecksums
	}

	return cfg
}

// mergeSources merges the source-override tables per dependency identity: a
// member override shadows the workspace override for the same identity, and
// identities not overridden at member level fall through to the workspace
// value. Shadowed entries are logged rather than silently dropped.
func mergeSources(l log.Logger, rootDoc, memberDoc *manifest.Document) (map[string]manifest.Source, error) {
	merged := make(map[string]manifest.Source, len(rootDoc.Sources)+len(memberDoc.Sources))

	for name, src := range rootDoc.Sources {
		resolved, err := resolveSource(src, rootDoc.Dir())
		if err != nil {
			return nil, err
		}

		merged[name] = resolved
	}

	if rootDoc == memberDoc {
		return merged, nil
	}

	for name, src := range memberDoc.Sources {
		resolved, err := resolveSource(src, memberDoc.Dir())
		if err != nil {
			return nil, err
		}

		if shadowed, ok := merged[name]; ok {
			l.Debugf("member %s shadows workspace source for %q (%s over %s)",
				memberDoc.Dir(), name, resolved, shadowed)
		}

		merged[name] = resolved
	}

	return merged, nil
}

// resolveSource resolves a relative path source against the directory of the
// manifest that declared it.
func resolveSource(src manifest.Source, baseDir string) (manifest.Source, error) {
	if src.Kind() != manifest.SourceKindPath || filepath.IsAbs(src.Path) {
		return src, nil
	}

	resolved, err := util.CanonicalPath(src.Path, baseDir)
	if err != nil {
		return manifest.Source{}, err
	}

	src.Path = resolved

	return src, nil
}
