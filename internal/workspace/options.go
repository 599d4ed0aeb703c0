package workspace

import (
	"github.com/mosaic-build/mosaic/internal/vfs"
	"github.com/mosaic-build/mosaic/pkg/log"
)

// WithVFS substitutes the filesystem used for discovery. Tests use an
// in-memory filesystem; production uses the OS filesystem.
func (d *Discovery) WithVFS(fsys vfs.FS) *Discovery {
	d.fsys = fsys
	return d
}

// WithLogger sets the logger used for discovery diagnostics.
func (d *Discovery) WithLogger(l log.Logger) *Discovery {
	d.logger = l
	return d
}

// WithManifestFilename sets the manifest filename to discover.
func (d *Discovery) WithManifestFilename(filename string) *Discovery {
	d.manifestFilename = filename
	return d
}

// WithNumWorkers sets the number of concurrent workers for member parsing.
func (d *Discovery) WithNumWorkers(numWorkers int) *Discovery {
	if numWorkers > 0 && numWorkers <= maxDiscoveryWorkers {
		d.numWorkers = numWorkers
	}

	return d
}

// WithMaxUpwardLevels bounds how many ancestor directories the root search
// may visit. Zero means walk all the way to the filesystem root.
func (d *Discovery) WithMaxUpwardLevels(levels int) *Discovery {
	d.maxUpwardLevels = levels
	return d
}

// WithHidden includes hidden directories in member enumeration.
func (d *Discovery) WithHidden() *Discovery {
	d.hidden = true
	return d
}
