/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package rootpak

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"

	"github.com/mirkobrombin/rootpak/pkg/logger"
	"github.com/mirkobrombin/rootpak/pkg/tools"
)

// LayerCache is the on-disk directory holding the unpacked base image.
// The existence of the directory is the only cache-hit signal, there is
// no hashing or versioning of its content.
type LayerCache struct {
	dir    string
	image  string
	tag    string
	puller Puller
}

// NewLayerCache returns a cache rooted at dir, populated on demand by
// pulling image:tag with the given puller.
func NewLayerCache(dir, image, tag string, puller Puller) *LayerCache {
	return &LayerCache{
		dir:    dir,
		image:  image,
		tag:    tag,
		puller: puller,
	}
}

// Dir returns the cache directory, whether it exists or not.
func (l *LayerCache) Dir() string {
	return l.dir
}

// Reference returns the image reference the cache is populated from.
func (l *LayerCache) Reference() string {
	if l.tag == "" {
		return l.image
	}
	return l.image + ":" + l.tag
}

// Exists reports whether the cache directory is present.
func (l *LayerCache) Exists() bool {
	return tools.Exists(l.dir)
}

// Acquire returns the path of the unpacked base image. An existing cache
// is returned untouched when reuseExisting is true, otherwise it is
// removed and pulled again.
//
// The puller works in a staging directory next to the cache, renamed in
// place only once the pull succeeded, so a failed pull is never a hit.
// A pull failing at the operating system level is reported as
// ErrNeedsRoot. The staging directory of a failed pull is left on disk.
func (l *LayerCache) Acquire(ctx context.Context, reuseExisting bool) (path string, err error) {
	if l.Exists() {
		if reuseExisting {
			logger.Debugf("layer cache hit: %s", l.dir)
			return l.dir, nil
		}

		logger.Printf("Removing layer cache %s", l.dir)
		if err = os.RemoveAll(l.dir); err != nil {
			return "", fmt.Errorf("failed to remove layer cache: %w", err)
		}
	}

	if l.puller == nil {
		return "", fmt.Errorf("layer cache %s is empty and no puller is configured", l.dir)
	}

	staging, err := l.stagingDir()
	if err != nil {
		return "", l.pullError(err)
	}

	logger.Printf("Pulling %s into %s", l.Reference(), l.dir)
	err = l.puller.Pull(ctx, l.image, l.tag, staging)
	if err != nil {
		logger.Debugf("partial pull left in %s", filepath.Dir(staging))
		return "", l.pullError(err)
	}

	if err = os.Rename(staging, l.dir); err != nil {
		return "", l.pullError(err)
	}
	os.Remove(filepath.Dir(staging))

	return l.dir, nil
}

// stagingDir returns a path that does not exist yet, on the same
// filesystem as the cache so it can be renamed into place.
func (l *LayerCache) stagingDir() (string, error) {
	parent := filepath.Dir(l.dir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return "", err
	}
	tmp, err := os.MkdirTemp(parent, ".pull-*")
	if err != nil {
		return "", err
	}
	return filepath.Join(tmp, filepath.Base(l.dir)), nil
}

func (l *LayerCache) pullError(err error) error {
	if needsRoot(err) {
		return fmt.Errorf("%w: %w", ErrNeedsRoot, err)
	}
	return fmt.Errorf("failed to pull %s: %w", l.Reference(), err)
}

// Purge removes the cache directory.
func (l *LayerCache) Purge() error {
	return os.RemoveAll(l.dir)
}

// needsRoot tells operating system failures apart from network and
// registry ones. Network errors also wrap *os.SyscallError, so they are
// excluded first.
func needsRoot(err error) bool {
	if errors.Is(err, fs.ErrPermission) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return false
	}

	var pathErr *fs.PathError
	var syscallErr *os.SyscallError
	var linkErr *os.LinkError
	return errors.As(err, &pathErr) || errors.As(err, &syscallErr) || errors.As(err, &linkErr)
}
