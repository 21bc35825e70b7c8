package rootpak

import (
	"fmt"
	"os"

	"github.com/mirkobrombin/rootpak/pkg/logger"
	"github.com/mirkobrombin/rootpak/pkg/tools"
)

// Cleaner removes container roots together with the layer cache.
type Cleaner struct {
	Cache    *LayerCache
	Recorder Recorder
}

// Purge removes destPath and the layer cache. It does not check that a
// container is still running from destPath, stop it first.
func (c *Cleaner) Purge(destPath string) error {
	root, err := tools.ExpandPath(destPath)
	if err != nil {
		return err
	}

	err = tools.CheckRemovable(root, c.Cache.Dir())
	if err != nil {
		return err
	}

	logger.Printf("Removing %s", root)
	if err = os.RemoveAll(root); err != nil {
		return fmt.Errorf("failed to remove %s: %w", root, err)
	}

	logger.Printf("Removing layer cache %s", c.Cache.Dir())
	if err = c.Cache.Purge(); err != nil {
		return fmt.Errorf("failed to remove layer cache: %w", err)
	}

	if c.Recorder != nil {
		if recErr := c.Recorder.Forget(root); recErr != nil {
			logger.Warnf("failed to forget %s: %v", root, recErr)
		}
	}

	return nil
}
