/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package rootpak

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mirkobrombin/rootpak/pkg/logger"
	"github.com/mirkobrombin/rootpak/pkg/tools"
	"github.com/mirkobrombin/rootpak/pkg/types"
)

// AptProxyConfPath is where the apt proxy directive is written, relative
// to the container root.
var AptProxyConfPath = filepath.Join("etc", "apt", "apt.conf.d", "01proxy")

// AptProxyConf returns the apt configuration pointing the http method at
// the given proxy.
func AptProxyConf(proxy string) string {
	return fmt.Sprintf("Acquire::http { Proxy \"%s\"; };\n", proxy)
}

// Builder materializes container roots from the layer cache.
type Builder struct {
	Cache *LayerCache

	// Locator looks for an apt proxy starting at AptCacheURL, nil skips
	// the proxy configuration.
	Locator     ProxyLocator
	AptCacheURL string

	// RuntimeConfig is written verbatim as config.json in every root.
	RuntimeConfig []byte

	// Recorder, when set, is told about every successful build.
	Recorder Recorder
}

// Build copies the base filesystem into destPath and configures it. The
// base is basePath when it exists, the layer cache otherwise.
//
// An existing destPath is removed first, roots are never merged. A
// failure half way leaves the root as the last successful step made it.
func (b *Builder) Build(ctx context.Context, destPath, basePath string) (root string, err error) {
	if basePath == "" || !tools.Exists(basePath) {
		if basePath != "" {
			logger.Warnf("base path %s does not exist, using the layer cache", basePath)
		}
		basePath, err = b.Cache.Acquire(ctx, true)
		if err != nil {
			return
		}
	}

	root, err = tools.ExpandPath(destPath)
	if err != nil {
		return
	}

	err = tools.CheckRemovable(root, b.Cache.Dir(), basePath)
	if err != nil {
		return
	}

	if tools.Exists(root) {
		logger.Printf("Removing existing root %s", root)
		if err = os.RemoveAll(root); err != nil {
			return root, fmt.Errorf("failed to remove %s: %w", root, err)
		}
	}

	err = os.MkdirAll(filepath.Dir(root), 0755)
	if err != nil {
		return
	}

	logger.Printf("Copying %s to %s", basePath, root)
	if copyErr := tools.CopyTree(ctx, basePath, root); copyErr != nil {
		return root, &CopyError{Dest: root, Err: copyErr}
	}

	// the config shipped with the image is not what runc expects
	err = os.WriteFile(filepath.Join(root, "config.json"), b.RuntimeConfig, 0644)
	if err != nil {
		return root, fmt.Errorf("failed to write runtime config: %w", err)
	}

	proxy, err := b.configureAptProxy(ctx, root)
	if err != nil {
		return
	}

	if b.Recorder != nil {
		recErr := b.Recorder.RecordBuilt(types.Container{
			RootPath:  root,
			BaseImage: b.Cache.Reference(),
			AptProxy:  proxy,
			Status:    types.StatusBuilt,
			CreatedAt: time.Now(),
		})
		if recErr != nil {
			logger.Warnf("failed to record %s: %v", root, recErr)
		}
	}

	return root, nil
}

func (b *Builder) configureAptProxy(ctx context.Context, root string) (string, error) {
	if b.Locator == nil {
		return "", nil
	}

	candidate := b.AptCacheURL
	if candidate == "" {
		candidate = DefaultAptCacheURL
	}

	proxy, found := b.Locator.Locate(ctx, candidate)
	if !found {
		logger.Println("No apt cache found, packages will be fetched directly")
		return "", nil
	}

	confPath := filepath.Join(root, AptProxyConfPath)
	if err := os.MkdirAll(filepath.Dir(confPath), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(confPath, []byte(AptProxyConf(proxy)), 0644); err != nil {
		return "", fmt.Errorf("failed to write apt proxy config: %w", err)
	}

	logger.Printf("Using apt cache %s", proxy)
	return proxy, nil
}
