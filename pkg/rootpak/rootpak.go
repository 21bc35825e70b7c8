package rootpak

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mirkobrombin/dabadee/pkg/storage"
	"github.com/mirkobrombin/rootpak/pkg/tools"
	"github.com/mirkobrombin/rootpak/pkg/types"
)

//go:embed assets/systemd.config.json
var systemdConfig []byte

// DefaultContainerName is used when no name is given.
const DefaultContainerName = "ltsp"

type Rootpak struct {
	Options types.RootpakOptions
	Ctx     context.Context
}

// NewRootpak creates a new rootpak instance.
func NewRootpak() (rootpak Rootpak, err error) {
	rootpak.Options, err = getRootpakOptions()
	if err != nil {
		return
	}

	rootpak.Ctx = context.Background()
	return
}

// getRootpakOptions reads rootpak configuration options following a
// defined priority order:
//  1. If the ROOTPAK_OPTS_FILE environment variable is set, the
//     configuration file path is extracted from this variable and used
//     as the sole source.
//  2. Otherwise, configuration files are searched in three predefined
//     locations, in order:
//     a. In the current user's specific path: "~/.config/rootpak/rootpak.json".
//     b. In the system directory: "/etc/rootpak/rootpak.json".
//     c. In the rootpak installation directory: "/usr/share/rootpak/rootpak.json".
//  3. Defaults are derived from the installation path, taken from the
//     ROOTPAK_INSTALLATION_PATH environment variable or "~/.local/share/rootpak".
//  4. The first configuration file found is decoded over the defaults,
//     so it only needs to carry the values it changes.
//  5. Necessary directories for rootpak are then created, if they don't
//     exist.
func getRootpakOptions() (options types.RootpakOptions, err error) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return
	}

	var confPaths []string
	var installationPath string

	// Try to read the options from the environment variable at first
	// if it's not set, try to read the options from the default paths
	if os.Getenv("ROOTPAK_OPTS_FILE") != "" {
		confPaths = append(confPaths, os.Getenv("ROOTPAK_OPTS_FILE"))
	} else {
		confPaths = append(confPaths, filepath.Join(homedir, ".config", "rootpak", "rootpak.json"))
		confPaths = append(confPaths, filepath.Join("/", "etc", "rootpak", "rootpak.json"))
		confPaths = append(confPaths, filepath.Join("/", "usr", "share", "rootpak", "rootpak.json"))
	}

	if os.Getenv("ROOTPAK_INSTALLATION_PATH") != "" {
		installationPath = os.Getenv("ROOTPAK_INSTALLATION_PATH")
	} else {
		installationPath = filepath.Join(homedir, ".local", "share", "rootpak")
	}
	options = defaultRootpakOptions(installationPath)

	for _, confPath := range confPaths {
		if _, statErr := os.Stat(confPath); statErr == nil {
			err = readRootpakOptions(confPath, &options)
			if err != nil {
				return
			}
			break
		}
	}

	switch options.Readiness {
	case types.ReadinessPoll, types.ReadinessFixed:
	default:
		return options, fmt.Errorf("unknown readiness mode %q", options.Readiness)
	}

	// Following paths are generated from the user facing ones
	options.LayerCachePath = filepath.Join(options.CachePath, cacheDirName(options.Image), "layers", "contents")
	options.DatabasePath = filepath.Join(options.StorePath, "rootpak.db")

	// Create the necessary directories if they don't exist
	err = createRootpakDirs(&options)
	return
}

func defaultRootpakOptions(installationPath string) types.RootpakOptions {
	return types.RootpakOptions{
		CachePath:       filepath.Join(installationPath, "cache"),
		StorePath:       filepath.Join(installationPath, "store"),
		Image:           "ubuntu",
		Tag:             "latest",
		RuntimeBinPath:  "runc",
		AptCacheURL:     DefaultAptCacheURL,
		AptCachePrompts: 5,
		Readiness:       types.ReadinessPoll,
		StartSettle:     types.Duration{Duration: 10 * time.Second},
		StopSettle:      types.Duration{Duration: 7 * time.Second},
		ReadyTimeout:    types.Duration{Duration: 2 * time.Minute},
		PollInterval:    types.Duration{Duration: time.Second},
		ContainerName:   DefaultContainerName,
		Variables:       map[string]string{},
		DaBaDeeStoreOptions: storage.StorageOptions{
			Root:         filepath.Join(installationPath, "dabadee"),
			WithMetadata: true,
		},
	}
}

// readRootpakOptions decodes the configuration file at the given path
// over options. The file must be a valid JSON file.
func readRootpakOptions(path string, options *types.RootpakOptions) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err = json.NewDecoder(file).Decode(options); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// cacheDirName maps an image name to its directory in the cache, Docker
// Hub official images live under "library_".
func cacheDirName(image string) string {
	if !strings.Contains(image, "/") {
		return "library_" + image
	}
	return strings.NewReplacer("/", "_", ":", "_").Replace(image)
}

// createRootpakDirs creates the necessary directories for rootpak to work.
func createRootpakDirs(options *types.RootpakOptions) error {
	dirs := []string{
		options.CachePath,
		options.StorePath,
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			err = os.MkdirAll(dir, 0755)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// LayerCache returns the cache of the configured base image.
func (r *Rootpak) LayerCache() *LayerCache {
	puller := &CranePuller{
		Platform: r.Options.Platform,
		Progress: os.Stderr,
	}
	return NewLayerCache(r.Options.LayerCachePath, r.Options.Image, r.Options.Tag, puller)
}

// Runtime returns the configured OCI runtime.
func (r *Rootpak) Runtime() *Runc {
	return NewRunc(r.Options.RuntimeBinPath, r.Options.RuntimeRoot)
}

// AptCacheLocator returns a locator asking prompter for replacements.
func (r *Rootpak) AptCacheLocator(prompter tools.Prompter) *AptCacheLocator {
	return NewAptCacheLocator(prompter, r.Options.AptCachePrompts)
}

// RuntimeConfig returns the config.json written into every root.
func (r *Rootpak) RuntimeConfig() ([]byte, error) {
	if r.Options.RuntimeConfigPath == "" {
		return systemdConfig, nil
	}
	return os.ReadFile(r.Options.RuntimeConfigPath)
}

// Builder returns a builder over the layer cache.
func (r *Rootpak) Builder(prompter tools.Prompter) (*Builder, error) {
	config, err := r.RuntimeConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to read runtime config: %w", err)
	}

	return &Builder{
		Cache:         r.LayerCache(),
		Locator:       r.AptCacheLocator(prompter),
		AptCacheURL:   r.Options.AptCacheURL,
		RuntimeConfig: config,
	}, nil
}

// Lifecycle returns a lifecycle over rt with the configured waiters.
func (r *Rootpak) Lifecycle(rt Runtime) *Lifecycle {
	if r.Options.Readiness == types.ReadinessFixed {
		return NewLifecycle(rt,
			&FixedDelay{Delay: r.Options.StartSettle.Duration},
			&FixedDelay{Delay: r.Options.StopSettle.Duration},
		)
	}

	return NewLifecycle(rt,
		&Poller{
			Probe:    SystemRunningProbe(rt),
			Interval: r.Options.PollInterval.Duration,
			Timeout:  r.Options.ReadyTimeout.Duration,
		},
		&Poller{
			Probe:    StoppedProbe(rt),
			Interval: r.Options.PollInterval.Duration,
			Timeout:  r.Options.ReadyTimeout.Duration,
		},
	)
}

// Cleaner returns a cleaner purging the layer cache along with roots.
func (r *Rootpak) Cleaner() *Cleaner {
	return &Cleaner{Cache: r.LayerCache()}
}

// OpenStore opens the containers database.
func (r *Rootpak) OpenStore() (*Store, error) {
	return NewStore(r.Options.DatabasePath)
}

// ContainerName returns name, or the configured default when empty.
func (r *Rootpak) ContainerName(name string) string {
	if name != "" {
		return name
	}
	if r.Options.ContainerName != "" {
		return r.Options.ContainerName
	}
	return DefaultContainerName
}
