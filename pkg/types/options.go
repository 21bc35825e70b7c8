/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mirkobrombin/dabadee/pkg/storage"
)

// Readiness modes for the post-start and post-signal waits.
const (
	// ReadinessPoll probes the container until it reaches the expected
	// state or the timeout expires.
	ReadinessPoll = "poll"

	// ReadinessFixed blocks for a fixed settle interval without looking
	// at the container.
	ReadinessFixed = "fixed"
)

// RootpakOptions is the struct that represents the options for the
// Rootpak struct.
type RootpakOptions struct {
	// CachePath is the path to the directory where the base image layers
	// are unpacked.
	CachePath string `json:"cache_path"`

	// StorePath is the path to the directory holding the sqlite database
	// with the containers bookkeeping.
	StorePath string `json:"store_path"`

	// Image and Tag identify the base image pulled into the layer cache.
	Image string `json:"image"`
	Tag   string `json:"tag"`

	// Platform selects the manifest pulled from multi-arch images, in
	// the os/arch[/variant] form.
	Platform string `json:"platform"`

	// RuntimeBinPath is the OCI runtime executable, looked up in PATH
	// when not absolute.
	RuntimeBinPath string `json:"runtime_bin_path"`

	// RuntimeRoot is passed as --root to the runtime when set.
	RuntimeRoot string `json:"runtime_root"`

	// RuntimeConfigPath is the config.json copied into every container
	// root. The embedded systemd config is used when empty.
	RuntimeConfigPath string `json:"runtime_config_path"`

	// AptCacheURL is the first candidate probed for an apt proxy.
	AptCacheURL string `json:"apt_cache_url"`

	// AptCachePrompts bounds how many times the operator is asked for a
	// replacement apt proxy URL. Negative means no limit, zero never
	// prompts.
	AptCachePrompts int `json:"apt_cache_prompts"`

	// Readiness is either "poll" or "fixed".
	Readiness string `json:"readiness"`

	// StartSettle and StopSettle are the fixed waits used when Readiness
	// is "fixed".
	StartSettle Duration `json:"start_settle"`
	StopSettle  Duration `json:"stop_settle"`

	// ReadyTimeout and PollInterval drive the readiness polling.
	ReadyTimeout Duration `json:"ready_timeout"`
	PollInterval Duration `json:"poll_interval"`

	// ContainerName is the name used when none is given on the command
	// line.
	ContainerName string `json:"container_name"`

	// Variables are substituted into install recipes, e.g. ROOT_PW or
	// SSH_SERVER_IP.
	Variables map[string]string `json:"variables"`

	// DaBaDeeStoreOptions is the configuration for the DaBaDee store.
	DaBaDeeStoreOptions storage.StorageOptions `json:"dabadee_store"`

	// Following paths are not meant to be set by the user, they are set
	// by rootpak during its initialization.
	LayerCachePath string `json:"layer_cache_path"`
	DatabasePath   string `json:"database_path"`
}

// Duration is a time.Duration read from and written to JSON as a
// string such as "10s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch value := raw.(type) {
	case float64:
		d.Duration = time.Duration(value) * time.Second
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
		return nil
	}
	return fmt.Errorf("invalid duration: %s", string(b))
}
