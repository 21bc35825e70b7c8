/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package cmd

import (
	"github.com/mirkobrombin/rootpak/pkg/logger"
	"github.com/mirkobrombin/rootpak/pkg/rootpak"
	"github.com/spf13/cobra"
)

// addContainerNameFlag registers the --container-name flag shared by the
// lifecycle commands.
func addContainerNameFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("container-name", "n", "", "Name of the runc container (default from options, \"ltsp\")")
}

func containerName(cmd *cobra.Command, r *rootpak.Rootpak) string {
	name, _ := cmd.Flags().GetString("container-name")
	return r.ContainerName(name)
}

// openStore opens the containers store. Bookkeeping is never fatal, so
// a store that cannot be opened is only logged and nil is returned.
func openStore(r *rootpak.Rootpak) (*rootpak.Store, func()) {
	store, err := r.OpenStore()
	if err != nil {
		logger.Warnf("containers store unavailable: %v", err)
		return nil, func() {}
	}
	return store, func() { store.Close() }
}

// newLifecycle returns the configured lifecycle, recording into store
// when there is one.
func newLifecycle(r *rootpak.Rootpak, store *rootpak.Store) *rootpak.Lifecycle {
	lifecycle := r.Lifecycle(r.Runtime())
	if store != nil {
		lifecycle.Recorder = store
	}
	return lifecycle
}
