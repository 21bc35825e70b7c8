/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package cmd

import (
	"fmt"

	"github.com/mirkobrombin/rootpak/pkg/rootpak"
	"github.com/mirkobrombin/rootpak/pkg/tools"
	"github.com/spf13/cobra"
)

func NewCleanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <dir>",
		Short: "Stop the container and remove its root and the layer cache",
		Args:  cobra.ExactArgs(1),
		RunE:  CleanRoot,
	}

	addContainerNameFlag(cmd)
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().Bool("no-stop", false, "Only remove the files, the container must already be gone")

	return cmd
}

func cleanError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while cleaning the container: %w", iErr)
	return
}

func CleanRoot(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	noStop, _ := cmd.Flags().GetBool("no-stop")

	r, err := rootpak.NewRootpak()
	if err != nil {
		return cleanError(err)
	}

	if !yes && !tools.ConfirmOperation(fmt.Sprintf("Remove %s and the layer cache %s?", args[0], r.Options.LayerCachePath)) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}

	store, closeStore := openStore(&r)
	defer closeStore()

	cleaner := r.Cleaner()
	if store != nil {
		cleaner.Recorder = store
	}

	if noStop {
		if err := cleaner.Purge(args[0]); err != nil {
			return cleanError(err)
		}
		return nil
	}

	provisioner := &rootpak.Provisioner{
		Lifecycle: newLifecycle(&r, store),
		Cleaner:   cleaner,
	}
	if err := provisioner.Clean(r.Ctx, args[0], containerName(cmd, &r)); err != nil {
		return cleanError(err)
	}
	return nil
}
