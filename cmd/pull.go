/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package cmd

import (
	"fmt"

	"github.com/mirkobrombin/rootpak/pkg/rootpak"
	"github.com/spf13/cobra"
)

func NewPullCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Populate the layer cache with the base image",
		Args:  cobra.NoArgs,
		RunE:  PullImage,
	}

	cmd.Flags().Bool("refresh", false, "Drop the cached image and pull it again")

	return cmd
}

func pullError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while pulling the base image: %w", iErr)
	return
}

func PullImage(cmd *cobra.Command, args []string) error {
	refresh, _ := cmd.Flags().GetBool("refresh")

	r, err := rootpak.NewRootpak()
	if err != nil {
		return pullError(err)
	}

	cache := r.LayerCache()
	path, err := cache.Acquire(r.Ctx, !refresh)
	if err != nil {
		return pullError(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s available at %s\n", cache.Reference(), path)
	return nil
}
