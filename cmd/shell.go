/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package cmd

import (
	"fmt"
	"os"

	"github.com/mirkobrombin/rootpak/pkg/rootpak"
	"github.com/spf13/cobra"
)

func NewShellCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell [command...]",
		Short: "Open an interactive shell inside a running container",
		RunE:  ShellContainer,
	}

	addContainerNameFlag(cmd)

	return cmd
}

func shellError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while opening the container shell: %w", iErr)
	return
}

func ShellContainer(cmd *cobra.Command, args []string) error {
	r, err := rootpak.NewRootpak()
	if err != nil {
		return shellError(err)
	}

	err = r.Runtime().Shell(r.Ctx, containerName(cmd, &r), os.Stdin, os.Stdout, args...)
	if err != nil {
		return shellError(err)
	}
	return nil
}
