package cmd

import (
	"fmt"

	"github.com/mirkobrombin/rootpak/pkg/rootpak"
	"github.com/spf13/cobra"
)

func NewStopCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop and delete a running container",
		Long:  "Ask systemd inside the container to power off, wait for it and delete the container from runc.",
		Args:  cobra.NoArgs,
		RunE:  StopContainer,
	}

	addContainerNameFlag(cmd)

	return cmd
}

func stopError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while stopping the container: %w", iErr)
	return
}

func StopContainer(cmd *cobra.Command, args []string) error {
	r, err := rootpak.NewRootpak()
	if err != nil {
		return stopError(err)
	}

	store, closeStore := openStore(&r)
	defer closeStore()

	name := containerName(cmd, &r)
	fmt.Fprintln(cmd.OutOrStdout(), "Stopping container", name)

	if err := newLifecycle(&r, store).Stop(r.Ctx, name); err != nil {
		return stopError(err)
	}
	return nil
}
