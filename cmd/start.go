package cmd

import (
	"fmt"

	"github.com/mirkobrombin/rootpak/pkg/rootpak"
	"github.com/mirkobrombin/rootpak/pkg/tools"
	"github.com/spf13/cobra"
)

func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <dir>",
		Short: "Boot a built container root",
		Args:  cobra.ExactArgs(1),
		RunE:  StartContainer,
	}

	addContainerNameFlag(cmd)

	return cmd
}

func startError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while starting the container: %w", iErr)
	return
}

func StartContainer(cmd *cobra.Command, args []string) error {
	r, err := rootpak.NewRootpak()
	if err != nil {
		return startError(err)
	}

	root, err := tools.ExpandPath(args[0])
	if err != nil {
		return startError(err)
	}

	store, closeStore := openStore(&r)
	defer closeStore()

	name := containerName(cmd, &r)
	out, err := newLifecycle(&r, store).Start(r.Ctx, root, name)
	cmd.OutOrStdout().Write(out)
	if err != nil {
		return startError(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Container %s is running\n", name)
	return nil
}
