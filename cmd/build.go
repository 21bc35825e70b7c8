package cmd

import (
	"fmt"

	"github.com/mirkobrombin/rootpak/pkg/rootpak"
	"github.com/mirkobrombin/rootpak/pkg/tools"
	"github.com/spf13/cobra"
)

func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <dir>",
		Short: "Build a container root from the base image",
		Long: `Copy the cached base image into <dir>, write the runc config and point apt
at a local apt cache when one answers. An existing <dir> is removed first.`,
		Args: cobra.ExactArgs(1),
		RunE: BuildRoot,
	}

	cmd.Flags().StringP("base", "b", "", "Use this filesystem tree instead of the layer cache")

	return cmd
}

func buildError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while building the container root: %w", iErr)
	return
}

func BuildRoot(cmd *cobra.Command, args []string) error {
	base, _ := cmd.Flags().GetString("base")

	r, err := rootpak.NewRootpak()
	if err != nil {
		return buildError(err)
	}

	builder, err := r.Builder(tools.NewTerminalPrompter())
	if err != nil {
		return buildError(err)
	}

	store, closeStore := openStore(&r)
	defer closeStore()
	if store != nil {
		builder.Recorder = store
	}

	root, err := builder.Build(r.Ctx, args[0], base)
	if err != nil {
		return buildError(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Container root ready at", root)
	return nil
}
