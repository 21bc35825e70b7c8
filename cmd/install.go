package cmd

import (
	"fmt"

	"github.com/mirkobrombin/rootpak/pkg/rootpak"
	"github.com/mirkobrombin/rootpak/pkg/tools"
	"github.com/spf13/cobra"
)

func NewInstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <dir>",
		Short: "Build a container root and provision it with a recipe",
		Long: `Build a fresh container root at <dir>, boot it, run every step of the
recipe inside it and stop it. The embedded LTSP recipe is used unless
--recipe is given.`,
		Args: cobra.ExactArgs(1),
		RunE: InstallRoot,
	}

	addContainerNameFlag(cmd)
	cmd.Flags().StringP("recipe", "r", "", "Path to a recipe JSON file")
	cmd.Flags().StringToStringP("var", "e", nil, "Set a recipe variable, e.g. --var ROOT_PW=secret")

	return cmd
}

func installError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while installing the container: %w", iErr)
	return
}

func InstallRoot(cmd *cobra.Command, args []string) error {
	recipePath, _ := cmd.Flags().GetString("recipe")
	vars, _ := cmd.Flags().GetStringToString("var")

	r, err := rootpak.NewRootpak()
	if err != nil {
		return installError(err)
	}

	recipe, err := rootpak.LoadRecipe(recipePath)
	if err != nil {
		return installError(err)
	}

	builder, err := r.Builder(tools.NewTerminalPrompter())
	if err != nil {
		return installError(err)
	}

	store, closeStore := openStore(&r)
	defer closeStore()
	if store != nil {
		builder.Recorder = store
	}

	variables := map[string]string{}
	for k, v := range r.Options.Variables {
		variables[k] = v
	}
	for k, v := range vars {
		variables[k] = v
	}

	provisioner := &rootpak.Provisioner{
		Builder:   builder,
		Lifecycle: newLifecycle(&r, store),
		Cleaner:   r.Cleaner(),
		Variables: variables,
		Out:       cmd.OutOrStdout(),
	}

	name := containerName(cmd, &r)
	if err := provisioner.Install(r.Ctx, args[0], name, recipe); err != nil {
		return installError(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recipe %s installed into %s\n", recipe.Name, args[0])
	return nil
}
