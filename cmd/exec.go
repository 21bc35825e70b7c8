package cmd

import (
	"fmt"

	"github.com/mirkobrombin/rootpak/pkg/rootpak"
	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/shell"
)

func NewExecCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec [flags] -- <command> [args...]",
		Short: "Run a command inside a running container",
		Long: `Run a command inside a running container and print its output.
With --line the command is given as a single string and split like a
shell would, variables from the options are expanded.`,
		Example: `  rootpak exec -- apt-get update
  rootpak exec -n ltsp --line 'ltsp-update-sshkeys ${SSH_SERVER_IP}'`,
		RunE: ExecContainer,
	}

	addContainerNameFlag(cmd)
	cmd.Flags().StringP("line", "l", "", "Command line to tokenize instead of the arguments")

	return cmd
}

func execError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while running the command: %w", iErr)
	return
}

func ExecContainer(cmd *cobra.Command, args []string) error {
	line, _ := cmd.Flags().GetString("line")

	r, err := rootpak.NewRootpak()
	if err != nil {
		return execError(err)
	}

	command := args
	if line != "" {
		command, err = shell.Fields(line, func(name string) string {
			return r.Options.Variables[name]
		})
		if err != nil {
			return execError(err)
		}
	}
	if len(command) == 0 {
		return execError(fmt.Errorf("no command given"))
	}

	out, err := newLifecycle(&r, nil).Exec(r.Ctx, containerName(cmd, &r), command)
	cmd.OutOrStdout().Write(out)
	if err != nil {
		return execError(err)
	}
	return nil
}
