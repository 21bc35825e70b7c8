package cmd

import (
	"fmt"

	"github.com/mirkobrombin/rootpak/pkg/logger"
	"github.com/mirkobrombin/rootpak/pkg/rootpak"
	"github.com/spf13/cobra"
)

func NewDedupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "dedup <dir>",
		Short:  "Deduplicate a container root in the rootpak dabadee store",
		Args:   cobra.ExactArgs(1),
		RunE:   dedupRun,
		Hidden: true,
	}

	cmd.Flags().String("dest", "", "Create the deduplicated tree here instead of deduplicating in place")

	return cmd
}

func dedupRun(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	dest, _ := cmd.Flags().GetString("dest")
	path := args[0]

	if path == "" {
		return fmt.Errorf("path is mandatory")
	}

	logger.Printf("Deduplicating path %s", path)

	r, err := rootpak.NewRootpak()
	if err != nil {
		return err
	}

	return r.Dedup(path, dest, verbose)
}
