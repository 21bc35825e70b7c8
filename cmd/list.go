package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mirkobrombin/rootpak/pkg/rootpak"
	"github.com/mirkobrombin/rootpak/pkg/tools"
	"github.com/spf13/cobra"
)

func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the container roots built by rootpak",
		Args:  cobra.NoArgs,
		RunE:  ListContainers,
	}

	cmd.Flags().BoolP("json", "j", false, "Print output in JSON format")
	cmd.Flags().BoolP("details", "d", false, "Print every field of every container")

	return cmd
}

func listError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while listing containers: %w", iErr)
	return
}

func ListContainers(cmd *cobra.Command, args []string) error {
	jsonFlag, err := cmd.Flags().GetBool("json")
	if err != nil {
		return listError(err)
	}
	details, _ := cmd.Flags().GetBool("details")

	r, err := rootpak.NewRootpak()
	if err != nil {
		return listError(err)
	}

	store, err := r.OpenStore()
	if err != nil {
		return listError(fmt.Errorf("failed to open store: %w", err))
	}
	defer store.Close()

	containers, err := store.GetContainers()
	if err != nil {
		return listError(err)
	}

	out := cmd.OutOrStdout()
	switch {
	case jsonFlag:
		jsonBytes, err := json.MarshalIndent(containers, "", "  ")
		if err != nil {
			return listError(err)
		}
		fmt.Fprintln(out, string(jsonBytes))
	case details:
		for _, c := range containers {
			fmt.Fprintf(out, "%s:\n", c.RootPath)
			tools.PrintStructKeyVal(out, c)
		}
	default:
		header := []string{"Name", "Root", "Status", "Pid", "Apt Proxy", "Updated"}
		data := [][]string{}
		for _, c := range containers {
			pid := ""
			if c.Pid > 0 {
				pid = strconv.Itoa(c.Pid)
			}
			data = append(data, []string{c.Name, c.RootPath, string(c.Status), pid, c.AptProxy, c.UpdatedAt.Format(time.RFC3339)})
		}
		tools.ShowTable(out, header, data)
	}

	return nil
}
