package cmd

import (
	"fmt"

	"github.com/mirkobrombin/rootpak/pkg/rootpak"
	"github.com/mirkobrombin/rootpak/pkg/tools"
	"github.com/spf13/cobra"
)

func NewProbeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe [url]",
		Short: "Look for an apt cache the way build does",
		Args:  cobra.MaximumNArgs(1),
		RunE:  ProbeAptCache,
	}

	cmd.Flags().Bool("no-prompt", false, "Never ask for another URL")

	return cmd
}

func ProbeAptCache(cmd *cobra.Command, args []string) error {
	noPrompt, _ := cmd.Flags().GetBool("no-prompt")

	r, err := rootpak.NewRootpak()
	if err != nil {
		return err
	}

	candidate := r.Options.AptCacheURL
	if len(args) == 1 {
		candidate = args[0]
	}

	locator := r.AptCacheLocator(tools.NewTerminalPrompter())
	if noPrompt {
		locator.MaxPrompts = 0
	}

	proxy, found := locator.Locate(r.Ctx, candidate)
	if !found {
		fmt.Fprintln(cmd.OutOrStdout(), "No apt cache found.")
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), rootpak.AptProxyConf(proxy))
	return nil
}
