package main

import (
	"fmt"
	"os"

	"github.com/mirkobrombin/rootpak/cmd"
	"github.com/mirkobrombin/rootpak/pkg/logger"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "rootpak",
		Short: "build and drive disposable runc container roots",
		Long: `rootpak builds container roots from a cached base image, points them at a
local apt cache and drives them through runc`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			format, _ := cmd.Flags().GetString("log-format")
			return logger.Setup(format, verbose)
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("log-format", logger.FormatDefault, "Log format: default, plain or json")

	rootCmd.AddCommand(cmd.NewBuildCommand())
	rootCmd.AddCommand(cmd.NewInstallCommand())
	rootCmd.AddCommand(cmd.NewCleanCommand())
	rootCmd.AddCommand(cmd.NewStartCommand())
	rootCmd.AddCommand(cmd.NewExecCommand())
	rootCmd.AddCommand(cmd.NewStopCommand())
	rootCmd.AddCommand(cmd.NewShellCommand())
	rootCmd.AddCommand(cmd.NewPullCommand())
	rootCmd.AddCommand(cmd.NewProbeCommand())
	rootCmd.AddCommand(cmd.NewListCommand())
	rootCmd.AddCommand(cmd.NewDedupCommand())
	rootCmd.AddCommand(cmd.NewGenSchemaCommand())
	rootCmd.AddCommand(cmd.NewValidateCommand())

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
