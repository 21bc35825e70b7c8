package cmd

import (
	"fmt"
	"os"

	"github.com/mirkobrombin/rootpak/pkg/logger"
	"github.com/mirkobrombin/rootpak/pkg/rootpak"
	"github.com/spf13/cobra"
)

// NewValidateCommand creates the `validate` command for verifying a recipe
// against the JSON Schema.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <recipe>",
		Short: "Validate a recipe JSON file against the recipe schema",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
	return cmd
}

// runValidate checks the provided recipe against the JSON Schema and
// reports any validation errors.
func runValidate(cmd *cobra.Command, args []string) error {
	recipePath := args[0]

	document, err := os.ReadFile(recipePath)
	if err != nil {
		return err
	}

	violations, err := rootpak.ValidateRecipe(document)
	if err != nil {
		return err
	}

	if len(violations) > 0 {
		logger.Println("Recipe validation errors:")
		for _, desc := range violations {
			logger.Printf(" - %s", desc)
		}
		return fmt.Errorf("validation failed with %d errors", len(violations))
	}

	logger.Println("Recipe is valid against the schema.")
	return nil
}
