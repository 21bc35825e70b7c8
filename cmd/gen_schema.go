package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mirkobrombin/rootpak/pkg/logger"
	"github.com/mirkobrombin/rootpak/pkg/rootpak"
	"github.com/spf13/cobra"
)

// NewGenSchemaCommand creates the `gen-schema` command for generating JSON
// Schema for the Recipe type.
func NewGenSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "gen-schema",
		Short:  "Generate JSON Schema for recipes (hidden)",
		Hidden: true,
		RunE:   runGenSchema,
	}

	cmd.Flags().StringP("output", "o", "recipe.schema.json", "Where to write the schema")

	return cmd
}

// runGenSchema generates a JSON Schema for the Recipe type and writes it
// to recipe.schema.json.
func runGenSchema(cmd *cobra.Command, args []string) error {
	schemaPath, _ := cmd.Flags().GetString("output")

	out, err := json.MarshalIndent(rootpak.RecipeSchema(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	if err := os.WriteFile(schemaPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write schema to %s: %w", schemaPath, err)
	}

	logger.Println("Schema generated at", schemaPath)
	return nil
}
