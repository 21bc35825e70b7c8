package rootpak

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/mirkobrombin/rootpak/pkg/types"
	"github.com/xeipuuv/gojsonschema"
	"mvdan.cc/sh/v3/shell"
)

//go:embed assets/ltsp.recipe.json
var defaultRecipe []byte

// RecipeSchema returns the JSON Schema recipes are validated against.
func RecipeSchema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{ExpandedStruct: true}
	return reflector.Reflect(&types.Recipe{})
}

// ValidateRecipe checks document against the recipe schema and returns
// one description per violation.
func ValidateRecipe(document []byte) (violations []string, err error) {
	schemaBytes, err := json.Marshal(RecipeSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to serialize schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return
}

// ParseRecipe validates and decodes a recipe document.
func ParseRecipe(document []byte) (recipe types.Recipe, err error) {
	violations, err := ValidateRecipe(document)
	if err != nil {
		return
	}
	if len(violations) > 0 {
		return recipe, fmt.Errorf("invalid recipe: %s", strings.Join(violations, "; "))
	}

	err = json.Unmarshal(document, &recipe)
	return
}

// LoadRecipe reads the recipe at path, the embedded LTSP recipe when
// path is empty.
func LoadRecipe(path string) (types.Recipe, error) {
	if path == "" {
		return ParseRecipe(defaultRecipe)
	}

	document, err := os.ReadFile(path)
	if err != nil {
		return types.Recipe{}, err
	}
	return ParseRecipe(document)
}

// RecipeCommands tokenizes every step of recipe. ${NAME} is looked up in
// the recipe variables first, then in vars. Referencing a variable set
// in neither is an error, a silently empty password is worse than a
// failed install.
func RecipeCommands(recipe types.Recipe, vars map[string]string) ([][]string, error) {
	commands := make([][]string, 0, len(recipe.Steps))
	for i, step := range recipe.Steps {
		missing := map[string]bool{}
		lookup := func(name string) string {
			if value, ok := recipe.Variables[name]; ok {
				return value
			}
			if value, ok := vars[name]; ok {
				return value
			}
			// the expander also asks for IFS and friends
			if strings.Contains(step.Run, "$"+name) || strings.Contains(step.Run, "${"+name) {
				missing[name] = true
			}
			return ""
		}

		fields, err := shell.Fields(step.Run, lookup)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if len(missing) > 0 {
			names := make([]string, 0, len(missing))
			for name := range missing {
				names = append(names, name)
			}
			sort.Strings(names)
			return nil, fmt.Errorf("step %d: undefined variables: %s", i+1, strings.Join(names, ", "))
		}
		if len(fields) == 0 {
			return nil, fmt.Errorf("step %d: empty command", i+1)
		}

		commands = append(commands, fields)
	}
	return commands, nil
}
