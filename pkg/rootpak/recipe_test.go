package rootpak

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mirkobrombin/rootpak/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRecipe(t *testing.T) {
	recipe, err := LoadRecipe("")
	require.NoError(t, err)
	assert.Equal(t, "ltsp", recipe.Name)
	require.NotEmpty(t, recipe.Steps)
	assert.Equal(t, "apt-get update", recipe.Steps[0].Run)
	assert.Equal(t, "ltsp-update-image", recipe.Steps[len(recipe.Steps)-1].Run)

	commands, err := RecipeCommands(recipe, map[string]string{
		"ROOT_PW":       "s3cret",
		"SSH_SERVER_IP": "10.0.0.1",
	})
	require.NoError(t, err)
	require.Len(t, commands, len(recipe.Steps))

	assert.Equal(t, []string{
		"apt-get", "install",
		"-o", "Dpkg::Options::=--force-confdef",
		"-o", "Dpkg::Options::=--force-confold",
		"-y", "ltsp-server",
	}, commands[1])
	assert.Contains(t, commands, []string{"ltsp-update-sshkeys", "10.0.0.1"})
	assert.Contains(t, commands, []string{"ltsp-chroot", "bash", "-c", "echo root:s3cret | chpasswd"})
	assert.Contains(t, commands, []string{"sed", "s/^[^# ][^ ]* /* /", "-i", "/opt/ltsp/amd64/etc/ssh/ssh_known_hosts"})
}

func TestDefaultRecipePipStep(t *testing.T) {
	recipe, err := LoadRecipe("")
	require.NoError(t, err)

	var pip []types.RecipeStep
	for _, step := range recipe.Steps {
		if strings.Contains(step.Run, "pip3") {
			pip = append(pip, step)
		}
	}
	require.Len(t, pip, 1, "python modules are installed in a single step")
	assert.Equal(t, "ltsp-chroot -r pip3 install box2d matplotlib networkx", pip[0].Run)
	assert.Contains(t, pip[0].Description, "no -y flag")
	assert.Contains(t, recipe.Description, "single pip step")
}

func TestDefaultRecipeNeedsVariables(t *testing.T) {
	recipe, err := LoadRecipe("")
	require.NoError(t, err)

	_, err = RecipeCommands(recipe, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SSH_SERVER_IP")
}

func TestRecipeCommandsPrecedence(t *testing.T) {
	recipe := types.Recipe{
		Name:      "test",
		Variables: map[string]string{"PKG": "vim"},
		Steps: []types.RecipeStep{
			{Run: "apt-get install -y ${PKG} $EXTRA"},
		},
	}

	commands, err := RecipeCommands(recipe, map[string]string{"PKG": "nano", "EXTRA": "htop"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"apt-get", "install", "-y", "vim", "htop"}}, commands)
}

func TestRecipeCommandsErrors(t *testing.T) {
	for name, run := range map[string]string{
		"unterminated quote": `echo "oops`,
		"empty":              "   ",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := RecipeCommands(types.Recipe{Name: "bad", Steps: []types.RecipeStep{{Run: run}}}, nil)
			assert.Error(t, err)
		})
	}
}

func TestValidateRecipe(t *testing.T) {
	violations, err := ValidateRecipe([]byte(`{"name": "x", "steps": [{"run": "true"}]}`))
	require.NoError(t, err)
	assert.Empty(t, violations)

	violations, err = ValidateRecipe([]byte(`{"name": "x", "steps": []}`))
	require.NoError(t, err)
	assert.NotEmpty(t, violations)

	violations, err = ValidateRecipe([]byte(`{"steps": [{"description": "no command"}]}`))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(violations), 2)
}

func TestLoadRecipeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipe.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "mini", "steps": [{"run": "apt-get update", "ignore_failure": true}]}`), 0644))

	recipe, err := LoadRecipe(path)
	require.NoError(t, err)
	assert.Equal(t, "mini", recipe.Name)
	assert.True(t, recipe.Steps[0].IgnoreFailure)

	require.NoError(t, os.WriteFile(path, []byte(`{"name": ""}`), 0644))
	_, err = LoadRecipe(path)
	assert.Error(t, err)
}

func TestRecipeSchema(t *testing.T) {
	out, err := json.Marshal(RecipeSchema())
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &schema))
	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, props, "steps")
	assert.Contains(t, props, "name")
}
