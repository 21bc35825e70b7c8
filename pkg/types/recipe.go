package types

// Recipe is an ordered script of command lines run inside a freshly
// built container.
type Recipe struct {
	Name        string `json:"name" jsonschema:"required,minLength=1"`
	Description string `json:"description,omitempty"`

	// Variables are expanded in the steps as ${NAME}. They take
	// precedence over the variables set in the rootpak options.
	Variables map[string]string `json:"variables,omitempty"`

	Steps []RecipeStep `json:"steps" jsonschema:"required,minItems=1"`
}

// RecipeStep is a single command line. It is tokenized like a shell
// would, but never run through a shell.
type RecipeStep struct {
	Run         string `json:"run" jsonschema:"required,minLength=1"`
	Description string `json:"description,omitempty"`

	// IgnoreFailure keeps the recipe going when the command exits
	// non-zero.
	IgnoreFailure bool `json:"ignore_failure,omitempty"`
}
