package rootpak

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mirkobrombin/rootpak/pkg/logger"
	"github.com/mirkobrombin/rootpak/pkg/types"
)

// Provisioner runs the whole install and clean flows on top of a
// builder, a lifecycle and a cleaner.
type Provisioner struct {
	Builder   *Builder
	Lifecycle *Lifecycle
	Cleaner   *Cleaner

	// Variables are expanded in recipes after the recipe's own.
	Variables map[string]string

	// Out receives the output of every recipe step.
	Out io.Writer
}

// Install builds a root at dest, boots it as name, runs every step of
// recipe inside it and stops it. A failing step leaves the container
// running so that it can be inspected.
func (p *Provisioner) Install(ctx context.Context, dest, name string, recipe types.Recipe) (err error) {
	// tokenize first, an undefined variable should not cost a build
	commands, err := RecipeCommands(recipe, p.Variables)
	if err != nil {
		return fmt.Errorf("recipe %s: %w", recipe.Name, err)
	}

	root, err := p.Builder.Build(ctx, dest, "")
	if err != nil {
		return
	}

	out, err := p.Lifecycle.Start(ctx, root, name)
	p.write(out)
	if err != nil {
		return
	}

	for i, command := range commands {
		step := recipe.Steps[i]
		desc := step.Description
		if desc == "" {
			desc = strings.Join(command, " ")
		}
		logger.Printf("[%d/%d] %s", i+1, len(commands), desc)

		out, err = p.Lifecycle.Exec(ctx, name, command)
		p.write(out)
		if err != nil {
			if step.IgnoreFailure {
				logger.Warnf("step %d failed, continuing: %v", i+1, err)
				continue
			}
			return fmt.Errorf("step %d failed, %s is still running: %w", i+1, name, err)
		}
	}

	return p.Lifecycle.Stop(ctx, name)
}

// Clean stops name and removes dest together with the layer cache.
func (p *Provisioner) Clean(ctx context.Context, dest, name string) error {
	if err := p.Lifecycle.Stop(ctx, name); err != nil {
		return err
	}
	return p.Cleaner.Purge(dest)
}

func (p *Provisioner) write(out []byte) {
	if p.Out == nil || len(out) == 0 {
		return
	}
	p.Out.Write(out)
}
