package rootpak

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/mirkobrombin/rootpak/pkg/logger"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// Runtime drives containers through an OCI runtime. Every call blocks
// until the runtime process exits.
type Runtime interface {
	// Run starts the bundle detached under name.
	Run(ctx context.Context, bundle, name string) ([]byte, error)

	// Exec runs args inside the named container. With tty set only the
	// standard output is returned, otherwise output is merged.
	Exec(ctx context.Context, name string, tty bool, args ...string) ([]byte, error)

	// Delete releases the runtime resources of a stopped container.
	Delete(ctx context.Context, name string) ([]byte, error)

	// State reports the runtime view of the named container.
	State(ctx context.Context, name string) (*specs.State, error)
}

// ExecCommandFunc builds the command used to invoke the runtime binary,
// replaced in tests.
type ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

// Runc is the Runtime backed by the runc binary, or any runtime sharing
// its command line.
type Runc struct {
	BinPath string

	// Root is passed as --root when set.
	Root string

	ExecCommand ExecCommandFunc

	// WaitDelay bounds how long output pipes are drained after the
	// runtime exits. A detached container inherits them and would keep
	// them open otherwise.
	WaitDelay time.Duration
}

// NewRunc returns a runc runtime using the given binary.
func NewRunc(binPath, root string) *Runc {
	if binPath == "" {
		binPath = "runc"
	}
	return &Runc{
		BinPath:     binPath,
		Root:        root,
		ExecCommand: exec.CommandContext,
		WaitDelay:   2 * time.Second,
	}
}

func (r *Runc) command(ctx context.Context, args ...string) *exec.Cmd {
	full := make([]string, 0, len(args)+2)
	if r.Root != "" {
		full = append(full, "--root", r.Root)
	}
	full = append(full, args...)

	execCommand := r.ExecCommand
	if execCommand == nil {
		execCommand = exec.CommandContext
	}

	logger.Debugf("%s %v", r.BinPath, full)
	cmd := execCommand(ctx, r.BinPath, full...)
	cmd.WaitDelay = r.WaitDelay
	return cmd
}

// combined runs the runtime with stderr merged into the returned output.
func (r *Runc) combined(ctx context.Context, op, name string, args ...string) ([]byte, error) {
	out, err := r.command(ctx, args...).CombinedOutput()
	if errors.Is(err, exec.ErrWaitDelay) {
		err = nil
	}
	if err != nil {
		return out, &RuntimeError{Op: op, Name: name, Output: out, Err: err}
	}
	return out, nil
}

func (r *Runc) Run(ctx context.Context, bundle, name string) ([]byte, error) {
	return r.combined(ctx, "run", name, "run", "-d", "-b", bundle, name)
}

func (r *Runc) Exec(ctx context.Context, name string, tty bool, args ...string) ([]byte, error) {
	if !tty {
		return r.combined(ctx, "exec", name, append([]string{"exec", name}, args...)...)
	}

	out, err := r.command(ctx, append([]string{"exec", "-t", name}, args...)...).Output()
	if errors.Is(err, exec.ErrWaitDelay) {
		err = nil
	}
	if err != nil {
		diag := out
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			diag = append(append([]byte{}, out...), exitErr.Stderr...)
		}
		return out, &RuntimeError{Op: "exec", Name: name, Output: diag, Err: err}
	}
	return out, nil
}

func (r *Runc) Delete(ctx context.Context, name string) ([]byte, error) {
	return r.combined(ctx, "delete", name, "delete", name)
}

func (r *Runc) State(ctx context.Context, name string) (*specs.State, error) {
	out, err := r.command(ctx, "state", name).Output()
	if err != nil {
		var diag []byte
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			diag = exitErr.Stderr
		}
		return nil, &RuntimeError{Op: "state", Name: name, Output: diag, Err: err}
	}

	state := &specs.State{}
	if err := json.Unmarshal(out, state); err != nil {
		return nil, fmt.Errorf("failed to decode state of %s: %w", name, err)
	}
	return state, nil
}
