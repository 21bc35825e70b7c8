package rootpak

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecCommand re-runs the test binary as TestHelperProcess, which
// plays the runtime.
func fakeExecCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
	return cmd
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 3 {
		fmt.Fprintln(os.Stderr, "missing command")
		os.Exit(2)
	}
	// drop "--" and the binary name
	args = args[2:]

	root := ""
	if args[0] == "--root" {
		root = args[1]
		args = args[2:]
	}

	switch args[0] {
	case "run":
		fmt.Fprintf(os.Stdout, "root=%s args=%s\n", root, strings.Join(args[1:], " "))
		fmt.Fprintln(os.Stderr, "warning: detached")
	case "exec":
		rest := args[1:]
		tty := rest[0] == "-t"
		if tty {
			rest = rest[1:]
		}
		name, command := rest[0], rest[1:]
		if name == "missing" {
			fmt.Fprintln(os.Stderr, "container does not exist")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stdout, "tty=%t %s\n", tty, strings.Join(command, " "))
		fmt.Fprintln(os.Stderr, "stderr line")
	case "delete":
		if args[1] == "missing" {
			fmt.Fprintln(os.Stderr, "container does not exist")
			os.Exit(1)
		}
	case "state":
		if args[1] == "missing" {
			fmt.Fprintln(os.Stderr, "container does not exist")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stdout, `{"ociVersion":"1.0.2","id":%q,"pid":4242,"status":"running","bundle":"/roots/ltsp","rootfs":"/roots/ltsp","created":"2024-01-01T00:00:00Z","owner":""}`, args[1])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		os.Exit(2)
	}
	os.Exit(0)
}

func newTestRunc(root string) *Runc {
	r := NewRunc("runc", root)
	r.ExecCommand = fakeExecCommand
	return r
}

func TestRuncRun(t *testing.T) {
	out, err := newTestRunc("/run/rootpak").Run(context.Background(), "/roots/ltsp", "c1")
	require.NoError(t, err)
	assert.Contains(t, string(out), "root=/run/rootpak args=-d -b /roots/ltsp c1")
	assert.Contains(t, string(out), "warning: detached", "stderr is merged")
}

func TestRuncExecTTY(t *testing.T) {
	out, err := newTestRunc("").Exec(context.Background(), "c1", true, "apt-get", "update")
	require.NoError(t, err)
	assert.Equal(t, "tty=true apt-get update\n", string(out))
}

func TestRuncExecMerged(t *testing.T) {
	out, err := newTestRunc("").Exec(context.Background(), "c1", false, "kill", "-SIGRTMIN+3", "1")
	require.NoError(t, err)
	assert.Contains(t, string(out), "tty=false kill -SIGRTMIN+3 1")
	assert.Contains(t, string(out), "stderr line")
}

func TestRuncExecFailure(t *testing.T) {
	_, err := newTestRunc("").Exec(context.Background(), "missing", true, "true")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRuntime))

	var rtErr *RuntimeError
	require.True(t, errors.As(err, &rtErr))
	assert.Equal(t, "exec", rtErr.Op)
	assert.Equal(t, "missing", rtErr.Name)
	assert.Contains(t, string(rtErr.Output), "container does not exist")
	assert.Contains(t, err.Error(), "container does not exist")
}

func TestRuncDelete(t *testing.T) {
	r := newTestRunc("")
	_, err := r.Delete(context.Background(), "c1")
	require.NoError(t, err)

	_, err = r.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRuntime)
}

func TestRuncState(t *testing.T) {
	r := newTestRunc("")
	state, err := r.State(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", state.ID)
	assert.Equal(t, 4242, state.Pid)
	assert.Equal(t, specs.StateRunning, state.Status)

	_, err = r.State(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRuntime)
}

func TestNewRuncDefaults(t *testing.T) {
	r := NewRunc("", "")
	assert.Equal(t, "runc", r.BinPath)
	assert.NotNil(t, r.ExecCommand)
}
