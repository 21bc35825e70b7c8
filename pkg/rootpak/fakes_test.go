package rootpak

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mirkobrombin/rootpak/pkg/types"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

// fakePuller writes a tiny filesystem into dest, or fails with err.
// With partial set the filesystem is written before failing.
type fakePuller struct {
	calls      int
	err        error
	partial    bool
	sawDirGone bool
	lastDest   string
}

func (p *fakePuller) Pull(_ context.Context, image, tag, dest string) error {
	p.calls++
	p.lastDest = dest
	_, statErr := os.Stat(dest)
	p.sawDirGone = os.IsNotExist(statErr)
	if p.err != nil && !p.partial {
		return p.err
	}
	if err := os.MkdirAll(filepath.Join(dest, "etc"), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dest, "etc", "os-release"), []byte("ID="+image+"\nTAG="+tag+"\n"), 0644); err != nil {
		return err
	}
	return p.err
}

// fakeRuntime records every call as a single line in log.
type fakeRuntime struct {
	mu  sync.Mutex
	log []string

	runOut    []byte
	runErr    error
	execFunc  func(name string, tty bool, args []string) ([]byte, error)
	deleteErr error
	state     *specs.State
	stateErr  error
}

func (f *fakeRuntime) record(format string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, fmt.Sprintf(format, args...))
}

func (f *fakeRuntime) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.log...)
}

func (f *fakeRuntime) Run(_ context.Context, bundle, name string) ([]byte, error) {
	f.record("run %s %s", bundle, name)
	return f.runOut, f.runErr
}

func (f *fakeRuntime) Exec(_ context.Context, name string, tty bool, args ...string) ([]byte, error) {
	f.record("exec %s %t %s", name, tty, strings.Join(args, " "))
	if f.execFunc != nil {
		return f.execFunc(name, tty, args)
	}
	return nil, nil
}

func (f *fakeRuntime) Delete(_ context.Context, name string) ([]byte, error) {
	f.record("delete %s", name)
	return nil, f.deleteErr
}

func (f *fakeRuntime) State(_ context.Context, name string) (*specs.State, error) {
	f.record("state %s", name)
	return f.state, f.stateErr
}

// waiterFunc adapts a function to Waiter.
type waiterFunc func(ctx context.Context, name string) error

func (f waiterFunc) Wait(ctx context.Context, name string) error {
	return f(ctx, name)
}

// recordingWaiter appends "wait <name>" to the runtime log so ordering
// against runtime calls can be asserted.
func recordingWaiter(rt *fakeRuntime, err error) Waiter {
	return waiterFunc(func(_ context.Context, name string) error {
		rt.record("wait %s", name)
		return err
	})
}

// fakeLocator returns a fixed answer and counts calls.
type fakeLocator struct {
	proxy      string
	found      bool
	candidates []string
}

func (l *fakeLocator) Locate(_ context.Context, candidate string) (string, bool) {
	l.candidates = append(l.candidates, candidate)
	return l.proxy, l.found
}

// fakeRecorder keeps recorder calls in memory.
type fakeRecorder struct {
	built    []types.Container
	statuses []string
	forgot   []string
	err      error
}

func (r *fakeRecorder) RecordBuilt(c types.Container) error {
	r.built = append(r.built, c)
	return r.err
}

func (r *fakeRecorder) RecordStatus(name, root string, status types.ContainerStatus, pid int) error {
	r.statuses = append(r.statuses, fmt.Sprintf("%s %s %s %d", name, root, status, pid))
	return r.err
}

func (r *fakeRecorder) Forget(root string) error {
	r.forgot = append(r.forgot, root)
	return r.err
}

// fakePrompter hands out the queued answers, then empty ones.
type fakePrompter struct {
	answers []string
	asked   int
	err     error
}

func (p *fakePrompter) Prompt(string) (string, error) {
	p.asked++
	if p.err != nil {
		return "", p.err
	}
	if len(p.answers) == 0 {
		return "", nil
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}
