package rootpak

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mirkobrombin/rootpak/pkg/tools"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// Waiter blocks until the named container settles.
type Waiter interface {
	Wait(ctx context.Context, name string) error
}

// Probe reports whether the named container reached the awaited state.
type Probe func(ctx context.Context, name string) (bool, error)

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Poller runs Probe every Interval until it succeeds. Once Timeout
// worth of intervals went by without success it fails with ErrNotReady.
// Time is counted in intervals, not wall clock, so a slow probe extends
// the overall wait.
type Poller struct {
	Probe    Probe
	Interval time.Duration
	Timeout  time.Duration

	// Sleep defaults to a context aware timer.
	Sleep SleepFunc
}

func (p *Poller) Wait(ctx context.Context, name string) error {
	interval := p.Interval
	if interval <= 0 {
		interval = time.Second
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var waited time.Duration
	var lastErr error
	for {
		ready, err := p.Probe(ctx, name)
		if ready {
			return nil
		}
		lastErr = err

		if waited >= p.Timeout {
			break
		}
		if err := sleep(ctx, interval); err != nil {
			return err
		}
		waited += interval
	}

	if lastErr != nil {
		return fmt.Errorf("%w: %s after %s: %w", ErrNotReady, name, p.Timeout, lastErr)
	}
	return fmt.Errorf("%w: %s after %s", ErrNotReady, name, p.Timeout)
}

// FixedDelay waits Delay without looking at the container.
type FixedDelay struct {
	Delay time.Duration
	Sleep SleepFunc
}

func (f *FixedDelay) Wait(ctx context.Context, _ string) error {
	sleep := f.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, f.Delay)
}

// SystemRunningProbe asks systemd inside the container whether boot
// finished. A degraded system counts as up, a failed unit should not
// block provisioning.
func SystemRunningProbe(rt Runtime) Probe {
	return func(ctx context.Context, name string) (bool, error) {
		out, err := rt.Exec(ctx, name, false, "systemctl", "is-system-running")
		if err != nil {
			// is-system-running exits non-zero for anything but
			// "running", the state is still in the output
			var rtErr *RuntimeError
			if !errors.As(err, &rtErr) {
				return false, err
			}
			out = rtErr.Output
		}

		switch lastLine(out) {
		case "running", "degraded":
			return true, nil
		}
		return false, err
	}
}

// StoppedProbe succeeds once the runtime reports the container stopped,
// no longer knows it, or its init process is gone.
func StoppedProbe(rt Runtime) Probe {
	return func(ctx context.Context, name string) (bool, error) {
		state, err := rt.State(ctx, name)
		if err != nil || state == nil {
			return true, nil
		}
		if state.Status == specs.StateStopped {
			return true, nil
		}
		if state.Pid > 0 && !tools.PidAlive(state.Pid) {
			return true, nil
		}
		return false, nil
	}
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
