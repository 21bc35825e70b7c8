/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package rootpak

import (
	"context"

	"github.com/mirkobrombin/rootpak/pkg/logger"
	"github.com/mirkobrombin/rootpak/pkg/types"
)

// powerOffSignal is what systemd handles as a request to halt.
const powerOffSignal = "-SIGRTMIN+3"

// Lifecycle starts, drives and stops one named container at a time.
// Names are trusted to be unique in the runtime namespace.
type Lifecycle struct {
	Runtime     Runtime
	StartWaiter Waiter
	StopWaiter  Waiter

	// Recorder, when set, tracks status changes. Recording failures are
	// logged and never fail the operation.
	Recorder Recorder
}

// NewLifecycle returns a Lifecycle over rt. Nil waiters return as soon
// as the runtime call does.
func NewLifecycle(rt Runtime, start, stop Waiter) *Lifecycle {
	return &Lifecycle{
		Runtime:     rt,
		StartWaiter: start,
		StopWaiter:  stop,
	}
}

// Start runs the container detached and waits for it to boot. The
// runtime output is returned even when waiting fails.
func (l *Lifecycle) Start(ctx context.Context, root, name string) (out []byte, err error) {
	out, err = l.Runtime.Run(ctx, root, name)
	if err != nil {
		return
	}

	if l.StartWaiter != nil {
		logger.Printf("Waiting for %s to boot", name)
		if err = l.StartWaiter.Wait(ctx, name); err != nil {
			return
		}
	}

	pid := 0
	if state, stateErr := l.Runtime.State(ctx, name); stateErr == nil && state != nil {
		pid = state.Pid
	}
	l.record(name, root, types.StatusRunning, pid)

	return
}

// Exec runs command inside the named container and returns its standard
// output. The container state is not checked, a stopped container gets
// whatever error the runtime reports.
func (l *Lifecycle) Exec(ctx context.Context, name string, command []string) ([]byte, error) {
	return l.Runtime.Exec(ctx, name, true, command...)
}

// Stop asks init to power off, waits for it and deletes the container.
// The delete is issued even when the wait times out. Calling Stop on a
// deleted container fails.
func (l *Lifecycle) Stop(ctx context.Context, name string) error {
	if _, err := l.Runtime.Exec(ctx, name, false, "kill", powerOffSignal, "1"); err != nil {
		return err
	}

	if l.StopWaiter != nil {
		if err := l.StopWaiter.Wait(ctx, name); err != nil {
			logger.Warnf("%v, deleting anyway", err)
		}
	}

	if _, err := l.Runtime.Delete(ctx, name); err != nil {
		return err
	}

	l.record(name, "", types.StatusStopped, 0)
	return nil
}

func (l *Lifecycle) record(name, root string, status types.ContainerStatus, pid int) {
	if l.Recorder == nil {
		return
	}
	if err := l.Recorder.RecordStatus(name, root, status, pid); err != nil {
		logger.Warnf("failed to record status of %s: %v", name, err)
	}
}
