/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package rootpak

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"github.com/mirkobrombin/rootpak/pkg/logger"
	"golang.org/x/term"
)

// DefaultShell is started by Shell when no command is given.
const DefaultShell = "/bin/bash"

// InteractiveCommand returns the runtime command attaching a terminal to
// args inside the named container.
func (r *Runc) InteractiveCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	if len(args) == 0 {
		args = []string{DefaultShell}
	}
	cmd := r.command(ctx, append([]string{"exec", "-t", name}, args...)...)
	cmd.WaitDelay = 0
	return cmd
}

// Shell runs args inside the named container on a pseudo-terminal wired
// to stdin and stdout. When stdin is a terminal it is put in raw mode
// and its size follows the window.
func (r *Runc) Shell(ctx context.Context, name string, stdin *os.File, stdout io.Writer, args ...string) error {
	cmd := r.InteractiveCommand(ctx, name, args...)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	defer ptmx.Close()

	if term.IsTerminal(int(stdin.Fd())) {
		resize := make(chan os.Signal, 1)
		signal.Notify(resize, syscall.SIGWINCH)
		go func() {
			for range resize {
				if err := pty.InheritSize(stdin, ptmx); err != nil {
					logger.Debugf("failed to resize pty: %v", err)
				}
			}
		}()
		resize <- syscall.SIGWINCH
		defer func() {
			signal.Stop(resize)
			close(resize)
		}()

		oldState, err := term.MakeRaw(int(stdin.Fd()))
		if err != nil {
			logger.Warnf("could not make terminal raw: %v", err)
		} else {
			defer term.Restore(int(stdin.Fd()), oldState)
		}
	}

	go func() {
		_, _ = io.Copy(ptmx, stdin)
	}()
	// reading the master fails with EIO once the child is gone
	_, _ = io.Copy(stdout, ptmx)

	err = cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &RuntimeError{Op: "exec", Name: name, Err: err}
		}
	}
	return err
}
