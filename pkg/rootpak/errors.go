package rootpak

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mirkobrombin/rootpak/pkg/tools"
)

var (
	// ErrNeedsRoot is returned when the base image could not be unpacked
	// because of missing privileges, usually while creating device nodes.
	ErrNeedsRoot = errors.New("root privileges are required to unpack the base image, re-run rootpak as root")

	// ErrCopyFailed is returned when the base filesystem could not be
	// copied into a container root.
	ErrCopyFailed = errors.New("copy failed")

	// ErrRuntime is returned when the OCI runtime exits with an error.
	ErrRuntime = errors.New("runtime call failed")

	// ErrNotReady is returned when a container did not reach the
	// expected state before the readiness timeout.
	ErrNotReady = errors.New("container did not become ready")

	// ErrUnsafePath is returned when an operation would remove "/", the
	// home directory or the layer cache.
	ErrUnsafePath = tools.ErrUnsafePath
)

// CopyError reports a failed copy of the base filesystem into Dest.
type CopyError struct {
	Dest string
	Err  error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("unable to copy to %s: %v", e.Dest, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

func (e *CopyError) Is(target error) bool {
	return target == ErrCopyFailed
}

// RuntimeError carries the output of a failed runtime invocation
// verbatim, so the operator sees exactly what the runtime reported.
type RuntimeError struct {
	Op     string
	Name   string
	Output []byte
	Err    error
}

func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("runtime %s %s: %v", e.Op, e.Name, e.Err)
	if out := strings.TrimSpace(string(e.Output)); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func (e *RuntimeError) Is(target error) bool {
	return target == ErrRuntime
}
