package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"strings"
	"syscall"
)

// Messages GNU tar prints when it lacks the privileges to recreate an
// entry, typically device nodes or foreign ownership.
var tarPrivilegeMarkers = []string{
	"Cannot mknod",
	"Operation not permitted",
	"Cannot change ownership",
}

// TarUnpackStream unpacks a tar stream into dstPath by piping it to the
// tar binary, preserving permissions, numeric ownership and special
// files. A privilege failure is reported as an *fs.PathError wrapping
// EPERM so that callers can tell it apart from a corrupt stream.
//
// Note: we are not using the tar package from the standard library
// because it does not recreate device nodes and special files.
func TarUnpackStream(ctx context.Context, r io.Reader, dstPath string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "tar", "-xpf", "-", "--numeric-owner", "-C", dstPath)
	cmd.Stdin = r
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		for _, marker := range tarPrivilegeMarkers {
			if strings.Contains(msg, marker) {
				return &fs.PathError{Op: "unpack", Path: dstPath, Err: syscall.EPERM}
			}
		}
		return fmt.Errorf("tar failed: %w: %s", err, msg)
	}

	return nil
}
