package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CopyTree copies src to dst with "cp -a", so device nodes, sparse files,
// hard links, symlinks and ownership survive the copy. dst must not
// exist, its parent must.
//
// Any output from cp is treated as a failure, since cp only writes when
// something could not be reproduced faithfully.
func CopyTree(ctx context.Context, src, dst string) error {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "cp", "-a", "--", src, dst)
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	msg := strings.TrimSpace(out.String())
	if err != nil {
		if msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	if msg != "" {
		return fmt.Errorf("cp reported: %s", msg)
	}

	return nil
}
