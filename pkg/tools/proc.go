package tools

import (
	"github.com/shirou/gopsutil/process"
)

// PidAlive reports whether a process with the given pid exists on the
// host. Pid zero or lookup errors count as not alive.
func PidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	exists, err := process.PidExists(int32(pid))
	if err != nil {
		return false
	}
	return exists
}
