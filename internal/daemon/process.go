package daemon

import (
	"log/slog"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessInspector answers whether a named process is currently running.
type ProcessInspector interface {
	IsRunning(name string) bool
}

// systemInspector scans the OS process table on every call; the answer
// must reflect the current process list, not a cached snapshot.
type systemInspector struct{}

func NewProcessInspector() ProcessInspector {
	return systemInspector{}
}

func (systemInspector) IsRunning(name string) bool {
	procs, err := process.Processes()
	if err != nil {
		slog.Warn("Failed to list processes", "error", err)
		return false
	}

	for _, p := range procs {
		// Name errors are expected for processes that exited mid-scan
		if n, err := p.Name(); err == nil && n == name {
			return true
		}
	}
	return false
}
