package daemon

import (
	"os"
	"testing"

	"github.com/shirou/gopsutil/v3/process"
)

func TestSystemInspector_FindsOwnProcess(t *testing.T) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		t.Skipf("cannot inspect own process: %v", err)
	}
	name, err := p.Name()
	if err != nil {
		t.Skipf("cannot resolve own process name: %v", err)
	}

	if !NewProcessInspector().IsRunning(name) {
		t.Errorf("expected %q to be reported as running", name)
	}
}

func TestSystemInspector_UnknownProcess(t *testing.T) {
	if NewProcessInspector().IsRunning("steampatchd-no-such-process") {
		t.Error("expected unknown process to be reported as not running")
	}
}
