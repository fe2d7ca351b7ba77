package steam

import (
	"strings"
	"testing"
)

func TestBootstrapLogPath(t *testing.T) {
	path, err := BootstrapLogPath()
	if err != nil {
		t.Skipf("no user database available: %v", err)
	}

	if !strings.HasSuffix(path, "bootstrap_log.txt") {
		t.Errorf("expected path ending in bootstrap_log.txt, got %q", path)
	}
	if !strings.Contains(path, ".local/share/Steam/logs") {
		t.Errorf("expected path under Steam logs dir, got %q", path)
	}
}
