// Package steam holds the fixed facts about the Steam client this
// daemon patches: how its remote debugger announces itself, which
// process name it runs under, and where its bootstrap log lives.
package steam

import (
	"fmt"
	"os/user"
	"path/filepath"
)

const (
	// ProcessName is the name the Steam client runs under.
	ProcessName = "steam"

	// SharedJSContextTitle identifies the debuggable context that owns
	// the client UI. Other tabs (store, friends, overlay) are ignored.
	SharedJSContextTitle = "SharedJSContext"

	// DiscoveryURL is the CEF remote-debugging target list.
	DiscoveryURL = "http://localhost:8080/json"

	// VerificationMarker appears as the last bootstrap log line when the
	// client finishes a verification/update cycle.
	VerificationMarker = "Verification complete"
)

// bootstrapLogRelPath is relative to the invoking user's home directory.
const bootstrapLogRelPath = ".local/share/Steam/logs/bootstrap_log.txt"

// BootstrapLogPath resolves the bootstrap log location for the current user.
func BootstrapLogPath() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to resolve current user: %w", err)
	}
	if u.HomeDir == "" {
		return "", fmt.Errorf("no home directory for user %q", u.Username)
	}
	return filepath.Join(u.HomeDir, bootstrapLogRelPath), nil
}
