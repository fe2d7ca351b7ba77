// Package device supplies the ordered patch list for the hardware the
// daemon runs on. Patch sets are device-specific and ship in the user's
// config file; this package only materializes them.
package device

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/steampatch/steampatchd/internal/patch"
)

// Device names an ordered set of patch rules.
type Device interface {
	Name() string
	Patches() []patch.Rule
}

type configDevice struct {
	name  string
	rules []patch.Rule
}

func (d *configDevice) Name() string          { return d.name }
func (d *configDevice) Patches() []patch.Rule { return d.rules }

type ruleConfig struct {
	File    string `mapstructure:"file"`
	Find    string `mapstructure:"find"`
	Replace string `mapstructure:"replace"`
}

// FromConfig builds a device from the [[patches]] tables in the given
// config. Returns (nil, nil) when no patches are configured; the daemon
// then runs cycles that reload without modifying anything.
func FromConfig(cfg *viper.Viper) (Device, error) {
	var rcs []ruleConfig
	if err := cfg.UnmarshalKey("patches", &rcs); err != nil {
		return nil, fmt.Errorf("invalid patches config: %w", err)
	}
	if len(rcs) == 0 {
		return nil, nil
	}

	rules := make([]patch.Rule, 0, len(rcs))
	for i, rc := range rcs {
		if rc.File == "" || rc.Find == "" {
			return nil, fmt.Errorf("patch %d: file and find are required", i+1)
		}
		rules = append(rules, patch.Rule{
			// Paths may reference $HOME etc. so one config works
			// across users.
			TargetFile:      os.ExpandEnv(rc.File),
			TextToFind:      rc.Find,
			ReplacementText: rc.Replace,
		})
	}

	name := cfg.GetString("device.name")
	if name == "" {
		name = "custom"
	}

	return &configDevice{name: name, rules: rules}, nil
}
