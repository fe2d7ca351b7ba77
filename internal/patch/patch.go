// Package patch applies ordered find/replace rules to text files on
// disk, reading and writing each distinct file at most once per batch.
package patch

import (
	"fmt"
	"os"
	"strings"
)

// Rule is one literal substring substitution scoped to a single file.
// Rules are applied in list order against the same in-memory buffer,
// so a later rule sees the text produced by earlier rules.
type Rule struct {
	TargetFile      string
	TextToFind      string
	ReplacementText string
}

// Applier applies batches of rules. The read/write functions exist so
// tests can observe file access; the zero value is not usable, use New.
type Applier struct {
	readFile  func(path string) ([]byte, error)
	writeFile func(path string, data []byte, perm os.FileMode) error
}

func New() *Applier {
	return &Applier{
		readFile:  os.ReadFile,
		writeFile: os.WriteFile,
	}
}

// Apply runs all rules in order and writes every touched file back
// exactly once. Replacement hits all occurrences; a rule whose text is
// absent (typically because a previous run already replaced it) is a
// no-op, which makes re-applying the same batch safe.
//
// The first failed read or write aborts the batch and is returned.
// Files written before the failure stay written; callers must treat an
// error as "patches possibly partially applied".
func (a *Applier) Apply(rules []Rule) error {
	buffers := make(map[string]string)
	order := make([]string, 0, len(rules))

	for _, rule := range rules {
		content, ok := buffers[rule.TargetFile]
		if !ok {
			data, err := a.readFile(rule.TargetFile)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", rule.TargetFile, err)
			}
			content = string(data)
			order = append(order, rule.TargetFile)
		}
		buffers[rule.TargetFile] = strings.ReplaceAll(content, rule.TextToFind, rule.ReplacementText)
	}

	for _, path := range order {
		if err := a.writeFile(path, []byte(buffers[path]), fileMode(path)); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	return nil
}

// fileMode keeps the existing file mode where it can be read, since
// clients ship these files with their own permissions.
func fileMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}
