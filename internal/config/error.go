package config

import (
	"fmt"
	"strings"
)

// ConfigError collects every problem found while loading one file, so a
// broken config is reported in a single pass.
type ConfigError struct {
	Path    string
	Missing []string // ${VAR} references with no value
	Errors  []string // field-level validation failures
}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d problem(s)", e.Path, len(e.Missing)+len(e.Errors))
	for _, name := range e.Missing {
		fmt.Fprintf(&b, "\n  unresolved variable %s", name)
	}
	for _, msg := range e.Errors {
		fmt.Fprintf(&b, "\n  invalid %s", msg)
	}
	return b.String()
}

// HasErrors reports whether anything was recorded.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing)+len(e.Errors) > 0
}
