package config

import (
	"fmt"
	"os"

	"vgi/internal/appid"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// Validate checks the configuration for values that would make a run fail
// or surprise the user, returning structured results.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult

	for _, root := range c.Steam.ExtraRoots {
		if _, err := os.Stat(root); err != nil {
			results = append(results, ValidationResult{
				Level:   "warning",
				Message: fmt.Sprintf("extra steam root %q not found", root),
			})
		}
	}

	if !isAllDigits(c.Steam.CompatDataID) {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("compatdata_id %q must be a decimal app id", c.Steam.CompatDataID),
		})
	}

	if c.Shortcut.Name == "" {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: "shortcut name must not be empty",
		})
	}
	if c.Shortcut.Priority < 0 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("shortcut priority %d must be >= 0", c.Shortcut.Priority),
		})
	}
	if c.Shortcut.Icon != "" {
		if _, err := os.Stat(c.Shortcut.Icon); err != nil {
			results = append(results, ValidationResult{
				Level:   "warning",
				Message: fmt.Sprintf("shortcut icon %q not found", c.Shortcut.Icon),
			})
		}
	}

	if c.Watch.TimeoutSec < 0 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("watch timeout_s %d must be >= 0", c.Watch.TimeoutSec),
		})
	}
	if c.Watch.IntervalSec <= 0 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("watch interval_s %d must be > 0", c.Watch.IntervalSec),
		})
	}
	if c.Watch.Marker == "" {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: "watch marker must not be empty",
		})
	}

	if _, err := appid.ParseStrategy(c.AppID.Strategy); err != nil {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("appid strategy %q is not recognized", c.AppID.Strategy),
		})
	}

	return results
}

// HasErrors reports whether any result is an error rather than a warning.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
