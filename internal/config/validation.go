package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// ValidationError collects multiple validation errors.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: %s", strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Add(msg string) {
	e.Errors = append(e.Errors, msg)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateDetailed performs comprehensive config validation.
func ValidateDetailed(cfg *Config) *ValidationError {
	ve := &ValidationError{}

	if cfg.APIServer.Port < 1 || cfg.APIServer.Port > 65535 {
		ve.Add("apiServer.port must be between 1 and 65535")
	}

	if cfg.Pricing.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Pricing.RefreshSchedule); err != nil {
			ve.Add(fmt.Sprintf("pricing.refreshSchedule %q is not a valid cron expression", cfg.Pricing.RefreshSchedule))
		}
	}

	if cfg.Advisor.Enabled && cfg.Advisor.Timeout < 0 {
		ve.Add("advisor.timeout must be >= 0")
	}

	if cfg.Database.RetentionDays < 0 {
		ve.Add("database.retentionDays must be >= 0")
	}

	if cfg.Audit.MaxEvents < 1 {
		ve.Add("audit.maxEvents must be >= 1")
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}
