package conf

import (
	"fmt"
)

// ValidateSettings checks the loaded configuration for inconsistencies that
// would make the agent misbehave at runtime.
func ValidateSettings(settings *Settings) error {
	if settings.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive, got %d", settings.Monitor.Interval)
	}

	seen := make(map[string]bool, len(settings.Monitor.Checks))
	for i := range settings.Monitor.Checks {
		check := &settings.Monitor.Checks[i]
		if check.Path == "" {
			return fmt.Errorf("monitor.checks[%d]: path must not be empty", i)
		}
		if seen[check.Path] {
			return fmt.Errorf("monitor.checks: duplicate path %q", check.Path)
		}
		seen[check.Path] = true

		if check.Warning < 0 || check.Warning > 100 {
			return fmt.Errorf("monitor.checks[%d]: warning threshold %.1f out of range", i, check.Warning)
		}
		if check.Critical < 0 || check.Critical > 100 {
			return fmt.Errorf("monitor.checks[%d]: critical threshold %.1f out of range", i, check.Critical)
		}
		if check.Warning > 0 && check.Critical > 0 && check.Warning > check.Critical {
			return fmt.Errorf("monitor.checks[%d]: warning threshold above critical", i)
		}
	}

	if settings.HTTP.Enabled && settings.HTTP.Port == "" {
		return fmt.Errorf("http.port must be set when http.enabled is true")
	}
	if settings.NATS.Enabled {
		if settings.NATS.URL == "" {
			return fmt.Errorf("nats.url must be set when nats.enabled is true")
		}
		if settings.NATS.Subject == "" {
			return fmt.Errorf("nats.subject must be set when nats.enabled is true")
		}
	}

	return nil
}
