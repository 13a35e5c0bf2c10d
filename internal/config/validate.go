package config

import (
	"fmt"
	"strconv"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path names the offending setting using its flag name (e.g. "port",
// "metrics-backend"), or its Config field for settings without a flag
// (InputDir, BatchSize). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation of c. It does not mutate c and never
// touches the network or the filesystem.
func (c Config) Validate() []Issue {
	var issues []Issue
	issues = append(issues, validateStorage(c)...)
	issues = append(issues, validateRuntime(c)...)
	issues = append(issues, validateMetrics(c.Metrics)...)
	return issues
}

func required(path, v string) []Issue {
	if strings.TrimSpace(v) != "" {
		return nil
	}
	return []Issue{{
		Severity: SeverityError,
		Path:     path,
		Message:  path + " must not be empty",
	}}
}

// validateStorage checks the backend kind and its connection parameters.
func validateStorage(c Config) []Issue {
	var issues []Issue

	switch c.Storage {
	case "postgres", "mssql":
		issues = append(issues, required("user", c.User)...)
		issues = append(issues, required("password", c.Password)...)
		issues = append(issues, required("host", c.Host)...)
		issues = append(issues, required("port", c.Port)...)
		issues = append(issues, required("db", c.DB)...)
		if c.Port != "" {
			if n, err := strconv.Atoi(c.Port); err != nil || n < 1 || n > 65535 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     "port",
					Message:  fmt.Sprintf("port %q is not a TCP port number", c.Port),
				})
			}
		}
	case "sqlite":
		issues = append(issues, required("db", c.DB)...)
		if c.Host != "" || c.Port != "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "host",
				Message:  "host and port are ignored by the sqlite backend",
			})
		}
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage",
			Message:  "storage must not be empty",
		})
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage",
			Message:  fmt.Sprintf("unknown storage %q; want postgres, sqlite or mssql", c.Storage),
		})
	}

	return issues
}

// validateRuntime checks the input directory, batch size and datetime list.
func validateRuntime(c Config) []Issue {
	var issues []Issue

	issues = append(issues, required("InputDir", c.InputDir)...)
	if c.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "BatchSize",
			Message:  fmt.Sprintf("batch size must be positive, got %d", c.BatchSize),
		})
	}

	seen := make(map[string]struct{}, len(c.DatetimeColumns))
	for _, col := range c.DatetimeColumns {
		if _, dup := seen[col]; dup {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "datetime_columns",
				Message:  fmt.Sprintf("column %q listed more than once", col),
			})
		}
		seen[col] = struct{}{}
	}

	if _, err := c.Location(); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "timezone",
			Message:  err.Error(),
		})
	}

	return issues
}

// validateMetrics checks that the selected backend has its address.
func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "pushgateway-url",
				Message:  "pushgateway backend requires a pushgateway URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.StatsdAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "statsd-addr",
				Message:  "datadog backend requires a statsd address",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics-backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; want none, pushgateway or datadog", m.Backend),
		})
	}

	return issues
}
