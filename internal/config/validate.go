package config

import (
	"fmt"
	"net/url"
	"strings"

	"stepstore/internal/storage"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the config (e.g. "store.kind"). Message is
// human-readable.
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

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation of cfg. It does not mutate cfg;
// callers decide whether warnings are fatal.
func Validate(cfg Config) []Issue {
	var issues []Issue
	issues = append(issues, validateStore(cfg.Store)...)
	issues = append(issues, validateMetrics(cfg.Metrics)...)
	issues = append(issues, validateHTTP(cfg.HTTP)...)
	return issues
}

func validateStore(s Store) []Issue {
	var issues []Issue

	kind := strings.TrimSpace(s.Kind)
	if kind == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "store.kind",
			Message:  "store.kind must not be empty",
		})
	}

	// Only kinds compiled into the binary can be used.
	if _, err := storage.Lookup(kind); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "store.kind",
			Message:  fmt.Sprintf("unknown store kind %q; registered kinds: %s", kind, strings.Join(storage.ListKinds(), ", ")),
		})
	}

	if strings.TrimSpace(s.URI) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "store.uri",
			Message:  "store.uri must not be empty",
		})
	}

	switch kind {
	case "sqlite", "duckdb":
		if strings.TrimSpace(s.Schema) == "" && !storage.IsMemoryURI(s.URI) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "store.schema",
				Message:  "store.schema is empty; the uri is used as the database file path as-is",
			})
		}
	case "postgres", "mysql", "mssql":
		if strings.TrimSpace(s.Username) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "store.username",
				Message:  "store.username is empty; the server may reject the connection",
			})
		}
		if s.Password == "sa" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "store.password",
				Message:  "store.password is the built-in default; set a real password for server databases",
			})
		}
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch strings.TrimSpace(m.Backend) {
	case "", "none":
	case "prometheus":
		if _, err := url.ParseRequestURI(m.PushgatewayURL); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "prometheus backend requires a valid pushgateway_url",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires datadog_addr",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; use none, prometheus or datadog", m.Backend),
		})
	}

	if strings.TrimSpace(m.Job) == "" && m.Backend != "" && m.Backend != "none" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.job",
			Message:  "metrics.job is empty; the backend default is used",
		})
	}
	return issues
}

func validateHTTP(h HTTP) []Issue {
	if strings.TrimSpace(h.Addr) == "" {
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "http.addr",
			Message:  "http.addr is empty; serve listens on :80",
		}}
	}
	return nil
}
