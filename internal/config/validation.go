package config

import (
	"fmt"
	"strings"

	"github.com/scan-io-git/cryptoscan/pkg/classification"
)

const MaxThreads = 64

var supportedFormats = []string{"json", "sarif"}

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateEngineConfig(&cfg.Engine); err != nil {
		return fmt.Errorf("YAML global config: engine directive is invalid: %w", err)
	}
	if err := ValidateReportConfig(&cfg.Report); err != nil {
		return fmt.Errorf("YAML global config: report directive is invalid: %w", err)
	}
	return nil
}

// ValidateEngineConfig checks the engine section.
func ValidateEngineConfig(engine *Engine) error {
	if engine == nil {
		return fmt.Errorf("engine configuration is nil")
	}
	return ValidateThreads(engine.Threads)
}

// ValidateThreads checks the worker count bounds.
func ValidateThreads(n int) error {
	if n < 1 || n > MaxThreads {
		return fmt.Errorf("threads must be between 1 and %d, got %d", MaxThreads, n)
	}
	return nil
}

// ValidateReportConfig checks the report section.
func ValidateReportConfig(report *Report) error {
	if report == nil {
		return fmt.Errorf("report configuration is nil")
	}
	if err := ValidateFormat(report.Format); err != nil {
		return err
	}
	if report.FailOn != "" {
		if _, err := classification.ParseSeverity(report.FailOn); err != nil {
			return fmt.Errorf("fail_on is invalid: %w", err)
		}
	}
	return nil
}

// ValidateFormat checks that a report format is supported.
func ValidateFormat(format string) error {
	for _, f := range supportedFormats {
		if strings.EqualFold(f, format) {
			return nil
		}
	}
	return fmt.Errorf("unsupported report format %q, expected one of: %s", format, strings.Join(supportedFormats, ", "))
}
