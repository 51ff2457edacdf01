// Package sarif renders classification reports as SARIF 2.1.0 logs.
package sarif

import (
	"fmt"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scan-io-git/cryptoscan/pkg/classification"
	"github.com/scan-io-git/cryptoscan/pkg/findings"
)

const (
	DefaultToolName       = "cryptoscan"
	DefaultInformationURI = "https://github.com/scan-io-git/cryptoscan"

	// fingerprintKey names the partial fingerprint used to correlate results across runs.
	fingerprintKey = "cryptoscanFinding/v1"
)

// ToolMetadata describes the driver recorded in the SARIF run.
type ToolMetadata struct {
	Name           string
	Version        string
	InformationURI string
}

func (t ToolMetadata) withDefaults() ToolMetadata {
	if t.Name == "" {
		t.Name = DefaultToolName
	}
	if t.InformationURI == "" {
		t.InformationURI = DefaultInformationURI
	}
	return t
}

// Build converts a finalized report into a SARIF log with a single run.
// Every distinct rule key becomes one reporting descriptor.
func Build(report *findings.Report, tool ToolMetadata) (*sarif.Report, error) {
	if report == nil {
		return nil, fmt.Errorf("report is nil")
	}
	tool = tool.withDefaults()

	out, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(tool.Name, tool.InformationURI)
	if tool.Version != "" {
		run.Tool.Driver.WithVersion(tool.Version)
	}
	run.Properties = sarif.Properties{
		"catalogVersion": report.CatalogVersion,
		"partial":        report.Partial,
		"riskScore":      report.RiskScore,
		"compliance":     report.Compliance,
	}
	if report.ScanID != "" {
		run.Properties["scanId"] = report.ScanID
	}
	if report.CatalogDigest != "" {
		run.Properties["catalogDigest"] = report.CatalogDigest
	}

	for _, f := range report.Findings {
		level := toSarifLevel(f.Severity)
		ruleID := f.RuleKey()

		rule := run.AddRule(ruleID).
			WithName(f.CanonicalFamily()).
			WithDescription(f.Rationale).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level})
		if f.Remediation != "" {
			rule.WithTextHelp(f.Remediation)
		}
		if len(f.References) > 0 {
			rule.WithHelpURI(f.References[0])
		}
		ruleProps := sarif.Properties{"tags": tagStrings(f.Tags)}
		if f.Category != "" {
			ruleProps["category"] = f.Category
		}
		rule.WithProperties(ruleProps)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(resultMessage(f))).
			WithLevel(level).
			WithLocations([]*sarif.Location{toLocation(f)})
		result.Properties = sarif.Properties{
			"tags":        tagStrings(f.Tags),
			"severity":    f.Severity.String(),
			"riskScore":   f.RiskScore,
			"ruleIds":     f.RuleIDs,
			"dominantTag": string(f.Dominant()),
		}
		if f.Record.Symbol != "" {
			result.Properties["symbol"] = f.Record.Symbol
		}
		result.WithPartialFingerPrints(map[string]interface{}{fingerprintKey: Fingerprint(f)})
		run.AddResult(result)
	}

	out.AddRun(run)
	return out, nil
}

// CollectSeverityInfo counts results per SARIF level, plus a total.
func CollectSeverityInfo(log *sarif.Report) map[string]int {
	info := map[string]int{
		"error":   0,
		"warning": 0,
		"note":    0,
		"total":   0,
	}
	for _, run := range log.Runs {
		for _, result := range run.Results {
			level := "note"
			if result.Level != nil {
				level = *result.Level
			}
			info[level]++
			info["total"]++
		}
	}
	return info
}

// toSarifLevel maps severities onto the three SARIF result levels.
func toSarifLevel(sev classification.Severity) string {
	switch sev {
	case classification.SeverityCritical, classification.SeverityHigh:
		return "error"
	case classification.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
