// Package findings holds the report-facing domain model produced by a scan.
package findings

import (
	"strings"

	"github.com/scan-io-git/cryptoscan/pkg/callsite"
	"github.com/scan-io-git/cryptoscan/pkg/classification"
	"github.com/scan-io-git/cryptoscan/pkg/compliance"
)

// Finding is one classified call site. It is immutable once produced.
type Finding struct {
	Record callsite.Record `json:"record"`
	// Family is the catalog family the record resolved to, so aliases and
	// spelling variants share one rule key.
	Family      string                  `json:"family,omitempty"`
	Tags        classification.TagSet   `json:"tags"`
	Severity    classification.Severity `json:"severity"`
	Rationale   string                  `json:"rationale"`
	Remediation string                  `json:"remediation,omitempty"`
	RuleIDs     []string                `json:"rule_ids,omitempty"`
	RiskScore   int                     `json:"risk_score"`

	Category   string   `json:"category,omitempty"`
	References []string `json:"references,omitempty"`
}

// Dominant returns the highest-precedence tag of the finding.
func (f Finding) Dominant() classification.Tag {
	if t, ok := f.Tags.Dominant(); ok {
		return t
	}
	return classification.Indeterminate
}

// CanonicalFamily returns the resolved catalog family, falling back to the
// upper-cased family of the record.
func (f Finding) CanonicalFamily() string {
	if f.Family != "" {
		return f.Family
	}
	return strings.ToUpper(strings.TrimSpace(f.Record.Family))
}

// RuleKey identifies the classification outcome by family and matched rules.
// It is the SARIF rule ID and part of the baseline correlation key.
func (f Finding) RuleKey() string {
	family := f.CanonicalFamily()
	if family == "" {
		family = "unknown"
	}
	if len(f.RuleIDs) == 0 {
		return family + "/unclassified"
	}
	return family + "/" + strings.Join(f.RuleIDs, "+")
}

// Report is the finalized output of a scan.
type Report struct {
	ScanID         string `json:"scan_id,omitempty"`
	CatalogVersion string `json:"catalog_version"`
	CatalogDigest  string `json:"catalog_digest,omitempty"`
	Partial        bool   `json:"partial,omitempty"`

	Total     int     `json:"total"`
	RiskScore float64 `json:"risk_score"`

	Findings        []Finding                       `json:"findings"`
	Summary         map[classification.Tag]int      `json:"summary"`
	SeveritySummary map[classification.Severity]int `json:"severity_summary"`
	Recommendations []string                        `json:"recommendations,omitempty"`
	Compliance      compliance.Assessment           `json:"compliance"`
}

// MaxSeverity returns the highest severity across all findings.
func (r *Report) MaxSeverity() classification.Severity {
	max := classification.SeverityUnknown
	for _, f := range r.Findings {
		if f.Severity > max {
			max = f.Severity
		}
	}
	return max
}

// CountAtLeast returns how many findings are at or above a severity.
func (r *Report) CountAtLeast(threshold classification.Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity.AtLeast(threshold) {
			n++
		}
	}
	return n
}
