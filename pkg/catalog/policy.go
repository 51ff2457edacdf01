package catalog

import (
	"fmt"

	"github.com/scan-io-git/cryptoscan/pkg/classification"
)

// Policy is the versioned severity and remediation table of a catalog.
type Policy struct {
	Severity    map[classification.Tag]classification.Severity
	Remediation map[classification.Tag]string
	RiskScores  map[classification.Severity]int
}

// DefaultPolicy returns the built-in severity table.
func DefaultPolicy() Policy {
	return Policy{
		Severity: map[classification.Tag]classification.Severity{
			classification.QuantumVulnerable: classification.SeverityCritical,
			classification.ClassicallyWeak:   classification.SeverityHigh,
			classification.Deprecated:        classification.SeverityMedium,
			classification.Indeterminate:     classification.SeverityUnknown,
			classification.Acceptable:        classification.SeverityLow,
		},
		Remediation: map[classification.Tag]string{
			classification.QuantumVulnerable: "Plan migration to post-quantum algorithms: ML-KEM (FIPS 203) for key establishment and ML-DSA (FIPS 204) for signatures.",
			classification.ClassicallyWeak:   "Replace with a currently approved algorithm or parameter set, for example SHA-256, AES-256-GCM or RSA-3072.",
			classification.Deprecated:        "Remove the withdrawn algorithm and migrate to a supported replacement.",
			classification.Indeterminate:     "Resolve the classification-relevant parameter statically or review the call site manually.",
			classification.Acceptable:        "No action required.",
		},
		RiskScores: map[classification.Severity]int{
			classification.SeverityCritical: 100,
			classification.SeverityHigh:     80,
			classification.SeverityMedium:   50,
			classification.SeverityLow:      10,
			classification.SeverityUnknown:  0,
		},
	}
}

// Merge overlays the entries set in override onto p.
func (p Policy) Merge(override Policy) Policy {
	out := p.clone()
	for k, v := range override.Severity {
		out.Severity[k] = v
	}
	for k, v := range override.Remediation {
		out.Remediation[k] = v
	}
	for k, v := range override.RiskScores {
		out.RiskScores[k] = v
	}
	return out
}

// SeverityFor maps a dominant tag through the severity table.
func (p Policy) SeverityFor(tag classification.Tag) classification.Severity {
	if s, ok := p.Severity[tag]; ok {
		return s
	}
	return classification.SeverityUnknown
}

// RiskScoreFor returns the 0-100 score of a severity.
func (p Policy) RiskScoreFor(s classification.Severity) int {
	return p.RiskScores[s]
}

func (p Policy) validate() error {
	for _, tag := range classification.AllTags {
		if _, ok := p.Severity[tag]; !ok {
			return &CatalogError{Kind: MalformedPolicy, Reason: fmt.Sprintf("no severity for tag %s", tag)}
		}
	}
	for tag := range p.Severity {
		if !tag.Valid() {
			return &CatalogError{Kind: MalformedPolicy, Reason: fmt.Sprintf("severity for unknown tag %q", tag)}
		}
	}
	if err := p.validateOrdering(); err != nil {
		return err
	}
	for tag := range p.Remediation {
		if !tag.Valid() {
			return &CatalogError{Kind: MalformedPolicy, Reason: fmt.Sprintf("remediation for unknown tag %q", tag)}
		}
	}
	for sev, score := range p.RiskScores {
		if score < 0 || score > 100 {
			return &CatalogError{Kind: MalformedPolicy, Reason: fmt.Sprintf("risk score for %s must be between 0 and 100, got %d", sev, score)}
		}
	}
	return nil
}

// validateOrdering keeps severities non-increasing along tag precedence so the
// dominant tag is also the most severe one. Indeterminate may sit below
// Acceptable; it must not rank above Deprecated.
func (p Policy) validateOrdering() error {
	chain := []classification.Tag{
		classification.QuantumVulnerable,
		classification.ClassicallyWeak,
		classification.Deprecated,
		classification.Acceptable,
	}
	for i := 0; i+1 < len(chain); i++ {
		hi, lo := chain[i], chain[i+1]
		if p.Severity[hi] < p.Severity[lo] {
			return &CatalogError{Kind: MalformedPolicy, Reason: fmt.Sprintf("severity of %s (%s) is below severity of %s (%s)", hi, p.Severity[hi], lo, p.Severity[lo])}
		}
	}
	if p.Severity[classification.Indeterminate] > p.Severity[classification.Deprecated] {
		return &CatalogError{Kind: MalformedPolicy, Reason: fmt.Sprintf("severity of %s (%s) is above severity of %s (%s)",
			classification.Indeterminate, p.Severity[classification.Indeterminate], classification.Deprecated, p.Severity[classification.Deprecated])}
	}
	return nil
}

func (p Policy) clone() Policy {
	out := Policy{
		Severity:    make(map[classification.Tag]classification.Severity, len(p.Severity)),
		Remediation: make(map[classification.Tag]string, len(p.Remediation)),
		RiskScores:  make(map[classification.Severity]int, len(p.RiskScores)),
	}
	for k, v := range p.Severity {
		out.Severity[k] = v
	}
	for k, v := range p.Remediation {
		out.Remediation[k] = v
	}
	for k, v := range p.RiskScores {
		out.RiskScores[k] = v
	}
	return out
}
