// Package aggregator collects findings of a scan in discovery order and
// finalizes them into an immutable report.
package aggregator

import (
	"errors"
	"sync"

	"github.com/scan-io-git/cryptoscan/pkg/classification"
	"github.com/scan-io-git/cryptoscan/pkg/compliance"
	"github.com/scan-io-git/cryptoscan/pkg/findings"
)

// ErrAlreadyFinalized is returned by Add once Finalize has been called.
var ErrAlreadyFinalized = errors.New("aggregator: already finalized")

// Metadata is copied verbatim into the finalized report.
type Metadata struct {
	ScanID         string
	CatalogVersion string
	CatalogDigest  string
}

// Aggregator is safe for concurrent use. Findings keep the order in which
// Add was called; callers that evaluate in parallel must add in input order.
type Aggregator struct {
	mu       sync.Mutex
	meta     Metadata
	findings []findings.Finding
	partial  bool
	report   *findings.Report
}

func New(meta Metadata) *Aggregator {
	return &Aggregator{meta: meta}
}

// Add appends a finding. Identical findings are never merged.
func (a *Aggregator) Add(f findings.Finding) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.report != nil {
		return ErrAlreadyFinalized
	}
	a.findings = append(a.findings, f)
	return nil
}

// MarkPartial flags the report as covering only part of the input.
func (a *Aggregator) MarkPartial() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.report != nil {
		return ErrAlreadyFinalized
	}
	a.partial = true
	return nil
}

// Len returns the number of findings added so far.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.findings)
}

// Finalize builds the report. Later calls return the same report without
// recomputing it.
func (a *Aggregator) Finalize() *findings.Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.report != nil {
		return a.report
	}

	r := &findings.Report{
		ScanID:          a.meta.ScanID,
		CatalogVersion:  a.meta.CatalogVersion,
		CatalogDigest:   a.meta.CatalogDigest,
		Partial:         a.partial,
		Total:           len(a.findings),
		Findings:        make([]findings.Finding, len(a.findings)),
		Summary:         make(map[classification.Tag]int, len(classification.AllTags)),
		SeveritySummary: make(map[classification.Severity]int, len(classification.AllSeverities)),
	}
	copy(r.Findings, a.findings)

	for _, tag := range classification.AllTags {
		r.Summary[tag] = 0
	}
	for _, sev := range classification.AllSeverities {
		r.SeveritySummary[sev] = 0
	}

	seen := make(map[string]bool)
	score := 0
	for _, f := range r.Findings {
		for _, tag := range f.Tags.Tags() {
			r.Summary[tag]++
		}
		r.SeveritySummary[f.Severity]++
		score += f.RiskScore

		if f.Remediation != "" && !seen[f.Remediation] {
			seen[f.Remediation] = true
			r.Recommendations = append(r.Recommendations, f.Remediation)
		}
	}
	if r.Total > 0 {
		r.RiskScore = float64(score) / float64(r.Total)
	}
	r.Compliance = compliance.AssessSC13(r.SeveritySummary, r.Partial)

	a.report = r
	a.findings = nil
	return r
}
