package issuecorrelation

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/scan-io-git/cryptoscan/pkg/classification"
	"github.com/scan-io-git/cryptoscan/pkg/findings"
)

// Comparison is the outcome of checking a scan against a baseline.
type Comparison struct {
	New      []findings.Finding `json:"new"`
	Resolved []findings.Finding `json:"resolved"`
	Matched  int                `json:"matched"`
}

// CountAtLeast counts new findings at or above threshold.
func (c Comparison) CountAtLeast(threshold classification.Severity) int {
	n := 0
	for _, f := range c.New {
		if f.Severity.AtLeast(threshold) {
			n++
		}
	}
	return n
}

// Compare correlates the current report with a baseline report. A nil
// baseline makes every current finding new.
func Compare(current, baseline *findings.Report) Comparison {
	var cur, base []findings.Finding
	if current != nil {
		cur = current.Findings
	}
	if baseline != nil {
		base = baseline.Findings
	}

	c := NewCorrelator(MetadataFromFindings(cur), MetadataFromFindings(base))
	c.Process()

	cmp := Comparison{
		New:      []findings.Finding{},
		Resolved: []findings.Finding{},
	}
	for _, m := range c.UnmatchedNew() {
		cmp.New = append(cmp.New, cur[m.Index])
	}
	for _, m := range c.UnmatchedKnown() {
		cmp.Resolved = append(cmp.Resolved, base[m.Index])
	}
	cmp.Matched = len(cur) - len(cmp.New)
	return cmp
}

// DecodeBaseline reads a JSON report previously written by the classify command.
func DecodeBaseline(r io.Reader) (*findings.Report, error) {
	var report findings.Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode baseline report: %w", err)
	}
	return &report, nil
}

// ReadBaseline loads a baseline report from a file.
func ReadBaseline(path string) (*findings.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open baseline %q: %w", path, err)
	}
	defer f.Close()

	return DecodeBaseline(f)
}
