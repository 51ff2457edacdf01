// Package issuecorrelation matches findings of the current scan against a
// baseline scan so that only new findings need attention.
package issuecorrelation

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/scan-io-git/cryptoscan/pkg/classification"
	"github.com/scan-io-git/cryptoscan/pkg/findings"
)

// FindingMetadata is the subset of a finding used for correlation.
//   - Index: position in the originating report, not used for matching.
//   - Family, RuleKey: identify the classification outcome.
//   - Filename, Line, Symbol: where the call site lives.
//   - Severity: a current finding never correlates to a less severe known one.
type FindingMetadata struct {
	Index    int
	Family   string
	RuleKey  string
	Filename string
	Line     int
	Symbol   string
	Severity classification.Severity
}

// MetadataFromFindings projects findings into correlation metadata.
func MetadataFromFindings(list []findings.Finding) []FindingMetadata {
	out := make([]FindingMetadata, len(list))
	for i, f := range list {
		out[i] = FindingMetadata{
			Index:    i,
			Family:   strings.ToUpper(f.CanonicalFamily()),
			RuleKey:  strings.ToUpper(f.RuleKey()),
			Filename: filepath.ToSlash(filepath.Clean(f.Record.Location.File)),
			Line:     f.Record.Location.Line,
			Symbol:   f.Record.Symbol,
			Severity: f.Severity,
		}
	}
	return out
}

// Match groups a known finding with the current findings correlated to it.
// A current finding may appear in several matches.
type Match struct {
	Known FindingMetadata
	New   []FindingMetadata
}

// Correlator computes many-to-many correlations between current and known
// findings. Call Process, then inspect Matches, UnmatchedNew and UnmatchedKnown.
type Correlator struct {
	NewFindings   []FindingMetadata
	KnownFindings []FindingMetadata

	knownToNew map[int][]int
	newToKnown map[int][]int

	processed bool
}

func NewCorrelator(newFindings, knownFindings []FindingMetadata) *Correlator {
	return &Correlator{
		NewFindings:   newFindings,
		KnownFindings: knownFindings,
	}
}

// Process runs four ordered stages. A finding matched in one stage is
// excluded from later ones, but may match several findings within its stage.
//  1. family + rules + file + line + symbol
//  2. family + rules + file + symbol
//  3. family + rules + file + line
//  4. family + file + line
//
// Process is idempotent.
func (c *Correlator) Process() {
	if c.processed {
		return
	}
	c.knownToNew = make(map[int][]int)
	c.newToKnown = make(map[int][]int)

	matchedKnown := make(map[int]bool)
	matchedNew := make(map[int]bool)

	for _, stage := range []int{1, 2, 3, 4} {
		matchedKnownThis := make(map[int]bool)
		matchedNewThis := make(map[int]bool)

		for ki, k := range c.KnownFindings {
			if matchedKnown[ki] {
				continue
			}
			for ni, n := range c.NewFindings {
				if matchedNew[ni] {
					continue
				}
				if matchStage(k, n, stage) {
					c.knownToNew[ki] = append(c.knownToNew[ki], ni)
					c.newToKnown[ni] = append(c.newToKnown[ni], ki)
					matchedKnownThis[ki] = true
					matchedNewThis[ni] = true
				}
			}
		}

		for ki := range matchedKnownThis {
			matchedKnown[ki] = true
		}
		for ni := range matchedNewThis {
			matchedNew[ni] = true
		}
	}

	c.processed = true
}

// matchStage requires a family and a filename on both sides for every stage,
// and the current finding b must not be more severe than the known finding a.
// Stage 2 additionally needs a symbol, otherwise any two findings of the same
// rule in a file would correlate.
func matchStage(a, b FindingMetadata, stage int) bool {
	if a.Family == "" || b.Family == "" || a.Family != b.Family {
		return false
	}
	if a.Filename != b.Filename {
		return false
	}
	if b.Severity > a.Severity {
		return false
	}

	sameRules := a.RuleKey == b.RuleKey
	switch stage {
	case 1:
		return sameRules && a.Line == b.Line && a.Symbol == b.Symbol
	case 2:
		return sameRules && a.Symbol != "" && a.Symbol == b.Symbol
	case 3:
		return sameRules && a.Line == b.Line
	case 4:
		return a.Line == b.Line
	default:
		return false
	}
}

// UnmatchedNew returns current findings with no correlated known finding.
func (c *Correlator) UnmatchedNew() []FindingMetadata {
	c.Process()

	var out []FindingMetadata
	for ni, n := range c.NewFindings {
		if len(c.newToKnown[ni]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// UnmatchedKnown returns known findings with no correlated current finding.
func (c *Correlator) UnmatchedKnown() []FindingMetadata {
	c.Process()

	var out []FindingMetadata
	for ki, k := range c.KnownFindings {
		if len(c.knownToNew[ki]) == 0 {
			out = append(out, k)
		}
	}
	return out
}

// Matches returns one entry per matched known finding, ordered by known index.
func (c *Correlator) Matches() []Match {
	c.Process()

	knownIdxs := make([]int, 0, len(c.knownToNew))
	for ki := range c.knownToNew {
		knownIdxs = append(knownIdxs, ki)
	}
	sort.Ints(knownIdxs)

	var out []Match
	for _, ki := range knownIdxs {
		newIdxs := c.knownToNew[ki]
		m := Match{Known: c.KnownFindings[ki], New: make([]FindingMetadata, 0, len(newIdxs))}
		for _, ni := range newIdxs {
			m.New = append(m.New, c.NewFindings[ni])
		}
		out = append(out, m)
	}
	return out
}
