package sarif

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"
	"golang.org/x/crypto/sha3"

	"github.com/scan-io-git/cryptoscan/pkg/classification"
	"github.com/scan-io-git/cryptoscan/pkg/findings"
)

// Fingerprint is stable across runs as long as the classification outcome,
// file and symbol stay the same. Line numbers are left out so that edits
// above a call site do not change it.
func Fingerprint(f findings.Finding) string {
	h := sha3.New256()
	fmt.Fprintf(h, "%s\x00%s\x00%s", f.RuleKey(), filepath.ToSlash(f.Record.Location.File), f.Record.Symbol)
	return hex.EncodeToString(h.Sum(nil))[:32]
}

func resultMessage(f findings.Finding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s usage classified as %s (%s)", f.CanonicalFamily(), f.Tags, f.Severity)
	if f.Record.Symbol != "" {
		fmt.Fprintf(&b, " in %s", f.Record.Symbol)
	}
	b.WriteString(".")
	if f.Rationale != "" {
		b.WriteString(" ")
		b.WriteString(f.Rationale)
	}
	return b.String()
}

// toLocation emits a region only for positive line numbers; line 0 means unknown.
func toLocation(f findings.Finding) *sarif.Location {
	physical := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewArtifactLocation().WithUri(filepath.ToSlash(f.Record.Location.File)))
	if f.Record.Location.Line > 0 {
		physical.WithRegion(sarif.NewRegion().WithStartLine(f.Record.Location.Line))
	}
	return sarif.NewLocation().WithPhysicalLocation(physical)
}

func tagStrings(tags classification.TagSet) []string {
	out := make([]string, 0, tags.Len())
	for _, t := range tags.Tags() {
		out = append(out, string(t))
	}
	return out
}
