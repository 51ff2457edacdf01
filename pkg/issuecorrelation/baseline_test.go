package issuecorrelation

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/cryptoscan/pkg/callsite"
	"github.com/scan-io-git/cryptoscan/pkg/classification"
	"github.com/scan-io-git/cryptoscan/pkg/findings"
)

func finding(family, file string, line int, sev classification.Severity, rules ...string) findings.Finding {
	return findings.Finding{
		Record:   callsite.Record{Family: family, Location: callsite.Location{File: file, Line: line}},
		Tags:     classification.NewTagSet(classification.ClassicallyWeak),
		Severity: sev,
		RuleIDs:  rules,
	}
}

func TestCompare(t *testing.T) {
	baseline := &findings.Report{Findings: []findings.Finding{
		finding("MD5", "a.go", 3, classification.SeverityHigh, "md5-collisions"),
		finding("DES", "b.go", 9, classification.SeverityHigh, "des-keyspace"),
	}}
	current := &findings.Report{Findings: []findings.Finding{
		finding("md5", "./a.go", 3, classification.SeverityHigh, "md5-collisions"),
		finding("RC4", "c.go", 1, classification.SeverityHigh, "rc4-biases"),
		finding("3DES", "c.go", 2, classification.SeverityMedium, "tdea-withdrawn"),
	}}

	cmp := Compare(current, baseline)
	require.Len(t, cmp.New, 2)
	assert.Equal(t, "RC4", cmp.New[0].Record.Family)
	assert.Equal(t, "3DES", cmp.New[1].Record.Family)
	require.Len(t, cmp.Resolved, 1)
	assert.Equal(t, "DES", cmp.Resolved[0].Record.Family)
	assert.Equal(t, 1, cmp.Matched)

	assert.Equal(t, 1, cmp.CountAtLeast(classification.SeverityHigh))
	assert.Equal(t, 2, cmp.CountAtLeast(classification.SeverityMedium))
}

func TestCompareGatesEscalatedCallSite(t *testing.T) {
	baseline := &findings.Report{Findings: []findings.Finding{
		finding("AES", "a.go", 10, classification.SeverityLow, "aes-default"),
	}}
	current := &findings.Report{Findings: []findings.Finding{
		finding("AES", "a.go", 10, classification.SeverityHigh, "aes-ecb"),
	}}

	cmp := Compare(current, baseline)
	require.Len(t, cmp.New, 1)
	assert.Equal(t, []string{"aes-ecb"}, cmp.New[0].RuleIDs)
	require.Len(t, cmp.Resolved, 1)
	assert.Zero(t, cmp.Matched)
	assert.Equal(t, 1, cmp.CountAtLeast(classification.SeverityHigh))
}

func TestCompareUsesCanonicalFamily(t *testing.T) {
	ec := finding("ECDSA", "sig.go", 4, classification.SeverityCritical, "ec-shor")
	ec.Family = "EC"
	renamed := finding("ec", "sig.go", 4, classification.SeverityCritical, "ec-shor")
	renamed.Family = "EC"

	cmp := Compare(&findings.Report{Findings: []findings.Finding{renamed}}, &findings.Report{Findings: []findings.Finding{ec}})
	assert.Empty(t, cmp.New)
	assert.Equal(t, 1, cmp.Matched)
}

func TestCompareWithoutBaseline(t *testing.T) {
	current := &findings.Report{Findings: []findings.Finding{finding("MD5", "a.go", 1, classification.SeverityHigh)}}

	cmp := Compare(current, nil)
	assert.Len(t, cmp.New, 1)
	assert.Empty(t, cmp.Resolved)
	assert.Zero(t, cmp.Matched)
}

func TestBaselineRoundTrip(t *testing.T) {
	report := &findings.Report{
		CatalogVersion: "2026.1",
		Total:          1,
		Findings: []findings.Finding{{
			Record: callsite.Record{
				Family:     "RSA",
				Parameters: map[string]callsite.ParamValue{"key_size": callsite.Number(1024)},
				Location:   callsite.Location{File: "k.py", Line: 2},
			},
			Tags:     classification.NewTagSet(classification.QuantumVulnerable, classification.ClassicallyWeak),
			Severity: classification.SeverityCritical,
			RuleIDs:  []string{"rsa-shor", "rsa-short-key"},
		}},
	}
	data, err := json.Marshal(report)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "baseline.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := ReadBaseline(path)
	require.NoError(t, err)
	require.Len(t, loaded.Findings, 1)
	assert.Equal(t, classification.SeverityCritical, loaded.Findings[0].Severity)
	assert.True(t, report.Findings[0].Tags.Equal(loaded.Findings[0].Tags))

	cmp := Compare(report, loaded)
	assert.Empty(t, cmp.New)
	assert.Empty(t, cmp.Resolved)
	assert.Equal(t, 1, cmp.Matched)
}

func TestReadBaselineErrors(t *testing.T) {
	_, err := ReadBaseline(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = DecodeBaseline(strings.NewReader("{not json"))
	assert.Error(t, err)

	_, err = DecodeBaseline(bytes.NewReader([]byte(`{"findings":[{"tags":["Bogus"]}]}`)))
	assert.Error(t, err)
}
