package sarif

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/cryptoscan/pkg/callsite"
	"github.com/scan-io-git/cryptoscan/pkg/classification"
	"github.com/scan-io-git/cryptoscan/pkg/compliance"
	"github.com/scan-io-git/cryptoscan/pkg/findings"
)

func sampleReport() *findings.Report {
	return &findings.Report{
		ScanID:         "scan-1",
		CatalogVersion: "2026.1",
		CatalogDigest:  "abc",
		Total:          3,
		Compliance:     compliance.AssessSC13(map[classification.Severity]int{classification.SeverityCritical: 2, classification.SeverityMedium: 1}, false),
		Findings: []findings.Finding{
			{
				Record: callsite.Record{
					Family:   "RSA",
					Location: callsite.Location{File: "app/keys.py", Line: 12},
					Symbol:   "generate_key",
				},
				Tags:        classification.NewTagSet(classification.QuantumVulnerable, classification.ClassicallyWeak),
				Severity:    classification.SeverityCritical,
				Rationale:   "RSA is factorable.",
				Remediation: "Use ML-KEM.",
				RuleIDs:     []string{"rsa-shor", "rsa-short-key"},
				RiskScore:   100,
				Category:    "asymmetric-encryption",
				References:  []string{"https://example.org/rsa"},
			},
			{
				Record:    callsite.Record{Family: "3DES", Location: callsite.Location{File: "legacy.java"}},
				Tags:      classification.NewTagSet(classification.Deprecated),
				Severity:  classification.SeverityMedium,
				Rationale: "Withdrawn.",
				RuleIDs:   []string{"tdea-withdrawn"},
				RiskScore: 50,
			},
			{
				Record:    callsite.Record{Family: "RSA", Location: callsite.Location{File: "app/other.py", Line: 3}},
				Tags:      classification.NewTagSet(classification.QuantumVulnerable, classification.ClassicallyWeak),
				Severity:  classification.SeverityCritical,
				Rationale: "RSA is factorable.",
				RuleIDs:   []string{"rsa-shor", "rsa-short-key"},
				RiskScore: 100,
			},
		},
	}
}

func TestBuild(t *testing.T) {
	log, err := Build(sampleReport(), ToolMetadata{Version: "1.2.3"})
	require.NoError(t, err)
	require.Len(t, log.Runs, 1)

	run := log.Runs[0]
	assert.Equal(t, DefaultToolName, run.Tool.Driver.Name)
	require.NotNil(t, run.Tool.Driver.Version)
	assert.Equal(t, "1.2.3", *run.Tool.Driver.Version)
	assert.Equal(t, "scan-1", run.Properties["scanId"])
	assert.Equal(t, "2026.1", run.Properties["catalogVersion"])
	assert.Equal(t, false, run.Properties["partial"])
	assert.Equal(t, compliance.NotSatisfied, run.Properties["compliance"].(compliance.Assessment).AssessmentStatus)

	require.Len(t, run.Tool.Driver.Rules, 2, "identical rule keys share one descriptor")
	assert.Equal(t, "RSA/rsa-shor+rsa-short-key", run.Tool.Driver.Rules[0].ID)
	assert.Equal(t, "3DES/tdea-withdrawn", run.Tool.Driver.Rules[1].ID)
	require.NotNil(t, run.Tool.Driver.Rules[0].HelpURI)
	assert.Equal(t, "https://example.org/rsa", *run.Tool.Driver.Rules[0].HelpURI)

	require.Len(t, run.Results, 3)
	first := run.Results[0]
	assert.Equal(t, "error", *first.Level)
	assert.Equal(t, "generate_key", first.Properties["symbol"])
	assert.Equal(t, []string{"QuantumVulnerable", "ClassicallyWeak"}, first.Properties["tags"])
	assert.Equal(t, "QuantumVulnerable", first.Properties["dominantTag"])
	require.NotNil(t, first.PartialFingerprints)
	assert.Equal(t, Fingerprint(sampleReport().Findings[0]), first.PartialFingerprints[fingerprintKey])
	require.NotNil(t, first.Message.Text)
	assert.Contains(t, *first.Message.Text, "RSA usage classified as {QuantumVulnerable, ClassicallyWeak} (critical) in generate_key.")
	require.NotNil(t, first.Locations[0].PhysicalLocation.Region)
	assert.Equal(t, 12, *first.Locations[0].PhysicalLocation.Region.StartLine)

	second := run.Results[1]
	assert.Equal(t, "warning", *second.Level)
	assert.Nil(t, second.Locations[0].PhysicalLocation.Region, "unknown line has no region")
	assert.Equal(t, "legacy.java", *second.Locations[0].PhysicalLocation.ArtifactLocation.URI)

	assert.Equal(t, map[string]int{"error": 2, "warning": 1, "note": 0, "total": 3}, CollectSeverityInfo(log))
}

func TestBuildNilReport(t *testing.T) {
	_, err := Build(nil, ToolMetadata{})
	assert.Error(t, err)
}

func TestPrettyWriteProducesValidJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := Build(sampleReport(), ToolMetadata{Name: "custom"})
	require.NoError(t, err)
	require.NoError(t, log.PrettyWrite(&buf))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2.1.0", doc["version"])
	assert.Contains(t, buf.String(), `"name": "custom"`)
}

func TestEmptyReportHasEmptyResults(t *testing.T) {
	log, err := Build(&findings.Report{CatalogVersion: "1"}, ToolMetadata{})
	require.NoError(t, err)
	assert.Empty(t, log.Runs[0].Results)
	assert.NotNil(t, log.Runs[0].Results)
}

func TestToSarifLevel(t *testing.T) {
	assert.Equal(t, "error", toSarifLevel(classification.SeverityCritical))
	assert.Equal(t, "error", toSarifLevel(classification.SeverityHigh))
	assert.Equal(t, "warning", toSarifLevel(classification.SeverityMedium))
	assert.Equal(t, "note", toSarifLevel(classification.SeverityLow))
	assert.Equal(t, "note", toSarifLevel(classification.SeverityUnknown))
}

func TestFingerprintIgnoresLine(t *testing.T) {
	f := sampleReport().Findings[0]
	moved := f
	moved.Record.Location.Line = 400

	assert.Equal(t, Fingerprint(f), Fingerprint(moved))
	assert.Len(t, Fingerprint(f), 32)

	renamed := f
	renamed.Record.Symbol = "other"
	assert.NotEqual(t, Fingerprint(f), Fingerprint(renamed))
}
