// Package scorer maps a classification tag set to a severity tier and remediation advice.
package scorer

import (
	"github.com/scan-io-git/cryptoscan/pkg/catalog"
	"github.com/scan-io-git/cryptoscan/pkg/classification"
)

// Assessment is the scored view of a tag set.
type Assessment struct {
	Dominant    classification.Tag
	Severity    classification.Severity
	Remediation string
	RiskScore   int
}

// Scorer is a pure function of its policy.
type Scorer struct {
	policy catalog.Policy
}

func New(policy catalog.Policy) *Scorer {
	return &Scorer{policy: policy}
}

// Assess picks the dominant tag by precedence and maps it through the policy.
// Signature-specific remediation wins over the policy default. sig may be nil.
func (s *Scorer) Assess(sig *catalog.AlgorithmSignature, tags classification.TagSet) Assessment {
	dominant, ok := tags.Dominant()
	if !ok {
		dominant = classification.Indeterminate
	}

	severity := s.policy.SeverityFor(dominant)
	a := Assessment{
		Dominant:  dominant,
		Severity:  severity,
		RiskScore: s.policy.RiskScoreFor(severity),
	}

	if sig != nil {
		if text, ok := sig.RemediationFor(dominant); ok {
			a.Remediation = text
			return a
		}
	}
	a.Remediation = s.policy.Remediation[dominant]
	return a
}
