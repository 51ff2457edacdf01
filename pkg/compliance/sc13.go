// Package compliance derives a NIST SP 800-53 SC-13 (Cryptographic
// Protection) control assessment from the severity counts of a scan.
package compliance

import "github.com/scan-io-git/cryptoscan/pkg/classification"

const (
	ControlSC13     = "sc-13"
	ControlSC13Name = "Cryptographic Protection"
)

// ImplementationStatus uses the OSCAL implementation-status tokens.
type ImplementationStatus string

const (
	Implemented          ImplementationStatus = "implemented"
	PartiallyImplemented ImplementationStatus = "partial"
)

// AssessmentStatus uses the OSCAL objective-status tokens.
type AssessmentStatus string

const (
	Satisfied    AssessmentStatus = "satisfied"
	NotSatisfied AssessmentStatus = "not-satisfied"
	Other        AssessmentStatus = "other"
)

// highLimit is the number of high-severity findings tolerated before the
// control is considered not satisfied.
const highLimit = 5

// Assessment is the control-level result attached to a scan report.
type Assessment struct {
	Control              string               `json:"control"`
	Name                 string               `json:"name"`
	ImplementationStatus ImplementationStatus `json:"implementation_status"`
	AssessmentStatus     AssessmentStatus     `json:"assessment_status"`
	Weaknesses           int                  `json:"weaknesses"`
}

// AssessSC13 grades the control from per-severity finding counts.
// Medium and above count as weaknesses. Unknown findings and partial scans
// never yield a satisfied verdict.
func AssessSC13(severities map[classification.Severity]int, partial bool) Assessment {
	critical := severities[classification.SeverityCritical]
	high := severities[classification.SeverityHigh]
	weaknesses := critical + high + severities[classification.SeverityMedium]

	a := Assessment{
		Control:    ControlSC13,
		Name:       ControlSC13Name,
		Weaknesses: weaknesses,
	}
	switch {
	case critical > 0 || high > highLimit:
		a.ImplementationStatus, a.AssessmentStatus = PartiallyImplemented, NotSatisfied
	case high > 0:
		a.ImplementationStatus, a.AssessmentStatus = PartiallyImplemented, Other
	case weaknesses > 0 || partial || severities[classification.SeverityUnknown] > 0:
		a.ImplementationStatus, a.AssessmentStatus = Implemented, Other
	default:
		a.ImplementationStatus, a.AssessmentStatus = Implemented, Satisfied
	}
	return a
}
