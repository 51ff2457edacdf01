package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scan-io-git/cryptoscan/pkg/classification"
)

func TestAssessSC13(t *testing.T) {
	tests := []struct {
		name       string
		counts     map[classification.Severity]int
		partial    bool
		wantImpl   ImplementationStatus
		wantAssess AssessmentStatus
		weaknesses int
	}{
		{"clean scan", map[classification.Severity]int{classification.SeverityLow: 3}, false, Implemented, Satisfied, 0},
		{"empty scan", nil, false, Implemented, Satisfied, 0},
		{"any critical", map[classification.Severity]int{classification.SeverityCritical: 1}, false, PartiallyImplemented, NotSatisfied, 1},
		{"too many high", map[classification.Severity]int{classification.SeverityHigh: 6}, false, PartiallyImplemented, NotSatisfied, 6},
		{"few high", map[classification.Severity]int{classification.SeverityHigh: 5, classification.SeverityMedium: 2}, false, PartiallyImplemented, Other, 7},
		{"medium only", map[classification.Severity]int{classification.SeverityMedium: 1}, false, Implemented, Other, 1},
		{"unassessed call sites", map[classification.Severity]int{classification.SeverityUnknown: 1}, false, Implemented, Other, 0},
		{"partial scan", map[classification.Severity]int{classification.SeverityLow: 1}, true, Implemented, Other, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessSC13(tt.counts, tt.partial)
			assert.Equal(t, ControlSC13, got.Control)
			assert.Equal(t, tt.wantImpl, got.ImplementationStatus)
			assert.Equal(t, tt.wantAssess, got.AssessmentStatus)
			assert.Equal(t, tt.weaknesses, got.Weaknesses)
		})
	}
}
