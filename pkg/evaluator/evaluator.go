// Package evaluator matches call-site records against catalog signatures.
package evaluator

import (
	"strings"

	"github.com/scan-io-git/cryptoscan/pkg/callsite"
	"github.com/scan-io-git/cryptoscan/pkg/catalog"
	"github.com/scan-io-git/cryptoscan/pkg/classification"
)

// Verdict is the outcome of evaluating one record.
type Verdict struct {
	Signature *catalog.AlgorithmSignature // nil for unknown families
	Tags      classification.TagSet
	RuleIDs   []string
	Rationale string
}

// Evaluator is safe for concurrent use; it only reads the catalog.
type Evaluator struct {
	catalog *catalog.Catalog
}

func New(cat *catalog.Catalog) *Evaluator {
	return &Evaluator{catalog: cat}
}

// outcome of a single rule against a record
type outcome int

const (
	skipped outcome = iota
	matched
	indeterminate
)

// Evaluate classifies a record. It never fails and never returns an empty tag set.
func (e *Evaluator) Evaluate(rec callsite.Record) Verdict {
	sig, ok := e.catalog.Lookup(rec.Family)
	if !ok {
		return Verdict{
			Tags:      classification.NewTagSet(classification.Indeterminate),
			Rationale: "No catalog signature for algorithm family " + quoteFamily(rec.Family) + ".",
		}
	}

	v := Verdict{Signature: sig, Tags: classification.NewTagSet()}
	var rationale []string

	for _, rule := range sig.Rules() {
		if rule.Fallback {
			continue
		}
		switch evaluateRule(sig, rule, rec) {
		case matched:
			for _, t := range rule.Tags.Tags() {
				v.Tags.Add(t)
			}
			v.RuleIDs = append(v.RuleIDs, rule.ID)
			if rule.Rationale != "" {
				rationale = append(rationale, rule.Rationale)
			}
		case indeterminate:
			v.Tags.Add(classification.Indeterminate)
			v.RuleIDs = append(v.RuleIDs, rule.ID)
			rationale = append(rationale, "Parameter "+rule.Param+" could not be resolved for rule "+rule.ID+".")
		}
	}

	if v.Tags.IsEmpty() {
		fb := sig.Fallback()
		for _, t := range fb.Tags.Tags() {
			v.Tags.Add(t)
		}
		v.RuleIDs = append(v.RuleIDs, fb.ID)
		if fb.Rationale != "" {
			rationale = append(rationale, fb.Rationale)
		}
	}

	v.Rationale = strings.Join(rationale, " ")
	return v
}

// evaluateRule applies one non-fallback rule. Any failure to bind or evaluate
// the governing parameter yields indeterminate for this rule alone.
func evaluateRule(sig *catalog.AlgorithmSignature, rule catalog.ClassificationRule, rec callsite.Record) (result outcome) {
	if rule.Param == "" {
		return matched
	}

	value, present := rec.Param(rule.Param)
	if !present {
		return skipped
	}
	if value.IsIndeterminate() {
		return indeterminate
	}

	param, ok := sig.Parameter(rule.Param)
	if !ok {
		return indeterminate
	}
	bound, ok := param.Bind(value)
	if !ok {
		return indeterminate
	}

	pred := rule.Predicate()
	if pred == nil {
		return matched
	}

	defer func() {
		if r := recover(); r != nil {
			result = indeterminate
		}
	}()
	ok, err := pred.Eval(bound)
	if err != nil {
		return indeterminate
	}
	if ok {
		return matched
	}
	return skipped
}

func quoteFamily(family string) string {
	if strings.TrimSpace(family) == "" {
		return "<empty>"
	}
	return `"` + family + `"`
}
