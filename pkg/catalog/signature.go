package catalog

import (
	"fmt"
	"strings"

	"github.com/scan-io-git/cryptoscan/pkg/callsite"
	"github.com/scan-io-git/cryptoscan/pkg/classification"
)

// Kind is the closed set of signature variants. The kind fixes which
// parameters are classification-relevant.
type Kind string

const (
	KindKeyed  Kind = "keyed"  // key_size
	KindCurve  Kind = "curve"  // curve
	KindFixed  Kind = "fixed"  // no parameters
	KindCipher Kind = "cipher" // key_size, mode
)

// ParamType is the binding type of a parameter inside rule predicates.
type ParamType string

const (
	ParamInt    ParamType = "int"
	ParamString ParamType = "string"
)

const (
	ParamKeySize = "key_size"
	ParamCurve   = "curve"
	ParamMode    = "mode"
)

// Parameter describes one classification-relevant parameter.
type Parameter struct {
	Name string
	Type ParamType
}

var kindSchemas = map[Kind][]Parameter{
	KindKeyed:  {{Name: ParamKeySize, Type: ParamInt}},
	KindCurve:  {{Name: ParamCurve, Type: ParamString}},
	KindFixed:  nil,
	KindCipher: {{Name: ParamKeySize, Type: ParamInt}, {Name: ParamMode, Type: ParamString}},
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kindSchemas[k]
	return ok
}

// Parameters returns the parameter schema implied by the kind.
func (k Kind) Parameters() []Parameter {
	schema := kindSchemas[k]
	out := make([]Parameter, len(schema))
	copy(out, schema)
	return out
}

func (k Kind) parameter(name string) (Parameter, bool) {
	for _, p := range kindSchemas[k] {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Bind converts a literal into the value a predicate expects.
// Int parameters need an integral literal; string parameters are trimmed and lower-cased.
func (p Parameter) Bind(v callsite.ParamValue) (interface{}, bool) {
	if v.IsIndeterminate() {
		return nil, false
	}
	switch p.Type {
	case ParamInt:
		n, ok := v.Int()
		if !ok {
			return nil, false
		}
		return n, true
	case ParamString:
		s, ok := v.Text()
		if !ok {
			return nil, false
		}
		return strings.ToLower(strings.TrimSpace(s)), true
	default:
		return nil, false
	}
}

// ClassificationRule is a predicate over at most one parameter plus the tags it assigns.
type ClassificationRule struct {
	ID        string
	Param     string
	When      string
	Tags      classification.TagSet
	Rationale string
	Fallback  bool

	predicate *Predicate
}

// Predicate returns the compiled predicate, or nil when the rule has none.
func (r ClassificationRule) Predicate() *Predicate {
	return r.predicate
}

// AlgorithmSignature identifies a primitive family and owns its ordered rules.
// Signatures are immutable once registered.
type AlgorithmSignature struct {
	Family      string
	Aliases     []string
	Kind        Kind
	Category    string
	Description string
	Remediation map[classification.Tag]string
	References  []string

	rules    []ClassificationRule
	fallback int
}

// Rules returns the rules in declaration order, fallback included.
func (s *AlgorithmSignature) Rules() []ClassificationRule {
	out := make([]ClassificationRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Fallback returns the rule applied when nothing else matched.
func (s *AlgorithmSignature) Fallback() ClassificationRule {
	return s.rules[s.fallback]
}

// Parameter resolves a parameter name against the signature's kind.
func (s *AlgorithmSignature) Parameter(name string) (Parameter, bool) {
	return s.Kind.parameter(name)
}

// RemediationFor returns signature-specific advice for a tag.
func (s *AlgorithmSignature) RemediationFor(tag classification.Tag) (string, bool) {
	text, ok := s.Remediation[tag]
	return text, ok && text != ""
}

func (s *AlgorithmSignature) String() string {
	return fmt.Sprintf("%s(%s)", s.Family, s.Kind)
}
