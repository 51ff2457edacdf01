// Package catalog holds the registry of cryptographic primitive signatures
// and the ordered rules that classify their parameterizations.
//
// A Catalog is built once, either from the embedded default rule set or from
// a versioned YAML file, and is read-only afterwards. Register must not be
// called concurrently with Lookup; once construction is done a Catalog can be
// shared by any number of goroutines without locking.
package catalog

import (
	"fmt"
	"strings"

	"github.com/scan-io-git/cryptoscan/pkg/classification"
)

// Catalog maps family names and aliases to signatures.
type Catalog struct {
	version    string
	policy     Policy
	signatures []*AlgorithmSignature
	index      map[string]*AlgorithmSignature
}

// New creates an empty catalog for a rule-set version and policy.
func New(version string, policy Policy) (*Catalog, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}
	return &Catalog{
		version: version,
		policy:  policy.clone(),
		index:   make(map[string]*AlgorithmSignature),
	}, nil
}

func (c *Catalog) Version() string {
	return c.version
}

// Policy returns a copy of the severity and remediation policy.
func (c *Catalog) Policy() Policy {
	return c.policy.clone()
}

// Signatures returns the registered signatures in registration order.
func (c *Catalog) Signatures() []*AlgorithmSignature {
	out := make([]*AlgorithmSignature, len(c.signatures))
	copy(out, c.signatures)
	return out
}

// Len returns the number of registered signatures.
func (c *Catalog) Len() int {
	return len(c.signatures)
}

// Lookup finds a signature by family name or alias, case-insensitively.
// Unknown families are not an error.
func (c *Catalog) Lookup(family string) (*AlgorithmSignature, bool) {
	sig, ok := c.index[normalizeName(family)]
	return sig, ok
}

// Register validates a signature with its rules and adds it to the catalog.
// Predicates are compiled here so that scanning never meets a broken rule.
func (c *Catalog) Register(signature AlgorithmSignature, rules []ClassificationRule) error {
	family := strings.TrimSpace(signature.Family)
	if family == "" {
		return &CatalogError{Kind: MalformedSignature, Reason: "family name must not be empty"}
	}
	if !signature.Kind.Valid() {
		return &CatalogError{Kind: MalformedSignature, Family: family, Reason: fmt.Sprintf("unknown kind %q", signature.Kind)}
	}

	names := append([]string{family}, signature.Aliases...)
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		key := normalizeName(name)
		if key == "" {
			return &CatalogError{Kind: MalformedSignature, Family: family, Reason: "alias must not be empty"}
		}
		if _, exists := c.index[key]; exists || seen[key] {
			return &CatalogError{Kind: DuplicateSignature, Family: family, Reason: fmt.Sprintf("name %q is already registered", name)}
		}
		seen[key] = true
	}

	for tag := range signature.Remediation {
		if !tag.Valid() {
			return &CatalogError{Kind: MalformedSignature, Family: family, Reason: fmt.Sprintf("remediation for unknown tag %q", tag)}
		}
	}

	compiled, fallback, err := compileRules(family, signature.Kind, rules)
	if err != nil {
		return err
	}

	sig := &AlgorithmSignature{
		Family:      family,
		Aliases:     copyStrings(signature.Aliases),
		Kind:        signature.Kind,
		Category:    signature.Category,
		Description: signature.Description,
		Remediation: copyRemediation(signature.Remediation),
		References:  copyStrings(signature.References),
		rules:       compiled,
		fallback:    fallback,
	}

	c.signatures = append(c.signatures, sig)
	for _, name := range names {
		c.index[normalizeName(name)] = sig
	}
	return nil
}

func compileRules(family string, kind Kind, rules []ClassificationRule) ([]ClassificationRule, int, error) {
	if len(rules) == 0 {
		return nil, -1, &CatalogError{Kind: NonExhaustiveRules, Family: family, Reason: "signature has no rules"}
	}

	compiled := make([]ClassificationRule, 0, len(rules))
	ids := make(map[string]bool, len(rules))
	fallback := -1

	for i, rule := range rules {
		id := strings.TrimSpace(rule.ID)
		if id == "" {
			return nil, -1, ruleError(family, "", fmt.Sprintf("rule #%d has no id", i+1), nil)
		}
		if ids[id] {
			return nil, -1, ruleError(family, id, "duplicate rule id", nil)
		}
		ids[id] = true

		if rule.Tags.IsEmpty() {
			return nil, -1, ruleError(family, id, "rule assigns no tags", nil)
		}
		for _, tag := range rule.Tags.Tags() {
			if !tag.Valid() {
				return nil, -1, ruleError(family, id, fmt.Sprintf("unknown tag %q", tag), nil)
			}
		}

		r := ClassificationRule{
			ID:        id,
			Param:     strings.TrimSpace(rule.Param),
			When:      strings.TrimSpace(rule.When),
			Tags:      classification.NewTagSet(rule.Tags.Tags()...),
			Rationale: rule.Rationale,
			Fallback:  rule.Fallback,
		}

		if r.Fallback {
			if fallback >= 0 {
				return nil, -1, &CatalogError{Kind: NonExhaustiveRules, Family: family, RuleID: id, Reason: "more than one fallback rule"}
			}
			if r.Param != "" || r.When != "" {
				return nil, -1, ruleError(family, id, "fallback rule must not have a parameter or predicate", nil)
			}
			fallback = i
			compiled = append(compiled, r)
			continue
		}

		if r.When != "" && r.Param == "" {
			return nil, -1, ruleError(family, id, "predicate requires a governing parameter", nil)
		}
		if r.Param != "" {
			param, ok := kind.parameter(r.Param)
			if !ok {
				return nil, -1, ruleError(family, id, fmt.Sprintf("parameter %q is not part of the %s schema", r.Param, kind), nil)
			}
			if r.When != "" {
				pred, err := compilePredicate(param, r.When)
				if err != nil {
					return nil, -1, ruleError(family, id, "invalid predicate", err)
				}
				r.predicate = pred
			}
		}
		compiled = append(compiled, r)
	}

	if fallback < 0 {
		return nil, -1, &CatalogError{Kind: NonExhaustiveRules, Family: family, Reason: "no fallback rule covers the indeterminate or missing-parameter case"}
	}
	return compiled, fallback, nil
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyRemediation(in map[classification.Tag]string) map[classification.Tag]string {
	if in == nil {
		return nil
	}
	out := make(map[classification.Tag]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
