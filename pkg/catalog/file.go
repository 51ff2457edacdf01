package catalog

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"

	"golang.org/x/crypto/sha3"
	"gopkg.in/yaml.v2"

	"github.com/scan-io-git/cryptoscan/pkg/classification"
)

// File is the serialized, versioned form of a catalog.
type File struct {
	Version    string          `yaml:"version"`
	Policy     PolicyFile      `yaml:"policy,omitempty"`
	Signatures []SignatureFile `yaml:"signatures"`
}

// PolicyFile holds policy overrides. Omitted entries keep their defaults.
type PolicyFile struct {
	Severity    map[string]string `yaml:"severity,omitempty"`
	Remediation map[string]string `yaml:"remediation,omitempty"`
	RiskScores  map[string]int    `yaml:"risk_scores,omitempty"`
}

type SignatureFile struct {
	Family      string            `yaml:"family"`
	Aliases     []string          `yaml:"aliases,omitempty"`
	Kind        Kind              `yaml:"kind"`
	Category    string            `yaml:"category,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Remediation map[string]string `yaml:"remediation,omitempty"`
	References  []string          `yaml:"references,omitempty"`
	Rules       []RuleFile        `yaml:"rules"`
}

type RuleFile struct {
	ID        string   `yaml:"id"`
	Param     string   `yaml:"param,omitempty"`
	When      string   `yaml:"when,omitempty"`
	Tags      []string `yaml:"tags"`
	Rationale string   `yaml:"rationale,omitempty"`
	Fallback  bool     `yaml:"fallback,omitempty"`
}

// Load parses a YAML catalog and builds it. Any error aborts the whole load.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return Build(f)
}

// LoadFile reads a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %q: %w", path, err)
	}
	defer fh.Close()

	cat, err := Load(fh)
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", path, err)
	}
	return cat, nil
}

// Build constructs a catalog from its serialized form.
func Build(f File) (*Catalog, error) {
	override, err := f.Policy.decode()
	if err != nil {
		return nil, err
	}

	cat, err := New(f.Version, DefaultPolicy().Merge(override))
	if err != nil {
		return nil, err
	}

	for _, sf := range f.Signatures {
		sig, rules, err := sf.decode()
		if err != nil {
			return nil, err
		}
		if err := cat.Register(sig, rules); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// Export serializes the catalog. Build(c.Export()) yields an equivalent catalog.
func (c *Catalog) Export() File {
	f := File{
		Version: c.version,
		Policy:  encodePolicy(c.policy),
	}
	for _, sig := range c.signatures {
		sf := SignatureFile{
			Family:      sig.Family,
			Aliases:     copyStrings(sig.Aliases),
			Kind:        sig.Kind,
			Category:    sig.Category,
			Description: sig.Description,
			References:  copyStrings(sig.References),
		}
		if len(sig.Remediation) > 0 {
			sf.Remediation = make(map[string]string, len(sig.Remediation))
			for tag, text := range sig.Remediation {
				sf.Remediation[string(tag)] = text
			}
		}
		for _, rule := range sig.rules {
			sf.Rules = append(sf.Rules, RuleFile{
				ID:        rule.ID,
				Param:     rule.Param,
				When:      rule.When,
				Tags:      tagStrings(rule.Tags),
				Rationale: rule.Rationale,
				Fallback:  rule.Fallback,
			})
		}
		f.Signatures = append(f.Signatures, sf)
	}
	return f
}

// Marshal renders the catalog as YAML. yaml.v2 sorts map keys, so the output
// is stable for a given catalog.
func (c *Catalog) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c.Export())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return data, nil
}

// Digest is the hex SHA3-256 of the marshaled catalog. Two catalogs with the
// same digest classify identically.
func (c *Catalog) Digest() (string, error) {
	data, err := c.Marshal()
	if err != nil {
		return "", err
	}
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Equivalent reports whether two catalogs serialize to the same document.
func Equivalent(a, b *Catalog) (bool, error) {
	da, err := a.Marshal()
	if err != nil {
		return false, err
	}
	db, err := b.Marshal()
	if err != nil {
		return false, err
	}
	return bytes.Equal(da, db), nil
}

func (sf SignatureFile) decode() (AlgorithmSignature, []ClassificationRule, error) {
	sig := AlgorithmSignature{
		Family:      sf.Family,
		Aliases:     sf.Aliases,
		Kind:        sf.Kind,
		Category:    sf.Category,
		Description: sf.Description,
		References:  sf.References,
	}
	if len(sf.Remediation) > 0 {
		sig.Remediation = make(map[classification.Tag]string, len(sf.Remediation))
		for key, text := range sf.Remediation {
			tag, err := classification.ParseTag(key)
			if err != nil {
				return sig, nil, &CatalogError{Kind: MalformedSignature, Family: sf.Family, Reason: "invalid remediation entry", Err: err}
			}
			sig.Remediation[tag] = text
		}
	}

	rules := make([]ClassificationRule, 0, len(sf.Rules))
	for _, rf := range sf.Rules {
		tags := classification.NewTagSet()
		for _, raw := range rf.Tags {
			tag, err := classification.ParseTag(raw)
			if err != nil {
				return sig, nil, ruleError(sf.Family, rf.ID, "invalid tag", err)
			}
			tags.Add(tag)
		}
		rules = append(rules, ClassificationRule{
			ID:        rf.ID,
			Param:     rf.Param,
			When:      rf.When,
			Tags:      tags,
			Rationale: rf.Rationale,
			Fallback:  rf.Fallback,
		})
	}
	return sig, rules, nil
}

func (pf PolicyFile) decode() (Policy, error) {
	p := Policy{
		Severity:    make(map[classification.Tag]classification.Severity),
		Remediation: make(map[classification.Tag]string),
		RiskScores:  make(map[classification.Severity]int),
	}
	for key, value := range pf.Severity {
		tag, err := classification.ParseTag(key)
		if err != nil {
			return p, &CatalogError{Kind: MalformedPolicy, Reason: "invalid severity entry", Err: err}
		}
		sev, err := classification.ParseSeverity(value)
		if err != nil {
			return p, &CatalogError{Kind: MalformedPolicy, Reason: fmt.Sprintf("invalid severity for %s", tag), Err: err}
		}
		p.Severity[tag] = sev
	}
	for key, text := range pf.Remediation {
		tag, err := classification.ParseTag(key)
		if err != nil {
			return p, &CatalogError{Kind: MalformedPolicy, Reason: "invalid remediation entry", Err: err}
		}
		p.Remediation[tag] = text
	}
	for key, score := range pf.RiskScores {
		sev, err := classification.ParseSeverity(key)
		if err != nil {
			return p, &CatalogError{Kind: MalformedPolicy, Reason: "invalid risk score entry", Err: err}
		}
		p.RiskScores[sev] = score
	}
	return p, nil
}

func encodePolicy(p Policy) PolicyFile {
	pf := PolicyFile{
		Severity:    make(map[string]string, len(p.Severity)),
		Remediation: make(map[string]string, len(p.Remediation)),
		RiskScores:  make(map[string]int, len(p.RiskScores)),
	}
	for tag, sev := range p.Severity {
		pf.Severity[string(tag)] = sev.String()
	}
	for tag, text := range p.Remediation {
		pf.Remediation[string(tag)] = text
	}
	for sev, score := range p.RiskScores {
		pf.RiskScores[sev.String()] = score
	}
	return pf
}

func tagStrings(s classification.TagSet) []string {
	tags := s.Tags()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, string(t))
	}
	return out
}

// Families lists every family and alias the catalog answers to, sorted.
func (c *Catalog) Families() []string {
	out := make([]string, 0, len(c.index))
	for _, sig := range c.signatures {
		out = append(out, sig.Family)
		out = append(out, sig.Aliases...)
	}
	sort.Strings(out)
	return out
}
