package classification

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tag is a single classification label attached to a finding.
type Tag string

const (
	QuantumVulnerable Tag = "QuantumVulnerable"
	ClassicallyWeak   Tag = "ClassicallyWeak"
	Deprecated        Tag = "Deprecated"
	Indeterminate     Tag = "Indeterminate"
	Acceptable        Tag = "Acceptable"
)

// AllTags lists every tag in precedence order, highest first.
var AllTags = []Tag{QuantumVulnerable, ClassicallyWeak, Deprecated, Indeterminate, Acceptable}

// Precedence returns the rank of a tag; higher wins. Unknown tags rank below Acceptable.
func (t Tag) Precedence() int {
	switch t {
	case QuantumVulnerable:
		return 5
	case ClassicallyWeak:
		return 4
	case Deprecated:
		return 3
	case Indeterminate:
		return 2
	case Acceptable:
		return 1
	default:
		return 0
	}
}

// Valid reports whether t is one of the known tags.
func (t Tag) Valid() bool {
	return t.Precedence() > 0
}

// ParseTag converts a case-insensitive name into a Tag.
func ParseTag(s string) (Tag, error) {
	for _, t := range AllTags {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown classification tag %q", s)
}

// TagSet is an ordered, deduplicated set of tags. Insertion order is kept.
type TagSet struct {
	tags []Tag
}

// NewTagSet builds a set from tags, dropping duplicates.
func NewTagSet(tags ...Tag) TagSet {
	var s TagSet
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add appends t unless it is already present. It returns true when t was added.
func (s *TagSet) Add(t Tag) bool {
	if s.Contains(t) {
		return false
	}
	s.tags = append(s.tags, t)
	return true
}

// Contains reports whether t is in the set.
func (s TagSet) Contains(t Tag) bool {
	for _, existing := range s.tags {
		if existing == t {
			return true
		}
	}
	return false
}

// Tags returns a copy of the tags in insertion order.
func (s TagSet) Tags() []Tag {
	out := make([]Tag, len(s.tags))
	copy(out, s.tags)
	return out
}

func (s TagSet) Len() int {
	return len(s.tags)
}

func (s TagSet) IsEmpty() bool {
	return len(s.tags) == 0
}

// Equal compares two sets including order.
func (s TagSet) Equal(other TagSet) bool {
	if len(s.tags) != len(other.tags) {
		return false
	}
	for i := range s.tags {
		if s.tags[i] != other.tags[i] {
			return false
		}
	}
	return true
}

// Dominant returns the tag with the highest precedence. An empty set has no dominant tag.
func (s TagSet) Dominant() (Tag, bool) {
	if len(s.tags) == 0 {
		return "", false
	}
	best := s.tags[0]
	for _, t := range s.tags[1:] {
		if t.Precedence() > best.Precedence() {
			best = t
		}
	}
	return best, true
}

func (s TagSet) String() string {
	parts := make([]string, len(s.tags))
	for i, t := range s.tags {
		parts[i] = string(t)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (s TagSet) MarshalJSON() ([]byte, error) {
	if s.tags == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.tags)
}

func (s *TagSet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return s.fromStrings(raw)
}

func (s TagSet) MarshalYAML() (interface{}, error) {
	return s.Tags(), nil
}

func (s *TagSet) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw []string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	return s.fromStrings(raw)
}

func (s *TagSet) fromStrings(raw []string) error {
	*s = TagSet{}
	for _, name := range raw {
		t, err := ParseTag(name)
		if err != nil {
			return err
		}
		s.Add(t)
	}
	return nil
}
