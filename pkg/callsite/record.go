// Package callsite defines the normalized call-site records handed to the
// classification engine by a source normalizer.
package callsite

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type valueKind int

const (
	kindIndeterminate valueKind = iota
	kindNumber
	kindString
)

// ParamValue is either a literal (number or string) or Indeterminate.
// The zero value is Indeterminate.
type ParamValue struct {
	kind valueKind
	num  float64
	str  string
}

// Number returns a numeric literal.
func Number(n float64) ParamValue {
	return ParamValue{kind: kindNumber, num: n}
}

// String returns a string literal.
func String(s string) ParamValue {
	return ParamValue{kind: kindString, str: s}
}

// Indeterminate marks a parameter that could not be statically resolved.
func Indeterminate() ParamValue {
	return ParamValue{kind: kindIndeterminate}
}

func (v ParamValue) IsIndeterminate() bool {
	return v.kind == kindIndeterminate
}

// Int returns the value as an integer. Integral numbers and numeric strings convert.
func (v ParamValue) Int() (int64, bool) {
	switch v.kind {
	case kindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) || v.num != math.Trunc(v.num) {
			return 0, false
		}
		// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
		if v.num >= 1<<63 || v.num < math.MinInt64 {
			return 0, false
		}
		return int64(v.num), true
	case kindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.str), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Text returns the value as a string. Numbers are formatted without exponent.
func (v ParamValue) Text() (string, bool) {
	switch v.kind {
	case kindString:
		return v.str, true
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64), true
	default:
		return "", false
	}
}

func (v ParamValue) String() string {
	if v.kind == kindIndeterminate {
		return "<indeterminate>"
	}
	s, _ := v.Text()
	return s
}

func (v ParamValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		return json.Marshal(v.num)
	case kindString:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

func (v *ParamValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return v.fromRaw(raw)
}

func (v ParamValue) MarshalYAML() (interface{}, error) {
	switch v.kind {
	case kindNumber:
		if n, ok := v.Int(); ok {
			return n, nil
		}
		return v.num, nil
	case kindString:
		return v.str, nil
	default:
		return nil, nil
	}
}

func (v *ParamValue) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	return v.fromRaw(raw)
}

func (v *ParamValue) fromRaw(raw interface{}) error {
	switch val := raw.(type) {
	case nil:
		*v = Indeterminate()
	case float64:
		*v = Number(val)
	case int:
		*v = Number(float64(val))
	case int64:
		*v = Number(float64(val))
	case uint64:
		*v = Number(float64(val))
	case string:
		*v = String(val)
	default:
		return fmt.Errorf("unsupported parameter value %v of type %T", raw, raw)
	}
	return nil
}

// Location points at the call expression in a source artifact.
type Location struct {
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Record is one observed invocation of a cryptographic primitive.
type Record struct {
	Family     string                `json:"family" yaml:"family"`
	Parameters map[string]ParamValue `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Location   Location              `json:"location" yaml:"location"`
	Symbol     string                `json:"symbol,omitempty" yaml:"symbol,omitempty"`
}

// Param returns the named parameter and whether the record carries it at all.
func (r Record) Param(name string) (ParamValue, bool) {
	v, ok := r.Parameters[name]
	return v, ok
}
