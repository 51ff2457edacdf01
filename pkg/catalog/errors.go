package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind names a class of catalog construction failure.
type ErrorKind string

const (
	DuplicateSignature ErrorKind = "DuplicateSignature"
	NonExhaustiveRules ErrorKind = "NonExhaustiveRules"
	MalformedRule      ErrorKind = "MalformedRule"
	MalformedSignature ErrorKind = "MalformedSignature"
	MalformedPolicy    ErrorKind = "MalformedPolicy"
)

// Sentinels for errors.Is checks against a *CatalogError.
var (
	ErrDuplicateSignature = errors.New("duplicate signature")
	ErrNonExhaustiveRules = errors.New("non-exhaustive rules")
	ErrMalformedRule      = errors.New("malformed rule")
	ErrMalformedSignature = errors.New("malformed signature")
	ErrMalformedPolicy    = errors.New("malformed policy")
)

// CatalogError is returned when a catalog cannot be built. It is always fatal.
type CatalogError struct {
	Kind   ErrorKind
	Family string
	RuleID string
	Reason string
	Err    error
}

func (e *CatalogError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if e.Family != "" {
		fmt.Fprintf(&sb, " in signature %q", e.Family)
	}
	if e.RuleID != "" {
		fmt.Fprintf(&sb, " rule %q", e.RuleID)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to the error kind.
func (e *CatalogError) Is(target error) bool {
	return target != nil && target == sentinelFor(e.Kind)
}

func sentinelFor(kind ErrorKind) error {
	switch kind {
	case DuplicateSignature:
		return ErrDuplicateSignature
	case NonExhaustiveRules:
		return ErrNonExhaustiveRules
	case MalformedRule:
		return ErrMalformedRule
	case MalformedSignature:
		return ErrMalformedSignature
	case MalformedPolicy:
		return ErrMalformedPolicy
	default:
		return nil
	}
}

func ruleError(family, ruleID, reason string, err error) *CatalogError {
	return &CatalogError{Kind: MalformedRule, Family: family, RuleID: ruleID, Reason: reason, Err: err}
}
