// Package security provides validation of the identifiers that mapping
// metadata feeds into generated SQL text.
package security

import (
	"fmt"
	"regexp"
	"strings"
)

// Validator validates table, schema, column and alias names before they are
// spliced into statements. Values are always bound as parameters, so only
// identifiers need checking.
type Validator struct {
	patterns   []*regexp.Regexp
	identifier *regexp.Regexp
	strict     bool
}

// ValidatorOption configures the Validator.
type ValidatorOption func(*Validator)

// WithStrict enables strict validation mode (ASCII word identifiers only).
func WithStrict(strict bool) ValidatorOption {
	return func(v *Validator) {
		v.strict = strict
	}
}

// NewValidator creates a new identifier validator with default dangerous patterns.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		patterns: compilePatterns(dangerousPatterns),
		strict:   false,
	}

	for _, opt := range opts {
		opt(v)
	}

	if v.strict {
		v.identifier = strictIdentifier
	} else {
		v.identifier = looseIdentifier
	}

	return v
}

var (
	// strictIdentifier accepts plain ASCII identifiers.
	strictIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	// looseIdentifier also accepts unicode letters, digits, spaces, $ and #,
	// which SQL Server and MySQL allow inside quoted names.
	looseIdentifier = regexp.MustCompile(`^[\p{L}_#][\p{L}\p{N}_$# ]*$`)
)

// dangerousPatterns contains constructs that never belong in an identifier.
var dangerousPatterns = []string{
	`--`,           // SQL comment
	`/\*`,          // C-style comment start
	`\*/`,          // C-style comment end
	`;`,            // statement separator
	`['"\x60\[\]]`, // quote characters
	`\bUNION\s+SELECT\b`,
	`\bDROP\s+`,
	`XP_CMDSHELL`,
}

// ValidateIdentifier checks a single identifier. kind names the identifier in
// the returned error ("table", "column", ...).
func (v *Validator) ValidateIdentifier(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty %s name", kind)
	}

	upper := strings.ToUpper(name)
	for _, pattern := range v.patterns {
		if pattern.MatchString(upper) {
			return fmt.Errorf("%s name %q contains an unsafe construct", kind, name)
		}
	}

	if !v.identifier.MatchString(name) {
		return fmt.Errorf("%s name %q is not a valid identifier", kind, name)
	}

	return nil
}

// ValidateQualified checks a possibly schema-qualified identifier such as
// "dbo.Products", validating every part.
func (v *Validator) ValidateQualified(kind, name string) error {
	for _, part := range strings.Split(name, ".") {
		if err := v.ValidateIdentifier(kind, strings.TrimSpace(part)); err != nil {
			return err
		}
	}
	return nil
}

// compilePatterns compiles string patterns to regexp.Regexp.
func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			// Skip invalid patterns (shouldn't happen with hardcoded patterns)
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}
