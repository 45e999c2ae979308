package logger

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultSensitiveParams are the parameter names masked when no explicit
// list is configured.
var DefaultSensitiveParams = []string{
	"password", "passwd", "pwd",
	"token", "api_key", "apikey", "api_token",
	"secret", "auth", "authorization",
	"credit_card", "card_number", "cvv", "cvc",
	"ssn", "social_security",
	"private_key", "priv_key",
}

// rowSuffix matches the row index appended to bulk parameter names.
var rowSuffix = regexp.MustCompile(`\d+$`)

// Sanitizer masks sensitive named parameters before they reach a log line.
// Names are matched case-insensitively after stripping any bulk row suffix
// and separators, so "Password3", "password" and "api_key" / "ApiKey" match.
type Sanitizer struct {
	sensitive map[string]struct{}
	maskValue string
}

// NewSanitizer returns a sanitizer for the given parameter names, or for
// DefaultSensitiveParams when none are given.
func NewSanitizer(sensitiveParams []string) *Sanitizer {
	if len(sensitiveParams) == 0 {
		sensitiveParams = DefaultSensitiveParams
	}

	sensitive := make(map[string]struct{}, len(sensitiveParams))
	for _, name := range sensitiveParams {
		sensitive[normalize(name)] = struct{}{}
	}

	return &Sanitizer{
		sensitive: sensitive,
		maskValue: "***REDACTED***",
	}
}

// IsSensitive reports whether the parameter name is masked.
func (s *Sanitizer) IsSensitive(name string) bool {
	_, ok := s.sensitive[normalize(rowSuffix.ReplaceAllString(name, ""))]
	return ok
}

// MaskParams returns a copy of params with sensitive values replaced.
// The input map is never modified.
func (s *Sanitizer) MaskParams(params map[string]any) map[string]any {
	if len(params) == 0 {
		return params
	}

	masked := make(map[string]any, len(params))
	for name, value := range params {
		if s.IsSensitive(name) {
			masked[name] = s.maskValue
		} else {
			masked[name] = value
		}
	}
	return masked
}

// FormatParams renders params as "{name=value, ...}" in the order of names,
// masking sensitive values. Names missing from params are skipped; a nil
// names slice renders in sorted key order.
func (s *Sanitizer) FormatParams(names []string, params map[string]any) string {
	if len(params) == 0 {
		return "{}"
	}
	if names == nil {
		names = make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	parts := make([]string, 0, len(names))
	for _, name := range names {
		v, ok := params[name]
		if !ok {
			continue
		}
		if s.IsSensitive(name) {
			parts = append(parts, name+"="+s.maskValue)
			continue
		}
		parts = append(parts, name+"="+formatValue(v))
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// formatValue renders one value, truncating long text.
func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}

	str := fmt.Sprintf("%v", v)

	const maxLen = 100
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}

	return str
}

func normalize(name string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(name))
}
