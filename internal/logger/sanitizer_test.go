package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_IsSensitive(t *testing.T) {
	s := NewSanitizer(nil)

	tests := []struct {
		name string
		want bool
	}{
		{"Password", true},
		{"password", true},
		{"Password12", true},
		{"ApiKey", true},
		{"api_key0", true},
		{"CreditCard", true},
		{"Token", true},
		{"Name", false},
		{"Name0", false},
		{"Author", false},
		{"SoftDeleteValue", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsSensitive(tt.name))
		})
	}
}

func TestSanitizer_CustomFields(t *testing.T) {
	s := NewSanitizer([]string{"Pin", "mothers_maiden_name"})

	assert.True(t, s.IsSensitive("Pin"))
	assert.True(t, s.IsSensitive("MothersMaidenName3"))
	assert.False(t, s.IsSensitive("Password"), "custom list replaces the defaults")
}

func TestSanitizer_MaskParams(t *testing.T) {
	s := NewSanitizer(nil)

	params := map[string]any{
		"Name0":     "Alice",
		"Password0": "secret123",
		"Id0":       7,
	}
	masked := s.MaskParams(params)

	assert.Equal(t, "Alice", masked["Name0"])
	assert.Equal(t, "***REDACTED***", masked["Password0"])
	assert.Equal(t, 7, masked["Id0"])
	assert.Equal(t, "secret123", params["Password0"], "input must not be modified")

	assert.Empty(t, s.MaskParams(nil))
}

func TestSanitizer_FormatParams(t *testing.T) {
	s := NewSanitizer(nil)

	params := map[string]any{
		"Name":     "Widget",
		"Password": "hunter2",
		"Note":     nil,
	}

	assert.Equal(t, "{Name=Widget, Password=***REDACTED***, Note=NULL}",
		s.FormatParams([]string{"Name", "Password", "Note", "Missing"}, params))
	assert.Equal(t, "{Name=Widget, Note=NULL, Password=***REDACTED***}",
		s.FormatParams(nil, params))
	assert.Equal(t, "{}", s.FormatParams(nil, nil))
}

func TestSanitizer_FormatParamsTruncatesLongValues(t *testing.T) {
	s := NewSanitizer(nil)

	got := s.FormatParams(nil, map[string]any{"Body": strings.Repeat("x", 150)})

	assert.Equal(t, "{Body="+strings.Repeat("x", 100)+"...}", got)
}
