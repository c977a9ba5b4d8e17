package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hub-versions/internal/types"
)

func TestNormalizeMinimal(t *testing.T) {
	tests := []struct {
		raw      string
		rendered string
	}{
		{">=2.9", "2.9"},
		{">=2.12", "2.12"},
		{">2.9", "2.9"},
		{"==2.14.1", "2.14.1"},
		{"~=2.12", "2.12"},
		{">=2.9,<2.12", "2.9"},
		{">=2.9,>=2.10,<2.14", "2.10"},
		{">=2.9,>=2.11", "2.11"},
		// Numeric segment comparison, not lexicographic.
		{">=2.10,>=2.9", "2.10"},
		{">=2.9.5,>=2.10.0", "2.10.0"},
		{">=2.9.9,>=2.9.10", "2.9.10"},
		{">= 2.9.10 , < 2.13", "2.9.10"},
	}

	for _, tt := range tests {
		minimal, status := NormalizeMinimal(tt.raw)
		require.Equal(t, types.RowStatusOK, status, "raw: %q", tt.raw)
		require.NotNil(t, minimal, "raw: %q", tt.raw)
		assert.Equal(t, tt.rendered, minimal.String(), "raw: %q", tt.raw)
	}
}

func TestNormalizeMinimalMissing(t *testing.T) {
	// No lower bound anywhere: nothing may be fabricated.
	for _, raw := range []string{"", "   ", "<2.12", "<=2.13", "!=2.11", "<2.12,!=2.10"} {
		minimal, status := NormalizeMinimal(raw)
		assert.Equal(t, types.RowStatusMissing, status, "raw: %q", raw)
		assert.Nil(t, minimal, "raw: %q", raw)
	}
}

func TestNormalizeMinimalParseError(t *testing.T) {
	for _, raw := range []string{"2.9", ">=", ">=banana", "garbage", ">=2.9,<nope", ">=2.9,"} {
		minimal, status := NormalizeMinimal(raw)
		assert.Equal(t, types.RowStatusParseError, status, "raw: %q", raw)
		assert.Nil(t, minimal, "raw: %q", raw)
	}
}

func TestMinimalVersionString(t *testing.T) {
	assert.Equal(t, "2.9", (&types.MinimalVersion{Major: 2, Minor: 9}).String())
	assert.Equal(t, "2.9.10", (&types.MinimalVersion{Major: 2, Minor: 9, Patch: 10, HasPatch: true}).String())
}
