package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchPattern(t *testing.T) {
	tests := []struct {
		query   string
		pattern string
	}{
		{"alice", "alice%"},
		{"Al", "Al%"},
		{"50%", `50\%%`},
		{"a_b", `a\_b%`},
		{`back\slash`, `back\\slash%`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.pattern, searchPattern(tt.query), "query %q", tt.query)
	}
}
