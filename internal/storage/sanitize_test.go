package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSearchTerm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain thai", "น้ำตก", "น้ำตก"},
		{"percent", "100%", `100\%`},
		{"underscore", "a_b", `a\_b`},
		{"backslash first", `a\%`, `a\\\%`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizeSearchTerm(tt.input))
		})
	}
}

func TestConditions(t *testing.T) {
	t.Parallel()

	var c conditions
	assert.Empty(t, c.where())

	c.like("c.Category_Name", "  ")
	assert.Empty(t, c.where(), "blank terms must not filter")

	c.like("c.Category_Name", "วัด")
	c.area(Area{Province: "สงขลา"})
	assert.Equal(t, ` WHERE c.Category_Name LIKE ? ESCAPE '\' AND p.Province_Name LIKE ? ESCAPE '\'`, c.where())
	assert.Equal(t, []any{"%วัด%", "%สงขลา%"}, c.args)
}
