package thaitext

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"spaces removed", "น้ำตก โตน งาช้าง", "นำตกโตนงาชาง"},
		{"tone marks removed", "ก่ ก้ ก๊ ก๋", "กกกก"},
		{"above and below vowels removed", "กิ กี กึ กื กุ กู", "กกกกกก"},
		{"mai han-akat removed", "วัด", "วด"},
		{"sara am kept", "ทำ", "ทำ"},
		{"latin untouched", "Family Trip", "FamilyTrip"},
		{"tabs and newlines", "วัด\tหาดใหญ่\n", "วดหาดใหญ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"น้ำตกโตนงาช้าง", "วัดหาดใหญ่ใน", "ร้าน กาแฟ บ้านไร่", "เส้นทางท่องเที่ยวสายรักธรรมชาติ",
		"  ", "ก็", "Café", "ฯลฯ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), in)
	}
}

func TestSQLExprCoversEveryMark(t *testing.T) {
	t.Parallel()

	expr := SQLExpr("name")
	assert.True(t, strings.HasSuffix(expr, "''"))
	assert.Contains(t, expr, "REPLACE(name, ' ', '')")
	for r := rune(0x0E00); r <= 0x0E7F; r++ {
		needle := "char(" + strconv.Itoa(int(r)) + ")"
		assert.Equal(t, IsMark(r), strings.Contains(expr, needle), "U+%04X", r)
	}
}

func TestContainsEither(t *testing.T) {
	t.Parallel()

	assert.True(t, ContainsEither("โตนงาช้าง", "น้ำตกโตนงาช้าง"))
	assert.True(t, ContainsEither("น้ำตก โตนงาช้าง", "โตนงาชาง"))
	assert.False(t, ContainsEither("วัด", ""))
	assert.False(t, ContainsEither("ทะเล", "ภูเขา"))
}
