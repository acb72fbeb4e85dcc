package stringutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneDigits(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  string
	}{
		{"074-123 456", "074123456"},
		{"+66 81 234 5678", "+66812345678"},
		{"โทร 081-234-5678", "0812345678"},
		{"ไม่มี", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PhoneDigits(tt.input))
		})
	}
}

func TestStripControl(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "น้ำตกเจ็ดชั้น", StripControl("น้ำตก\nเจ็ด\tชั้น\u0000"))
	assert.Equal(t, "ab", StripControl("a\u0085b"))
	assert.Equal(t, "วัด ใหญ่", StripControl("วัด ใหญ่"))
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  string
	}{
		{"www.railway.co.th", "https://www.railway.co.th"},
		{"  https://www.tourismthailand.org ", "https://www.tourismthailand.org"},
		{"HTTP://example.com", "HTTP://example.com"},
		{"//cdn.example.com/x", "https://cdn.example.com/x"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeURL(tt.input))
		})
	}
}

func TestCut(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "วัด", Cut("วัดหาดใหญ่", 3))
	assert.Equal(t, "abc", Cut("abc", 10))
	assert.Equal(t, "abc", Cut("abc", 3))
	assert.Empty(t, Cut("abc", 0))
	assert.Empty(t, Cut("", 5))
}
