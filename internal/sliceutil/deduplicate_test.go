package sliceutil

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

type district struct {
	ID   int
	Name string
}

func byID(d district) int { return d.ID }

func TestDeduplicate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		items []district
		want  []district
	}{
		{
			name:  "no duplicates",
			items: []district{{1, "หาดใหญ่"}, {2, "เมืองสงขลา"}, {3, "ควนขนุน"}},
			want:  []district{{1, "หาดใหญ่"}, {2, "เมืองสงขลา"}, {3, "ควนขนุน"}},
		},
		{
			name:  "first occurrence kept in order",
			items: []district{{3, "ควนขนุน"}, {1, "หาดใหญ่"}, {3, "ควนขนุน 2"}, {2, "เมืองสงขลา"}, {1, "หาดใหญ่ 2"}},
			want:  []district{{3, "ควนขนุน"}, {1, "หาดใหญ่"}, {2, "เมืองสงขลา"}},
		},
		{
			name:  "all duplicates",
			items: []district{{1, "a"}, {1, "b"}, {1, "c"}},
			want:  []district{{1, "a"}},
		},
		{
			name:  "empty",
			items: []district{},
			want:  []district{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Deduplicate(tt.items, byID))
		})
	}
}

func BenchmarkDeduplicate(b *testing.B) {
	items := make([]district, 1000)
	for i := range items {
		items[i] = district{ID: i % 100, Name: strconv.Itoa(i)}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Deduplicate(items, byID)
	}
}
