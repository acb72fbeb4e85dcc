package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumnam/lumnam-linebot-go/internal/metrics"
)

func rows(values ...string) func(context.Context) ([]string, error) {
	return func(context.Context) ([]string, error) { return values, nil }
}

func TestLadderClimb(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		explicit  []Filter
		build     func(l *Ladder[string])
		wantRows  []string
		wantRung  string
		broadened bool
		wantTried []string
	}{
		{
			name: "first rung answers",
			build: func(l *Ladder[string]) {
				l.Add("category_area", rows("a"))
				l.Add("category_province", rows("b"), FilterDistrict)
			},
			wantRows:  []string{"a"},
			wantRung:  "category_area",
			wantTried: []string{"category_area"},
		},
		{
			name: "inferred filter is dropped",
			build: func(l *Ladder[string]) {
				l.Add("category_area", rows())
				l.Add("category_province", rows("b"), FilterDistrict)
			},
			wantRows:  []string{"b"},
			wantRung:  "category_province",
			broadened: true,
			wantTried: []string{"category_area", "category_province"},
		},
		{
			name:     "explicit filter is never dropped",
			explicit: []Filter{FilterDistrict},
			build: func(l *Ladder[string]) {
				l.Add("category_area", rows())
				l.Add("category_province", rows("b"), FilterDistrict)
				l.Add("category_only", rows("c"), FilterDistrict, FilterProvince)
			},
			wantTried: []string{"category_area"},
		},
		{
			name:     "rung keeping explicit filters still runs",
			explicit: []Filter{FilterProvince},
			build: func(l *Ladder[string]) {
				l.Add("category_area", rows())
				l.Add("category_province", rows("b"), FilterDistrict)
				l.Add("category_only", rows("c"), FilterDistrict, FilterProvince)
			},
			wantRows:  []string{"b"},
			wantRung:  "category_province",
			broadened: true,
			wantTried: []string{"category_area", "category_province"},
		},
		{
			name: "nothing found",
			build: func(l *Ladder[string]) {
				l.Add("type_area_days", rows())
				l.Add("type_only", rows(), FilterTripDays)
			},
			wantTried: []string{"type_area_days", "type_only"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := NewLadder[string]("TestIntent", nil, tt.explicit...)
			tt.build(l)
			out, err := l.Climb(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.wantRows, out.Rows)
			assert.Equal(t, tt.wantRung, out.Rung)
			assert.Equal(t, tt.broadened, out.Broadened)
			assert.Equal(t, tt.wantTried, out.Tried)
			assert.Equal(t, len(tt.wantRows) > 0, out.Found())
		})
	}
}

func TestLadderStopsOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("database is locked")
	called := false
	l := NewLadder[string]("TestIntent", nil)
	l.Add("first", func(context.Context) ([]string, error) { return nil, boom })
	l.Add("second", func(context.Context) ([]string, error) {
		called = true
		return []string{"x"}, nil
	})

	out, err := l.Climb(context.Background())
	require.ErrorIs(t, err, boom)
	assert.False(t, called)
	assert.False(t, out.Found())
}

func TestLadderRecordsRung(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())

	found := NewLadder[string]("ListCategoryAttractions", m)
	found.Add("category_area", rows())
	found.Add("category_province", rows("b"), FilterDistrict)
	_, err := found.Climb(context.Background())
	require.NoError(t, err)

	missing := NewLadder[string]("ListCategoryAttractions", m)
	missing.Add("category_area", rows())
	_, err = missing.Climb(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(m.LadderRungTotal.WithLabelValues("ListCategoryAttractions", "category_province")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.LadderRungTotal.WithLabelValues("ListCategoryAttractions", "not_found")), 0)
}

func TestDescribeArea(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "อ.หาดใหญ่ จ.สงขลา", describeArea("สงขลา", "หาดใหญ่"))
	assert.Equal(t, "จ.พัทลุง", describeArea("พัทลุง", ""))
	assert.Equal(t, "อ.ควนขนุน", describeArea("", "ควนขนุน"))
	assert.Empty(t, describeArea("", ""))
}
