package geo

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/lumnam/lumnam-linebot-go/internal/errors"
)

const hatYaiResponse = `{"address":{"county":"อำเภอหาดใหญ่","state":"จังหวัดสงขลา","country":"ประเทศไทย"}}`

func TestReverse(t *testing.T) {
	t.Parallel()

	var gotUA, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(hatYaiResponse))
	}))
	defer srv.Close()

	g := NewGeocoder(srv.URL, "LumNamBot/1.0 (contact: ops@example.com)", time.Second)
	area, err := g.Reverse(context.Background(), Point{7.0, 100.47})
	require.NoError(t, err)

	assert.Equal(t, "หาดใหญ่", area.District)
	assert.Equal(t, "สงขลา", area.Province)
	assert.Equal(t, "LumNamBot/1.0 (contact: ops@example.com)", gotUA)
	assert.Contains(t, gotQuery, "format=jsonv2")
	assert.Contains(t, gotQuery, "accept-language=th")
}

func TestReverseGzipBody(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte(`{"address":{"city":"เขตบางรัก","region":"กรุงเทพมหานคร"}}`))
	require.NoError(t, gz.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	area, err := NewGeocoder(srv.URL, "test", time.Second).Reverse(context.Background(), Point{13.7, 100.5})
	require.NoError(t, err)
	assert.Equal(t, Area{District: "บางรัก", Province: "กรุงเทพมหานคร"}, area)
}

func TestReverseFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "non success status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			check: func(t *testing.T, err error) {
				var upstream *domerrors.UpstreamError
				require.True(t, errors.As(err, &upstream))
				assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>"))
			},
			check: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
		},
		{
			name: "deadline exceeded",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domerrors.ErrTimeout)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			g := NewGeocoder(srv.URL, "test", 100*time.Millisecond)
			_, err := g.Reverse(context.Background(), Point{7, 100.5})
			tt.check(t, err)
			assert.True(t, g.ResolveArea(context.Background(), Point{7, 100.5}).IsZero())
		})
	}
}

func TestReverseCollapsesConcurrentLookups(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte(hatYaiResponse))
	}))
	defer srv.Close()

	g := NewGeocoder(srv.URL, "test", 2*time.Second)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = g.Reverse(context.Background(), Point{7.0, 100.47})
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestReverseRejectsInvalidPoint(t *testing.T) {
	t.Parallel()

	_, err := NewGeocoder("http://unused", "test", time.Second).Reverse(context.Background(), Point{200, 0})
	assert.ErrorIs(t, err, domerrors.ErrNoCoordinates)
}

func TestStripDistrictPrefix(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"อำเภอหาดใหญ่": "หาดใหญ่",
		"อ.ควนขนุน":    "ควนขนุน",
		"เขตบางรัก":     "บางรัก",
		"เทศบาลนครหาดใหญ่": "นครหาดใหญ่",
		" สะเดา ":       "สะเดา",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripDistrictPrefix(in), in)
	}
}

func TestStripProvincePrefix(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"จังหวัดสงขลา": "สงขลา",
		"จ.พัทลุง":     "พัทลุง",
		"สงขลา":        "สงขลา",
		"":             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripProvincePrefix(in), in)
	}
}
