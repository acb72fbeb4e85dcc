package reply

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/lumnam/lumnam-linebot-go/internal/metrics"
)

const (
	testBase     = "https://img.example.com"
	testFallback = "https://scdn.example.com/fallback.png"
)

func TestImageURL(t *testing.T) {
	t.Parallel()

	images := NewImages(testBase+"/", testFallback, nil, ProbePolicy{})
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"empty", "", testFallback},
		{"blank", "   ", testFallback},
		{"bare file", "wat.jpg", testBase + "/uploads/wat.jpg"},
		{"uploads prefix", "uploads/wat.jpg", testBase + "/uploads/wat.jpg"},
		{"rooted uploads prefix", "/uploads/wat.jpg", testBase + "/uploads/wat.jpg"},
		{"space escaped", "วัด คูเต่า.jpg", testBase + "/uploads/%E0%B8%A7%E0%B8%B1%E0%B8%94%20%E0%B8%84%E0%B8%B9%E0%B9%80%E0%B8%95%E0%B9%88%E0%B8%B2.jpg"},
		{"absolute https kept", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"absolute http kept", "HTTP://cdn.example.com/a.png", "HTTP://cdn.example.com/a.png"},
		{"absolute without host", "https:///a.png", testFallback},
		{"other scheme", "ftp://cdn.example.com/a.png", testFallback},
		{"only prefix", "/uploads/", testFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, images.URL(tt.ref))
		})
	}
}

func imageServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodHead, r.Method)
		switch r.URL.Path {
		case "/ok.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
		case "/page.html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		case "/slow.jpg":
			time.Sleep(200 * time.Millisecond)
			w.Header().Set("Content-Type", "image/jpeg")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveProbesDetailOnly(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := imageServer(t, &hits)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	prober := NewProber(srv.Client(), 50*time.Millisecond, m)
	images := NewImages(testBase, testFallback, prober, ProbePolicy{Detail: true})
	ctx := context.Background()

	assert.Equal(t, srv.URL+"/ok.jpg", images.Resolve(ctx, srv.URL+"/ok.jpg", PathDetail))
	assert.Equal(t, testFallback, images.Resolve(ctx, srv.URL+"/page.html", PathDetail))
	assert.Equal(t, testFallback, images.Resolve(ctx, srv.URL+"/missing.jpg", PathDetail))
	assert.Equal(t, testFallback, images.Resolve(ctx, srv.URL+"/slow.jpg", PathDetail))
	assert.Equal(t, testFallback, images.Resolve(ctx, "", PathDetail))
	assert.Equal(t, int32(4), hits.Load(), "fallback is never probed")

	assert.Equal(t, srv.URL+"/missing.jpg", images.Resolve(ctx, srv.URL+"/missing.jpg", PathList))
	assert.Equal(t, int32(4), hits.Load(), "list path not probed")

	assert.InDelta(t, 1, testutil.ToFloat64(m.ImageProbeTotal.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ImageProbeTotal.WithLabelValues("timeout")), 0)
}

func TestResolveAllKeepsOrder(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := imageServer(t, &hits)
	images := NewImages(testBase, testFallback, NewProber(srv.Client(), time.Second, nil), ProbePolicy{Lists: true})

	got := images.ResolveAll(context.Background(), []string{
		srv.URL + "/ok.jpg",
		srv.URL + "/missing.jpg",
		"",
		srv.URL + "/ok.jpg",
	}, PathList)

	assert.Equal(t, []string{srv.URL + "/ok.jpg", testFallback, testFallback, srv.URL + "/ok.jpg"}, got)
	assert.Equal(t, int32(3), hits.Load())
}
