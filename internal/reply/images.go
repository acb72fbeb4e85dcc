package reply

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentProbes bounds HEAD requests issued for one carousel.
const maxConcurrentProbes = 5

// RenderPath identifies where an image is shown, for ProbePolicy.
type RenderPath int

const (
	// PathList covers carousel columns and list bubbles.
	PathList RenderPath = iota
	// PathDetail covers single-item detail cards.
	PathDetail
)

// ProbePolicy selects the render paths whose images are HEAD-probed before use.
type ProbePolicy struct {
	Detail bool
	Lists  bool
}

func (p ProbePolicy) enabled(path RenderPath) bool {
	if path == PathDetail {
		return p.Detail
	}
	return p.Lists
}

// Images turns stored image references into public HTTPS URLs.
type Images struct {
	baseURL  string
	fallback string
	prober   *Prober
	policy   ProbePolicy
}

// NewImages creates an image resolver. prober may be nil, which disables probing.
func NewImages(baseURL, fallback string, prober *Prober, policy ProbePolicy) *Images {
	return &Images{
		baseURL:  strings.TrimRight(baseURL, "/"),
		fallback: fallback,
		prober:   prober,
		policy:   policy,
	}
}

// Fallback returns the placeholder image URL.
func (im *Images) Fallback() string {
	return im.fallback
}

// URL builds the public URL of ref without probing.
//
//   - "" → fallback
//   - "http://..." / "https://..." → kept as is when well formed
//   - "/uploads/a b.jpg", "uploads/a b.jpg", "a b.jpg" → <base>/uploads/a%20b.jpg
func (im *Images) URL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return im.fallback
	}

	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		u, err := url.Parse(ref)
		if err != nil || u.Host == "" {
			return im.fallback
		}
		return ref
	}
	if strings.Contains(ref, "://") {
		return im.fallback
	}

	name := strings.TrimPrefix(ref, "/")
	name = strings.TrimSpace(strings.TrimPrefix(name, "uploads/"))
	if name == "" {
		return im.fallback
	}
	return im.baseURL + "/uploads/" + url.PathEscape(name)
}

// Resolve returns the URL of ref for path, replaced by the fallback when the
// policy probes path and the probe fails.
func (im *Images) Resolve(ctx context.Context, ref string, path RenderPath) string {
	u := im.URL(ref)
	if u == im.fallback || im.prober == nil || !im.policy.enabled(path) {
		return u
	}
	if !im.prober.Probe(ctx, u) {
		return im.fallback
	}
	return u
}

// ResolveAll resolves refs in order, probing concurrently when enabled.
func (im *Images) ResolveAll(ctx context.Context, refs []string, path RenderPath) []string {
	out := make([]string, len(refs))
	if im.prober == nil || !im.policy.enabled(path) {
		for i, ref := range refs {
			out[i] = im.URL(ref)
		}
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProbes)
	for i, ref := range refs {
		g.Go(func() error {
			out[i] = im.Resolve(gctx, ref, path)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
