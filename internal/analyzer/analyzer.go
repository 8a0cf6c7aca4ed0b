package analyzer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/planv/firebase-tools/internal/manifest"
	"github.com/planv/firebase-tools/internal/routing"
)

// DefaultDisplayLimit caps how many reasons Summary renders before folding
// the rest into a count.
const DefaultDisplayLimit = 8

// Decision is the backend-necessity verdict for one build. Derived, never
// persisted; recomputed from the manifests on every run.
type Decision struct {
	WantsBackend bool
	Reasons      []string
}

// Pages Next.js always emits regardless of the app's own routes. They never
// indicate a server-rendered page on their own. Future framework versions
// may add reserved names this list does not know about.
var reservedPages = map[string]bool{
	"/_app":      true,
	"/":          true,
	"/_error":    true,
	"/_document": true,
	"/404":       true,
}

// Analyze inspects the manifests and the filtered rule sets and decides
// whether the application still needs a server. Every signal is evaluated
// unconditionally, in a fixed order, so the reasons list is complete and
// deterministic.
func Analyze(b *manifest.Bundle, rules routing.FilterResult, logger *zap.Logger) Decision {
	var reasons []string

	// 1. Middleware always runs server-side.
	if b.Middleware.HasMiddleware() {
		reasons = append(reasons, "middleware in use")
	}

	// 2. Image optimization, unless explicitly disabled.
	if b.ExportMarker != nil && b.ExportMarker.IsNextImageImported {
		disabled := b.Images != nil && b.Images.Images.Unoptimized
		if !disabled {
			reasons = append(reasons, "image optimization in use")
		}
	}

	// 3. App directory support is unstable; its presence forces a backend
	// no matter what else the manifests say.
	if len(b.AppRoutes) > 0 {
		reasons = append(reasons, "app directory in use")
	}

	// 4. Dynamic routes that render unknown params on demand.
	for _, route := range b.Prerender.SortedDynamicRoutes() {
		if b.Prerender.DynamicRoutes[route].Fallback.OnDemand {
			reasons = append(reasons, fmt.Sprintf("fallback rendering for route %s", route))
		}
	}

	// 5. Incrementally revalidated routes.
	for _, route := range b.Prerender.SortedRoutes() {
		if b.Prerender.Routes[route].InitialRevalidateSeconds.Set {
			reasons = append(reasons, fmt.Sprintf("revalidation for route %s", route))
		}
	}

	// 6. Pages the manifests describe no static rendering strategy for.
	for _, page := range b.Pages.SortedPages() {
		if reservedPages[page] {
			continue
		}
		if _, ok := b.Prerender.Routes[page]; ok {
			continue
		}
		if _, ok := b.Prerender.DynamicRoutes[page]; ok {
			continue
		}
		reasons = append(reasons, fmt.Sprintf("non-static route %s", page))
	}

	// 7. Rules the hosting platform cannot express still have to run.
	if len(rules.DroppedHeaders) > 0 {
		reasons = append(reasons, "unsupported headers")
	}
	if len(rules.DroppedRedirects) > 0 {
		reasons = append(reasons, "unsupported redirects")
	}
	if len(rules.DroppedRewrites) > 0 || rules.SecondaryRewrites {
		reasons = append(reasons, "unsupported rewrites")
	}

	d := Decision{WantsBackend: len(reasons) > 0, Reasons: reasons}
	logger.Debug("backend necessity analyzed",
		zap.Bool("wantsBackend", d.WantsBackend),
		zap.Int("reasons", len(d.Reasons)))
	return d
}

// Summary renders at most limit reasons, folding the remainder into a
// count. A limit <= 0 uses DefaultDisplayLimit. The full list stays on the
// Decision for verbose diagnostics.
func (d Decision) Summary(limit int) []string {
	if limit <= 0 {
		limit = DefaultDisplayLimit
	}
	if len(d.Reasons) <= limit {
		return d.Reasons
	}
	out := make([]string, 0, limit+1)
	out = append(out, d.Reasons[:limit]...)
	out = append(out, fmt.Sprintf("and %d more", len(d.Reasons)-limit))
	return out
}
