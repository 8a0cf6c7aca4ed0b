package exporter

import (
	"path"
	"strings"
)

// RouteKind distinguishes how a prerendered route was rendered.
type RouteKind int

const (
	// KindPages is the legacy pages router: an HTML file plus a JSON data
	// sidecar.
	KindPages RouteKind = iota
	// KindComponent is an app-router route whose data payload is the
	// server-component stream baked into the HTML; only the HTML ships.
	KindComponent
)

// RSCExtension marks data routes produced by the app router.
const RSCExtension = ".rsc"

// KindForDataRoute resolves a route's rendering kind from its manifest
// data-route path.
func KindForDataRoute(dataRoute string) RouteKind {
	if strings.HasSuffix(dataRoute, RSCExtension) {
		return KindComponent
	}
	return KindPages
}

// RoutePaths is the resolved file-name pair for one exported route,
// relative to the per-kind server output directory.
type RoutePaths struct {
	HTML string
	Data string // empty for component routes
}

// ResolveRoutePaths maps a route path to the files it exports as. The route
// splits into non-empty segments; the root route (no segments) maps to the
// literal name "index", everything else joins its segments. Pure: no
// filesystem access.
func ResolveRoutePaths(route string, kind RouteKind) RoutePaths {
	name := routeFileName(route)
	rp := RoutePaths{HTML: name + ".html"}
	if kind == KindPages {
		rp.Data = name + ".json"
	}
	return rp
}

func routeFileName(route string) string {
	var segments []string
	for _, s := range strings.Split(route, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return "index"
	}
	return path.Join(segments...)
}
