package manifest

import (
	"encoding/json"
	"sort"
)

// RouteHas is a conditional matching clause on a routing rule (cookie,
// header, query or host match). Firebase Hosting has no equivalent, so rules
// carrying these clauses are filtered out downstream.
type RouteHas struct {
	Type  string `json:"type"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
}

// HeaderValue is one response header set by a header rule.
type HeaderValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// HeaderRule injects response headers on requests matching Source.
type HeaderRule struct {
	Source  string        `json:"source"`
	Regex   string        `json:"regex"`
	Headers []HeaderValue `json:"headers"`
	Has     []RouteHas    `json:"has,omitempty"`
	Missing []RouteHas    `json:"missing,omitempty"`
}

// RedirectRule sends requests matching Source to Destination with StatusCode.
// Internal redirects are generated by Next.js itself (trailing slash and the
// like) and are not meant to be re-emitted.
type RedirectRule struct {
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	StatusCode  int        `json:"statusCode"`
	Regex       string     `json:"regex"`
	Internal    bool       `json:"internal,omitempty"`
	Has         []RouteHas `json:"has,omitempty"`
	Missing     []RouteHas `json:"missing,omitempty"`
}

// RewriteRule serves Destination content for requests matching Source.
type RewriteRule struct {
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	Regex       string     `json:"regex"`
	Has         []RouteHas `json:"has,omitempty"`
	Missing     []RouteHas `json:"missing,omitempty"`
}

// Rewrites is the rewrites field of the routes manifest. Next.js writes it
// either as a plain array or, when the app declares routing phases, as an
// object with beforeFiles/afterFiles/fallback lists. The distinction is
// resolved here once, at decode time, instead of by every consumer.
type Rewrites struct {
	Phased      bool
	BeforeFiles []RewriteRule
	AfterFiles  []RewriteRule
	Fallback    []RewriteRule
}

func (r *Rewrites) UnmarshalJSON(data []byte) error {
	var list []RewriteRule
	if err := json.Unmarshal(data, &list); err == nil {
		*r = Rewrites{BeforeFiles: list}
		return nil
	}

	var phased struct {
		BeforeFiles []RewriteRule `json:"beforeFiles"`
		AfterFiles  []RewriteRule `json:"afterFiles"`
		Fallback    []RewriteRule `json:"fallback"`
	}
	if err := json.Unmarshal(data, &phased); err != nil {
		return err
	}
	*r = Rewrites{
		Phased:      true,
		BeforeFiles: phased.BeforeFiles,
		AfterFiles:  phased.AfterFiles,
		Fallback:    phased.Fallback,
	}
	return nil
}

// Primary returns the rewrites that are candidates for translation: the
// whole list in the simple form, the beforeFiles phase in the phased form.
func (r Rewrites) Primary() []RewriteRule {
	return r.BeforeFiles
}

// HasSecondaryPhases reports whether the manifest carries afterFiles or
// fallback rewrites. Those run after filesystem resolution, which a
// single-pass hosting router cannot reproduce.
func (r Rewrites) HasSecondaryPhases() bool {
	return r.Phased && (len(r.AfterFiles) > 0 || len(r.Fallback) > 0)
}

// RoutesManifest is .next/routes-manifest.json.
type RoutesManifest struct {
	Version   int            `json:"version"`
	BasePath  string         `json:"basePath"`
	Headers   []HeaderRule   `json:"headers"`
	Redirects []RedirectRule `json:"redirects"`
	Rewrites  Rewrites       `json:"rewrites"`
}

// Revalidate is the initialRevalidateSeconds field of a prerendered route.
// Next.js writes false for routes that never revalidate and a number of
// seconds for incremental ones, so plain int decoding does not work.
type Revalidate struct {
	Seconds int
	Set     bool
}

func (rv *Revalidate) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*rv = Revalidate{}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n > 0 {
		*rv = Revalidate{Seconds: int(n), Set: true}
	}
	return nil
}

// PrerenderRoute describes one statically generated route.
type PrerenderRoute struct {
	InitialRevalidateSeconds Revalidate `json:"initialRevalidateSeconds"`
	SrcRoute                 string     `json:"srcRoute"`
	DataRoute                string     `json:"dataRoute"`
}

// Fallback is the fallback policy of a dynamic route: false means unknown
// params were all rendered at build time, anything else (a fallback page or
// null for blocking) means they render on demand and need a server.
type Fallback struct {
	OnDemand bool
}

func (f *Fallback) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		f.OnDemand = b
		return nil
	}
	f.OnDemand = true
	return nil
}

// DynamicRoute describes a parameterized route pattern.
type DynamicRoute struct {
	RouteRegex     string   `json:"routeRegex"`
	DataRoute      string   `json:"dataRoute"`
	Fallback       Fallback `json:"fallback"`
	DataRouteRegex string   `json:"dataRouteRegex"`
}

// PrerenderManifest is .next/prerender-manifest.json.
type PrerenderManifest struct {
	Version        int                       `json:"version"`
	Routes         map[string]PrerenderRoute `json:"routes"`
	DynamicRoutes  map[string]DynamicRoute   `json:"dynamicRoutes"`
	NotFoundRoutes []string                  `json:"notFoundRoutes"`
}

// SortedRoutes returns the prerendered route paths in a stable order so that
// analysis and export are deterministic across runs.
func (p PrerenderManifest) SortedRoutes() []string {
	return sortedKeys(p.Routes)
}

// SortedDynamicRoutes returns the dynamic route patterns in a stable order.
func (p PrerenderManifest) SortedDynamicRoutes() []string {
	return sortedKeys(p.DynamicRoutes)
}

// PagesManifest is .next/server/pages-manifest.json: logical page path to
// build output reference.
type PagesManifest map[string]string

// SortedPages returns the page paths in a stable order.
func (p PagesManifest) SortedPages() []string {
	return sortedKeys(p)
}

// MiddlewareMatcher is one request matcher of a middleware registration.
type MiddlewareMatcher struct {
	Regexp         string `json:"regexp"`
	OriginalSource string `json:"originalSource,omitempty"`
}

// MiddlewareInfo is one middleware registration.
type MiddlewareInfo struct {
	Name     string              `json:"name"`
	Page     string              `json:"page"`
	Files    []string            `json:"files"`
	Matchers []MiddlewareMatcher `json:"matchers"`
}

// MiddlewareManifest is .next/server/middleware-manifest.json.
type MiddlewareManifest struct {
	Version          int                       `json:"version"`
	SortedMiddleware []string                  `json:"sortedMiddleware"`
	Middleware       map[string]MiddlewareInfo `json:"middleware"`
	Functions        map[string]MiddlewareInfo `json:"functions"`
}

// AllMatchers returns every registered matcher, middleware first (in
// manifest sort order), then edge functions.
func (m MiddlewareManifest) AllMatchers() []MiddlewareMatcher {
	names := m.SortedMiddleware
	if len(names) == 0 {
		names = sortedKeys(m.Middleware)
	}
	var out []MiddlewareMatcher
	for _, name := range names {
		out = append(out, m.Middleware[name].Matchers...)
	}
	for _, name := range sortedKeys(m.Functions) {
		out = append(out, m.Functions[name].Matchers...)
	}
	return out
}

// HasMiddleware reports whether any middleware is registered with at least
// one matcher.
func (m MiddlewareManifest) HasMiddleware() bool {
	for _, info := range m.Middleware {
		if len(info.Matchers) > 0 {
			return true
		}
	}
	return false
}

// AppPathRoutesManifest is .next/app-path-routes-manifest.json: app-router
// file path to served route path. Its presence means the app directory is in
// use.
type AppPathRoutesManifest map[string]string

// ExportMarker is .next/export-marker.json.
type ExportMarker struct {
	Version             int  `json:"version"`
	HasExportPathMap    bool `json:"hasExportPathMap"`
	ExportTrailingSlash bool `json:"exportTrailingSlash"`
	IsNextImageImported bool `json:"isNextImageImported"`
}

// ImagesManifest is .next/images-manifest.json, read only when the export
// marker reports image usage.
type ImagesManifest struct {
	Version int          `json:"version"`
	Images  ImagesConfig `json:"images"`
}

// ImagesConfig is the images section of the Next.js config as serialized
// into the images manifest.
type ImagesConfig struct {
	Loader      string `json:"loader"`
	Unoptimized bool   `json:"unoptimized"`
	Sizes       []int  `json:"sizes"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
