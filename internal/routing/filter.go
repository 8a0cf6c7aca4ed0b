package routing

import (
	"regexp"
	"strings"

	"github.com/planv/firebase-tools/internal/manifest"
)

// HeaderSupported reports whether a header rule is representable in the
// target grammar.
func (c Capabilities) HeaderSupported(h manifest.HeaderRule) bool {
	if hasConditions(len(h.Has), len(h.Missing)) && !c.allows(ConditionalMatch) {
		return false
	}
	return c.patternSupported(h.Regex)
}

// RedirectSupported reports whether a redirect rule is representable: the
// pattern must be expressible and the status code one the target allows.
func (c Capabilities) RedirectSupported(r manifest.RedirectRule) bool {
	if r.Internal && !c.allows(InternalRedirect) {
		return false
	}
	if !c.RedirectStatus[r.StatusCode] {
		return false
	}
	if hasConditions(len(r.Has), len(r.Missing)) && !c.allows(ConditionalMatch) {
		return false
	}
	return c.patternSupported(r.Regex)
}

// RewriteSupported reports whether a rewrite rule is representable. Phase
// membership is not a per-rule property; Filter handles afterFiles/fallback
// rewrites separately.
func (c Capabilities) RewriteSupported(rw manifest.RewriteRule) bool {
	if hasConditions(len(rw.Has), len(rw.Missing)) && !c.allows(ConditionalMatch) {
		return false
	}
	if numericRefRE.MatchString(rw.Destination) && !c.allows(NumericBinding) {
		return false
	}
	return c.patternSupported(rw.Regex)
}

// FilterResult partitions a routes manifest into target-representable rules
// and the remainder. Relative order within each kind is preserved.
type FilterResult struct {
	Headers   []manifest.HeaderRule
	Redirects []manifest.RedirectRule
	Rewrites  []manifest.RewriteRule

	DroppedHeaders   []manifest.HeaderRule
	DroppedRedirects []manifest.RedirectRule
	DroppedRewrites  []manifest.RewriteRule

	// SecondaryRewrites is set when the manifest carries afterFiles or
	// fallback phases. Those always count as unsupported, independent of
	// any per-rule check.
	SecondaryRewrites bool
}

// Filter evaluates every rule of the routes manifest against the target
// capability table. Rules are dropped, never mutated.
func Filter(rm manifest.RoutesManifest, caps Capabilities) FilterResult {
	var res FilterResult

	for _, h := range rm.Headers {
		if caps.HeaderSupported(h) {
			res.Headers = append(res.Headers, h)
		} else {
			res.DroppedHeaders = append(res.DroppedHeaders, h)
		}
	}
	for _, r := range rm.Redirects {
		if caps.RedirectSupported(r) {
			res.Redirects = append(res.Redirects, r)
		} else {
			res.DroppedRedirects = append(res.DroppedRedirects, r)
		}
	}
	// beforeFiles rules stay candidates even when secondary phases exist;
	// only the secondary phases themselves are categorically out.
	for _, rw := range rm.Rewrites.Primary() {
		if caps.RewriteSupported(rw) {
			res.Rewrites = append(res.Rewrites, rw)
		} else {
			res.DroppedRewrites = append(res.DroppedRewrites, rw)
		}
	}
	res.SecondaryRewrites = rm.Rewrites.HasSecondaryPhases() && !caps.allows(PhasedRewrite)

	return res
}

// AllSupported reports whether every rule survived filtering.
func (f FilterResult) AllSupported() bool {
	return len(f.DroppedHeaders) == 0 &&
		len(f.DroppedRedirects) == 0 &&
		len(f.DroppedRewrites) == 0 &&
		!f.SecondaryRewrites
}

// DroppedRegexes compiles the match regexes of every dropped rule. Routes
// matching any of these cannot be served statically because the backend has
// to apply the rule. Patterns Go's regexp cannot compile are skipped; the
// rule already forced a backend, so the route is covered either way.
func (f FilterResult) DroppedRegexes() []*regexp.Regexp {
	var out []*regexp.Regexp
	add := func(pattern string) {
		if re, err := CompileRouteRegex(pattern); err == nil {
			out = append(out, re)
		}
	}
	for _, h := range f.DroppedHeaders {
		add(h.Regex)
	}
	for _, r := range f.DroppedRedirects {
		add(r.Regex)
	}
	for _, rw := range f.DroppedRewrites {
		add(rw.Regex)
	}
	return out
}

// CompileRouteRegex compiles a Next.js route regex with Go's regexp.
// Next.js emits JavaScript-dialect named groups ((?<name>...)), which RE2
// spells (?P<name>...).
func CompileRouteRegex(pattern string) (*regexp.Regexp, error) {
	converted := namedGroupRE.ReplaceAllString(pattern, "(?P<$1>")
	return regexp.Compile(converted)
}

var namedGroupRE = regexp.MustCompile(`\(\?<([A-Za-z][A-Za-z0-9]*)>`)

// CleanEscapedChars strips the escaping Next.js applies to source patterns
// for characters the hosting glob grammar treats as literals. Rules must be
// normalized this way before re-emission.
func CleanEscapedChars(source string) string {
	var b strings.Builder
	for i := 0; i < len(source); i++ {
		if source[i] == '\\' && i+1 < len(source) && strings.IndexByte("(){}:+?*", source[i+1]) >= 0 {
			continue
		}
		b.WriteByte(source[i])
	}
	return b.String()
}
