package routing

import "regexp"

// Construct is a category of routing-rule feature that a hosting grammar may
// or may not be able to express. The per-target capability table maps these
// to supported/unsupported so retargeting the filter to another platform is
// a table change, not new predicates.
type Construct string

const (
	// ConditionalMatch is has/missing request matching (cookie, header,
	// query, host clauses).
	ConditionalMatch Construct = "conditional-match"
	// Lookaround covers lookahead and lookbehind regex groups.
	Lookaround Construct = "lookaround"
	// Backreference covers \1-style references inside a pattern.
	Backreference Construct = "backreference"
	// NumericBinding covers $1-style capture references in a destination.
	NumericBinding Construct = "numeric-binding"
	// InternalRedirect covers redirects Next.js generates for itself
	// (trailing slash normalization and similar).
	InternalRedirect Construct = "internal-redirect"
	// PhasedRewrite covers afterFiles/fallback rewrite phases, which need a
	// second routing pass after filesystem resolution.
	PhasedRewrite Construct = "phased-rewrite"
)

// Capabilities is the routing grammar of one hosting target.
type Capabilities struct {
	Target         string
	Supported      map[Construct]bool
	RedirectStatus map[int]bool
}

// FirebaseHosting describes what Firebase Hosting's glob/RE2 routing grammar
// can express. Named captures bind fine (:param), everything below does not.
func FirebaseHosting() Capabilities {
	return Capabilities{
		Target: "firebase-hosting",
		Supported: map[Construct]bool{
			ConditionalMatch: false,
			Lookaround:       false,
			Backreference:    false,
			NumericBinding:   false,
			InternalRedirect: false,
			PhasedRewrite:    false,
		},
		RedirectStatus: map[int]bool{
			301: true,
			302: true,
			303: true,
			307: true,
			308: true,
		},
	}
}

func (c Capabilities) allows(k Construct) bool {
	return c.Supported[k]
}

var (
	lookaroundRE = regexp.MustCompile(`\(\?=|\(\?!|\(\?<=|\(\?<!`)
	backrefRE    = regexp.MustCompile(`\\[1-9]`)
	numericRefRE = regexp.MustCompile(`\$[1-9]`)
)

// patternSupported checks a rule's compiled regex against the table. Total:
// an empty pattern is trivially supported, unknown constructs pass through.
func (c Capabilities) patternSupported(pattern string) bool {
	if lookaroundRE.MatchString(pattern) && !c.allows(Lookaround) {
		return false
	}
	if backrefRE.MatchString(pattern) && !c.allows(Backreference) {
		return false
	}
	return true
}

func hasConditions(has, missing int) bool {
	return has > 0 || missing > 0
}
