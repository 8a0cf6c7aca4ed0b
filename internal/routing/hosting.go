package routing

// HostingHeader is one header rule in the hosting deploy config.
type HostingHeader struct {
	Source  string     `json:"source"`
	Headers []HeaderKV `json:"headers"`
}

// HeaderKV is one injected response header.
type HeaderKV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// HostingRedirect is one redirect rule in the hosting deploy config.
type HostingRedirect struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Type        int    `json:"type"`
}

// HostingRewrite is one rewrite rule in the hosting deploy config.
type HostingRewrite struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// HostingConfig is the declarative routing section emitted for the hosting
// platform: only target-representable rules, escaping normalized, evaluated
// headers first, then redirects, then rewrites.
type HostingConfig struct {
	Headers   []HostingHeader   `json:"headers,omitempty"`
	Redirects []HostingRedirect `json:"redirects,omitempty"`
	Rewrites  []HostingRewrite  `json:"rewrites,omitempty"`
}

// HostingConfig translates the kept rules into the target format.
func (f FilterResult) HostingConfig() HostingConfig {
	var cfg HostingConfig
	for _, h := range f.Headers {
		out := HostingHeader{Source: CleanEscapedChars(h.Source)}
		for _, kv := range h.Headers {
			out.Headers = append(out.Headers, HeaderKV{Key: kv.Key, Value: kv.Value})
		}
		cfg.Headers = append(cfg.Headers, out)
	}
	for _, r := range f.Redirects {
		cfg.Redirects = append(cfg.Redirects, HostingRedirect{
			Source:      CleanEscapedChars(r.Source),
			Destination: r.Destination,
			Type:        r.StatusCode,
		})
	}
	for _, rw := range f.Rewrites {
		cfg.Rewrites = append(cfg.Rewrites, HostingRewrite{
			Source:      CleanEscapedChars(rw.Source),
			Destination: rw.Destination,
		})
	}
	return cfg
}
