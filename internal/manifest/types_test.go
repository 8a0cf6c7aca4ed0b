package manifest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewritesUnmarshalSimpleList(t *testing.T) {
	data := `[{"source": "/a", "destination": "/b", "regex": "^/a$"}]`

	var rw Rewrites
	require.NoError(t, json.Unmarshal([]byte(data), &rw))

	assert.False(t, rw.Phased)
	require.Len(t, rw.Primary(), 1)
	assert.Equal(t, "/a", rw.Primary()[0].Source)
	assert.False(t, rw.HasSecondaryPhases())
}

func TestRewritesUnmarshalPhased(t *testing.T) {
	data := `{
		"beforeFiles": [{"source": "/a", "destination": "/b", "regex": "^/a$"}],
		"afterFiles": [{"source": "/c", "destination": "/d", "regex": "^/c$"}],
		"fallback": []
	}`

	var rw Rewrites
	require.NoError(t, json.Unmarshal([]byte(data), &rw))

	assert.True(t, rw.Phased)
	assert.Len(t, rw.Primary(), 1)
	assert.True(t, rw.HasSecondaryPhases())
}

func TestRewritesUnmarshalPhasedEmptySecondary(t *testing.T) {
	data := `{"beforeFiles": [{"source": "/a", "destination": "/b", "regex": "^/a$"}]}`

	var rw Rewrites
	require.NoError(t, json.Unmarshal([]byte(data), &rw))

	assert.True(t, rw.Phased)
	assert.False(t, rw.HasSecondaryPhases())
}

func TestRevalidateUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Revalidate
		wantErr bool
	}{
		{name: "false means never", in: `false`, want: Revalidate{}},
		{name: "seconds", in: `10`, want: Revalidate{Seconds: 10, Set: true}},
		{name: "zero is not incremental", in: `0`, want: Revalidate{}},
		{name: "garbage", in: `"soon"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rv Revalidate
			err := json.Unmarshal([]byte(tt.in), &rv)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rv)
		})
	}
}

func TestFallbackUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		onDemand bool
	}{
		{name: "false is build-time only", in: `false`, onDemand: false},
		{name: "fallback page", in: `"/blog/[slug].html"`, onDemand: true},
		{name: "null is blocking", in: `null`, onDemand: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Fallback
			require.NoError(t, json.Unmarshal([]byte(tt.in), &f))
			assert.Equal(t, tt.onDemand, f.OnDemand)
		})
	}
}

func TestMiddlewareManifestMatchers(t *testing.T) {
	m := MiddlewareManifest{
		SortedMiddleware: []string{"/"},
		Middleware: map[string]MiddlewareInfo{
			"/": {Name: "middleware", Matchers: []MiddlewareMatcher{{Regexp: "^/admin/.*$"}}},
		},
	}

	assert.True(t, m.HasMiddleware())
	require.Len(t, m.AllMatchers(), 1)
	assert.Equal(t, "^/admin/.*$", m.AllMatchers()[0].Regexp)
}

func TestMiddlewareManifestEmpty(t *testing.T) {
	var m MiddlewareManifest
	assert.False(t, m.HasMiddleware())
	assert.Empty(t, m.AllMatchers())
}

func TestPrerenderManifestSortedRoutes(t *testing.T) {
	p := PrerenderManifest{
		Routes: map[string]PrerenderRoute{
			"/b": {}, "/a": {}, "/": {},
		},
	}
	assert.Equal(t, []string{"/", "/a", "/b"}, p.SortedRoutes())
}
