package adrule_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strct-org/ytblocker/internal/adrule"
	"github.com/strct-org/ytblocker/internal/errs"
)

func TestContains(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		substr string
		want   bool
	}{
		{name: "prefix", s: "---sn-abc", substr: "---sn-", want: true},
		{name: "middle", s: "r2---sn-abc", substr: "---sn-", want: true},
		{name: "absent", s: "plain.example.com", substr: "---sn-", want: false},
		{name: "case sensitive", s: "r2---SN-abc", substr: "---sn-", want: false},
		{name: "substr longer than s", s: "sn-", substr: "---sn-", want: false},
		{name: "empty s", s: "", substr: "a", want: false},
		// The strict bound never tries the last offset.
		{name: "exactly equal", s: "---sn-", substr: "---sn-", want: false},
		{name: "suffix only", s: "abc---sn-", substr: "---sn-", want: false},
		{name: "one byte after", s: "abc---sn-x", substr: "---sn-", want: true},
		{name: "single byte equal", s: "a", substr: "a", want: false},
		{name: "single byte not last", s: "ab", substr: "a", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, adrule.Contains(tt.s, tt.substr))
		})
	}
}

func TestIsAd(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "ad host", in: "xyz---sn-abc123.googlevideo.com", want: true},
		{name: "content marker", in: "xyz---sn-abc123.m4vox.com", want: false},
		{name: "plain", in: "plain.example.com", want: false},
		{name: "marker only", in: "---sn-", want: false},
		{name: "content marker first", in: "m4vox---sn-abc", want: false},
		{name: "normalized query", in: "**.......r2---sn-qxoedn7k.googlevideo.com......", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, adrule.IsAd(tt.in))
		})
	}
}

func TestVariant(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "r2---sn-qxoedn7k.googlevideo.com", want: "r2.sn-qxoedn7k.googlevideo.com"},
		{in: "xyz---sn-abc123.googlevideo.com", want: "xyz.sn-abc123.googlevideo.com"},
		{in: "---sn-a", want: ".sn-a"},
		// The first '-' wins, wherever the marker is.
		{in: "a-b---sn-c", want: "a.--sn-c"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := adrule.Variant(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, len(tt.in)-2)
		})
	}
}

func TestVariant_Assertion(t *testing.T) {
	for _, in := range []string{"", "plain.example.com", "abc-", "abc-d"} {
		t.Run(in, func(t *testing.T) {
			_, err := adrule.Variant(in)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.KindAssertion), "got %v", err)
		})
	}
}

func TestVariant_NeverFailsAfterIsAd(t *testing.T) {
	inputs := []string{
		"r2---sn-qxoedn7k.googlevideo.com",
		"---sn-x",
		"....---sn-.....",
		strings.Repeat("a", 300) + "---sn-" + strings.Repeat("b", 300),
		"a-b-c---sn-d",
	}

	for _, in := range inputs {
		require.True(t, adrule.IsAd(in), in)
		got, err := adrule.Variant(in)
		require.NoError(t, err, in)
		assert.Len(t, got, len(in)-2)
	}
}

func TestDeterministic(t *testing.T) {
	const in = "r2---sn-qxoedn7k.googlevideo.com"
	first, err := adrule.Variant(in)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		assert.True(t, adrule.IsAd(in))
		got, err := adrule.Variant(in)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}
