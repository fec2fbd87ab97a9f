// Package adrule recognises the hostnames video ads are served from and
// derives the second spelling of such a host that also has to be blocked.
//
// An ad host looks like "r2---sn-qxoedn7k.googlevideo.com". The same cache
// node also answers as "r2.sn-qxoedn7k.googlevideo.com".
package adrule

import (
	"fmt"

	"github.com/strct-org/ytblocker/internal/errs"
)

const (
	opVariant errs.Op = "adrule.Variant"

	// AdMarker appears in every ad-serving cache host.
	AdMarker = "---sn-"

	// NotAdMarker tags cache hosts that serve regular content.
	NotAdMarker = "m4vox"
)

// Contains is a byte-exact, case-sensitive scan for substr in s.
//
// Offsets run over 0 <= i < len(s)-len(substr). The upper bound is strict, so
// a match that ends on the last byte of s is never seen, and s equal to
// substr reports false. Classification results depend on this; keep it.
func Contains(s, substr string) bool {
	n := len(substr)
	for i := 0; i < len(s)-n; i++ {
		if s[i:i+n] == substr {
			return true
		}
	}
	return false
}

// IsAd reports whether name carries the ad marker and not the content marker.
func IsAd(name string) bool {
	return Contains(name, AdMarker) && !Contains(name, NotAdMarker)
}

// Variant replaces the first '-' of name and the two bytes after it with a
// single '.', so "r2---sn-x.googlevideo.com" becomes "r2.sn-x.googlevideo.com".
// The result is two bytes shorter than name.
//
// Only call it on names IsAd accepted. A name without a '-' followed by at
// least two more bytes is a KindAssertion error.
func Variant(name string) (string, error) {
	k := -1
	for i := 0; i < len(name); i++ {
		if name[i] == '-' {
			k = i
			break
		}
	}
	if k < 0 {
		return "", errs.E(opVariant, errs.KindAssertion, fmt.Sprintf("no '-' in %q", name))
	}
	if k+3 > len(name) {
		return "", errs.E(opVariant, errs.KindAssertion,
			fmt.Sprintf("first '-' at %d leaves fewer than 2 bytes in %q", k, name))
	}

	b := make([]byte, 0, len(name)-2)
	b = append(b, name[:k]...)
	b = append(b, '.')
	b = append(b, name[k+3:]...)
	return string(b), nil
}
