package packet

import (
	"fmt"

	"github.com/strct-org/ytblocker/internal/errs"
)

// ExtractName returns a copy of the bytes from one past the end of the
// transport header to the end of the frame. The skipped byte is the leading
// length/flag byte in front of the textual name.
//
// The remainder is treated as opaque text: labels and compression pointers
// are not decoded, so a real query yields the name embedded among header and
// trailer bytes. Normalize turns those into filler.
func ExtractName(frame []byte, h TransportHeader) (string, error) {
	start := h.End() + 1
	if h.Offset < 0 || start > len(frame) {
		return "", errs.E(opExtractName, errs.KindTruncatedFrame,
			fmt.Sprintf("name offset %d exceeds frame length %d", start, len(frame)))
	}
	if start == len(frame) {
		return "", errs.E(opExtractName, errs.KindEmptyName)
	}
	return string(frame[start:]), nil
}

// Normalize replaces every byte below 32 or above 128 with '.'. The result
// has the same length as name.
func Normalize(name string) string {
	b := []byte(name)
	for i, c := range b {
		if c < 32 || c > 128 {
			b[i] = '.'
		}
	}
	return string(b)
}
