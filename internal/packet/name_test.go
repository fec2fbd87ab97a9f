package packet_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strct-org/ytblocker/internal/errs"
	"github.com/strct-org/ytblocker/internal/packet"
	"github.com/strct-org/ytblocker/internal/packet/packettest"
)

func TestExtractName(t *testing.T) {
	const name = "r2---sn-qxoedn7k.googlevideo.com"
	frame := packettest.UDPFrame(t, 40000, 53, packettest.NamePayload(name))

	h, err := packet.ParseFrame(frame)
	require.NoError(t, err)

	got, err := packet.ExtractName(frame, h)
	require.NoError(t, err)
	assert.Equal(t, name, got)
}

func TestExtractName_CopiesOutOfFrame(t *testing.T) {
	frame := packettest.UDPFrame(t, 40000, 53, packettest.NamePayload("abc"))
	h, err := packet.ParseFrame(frame)
	require.NoError(t, err)

	got, err := packet.ExtractName(frame, h)
	require.NoError(t, err)

	// Capture buffers are reused between frames.
	for i := range frame {
		frame[i] = 'X'
	}
	assert.Equal(t, "abc", got)
}

func TestExtractName_Empty(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		kind    errs.Kind
	}{
		{name: "no payload", payload: nil, kind: errs.KindTruncatedFrame},
		{name: "only the skipped byte", payload: []byte{0x00}, kind: errs.KindEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := packettest.UDPFrame(t, 53, 40000, tt.payload)
			h, err := packet.ParseFrame(frame)
			require.NoError(t, err)

			_, err = packet.ExtractName(frame, h)
			require.Error(t, err)
			assert.True(t, errs.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestExtractName_OpaqueQuery(t *testing.T) {
	// A packed query keeps its header and trailer bytes in the span; only
	// normalization makes them printable.
	frame := packettest.UDPFrame(t, 40000, 53, packettest.QueryPayload(t, "r2---sn-qxoedn7k.googlevideo.com"))
	h, err := packet.ParseFrame(frame)
	require.NoError(t, err)

	raw, err := packet.ExtractName(frame, h)
	require.NoError(t, err)
	assert.Equal(t, len(frame)-h.End()-1, len(raw))

	norm := packet.Normalize(raw)
	assert.Contains(t, norm, "r2---sn-qxoedn7k")
	assert.Contains(t, norm, "googlevideo")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "printable unchanged", in: "r2---sn-abc.googlevideo.com", want: "r2---sn-abc.googlevideo.com"},
		{name: "label lengths", in: "\x02r2\x0bgooglevideo\x03com\x00", want: ".r2.googlevideo.com."},
		{name: "space kept", in: " a", want: " a"},
		{name: "unit separator", in: "\x1f", want: "."},
		{name: "del and 128 kept", in: "\x7f\x80", want: "\x7f\x80"},
		{name: "high bytes", in: "\x81\xff", want: ".."},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := packet.Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, len(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	var all strings.Builder
	for i := 0; i < 256; i++ {
		all.WriteByte(byte(i))
	}

	inputs := []string{"", "plain.example.com", all.String(), "\x00\x01\x02---sn-\xfe"}
	for _, in := range inputs {
		once := packet.Normalize(in)
		assert.Equal(t, once, packet.Normalize(once))
		for i := 0; i < len(once); i++ {
			c := once[i]
			assert.False(t, c < 32 || c > 128, "byte %#x survived normalization", c)
		}
	}
}
