// Package packet locates the UDP header and the candidate DNS query name in
// a raw IPv4 frame. Every accessor is bounds-checked against the frame; a
// crafted length field yields a typed error, never an out-of-range read.
package packet

import (
	"encoding/binary"
	"fmt"

	"github.com/strct-org/ytblocker/internal/errs"
)

const (
	opParseFrame  errs.Op = "packet.ParseFrame"
	opExtractName errs.Op = "packet.ExtractName"

	// UDPHeaderLen is the fixed size of a UDP header.
	UDPHeaderLen = 8

	// DNSPort is the well-known DNS port checked on both ends of the datagram.
	DNSPort = 53

	// MaxFrameLen is the largest frame a capture buffer has to hold.
	MaxFrameLen = 65536
)

// TransportHeader is a view into a frame: the UDP header starts at Offset
// and spans Length bytes. It holds no reference to the frame itself.
type TransportHeader struct {
	Offset  int
	Length  int
	SrcPort uint16
	DstPort uint16
}

// End is the first byte past the transport header.
func (h TransportHeader) End() int {
	return h.Offset + h.Length
}

// IsDNS reports whether either end of the datagram uses port 53.
func (h TransportHeader) IsDNS() bool {
	return h.SrcPort == DNSPort || h.DstPort == DNSPort
}

// ParseFrame reads the IPv4 header length from the low nibble of the first
// byte and returns the UDP header that follows it.
func ParseFrame(frame []byte) (TransportHeader, error) {
	if len(frame) == 0 {
		return TransportHeader{}, errs.E(opParseFrame, errs.KindTruncatedFrame, "empty frame")
	}

	off := int(frame[0]&0x0f) * 4
	if off > len(frame) {
		return TransportHeader{}, errs.E(opParseFrame, errs.KindTruncatedFrame,
			fmt.Sprintf("ip header length %d exceeds frame length %d", off, len(frame)))
	}
	if off+UDPHeaderLen > len(frame) {
		return TransportHeader{}, errs.E(opParseFrame, errs.KindTruncatedFrame,
			fmt.Sprintf("udp header at %d exceeds frame length %d", off, len(frame)))
	}

	udp := frame[off : off+UDPHeaderLen]
	return TransportHeader{
		Offset:  off,
		Length:  UDPHeaderLen,
		SrcPort: binary.BigEndian.Uint16(udp[0:2]),
		DstPort: binary.BigEndian.Uint16(udp[2:4]),
	}, nil
}
