package capture

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/strct-org/ytblocker/internal/errs"
)

const opOpenReplay errs.Op = "capture.OpenReplay"

// Source delivers one network-layer frame per call into buf and returns its
// length. The bytes are only valid until the next call. A Source that runs
// dry returns io.EOF.
type Source interface {
	ReadFrame(ctx context.Context, buf []byte) (int, error)
	Close() error
}

// Replay reads IPv4/UDP frames out of a pcap file, stripping the link layer
// so the loop sees what a raw IP socket would deliver.
type Replay struct {
	f    *os.File
	r    *pcapgo.Reader
	link gopacket.Decoder
}

// OpenReplay opens a classic pcap file.
func OpenReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.E(opOpenReplay, errs.KindIO, err)
	}
	r, err := pcapgo.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errs.E(opOpenReplay, errs.KindIO, err, "not a pcap file")
	}
	return &Replay{f: f, r: r, link: r.LinkType()}, nil
}

func (s *Replay) ReadFrame(ctx context.Context, buf []byte) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		data, _, err := s.r.ReadPacketData()
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return 0, io.EOF
			}
			return 0, err
		}

		pkt := gopacket.NewPacket(data, s.link, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
		ip, ok := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
		if !ok || ip.Protocol != layers.IPProtocolUDP {
			continue
		}

		// Contents is the IP header, Payload everything after it; the raw
		// socket would deliver both back to back.
		n := copy(buf, ip.Contents)
		n += copy(buf[n:], ip.Payload)
		return n, nil
	}
}

func (s *Replay) Close() error {
	return s.f.Close()
}
