package capture_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strct-org/ytblocker/internal/capture"
	"github.com/strct-org/ytblocker/internal/denylist"
	"github.com/strct-org/ytblocker/internal/errs"
	"github.com/strct-org/ytblocker/internal/metrics"
	"github.com/strct-org/ytblocker/internal/packet"
	"github.com/strct-org/ytblocker/internal/packet/packettest"
)

// writePcap stores Ethernet frames in a classic pcap file.
func writePcap(t *testing.T, frames ...[]byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "capture.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(packet.MaxFrameLen, layers.LinkTypeEthernet))
	for i, fr := range frames {
		ci := gopacket.CaptureInfo{
			Timestamp:     fixedNow.Add(time.Duration(i) * time.Millisecond),
			CaptureLength: len(fr),
			Length:        len(fr),
		}
		require.NoError(t, w.WritePacket(ci, fr))
	}
	return path
}

func arpFrame(t *testing.T) []byte {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       []byte{0x02, 0, 0, 0, 0, 1},
		DstMAC:       []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte{0x02, 0, 0, 0, 0, 1},
		SourceProtAddress: []byte{192, 168, 1, 10},
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    []byte{192, 168, 1, 1},
	}
	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, eth, arp))
	return append([]byte(nil), buf.Bytes()...)
}

func TestReplay_StripsLinkLayer(t *testing.T) {
	path := writePcap(t,
		arpFrame(t),
		packettest.EthernetFrame(t, 40000, 53, packettest.NamePayload(adHost)),
	)

	src, err := capture.OpenReplay(path)
	require.NoError(t, err)
	defer src.Close()

	buf := make([]byte, packet.MaxFrameLen)
	n, err := src.ReadFrame(context.Background(), buf)
	require.NoError(t, err)

	want := packettest.UDPFrame(t, 40000, 53, packettest.NamePayload(adHost))
	assert.Equal(t, want, buf[:n])

	_, err = src.ReadFrame(context.Background(), buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReplay_DrivesLoop(t *testing.T) {
	path := writePcap(t,
		packettest.EthernetFrame(t, 40000, 53, packettest.NamePayload("plain.example.com")),
		packettest.EthernetFrame(t, 40000, 53, packettest.NamePayload(adHost)),
		packettest.EthernetFrame(t, 53, 40000, packettest.NamePayload(contentHost)),
	)

	src, err := capture.OpenReplay(path)
	require.NoError(t, err)
	defer src.Close()

	rec := &denylist.Recorder{}
	events := &memLog{}
	l := capture.New(src, rec, events, capture.WithMetrics(metrics.New(prometheus.NewRegistry())))

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, []string{adHost, adVariant}, rec.Domains())
	assert.Equal(t, []string{"Blocking ad: " + adHost, "Blocking ad: " + adVariant}, events.messages())
}

func TestReplay_CancelledContext(t *testing.T) {
	path := writePcap(t, packettest.EthernetFrame(t, 40000, 53, packettest.NamePayload(adHost)))
	src, err := capture.OpenReplay(path)
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = src.ReadFrame(ctx, make([]byte, 16))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOpenReplay_Errors(t *testing.T) {
	_, err := capture.OpenReplay(filepath.Join(t.TempDir(), "missing.pcap"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindIO))

	junk := filepath.Join(t.TempDir(), "junk.pcap")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not a pcap header"), 0o644))
	_, err = capture.OpenReplay(junk)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindIO))
}
