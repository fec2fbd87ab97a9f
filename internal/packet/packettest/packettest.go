// Package packettest builds IPv4/UDP frames for tests of the capture path.
package packettest

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/miekg/dns"
)

var (
	ClientIP = net.IPv4(192, 168, 1, 10)
	ServerIP = net.IPv4(192, 168, 1, 1)
)

// UDPFrame serializes an IPv4 header (no options), a UDP header with the
// given ports and payload into a single network-layer frame.
func UDPFrame(tb testing.TB, srcPort, dstPort uint16, payload []byte) []byte {
	tb.Helper()

	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    ClientIP,
		DstIP:    ServerIP,
	}
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(srcPort),
		DstPort: layers.UDPPort(dstPort),
	}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		tb.Fatalf("packettest: checksum layer: %v", err)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, ip, udp, gopacket.Payload(payload)); err != nil {
		tb.Fatalf("packettest: serialize: %v", err)
	}

	// The serialize buffer is reused by gopacket; hand back an owned copy.
	out := make([]byte, len(buf.Bytes()))
	copy(out, buf.Bytes())
	return out
}

// EthernetFrame wraps an IPv4/UDP datagram in an Ethernet II header, the
// shape a pcap file with LinkTypeEthernet carries.
func EthernetFrame(tb testing.TB, srcPort, dstPort uint16, payload []byte) []byte {
	tb.Helper()

	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		DstMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    ClientIP,
		DstIP:    ServerIP,
	}
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(srcPort),
		DstPort: layers.UDPPort(dstPort),
	}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		tb.Fatalf("packettest: checksum layer: %v", err)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(payload)); err != nil {
		tb.Fatalf("packettest: serialize: %v", err)
	}

	out := make([]byte, len(buf.Bytes()))
	copy(out, buf.Bytes())
	return out
}

// NamePayload is a UDP payload whose bytes after the one-byte skip are
// exactly name.
func NamePayload(name string) []byte {
	return append([]byte{byte(len(name))}, name...)
}

// QueryPayload packs a real DNS A query for name.
func QueryPayload(tb testing.TB, name string) []byte {
	tb.Helper()

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeA)
	m.Id = 0x2a2a

	b, err := m.Pack()
	if err != nil {
		tb.Fatalf("packettest: pack query for %q: %v", name, err)
	}
	return b
}
