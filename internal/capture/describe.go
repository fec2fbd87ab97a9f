package capture

import (
	"log/slog"

	"github.com/miekg/dns"
)

// describeQuery logs the question of a blocked datagram as a real DNS
// decoder sees it. Debug only; classification never depends on it.
func describeQuery(payload []byte) {
	q, ok := decodeQuestion(payload)
	if !ok {
		slog.Debug("capture: blocked payload is not a well-formed dns message", "len", len(payload))
		return
	}
	slog.Debug("capture: blocked dns question",
		"qname", q.Name,
		"qtype", dns.TypeToString[q.Qtype],
		"qclass", dns.ClassToString[q.Qclass],
	)
}

func decodeQuestion(payload []byte) (dns.Question, bool) {
	m := new(dns.Msg)
	if err := m.Unpack(payload); err != nil || len(m.Question) == 0 {
		return dns.Question{}, false
	}
	return m.Question[0], true
}
