//go:build linux

package capture

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sys/unix"

	"github.com/strct-org/ytblocker/internal/errs"
)

const (
	opOpenRaw errs.Op = "capture.OpenRaw"
	opReadRaw errs.Op = "capture.Raw.ReadFrame"

	// pollInterval bounds how long a blocked receive goes without looking at
	// the context.
	pollInterval = time.Second
)

// Raw is an AF_INET raw socket bound to IPPROTO_UDP. The kernel hands over
// every inbound UDP datagram with its IPv4 header. Needs CAP_NET_RAW.
type Raw struct {
	fd int
}

// OpenRaw creates the socket.
func OpenRaw() (*Raw, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_RAW, unix.IPPROTO_UDP)
	if err != nil {
		return nil, errs.E(opOpenRaw, errs.KindSystem, err, "could not create socket")
	}
	tv := unix.NsecToTimeval(pollInterval.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		unix.Close(fd)
		return nil, errs.E(opOpenRaw, errs.KindSystem, err, "set receive timeout")
	}
	return &Raw{fd: fd}, nil
}

func (s *Raw) ReadFrame(ctx context.Context, buf []byte) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, _, err := unix.Recvfrom(s.fd, buf, 0)
		if err == nil {
			return n, nil
		}
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
			continue
		}
		return 0, errs.E(opReadRaw, errs.KindSystem, err, "could not fetch packet")
	}
}

func (s *Raw) Close() error {
	return unix.Close(s.fd)
}
