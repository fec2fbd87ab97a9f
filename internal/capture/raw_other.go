//go:build !linux

package capture

import (
	"context"
	"errors"
	"runtime"

	"github.com/strct-org/ytblocker/internal/errs"
)

const opOpenRaw errs.Op = "capture.OpenRaw"

// Raw is only implemented on Linux; use -replay elsewhere.
type Raw struct{}

func OpenRaw() (*Raw, error) {
	return nil, errs.E(opOpenRaw, errs.KindSystem,
		errors.New("raw udp capture not supported on "+runtime.GOOS))
}

func (*Raw) ReadFrame(context.Context, []byte) (int, error) {
	return 0, errors.New("capture: raw socket unavailable")
}

func (*Raw) Close() error { return nil }
