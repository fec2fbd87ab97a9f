package executil

import (
	"context"
	"log/slog"
	"strings"
)

// DevRunner wraps Real{} and stubs commands that must not touch the host in
// dev or dry-run mode, such as the denylist tool. Stubbed commands are logged
// and succeed with no output; anything else falls through to the real binary.
type DevRunner struct {
	real    Runner
	stubbed map[string]bool
}

// NewDevRunner stubs the named commands. Names are matched exactly against
// the command passed to CombinedOutput, so pass the same path the caller
// will use.
func NewDevRunner(stub ...string) *DevRunner {
	r := &DevRunner{real: Real{}, stubbed: make(map[string]bool, len(stub))}
	for _, name := range stub {
		r.stubbed[name] = true
	}
	return r
}

func (d *DevRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	if d.stubbed[name] {
		slog.Info("executil: dev stub, not executed", "cmd", name, "args", strings.Join(args, " "))
		return nil, nil
	}
	return d.real.CombinedOutput(ctx, name, args...)
}
