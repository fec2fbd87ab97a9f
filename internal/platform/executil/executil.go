// Package executil wraps os/exec so packages that shell out to system tools
// (pihole, iptables) can be tested without root or the tool installed.
//
// Each consuming package declares the narrow interface it needs; Real
// satisfies it in production and Mock in tests.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Runner executes a command and returns stdout + stderr merged. The error is
// non-nil if the command could not start or exited non-zero.
type Runner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Real executes commands via os/exec. The child is killed when ctx ends.
type Real struct{}

func (Real) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Call records a single command invocation for assertion in tests.
type Call struct {
	Name string
	Args []string
}

// String returns "name arg1 arg2 ...".
func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// MockResult pre-programs what a specific command returns.
type MockResult struct {
	Output []byte
	Err    error
}

// Mock records every command and answers from pre-programmed results.
// Unknown commands succeed with no output.
//
//	m := &executil.Mock{}
//	m.Expect("pihole -b ads.example", executil.MockResult{Err: errors.New("exit status 1")})
//	sink := denylist.NewPihole("pihole", m, time.Second)
//	// ... exercise code ...
//	m.AssertCalled(t, "pihole -b ads.example")
type Mock struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string]MockResult
}

// Expect pre-programs a response for the exact command string.
func (m *Mock) Expect(command string, result MockResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.responses == nil {
		m.responses = make(map[string]MockResult)
	}
	m.responses[command] = result
}

func (m *Mock) record(name string, args []string) MockResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := Call{Name: name, Args: append([]string(nil), args...)}
	m.calls = append(m.calls, c)
	return m.responses[c.String()]
}

func (m *Mock) CombinedOutput(_ context.Context, name string, args ...string) ([]byte, error) {
	r := m.record(name, args)
	return r.Output, r.Err
}

// Calls returns the recorded invocations in order.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Commands returns the recorded invocations as "name arg1 ..." strings.
func (m *Mock) Commands() []string {
	calls := m.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

func (m *Mock) CallCount(command string) int {
	count := 0
	for _, c := range m.Calls() {
		if c.String() == command {
			count++
		}
	}
	return count
}

type testingT interface {
	Helper()
	Errorf(string, ...any)
}

func (m *Mock) AssertCalled(t testingT, command string) {
	t.Helper()
	if m.CallCount(command) > 0 {
		return
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "expected command %q to be called, but it was not.\n", command)
	buf.WriteString("calls made:\n")
	for _, c := range m.Commands() {
		buf.WriteString("  " + c + "\n")
	}
	t.Errorf("%s", buf.String())
}

func (m *Mock) AssertNotCalled(t testingT, command string) {
	t.Helper()
	if m.CallCount(command) > 0 {
		t.Errorf("expected command %q NOT to be called, but it was", command)
	}
}
