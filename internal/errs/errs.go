package errs

import (
	"errors"
	"strings"
)

type Kind uint8

const (
	KindOther          Kind = iota // Unclassified
	KindIO                         // Log file, pcap file
	KindSystem                     // Sockets, exec
	KindTruncatedFrame             // Frame shorter than its declared headers
	KindEmptyName                  // Nothing left after the name offset
	KindAssertion                  // Internal precondition violated (logic defect)
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindSystem:
		return "system"
	case KindTruncatedFrame:
		return "truncated_frame"
	case KindEmptyName:
		return "empty_name"
	case KindAssertion:
		return "assertion_failed"
	default:
		return "other"
	}
}

type Op string

type Error struct {
	Op      Op     // Where did it happen?
	Kind    Kind   // What category?
	Err     error  // Underlying cause (may be another *Error, wraps correctly)
	Message string // Human readable detail
}

func E(args ...any) error {
	e := &Error{}
	for _, arg := range args {
		switch v := arg.(type) {
		case Op:
			e.Op = v
		case Kind:
			e.Kind = v
		case error:
			e.Err = v
		case string:
			e.Message = v
		}
	}
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(string(e.Op))
	}
	if e.Message != "" {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the first non-Other kind found walking the chain from the
// outermost error inward. Errors that were never classified report KindOther.
func KindOf(err error) Kind {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return KindOther
		}
		if e.Kind != KindOther {
			return e.Kind
		}
		err = e.Err
	}
	return KindOther
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
