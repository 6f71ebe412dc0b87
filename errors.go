package hostprobe

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorKind classifies failures reported by this package.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindBackendInit means the backend connection could not be established.
	// The worker that hit it is gone; nothing is retried.
	KindBackendInit
	// KindChannel means the caller and the worker fell out of step.
	KindChannel
	// KindQuery means a single backend query failed.
	KindQuery
	// KindWorkerFailed means the worker goroutine died abnormally.
	KindWorkerFailed
	// KindNoFactors means a fingerprint would have been computed over nothing.
	KindNoFactors
	KindService
	KindRegistry
	KindFile
	KindUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindBackendInit:
		return "backend initialization"
	case KindChannel:
		return "channel"
	case KindQuery:
		return "query"
	case KindWorkerFailed:
		return "worker failed"
	case KindNoFactors:
		return "no factors"
	case KindService:
		return "service"
	case KindRegistry:
		return "registry"
	case KindFile:
		return "file"
	case KindUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Error is the error type returned by every operation of this package.
// Use KindOf or errors.As to inspect it through wrapped chains.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("hostprobe: %s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("hostprobe: %s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("hostprobe: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("hostprobe: %s", e.Kind)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

var (
	// ErrNoFactorsFound is returned when no hardware factor survived collection and sanitizing.
	ErrNoFactorsFound = &Error{Kind: KindNoFactors, Message: "could not gather any hardware factors"}

	// ErrUnsupportedPlatform is the cause attached to KindUnsupported errors.
	ErrUnsupportedPlatform = errors.New("not supported on this platform")
)

func newError(kind ErrorKind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of the outermost *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
