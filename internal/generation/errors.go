package generation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/catalog-console/console/internal/protocol"
)

const (
	// SentinelDescription is the description text the pipeline returns on a
	// completed request whose generation actually failed
	SentinelDescription = "error"

	// TimeoutMessage is shown when the attempt budget runs out
	TimeoutMessage = "Request timeout - please try again"

	// DefaultFailureMessage is used when an error status carries no text
	DefaultFailureMessage = "Failed to generate description"

	// SoftFailureMessage accompanies a sentinel description
	SoftFailureMessage = "The generator could not produce a description - please regenerate"
)

// ErrSoftFailure marks a completed request whose description is the sentinel
var ErrSoftFailure = errors.New("generation completed with a failure description")

// ErrInvalidTransition is returned when a session is asked to leave a state
// it cannot leave
var ErrInvalidTransition = errors.New("invalid session transition")

// IsSentinel reports whether a completed description is the failure sentinel.
// A legitimate description consisting of exactly "error" is indistinguishable
// on the wire and is treated the same way.
func IsSentinel(description string) bool {
	return description == SentinelDescription
}

// ValidationError lists the required fields missing from a generation form.
// No request is submitted and no session is created when it is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// GenerationError is an explicit error status reported by the pipeline
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	return e.Message
}

// TimeoutError means the attempt budget ran out before a terminal status
type TimeoutError struct {
	Attempts int
	LastErr  error
}

func (e *TimeoutError) Error() string {
	return TimeoutMessage
}

func (e *TimeoutError) Unwrap() error { return e.LastErr }

// Kind classifies a generation failure for presentation
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindNetwork
	KindHTTP
	KindGeneration
	KindTimeout
	KindSoftFailure
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindGeneration:
		return "generation"
	case KindTimeout:
		return "timeout"
	case KindSoftFailure:
		return "soft_failure"
	default:
		return "unknown"
	}
}

// Classify maps an error from any stage of a generation to its Kind.
// A timeout wrapping a query failure is still a timeout.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	var validationErr *ValidationError
	var timeoutErr *TimeoutError
	var generationErr *GenerationError
	var networkErr *protocol.NetworkError
	var httpErr *protocol.HTTPError

	switch {
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &timeoutErr):
		return KindTimeout
	case errors.Is(err, ErrSoftFailure):
		return KindSoftFailure
	case errors.As(err, &generationErr):
		return KindGeneration
	case errors.As(err, &networkErr):
		return KindNetwork
	case errors.As(err, &httpErr):
		return KindHTTP
	default:
		return KindUnknown
	}
}
