package services

import (
	"errors"
	"fmt"

	"gopherwatch/internal/models"
)

var (
	ErrAlreadyRunning = errors.New("poller already running")
	ErrNilHandle      = errors.New("nil poll handle")
	ErrNoSources      = errors.New("poller needs a status source and an alert source")
	ErrNoCells        = errors.New("poller needs a status cell and an alert cell")
)

// TransportError means no usable response was received: the request could
// not be sent, timed out, or the body could not be read.
type TransportError struct {
	Source string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s source: transport: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError means the backend answered with a non-success status.
type HTTPError struct {
	Source     string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s source: unexpected HTTP status %d", e.Source, e.StatusCode)
}

// DecodeError means the body did not match the expected shape.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s source: decode: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// classifyFetchError maps a fetch error onto a cycle outcome. Unknown errors
// are treated as transport failures.
func classifyFetchError(err error) models.SourceOutcome {
	var httpErr *HTTPError
	var decodeErr *DecodeError

	switch {
	case errors.As(err, &httpErr):
		return models.OutcomeHTTPError
	case errors.As(err, &decodeErr):
		return models.OutcomeDecodeError
	default:
		return models.OutcomeTransportError
	}
}
