package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

var (
	ErrConnection    = errors.New("llm endpoint unreachable")
	ErrTimeout       = errors.New("llm request timed out")
	ErrUnknownFormat = errors.New("llm response format unknown")
)

// StatusError is a non-200 reply from the endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm API error (status %d): %s", e.Code, e.Body)
}

// classify wraps transport errors in the package sentinels.
func classify(err error, endpoint string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var opErr *net.OpError
	if errors.Is(err, syscall.ECONNREFUSED) || errors.As(err, &opErr) {
		return fmt.Errorf("%w (%s): %v", ErrConnection, endpoint, err)
	}
	return fmt.Errorf("request failed: %w", err)
}

// Diagnose turns a chat failure into text shown to the user in place of the
// assistant reply.
func Diagnose(err error, endpoint string) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConnection):
		return fmt.Sprintf("Cannot reach the language model service at %s. Make sure the local LLM server (for example Ollama) is running and the address is correct (default http://localhost:11434/v1).", endpoint)
	case errors.Is(err, ErrTimeout):
		return "The language model took too long to respond. Try again or use a smaller model."
	case errors.As(err, &statusErr):
		return fmt.Sprintf("The language model request failed: status %d - %s", statusErr.Code, statusErr.Body)
	case errors.Is(err, ErrUnknownFormat):
		return fmt.Sprintf("The language model returned a response in an unknown format: %v", err)
	default:
		return fmt.Sprintf("Unexpected error while contacting the language model: %v", err)
	}
}
