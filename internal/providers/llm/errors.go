package llm

import (
	"errors"
	"fmt"
)

// ErrTransient marks provider failures worth retrying: rate limits, gateway
// timeouts, transport drops. Deterministic failures (bad input, not found)
// are never wrapped with it.
var ErrTransient = errors.New("transient provider error")

// transientStatus reports whether an HTTP status belongs to the retryable
// class.
func transientStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}

func statusErr(provider string, code int, detail any) error {
	err := fmt.Errorf("%s status %d: %v", provider, code, detail)
	if transientStatus(code) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return err
}
