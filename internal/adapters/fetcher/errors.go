package fetcher

import "errors"

// Sentinel kinds for fetch errors. Both mean "skip this subject for the cycle".
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrRequest          = errors.New("profile request failed")
)

// Reason maps a fetch error to a short metrics label.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrUnexpectedStatus):
		return "status"
	case errors.Is(err, ErrRequest):
		return "request"
	default:
		return "unknown"
	}
}
