package extract

import (
	"errors"
	"fmt"
)

// Sentinel kinds for extraction errors.
var (
	// ErrStructure is wrapped by every page-shape failure.
	ErrStructure = errors.New("unexpected page structure")

	ErrTableNotFound = fmt.Errorf("%w: stats table not found", ErrStructure)
	ErrTooFewRows    = fmt.Errorf("%w: not enough rows in the table", ErrStructure)
	ErrMissingCell   = fmt.Errorf("%w: row has no value cell", ErrStructure)

	// ErrMalformedNumber means a value cell did not hold a clean non-negative integer.
	ErrMalformedNumber = errors.New("malformed number")
)

// Reason maps an extraction error to a short metrics label.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrTableNotFound):
		return "table_not_found"
	case errors.Is(err, ErrTooFewRows):
		return "too_few_rows"
	case errors.Is(err, ErrMissingCell):
		return "missing_cell"
	case errors.Is(err, ErrMalformedNumber):
		return "malformed_number"
	case errors.Is(err, ErrStructure):
		return "structure"
	default:
		return "unknown"
	}
}
