package publish

import "errors"

// ErrCommand wraps a failed git invocation.
var ErrCommand = errors.New("git command failed")
