package roster

import "errors"

// ErrRead wraps failures to open or read a roster file.
var ErrRead = errors.New("read roster")
