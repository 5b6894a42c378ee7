package repository

import "os"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithFileMode sets the permissions of the snapshot file.
func WithFileMode(mode os.FileMode) Option {
	return func(s *FileStore) {
		if mode != 0 {
			s.mode = mode
		}
	}
}

// WithIndent pretty-prints the snapshot with the given indent.
func WithIndent(indent string) Option {
	return func(s *FileStore) {
		s.indent = indent
	}
}
