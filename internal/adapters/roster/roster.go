// Package roster reads the per-group identifier files.
//
// Each group lives in <dir>/<group>.txt with one "<profile_key>=<display_name>"
// per line. Lines that do not split into exactly two fields are logged and
// skipped; a missing file is an error for the whole cycle.
package roster

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/hiscores/internal/domain/model"
	"github.com/okian/hiscores/pkg/logger"
	"github.com/okian/hiscores/pkg/metrics"
)

const (
	fileExt   = ".txt"
	separator = "="
)

// Loader returns the subjects of a group.
type Loader interface {
	Load(ctx context.Context, group model.Group) ([]model.Subject, error)
}

// FileLoader loads rosters from a directory.
type FileLoader struct {
	dir    string
	logger logger.Logger
}

// NewFileLoader creates a FileLoader rooted at dir.
func NewFileLoader(dir string, l logger.Logger) *FileLoader {
	if l == nil {
		l = logger.Get().Named("roster")
	}
	return &FileLoader{dir: dir, logger: l}
}

// Path returns the file backing group.
func (f *FileLoader) Path(group model.Group) string {
	return filepath.Join(f.dir, string(group)+fileExt)
}

// Load reads the group's roster fresh from disk.
func (f *FileLoader) Load(ctx context.Context, group model.Group) ([]model.Subject, error) {
	path := f.Path(group)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer func() { _ = file.Close() }()

	subjects, err := Parse(ctx, file, group, f.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	return subjects, nil
}

// Parse reads roster lines from r. Malformed lines are logged, counted and
// skipped; only I/O errors are returned.
func Parse(ctx context.Context, r io.Reader, group model.Group, l logger.Logger) ([]model.Subject, error) {
	var subjects []model.Subject
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		key, name, ok := SplitLine(line)
		if !ok {
			l.Warn(ctx, "line format error",
				logger.String("group", string(group)),
				logger.Int("line", lineNo),
				logger.String("content", line),
			)
			metrics.RecordMalformedLine(string(group))
			continue
		}
		subjects = append(subjects, model.Subject{Key: key, Name: name, Group: group})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return subjects, nil
}

// SplitLine splits "<key>=<name>". A line with no separator or more than one
// is rejected, matching a plain split that must yield exactly two fields.
func SplitLine(line string) (key, name string, ok bool) {
	parts := strings.Split(line, separator)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
