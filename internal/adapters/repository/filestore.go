package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/hiscores/internal/domain/model"
	"github.com/okian/hiscores/pkg/metrics"
)

const defaultFileMode os.FileMode = 0o644

// FileStore keeps the snapshot as a JSON array in a single file.
//
// Writes go to a temp file in the same directory which is then renamed over
// the target, so readers never observe a truncated snapshot.
type FileStore struct {
	path   string
	mode   os.FileMode
	indent string
}

var _ Store = (*FileStore)(nil)

// NewFileStore constructs a store writing to path.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{
		path: path,
		mode: defaultFileMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the snapshot file location.
func (s *FileStore) Path() string {
	return s.path
}

// Save implements Store.Save.
func (s *FileStore) Save(ctx context.Context, records []model.Record) error {
	start := time.Now()
	defer func() {
		metrics.RecordSnapshotWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []model.Record{}
	}

	data, err := s.encode(records)
	if err != nil {
		metrics.RecordSnapshotWriteError()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.writeAtomic(data); err != nil {
		metrics.RecordSnapshotWriteError()
		return err
	}

	metrics.UpdateSnapshot(len(records), time.Now())
	return nil
}

// Load implements Store.Load.
func (s *FileStore) Load(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}

func (s *FileStore) encode(records []model.Record) ([]byte, error) {
	if s.indent != "" {
		return json.MarshalIndent(records, "", s.indent)
	}
	return json.Marshal(records)
}

func (s *FileStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, s.mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
