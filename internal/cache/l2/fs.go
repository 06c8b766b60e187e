package l2

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/sinh-x/google-classroom-mcp/internal/interfaces"
	"github.com/sinh-x/google-classroom-mcp/internal/metrics"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// Ensure FSStore implements interfaces.Cache
var _ interfaces.Cache = (*FSStore)(nil)

const (
	entryExt     = ".json"
	tempPrefix   = ".tmp-"
	durableLevel = "l2"
)

// FSStore is the durable tier as one JSON file per key in a directory.
// Reads that fail for any reason are misses; entries never expire.
type FSStore struct {
	fs     billy.Filesystem
	now    func() time.Time
	logger *zap.Logger
}

// NewFSStore creates a durable store rooted at fsys
func NewFSStore(fsys billy.Filesystem, logger *zap.Logger) (*FSStore, error) {
	if err := fsys.MkdirAll(".", 0o700); err != nil {
		return nil, fmt.Errorf("failed to create durable cache directory: %w", err)
	}

	return &FSStore{
		fs:     fsys,
		now:    time.Now,
		logger: logger,
	}, nil
}

// FileName maps a cache key to its filesystem-safe file name
func FileName(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key)) + entryExt
}

// Get reads and decodes the entry for key
func (s *FSStore) Get(_ context.Context, key string) (*models.CacheEntry, bool) {
	data, err := util.ReadFile(s.fs, FileName(key))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Failed to read durable cache entry", zap.String("key", key), zap.Error(err))
			metrics.RecordCacheError(durableLevel, "read")
		}
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("Malformed durable cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError(durableLevel, "decode")
		return nil, false
	}

	return &entry, true
}

// Set writes the entry synchronously via a temp file and rename
func (s *FSStore) Set(_ context.Context, key string, val []byte) error {
	data, err := json.Marshal(models.NewCacheEntry(val, s.now(), 0))
	if err != nil {
		metrics.RecordCacheError(durableLevel, "encode")
		return fmt.Errorf("failed to encode durable entry: %w", err)
	}

	if err := s.writeAtomic(FileName(key), data); err != nil {
		s.logger.Warn("Failed to persist durable cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError(durableLevel, "write")
		return err
	}
	return nil
}

func (s *FSStore) writeAtomic(name string, data []byte) error {
	tmp, err := s.fs.TempFile("", tempPrefix)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := s.fs.Rename(tmpName, name); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Delete removes the entry file if present
func (s *FSStore) Delete(_ context.Context, key string) {
	if err := s.fs.Remove(FileName(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Failed to delete durable cache entry", zap.String("key", key), zap.Error(err))
	}
}
