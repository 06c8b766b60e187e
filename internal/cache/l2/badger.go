package l2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/sinh-x/google-classroom-mcp/internal/interfaces"
	"github.com/sinh-x/google-classroom-mcp/internal/metrics"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// Ensure BadgerStore implements interfaces.Cache
var _ interfaces.Cache = (*BadgerStore)(nil)

// BadgerStore is the durable tier on an embedded badger database.
// Keys are stored without TTL.
type BadgerStore struct {
	db     *badger.DB
	now    func() time.Time
	logger *zap.Logger
}

// NewBadgerStore opens a badger database with opts
func NewBadgerStore(opts badger.Options, logger *zap.Logger) (*BadgerStore, error) {
	db, err := badger.Open(opts.WithSyncWrites(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", opts.Dir, err)
	}

	return &BadgerStore{
		db:     db,
		now:    time.Now,
		logger: logger,
	}, nil
}

// Get reads and decodes the entry for key
func (s *BadgerStore) Get(_ context.Context, key string) (*models.CacheEntry, bool) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
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

// Set writes the entry in its own transaction
func (s *BadgerStore) Set(_ context.Context, key string, val []byte) error {
	data, err := json.Marshal(models.NewCacheEntry(val, s.now(), 0))
	if err != nil {
		metrics.RecordCacheError(durableLevel, "encode")
		return fmt.Errorf("failed to encode durable entry: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), data))
	})
	if err != nil {
		s.logger.Warn("Failed to persist durable cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError(durableLevel, "write")
		return err
	}
	return nil
}

// Delete removes entry from the database
func (s *BadgerStore) Delete(_ context.Context, key string) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		s.logger.Warn("Failed to delete durable cache entry", zap.String("key", key), zap.Error(err))
	}
}

// Close closes the database
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
