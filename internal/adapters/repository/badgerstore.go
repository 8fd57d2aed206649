package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/okian/glyco/internal/domain/validate"
	"github.com/okian/glyco/pkg/metrics"
)

// Key layout: records live under rec/<8-byte big-endian id>; the last
// assigned id lives under seq/records and is bumped inside the same write
// transaction that commits the record, so an id never escapes without its
// record.
var (
	recPrefix = []byte("rec/")
	seqKey    = []byte("seq/records")
)

// BadgerStore is a Store backed by an embedded BadgerDB at a fixed path.
// The same path across restarts yields the same records.
type BadgerStore struct {
	mu sync.RWMutex
	db *badger.DB

	now func() time.Time
}

// Option applies a configuration option to the BadgerStore.
type Option func(*BadgerStore)

// WithClock replaces the timestamp source. Tests use this to pin CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *BadgerStore) {
		if now != nil {
			s.now = now
		}
	}
}

// Open returns a store rooted at path. Writes are committed synchronously;
// once Create returns, the record survives a process restart.
func Open(path string, opts ...Option) (*BadgerStore, error) {
	dbOpts := badger.DefaultOptions(filepath.Clean(path)).
		WithLoggingLevel(badger.WARNING).
		WithSyncWrites(true)
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %s", ErrStore, path, err)
	}
	s := &BadgerStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateRecordsTotal(s.Count(context.Background()))
	return s, nil
}

// Close releases the database.
func (s *BadgerStore) Close() error { return s.db.Close() }

func recKey(id uint64) []byte {
	k := make([]byte, len(recPrefix)+8)
	copy(k, recPrefix)
	binary.BigEndian.PutUint64(k[len(recPrefix):], id)
	return k
}

// Create persists a record under the next ascending id.
func (s *BadgerStore) Create(ctx context.Context, input validate.Input, probability float64, result bool) (uint64, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var id uint64
	err := s.db.Update(func(txn *badger.Txn) error {
		last, err := readSeq(txn)
		if err != nil {
			return err
		}
		id = last + 1

		rec := Record{
			ID:          id,
			CreatedAt:   s.now().UTC(),
			Input:       input,
			Probability: probability,
			Result:      boolToInt(result),
		}
		enc, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := txn.Set(recKey(id), enc); err != nil {
			return err
		}

		var seq [8]byte
		binary.BigEndian.PutUint64(seq[:], id)
		return txn.Set(seqKey, seq[:])
	})
	if err != nil {
		metrics.RecordStoreError()
		return 0, fmt.Errorf("%w: create: %s", ErrStore, err)
	}

	metrics.RecordRecordCreated()
	metrics.UpdateRecordsTotal(int(id))
	metrics.ObserveStoreOp("create", float64(time.Since(start).Microseconds())/1000)
	return id, nil
}

// Get returns a record by id.
func (s *BadgerStore) Get(ctx context.Context, id uint64) (Record, error) {
	start := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return Record{}, ErrNotFound
		}
		metrics.RecordStoreError()
		return Record{}, fmt.Errorf("%w: get %d: %s", ErrStore, id, err)
	}

	metrics.ObserveStoreOp("get", float64(time.Since(start).Microseconds())/1000)
	return rec, nil
}

// Count returns the number of stored records. Records are never deleted, so
// the last assigned id is the count.
func (s *BadgerStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last uint64
	_ = s.db.View(func(txn *badger.Txn) error {
		var err error
		last, err = readSeq(txn)
		return err
	})
	return int(last)
}

func readSeq(txn *badger.Txn) (uint64, error) {
	item, err := txn.Get(seqKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var last uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt sequence value of %d bytes", len(val))
		}
		last = binary.BigEndian.Uint64(val)
		return nil
	})
	return last, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
