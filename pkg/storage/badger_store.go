package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"phishscope/pkg/log"
	"phishscope/pkg/models"
	"phishscope/pkg/utils"
)

const (
	resultKeyPrefix  = "result:"    // Prefix for collection record keys in DB
	featureKeyPrefix = "features:"  // Prefix for feature vector keys in DB
	resultDBDir      = "results_db" // Subdirectory name within stateDir for Badger DB files
)

// BadgerStore implements the Store interface using BadgerDB. Records are
// keyed by content fingerprint, so re-collecting an unchanged page is a
// no-op at the storage level.
type BadgerStore struct {
	db          *badger.DB
	log         *logrus.Entry
	ctx         context.Context // Parent context
	resultCount atomic.Int64    // Cached result-key count for O(1) ResultCount
}

// NewBadgerStore opens (or creates) the result database under stateDir
func NewBadgerStore(ctx context.Context, stateDir string, logger *logrus.Entry) (*BadgerStore, error) {
	store := &BadgerStore{
		log: logger,
		ctx: ctx,
	}

	dbPath := filepath.Join(stateDir, resultDBDir)
	logger.Infof("Initializing result database at: %s", dbPath)

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("cannot create state directory %s: %w", dbPath, err)
	}

	badgerLogger := log.NewBadgerAdapter(logger.WithField("component", "badgerdb"))
	opts := badger.DefaultOptions(dbPath).
		WithLogger(badgerLogger).
		WithNumVersionsToKeep(1) // Only the latest record per fingerprint

	var err error
	store.db, err = badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", dbPath, err)
	}

	count, err := store.countResults()
	if err != nil {
		logger.Warnf("Failed to count existing results: %v", err)
	} else if count > 0 {
		store.resultCount.Store(int64(count))
		logger.Infof("Loaded existing result count: %d", count)
	}

	logger.Info("Result database initialized successfully.")
	return store, nil
}

// countResults performs a one-time result-key scan (used only during initialization)
func (s *BadgerStore) countResults() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(resultKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

const maxConflictRetries = 10

// dbUpdate wraps db.Update with a retry loop for BadgerDB transaction conflicts.
// Concurrent MVCC transactions on overlapping keys can return badger.ErrConflict;
// these resolve in microseconds, so a tight retry loop is sufficient.
func (s *BadgerStore) dbUpdate(fn func(txn *badger.Txn) error) error {
	for i := range maxConflictRetries {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debugf("BadgerDB transaction conflict (attempt %d/%d), retrying", i+1, maxConflictRetries)
	}
	return fmt.Errorf("%w: transaction conflict not resolved after %d retries", utils.ErrDatabase, maxConflictRetries)
}

// SaveResult implements the ResultWriter interface
func (s *BadgerStore) SaveResult(res *models.CollectionResult) error {
	if s.db == nil {
		return errors.New("result DB not initialized")
	}
	if res.Fingerprint == "" {
		return fmt.Errorf("%w: result for %s has no fingerprint", utils.ErrDatabase, res.URL)
	}
	key := []byte(resultKeyPrefix + res.Fingerprint)

	payload, errJSON := json.Marshal(res)
	if errJSON != nil {
		wrappedErr := fmt.Errorf("%w: failed to marshal result for key '%s': %w", utils.ErrSerialization, string(key), errJSON)
		s.log.Error(wrappedErr)
		return wrappedErr
	}

	isNew := false
	err := s.dbUpdate(func(txn *badger.Txn) error {
		_, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			isNew = true
		}
		return txn.SetEntry(badger.NewEntry(key, payload))
	})

	if err != nil {
		s.log.WithField("key", string(key)).Errorf("DB Update error in SaveResult: %v", err)
		return fmt.Errorf("%w: failed saving result for key '%s': %w", utils.ErrDatabase, string(key), err)
	}
	if isNew {
		s.resultCount.Add(1)
	}

	s.log.Debugf("Saved result for key '%s' (%s)", string(key), res.URL)
	return nil
}

// GetResult implements the ResultReader interface
func (s *BadgerStore) GetResult(fingerprint string) (*models.CollectionResult, bool, error) {
	var result *models.CollectionResult
	key := []byte(resultKeyPrefix + fingerprint)

	errView := s.db.View(func(txn *badger.Txn) error {
		item, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			return nil // Absence is not an error here
		}
		if errGet != nil {
			return fmt.Errorf("%w: failed getting result key '%s': %w", utils.ErrDatabase, string(key), errGet)
		}

		return item.Value(func(val []byte) error {
			var decoded models.CollectionResult
			if errJSON := json.Unmarshal(val, &decoded); errJSON != nil {
				return fmt.Errorf("%w: failed to unmarshal result for key '%s': %w", utils.ErrSerialization, string(key), errJSON)
			}
			result = &decoded
			return nil
		})
	})

	if errView != nil {
		s.log.Errorf("DB View error in GetResult for key '%s': %v", string(key), errView)
		return nil, false, errView
	}
	return result, result != nil, nil
}

// Seen implements the ResultReader interface
func (s *BadgerStore) Seen(fingerprint string) (bool, error) {
	found := false
	key := []byte(resultKeyPrefix + fingerprint)

	errView := s.db.View(func(txn *badger.Txn) error {
		_, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			return nil
		}
		if errGet != nil {
			return fmt.Errorf("%w: failed getting result key '%s': %w", utils.ErrDatabase, string(key), errGet)
		}
		found = true
		return nil
	})

	if errView != nil {
		s.log.Errorf("DB View error in Seen for key '%s': %v", string(key), errView)
		return false, errView
	}
	return found, nil
}

// SaveVector implements the ResultWriter interface
func (s *BadgerStore) SaveVector(fingerprint string, vector []float64) error {
	if s.db == nil {
		return errors.New("result DB not initialized")
	}
	key := []byte(featureKeyPrefix + fingerprint)

	payload, errJSON := json.Marshal(vector)
	if errJSON != nil {
		wrappedErr := fmt.Errorf("%w: failed to marshal vector for key '%s': %w", utils.ErrSerialization, string(key), errJSON)
		s.log.Error(wrappedErr)
		return wrappedErr
	}

	err := s.dbUpdate(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key, payload))
	})
	if err != nil {
		s.log.WithField("key", string(key)).Errorf("DB Update error in SaveVector: %v", err)
		return fmt.Errorf("%w: failed saving vector for key '%s': %w", utils.ErrDatabase, string(key), err)
	}

	return nil
}

// GetVector implements the ResultReader interface
func (s *BadgerStore) GetVector(fingerprint string) ([]float64, bool, error) {
	var vector []float64
	key := []byte(featureKeyPrefix + fingerprint)

	errView := s.db.View(func(txn *badger.Txn) error {
		item, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			return nil
		}
		if errGet != nil {
			return fmt.Errorf("%w: failed getting vector key '%s': %w", utils.ErrDatabase, string(key), errGet)
		}

		return item.Value(func(val []byte) error {
			if errJSON := json.Unmarshal(val, &vector); errJSON != nil {
				return fmt.Errorf("%w: failed to unmarshal vector for key '%s': %w", utils.ErrSerialization, string(key), errJSON)
			}
			return nil
		})
	})

	if errView != nil {
		s.log.Errorf("DB View error in GetVector for key '%s': %v", string(key), errView)
		return nil, false, errView
	}
	return vector, vector != nil, nil
}

// ResultCount implements the StoreAdmin interface.
// Returns the cached result count (O(1)) maintained by atomic increments on writes.
func (s *BadgerStore) ResultCount() int {
	return int(s.resultCount.Load())
}

// RunGC runs BadgerDB's value log garbage collection periodically
func (s *BadgerStore) RunGC(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute // Default interval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("BadgerDB GC goroutine started.")

	for {
		select {
		case <-ticker.C:
			if s.db == nil || s.db.IsClosed() {
				s.log.Info("DB GC: Database is nil or closed, skipping GC cycle.")
				continue
			}

			var err error
			// Loop GC until it returns ErrNoRewrite or another error
			for {
				// Run GC if log is at least 50% reclaimable space
				err = s.db.RunValueLogGC(0.5)
				if err != nil {
					break
				}
			}

			if errors.Is(err, badger.ErrNoRewrite) {
				s.log.Debug("BadgerDB GC finished (no rewrite needed).")
			} else {
				s.log.Errorf("BadgerDB GC error: %v", err)
			}

		case <-ctx.Done():
			s.log.Infof("Stopping BadgerDB garbage collection goroutine: %v", ctx.Err())
			return
		}
	}
}

// Close implements the StoreAdmin interface
func (s *BadgerStore) Close() error {
	if s.db != nil && !s.db.IsClosed() {
		s.log.Info("Closing result DB...")
		if err := s.db.Close(); err != nil {
			s.log.Errorf("Error closing result DB: %v", err)
			return err
		}
		s.log.Info("Result DB closed.")
		return nil
	}
	s.log.Info("Result DB already closed or was not initialized.")
	return nil
}
