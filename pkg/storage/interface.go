package storage

import (
	"context"
	"time"

	"phishscope/pkg/models"
)

// ResultWriter persists collection output keyed by content fingerprint
type ResultWriter interface {
	// SaveResult stores the full collection record under its fingerprint
	SaveResult(res *models.CollectionResult) error

	// SaveVector stores the extracted feature vector for a fingerprint
	SaveVector(fingerprint string, vector []float64) error
}

// ResultReader retrieves previously persisted records
type ResultReader interface {
	// GetResult returns the record for a fingerprint, whether it exists, and any error
	GetResult(fingerprint string) (*models.CollectionResult, bool, error)

	// GetVector returns the stored feature vector for a fingerprint
	GetVector(fingerprint string) ([]float64, bool, error)

	// Seen reports whether a fingerprint has been stored before
	Seen(fingerprint string) (bool, error)
}

// StoreAdmin handles lifecycle and administrative operations
type StoreAdmin interface {
	// ResultCount returns the cached number of stored result records
	ResultCount() int

	// RunGC runs periodic value-log garbage collection. Should be run in a goroutine
	RunGC(ctx context.Context, interval time.Duration)

	// Close cleanly closes the database
	Close() error
}

// Store combines all store interfaces for components that need full access
type Store interface {
	ResultWriter
	ResultReader
	StoreAdmin
}
