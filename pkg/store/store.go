// Package store is the graph store adapter: it persists extraction results
// as file/building/element records with relationship edges and serves the
// lookups the chain export engine depends on. The implementation is an
// embedded in-memory graph with optional compressed snapshots on disk.
package store

import (
	"sync"

	"github.com/buildgraph/ifcgraph/pkg/logging"
	"github.com/buildgraph/ifcgraph/pkg/metrics"
)

// Config holds configuration for the store.
type Config struct {
	// DataDir is where snapshots live. Empty disables persistence entirely.
	DataDir string
	// SnapshotOnClose writes a snapshot during Close.
	SnapshotOnClose bool
}

// Store is the embedded graph store. All operations are safe for concurrent
// use; reads return defensive copies so callers can never mutate stored
// state through a query result.
type Store struct {
	mu sync.RWMutex

	files       map[string]*FileRecord
	buildings   map[string]*BuildingRecord
	elements    map[string]*ElementRecord
	connections map[string]*ConnectionRecord

	// Indexes
	elementsByFile map[string][]string // file id -> element ids, insertion order
	elementsByType map[string][]string // ifc type -> element ids
	connsByFile    map[string][]string // file id -> connection ids
	connsByElement map[string][]string // element id -> connection ids (either direction)
	fileOrder      []string            // file ids, insertion order

	config  Config
	logger  logging.Logger
	metrics *metrics.Registry
	closed  bool
}

// Open creates a store and loads an existing snapshot when one is present
// in the data directory.
func Open(config Config, logger logging.Logger, registry *metrics.Registry) (*Store, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if registry == nil {
		registry = metrics.NewRegistry()
	}

	s := &Store{
		files:          make(map[string]*FileRecord),
		buildings:      make(map[string]*BuildingRecord),
		elements:       make(map[string]*ElementRecord),
		connections:    make(map[string]*ConnectionRecord),
		elementsByFile: make(map[string][]string),
		elementsByType: make(map[string][]string),
		connsByFile:    make(map[string][]string),
		connsByElement: make(map[string][]string),
		fileOrder:      make([]string, 0),
		config:         config,
		logger:         logger.With(logging.Component("store")),
		metrics:        registry,
	}

	if config.DataDir != "" {
		if err := s.loadSnapshot(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Close optionally snapshots and marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.config.SnapshotOnClose && s.config.DataDir != "" {
		return s.Snapshot()
	}
	return nil
}

// Clear removes all data. Intended for tests and schema resets.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	s.files = make(map[string]*FileRecord)
	s.buildings = make(map[string]*BuildingRecord)
	s.elements = make(map[string]*ElementRecord)
	s.connections = make(map[string]*ConnectionRecord)
	s.elementsByFile = make(map[string][]string)
	s.elementsByType = make(map[string][]string)
	s.connsByFile = make(map[string][]string)
	s.connsByElement = make(map[string][]string)
	s.fileOrder = make([]string, 0)

	s.metrics.UpdateStoreTotals(0, 0)
	s.logger.Info("Store cleared")
	return nil
}
