package store

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/schoolmate/schoolmate-core/internal/models"
	appErrors "github.com/schoolmate/schoolmate-core/pkg/errors"
	"github.com/schoolmate/schoolmate-core/pkg/metrics"
)

// Store owns the root document. Every read goes through View and every write
// through Mutate, so no caller can bypass the key invariants or skip a
// persist. A successful mutation recomputes the projections and rewrites the
// whole document synchronously; last write wins.
type Store struct {
	mu        sync.RWMutex
	doc       *models.Document
	persister Persister
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// Options tunes how a store is opened.
type Options struct {
	// SeedDemoData controls whether a first-run document starts with the
	// demo users. Catalog backfill applies either way.
	SeedDemoData bool
}

// Open loads the persisted document with the demo users seeded on first run.
func Open(p Persister, logger *zap.Logger, m *metrics.Metrics) (*Store, error) {
	return OpenWithOptions(p, logger, m, Options{SeedDemoData: true})
}

// OpenWithOptions loads the persisted document, falling back to a freshly
// seeded default when nothing is stored or the stored bytes fail to parse.
// The corrupt data is discarded.
func OpenWithOptions(p Persister, logger *zap.Logger, m *metrics.Metrics, opts Options) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	doc := DefaultDocument()
	if !opts.SeedDemoData {
		doc = EmptyDocument()
	}
	data, found, err := p.Load()
	switch {
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load document")
	case found:
		loaded := &models.Document{}
		if jsonErr := json.Unmarshal(data, loaded); jsonErr != nil {
			logger.Warn("stored document unparsable, starting fresh", zap.Error(jsonErr))
		} else {
			doc = loaded
		}
	}

	Seed(doc)

	s := &Store{doc: doc, persister: p, logger: logger, metrics: m}
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// View runs fn with read access to the document. The callback must not
// retain or mutate what it is handed.
func (s *Store) View(fn func(doc *models.Document)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.doc)
}

// Mutate runs fn with write access, then recomputes the projections and
// persists. When fn returns an error nothing is persisted, but in-place
// changes made before the error are not rolled back; mutators validate
// before touching the document.
func (s *Store) Mutate(fn func(doc *models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.doc); err != nil {
		return err
	}
	SyncProjections(s.doc)
	return s.persistLocked()
}

// Serialize returns the pretty-printed document, the exact bytes Save writes
// and Export streams.
func (s *Store) Serialize() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return marshalDocument(s.doc)
}

// Replace swaps in an entirely new document (import), backfilling whatever
// the incoming data is missing, and persists.
func (s *Store) Replace(doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	Seed(doc)
	s.doc = doc
	return s.persistLocked()
}

// Reset discards everything and returns to the seeded first-run state.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := DefaultDocument()
	Seed(doc)
	s.doc = doc
	return s.persistLocked()
}

// CurrentUser returns a copy of the logged-in user record, or nil for an
// anonymous session.
func (s *Store) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc.LoggedInID == nil {
		return nil
	}
	u := s.doc.UserByID(*s.doc.LoggedInID)
	if u == nil {
		return nil
	}
	copied := *u
	return &copied
}

func (s *Store) persistLocked() error {
	data, err := marshalDocument(s.doc)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to serialize document")
	}
	start := time.Now()
	if err := s.persister.Save(data); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to persist document")
	}
	s.metrics.ObservePersist(len(data), time.Since(start))
	return nil
}

func marshalDocument(doc *models.Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
