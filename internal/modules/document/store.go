package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/edenspa/core/internal/models"
	"go.uber.org/zap"
)

// Store owns the canonical site document.
type Store struct {
	persister Persister
	logger    *zap.Logger

	writeMu sync.Mutex
	mu      sync.RWMutex
	doc     models.ConfigDocument
	loaded  bool
}

func NewStore(persister Persister, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{persister: persister, logger: logger}
}

// Load reads the persisted document. When nothing usable is stored the
// default document is written and adopted; failing that write is returned.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, err := s.readPersisted(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Info("no stored document, writing defaults")
		} else {
			s.logger.Warn("stored document unreadable, writing defaults", zap.Error(err))
		}
		doc = models.DefaultDocument()
		if err := s.persist(ctx, doc); err != nil {
			return fmt.Errorf("write initial document: %w", err)
		}
	}

	s.mu.Lock()
	s.doc = doc
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *Store) readPersisted(ctx context.Context) (models.ConfigDocument, error) {
	data, err := s.persister.Load(ctx)
	if err != nil {
		return models.ConfigDocument{}, err
	}
	var stored map[string]json.RawMessage
	if err := json.Unmarshal(data, &stored); err != nil {
		return models.ConfigDocument{}, fmt.Errorf("decode stored document: %w", err)
	}
	if stored == nil {
		return models.ConfigDocument{}, errors.New("decode stored document: not an object")
	}
	doc := models.DefaultDocument()
	if err := applyPartial(&doc, stored); err != nil {
		return models.ConfigDocument{}, err
	}
	return doc, nil
}

// Read returns a copy of the full document, password included.
func (s *Store) Read() models.ConfigDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Snapshot returns the client-visible copy of the document.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Public()
}

// TenantPassword returns the current tenant password.
func (s *Store) TenantPassword() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.UserPassword
}

// Loaded reports whether Load has completed.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Merge overwrites the top-level fields named in partial, persists the result
// and only then makes it current. On error the current document is unchanged.
func (s *Store) Merge(ctx context.Context, partial map[string]json.RawMessage) (models.ConfigDocument, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Read()
	if err := applyPartial(&next, partial); err != nil {
		return models.ConfigDocument{}, err
	}
	if err := s.persist(ctx, next); err != nil {
		return models.ConfigDocument{}, fmt.Errorf("persist document: %w", err)
	}

	s.mu.Lock()
	s.doc = next
	s.mu.Unlock()
	return next.Clone(), nil
}

func (s *Store) persist(ctx context.Context, doc models.ConfigDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return s.persister.Save(ctx, data)
}
