// Package store provides storage backends for RenoIntake.
//
// It persists intake conversations, their accumulated project states, and
// recorded price estimates. An in-memory store backs tests and DSN-less
// deployments; SQLite and PostgreSQL stores back real ones.
package store

import (
	"strings"
	"sync"

	"github.com/RenoMatch/RenoIntake/internal/models"
)

// Store defines the persistence operations the intake engine relies on.
// GetConversation and GetProjectState return nil (not an error) when the
// conversation is unknown.
type Store interface {
	SaveConversation(c models.Conversation) error
	GetConversation(id string) (*models.Conversation, error)
	SaveProjectState(conversationID string, state models.ProjectState) error
	GetProjectState(conversationID string) (models.ProjectState, error)
	RecordEstimate(conversationID string, est models.PriceEstimate) error
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets a SQLite database file path as the store DSN.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets a PostgreSQL connection string as the store DSN.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType reports "postgres" for PostgreSQL connection strings and
// "sqlite" for anything else (assumed to be a file path).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// NewStore selects a backend from the configured DSN: PostgreSQL for
// connection strings, SQLite for file paths, in-memory when no DSN is set.
func NewStore(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	switch {
	case cfg.DSN == "":
		return NewInMemoryStore(), nil
	case DetectDSNType(cfg.DSN) == "postgres":
		return NewPostgresStore(opts...)
	default:
		return NewSQLiteStore(opts...)
	}
}

// InMemoryStore is a mutex-guarded map-backed Store for tests and DSN-less runs.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]models.Conversation
	states        map[string]models.ProjectState
	estimates     map[string][]models.PriceEstimate
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		conversations: make(map[string]models.Conversation),
		states:        make(map[string]models.ProjectState),
		estimates:     make(map[string][]models.PriceEstimate),
	}
}

// SaveConversation inserts or replaces a conversation row.
func (s *InMemoryStore) SaveConversation(c models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[c.ID] = c
	return nil
}

// GetConversation returns the conversation or nil when unknown.
func (s *InMemoryStore) GetConversation(id string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// SaveProjectState replaces the accumulated state for a conversation.
func (s *InMemoryStore) SaveProjectState(conversationID string, state models.ProjectState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[conversationID] = state.Clone()
	return nil
}

// GetProjectState returns a copy of the stored state, or nil when unknown.
func (s *InMemoryStore) GetProjectState(conversationID string) (models.ProjectState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[conversationID]
	if !ok {
		return nil, nil
	}
	return state.Clone(), nil
}

// RecordEstimate appends a computed estimate for observability.
func (s *InMemoryStore) RecordEstimate(conversationID string, est models.PriceEstimate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.estimates[conversationID] = append(s.estimates[conversationID], est)
	return nil
}

// Estimates returns recorded estimates for a conversation (test helper).
func (s *InMemoryStore) Estimates(conversationID string) []models.PriceEstimate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PriceEstimate(nil), s.estimates[conversationID]...)
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
