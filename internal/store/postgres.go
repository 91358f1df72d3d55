// Package store provides storage backends for RenoIntake.
//
// This file implements a PostgreSQL-backed store for conversations and project states.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/RenoMatch/RenoIntake/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists intake data in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// SaveConversation inserts or updates a conversation row.
func (s *PostgresStore) SaveConversation(c models.Conversation) error {
	suggestionsJSON, err := marshalSuggestions(c.LastSuggestions)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO conversations
		(id, recipient, channel, status, last_question, last_suggestions, target_field, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			recipient = EXCLUDED.recipient,
			channel = EXCLUDED.channel,
			status = EXCLUDED.status,
			last_question = EXCLUDED.last_question,
			last_suggestions = EXCLUDED.last_suggestions,
			target_field = EXCLUDED.target_field,
			updated_at = EXCLUDED.updated_at`,
		c.ID, nilIfEmpty(c.Recipient), nilIfEmpty(c.Channel), string(c.Status),
		nilIfEmpty(c.LastQuestion), nilIfEmpty(suggestionsJSON), nilIfEmpty(c.TargetField),
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveConversation failed", "error", err, "id", c.ID)
		return fmt.Errorf("failed to save conversation %s: %w", c.ID, err)
	}
	slog.Debug("PostgresStore SaveConversation succeeded", "id", c.ID, "status", c.Status)
	return nil
}

// GetConversation returns the conversation or nil when unknown.
func (s *PostgresStore) GetConversation(id string) (*models.Conversation, error) {
	row := s.db.QueryRow(`SELECT id, recipient, channel, status, last_question, last_suggestions, target_field, created_at, updated_at
		FROM conversations WHERE id = $1`, id)
	c, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetConversation failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, err)
	}
	return c, nil
}

// SaveProjectState upserts the accumulated state for a conversation.
func (s *PostgresStore) SaveProjectState(conversationID string, state models.ProjectState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize project state: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO project_states (conversation_id, state, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (conversation_id) DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`,
		conversationID, string(stateJSON), time.Now())
	if err != nil {
		slog.Error("PostgresStore SaveProjectState failed", "error", err, "conversationID", conversationID)
		return fmt.Errorf("failed to save project state for %s: %w", conversationID, err)
	}
	slog.Debug("PostgresStore SaveProjectState succeeded", "conversationID", conversationID, "fields", len(state))
	return nil
}

// GetProjectState returns the stored state, or nil when unknown.
func (s *PostgresStore) GetProjectState(conversationID string) (models.ProjectState, error) {
	var stateJSON string
	err := s.db.QueryRow(`SELECT state FROM project_states WHERE conversation_id = $1`, conversationID).Scan(&stateJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetProjectState failed", "error", err, "conversationID", conversationID)
		return nil, fmt.Errorf("failed to get project state for %s: %w", conversationID, err)
	}
	var state models.ProjectState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, fmt.Errorf("failed to parse project state for %s: %w", conversationID, err)
	}
	return state, nil
}

// RecordEstimate appends a computed estimate row.
func (s *PostgresStore) RecordEstimate(conversationID string, est models.PriceEstimate) error {
	_, err := s.db.Exec(`INSERT INTO price_estimates (conversation_id, min_price, max_price, created_at) VALUES ($1, $2, $3, $4)`,
		conversationID, est.Min, est.Max, time.Now())
	if err != nil {
		slog.Error("PostgresStore RecordEstimate failed", "error", err, "conversationID", conversationID)
		return fmt.Errorf("failed to record estimate for %s: %w", conversationID, err)
	}
	slog.Debug("PostgresStore RecordEstimate succeeded", "conversationID", conversationID, "min", est.Min, "max", est.Max)
	return nil
}

// Close closes the underlying database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
