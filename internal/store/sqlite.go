// Package store provides storage backends for RenoIntake.
//
// This file implements a SQLite-backed store for conversations and project states.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/RenoMatch/RenoIntake/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists intake data in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// SaveConversation inserts or replaces a conversation row.
func (s *SQLiteStore) SaveConversation(c models.Conversation) error {
	suggestionsJSON, err := marshalSuggestions(c.LastSuggestions)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO conversations
		(id, recipient, channel, status, last_question, last_suggestions, target_field, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, nilIfEmpty(c.Recipient), nilIfEmpty(c.Channel), string(c.Status),
		nilIfEmpty(c.LastQuestion), nilIfEmpty(suggestionsJSON), nilIfEmpty(c.TargetField),
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveConversation failed", "error", err, "id", c.ID)
		return fmt.Errorf("failed to save conversation %s: %w", c.ID, err)
	}
	slog.Debug("SQLiteStore SaveConversation succeeded", "id", c.ID, "status", c.Status)
	return nil
}

// GetConversation returns the conversation or nil when unknown.
func (s *SQLiteStore) GetConversation(id string) (*models.Conversation, error) {
	row := s.db.QueryRow(`SELECT id, recipient, channel, status, last_question, last_suggestions, target_field, created_at, updated_at
		FROM conversations WHERE id = ?`, id)
	c, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetConversation failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, err)
	}
	return c, nil
}

// SaveProjectState replaces the accumulated state for a conversation.
func (s *SQLiteStore) SaveProjectState(conversationID string, state models.ProjectState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize project state: %w", err)
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO project_states (conversation_id, state, updated_at) VALUES (?, ?, ?)`,
		conversationID, string(stateJSON), time.Now())
	if err != nil {
		slog.Error("SQLiteStore SaveProjectState failed", "error", err, "conversationID", conversationID)
		return fmt.Errorf("failed to save project state for %s: %w", conversationID, err)
	}
	slog.Debug("SQLiteStore SaveProjectState succeeded", "conversationID", conversationID, "fields", len(state))
	return nil
}

// GetProjectState returns the stored state, or nil when unknown.
func (s *SQLiteStore) GetProjectState(conversationID string) (models.ProjectState, error) {
	var stateJSON string
	err := s.db.QueryRow(`SELECT state FROM project_states WHERE conversation_id = ?`, conversationID).Scan(&stateJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetProjectState failed", "error", err, "conversationID", conversationID)
		return nil, fmt.Errorf("failed to get project state for %s: %w", conversationID, err)
	}
	var state models.ProjectState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, fmt.Errorf("failed to parse project state for %s: %w", conversationID, err)
	}
	return state, nil
}

// RecordEstimate appends a computed estimate row.
func (s *SQLiteStore) RecordEstimate(conversationID string, est models.PriceEstimate) error {
	_, err := s.db.Exec(`INSERT INTO price_estimates (conversation_id, min_price, max_price, created_at) VALUES (?, ?, ?, ?)`,
		conversationID, est.Min, est.Max, time.Now())
	if err != nil {
		slog.Error("SQLiteStore RecordEstimate failed", "error", err, "conversationID", conversationID)
		return fmt.Errorf("failed to record estimate for %s: %w", conversationID, err)
	}
	slog.Debug("SQLiteStore RecordEstimate succeeded", "conversationID", conversationID, "min", est.Min, "max", est.Max)
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
