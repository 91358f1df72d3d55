package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/RenoMatch/RenoIntake/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// marshalSuggestions serializes a suggestion list for storage, keeping the
// column NULL when there are no suggestions.
func marshalSuggestions(suggestions []string) (string, error) {
	if len(suggestions) == 0 {
		return "", nil
	}
	data, err := json.Marshal(suggestions)
	if err != nil {
		return "", fmt.Errorf("failed to serialize suggestions: %w", err)
	}
	return string(data), nil
}

// scanConversation scans a Conversation from a single sql.Row.
func scanConversation(row *sql.Row) (*models.Conversation, error) {
	var c models.Conversation
	var recipient, channel, lastQuestion, suggestionsJSON, targetField sql.NullString
	err := row.Scan(&c.ID, &recipient, &channel, &c.Status, &lastQuestion, &suggestionsJSON, &targetField, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Recipient = recipient.String
	c.Channel = channel.String
	c.LastQuestion = lastQuestion.String
	c.TargetField = targetField.String
	if suggestionsJSON.Valid && suggestionsJSON.String != "" {
		if err := json.Unmarshal([]byte(suggestionsJSON.String), &c.LastSuggestions); err != nil {
			return nil, fmt.Errorf("failed to parse suggestions for %s: %w", c.ID, err)
		}
	}
	return &c, nil
}
