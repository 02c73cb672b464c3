// Package models holds the conversation and message aggregates.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the message thread between the two parties of a report.
// The (report, unordered party pair) combination is unique: whoever opens the
// thread first wins, and later attempts land on the same conversation.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	ReportID  uuid.UUID `json:"report_id"`
	OwnerID   string    `json:"owner_id"`
	FinderID  string    `json:"finder_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasMember reports whether the user is a party of the conversation.
func (c Conversation) HasMember(userID string) bool {
	return userID != "" && (userID == c.OwnerID || userID == c.FinderID)
}

// Counterpart returns the other party of the conversation.
func (c Conversation) Counterpart(userID string) string {
	if userID == c.OwnerID {
		return c.FinderID
	}
	return c.OwnerID
}

// Message is a single entry in a conversation.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}
