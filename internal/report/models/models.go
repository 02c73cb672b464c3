// Package models holds the lost/found report aggregates. User identities are
// the opaque string IDs issued by the external identity provider.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Sentinel identities for counterparts that cannot receive messages.
const (
	AnonymousUser = "anonymous"
	SystemUser    = "system"
)

// IsAddressable reports whether a user ID belongs to a real account that can
// be notified or messaged.
func IsAddressable(userID string) bool {
	return userID != "" && userID != AnonymousUser && userID != SystemUser
}

// LostReport is a declaration that an identity document went missing.
//
// Invariants:
//   - OwnerID, DocumentType, FullName, LastLocation are non-empty
//   - Status follows the transitions in LostStatus.CanTransitionTo
//   - Only the status transition manager flips Status; only the owner
//     deletes or marks recovered
type LostReport struct {
	ID           uuid.UUID  `json:"id"`
	OwnerID      string     `json:"owner_id"`
	DocumentType string     `json:"document_type"`
	FullName     string     `json:"full_name"`
	IDNumber     *string    `json:"id_number,omitempty"`
	DateOfBirth  *string    `json:"date_of_birth,omitempty"`
	PlaceOfBirth *string    `json:"place_of_birth,omitempty"`
	DateOfIssue  *string    `json:"date_of_issue,omitempty"`
	LastLocation string     `json:"last_location"`
	Description  string     `json:"description"`
	ImageURL     *string    `json:"image_url,omitempty"`
	Status       LostStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FoundReport is a declaration that someone is holding a document. Finders
// may stay anonymous, in which case FinderID is the AnonymousUser sentinel.
type FoundReport struct {
	ID             uuid.UUID   `json:"id"`
	FinderID       string      `json:"finder_id"`
	FinderName     string      `json:"finder_name"`
	DocumentType   string      `json:"document_type"`
	FullName       string      `json:"full_name"`
	IDNumber       *string     `json:"id_number,omitempty"`
	DateOfBirth    *string     `json:"date_of_birth,omitempty"`
	PlaceOfBirth   *string     `json:"place_of_birth,omitempty"`
	DateOfIssue    *string     `json:"date_of_issue,omitempty"`
	Region         string      `json:"region"`
	LocationDetail string      `json:"location_detail"`
	ImageURL       string      `json:"image_url"`
	TargetOwnerID  *string     `json:"target_owner_id,omitempty"`
	Status         FoundStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
}
