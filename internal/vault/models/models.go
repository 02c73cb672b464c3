// Package models holds the vault aggregate: the printable QR identity that
// links a physical document back to its owner.
package models

import "time"

// Vault binds an opaque public slug to an owner. The slug goes on printed QR
// stickers, so it carries no identifying information itself.
type Vault struct {
	Slug      string    `json:"slug"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}
