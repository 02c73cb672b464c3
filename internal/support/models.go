// Package support handles help requests from users who cannot resolve an
// issue through the normal flows.
package support

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Ticket is a support request. Submission is public: people locked out of
// their accounts are exactly the ones who need it.
type Ticket struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
