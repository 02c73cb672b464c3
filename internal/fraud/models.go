// Package fraud records suspected abuse of the registry: fake found reports,
// impersonation attempts, extortion.
package fraud

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusReviewed Status = "REVIEWED"
)

// Report is a fraud complaint filed against a lost or found report.
type Report struct {
	ID              uuid.UUID `json:"id"`
	ReporterID      string    `json:"reporter_id"`
	SubjectReportID uuid.UUID `json:"subject_report_id"`
	Reason          string    `json:"reason"`
	Details         string    `json:"details"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}
