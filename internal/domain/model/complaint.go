package model

import (
	"time"

	"github.com/ivankudzin/matchcore/internal/domain/enums"
)

// ComplaintEvent is one filed complaint as kept in the audit trail.
type ComplaintEvent struct {
	ID            int64                  `json:"id"`
	Context       enums.ComplaintContext `json:"context"`
	SubjectID     string                 `json:"subject_id"`
	ComplainantID string                 `json:"complainant_id"`
	GroupID       string                 `json:"group_id,omitempty"`
	Inserted      bool                   `json:"inserted"`
	ActiveCount   int                    `json:"active_count"`
	Blocked       bool                   `json:"blocked"`
	CreatedAt     time.Time              `json:"created_at"`
}
