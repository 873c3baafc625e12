package dto

import (
	"time"

	"github.com/ivankudzin/matchcore/internal/domain/model"
)

type ComplaintResponse struct {
	Inserted bool `json:"inserted"`
	Active   int  `json:"active"`
	Expired  int  `json:"expired"`
	Blocked  bool `json:"blocked"`
}

type ActiveComplaintsResponse struct {
	SubjectID  string               `json:"subject_id"`
	Complaints map[string]time.Time `json:"complaints"`
}

type ComplaintHistoryResponse struct {
	Items []model.ComplaintEvent `json:"items"`
}
