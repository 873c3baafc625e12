package dto

import "github.com/ivankudzin/matchcore/internal/domain/model"

type IDsRequest struct {
	IDs []string `json:"ids"`
}

type ChangedResponse struct {
	Changed bool `json:"changed"`
}

type BookmarksResponse struct {
	Direction string           `json:"direction"`
	Items     []model.Bookmark `json:"items"`
}
