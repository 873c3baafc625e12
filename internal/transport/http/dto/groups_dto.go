package dto

import "github.com/ivankudzin/matchcore/internal/domain/model"

type CreateGroupRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

type GroupsResponse struct {
	Items []model.Group `json:"items"`
}
