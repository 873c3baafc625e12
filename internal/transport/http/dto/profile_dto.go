package dto

import "github.com/ivankudzin/matchcore/internal/domain/model"

type ProfileRequest struct {
	Name              string   `json:"name"`
	Age               int      `json:"age"`
	Height            int      `json:"height"`
	Description       string   `json:"description"`
	Tags              []string `json:"tags"`
	Region            string   `json:"region"`
	Language          string   `json:"language"`
	Gender            string   `json:"gender"`
	SexualOrientation string   `json:"sexual_orientation"`
	Seeking           []string `json:"seeking"`
	Body              string   `json:"body"`
	Smoking           string   `json:"smoking"`
	Children          string   `json:"children"`
	Pets              string   `json:"pets"`
	Living            string   `json:"living"`
	Education         string   `json:"education"`
	Employment        string   `json:"employment"`
	Sports            string   `json:"sports"`
	Eating            string   `json:"eating"`
	Clothing          string   `json:"clothing"`
	BodyArt           string   `json:"body_art"`
}

type AdminRequest struct {
	Admin bool `json:"admin"`
}

type AvatarResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type ProfilePageResponse struct {
	Total int64           `json:"total"`
	Items []model.Profile `json:"items"`
}
