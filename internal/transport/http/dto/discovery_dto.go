package dto

// SearchRequest is the filtered-search body. Zero bounds and empty lists
// leave a dimension unconstrained.
type SearchRequest struct {
	Name        string   `json:"name"`
	AgeMin      int      `json:"age_min"`
	AgeMax      int      `json:"age_max"`
	HeightMin   int      `json:"height_min"`
	HeightMax   int      `json:"height_max"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Body        []string `json:"body"`
	Smoking     []string `json:"smoking"`
	Children    []string `json:"children"`
	Pets        []string `json:"pets"`
	Living      []string `json:"living"`
	Education   []string `json:"education"`
	Employment  []string `json:"employment"`
	Sports      []string `json:"sports"`
	Eating      []string `json:"eating"`
	Clothing    []string `json:"clothing"`
	BodyArt     []string `json:"body_art"`
}
