package model

import (
	"time"

	"github.com/ivankudzin/matchcore/internal/domain/enums"
)

// Profile is the stored identity record. The owner sees it whole (the
// CurrentUser view); other callers receive it through a projection that
// zeroes the internal fields, which the json tags then omit.
type Profile struct {
	ProfileID  string `bson:"profileId" json:"profile_id"`
	ExternalID string `bson:"externalId" json:"external_id,omitempty"`
	Admin      bool   `bson:"admin" json:"admin,omitempty"`

	Name        string   `bson:"name" json:"name"`
	Age         int      `bson:"age" json:"age"`
	Height      int      `bson:"height" json:"height"`
	Description string   `bson:"description" json:"description"`
	Tags        []string `bson:"tags" json:"tags"`
	Avatar      string   `bson:"avatar" json:"avatar,omitempty"`
	Region      string   `bson:"region" json:"region"`
	Language    string   `bson:"language" json:"language"`

	Gender            enums.Gender            `bson:"gender" json:"gender,omitempty"`
	SexualOrientation enums.SexualOrientation `bson:"sexualOrientation" json:"sexual_orientation,omitempty"`
	Seeking           []enums.Gender          `bson:"seeking" json:"seeking,omitempty"`

	Body       enums.BodyType         `bson:"body" json:"body,omitempty"`
	Smoking    enums.SmokingHabits    `bson:"smoking" json:"smoking,omitempty"`
	Children   enums.HasChildren      `bson:"children" json:"children,omitempty"`
	Pets       enums.HasPets          `bson:"pets" json:"pets,omitempty"`
	Living     enums.LivingSituation  `bson:"living" json:"living,omitempty"`
	Education  enums.EducationLevel   `bson:"education" json:"education,omitempty"`
	Employment enums.EmploymentStatus `bson:"employment" json:"employment,omitempty"`
	Sports     enums.SportsActivity   `bson:"sports" json:"sports,omitempty"`
	Eating     enums.EatingHabits     `bson:"eating" json:"eating,omitempty"`
	Clothing   enums.ClothingStyle    `bson:"clothing" json:"clothing,omitempty"`
	BodyArt    enums.BodyArt          `bson:"bodyArt" json:"body_art,omitempty"`

	Visited   map[string]time.Time `bson:"visited" json:"visited,omitempty"`
	Bookmarks []Bookmark           `bson:"bookmarks" json:"bookmarks,omitempty"`
	Likes     []string             `bson:"likes" json:"likes,omitempty"`
	Complains map[string]time.Time `bson:"complains" json:"complains,omitempty"`
	Contacts  []Member             `bson:"contacts" json:"contacts,omitempty"`

	CreatedOn  time.Time `bson:"createdOn" json:"created_on"`
	UpdatedOn  time.Time `bson:"updatedOn" json:"updated_on"`
	LastActive time.Time `bson:"lastActive" json:"last_active"`
}

// EnsureLedgers replaces nil ledgers with empty ones. Stores refuse array
// pushes onto null fields, so new records are written fully initialized.
func (p *Profile) EnsureLedgers() {
	if p.Visited == nil {
		p.Visited = map[string]time.Time{}
	}
	if p.Bookmarks == nil {
		p.Bookmarks = []Bookmark{}
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Complains == nil {
		p.Complains = map[string]time.Time{}
	}
	if p.Contacts == nil {
		p.Contacts = []Member{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Seeking == nil {
		p.Seeking = []enums.Gender{}
	}
}

// BookmarkedIDs returns the ids of the profiles the owner bookmarked.
func (p Profile) BookmarkedIDs() []string {
	ids := make([]string, 0, len(p.Bookmarks))
	for _, b := range p.Bookmarks {
		if !b.IsBookmarked {
			ids = append(ids, b.ProfileID)
		}
	}
	return ids
}

// BookmarkedByIDs returns the ids of the profiles that bookmarked the owner.
// Blocked entries are included only when withBlocked is set.
func (p Profile) BookmarkedByIDs(withBlocked bool) []string {
	ids := make([]string, 0, len(p.Bookmarks))
	for _, b := range p.Bookmarks {
		if !b.IsBookmarked {
			continue
		}
		if b.Blocked && !withBlocked {
			continue
		}
		ids = append(ids, b.ProfileID)
	}
	return ids
}

func (p Profile) VisitorIDs() []string {
	ids := make([]string, 0, len(p.Visited))
	for id := range p.Visited {
		ids = append(ids, id)
	}
	return ids
}

func (p Profile) ContactIDs() []string {
	ids := make([]string, 0, len(p.Contacts))
	for _, c := range p.Contacts {
		ids = append(ids, c.ProfileID)
	}
	return ids
}
