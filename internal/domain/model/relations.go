package model

import "time"

// Bookmark is one entry of a profile's bookmark ledger. IsBookmarked=false
// means the ledger owner bookmarked ProfileID; IsBookmarked=true is the
// back-reference written when ProfileID bookmarked the owner.
type Bookmark struct {
	ProfileID    string `bson:"profileId" json:"profile_id"`
	Name         string `bson:"name" json:"name"`
	Avatar       string `bson:"avatar" json:"avatar,omitempty"`
	Blocked      bool   `bson:"blocked" json:"blocked"`
	IsBookmarked bool   `bson:"isBookmarked" json:"is_bookmarked"`
}

// Member is a membership record, used both for a profile's direct contact
// list (ChatMember) and for the members of a named group (GroupMember).
// Block and complaint state is scoped to the membership, not the profile.
type Member struct {
	ProfileID string               `bson:"profileId" json:"profile_id"`
	Name      string               `bson:"name" json:"name"`
	Blocked   bool                 `bson:"blocked" json:"blocked"`
	Complains map[string]time.Time `bson:"complains" json:"complains,omitempty"`
}

type Group struct {
	GroupID   string    `bson:"groupId" json:"group_id"`
	Name      string    `bson:"name" json:"name"`
	OwnerID   string    `bson:"ownerId" json:"owner_id"`
	Members   []Member  `bson:"members" json:"members"`
	CreatedOn time.Time `bson:"createdOn" json:"created_on"`
	UpdatedOn time.Time `bson:"updatedOn" json:"updated_on"`
}

func (g Group) MemberIndex(profileID string) int {
	for i, m := range g.Members {
		if m.ProfileID == profileID {
			return i
		}
	}
	return -1
}

func (g Group) MemberIDs() []string {
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.ProfileID)
	}
	return ids
}
