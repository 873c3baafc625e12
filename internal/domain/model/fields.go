package model

// Stored field names, shared by predicate construction and projections.
const (
	FieldProfileID         = "profileId"
	FieldExternalID        = "externalId"
	FieldAdmin             = "admin"
	FieldName              = "name"
	FieldAge               = "age"
	FieldHeight            = "height"
	FieldDescription       = "description"
	FieldTags              = "tags"
	FieldAvatar            = "avatar"
	FieldRegion            = "region"
	FieldLanguage          = "language"
	FieldGender            = "gender"
	FieldSexualOrientation = "sexualOrientation"
	FieldSeeking           = "seeking"
	FieldBody              = "body"
	FieldSmoking           = "smoking"
	FieldChildren          = "children"
	FieldPets              = "pets"
	FieldLiving            = "living"
	FieldEducation         = "education"
	FieldEmployment        = "employment"
	FieldSports            = "sports"
	FieldEating            = "eating"
	FieldClothing          = "clothing"
	FieldBodyArt           = "bodyArt"
	FieldVisited           = "visited"
	FieldBookmarks         = "bookmarks"
	FieldLikes             = "likes"
	FieldComplains         = "complains"
	FieldContacts          = "contacts"
	FieldCreatedOn         = "createdOn"
	FieldUpdatedOn         = "updatedOn"
	FieldLastActive        = "lastActive"

	// Relative to a bookmark/member element.
	FieldIsBookmarked = "isBookmarked"
	FieldBlocked      = "blocked"

	FieldGroupID = "groupId"
	FieldOwnerID = "ownerId"
	FieldMembers = "members"
)

// PublicHidden are the fields omitted for non-admin callers.
var PublicHidden = []string{
	FieldExternalID,
	FieldAdmin,
	FieldGender,
	FieldSexualOrientation,
	FieldSeeking,
	FieldVisited,
	FieldBookmarks,
	FieldLikes,
	FieldComplains,
	FieldContacts,
}

// AdminHidden are the fields omitted for administrators, who keep the
// attributes and the complaint ledger for moderation.
var AdminHidden = []string{
	FieldExternalID,
	FieldVisited,
	FieldBookmarks,
	FieldLikes,
	FieldContacts,
}
