package enums

// Lifestyle attributes use the empty string as the NotChosen value a user
// may store on their profile. Filters never treat it as a constraint.
const NotChosen = ""

type BodyType string

const (
	BodyTypeSlim     BodyType = "slim"
	BodyTypeAverage  BodyType = "average"
	BodyTypeAthletic BodyType = "athletic"
	BodyTypeCurvy    BodyType = "curvy"
	BodyTypeLarge    BodyType = "large"
)

type SmokingHabits string

const (
	SmokingNever        SmokingHabits = "never"
	SmokingOccasionally SmokingHabits = "occasionally"
	SmokingDaily        SmokingHabits = "daily"
)

type HasChildren string

const (
	ChildrenNone      HasChildren = "none"
	ChildrenAtHome    HasChildren = "at_home"
	ChildrenAwayHome  HasChildren = "away_from_home"
	ChildrenWantsSome HasChildren = "wants_some"
)

type HasPets string

const (
	PetsNone  HasPets = "none"
	PetsCat   HasPets = "cat"
	PetsDog   HasPets = "dog"
	PetsOther HasPets = "other"
)

type LivingSituation string

const (
	LivingAlone       LivingSituation = "alone"
	LivingWithFamily  LivingSituation = "with_family"
	LivingWithFriends LivingSituation = "with_friends"
	LivingWithPartner LivingSituation = "with_partner"
)

type EducationLevel string

const (
	EducationSchool     EducationLevel = "school"
	EducationVocational EducationLevel = "vocational"
	EducationBachelor   EducationLevel = "bachelor"
	EducationMaster     EducationLevel = "master"
	EducationDoctorate  EducationLevel = "doctorate"
)

type EmploymentStatus string

const (
	EmploymentStudent      EmploymentStatus = "student"
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self_employed"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
	EmploymentRetired      EmploymentStatus = "retired"
)

type SportsActivity string

const (
	SportsNever     SportsActivity = "never"
	SportsSometimes SportsActivity = "sometimes"
	SportsRegularly SportsActivity = "regularly"
	SportsDaily     SportsActivity = "daily"
)

type EatingHabits string

const (
	EatingOmnivore   EatingHabits = "omnivore"
	EatingVegetarian EatingHabits = "vegetarian"
	EatingVegan      EatingHabits = "vegan"
	EatingHalal      EatingHabits = "halal"
	EatingKosher     EatingHabits = "kosher"
)

type ClothingStyle string

const (
	ClothingCasual      ClothingStyle = "casual"
	ClothingClassic     ClothingStyle = "classic"
	ClothingSporty      ClothingStyle = "sporty"
	ClothingAlternative ClothingStyle = "alternative"
)

type BodyArt string

const (
	BodyArtNone      BodyArt = "none"
	BodyArtTattoos   BodyArt = "tattoos"
	BodyArtPiercings BodyArt = "piercings"
	BodyArtBoth      BodyArt = "both"
)

var lifestyleValues = map[string]map[string]struct{}{
	"body":      set(BodyTypeSlim, BodyTypeAverage, BodyTypeAthletic, BodyTypeCurvy, BodyTypeLarge),
	"smoking":   set(SmokingNever, SmokingOccasionally, SmokingDaily),
	"children":  set(ChildrenNone, ChildrenAtHome, ChildrenAwayHome, ChildrenWantsSome),
	"pets":      set(PetsNone, PetsCat, PetsDog, PetsOther),
	"living":    set(LivingAlone, LivingWithFamily, LivingWithFriends, LivingWithPartner),
	"education": set(EducationSchool, EducationVocational, EducationBachelor, EducationMaster, EducationDoctorate),
	"employment": set(EmploymentStudent, EmploymentEmployed, EmploymentSelfEmployed, EmploymentUnemployed,
		EmploymentRetired),
	"sports":   set(SportsNever, SportsSometimes, SportsRegularly, SportsDaily),
	"eating":   set(EatingOmnivore, EatingVegetarian, EatingVegan, EatingHalal, EatingKosher),
	"clothing": set(ClothingCasual, ClothingClassic, ClothingSporty, ClothingAlternative),
	"body_art": set(BodyArtNone, BodyArtTattoos, BodyArtPiercings, BodyArtBoth),
}

func (v BodyType) Valid() bool         { return validLifestyle("body", string(v)) }
func (v SmokingHabits) Valid() bool    { return validLifestyle("smoking", string(v)) }
func (v HasChildren) Valid() bool      { return validLifestyle("children", string(v)) }
func (v HasPets) Valid() bool          { return validLifestyle("pets", string(v)) }
func (v LivingSituation) Valid() bool  { return validLifestyle("living", string(v)) }
func (v EducationLevel) Valid() bool   { return validLifestyle("education", string(v)) }
func (v EmploymentStatus) Valid() bool { return validLifestyle("employment", string(v)) }
func (v SportsActivity) Valid() bool   { return validLifestyle("sports", string(v)) }
func (v EatingHabits) Valid() bool     { return validLifestyle("eating", string(v)) }
func (v ClothingStyle) Valid() bool    { return validLifestyle("clothing", string(v)) }
func (v BodyArt) Valid() bool          { return validLifestyle("body_art", string(v)) }

func validLifestyle(dimension, value string) bool {
	if value == NotChosen {
		return true
	}
	_, ok := lifestyleValues[dimension][value]
	return ok
}

func set[T ~string](values ...T) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[string(v)] = struct{}{}
	}
	return out
}
