// Package profiles owns the identity lifecycle: registration, attribute
// edits, activity stamps, administrator grants and deletion.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/domain/enums"
	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/query"
	"github.com/ivankudzin/matchcore/internal/pkg/validate"
	"github.com/ivankudzin/matchcore/internal/repo/docstore"
	"github.com/ivankudzin/matchcore/internal/services/accounts"
)

const (
	maxNameLength        = 60
	maxDescriptionLength = 1000
	maxTags              = 20
	minAge               = 18
	maxAge               = 120
	minHeight            = 100
	maxHeight            = 250

	defaultActivityWindow = time.Minute
)

type Accounts interface {
	Get(ctx context.Context, externalID string) (accounts.Account, error)
	Delete(ctx context.Context, externalID string) error
}

type Avatars interface {
	Delete(ctx context.Context, key string)
}

type ActivityThrottle interface {
	Claim(ctx context.Context, profileID string, window time.Duration) (bool, error)
}

// Attributes are the owner-editable profile fields.
type Attributes struct {
	Name        string
	Age         int
	Height      int
	Description string
	Tags        []string
	Region      string
	Language    string

	Gender            enums.Gender
	SexualOrientation enums.SexualOrientation
	Seeking           []enums.Gender

	Body       enums.BodyType
	Smoking    enums.SmokingHabits
	Children   enums.HasChildren
	Pets       enums.HasPets
	Living     enums.LivingSituation
	Education  enums.EducationLevel
	Employment enums.EmploymentStatus
	Sports     enums.SportsActivity
	Eating     enums.EatingHabits
	Clothing   enums.ClothingStyle
	BodyArt    enums.BodyArt
}

type Service struct {
	profiles       docstore.Collection[model.Profile]
	accounts       Accounts
	avatars        Avatars
	activity       ActivityThrottle
	activityWindow time.Duration
	log            *zap.Logger
	now            func() time.Time
	newID          func() string
}

func NewService(profiles docstore.Collection[model.Profile], log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		profiles:       profiles,
		activityWindow: defaultActivityWindow,
		log:            log,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

func (s *Service) AttachAccounts(accounts Accounts) {
	s.accounts = accounts
}

func (s *Service) AttachAvatars(avatars Avatars) {
	s.avatars = avatars
}

func (s *Service) AttachActivity(throttle ActivityThrottle, window time.Duration) {
	s.activity = throttle
	if window > 0 {
		s.activityWindow = window
	}
}

// Register creates the profile bound to an external account. The server
// assigns the id, the timestamps and empty ledgers.
func (s *Service) Register(ctx context.Context, externalID string, in Attributes) (model.Profile, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return model.Profile{}, errs.Invalid("register: external account id is required")
	}
	if !validate.Length(in.Name, 1, maxNameLength) {
		return model.Profile{}, errs.Invalid("register: name must be 1..%d characters", maxNameLength)
	}
	if err := checkAttributes(in); err != nil {
		return model.Profile{}, err
	}

	if _, err := s.Current(ctx, externalID); err == nil {
		return model.Profile{}, errs.Precondition("register: account %s already has a profile", externalID)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return model.Profile{}, err
	}
	if s.accounts != nil {
		if _, err := s.accounts.Get(ctx, externalID); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return model.Profile{}, errs.Precondition("register: unknown account %s", externalID)
			}
			return model.Profile{}, fmt.Errorf("resolve account: %w", err)
		}
	}

	now := s.now().UTC()
	p := model.Profile{
		ProfileID:  s.newID(),
		ExternalID: externalID,
		Name:       strings.TrimSpace(in.Name),
		CreatedOn:  now,
		UpdatedOn:  now,
		LastActive: now,
	}
	applyAttributes(&p, in)
	p.EnsureLedgers()

	if err := s.profiles.InsertOne(ctx, p); err != nil {
		return model.Profile{}, fmt.Errorf("insert profile: %w", err)
	}
	s.log.Info("profile registered", zap.String("profile_id", p.ProfileID))
	return p, nil
}

// Current returns the full record of the caller.
func (s *Service) Current(ctx context.Context, externalID string) (model.Profile, error) {
	p, err := s.profiles.FindOne(ctx, query.Eq(model.FieldExternalID, externalID))
	if err != nil {
		return model.Profile{}, fmt.Errorf("load current profile: %w", err)
	}
	p.EnsureLedgers()
	return p, nil
}

// Get returns one profile projected for the requester.
func (s *Service) Get(ctx context.Context, requester model.Profile, profileID string) (model.Profile, error) {
	hidden := model.PublicHidden
	if requester.Admin {
		hidden = model.AdminHidden
	}
	items, err := s.profiles.Find(ctx, byID(profileID),
		docstore.WithProjection(query.Excluding(hidden...)),
		docstore.WithLimit(1),
	)
	if err != nil {
		return model.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	if len(items) == 0 {
		return model.Profile{}, errs.NotFound("profile %s", profileID)
	}
	return items[0], nil
}

// UpdateAttributes rewrites the editable fields. Identity, name, ledgers
// and CreatedOn are kept.
func (s *Service) UpdateAttributes(ctx context.Context, owner model.Profile, in Attributes) (model.Profile, error) {
	if err := checkAttributes(in); err != nil {
		return model.Profile{}, err
	}
	var next model.Profile
	applyAttributes(&next, in)
	next.EnsureLedgers()

	update := query.NewUpdate().
		Set(model.FieldAge, next.Age).
		Set(model.FieldHeight, next.Height).
		Set(model.FieldDescription, next.Description).
		Set(model.FieldTags, next.Tags).
		Set(model.FieldRegion, next.Region).
		Set(model.FieldLanguage, next.Language).
		Set(model.FieldGender, next.Gender).
		Set(model.FieldSexualOrientation, next.SexualOrientation).
		Set(model.FieldSeeking, next.Seeking).
		Set(model.FieldBody, next.Body).
		Set(model.FieldSmoking, next.Smoking).
		Set(model.FieldChildren, next.Children).
		Set(model.FieldPets, next.Pets).
		Set(model.FieldLiving, next.Living).
		Set(model.FieldEducation, next.Education).
		Set(model.FieldEmployment, next.Employment).
		Set(model.FieldSports, next.Sports).
		Set(model.FieldEating, next.Eating).
		Set(model.FieldClothing, next.Clothing).
		Set(model.FieldBodyArt, next.BodyArt).
		Set(model.FieldUpdatedOn, s.now().UTC())

	matched, err := s.profiles.UpdateOne(ctx, byID(owner.ProfileID), update)
	if err != nil {
		return model.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	if !matched {
		return model.Profile{}, errs.NotFound("profile %s", owner.ProfileID)
	}
	return s.load(ctx, owner.ProfileID)
}

// ReplaceAvatar points the profile at a new avatar object and drops the
// previous one.
func (s *Service) ReplaceAvatar(ctx context.Context, owner model.Profile, key string) error {
	current, err := s.load(ctx, owner.ProfileID)
	if err != nil {
		return err
	}
	update := query.NewUpdate().
		Set(model.FieldAvatar, key).
		Set(model.FieldUpdatedOn, s.now().UTC())
	if _, err := s.profiles.UpdateOne(ctx, byID(owner.ProfileID), update); err != nil {
		return fmt.Errorf("set avatar: %w", err)
	}
	if s.avatars != nil && current.Avatar != "" && current.Avatar != key {
		s.avatars.Delete(ctx, current.Avatar)
	}
	return nil
}

// Touch stamps LastActive at most once per activity window.
func (s *Service) Touch(ctx context.Context, profileID string) (bool, error) {
	if s.activity != nil {
		ok, err := s.activity.Claim(ctx, profileID, s.activityWindow)
		if err != nil {
			return false, fmt.Errorf("claim activity slot: %w", err)
		}
		if !ok {
			return false, nil
		}
	}
	matched, err := s.profiles.UpdateOne(ctx, byID(profileID), query.NewUpdate().Set(model.FieldLastActive, s.now().UTC()))
	if err != nil {
		return false, fmt.Errorf("touch profile: %w", err)
	}
	return matched, nil
}

// Delete removes a profile: the owner deletes their own, an administrator
// deletes anyone else's. References held by other profiles are left for
// the sweeper.
func (s *Service) Delete(ctx context.Context, requester model.Profile, profileID string) error {
	self := profileID == "" || profileID == requester.ProfileID
	if self {
		profileID = requester.ProfileID
		if requester.Admin {
			return errs.Precondition("delete profile: administrators cannot delete themselves")
		}
	} else if !requester.Admin {
		return errs.Precondition("delete profile: administrator required")
	}

	target, err := s.load(ctx, profileID)
	if err != nil {
		return err
	}
	if s.accounts != nil && target.ExternalID != "" {
		if err := s.accounts.Delete(ctx, target.ExternalID); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
	}
	deleted, err := s.profiles.DeleteOne(ctx, byID(profileID))
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if !deleted {
		return errs.NotFound("profile %s", profileID)
	}
	if s.avatars != nil && target.Avatar != "" {
		s.avatars.Delete(ctx, target.Avatar)
	}
	s.log.Info("profile deleted", zap.String("profile_id", profileID), zap.Bool("by_admin", !self))
	return nil
}

// SetAdmin grants or revokes the administrator flag on another profile.
func (s *Service) SetAdmin(ctx context.Context, requester model.Profile, profileID string, admin bool) (bool, error) {
	if !requester.Admin {
		return false, errs.Precondition("set admin: administrator required")
	}
	if profileID == requester.ProfileID {
		return false, errs.Precondition("set admin: cannot change own administrator flag")
	}
	target, err := s.load(ctx, profileID)
	if err != nil {
		return false, err
	}
	if target.Admin == admin {
		return false, nil
	}
	update := query.NewUpdate().
		Set(model.FieldAdmin, admin).
		Set(model.FieldUpdatedOn, s.now().UTC())
	if _, err := s.profiles.UpdateOne(ctx, byID(profileID), update); err != nil {
		return false, fmt.Errorf("set admin flag: %w", err)
	}
	s.log.Info("administrator flag changed",
		zap.String("profile_id", profileID),
		zap.String("by", requester.ProfileID),
		zap.Bool("admin", admin),
	)
	return true, nil
}

// IDs pages through stored profile ids in ascending order, starting after
// the given id.
func (s *Service) IDs(ctx context.Context, after string, limit int) ([]string, error) {
	pred := query.True()
	if after != "" {
		pred = query.And(query.Gte(model.FieldProfileID, after), query.Ne(model.FieldProfileID, after))
	}
	items, err := s.profiles.Find(ctx, pred,
		docstore.WithProjection(query.Excluding(
			model.FieldVisited, model.FieldBookmarks, model.FieldLikes, model.FieldComplains, model.FieldContacts,
		)),
		docstore.WithSort(query.Asc(model.FieldProfileID)),
		docstore.WithLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list profile ids: %w", err)
	}
	ids := make([]string, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.ProfileID)
	}
	return ids, nil
}

func (s *Service) load(ctx context.Context, profileID string) (model.Profile, error) {
	p, err := s.profiles.FindOne(ctx, byID(profileID))
	if err != nil {
		return model.Profile{}, fmt.Errorf("load profile %s: %w", profileID, err)
	}
	p.EnsureLedgers()
	return p, nil
}

func checkAttributes(in Attributes) error {
	if in.Age != 0 && !validate.Between(in.Age, minAge, maxAge) {
		return errs.Invalid("age must be %d..%d", minAge, maxAge)
	}
	if in.Height != 0 && !validate.Between(in.Height, minHeight, maxHeight) {
		return errs.Invalid("height must be %d..%d", minHeight, maxHeight)
	}
	if !validate.Length(in.Description, 0, maxDescriptionLength) {
		return errs.Invalid("description exceeds %d characters", maxDescriptionLength)
	}
	if len(validate.Tags(in.Tags)) > maxTags {
		return errs.Invalid("at most %d tags", maxTags)
	}
	if !validate.Required(in.Region) {
		return errs.Invalid("region is required")
	}
	if !in.Gender.Valid() {
		return errs.Invalid("unknown gender %q", in.Gender)
	}
	if len(in.Seeking) == 0 {
		return errs.Invalid("seeking is required")
	}
	for _, g := range in.Seeking {
		if !g.Valid() {
			return errs.Invalid("unknown seeking gender %q", g)
		}
	}
	if !in.SexualOrientation.Valid() {
		return errs.Invalid("unknown sexual orientation %q", in.SexualOrientation)
	}

	lifestyle := []struct {
		name  string
		valid bool
	}{
		{model.FieldBody, in.Body.Valid()},
		{model.FieldSmoking, in.Smoking.Valid()},
		{model.FieldChildren, in.Children.Valid()},
		{model.FieldPets, in.Pets.Valid()},
		{model.FieldLiving, in.Living.Valid()},
		{model.FieldEducation, in.Education.Valid()},
		{model.FieldEmployment, in.Employment.Valid()},
		{model.FieldSports, in.Sports.Valid()},
		{model.FieldEating, in.Eating.Valid()},
		{model.FieldClothing, in.Clothing.Valid()},
		{model.FieldBodyArt, in.BodyArt.Valid()},
	}
	for _, l := range lifestyle {
		if !l.valid {
			return errs.Invalid("unknown %s value", l.name)
		}
	}
	return nil
}

func applyAttributes(p *model.Profile, in Attributes) {
	p.Age = in.Age
	p.Height = in.Height
	p.Description = strings.TrimSpace(in.Description)
	p.Tags = validate.Tags(in.Tags)
	p.Region = strings.TrimSpace(in.Region)
	p.Language = strings.TrimSpace(in.Language)
	p.Gender = in.Gender
	p.SexualOrientation = in.SexualOrientation
	p.Seeking = dedupeGenders(in.Seeking)
	p.Body = in.Body
	p.Smoking = in.Smoking
	p.Children = in.Children
	p.Pets = in.Pets
	p.Living = in.Living
	p.Education = in.Education
	p.Employment = in.Employment
	p.Sports = in.Sports
	p.Eating = in.Eating
	p.Clothing = in.Clothing
	p.BodyArt = in.BodyArt
}

func dedupeGenders(values []enums.Gender) []enums.Gender {
	out := make([]enums.Gender, 0, len(values))
	seen := make(map[enums.Gender]struct{}, len(values))
	for _, g := range values {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

func byID(profileID string) query.Predicate {
	return query.Eq(model.FieldProfileID, profileID)
}
