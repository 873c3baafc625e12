// Package groups manages named groups of profiles. The owner curates the
// membership; members complain about each other through moderation.
package groups

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/query"
	"github.com/ivankudzin/matchcore/internal/domain/rules"
	"github.com/ivankudzin/matchcore/internal/repo/docstore"
	"github.com/ivankudzin/matchcore/internal/services/moderation"
)

const maxNameLength = 80

type Complainer interface {
	GroupMemberComplaint(ctx context.Context, complainant model.Profile, groupID, subjectID string) (moderation.Outcome, error)
}

type Service struct {
	groups     docstore.Collection[model.Group]
	profiles   docstore.Collection[model.Profile]
	complainer Complainer
	log        *zap.Logger
	now        func() time.Time
	newID      func() string
}

func NewService(groups docstore.Collection[model.Group], profiles docstore.Collection[model.Profile], complainer Complainer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		groups:     groups,
		profiles:   profiles,
		complainer: complainer,
		log:        log,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (s *Service) Create(ctx context.Context, owner model.Profile, name string, memberIDs []string) (model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > maxNameLength {
		return model.Group{}, errs.Invalid("create group: name must be 1..%d characters", maxNameLength)
	}

	ids := rules.Difference(rules.NormalizeIDs(memberIDs), []string{owner.ProfileID})
	found, err := s.existing(ctx, ids)
	if err != nil {
		return model.Group{}, err
	}

	now := s.now().UTC()
	members := make([]model.Member, 0, len(found)+1)
	members = append(members, newMember(owner))
	for _, p := range found {
		members = append(members, newMember(p))
	}
	group := model.Group{
		GroupID:   s.newID(),
		Name:      name,
		OwnerID:   owner.ProfileID,
		Members:   members,
		CreatedOn: now,
		UpdatedOn: now,
	}
	if err := s.groups.InsertOne(ctx, group); err != nil {
		return model.Group{}, fmt.Errorf("insert group: %w", err)
	}
	s.log.Info("group created",
		zap.String("group_id", group.GroupID),
		zap.String("owner_id", owner.ProfileID),
		zap.Int("members", len(members)),
	)
	return group, nil
}

// Get returns a group to its members and to administrators.
func (s *Service) Get(ctx context.Context, requester model.Profile, groupID string) (model.Group, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return model.Group{}, err
	}
	if !requester.Admin && group.MemberIndex(requester.ProfileID) < 0 {
		return model.Group{}, errs.Precondition("group %s: not a member", groupID)
	}
	return group, nil
}

// Owned lists the groups owned by a profile.
func (s *Service) Owned(ctx context.Context, ownerID string) ([]model.Group, error) {
	items, err := s.groups.Find(ctx, query.Eq(model.FieldOwnerID, ownerID), docstore.WithSort(query.Asc(model.FieldCreatedOn)))
	if err != nil {
		return nil, fmt.Errorf("find owned groups: %w", err)
	}
	return items, nil
}

func (s *Service) AddMembers(ctx context.Context, requester model.Profile, groupID string, memberIDs []string) (bool, error) {
	group, err := s.owned(ctx, requester, groupID)
	if err != nil {
		return false, err
	}
	pending := rules.Difference(rules.NormalizeIDs(memberIDs), group.MemberIDs())
	if len(pending) == 0 {
		return false, nil
	}
	found, err := s.existing(ctx, pending)
	if err != nil {
		return false, err
	}
	if len(found) == 0 {
		return false, errs.NotFound("add members: no profile exists")
	}

	changed := false
	for _, p := range found {
		update := query.NewUpdate().
			Push(model.FieldMembers, newMember(p)).
			Set(model.FieldUpdatedOn, s.now().UTC())
		pushed, err := s.groups.UpdateOne(ctx,
			query.And(byID(groupID), query.NoElemMatch(model.FieldMembers, query.Eq(model.FieldProfileID, p.ProfileID))),
			update,
		)
		if err != nil {
			return changed, fmt.Errorf("push member: %w", err)
		}
		changed = changed || pushed
	}
	return changed, nil
}

func (s *Service) RemoveMembers(ctx context.Context, requester model.Profile, groupID string, memberIDs []string) (bool, error) {
	group, err := s.owned(ctx, requester, groupID)
	if err != nil {
		return false, err
	}
	ids := rules.NormalizeIDs(memberIDs)
	if rules.Contains(ids, group.OwnerID) {
		return false, errs.Invalid("remove members: the owner cannot be removed")
	}
	return s.pullMembers(ctx, groupID, group.Members, ids)
}

// BlockMembers toggles Blocked on the listed members.
func (s *Service) BlockMembers(ctx context.Context, requester model.Profile, groupID string, memberIDs []string) (bool, error) {
	group, err := s.owned(ctx, requester, groupID)
	if err != nil {
		return false, err
	}
	present := rules.MemberIDs(group.Members, rules.NormalizeIDs(memberIDs))
	if len(present) == 0 {
		return false, nil
	}
	update := rules.ToggleBlocked(query.NewUpdate(), model.FieldMembers, query.In(model.FieldProfileID, present...)).
		Set(model.FieldUpdatedOn, s.now().UTC())
	if _, err := s.groups.UpdateOne(ctx, byID(groupID), update); err != nil {
		return false, fmt.Errorf("toggle members: %w", err)
	}
	s.log.Debug("group members toggled", zap.String("group_id", groupID), zap.Strings("members", present))
	return true, nil
}

func (s *Service) Complain(ctx context.Context, complainant model.Profile, groupID, memberID string) (moderation.Outcome, error) {
	if s.complainer == nil {
		return moderation.Outcome{}, fmt.Errorf("group complaints are not configured")
	}
	return s.complainer.GroupMemberComplaint(ctx, complainant, groupID, memberID)
}

// PruneMembers drops members without an ownership check; the sweeper uses
// it for members whose profiles no longer exist.
func (s *Service) PruneMembers(ctx context.Context, groupID string, memberIDs []string) (bool, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return false, err
	}
	return s.pullMembers(ctx, groupID, group.Members, rules.NormalizeIDs(memberIDs))
}

func (s *Service) pullMembers(ctx context.Context, groupID string, current []model.Member, drop []string) (bool, error) {
	present := rules.MemberIDs(current, drop)
	if len(present) == 0 {
		return false, nil
	}
	update := query.NewUpdate().
		Pull(model.FieldMembers, query.In(model.FieldProfileID, present...)).
		Set(model.FieldUpdatedOn, s.now().UTC())
	if _, err := s.groups.UpdateOne(ctx, byID(groupID), update); err != nil {
		return false, fmt.Errorf("pull members: %w", err)
	}
	s.log.Debug("group members removed", zap.String("group_id", groupID), zap.Strings("members", present))
	return true, nil
}

func (s *Service) owned(ctx context.Context, requester model.Profile, groupID string) (model.Group, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return model.Group{}, err
	}
	if group.OwnerID != requester.ProfileID {
		return model.Group{}, errs.Precondition("group %s: owner required", groupID)
	}
	return group, nil
}

func (s *Service) load(ctx context.Context, groupID string) (model.Group, error) {
	group, err := s.groups.FindOne(ctx, byID(groupID))
	if err != nil {
		return model.Group{}, fmt.Errorf("load group %s: %w", groupID, err)
	}
	return group, nil
}

func (s *Service) existing(ctx context.Context, ids []string) ([]model.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.profiles.Find(ctx, query.And(
		query.In(model.FieldProfileID, ids...),
		query.Ne(model.FieldAdmin, true),
	), docstore.WithProjection(query.Excluding(model.PublicHidden...)))
	if err != nil {
		return nil, fmt.Errorf("find member profiles: %w", err)
	}
	return found, nil
}

func newMember(p model.Profile) model.Member {
	return model.Member{
		ProfileID: p.ProfileID,
		Name:      p.Name,
		Complains: map[string]time.Time{},
	}
}

func byID(groupID string) query.Predicate {
	return query.Eq(model.FieldGroupID, groupID)
}
