// Package moderation files complaints against profiles and group members.
// Complaints decay after a per-context window; a group member is blocked
// automatically once the share of members with an active complaint
// reaches the configured ratio. Only administrators lift a block.
package moderation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/domain/enums"
	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/query"
	"github.com/ivankudzin/matchcore/internal/domain/rules"
	"github.com/ivankudzin/matchcore/internal/repo/docstore"
)

const (
	defaultProfileWindow = 30 * 24 * time.Hour
	defaultGroupWindow   = 7 * 24 * time.Hour
	defaultBlockRatio    = 0.5
)

type Config struct {
	ProfileWindow time.Duration
	GroupWindow   time.Duration
	BlockRatio    float64
}

// AuditSink keeps the complaint trail administrators review.
type AuditSink interface {
	Record(ctx context.Context, ev model.ComplaintEvent) error
	History(ctx context.Context, subjectID string, limit int) ([]model.ComplaintEvent, error)
}

type Observer interface {
	ComplaintFiled(kind enums.ComplaintContext, inserted bool)
	MemberBlocked()
}

type Outcome struct {
	Inserted bool
	Active   int
	Expired  int
	Blocked  bool
}

type Service struct {
	profiles docstore.Collection[model.Profile]
	groups   docstore.Collection[model.Group]
	audit    AuditSink
	observer Observer
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
}

func NewService(profiles docstore.Collection[model.Profile], groups docstore.Collection[model.Group], cfg Config, log *zap.Logger) *Service {
	if cfg.ProfileWindow <= 0 {
		cfg.ProfileWindow = defaultProfileWindow
	}
	if cfg.GroupWindow <= 0 {
		cfg.GroupWindow = defaultGroupWindow
	}
	if cfg.BlockRatio <= 0 {
		cfg.BlockRatio = defaultBlockRatio
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		profiles: profiles,
		groups:   groups,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) AttachAudit(audit AuditSink) {
	s.audit = audit
}

func (s *Service) AttachObserver(observer Observer) {
	s.observer = observer
}

// ProfileComplaint records complainant against subjectID. Profile
// complaints never block automatically; they are a signal for review.
func (s *Service) ProfileComplaint(ctx context.Context, complainant model.Profile, subjectID string) (Outcome, error) {
	if err := checkComplainant(complainant, subjectID); err != nil {
		return Outcome{}, err
	}

	subject, err := s.profiles.FindOne(ctx, query.Eq(model.FieldProfileID, subjectID))
	if err != nil {
		return Outcome{}, fmt.Errorf("load complaint subject: %w", err)
	}

	now := s.now().UTC()
	filed := rules.FileComplaint(subject.Complains, complainant.ProfileID, now, s.cfg.ProfileWindow)
	update := query.NewUpdate().Set(model.FieldComplains+"."+complainant.ProfileID, now)
	for _, id := range filed.ExpiredIDs {
		update = update.Unset(model.FieldComplains + "." + id)
	}
	if _, err := s.profiles.UpdateOne(ctx, query.Eq(model.FieldProfileID, subjectID), update); err != nil {
		return Outcome{}, fmt.Errorf("set profile complaints: %w", err)
	}

	out := Outcome{Inserted: filed.Inserted, Active: len(filed.Active), Expired: filed.Expired}
	s.record(ctx, model.ComplaintEvent{
		Context:       enums.ComplaintContextProfile,
		SubjectID:     subjectID,
		ComplainantID: complainant.ProfileID,
		Inserted:      out.Inserted,
		ActiveCount:   out.Active,
		CreatedAt:     now,
	})
	return out, nil
}

// GroupMemberComplaint records complainant against a member of groupID.
// The complainant must be a member too. A newly inserted complaint that
// brings the active share to the block ratio blocks the member.
func (s *Service) GroupMemberComplaint(ctx context.Context, complainant model.Profile, groupID, subjectID string) (Outcome, error) {
	if err := checkComplainant(complainant, subjectID); err != nil {
		return Outcome{}, err
	}

	group, err := s.groups.FindOne(ctx, query.Eq(model.FieldGroupID, groupID))
	if err != nil {
		return Outcome{}, fmt.Errorf("load group: %w", err)
	}
	if group.MemberIndex(complainant.ProfileID) < 0 {
		return Outcome{}, errs.Precondition("complainant is not a member of group %s", groupID)
	}
	idx := group.MemberIndex(subjectID)
	if idx < 0 {
		return Outcome{}, errs.NotFound("member %s of group %s", subjectID, groupID)
	}

	now := s.now().UTC()
	subject := group.Members[idx]
	filed := rules.FileComplaint(subject.Complains, complainant.ProfileID, now, s.cfg.GroupWindow)

	where := query.Eq(model.FieldProfileID, subjectID)
	update := rules.RecordComplaint(query.NewUpdate(), model.FieldMembers, where, complainant.ProfileID, filed)
	out := Outcome{Inserted: filed.Inserted, Active: len(filed.Active), Expired: filed.Expired}
	if filed.Inserted && !subject.Blocked && rules.ShouldBlock(len(filed.Active), len(group.Members), s.cfg.BlockRatio) {
		update = update.SetEach(model.FieldMembers,
			query.And(where, query.Eq(model.FieldBlocked, false)),
			model.FieldBlocked, true,
		)
		out.Blocked = true
	}

	if _, err := s.groups.UpdateOne(ctx,
		query.Eq(model.FieldGroupID, groupID),
		update.Set(model.FieldUpdatedOn, now),
	); err != nil {
		return Outcome{}, fmt.Errorf("record member complaint: %w", err)
	}

	if out.Blocked {
		s.log.Info("group member blocked",
			zap.String("group_id", groupID),
			zap.String("member_id", subjectID),
			zap.Int("active_complaints", out.Active),
			zap.Int("members", len(group.Members)),
		)
		if s.observer != nil {
			s.observer.MemberBlocked()
		}
	}
	s.record(ctx, model.ComplaintEvent{
		Context:       enums.ComplaintContextGroup,
		SubjectID:     subjectID,
		ComplainantID: complainant.ProfileID,
		GroupID:       groupID,
		Inserted:      out.Inserted,
		ActiveCount:   out.Active,
		Blocked:       out.Blocked,
		CreatedAt:     now,
	})
	return out, nil
}

// UnblockMember lifts a block and clears the member's complaints so the
// member starts over. Administrators only.
func (s *Service) UnblockMember(ctx context.Context, requester model.Profile, groupID, memberID string) (bool, error) {
	if !requester.Admin {
		return false, errs.Precondition("unblock member: administrator required")
	}
	group, err := s.groups.FindOne(ctx, query.Eq(model.FieldGroupID, groupID))
	if err != nil {
		return false, fmt.Errorf("load group: %w", err)
	}
	idx := group.MemberIndex(memberID)
	if idx < 0 {
		return false, errs.NotFound("member %s of group %s", memberID, groupID)
	}
	if !group.Members[idx].Blocked {
		return false, nil
	}

	blocked := query.And(
		query.Eq(model.FieldProfileID, memberID),
		query.Eq(model.FieldBlocked, true),
	)
	update := query.NewUpdate().
		SetEach(model.FieldMembers, blocked, model.FieldBlocked, false).
		SetEach(model.FieldMembers, blocked, model.FieldComplains, map[string]time.Time{}).
		Set(model.FieldUpdatedOn, s.now().UTC())
	unblocked, err := s.groups.UpdateOne(ctx,
		query.And(query.Eq(model.FieldGroupID, groupID), query.ElemMatch(model.FieldMembers, blocked)),
		update,
	)
	if err != nil {
		return false, fmt.Errorf("unblock member: %w", err)
	}
	return unblocked, nil
}

// ActiveComplaints returns the unexpired complaints against a profile.
func (s *Service) ActiveComplaints(ctx context.Context, requester model.Profile, subjectID string) (map[string]time.Time, error) {
	if !requester.Admin {
		return nil, errs.Precondition("active complaints: administrator required")
	}
	subject, err := s.profiles.FindOne(ctx, query.Eq(model.FieldProfileID, subjectID))
	if err != nil {
		return nil, fmt.Errorf("load complaint subject: %w", err)
	}
	active, _ := rules.ActiveComplaints(subject.Complains, s.now().UTC(), s.cfg.ProfileWindow)
	return active, nil
}

// ComplaintHistory reads the audit trail of a subject.
func (s *Service) ComplaintHistory(ctx context.Context, requester model.Profile, subjectID string, limit int) ([]model.ComplaintEvent, error) {
	if !requester.Admin {
		return nil, errs.Precondition("complaint history: administrator required")
	}
	if s.audit == nil {
		return []model.ComplaintEvent{}, nil
	}
	items, err := s.audit.History(ctx, subjectID, limit)
	if err != nil {
		return nil, errs.Store("complaint history", err)
	}
	return items, nil
}

func checkComplainant(complainant model.Profile, subjectID string) error {
	if complainant.Admin {
		return errs.Precondition("administrators cannot file complaints")
	}
	if subjectID == "" {
		return errs.Invalid("complaint subject is required")
	}
	if complainant.ProfileID == subjectID {
		return errs.Invalid("cannot complain about self")
	}
	return nil
}

// record forwards to the audit trail and the observer. The complaint is
// already stored, so an audit failure is logged rather than returned.
func (s *Service) record(ctx context.Context, ev model.ComplaintEvent) {
	if s.observer != nil {
		s.observer.ComplaintFiled(ev.Context, ev.Inserted)
	}
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, ev); err != nil {
		s.log.Warn("complaint audit failed",
			zap.String("subject_id", ev.SubjectID),
			zap.String("context", string(ev.Context)),
			zap.Error(err),
		)
	}
}
