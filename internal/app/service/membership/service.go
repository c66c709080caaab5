// Package membership creates memberships and applies admin status actions.
// Status changes are a flat overwrite: any action is accepted from any status,
// and nothing expires a membership automatically. Whether a membership is
// usable is decided by Membership.ActiveAt, which also checks the date window.
package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/internal/models"
	"github.com/fatflowers/gymdesk/pkg/apperr"
	"github.com/fatflowers/gymdesk/pkg/logctx"
	"github.com/fatflowers/gymdesk/pkg/types"
)

var (
	ErrMemberNotFound     = apperr.NotFound("member not found")
	ErrPlanNotFound       = apperr.NotFound("plan not found")
	ErrMembershipNotFound = apperr.NotFound("membership not found")
	ErrInvalidAction      = apperr.BadRequest("invalid action")
	ErrPlanDuration       = apperr.BadRequest("plan duration is out of range")
)

type CreateInput struct {
	MemberID  string    `json:"memberId" binding:"required"`
	PlanID    string    `json:"planId" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
}

type PatchInput struct {
	Action types.MembershipAction `json:"action" binding:"required,oneof=pause resume expire"`
}

type Service struct {
	store storage.Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewService(store storage.Store, log *zap.SugaredLogger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

var Module = fx.Options(
	fx.Provide(NewService),
)

// Create sells plan to member starting at in.StartDate. The end date is fixed
// here from the plan duration and the status is always ACTIVE, even for a
// start date in the future.
func (s *Service) Create(ctx context.Context, in CreateInput, operatorID string) (*models.Membership, error) {
	var out *models.Membership
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		if _, err := tx.GetMember(ctx, in.MemberID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("get member: %w", err)
		}
		plan, err := tx.GetPlan(ctx, in.PlanID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrPlanNotFound
			}
			return fmt.Errorf("get plan: %w", err)
		}
		if !models.ValidDurationDays(plan.DurationDays) {
			return ErrPlanDuration
		}

		now := s.now()
		m := &models.Membership{
			MemberID:  in.MemberID,
			PlanID:    plan.ID,
			StartDate: in.StartDate,
			EndDate:   models.MembershipEndDate(in.StartDate, plan.DurationDays),
			Status:    types.MembershipStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.CreateMembership(ctx, m); err != nil {
			return fmt.Errorf("create membership: %w", err)
		}
		if err := tx.CreateMembershipLog(ctx, s.newLog(ctx, types.MembershipActionCreate, nil, m, operatorID, now)); err != nil {
			return fmt.Errorf("create membership log: %w", err)
		}
		m.Plan = plan
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("membership created",
		"membership_id", out.ID,
		"member_id", out.MemberID,
		"plan_id", out.PlanID,
		"end_date", out.EndDate,
	)
	return out, nil
}

// Patch applies action to the membership. The row is locked for the duration
// so concurrent actions are applied one after another and each is logged.
func (s *Service) Patch(ctx context.Context, id string, action types.MembershipAction, operatorID string) (*models.Membership, error) {
	target, ok := action.TargetStatus()
	if !ok {
		return nil, ErrInvalidAction
	}

	var out *models.Membership
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		before, err := tx.LockMembership(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrMembershipNotFound
			}
			return fmt.Errorf("lock membership: %w", err)
		}

		now := s.now()
		if err := tx.UpdateMembershipStatus(ctx, id, target, now); err != nil {
			return fmt.Errorf("update membership status: %w", err)
		}
		after, err := tx.GetMembership(ctx, id)
		if err != nil {
			return fmt.Errorf("reload membership: %w", err)
		}
		if err := tx.CreateMembershipLog(ctx, s.newLog(ctx, action, before, after, operatorID, now)); err != nil {
			return fmt.Errorf("create membership log: %w", err)
		}
		out = after
		return nil
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("membership status changed",
		"membership_id", id,
		"action", action,
		"status", out.Status,
	)
	return out, nil
}

func (s *Service) ListByMember(ctx context.Context, memberID string) ([]models.Membership, error) {
	items, err := s.store.ListMembershipsByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return items, nil
}

// History returns the audit trail of a membership, newest first.
func (s *Service) History(ctx context.Context, id string) ([]models.MembershipLog, error) {
	if _, err := s.store.GetMembership(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	logs, err := s.store.ListMembershipLogs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list membership logs: %w", err)
	}
	return logs, nil
}

func (s *Service) newLog(ctx context.Context, action types.MembershipAction, before, after *models.Membership, operatorID string, at time.Time) *models.MembershipLog {
	extra := datatypes.JSONMap{}
	if operatorID != "" {
		extra["operator_id"] = operatorID
	}
	if traceID := logctx.TraceID(ctx); traceID != "" {
		extra["trace_id"] = traceID
	}
	return &models.MembershipLog{
		MembershipID: after.ID,
		MemberID:     after.MemberID,
		Action:       action,
		Before:       datatypes.NewJSONType(snapshot(before)),
		After:        datatypes.NewJSONType(snapshot(after)),
		Extra:        extra,
		CreatedAt:    at,
	}
}

// snapshot copies the membership columns without associations.
func snapshot(m *models.Membership) *models.Membership {
	if m == nil {
		return nil
	}
	c := *m
	c.Plan, c.Member = nil, nil
	return &c
}
