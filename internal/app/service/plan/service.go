package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/internal/models"
	"github.com/fatflowers/gymdesk/pkg/apperr"
	"github.com/fatflowers/gymdesk/pkg/logctx"
)

var (
	ErrPlanNotFound = apperr.NotFound("plan not found")
	ErrPlanInUse    = apperr.Conflict("plan is referenced by memberships")
	ErrDuration     = apperr.BadRequest(fmt.Sprintf("durationDays must be between 1 and %d", models.MaxDurationDays))
)

type CreateInput struct {
	Name         string `json:"name" binding:"required,max=128"`
	Price        int64  `json:"price" binding:"gte=0"`
	DurationDays int    `json:"durationDays" binding:"required,gt=0,max=36500"`
	// IsActive defaults to true.
	IsActive *bool `json:"isActive"`
}

type UpdateInput struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=128"`
	Price        *int64  `json:"price" binding:"omitempty,gte=0"`
	DurationDays *int    `json:"durationDays" binding:"omitempty,gt=0,max=36500"`
	IsActive     *bool   `json:"isActive"`
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

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Plan, error) {
	if !models.ValidDurationDays(in.DurationDays) {
		return nil, ErrDuration
	}
	now := s.now()
	p := &models.Plan{
		Name:         in.Name,
		Price:        in.Price,
		DurationDays: in.DurationDays,
		IsActive:     in.IsActive == nil || *in.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreatePlan(ctx, p); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("plan created", "plan_id", p.ID, "duration_days", p.DurationDays)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Plan, error) {
	p, err := s.store.GetPlan(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]models.Plan, error) {
	plans, err := s.store.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// Update edits a plan. Existing memberships keep the end date computed when
// they were created.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Plan, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.DurationDays != nil {
		if !models.ValidDurationDays(*in.DurationDays) {
			return nil, ErrDuration
		}
		p.DurationDays = *in.DurationDays
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = s.now()
	if err := s.store.UpdatePlan(ctx, p); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("update plan: %w", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.DeletePlan(ctx, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrPlanNotFound
	case errors.Is(err, storage.ErrReferenced):
		return ErrPlanInUse
	case err != nil:
		return fmt.Errorf("delete plan: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("plan deleted", "plan_id", id)
	return nil
}
