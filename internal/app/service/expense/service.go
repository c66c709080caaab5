package expense

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
	"github.com/fatflowers/gymdesk/pkg/types"
)

var ErrExpenseNotFound = apperr.NotFound("expense not found")

type CreateInput struct {
	Category types.ExpenseCategory `json:"category" binding:"required,oneof=ELECTRICITY WATER RENT EQUIPMENT MAINTENANCE SUPPLIES OTHER"`
	Amount   int64                 `json:"amount" binding:"required,gt=0"`
	Note     string                `json:"note"`
}

type UpdateInput struct {
	Category *types.ExpenseCategory `json:"category" binding:"omitempty,oneof=ELECTRICITY WATER RENT EQUIPMENT MAINTENANCE SUPPLIES OTHER"`
	Amount   *int64                 `json:"amount" binding:"omitempty,gt=0"`
	Note     *string                `json:"note"`
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

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Expense, error) {
	now := s.now()
	e := &models.Expense{Category: in.Category, Amount: in.Amount, Note: in.Note, CreatedAt: now, UpdatedAt: now}
	if err := s.store.CreateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("expense recorded", "expense_id", e.ID, "category", e.Category, "amount", e.Amount)
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Expense, error) {
	e, err := s.store.GetExpense(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (s *Service) List(ctx context.Context, q storage.ExpenseQuery) ([]models.Expense, int64, error) {
	items, total, err := s.store.ListExpenses(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Expense, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Category != nil {
		e.Category = *in.Category
	}
	if in.Amount != nil {
		e.Amount = *in.Amount
	}
	if in.Note != nil {
		e.Note = *in.Note
	}
	e.UpdatedAt = s.now()
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("update expense: %w", err)
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteExpense(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrExpenseNotFound
	}
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}
