package expense

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/internal/app/storage/memory"
	"github.com/fatflowers/gymdesk/pkg/types"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), zap.NewNop().Sugar())

	rent, err := svc.Create(ctx, CreateInput{Category: types.ExpenseCategoryRent, Amount: 100000, Note: "June"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Category: types.ExpenseCategoryWater, Amount: 2500})
	require.NoError(t, err)

	items, total, err := svc.List(ctx, storage.ExpenseQuery{Category: types.ExpenseCategoryRent})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, rent.ID, items[0].ID)

	amount := int64(90000)
	updated, err := svc.Update(ctx, rent.ID, UpdateInput{Amount: &amount})
	require.NoError(t, err)
	require.EqualValues(t, 90000, updated.Amount)
	require.Equal(t, "June", updated.Note)

	require.NoError(t, svc.Delete(ctx, rent.ID))
	_, err = svc.Get(ctx, rent.ID)
	require.ErrorIs(t, err, ErrExpenseNotFound)
	_, err = svc.Update(ctx, rent.ID, UpdateInput{Amount: &amount})
	require.ErrorIs(t, err, ErrExpenseNotFound)
}
