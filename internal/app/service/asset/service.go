package asset

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
	"github.com/fatflowers/gymdesk/pkg/types"
)

var ErrAssetNotFound = apperr.NotFound("asset not found")

type CreateInput struct {
	Name         string               `json:"name" binding:"required,max=128"`
	Category     string               `json:"category" binding:"required,max=64"`
	SerialNo     string               `json:"serialNo" binding:"omitempty,max=128"`
	PurchaseDate *time.Time           `json:"purchaseDate"`
	Cost         int64                `json:"cost" binding:"gte=0"`
	Condition    types.AssetCondition `json:"condition" binding:"omitempty,oneof=good repair bad"`
	Location     string               `json:"location" binding:"omitempty,max=128"`
	Notes        string               `json:"notes"`
}

type UpdateInput struct {
	Name         *string               `json:"name" binding:"omitempty,min=1,max=128"`
	Category     *string               `json:"category" binding:"omitempty,min=1,max=64"`
	SerialNo     *string               `json:"serialNo" binding:"omitempty,max=128"`
	PurchaseDate *time.Time            `json:"purchaseDate"`
	Cost         *int64                `json:"cost" binding:"omitempty,gte=0"`
	Condition    *types.AssetCondition `json:"condition" binding:"omitempty,oneof=good repair bad"`
	Location     *string               `json:"location" binding:"omitempty,max=128"`
	Notes        *string               `json:"notes"`
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

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Asset, error) {
	condition := in.Condition
	if condition == "" {
		condition = types.AssetConditionGood
	}
	now := s.now()
	a := &models.Asset{
		Name:         in.Name,
		Category:     in.Category,
		SerialNo:     in.SerialNo,
		PurchaseDate: in.PurchaseDate,
		Cost:         in.Cost,
		Condition:    condition,
		Location:     in.Location,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateAsset(ctx, a); err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Asset, error) {
	a, err := s.store.GetAsset(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, q storage.AssetQuery) ([]models.Asset, int64, error) {
	items, total, err := s.store.ListAssets(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Asset, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.Category != nil {
		a.Category = *in.Category
	}
	if in.SerialNo != nil {
		a.SerialNo = *in.SerialNo
	}
	if in.PurchaseDate != nil {
		a.PurchaseDate = in.PurchaseDate
	}
	if in.Cost != nil {
		a.Cost = *in.Cost
	}
	if in.Condition != nil {
		a.Condition = *in.Condition
	}
	if in.Location != nil {
		a.Location = *in.Location
	}
	if in.Notes != nil {
		a.Notes = *in.Notes
	}
	a.UpdatedAt = s.now()
	if err := s.store.UpdateAsset(ctx, a); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("update asset: %w", err)
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteAsset(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrAssetNotFound
	}
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}
