package member

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

var ErrMemberNotFound = apperr.NotFound("member not found")

type CreateInput struct {
	FullName         string     `json:"fullName" binding:"required,max=128"`
	Phone            string     `json:"phone" binding:"omitempty,max=32"`
	Gender           string     `json:"gender" binding:"omitempty,max=16"`
	DOB              *time.Time `json:"dob"`
	PhotoURL         string     `json:"photoUrl" binding:"omitempty,url,max=512"`
	EmergencyContact string     `json:"emergencyContact" binding:"omitempty,max=128"`
	Notes            string     `json:"notes"`
}

// UpdateInput changes only the fields that are present.
type UpdateInput struct {
	FullName         *string    `json:"fullName" binding:"omitempty,min=1,max=128"`
	Phone            *string    `json:"phone" binding:"omitempty,max=32"`
	Gender           *string    `json:"gender" binding:"omitempty,max=16"`
	DOB              *time.Time `json:"dob"`
	PhotoURL         *string    `json:"photoUrl" binding:"omitempty,max=512"`
	EmergencyContact *string    `json:"emergencyContact" binding:"omitempty,max=128"`
	Notes            *string    `json:"notes"`
}

func (in UpdateInput) apply(m *models.Member) {
	if in.FullName != nil {
		m.FullName = *in.FullName
	}
	if in.Phone != nil {
		m.Phone = *in.Phone
	}
	if in.Gender != nil {
		m.Gender = *in.Gender
	}
	if in.DOB != nil {
		m.DOB = in.DOB
	}
	if in.PhotoURL != nil {
		m.PhotoURL = *in.PhotoURL
	}
	if in.EmergencyContact != nil {
		m.EmergencyContact = *in.EmergencyContact
	}
	if in.Notes != nil {
		m.Notes = *in.Notes
	}
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

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Member, error) {
	now := s.now()
	m := &models.Member{
		FullName:         in.FullName,
		Phone:            in.Phone,
		Gender:           in.Gender,
		DOB:              in.DOB,
		PhotoURL:         in.PhotoURL,
		EmergencyContact: in.EmergencyContact,
		Notes:            in.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.CreateMember(ctx, m); err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("member created", "member_id", m.ID)
	return m, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Member, error) {
	m, err := s.store.GetMember(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, q storage.MemberQuery) ([]models.Member, int64, error) {
	items, total, err := s.store.ListMembers(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Member, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(m)
	m.UpdatedAt = s.now()
	if err := s.store.UpdateMember(ctx, m); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("update member: %w", err)
	}
	return m, nil
}

// Delete removes the member together with their memberships, visits and payments.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteMember(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrMemberNotFound
	}
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("member deleted", "member_id", id)
	return nil
}
