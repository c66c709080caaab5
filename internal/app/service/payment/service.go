package payment

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

var (
	ErrMemberNotFound     = apperr.NotFound("member not found")
	ErrMembershipMismatch = apperr.NotFound("membership not found or doesn't belong to member")
	ErrPaymentNotFound    = apperr.NotFound("payment not found")
)

type CreateInput struct {
	MemberID     string              `json:"memberId" binding:"required"`
	MembershipID *string             `json:"membershipId"`
	Amount       int64               `json:"amount" binding:"required,gt=0"`
	Method       types.PaymentMethod `json:"method" binding:"omitempty,oneof=CASH CARD BANK_TRANSFER MOBILE_MONEY"`
	Reference    string              `json:"reference" binding:"omitempty,max=128"`
	Notes        string              `json:"notes"`
}

// UpdateInput corrects a recorded payment. The member cannot change.
type UpdateInput struct {
	MembershipID *string              `json:"membershipId"`
	Amount       *int64               `json:"amount" binding:"omitempty,gt=0"`
	Method       *types.PaymentMethod `json:"method" binding:"omitempty,oneof=CASH CARD BANK_TRANSFER MOBILE_MONEY"`
	Reference    *string              `json:"reference" binding:"omitempty,max=128"`
	Notes        *string              `json:"notes"`
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

// checkOwnership verifies that membershipID, when set, belongs to memberID.
func checkOwnership(ctx context.Context, tx storage.Store, memberID string, membershipID *string) error {
	if membershipID == nil || *membershipID == "" {
		return nil
	}
	ms, err := tx.GetMembership(ctx, *membershipID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrMembershipMismatch
	}
	if err != nil {
		return fmt.Errorf("get membership: %w", err)
	}
	if ms.MemberID != memberID {
		return ErrMembershipMismatch
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Payment, error) {
	method := in.Method
	if method == "" {
		method = types.PaymentMethodCash
	}

	var out *models.Payment
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		if _, err := tx.GetMember(ctx, in.MemberID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("get member: %w", err)
		}
		if err := checkOwnership(ctx, tx, in.MemberID, in.MembershipID); err != nil {
			return err
		}

		now := s.now()
		p := &models.Payment{
			MemberID:     in.MemberID,
			MembershipID: emptyToNil(in.MembershipID),
			Amount:       in.Amount,
			Method:       method,
			Reference:    in.Reference,
			Notes:        in.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.CreatePayment(ctx, p); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		loaded, err := tx.GetPayment(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("reload payment: %w", err)
		}
		out = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("payment recorded",
		"payment_id", out.ID,
		"member_id", out.MemberID,
		"amount", out.Amount,
		"method", out.Method,
	)
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Payment, error) {
	p, err := s.store.GetPayment(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, q storage.PaymentQuery) ([]models.Payment, int64, error) {
	items, total, err := s.store.ListPayments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Payment, error) {
	var out *models.Payment
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		p, err := tx.GetPayment(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrPaymentNotFound
			}
			return fmt.Errorf("get payment: %w", err)
		}
		if in.MembershipID != nil {
			if err := checkOwnership(ctx, tx, p.MemberID, in.MembershipID); err != nil {
				return err
			}
			p.MembershipID = emptyToNil(in.MembershipID)
		}
		if in.Amount != nil {
			p.Amount = *in.Amount
		}
		if in.Method != nil {
			p.Method = *in.Method
		}
		if in.Reference != nil {
			p.Reference = *in.Reference
		}
		if in.Notes != nil {
			p.Notes = *in.Notes
		}
		p.UpdatedAt = s.now()
		if err := tx.UpdatePayment(ctx, p); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}
		out, err = tx.GetPayment(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.DeletePayment(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrPaymentNotFound
	}
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("payment deleted", "payment_id", id)
	return nil
}
