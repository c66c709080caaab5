// Package attendance is the front-desk gate. A member may hold at most one open
// visit; check-in requires a membership that is ACTIVE and inside its date
// window at the moment of the request.
package attendance

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
	"github.com/fatflowers/gymdesk/pkg/metrics"
	"github.com/fatflowers/gymdesk/pkg/types"
)

var (
	ErrMemberNotFound     = apperr.NotFound("member not found")
	ErrNoActiveMembership = apperr.BadRequest("member has no active membership")
	ErrAlreadyCheckedIn   = apperr.BadRequest("member is already checked in")
	ErrAttendanceNotFound = apperr.NotFound("attendance record not found")
	ErrAlreadyCheckedOut  = apperr.BadRequest("member is already checked out")
)

const (
	eventCheckIn  = "check_in"
	eventCheckOut = "check_out"
)

type CheckInInput struct {
	MemberID string                 `json:"memberId" binding:"required"`
	Source   types.AttendanceSource `json:"source" binding:"omitempty,oneof=MANUAL QR_CODE FINGERPRINT"`
}

type CheckOutInput struct {
	AttendanceID string `json:"attendanceId" binding:"required"`
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

// CheckIn opens a visit for the member. The member row is locked for the
// whole check so two desks cannot both pass the open-visit test; the partial
// unique index on open visits catches anything that slips past.
func (s *Service) CheckIn(ctx context.Context, in CheckInInput) (a *models.Attendance, err error) {
	defer func() { metrics.CountAttendance(eventCheckIn, result(err)) }()

	source := in.Source
	if source == "" {
		source = types.AttendanceSourceManual
	}
	if !source.Valid() {
		return nil, apperr.BadRequest("invalid attendance source")
	}

	now := s.now()
	err = s.store.Atomic(ctx, func(tx storage.Store) error {
		if _, err := tx.LockMember(ctx, in.MemberID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("lock member: %w", err)
		}
		if _, err := tx.FindActiveMembership(ctx, in.MemberID, now); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrNoActiveMembership
			}
			return fmt.Errorf("find active membership: %w", err)
		}
		if _, err := tx.FindOpenAttendance(ctx, in.MemberID); err == nil {
			return ErrAlreadyCheckedIn
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("find open attendance: %w", err)
		}

		row := &models.Attendance{
			MemberID:  in.MemberID,
			CheckIn:   now,
			Source:    source,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.CreateAttendance(ctx, row); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return ErrAlreadyCheckedIn
			}
			return fmt.Errorf("create attendance: %w", err)
		}
		a = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("member checked in", "member_id", a.MemberID, "attendance_id", a.ID, "source", a.Source)
	return a, nil
}

// CheckOut closes an open visit. Only the first of several concurrent
// check-outs succeeds; the rest see the visit as already closed.
func (s *Service) CheckOut(ctx context.Context, attendanceID string) (a *models.Attendance, err error) {
	defer func() { metrics.CountAttendance(eventCheckOut, result(err)) }()

	a, err = s.store.GetAttendance(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	if !a.Open() {
		return nil, ErrAlreadyCheckedOut
	}

	now := s.now()
	switch err = s.store.CloseAttendance(ctx, attendanceID, now); {
	case errors.Is(err, storage.ErrStale):
		return nil, ErrAlreadyCheckedOut
	case errors.Is(err, storage.ErrNotFound):
		return nil, ErrAttendanceNotFound
	case err != nil:
		return nil, fmt.Errorf("close attendance: %w", err)
	}
	a.CheckOut = &now
	a.UpdatedAt = now
	logctx.FromCtx(ctx, s.log).Infow("member checked out", "member_id", a.MemberID, "attendance_id", a.ID)
	return a, nil
}

func (s *Service) List(ctx context.Context, q storage.AttendanceQuery) ([]models.Attendance, int64, error) {
	items, total, err := s.store.ListAttendance(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}
	return items, total, nil
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.KindOf(err).String()
}
