package storage

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/fatflowers/gymdesk/internal/models"
	"github.com/fatflowers/gymdesk/pkg/types"
)

var (
	ErrNotFound = errors.New("storage: record not found")
	// ErrDuplicate reports a unique constraint violation, including the
	// one-open-attendance-per-member rule.
	ErrDuplicate = errors.New("storage: duplicate key")
	// ErrReferenced reports a delete blocked by rows that still point at the record.
	ErrReferenced = errors.New("storage: record is referenced")
	// ErrStale reports a conditional update that matched no row because another
	// writer got there first.
	ErrStale = errors.New("storage: record changed concurrently")
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps Page*Limit inside int.
	MaxPage = math.MaxInt / MaxLimit
)

// Page selects a window of a list ordered newest first. Page is 1-based.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps the page into the accepted range.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

type MemberQuery struct {
	// Search matches full name or phone, case-insensitive.
	Search string
	Page
}

type AttendanceQuery struct {
	MemberID string
	Page
}

type PaymentQuery struct {
	MemberID string
	Page
}

type ExpenseQuery struct {
	Category types.ExpenseCategory
	Page
}

type AssetQuery struct {
	// Search matches name or category.
	Search   string
	Category string
	Page
}

// MemberStore persists gym members.
type MemberStore interface {
	CreateMember(ctx context.Context, m *models.Member) error
	UpdateMember(ctx context.Context, m *models.Member) error
	GetMember(ctx context.Context, id string) (*models.Member, error)
	ListMembers(ctx context.Context, q MemberQuery) ([]models.Member, int64, error)
	// DeleteMember removes the member together with its memberships, attendance and payments.
	DeleteMember(ctx context.Context, id string) error
	// LockMember reads the member and holds a row lock until the enclosing
	// Atomic block ends. Outside Atomic it behaves like GetMember.
	LockMember(ctx context.Context, id string) (*models.Member, error)
}

// PlanStore persists membership plans.
type PlanStore interface {
	CreatePlan(ctx context.Context, p *models.Plan) error
	UpdatePlan(ctx context.Context, p *models.Plan) error
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]models.Plan, error)
	// DeletePlan fails with ErrReferenced while memberships use the plan.
	DeletePlan(ctx context.Context, id string) error
}

// MembershipStore persists memberships and their status audit log.
type MembershipStore interface {
	CreateMembership(ctx context.Context, m *models.Membership) error
	GetMembership(ctx context.Context, id string) (*models.Membership, error)
	// LockMembership reads the membership with a row lock held until the
	// enclosing Atomic block ends.
	LockMembership(ctx context.Context, id string) (*models.Membership, error)
	UpdateMembershipStatus(ctx context.Context, id string, status types.MembershipStatus, at time.Time) error
	// ListMembershipsByMember returns newest first with Plan loaded.
	ListMembershipsByMember(ctx context.Context, memberID string) ([]models.Membership, error)
	// FindActiveMembership returns a membership with status ACTIVE whose window
	// contains now, or ErrNotFound. The row is share-locked inside Atomic.
	FindActiveMembership(ctx context.Context, memberID string, now time.Time) (*models.Membership, error)

	CreateMembershipLog(ctx context.Context, l *models.MembershipLog) error
	ListMembershipLogs(ctx context.Context, membershipID string) ([]models.MembershipLog, error)
}

// AttendanceStore persists visits.
type AttendanceStore interface {
	// CreateAttendance fails with ErrDuplicate when the member already has an open visit.
	CreateAttendance(ctx context.Context, a *models.Attendance) error
	// GetAttendance returns the visit with its member brief.
	GetAttendance(ctx context.Context, id string) (*models.Attendance, error)
	FindOpenAttendance(ctx context.Context, memberID string) (*models.Attendance, error)
	// CloseAttendance sets check_out only if it is still unset; otherwise ErrStale.
	CloseAttendance(ctx context.Context, id string, at time.Time) error
	// ListAttendance returns newest check-in first with member briefs.
	ListAttendance(ctx context.Context, q AttendanceQuery) ([]models.Attendance, int64, error)
}

// PaymentStore persists received payments.
type PaymentStore interface {
	CreatePayment(ctx context.Context, p *models.Payment) error
	UpdatePayment(ctx context.Context, p *models.Payment) error
	// GetPayment returns the payment with its member brief and membership plan.
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	ListPayments(ctx context.Context, q PaymentQuery) ([]models.Payment, int64, error)
	DeletePayment(ctx context.Context, id string) error
}

// ExpenseStore persists gym running costs.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e *models.Expense) error
	UpdateExpense(ctx context.Context, e *models.Expense) error
	GetExpense(ctx context.Context, id string) (*models.Expense, error)
	ListExpenses(ctx context.Context, q ExpenseQuery) ([]models.Expense, int64, error)
	DeleteExpense(ctx context.Context, id string) error
}

// AssetStore persists inventory.
type AssetStore interface {
	CreateAsset(ctx context.Context, a *models.Asset) error
	UpdateAsset(ctx context.Context, a *models.Asset) error
	GetAsset(ctx context.Context, id string) (*models.Asset, error)
	ListAssets(ctx context.Context, q AssetQuery) ([]models.Asset, int64, error)
	DeleteAsset(ctx context.Context, id string) error
}

// UserStore persists logins and their refresh tokens.
type UserStore interface {
	// CreateUser fails with ErrDuplicate when the email is taken.
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	// RevokeRefreshToken revokes one live token; ErrStale if it was already revoked.
	RevokeRefreshToken(ctx context.Context, id string) error
	// RevokeRefreshTokenByHash revokes any live token with the hash. Missing tokens are not an error.
	RevokeRefreshTokenByHash(ctx context.Context, hash string) error
}

// StatsStore answers the aggregate queries behind the dashboard. A zero since
// means all time.
type StatsStore interface {
	CountMembers(ctx context.Context) (int64, error)
	CountActiveMemberships(ctx context.Context, now time.Time) (int64, error)
	CountAttendanceSince(ctx context.Context, since time.Time) (int64, error)
	CountActivePlans(ctx context.Context) (int64, error)
	CountAssets(ctx context.Context) (int64, error)
	SumPayments(ctx context.Context, since time.Time) (int64, error)
	SumExpenses(ctx context.Context, since time.Time) (int64, error)

	RecentPayments(ctx context.Context, n int) ([]models.Payment, error)
	RecentAttendance(ctx context.Context, n int) ([]models.Attendance, error)
	RecentExpenses(ctx context.Context, n int) ([]models.Expense, error)

	MembershipStatusBreakdown(ctx context.Context) ([]models.StatusCount, error)
	PaymentMethodBreakdown(ctx context.Context, since time.Time) ([]models.MethodBreakdown, error)
	ExpenseCategoryBreakdown(ctx context.Context, since time.Time) ([]models.CategoryBreakdown, error)

	// UpsertDailySnapshot replaces the snapshot for s.SnapshotDate if one exists.
	UpsertDailySnapshot(ctx context.Context, s *models.StatsDailySnapshot) error
	// ListDailySnapshots returns snapshots with from <= date <= to, oldest first.
	// Dates are time.DateOnly strings; an empty bound is open.
	ListDailySnapshots(ctx context.Context, from, to string) ([]models.StatsDailySnapshot, error)
}

// Store is the full persistence surface used by the services.
type Store interface {
	MemberStore
	PlanStore
	MembershipStore
	AttendanceStore
	PaymentStore
	ExpenseStore
	AssetStore
	UserStore
	StatsStore

	// Atomic runs fn against a transactional view of the store. Any error from
	// fn rolls back every write made through tx.
	Atomic(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
