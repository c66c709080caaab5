package statistics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/internal/models"
	"github.com/fatflowers/gymdesk/pkg/apperr"
	"github.com/fatflowers/gymdesk/pkg/config"
	"github.com/fatflowers/gymdesk/pkg/logctx"
	"github.com/fatflowers/gymdesk/pkg/metrics"
)

// RecentLimit is how many rows each recent-activity list carries.
const RecentLimit = 5

type RecentActivities struct {
	Payments    []models.Payment    `json:"payments"`
	Attendances []models.Attendance `json:"attendances"`
	Expenses    []models.Expense    `json:"expenses"`
}

type Breakdowns struct {
	// MembershipStatus covers all memberships ever created.
	MembershipStatus []models.StatusCount `json:"membershipStatus"`
	// PaymentMethods and ExpenseCategories cover the current month.
	PaymentMethods    []models.MethodBreakdown   `json:"paymentMethods"`
	ExpenseCategories []models.CategoryBreakdown `json:"expenseCategories"`
}

type Overview struct {
	Summary          models.StatsSummary `json:"summary"`
	RecentActivities RecentActivities    `json:"recentActivities"`
	Breakdowns       Breakdowns          `json:"breakdowns"`
}

// Service provides statistics operations
type Service struct {
	store storage.Store
	log   *zap.SugaredLogger
	loc   *time.Location
	// lifetimeMonthly reports lifetime totals in the monthly revenue and
	// expense fields for dashboards built against the older payload.
	lifetimeMonthly bool
	now             func() time.Time
}

func New(store storage.Store, log *zap.SugaredLogger, cfg *config.Config) (*Service, error) {
	loc, err := cfg.Stats.Location()
	if err != nil {
		return nil, err
	}
	return &Service{
		store:           store,
		log:             log,
		loc:             loc,
		lifetimeMonthly: cfg.Stats.LifetimeMonthlyFields,
		now:             time.Now,
	}, nil
}

// bounds returns the start of the local day and of the local month containing now.
func (s *Service) bounds(now time.Time) (day, month time.Time) {
	local := now.In(s.loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc), time.Date(y, m, 1, 0, 0, 0, 0, s.loc)
}

// Overview computes the dashboard as of now. The queries run concurrently and
// the first failure cancels the rest.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	start := time.Now()
	defer metrics.ObserveProcess("stats", "overview", start)

	now := s.now()
	dayStart, monthStart := s.bounds(now)

	var (
		out                         Overview
		sum                         = &out.Summary
		monthRevenue, monthExpenses int64
		totalRevenue, totalExpenses int64
	)

	g, gctx := errgroup.WithContext(ctx)
	run := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			if err := fn(gctx); err != nil {
				return fmt.Errorf("stats %s: %w", name, err)
			}
			return nil
		})
	}
	assign := func(dst *int64, fn func(context.Context) (int64, error)) func(context.Context) error {
		return func(ctx context.Context) error {
			v, err := fn(ctx)
			*dst = v
			return err
		}
	}

	run("members", assign(&sum.TotalMembers, s.store.CountMembers))
	run("active memberships", assign(&sum.ActiveMemberships, func(ctx context.Context) (int64, error) {
		return s.store.CountActiveMemberships(ctx, now)
	}))
	run("today attendance", assign(&sum.TodayAttendance, func(ctx context.Context) (int64, error) {
		return s.store.CountAttendanceSince(ctx, dayStart)
	}))
	run("month attendance", assign(&sum.MonthlyAttendance, func(ctx context.Context) (int64, error) {
		return s.store.CountAttendanceSince(ctx, monthStart)
	}))
	run("plans", assign(&sum.TotalPlans, s.store.CountActivePlans))
	run("assets", assign(&sum.TotalAssets, s.store.CountAssets))
	run("month revenue", assign(&monthRevenue, func(ctx context.Context) (int64, error) {
		return s.store.SumPayments(ctx, monthStart)
	}))
	run("month expenses", assign(&monthExpenses, func(ctx context.Context) (int64, error) {
		return s.store.SumExpenses(ctx, monthStart)
	}))
	run("total revenue", assign(&totalRevenue, func(ctx context.Context) (int64, error) {
		return s.store.SumPayments(ctx, time.Time{})
	}))
	run("total expenses", assign(&totalExpenses, func(ctx context.Context) (int64, error) {
		return s.store.SumExpenses(ctx, time.Time{})
	}))

	run("recent payments", func(ctx context.Context) (err error) {
		out.RecentActivities.Payments, err = s.store.RecentPayments(ctx, RecentLimit)
		return err
	})
	run("recent attendance", func(ctx context.Context) (err error) {
		out.RecentActivities.Attendances, err = s.store.RecentAttendance(ctx, RecentLimit)
		return err
	})
	run("recent expenses", func(ctx context.Context) (err error) {
		out.RecentActivities.Expenses, err = s.store.RecentExpenses(ctx, RecentLimit)
		return err
	})
	run("membership status", func(ctx context.Context) (err error) {
		out.Breakdowns.MembershipStatus, err = s.store.MembershipStatusBreakdown(ctx)
		return err
	})
	run("payment methods", func(ctx context.Context) (err error) {
		out.Breakdowns.PaymentMethods, err = s.store.PaymentMethodBreakdown(ctx, monthStart)
		return err
	})
	run("expense categories", func(ctx context.Context) (err error) {
		out.Breakdowns.ExpenseCategories, err = s.store.ExpenseCategoryBreakdown(ctx, monthStart)
		return err
	})

	if err := g.Wait(); err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("stats overview failed", "err", err)
		return nil, apperr.Internal(err)
	}

	sum.TotalRevenue = totalRevenue
	sum.TotalExpenses = totalExpenses
	sum.MonthlyRevenue = monthRevenue
	sum.MonthlyExpenses = monthExpenses
	if s.lifetimeMonthly {
		sum.MonthlyRevenue = totalRevenue
		sum.MonthlyExpenses = totalExpenses
	}
	// Profit is always month scoped.
	sum.MonthlyProfit = monthRevenue - monthExpenses
	return &out, nil
}

// SaveDailySnapshot stores today's summary. Running it again the same local
// day overwrites the earlier snapshot.
func (s *Service) SaveDailySnapshot(ctx context.Context) (*models.StatsDailySnapshot, error) {
	start := time.Now()
	defer metrics.ObserveProcess("stats", "daily_snapshot", start)

	ov, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	snap := &models.StatsDailySnapshot{
		SnapshotDate: now.In(s.loc).Format(time.DateOnly),
		Summary:      datatypes.NewJSONType(ov.Summary),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.UpsertDailySnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("save daily snapshot: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("daily stats snapshot saved", "date", snap.SnapshotDate)
	return snap, nil
}

// DailySnapshots lists stored snapshots between from and to inclusive. Both
// are YYYY-MM-DD and either may be empty.
func (s *Service) DailySnapshots(ctx context.Context, from, to string) ([]models.StatsDailySnapshot, error) {
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return nil, apperr.BadRequest("dates must be formatted as YYYY-MM-DD")
		}
	}
	if from != "" && to != "" && from > to {
		return nil, apperr.BadRequest("from must not be after to")
	}
	snaps, err := s.store.ListDailySnapshots(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list daily snapshots: %w", err)
	}
	return snaps, nil
}
