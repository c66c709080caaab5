package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/gymdesk/internal/models"
	"github.com/fatflowers/gymdesk/pkg/types"
)

// sinceFilter restricts column to rows at or after since; zero means all time.
func sinceFilter(column string, since time.Time) types.Filters {
	if since.IsZero() {
		return nil
	}
	return types.Filters{{Field: column, Operator: types.CommonFilterOperatorGte, Values: []any{since}}}
}

func (s *Store) count(ctx context.Context, model any, where clause.Expression) (int64, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(model)
	if where != nil {
		q = q.Where(where)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (s *Store) sum(ctx context.Context, model any, since time.Time) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(model).
		Select("COALESCE(SUM(amount), 0)").
		Where(sinceFilter("created_at", since)).
		Scan(&total).Error
	if err != nil {
		return 0, translate(err)
	}
	return total, nil
}

func (s *Store) CountMembers(ctx context.Context) (int64, error) {
	return s.count(ctx, &models.Member{}, nil)
}

func (s *Store) CountActiveMemberships(ctx context.Context, now time.Time) (int64, error) {
	return s.count(ctx, &models.Membership{}, clause.Expr{
		SQL:  "status = ? AND start_date <= ? AND end_date >= ?",
		Vars: []any{types.MembershipStatusActive, now, now},
	})
}

func (s *Store) CountAttendanceSince(ctx context.Context, since time.Time) (int64, error) {
	return s.count(ctx, &models.Attendance{}, sinceFilter("check_in", since))
}

func (s *Store) CountActivePlans(ctx context.Context) (int64, error) {
	return s.count(ctx, &models.Plan{}, types.Eq("is_active", true))
}

func (s *Store) CountAssets(ctx context.Context) (int64, error) {
	return s.count(ctx, &models.Asset{}, nil)
}

func (s *Store) SumPayments(ctx context.Context, since time.Time) (int64, error) {
	return s.sum(ctx, &models.Payment{}, since)
}

func (s *Store) SumExpenses(ctx context.Context, since time.Time) (int64, error) {
	return s.sum(ctx, &models.Expense{}, since)
}

func recent[T any](ctx context.Context, db *gorm.DB, order string, n int, preloads ...string) ([]T, error) {
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	out := make([]T, 0, n)
	if err := q.Order(order).Limit(n).Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *Store) RecentPayments(ctx context.Context, n int) ([]models.Payment, error) {
	return recent[models.Payment](ctx, s.db, newestFirst, n, "Member")
}

func (s *Store) RecentAttendance(ctx context.Context, n int) ([]models.Attendance, error) {
	return recent[models.Attendance](ctx, s.db, checkInFirst, n, "Member")
}

func (s *Store) RecentExpenses(ctx context.Context, n int) ([]models.Expense, error) {
	return recent[models.Expense](ctx, s.db, newestFirst, n)
}

func (s *Store) MembershipStatusBreakdown(ctx context.Context) ([]models.StatusCount, error) {
	out := make([]models.StatusCount, 0)
	err := s.db.WithContext(ctx).Model(&models.Membership{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *Store) PaymentMethodBreakdown(ctx context.Context, since time.Time) ([]models.MethodBreakdown, error) {
	out := make([]models.MethodBreakdown, 0)
	err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Select("method, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Where(sinceFilter("created_at", since)).
		Group("method").
		Order("method").
		Scan(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *Store) ExpenseCategoryBreakdown(ctx context.Context, since time.Time) ([]models.CategoryBreakdown, error) {
	out := make([]models.CategoryBreakdown, 0)
	err := s.db.WithContext(ctx).Model(&models.Expense{}).
		Select("category, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Where(sinceFilter("created_at", since)).
		Group("category").
		Order("category").
		Scan(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// UpsertDailySnapshot inserts or refreshes the snapshot for its date. The stored
// row is read back through RETURNING, so on update snap carries the original
// id and created_at rather than the candidate ones.
func (s *Store) UpsertDailySnapshot(ctx context.Context, snap *models.StatsDailySnapshot) error {
	ensureID(&snap.ID)
	err := s.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "snapshot_date"}},
				DoUpdates: clause.AssignmentColumns([]string{"summary", "updated_at"}),
			},
			clause.Returning{},
		).
		Create(snap).Error
	return translate(err)
}

func (s *Store) ListDailySnapshots(ctx context.Context, from, to string) ([]models.StatsDailySnapshot, error) {
	var filters types.Filters
	if from != "" {
		filters = append(filters, &types.CommonFilter{Field: "snapshot_date", Operator: types.CommonFilterOperatorGte, Values: []any{from}})
	}
	if to != "" {
		filters = append(filters, &types.CommonFilter{Field: "snapshot_date", Operator: types.CommonFilterOperatorLte, Values: []any{to}})
	}
	out := make([]models.StatsDailySnapshot, 0)
	if err := s.db.WithContext(ctx).Where(filters).Order("snapshot_date").Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}
