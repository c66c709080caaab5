package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/internal/models"
	"github.com/fatflowers/gymdesk/pkg/tool"
	"github.com/fatflowers/gymdesk/pkg/types"
)

// Store implements storage.Store on top of gorm. The *gorm.DB must be opened
// with TranslateError so unique and foreign key violations surface as
// gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
type Store struct {
	db *gorm.DB
}

var _ storage.Store = (*Store)(nil)

// New creates a Store using the provided gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Atomic(ctx context.Context, fn func(tx storage.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate maps gorm errors to the storage sentinels, keeping the driver
// error in the chain for logging.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", storage.ErrReferenced, err)
	default:
		return err
	}
}

func ensureID(id *string) {
	if *id == "" {
		*id = tool.GenerateUUIDV7()
	}
}

func (s *Store) get(ctx context.Context, dest any, id string, preloads ...string) error {
	q := s.db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	return translate(q.Where("id = ?", id).Take(dest).Error)
}

// update writes every column except the key and creation time. Associations
// are never written through here.
func (s *Store) update(ctx context.Context, model any, id string) error {
	res := s.db.WithContext(ctx).Model(model).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Where("id = ?", id).
		Updates(model)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) delete(ctx context.Context, model any, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// list counts the filtered rows and fetches one page of them.
func list[T any](ctx context.Context, db *gorm.DB, filters types.Filters, order string, page storage.Page, preloads ...string) ([]T, int64, error) {
	var model T
	base := func() *gorm.DB {
		return db.WithContext(ctx).Model(&model).Where(filters)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	page = page.Normalize()
	q := base()
	for _, p := range preloads {
		q = q.Preload(p)
	}
	items := make([]T, 0, page.Limit)
	if err := q.Order(order).Offset(page.Offset()).Limit(page.Limit).Find(&items).Error; err != nil {
		return nil, 0, translate(err)
	}
	return items, total, nil
}

const (
	newestFirst  = "created_at DESC, id DESC"
	checkInFirst = "check_in DESC, id DESC"
)

// --- MemberStore --------------------------------------------------------------

func (s *Store) CreateMember(ctx context.Context, m *models.Member) error {
	ensureID(&m.ID)
	return translate(s.db.WithContext(ctx).Create(m).Error)
}

func (s *Store) UpdateMember(ctx context.Context, m *models.Member) error {
	return s.update(ctx, m, m.ID)
}

func (s *Store) GetMember(ctx context.Context, id string) (*models.Member, error) {
	var m models.Member
	if err := s.get(ctx, &m, id); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) LockMember(ctx context.Context, id string) (*models.Member, error) {
	var m models.Member
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *Store) ListMembers(ctx context.Context, q storage.MemberQuery) ([]models.Member, int64, error) {
	var filters types.Filters
	if q.Search != "" {
		filters = append(filters, types.Or(types.Contains("full_name", q.Search), types.Contains("phone", q.Search)))
	}
	return list[models.Member](ctx, s.db, filters, newestFirst, q.Page)
}

func (s *Store) DeleteMember(ctx context.Context, id string) error {
	return s.delete(ctx, &models.Member{}, id)
}

// --- PlanStore ----------------------------------------------------------------

func (s *Store) CreatePlan(ctx context.Context, p *models.Plan) error {
	ensureID(&p.ID)
	// Select keeps an explicit IsActive=false from being replaced by the column default.
	return translate(s.db.WithContext(ctx).Select("*").Create(p).Error)
}

func (s *Store) UpdatePlan(ctx context.Context, p *models.Plan) error {
	return s.update(ctx, p, p.ID)
}

func (s *Store) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	var p models.Plan
	if err := s.get(ctx, &p, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPlans(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	if err := s.db.WithContext(ctx).Order(newestFirst).Find(&plans).Error; err != nil {
		return nil, translate(err)
	}
	return plans, nil
}

func (s *Store) DeletePlan(ctx context.Context, id string) error {
	return s.delete(ctx, &models.Plan{}, id)
}

// --- MembershipStore ----------------------------------------------------------

func (s *Store) CreateMembership(ctx context.Context, m *models.Membership) error {
	ensureID(&m.ID)
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error)
}

func (s *Store) GetMembership(ctx context.Context, id string) (*models.Membership, error) {
	var m models.Membership
	if err := s.get(ctx, &m, id, "Plan"); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) LockMembership(ctx context.Context, id string) (*models.Membership, error) {
	var m models.Membership
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *Store) UpdateMembershipStatus(ctx context.Context, id string, status types.MembershipStatus, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Membership{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": at})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ListMembershipsByMember(ctx context.Context, memberID string) ([]models.Membership, error) {
	var out []models.Membership
	err := s.db.WithContext(ctx).
		Preload("Plan").
		Where("member_id = ?", memberID).
		Order(newestFirst).
		Find(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *Store) FindActiveMembership(ctx context.Context, memberID string, now time.Time) (*models.Membership, error) {
	var m models.Membership
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("member_id = ? AND status = ? AND start_date <= ? AND end_date >= ?", memberID, types.MembershipStatusActive, now, now).
		Order("end_date DESC").
		Take(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *Store) CreateMembershipLog(ctx context.Context, l *models.MembershipLog) error {
	ensureID(&l.ID)
	return translate(s.db.WithContext(ctx).Create(l).Error)
}

func (s *Store) ListMembershipLogs(ctx context.Context, membershipID string) ([]models.MembershipLog, error) {
	var out []models.MembershipLog
	err := s.db.WithContext(ctx).
		Where("membership_id = ?", membershipID).
		Order(newestFirst).
		Find(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// --- AttendanceStore ----------------------------------------------------------

func (s *Store) CreateAttendance(ctx context.Context, a *models.Attendance) error {
	ensureID(&a.ID)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error; err != nil {
		return translate(err)
	}
	var brief models.MemberBrief
	if err := s.db.WithContext(ctx).Where("id = ?", a.MemberID).Take(&brief).Error; err != nil {
		return translate(err)
	}
	a.Member = &brief
	return nil
}

func (s *Store) GetAttendance(ctx context.Context, id string) (*models.Attendance, error) {
	var a models.Attendance
	if err := s.get(ctx, &a, id, "Member"); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) FindOpenAttendance(ctx context.Context, memberID string) (*models.Attendance, error) {
	var a models.Attendance
	err := s.db.WithContext(ctx).
		Where("member_id = ? AND check_out IS NULL", memberID).
		Take(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Store) CloseAttendance(ctx context.Context, id string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Attendance{}).
		Where("id = ? AND check_out IS NULL", id).
		Updates(map[string]any{"check_out": at, "updated_at": at})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Attendance{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return translate(err)
		}
		if n == 0 {
			return storage.ErrNotFound
		}
		return storage.ErrStale
	}
	return nil
}

func (s *Store) ListAttendance(ctx context.Context, q storage.AttendanceQuery) ([]models.Attendance, int64, error) {
	var filters types.Filters
	if q.MemberID != "" {
		filters = append(filters, types.Eq("member_id", q.MemberID))
	}
	return list[models.Attendance](ctx, s.db, filters, checkInFirst, q.Page, "Member")
}

// --- PaymentStore -------------------------------------------------------------

var paymentPreloads = []string{"Member", "Membership.Plan"}

func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	ensureID(&p.ID)
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

func (s *Store) UpdatePayment(ctx context.Context, p *models.Payment) error {
	return s.update(ctx, p, p.ID)
}

func (s *Store) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	var p models.Payment
	if err := s.get(ctx, &p, id, paymentPreloads...); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPayments(ctx context.Context, q storage.PaymentQuery) ([]models.Payment, int64, error) {
	var filters types.Filters
	if q.MemberID != "" {
		filters = append(filters, types.Eq("member_id", q.MemberID))
	}
	return list[models.Payment](ctx, s.db, filters, newestFirst, q.Page, paymentPreloads...)
}

func (s *Store) DeletePayment(ctx context.Context, id string) error {
	return s.delete(ctx, &models.Payment{}, id)
}

// --- ExpenseStore -------------------------------------------------------------

func (s *Store) CreateExpense(ctx context.Context, e *models.Expense) error {
	ensureID(&e.ID)
	return translate(s.db.WithContext(ctx).Create(e).Error)
}

func (s *Store) UpdateExpense(ctx context.Context, e *models.Expense) error {
	return s.update(ctx, e, e.ID)
}

func (s *Store) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	var e models.Expense
	if err := s.get(ctx, &e, id); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) ListExpenses(ctx context.Context, q storage.ExpenseQuery) ([]models.Expense, int64, error) {
	var filters types.Filters
	if q.Category != "" {
		filters = append(filters, types.Eq("category", q.Category))
	}
	return list[models.Expense](ctx, s.db, filters, newestFirst, q.Page)
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	return s.delete(ctx, &models.Expense{}, id)
}

// --- AssetStore ---------------------------------------------------------------

func (s *Store) CreateAsset(ctx context.Context, a *models.Asset) error {
	ensureID(&a.ID)
	return translate(s.db.WithContext(ctx).Create(a).Error)
}

func (s *Store) UpdateAsset(ctx context.Context, a *models.Asset) error {
	return s.update(ctx, a, a.ID)
}

func (s *Store) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	var a models.Asset
	if err := s.get(ctx, &a, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ListAssets(ctx context.Context, q storage.AssetQuery) ([]models.Asset, int64, error) {
	var filters types.Filters
	if q.Search != "" {
		filters = append(filters, types.Or(types.Contains("name", q.Search), types.Contains("category", q.Search)))
	}
	if q.Category != "" {
		filters = append(filters, types.Contains("category", q.Category))
	}
	return list[models.Asset](ctx, s.db, filters, newestFirst, q.Page)
}

func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	return s.delete(ctx, &models.Asset{}, id)
}

// --- UserStore ----------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	ensureID(&u.ID)
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.get(ctx, &u, id); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	ensureID(&t.ID)
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

func (s *Store) GetRefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ?", hash).Take(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) RevokeRefreshToken(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", id, false).
		Update("revoked", true)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrStale
	}
	return nil
}

func (s *Store) RevokeRefreshTokenByHash(ctx context.Context, hash string) error {
	return translate(s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked = ?", hash, false).
		Update("revoked", true).Error)
}
