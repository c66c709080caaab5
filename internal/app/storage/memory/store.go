package memory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-memdb"
	"github.com/samber/lo"

	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/internal/models"
	"github.com/fatflowers/gymdesk/pkg/tool"
	"github.com/fatflowers/gymdesk/pkg/types"
)

// Store is an in-memory implementation of storage.Store on top of go-memdb.
// It is safe for concurrent use and backs tests and local runs without a
// database.
//
// Every write runs in a memdb write transaction. Those hold the database's
// single writer lock, so an Atomic block sees the same check-then-act
// guarantees the postgres store gets from row locks, and is discarded as a
// whole when fn fails or panics.
type Store struct {
	db  *memdb.MemDB
	txn *memdb.Txn
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		panic(err)
	}
	return &Store{db: db}
}

func (s *Store) read() *memdb.Txn {
	if s.txn != nil {
		return s.txn
	}
	return s.db.Txn(false)
}

func (s *Store) write(fn func(txn *memdb.Txn) error) error {
	if s.txn != nil {
		return fn(s.txn)
	}
	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := fn(txn); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *Store) Atomic(ctx context.Context, fn func(tx storage.Store) error) error {
	if s.txn != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := fn(&Store{db: s.db, txn: txn}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// first returns a copy of the first row matching the index lookup. Stored
// rows are never mutated in place.
func first[T any](txn *memdb.Txn, table, index string, args ...interface{}) (*T, error) {
	raw, err := txn.First(table, index, args...)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, storage.ErrNotFound
	}
	v := *raw.(*T)
	return &v, nil
}

func exists(txn *memdb.Txn, table, index string, args ...interface{}) (bool, error) {
	raw, err := txn.First(table, index, args...)
	return raw != nil, err
}

// all collects the rows matching the index lookup. The result is fully read
// before callers modify the table in the same transaction.
func all[T any](txn *memdb.Txn, table, index string, args ...interface{}) ([]T, error) {
	it, err := txn.Get(table, index, args...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, *raw.(*T))
	}
	return out, nil
}

// rows lists a whole table in primary key order.
func rows[T any](txn *memdb.Txn, table string) ([]T, error) {
	return all[T](txn, table, idxID+"_prefix", "")
}

func put[T any](txn *memdb.Txn, table string, row T) error {
	return txn.Insert(table, &row)
}

func stamp(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = tool.GenerateUUIDV7()
	}
	now := time.Now()
	if createdAt != nil && createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt != nil && updatedAt.IsZero() {
		*updatedAt = now
	}
}

// newestFirst orders by created time then id, both descending.
func newestFirst(aAt, bAt time.Time, aID, bID string) int {
	if c := bAt.Compare(aAt); c != 0 {
		return c
	}
	return cmp.Compare(bID, aID)
}

func paginate[T any](items []T, p storage.Page) []T {
	p = p.Normalize()
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+p.Limit, len(items))
	return items[start:end]
}

// touch keeps a caller-supplied update time and fills a zero one.
func touch(updatedAt *time.Time) {
	if updatedAt.IsZero() {
		*updatedAt = time.Now()
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// --- MemberStore --------------------------------------------------------------

func (s *Store) CreateMember(_ context.Context, m *models.Member) error {
	return s.write(func(txn *memdb.Txn) error {
		stamp(&m.ID, &m.CreatedAt, &m.UpdatedAt)
		if dup, err := exists(txn, tblMembers, idxID, m.ID); err != nil || dup {
			return lo.Ternary(err != nil, err, storage.ErrDuplicate)
		}
		return put(txn, tblMembers, *m)
	})
}

func (s *Store) UpdateMember(_ context.Context, m *models.Member) error {
	return s.write(func(txn *memdb.Txn) error {
		old, err := first[models.Member](txn, tblMembers, idxID, m.ID)
		if err != nil {
			return err
		}
		m.CreatedAt = old.CreatedAt
		touch(&m.UpdatedAt)
		return put(txn, tblMembers, *m)
	})
}

func (s *Store) GetMember(_ context.Context, id string) (*models.Member, error) {
	return first[models.Member](s.read(), tblMembers, idxID, id)
}

func (s *Store) LockMember(ctx context.Context, id string) (*models.Member, error) {
	return s.GetMember(ctx, id)
}

func (s *Store) ListMembers(_ context.Context, q storage.MemberQuery) ([]models.Member, int64, error) {
	items, err := rows[models.Member](s.read(), tblMembers)
	if err != nil {
		return nil, 0, err
	}
	items = lo.Filter(items, func(m models.Member, _ int) bool {
		return q.Search == "" || containsFold(m.FullName, q.Search) || containsFold(m.Phone, q.Search)
	})
	slices.SortFunc(items, func(a, b models.Member) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return paginate(items, q.Page), int64(len(items)), nil
}

func (s *Store) DeleteMember(_ context.Context, id string) error {
	return s.write(func(txn *memdb.Txn) error {
		if _, err := first[models.Member](txn, tblMembers, idxID, id); err != nil {
			return err
		}
		memberships, err := all[models.Membership](txn, tblMemberships, idxMember, id)
		if err != nil {
			return err
		}
		if _, err := txn.DeleteAll(tblMembers, idxID, id); err != nil {
			return err
		}
		for _, tbl := range []string{tblMemberships, tblAttendance, tblPayments} {
			if _, err := txn.DeleteAll(tbl, idxMember, id); err != nil {
				return err
			}
		}
		// payments of other members keep their row but lose the dangling membership
		for _, ms := range memberships {
			linked, err := all[models.Payment](txn, tblPayments, idxMembership, ms.ID)
			if err != nil {
				return err
			}
			for _, p := range linked {
				p.MembershipID = nil
				if err := put(txn, tblPayments, p); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// --- PlanStore ----------------------------------------------------------------

func (s *Store) CreatePlan(_ context.Context, p *models.Plan) error {
	return s.write(func(txn *memdb.Txn) error {
		stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if dup, err := exists(txn, tblPlans, idxID, p.ID); err != nil || dup {
			return lo.Ternary(err != nil, err, storage.ErrDuplicate)
		}
		return put(txn, tblPlans, *p)
	})
}

func (s *Store) UpdatePlan(_ context.Context, p *models.Plan) error {
	return s.write(func(txn *memdb.Txn) error {
		old, err := first[models.Plan](txn, tblPlans, idxID, p.ID)
		if err != nil {
			return err
		}
		p.CreatedAt = old.CreatedAt
		touch(&p.UpdatedAt)
		return put(txn, tblPlans, *p)
	})
}

func (s *Store) GetPlan(_ context.Context, id string) (*models.Plan, error) {
	return first[models.Plan](s.read(), tblPlans, idxID, id)
}

func (s *Store) ListPlans(_ context.Context) ([]models.Plan, error) {
	items, err := rows[models.Plan](s.read(), tblPlans)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(items, func(a, b models.Plan) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return items, nil
}

func (s *Store) DeletePlan(_ context.Context, id string) error {
	return s.write(func(txn *memdb.Txn) error {
		if _, err := first[models.Plan](txn, tblPlans, idxID, id); err != nil {
			return err
		}
		if used, err := exists(txn, tblMemberships, idxPlan, id); err != nil || used {
			return lo.Ternary(err != nil, err, storage.ErrReferenced)
		}
		_, err := txn.DeleteAll(tblPlans, idxID, id)
		return err
	})
}

// --- MembershipStore ----------------------------------------------------------

func withPlan(txn *memdb.Txn, m models.Membership) models.Membership {
	m.Member = nil
	m.Plan, _ = first[models.Plan](txn, tblPlans, idxID, m.PlanID)
	return m
}

func (s *Store) CreateMembership(_ context.Context, m *models.Membership) error {
	return s.write(func(txn *memdb.Txn) error {
		stamp(&m.ID, &m.CreatedAt, &m.UpdatedAt)
		if dup, err := exists(txn, tblMemberships, idxID, m.ID); err != nil || dup {
			return lo.Ternary(err != nil, err, storage.ErrDuplicate)
		}
		if ok, err := exists(txn, tblMembers, idxID, m.MemberID); err != nil || !ok {
			return lo.Ternary(err != nil, err, storage.ErrReferenced)
		}
		if ok, err := exists(txn, tblPlans, idxID, m.PlanID); err != nil || !ok {
			return lo.Ternary(err != nil, err, storage.ErrReferenced)
		}
		row := *m
		row.Plan, row.Member = nil, nil
		return put(txn, tblMemberships, row)
	})
}

func (s *Store) GetMembership(_ context.Context, id string) (*models.Membership, error) {
	txn := s.read()
	m, err := first[models.Membership](txn, tblMemberships, idxID, id)
	if err != nil {
		return nil, err
	}
	out := withPlan(txn, *m)
	return &out, nil
}

func (s *Store) LockMembership(ctx context.Context, id string) (*models.Membership, error) {
	return s.GetMembership(ctx, id)
}

func (s *Store) UpdateMembershipStatus(_ context.Context, id string, status types.MembershipStatus, at time.Time) error {
	return s.write(func(txn *memdb.Txn) error {
		m, err := first[models.Membership](txn, tblMemberships, idxID, id)
		if err != nil {
			return err
		}
		m.Status = status
		m.UpdatedAt = at
		return put(txn, tblMemberships, *m)
	})
}

func (s *Store) ListMembershipsByMember(_ context.Context, memberID string) ([]models.Membership, error) {
	txn := s.read()
	items, err := all[models.Membership](txn, tblMemberships, idxMember, memberID)
	if err != nil {
		return nil, err
	}
	items = lo.Map(items, func(m models.Membership, _ int) models.Membership { return withPlan(txn, m) })
	slices.SortFunc(items, func(a, b models.Membership) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return items, nil
}

func (s *Store) FindActiveMembership(_ context.Context, memberID string, now time.Time) (*models.Membership, error) {
	items, err := all[models.Membership](s.read(), tblMemberships, idxMember, memberID)
	if err != nil {
		return nil, err
	}
	active := lo.Filter(items, func(m models.Membership, _ int) bool { return m.ActiveAt(now) })
	if len(active) == 0 {
		return nil, storage.ErrNotFound
	}
	found := lo.MaxBy(active, func(a, b models.Membership) bool { return a.EndDate.After(b.EndDate) })
	return &found, nil
}

func (s *Store) CreateMembershipLog(_ context.Context, l *models.MembershipLog) error {
	return s.write(func(txn *memdb.Txn) error {
		stamp(&l.ID, &l.CreatedAt, nil)
		return put(txn, tblMembershipLogs, *l)
	})
}

func (s *Store) ListMembershipLogs(_ context.Context, membershipID string) ([]models.MembershipLog, error) {
	items, err := all[models.MembershipLog](s.read(), tblMembershipLogs, idxMembership, membershipID)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(items, func(a, b models.MembershipLog) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return items, nil
}

// --- AttendanceStore ----------------------------------------------------------

func withMember(txn *memdb.Txn, a models.Attendance) models.Attendance {
	if m, err := first[models.Member](txn, tblMembers, idxID, a.MemberID); err == nil {
		a.Member = m.Brief()
	}
	return a
}

func (s *Store) CreateAttendance(_ context.Context, a *models.Attendance) error {
	return s.write(func(txn *memdb.Txn) error {
		stamp(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		m, err := first[models.Member](txn, tblMembers, idxID, a.MemberID)
		if err != nil {
			return lo.Ternary(errors.Is(err, storage.ErrNotFound), storage.ErrReferenced, err)
		}
		if dup, err := exists(txn, tblAttendance, idxID, a.ID); err != nil || dup {
			return lo.Ternary(err != nil, err, storage.ErrDuplicate)
		}
		if a.CheckOut == nil {
			if open, err := exists(txn, tblAttendance, idxOpen, a.MemberID); err != nil || open {
				return lo.Ternary(err != nil, err, storage.ErrDuplicate)
			}
		}
		row := *a
		row.Member = nil
		if err := put(txn, tblAttendance, row); err != nil {
			return err
		}
		a.Member = m.Brief()
		return nil
	})
}

func (s *Store) GetAttendance(_ context.Context, id string) (*models.Attendance, error) {
	txn := s.read()
	a, err := first[models.Attendance](txn, tblAttendance, idxID, id)
	if err != nil {
		return nil, err
	}
	out := withMember(txn, *a)
	return &out, nil
}

func (s *Store) FindOpenAttendance(_ context.Context, memberID string) (*models.Attendance, error) {
	txn := s.read()
	a, err := first[models.Attendance](txn, tblAttendance, idxOpen, memberID)
	if err != nil {
		return nil, err
	}
	out := withMember(txn, *a)
	return &out, nil
}

func (s *Store) CloseAttendance(_ context.Context, id string, at time.Time) error {
	return s.write(func(txn *memdb.Txn) error {
		a, err := first[models.Attendance](txn, tblAttendance, idxID, id)
		if err != nil {
			return err
		}
		if a.CheckOut != nil {
			return storage.ErrStale
		}
		a.CheckOut = &at
		a.UpdatedAt = at
		return put(txn, tblAttendance, *a)
	})
}

func byCheckInDesc(a, b models.Attendance) int {
	return newestFirst(a.CheckIn, b.CheckIn, a.ID, b.ID)
}

func (s *Store) ListAttendance(_ context.Context, q storage.AttendanceQuery) ([]models.Attendance, int64, error) {
	txn := s.read()
	var (
		items []models.Attendance
		err   error
	)
	if q.MemberID != "" {
		items, err = all[models.Attendance](txn, tblAttendance, idxMember, q.MemberID)
	} else {
		items, err = rows[models.Attendance](txn, tblAttendance)
	}
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(items, byCheckInDesc)
	page := lo.Map(paginate(items, q.Page), func(a models.Attendance, _ int) models.Attendance { return withMember(txn, a) })
	return page, int64(len(items)), nil
}

// --- PaymentStore -------------------------------------------------------------

func withRefs(txn *memdb.Txn, p models.Payment) models.Payment {
	p.Member, p.Membership = nil, nil
	if m, err := first[models.Member](txn, tblMembers, idxID, p.MemberID); err == nil {
		p.Member = m.Brief()
	}
	if p.MembershipID != nil {
		if ms, err := first[models.Membership](txn, tblMemberships, idxID, *p.MembershipID); err == nil {
			full := withPlan(txn, *ms)
			p.Membership = &full
		}
	}
	return p
}

func checkPaymentRefs(txn *memdb.Txn, p *models.Payment) error {
	if ok, err := exists(txn, tblMembers, idxID, p.MemberID); err != nil || !ok {
		return lo.Ternary(err != nil, err, storage.ErrReferenced)
	}
	if p.MembershipID != nil {
		if ok, err := exists(txn, tblMemberships, idxID, *p.MembershipID); err != nil || !ok {
			return lo.Ternary(err != nil, err, storage.ErrReferenced)
		}
	}
	return nil
}

func (s *Store) CreatePayment(_ context.Context, p *models.Payment) error {
	return s.write(func(txn *memdb.Txn) error {
		stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if dup, err := exists(txn, tblPayments, idxID, p.ID); err != nil || dup {
			return lo.Ternary(err != nil, err, storage.ErrDuplicate)
		}
		if err := checkPaymentRefs(txn, p); err != nil {
			return err
		}
		row := *p
		row.Member, row.Membership = nil, nil
		return put(txn, tblPayments, row)
	})
}

func (s *Store) UpdatePayment(_ context.Context, p *models.Payment) error {
	return s.write(func(txn *memdb.Txn) error {
		old, err := first[models.Payment](txn, tblPayments, idxID, p.ID)
		if err != nil {
			return err
		}
		if err := checkPaymentRefs(txn, p); err != nil {
			return err
		}
		p.CreatedAt = old.CreatedAt
		touch(&p.UpdatedAt)
		row := *p
		row.Member, row.Membership = nil, nil
		return put(txn, tblPayments, row)
	})
}

func (s *Store) GetPayment(_ context.Context, id string) (*models.Payment, error) {
	txn := s.read()
	p, err := first[models.Payment](txn, tblPayments, idxID, id)
	if err != nil {
		return nil, err
	}
	out := withRefs(txn, *p)
	return &out, nil
}

func (s *Store) ListPayments(_ context.Context, q storage.PaymentQuery) ([]models.Payment, int64, error) {
	txn := s.read()
	var (
		items []models.Payment
		err   error
	)
	if q.MemberID != "" {
		items, err = all[models.Payment](txn, tblPayments, idxMember, q.MemberID)
	} else {
		items, err = rows[models.Payment](txn, tblPayments)
	}
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(items, func(a, b models.Payment) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	page := lo.Map(paginate(items, q.Page), func(p models.Payment, _ int) models.Payment { return withRefs(txn, p) })
	return page, int64(len(items)), nil
}

func (s *Store) DeletePayment(_ context.Context, id string) error {
	return s.write(func(txn *memdb.Txn) error {
		n, err := txn.DeleteAll(tblPayments, idxID, id)
		if err != nil {
			return err
		}
		return lo.Ternary[error](n == 0, storage.ErrNotFound, nil)
	})
}

// --- ExpenseStore -------------------------------------------------------------

func (s *Store) CreateExpense(_ context.Context, e *models.Expense) error {
	return s.write(func(txn *memdb.Txn) error {
		stamp(&e.ID, &e.CreatedAt, &e.UpdatedAt)
		if dup, err := exists(txn, tblExpenses, idxID, e.ID); err != nil || dup {
			return lo.Ternary(err != nil, err, storage.ErrDuplicate)
		}
		return put(txn, tblExpenses, *e)
	})
}

func (s *Store) UpdateExpense(_ context.Context, e *models.Expense) error {
	return s.write(func(txn *memdb.Txn) error {
		old, err := first[models.Expense](txn, tblExpenses, idxID, e.ID)
		if err != nil {
			return err
		}
		e.CreatedAt = old.CreatedAt
		touch(&e.UpdatedAt)
		return put(txn, tblExpenses, *e)
	})
}

func (s *Store) GetExpense(_ context.Context, id string) (*models.Expense, error) {
	return first[models.Expense](s.read(), tblExpenses, idxID, id)
}

func (s *Store) ListExpenses(_ context.Context, q storage.ExpenseQuery) ([]models.Expense, int64, error) {
	txn := s.read()
	var (
		items []models.Expense
		err   error
	)
	if q.Category != "" {
		items, err = all[models.Expense](txn, tblExpenses, idxCategory, string(q.Category))
	} else {
		items, err = rows[models.Expense](txn, tblExpenses)
	}
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(items, func(a, b models.Expense) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return paginate(items, q.Page), int64(len(items)), nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	return s.write(func(txn *memdb.Txn) error {
		n, err := txn.DeleteAll(tblExpenses, idxID, id)
		if err != nil {
			return err
		}
		return lo.Ternary[error](n == 0, storage.ErrNotFound, nil)
	})
}

// --- AssetStore ---------------------------------------------------------------

func (s *Store) CreateAsset(_ context.Context, a *models.Asset) error {
	return s.write(func(txn *memdb.Txn) error {
		stamp(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if dup, err := exists(txn, tblAssets, idxID, a.ID); err != nil || dup {
			return lo.Ternary(err != nil, err, storage.ErrDuplicate)
		}
		return put(txn, tblAssets, *a)
	})
}

func (s *Store) UpdateAsset(_ context.Context, a *models.Asset) error {
	return s.write(func(txn *memdb.Txn) error {
		old, err := first[models.Asset](txn, tblAssets, idxID, a.ID)
		if err != nil {
			return err
		}
		a.CreatedAt = old.CreatedAt
		touch(&a.UpdatedAt)
		return put(txn, tblAssets, *a)
	})
}

func (s *Store) GetAsset(_ context.Context, id string) (*models.Asset, error) {
	return first[models.Asset](s.read(), tblAssets, idxID, id)
}

func (s *Store) ListAssets(_ context.Context, q storage.AssetQuery) ([]models.Asset, int64, error) {
	items, err := rows[models.Asset](s.read(), tblAssets)
	if err != nil {
		return nil, 0, err
	}
	items = lo.Filter(items, func(a models.Asset, _ int) bool {
		if q.Search != "" && !containsFold(a.Name, q.Search) && !containsFold(a.Category, q.Search) {
			return false
		}
		return q.Category == "" || containsFold(a.Category, q.Category)
	})
	slices.SortFunc(items, func(a, b models.Asset) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return paginate(items, q.Page), int64(len(items)), nil
}

func (s *Store) DeleteAsset(_ context.Context, id string) error {
	return s.write(func(txn *memdb.Txn) error {
		n, err := txn.DeleteAll(tblAssets, idxID, id)
		if err != nil {
			return err
		}
		return lo.Ternary[error](n == 0, storage.ErrNotFound, nil)
	})
}

// --- UserStore ----------------------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	return s.write(func(txn *memdb.Txn) error {
		stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt)
		for index, key := range map[string]string{idxID: u.ID, idxEmail: u.Email} {
			if dup, err := exists(txn, tblUsers, index, key); err != nil || dup {
				return lo.Ternary(err != nil, err, storage.ErrDuplicate)
			}
		}
		return put(txn, tblUsers, *u)
	})
}

func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	return first[models.User](s.read(), tblUsers, idxID, id)
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return first[models.User](s.read(), tblUsers, idxEmail, email)
}

func (s *Store) CreateRefreshToken(_ context.Context, t *models.RefreshToken) error {
	return s.write(func(txn *memdb.Txn) error {
		stamp(&t.ID, &t.CreatedAt, nil)
		for index, key := range map[string]string{idxID: t.ID, idxHash: t.TokenHash} {
			if dup, err := exists(txn, tblTokens, index, key); err != nil || dup {
				return lo.Ternary(err != nil, err, storage.ErrDuplicate)
			}
		}
		return put(txn, tblTokens, *t)
	})
}

func (s *Store) GetRefreshTokenByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	return first[models.RefreshToken](s.read(), tblTokens, idxHash, hash)
}

func (s *Store) RevokeRefreshToken(_ context.Context, id string) error {
	return s.write(func(txn *memdb.Txn) error {
		t, err := first[models.RefreshToken](txn, tblTokens, idxID, id)
		if err != nil {
			return err
		}
		if t.Revoked {
			return storage.ErrStale
		}
		t.Revoked = true
		return put(txn, tblTokens, *t)
	})
}

func (s *Store) RevokeRefreshTokenByHash(_ context.Context, hash string) error {
	return s.write(func(txn *memdb.Txn) error {
		t, err := first[models.RefreshToken](txn, tblTokens, idxHash, hash)
		if errors.Is(err, storage.ErrNotFound) || (err == nil && t.Revoked) {
			return nil
		}
		if err != nil {
			return err
		}
		t.Revoked = true
		return put(txn, tblTokens, *t)
	})
}

// --- StatsStore ---------------------------------------------------------------

func since(at, from time.Time) bool { return from.IsZero() || !at.Before(from) }

func count[T any](txn *memdb.Txn, table string, keep func(T) bool) (int64, error) {
	items, err := rows[T](txn, table)
	if err != nil {
		return 0, err
	}
	return int64(lo.CountBy(items, keep)), nil
}

func (s *Store) CountMembers(_ context.Context) (int64, error) {
	return count(s.read(), tblMembers, func(models.Member) bool { return true })
}

func (s *Store) CountActiveMemberships(_ context.Context, now time.Time) (int64, error) {
	return count(s.read(), tblMemberships, func(m models.Membership) bool { return m.ActiveAt(now) })
}

func (s *Store) CountAttendanceSince(_ context.Context, from time.Time) (int64, error) {
	return count(s.read(), tblAttendance, func(a models.Attendance) bool { return since(a.CheckIn, from) })
}

func (s *Store) CountActivePlans(_ context.Context) (int64, error) {
	return count(s.read(), tblPlans, func(p models.Plan) bool { return p.IsActive })
}

func (s *Store) CountAssets(_ context.Context) (int64, error) {
	return count(s.read(), tblAssets, func(models.Asset) bool { return true })
}

func (s *Store) SumPayments(_ context.Context, from time.Time) (int64, error) {
	items, err := rows[models.Payment](s.read(), tblPayments)
	if err != nil {
		return 0, err
	}
	return lo.SumBy(items, func(p models.Payment) int64 {
		return lo.Ternary(since(p.CreatedAt, from), p.Amount, 0)
	}), nil
}

func (s *Store) SumExpenses(_ context.Context, from time.Time) (int64, error) {
	items, err := rows[models.Expense](s.read(), tblExpenses)
	if err != nil {
		return 0, err
	}
	return lo.SumBy(items, func(e models.Expense) int64 {
		return lo.Ternary(since(e.CreatedAt, from), e.Amount, 0)
	}), nil
}

func (s *Store) RecentPayments(ctx context.Context, n int) ([]models.Payment, error) {
	items, _, err := s.ListPayments(ctx, storage.PaymentQuery{Page: storage.Page{Page: 1, Limit: n}})
	return items, err
}

func (s *Store) RecentAttendance(ctx context.Context, n int) ([]models.Attendance, error) {
	items, _, err := s.ListAttendance(ctx, storage.AttendanceQuery{Page: storage.Page{Page: 1, Limit: n}})
	return items, err
}

func (s *Store) RecentExpenses(ctx context.Context, n int) ([]models.Expense, error) {
	items, _, err := s.ListExpenses(ctx, storage.ExpenseQuery{Page: storage.Page{Page: 1, Limit: n}})
	return items, err
}

func (s *Store) MembershipStatusBreakdown(_ context.Context) ([]models.StatusCount, error) {
	items, err := rows[models.Membership](s.read(), tblMemberships)
	if err != nil {
		return nil, err
	}
	counts := lo.CountValuesBy(items, func(m models.Membership) types.MembershipStatus { return m.Status })
	out := make([]models.StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, models.StatusCount{Status: status, Count: int64(n)})
	}
	slices.SortFunc(out, func(a, b models.StatusCount) int { return cmp.Compare(a.Status, b.Status) })
	return out, nil
}

func (s *Store) PaymentMethodBreakdown(_ context.Context, from time.Time) ([]models.MethodBreakdown, error) {
	items, err := rows[models.Payment](s.read(), tblPayments)
	if err != nil {
		return nil, err
	}
	agg := map[types.PaymentMethod]*models.MethodBreakdown{}
	for _, p := range items {
		if !since(p.CreatedAt, from) {
			continue
		}
		b, ok := agg[p.Method]
		if !ok {
			b = &models.MethodBreakdown{Method: p.Method}
			agg[p.Method] = b
		}
		b.Count++
		b.Amount += p.Amount
	}
	out := make([]models.MethodBreakdown, 0, len(agg))
	for _, b := range agg {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b models.MethodBreakdown) int { return cmp.Compare(a.Method, b.Method) })
	return out, nil
}

func (s *Store) ExpenseCategoryBreakdown(_ context.Context, from time.Time) ([]models.CategoryBreakdown, error) {
	items, err := rows[models.Expense](s.read(), tblExpenses)
	if err != nil {
		return nil, err
	}
	agg := map[types.ExpenseCategory]*models.CategoryBreakdown{}
	for _, e := range items {
		if !since(e.CreatedAt, from) {
			continue
		}
		b, ok := agg[e.Category]
		if !ok {
			b = &models.CategoryBreakdown{Category: e.Category}
			agg[e.Category] = b
		}
		b.Count++
		b.Amount += e.Amount
	}
	out := make([]models.CategoryBreakdown, 0, len(agg))
	for _, b := range agg {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b models.CategoryBreakdown) int { return cmp.Compare(a.Category, b.Category) })
	return out, nil
}

func (s *Store) UpsertDailySnapshot(_ context.Context, snap *models.StatsDailySnapshot) error {
	return s.write(func(txn *memdb.Txn) error {
		old, err := first[models.StatsDailySnapshot](txn, tblSnapshots, idxID, snap.SnapshotDate)
		switch {
		case err == nil:
			snap.ID = old.ID
			snap.CreatedAt = old.CreatedAt
			snap.UpdatedAt = time.Now()
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}
		stamp(&snap.ID, &snap.CreatedAt, &snap.UpdatedAt)
		return put(txn, tblSnapshots, *snap)
	})
}

// ListDailySnapshots walks the date-keyed index from the lower bound, so rows
// come back oldest first.
func (s *Store) ListDailySnapshots(_ context.Context, from, to string) ([]models.StatsDailySnapshot, error) {
	it, err := s.read().LowerBound(tblSnapshots, idxID, from)
	if err != nil {
		return nil, err
	}
	out := make([]models.StatsDailySnapshot, 0)
	for raw := it.Next(); raw != nil; raw = it.Next() {
		snap := *raw.(*models.StatsDailySnapshot)
		if to != "" && snap.SnapshotDate > to {
			break
		}
		out = append(out, snap)
	}
	return out, nil
}
