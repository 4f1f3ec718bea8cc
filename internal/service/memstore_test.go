package service_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"membership-portal-backend/internal/domain"
)

// memStore is an in-memory stand-in for the postgres repositories that keeps
// their conditional-update semantics, so workflow tests can run end to end.
type memStore struct {
	mu       sync.Mutex
	users    map[int32]*domain.User
	payments map[int32]*domain.Payment
	orders   map[string]*domain.PaymentOrder
	nextID   int32
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int32]*domain.User{},
		payments: map[int32]*domain.Payment{},
		orders:   map[string]*domain.PaymentOrder{},
		nextID:   100,
	}
}

func (s *memStore) id() int32 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addUser(u domain.User) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := u
	s.users[u.ID] = &cp
	return &cp
}

// snapshot returns a copy so callers can compare before and after
func (s *memStore) snapshot(id int32) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *s.users[id]
	if u.ExpiryDate != nil {
		e := *u.ExpiryDate
		u.ExpiryDate = &e
	}
	if u.LastPaymentDate != nil {
		l := *u.LastPaymentDate
		u.LastPaymentDate = &l
	}
	return u
}

func (s *memStore) paymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}

func (s *memStore) Users() *memUsers       { return &memUsers{s} }
func (s *memStore) Payments() *memPayments { return &memPayments{s} }
func (s *memStore) Orders() *memOrders     { return &memOrders{s} }

type memUsers struct{ s *memStore }

func (r *memUsers) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrConflict
		}
	}
	user.ID = r.s.id()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *memUsers) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUsers) UpdateProfile(ctx context.Context, user *domain.User) error { return nil }
func (r *memUsers) UpdatePassword(ctx context.Context, id int32, hash string) error {
	return nil
}
func (r *memUsers) TouchLastActive(ctx context.Context, id int32, at time.Time) error { return nil }
func (r *memUsers) List(ctx context.Context, filter domain.MemberFilter) ([]domain.User, int32, error) {
	return nil, 0, nil
}
func (r *memUsers) ListByRole(ctx context.Context, roles []domain.Role) ([]domain.User, error) {
	return nil, nil
}
func (r *memUsers) DecideRegistration(ctx context.Context, id int32, d domain.RegistrationDecision) (*domain.User, error) {
	return nil, fmt.Errorf("not supported")
}
func (r *memUsers) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.User, error) {
	return nil, nil
}
func (r *memUsers) CountByStatus(ctx context.Context, status domain.MemberStatus) (int32, error) {
	return 0, nil
}
func (r *memUsers) CountJoinedBetween(ctx context.Context, start, end time.Time) (int32, error) {
	return 0, nil
}
func (r *memUsers) CountActiveByRole(ctx context.Context) ([]domain.NameCount, error) {
	return nil, nil
}
func (r *memUsers) CountSummary(ctx context.Context) (*domain.MemberCounts, error) {
	return &domain.MemberCounts{}, nil
}

type memPayments struct{ s *memStore }

func (r *memPayments) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPayments) List(ctx context.Context, filter domain.PaymentFilter) ([]domain.PaymentWithMember, int32, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.PaymentWithMember
	for _, p := range r.s.sortedPayments() {
		if filter.UserID != 0 && p.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, domain.PaymentWithMember{Payment: *p})
	}
	return out, int32(len(out)), nil
}

func (r *memPayments) CreatePending(ctx context.Context, payment *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.UserID == payment.UserID && p.Status == domain.PaymentStatusPendingApproval {
			return fmt.Errorf("%w: idx_payments_one_pending", domain.ErrConflict)
		}
	}
	payment.ID = r.s.id()
	cp := *payment
	r.s.payments[payment.ID] = &cp
	return nil
}

func (r *memPayments) CreateCompleted(ctx context.Context, payment *domain.Payment, renewal domain.Renewal) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[payment.UserID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if payment.GatewayOrderID != "" {
		o, ok := r.s.orders[payment.GatewayOrderID]
		if !ok || o.Status != domain.PaymentOrderStatusCreated {
			return nil, domain.ErrConflict
		}
		o.Status = domain.PaymentOrderStatusPaid
	}
	payment.ID = r.s.id()
	cp := *payment
	r.s.payments[payment.ID] = &cp
	renewal.Apply(u)
	out := *u
	return &out, nil
}

func (r *memPayments) Approve(ctx context.Context, id, reviewerID int32, now time.Time) (*domain.Payment, *domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok || p.Status != domain.PaymentStatusPendingApproval {
		return nil, nil, domain.ErrConflict
	}
	p.Status = domain.PaymentStatusCompleted
	p.ReviewedBy = &reviewerID
	p.ReviewedAt = &now
	u := r.s.users[p.UserID]
	domain.Renewal{Plan: p.MembershipType, PaidOn: p.PaymentDate, Now: now}.Apply(u)
	pc, uc := *p, *u
	return &pc, &uc, nil
}

func (r *memPayments) Reject(ctx context.Context, id, reviewerID int32, reason string, now time.Time) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok || p.Status != domain.PaymentStatusPendingApproval {
		return nil, domain.ErrConflict
	}
	p.Status = domain.PaymentStatusRejected
	p.RejectionReason = reason
	p.ReviewedBy = &reviewerID
	p.ReviewedAt = &now
	pc := *p
	return &pc, nil
}

func (r *memPayments) HasPending(ctx context.Context, userID int32) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.UserID == userID && p.Status == domain.PaymentStatusPendingApproval {
			return true, nil
		}
	}
	return false, nil
}

// LatestOpenSubmission mirrors the SQL: newest pending, else the newest
// rejection that no completed payment has superseded.
func (r *memPayments) LatestOpenSubmission(ctx context.Context, userID int32) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var pending, rejected *domain.Payment
	var lastCompleted int32
	for _, p := range r.s.sortedPayments() {
		if p.UserID != userID {
			continue
		}
		switch p.Status {
		case domain.PaymentStatusPendingApproval:
			pending = p
		case domain.PaymentStatusRejected:
			rejected = p
		case domain.PaymentStatusCompleted:
			lastCompleted = p.ID
		}
	}
	if pending != nil {
		cp := *pending
		return &cp, nil
	}
	if rejected != nil && rejected.ID > lastCompleted {
		cp := *rejected
		return &cp, nil
	}
	return nil, nil
}

func (r *memPayments) CountPendingOlderThan(ctx context.Context, cutoff time.Time) (int32, error) {
	return 0, nil
}

func (r *memPayments) RevenueByType(ctx context.Context) (map[domain.MembershipType]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[domain.MembershipType]int64{}
	for _, p := range r.s.payments {
		if p.Status == domain.PaymentStatusCompleted {
			out[p.MembershipType] += p.Amount
		}
	}
	return out, nil
}

func (r *memPayments) CountCompletedBetween(ctx context.Context, start, end time.Time) (int32, error) {
	return 0, nil
}
func (r *memPayments) CountCompletedByType(ctx context.Context, t domain.MembershipType) (int32, error) {
	return 0, nil
}
func (r *memPayments) MonthlyRevenueSince(ctx context.Context, since time.Time) ([]domain.MonthlyRevenue, error) {
	return nil, nil
}

// sortedPayments orders by insertion; callers hold the lock
func (s *memStore) sortedPayments() []*domain.Payment {
	out := make([]*domain.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memOrders struct{ s *memStore }

func (r *memOrders) Create(ctx context.Context, order *domain.PaymentOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order.ID = r.s.id()
	cp := *order
	r.s.orders[order.OrderID] = &cp
	return nil
}

func (r *memOrders) GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}
