package repository

import (
	"context"
	"time"

	"membership-portal-backend/internal/domain"
)

// Repository methods return domain.ErrNotFound for missing rows and
// domain.ErrConflict when a conditional write matched nothing or a
// uniqueness constraint rejected the row.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id int32, passwordHash string) error
	TouchLastActive(ctx context.Context, id int32, at time.Time) error
	List(ctx context.Context, filter domain.MemberFilter) ([]domain.User, int32, error)
	ListByRole(ctx context.Context, roles []domain.Role) ([]domain.User, error)

	// Registration review
	DecideRegistration(ctx context.Context, id int32, decision domain.RegistrationDecision) (*domain.User, error)

	// Membership maintenance
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.User, error)

	// Reporting
	CountByStatus(ctx context.Context, status domain.MemberStatus) (int32, error)
	CountJoinedBetween(ctx context.Context, start, end time.Time) (int32, error)
	CountActiveByRole(ctx context.Context) ([]domain.NameCount, error)
	CountSummary(ctx context.Context) (*domain.MemberCounts, error)
}

type PaymentRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Payment, error)
	List(ctx context.Context, filter domain.PaymentFilter) ([]domain.PaymentWithMember, int32, error)

	// CreatePending stores a self-reported payment awaiting review. A second
	// outstanding submission for the same member yields domain.ErrConflict.
	CreatePending(ctx context.Context, payment *domain.Payment) error

	// CreateCompleted stores a trusted payment and applies the renewal to the
	// paying member in one transaction. When payment.GatewayOrderID is set the
	// order is marked PAID in the same transaction.
	CreateCompleted(ctx context.Context, payment *domain.Payment, renewal domain.Renewal) (*domain.User, error)

	// Approve moves a PENDING_APPROVAL payment to COMPLETED with a conditional
	// update and renews the member in the same transaction.
	Approve(ctx context.Context, id, reviewerID int32, now time.Time) (*domain.Payment, *domain.User, error)

	// Reject moves a PENDING_APPROVAL payment to REJECTED with a conditional update.
	Reject(ctx context.Context, id, reviewerID int32, reason string, now time.Time) (*domain.Payment, error)

	HasPending(ctx context.Context, userID int32) (bool, error)
	LatestOpenSubmission(ctx context.Context, userID int32) (*domain.Payment, error)
	CountPendingOlderThan(ctx context.Context, cutoff time.Time) (int32, error)

	// Reporting over COMPLETED payments
	RevenueByType(ctx context.Context) (map[domain.MembershipType]int64, error)
	CountCompletedBetween(ctx context.Context, start, end time.Time) (int32, error)
	CountCompletedByType(ctx context.Context, membershipType domain.MembershipType) (int32, error)
	MonthlyRevenueSince(ctx context.Context, since time.Time) ([]domain.MonthlyRevenue, error)
}

type PaymentOrderRepository interface {
	Create(ctx context.Context, order *domain.PaymentOrder) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	GetByID(ctx context.Context, id int32) (*domain.Activity, error)
	Update(ctx context.Context, activity *domain.Activity) error
	List(ctx context.Context, filter domain.ActivityFilter) ([]domain.Activity, error)
	ListByParticipant(ctx context.Context, userID int32) ([]domain.Activity, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Activity, error)
	Delete(ctx context.Context, id int32) error

	// AddParticipant enforces capacity and uniqueness atomically.
	AddParticipant(ctx context.Context, activityID, userID int32) error

	// Reporting
	CountBetween(ctx context.Context, start, end time.Time, status domain.ActivityStatus) (int32, error)
	CountByTypeBetween(ctx context.Context, start, end time.Time) ([]domain.NameCount, error)
	ImpactBetween(ctx context.Context, start, end time.Time) (*domain.Impact, error)
	Summary(ctx context.Context) (*domain.ActivityCounts, error)
}

type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *domain.Announcement) error
	List(ctx context.Context) ([]domain.Announcement, error)
}

type ResourceRepository interface {
	Create(ctx context.Context, resource *domain.Resource) error
	List(ctx context.Context, levels []domain.AccessLevel) ([]domain.Resource, error)
}
