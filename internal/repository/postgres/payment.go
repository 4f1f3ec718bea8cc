package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/logger"
	"membership-portal-backend/internal/repository"
)

const paymentColumns = `id, user_id, amount, membership_type, payment_date, payment_method,
	COALESCE(transaction_id, ''), COALESCE(gateway_order_id, ''), COALESCE(notes, ''), status, recorded_by,
	COALESCE(rejection_reason, ''), reviewed_by, reviewed_at, created_at`

func scanPayment(s rowScanner, extra ...any) (*domain.Payment, error) {
	p := &domain.Payment{}
	dest := []any{
		&p.ID, &p.UserID, &p.Amount, &p.MembershipType, &p.PaymentDate, &p.PaymentMethod,
		&p.TransactionID, &p.GatewayOrderID, &p.Notes, &p.Status, &p.RecordedBy,
		&p.RejectionReason, &p.ReviewedBy, &p.ReviewedAt, &p.CreatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return p, nil
}

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	logger.EnterMethod("paymentRepository.GetByID", "paymentID", id)

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		err = translateError(err)
		logger.ExitMethodWithError("paymentRepository.GetByID", err, "paymentID", id)
		return nil, err
	}

	logger.ExitMethod("paymentRepository.GetByID", "paymentID", id, "status", p.Status)
	return p, nil
}

func (r *paymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]domain.PaymentWithMember, int32, error) {
	logger.EnterMethod("paymentRepository.List", "userID", filter.UserID, "status", filter.Status, "page", filter.Page)

	where := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != 0 {
		where = append(where, fmt.Sprintf("p.user_id = $%d", argIdx))
		args = append(args, filter.UserID)
		argIdx++
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("p.status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(u.name ILIKE $%d OR u.email ILIKE $%d OR p.transaction_id ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}
	clause := strings.Join(where, " AND ")

	var total int32
	countQuery := `SELECT COUNT(*) FROM payments p JOIN users u ON u.id = p.user_id WHERE ` + clause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		logger.ExitMethodWithError("paymentRepository.List", err)
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.user_id, p.amount, p.membership_type, p.payment_date, p.payment_method,
		       COALESCE(p.transaction_id, ''), COALESCE(p.gateway_order_id, ''), COALESCE(p.notes, ''), p.status, p.recorded_by,
		       COALESCE(p.rejection_reason, ''), p.reviewed_by, p.reviewed_at, p.created_at,
		       u.name, u.email
		FROM payments p JOIN users u ON u.id = p.user_id
		WHERE %s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`, clause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offsetFor(filter.Page, filter.Limit))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.List", err)
		return nil, 0, err
	}
	defer rows.Close()

	var payments []domain.PaymentWithMember
	for rows.Next() {
		var name, email string
		p, err := scanPayment(rows, &name, &email)
		if err != nil {
			logger.ExitMethodWithError("paymentRepository.List", err)
			return nil, 0, err
		}
		payments = append(payments, domain.PaymentWithMember{Payment: *p, MemberName: name, MemberEmail: email})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	logger.ExitMethod("paymentRepository.List", "count", len(payments), "total", total)
	return payments, total, nil
}

func (r *paymentRepository) CreatePending(ctx context.Context, p *domain.Payment) error {
	logger.EnterMethod("paymentRepository.CreatePending", "userID", p.UserID, "method", p.PaymentMethod)

	p.Status = domain.PaymentStatusPendingApproval
	if err := insertPayment(ctx, r.db, p); err != nil {
		err = translateError(err)
		logger.ExitMethodWithError("paymentRepository.CreatePending", err, "userID", p.UserID)
		return err
	}

	logger.ExitMethod("paymentRepository.CreatePending", "paymentID", p.ID)
	return nil
}

func (r *paymentRepository) CreateCompleted(ctx context.Context, p *domain.Payment, renewal domain.Renewal) (*domain.User, error) {
	logger.EnterMethod("paymentRepository.CreateCompleted", "userID", p.UserID, "method", p.PaymentMethod, "plan", renewal.Plan)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.CreateCompleted", err)
		return nil, err
	}
	defer tx.Rollback()

	member, err := lockUser(ctx, tx, p.UserID)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.CreateCompleted", err, "userID", p.UserID)
		return nil, err
	}

	if p.GatewayOrderID != "" {
		res, err := tx.ExecContext(ctx,
			`UPDATE payment_orders SET status = 'PAID', paid_at = $1 WHERE order_id = $2 AND user_id = $3 AND status = 'CREATED'`,
			renewal.Now, p.GatewayOrderID, p.UserID)
		if err != nil {
			logger.ExitMethodWithError("paymentRepository.CreateCompleted", err, "orderID", p.GatewayOrderID)
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			err = fmt.Errorf("%w: order %s already captured", domain.ErrConflict, p.GatewayOrderID)
			logger.ExitMethodWithError("paymentRepository.CreateCompleted", err, "orderID", p.GatewayOrderID)
			return nil, err
		}
	}

	p.Status = domain.PaymentStatusCompleted
	if err := insertPayment(ctx, tx, p); err != nil {
		err = translateError(err)
		logger.ExitMethodWithError("paymentRepository.CreateCompleted", err, "userID", p.UserID)
		return nil, err
	}

	renewal.Apply(member)
	if err := saveMembership(ctx, tx, member, renewal.Now); err != nil {
		logger.ExitMethodWithError("paymentRepository.CreateCompleted", err, "userID", p.UserID)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("paymentRepository.CreateCompleted", err, "userID", p.UserID)
		return nil, err
	}

	logger.ExitMethod("paymentRepository.CreateCompleted", "paymentID", p.ID, "expiry", member.ExpiryDate)
	return member, nil
}

func (r *paymentRepository) Approve(ctx context.Context, id, reviewerID int32, now time.Time) (*domain.Payment, *domain.User, error) {
	logger.EnterMethod("paymentRepository.Approve", "paymentID", id, "reviewerID", reviewerID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.Approve", err)
		return nil, nil, err
	}
	defer tx.Rollback()

	// Lock order is member then payment, matching CreateCompleted
	var userID int32
	if err := tx.QueryRowContext(ctx, `SELECT user_id FROM payments WHERE id = $1`, id).Scan(&userID); err != nil {
		err = translateError(err)
		logger.ExitMethodWithError("paymentRepository.Approve", err, "paymentID", id)
		return nil, nil, err
	}
	member, err := lockUser(ctx, tx, userID)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.Approve", err, "userID", userID)
		return nil, nil, err
	}

	logger.DatabaseCall("payments.transition", "paymentID", id, "to", domain.PaymentStatusCompleted)
	query := `UPDATE payments SET status = 'COMPLETED', reviewed_by = $1, reviewed_at = $2
		WHERE id = $3 AND status = 'PENDING_APPROVAL'
		RETURNING ` + paymentColumns
	p, err := scanPayment(tx.QueryRowContext(ctx, query, reviewerID, now, id))
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: payment %d is no longer pending", domain.ErrConflict, id)
	}
	logger.DatabaseResult("payments.transition", boolToRows(err == nil), err, "paymentID", id)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.Approve", err, "paymentID", id)
		return nil, nil, err
	}

	domain.Renewal{Plan: p.MembershipType, PaidOn: p.PaymentDate, Now: now}.Apply(member)
	if err := saveMembership(ctx, tx, member, now); err != nil {
		logger.ExitMethodWithError("paymentRepository.Approve", err, "userID", userID)
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("paymentRepository.Approve", err, "paymentID", id)
		return nil, nil, err
	}

	logger.ExitMethod("paymentRepository.Approve", "paymentID", id, "expiry", member.ExpiryDate)
	return p, member, nil
}

func (r *paymentRepository) Reject(ctx context.Context, id, reviewerID int32, reason string, now time.Time) (*domain.Payment, error) {
	logger.EnterMethod("paymentRepository.Reject", "paymentID", id, "reviewerID", reviewerID)

	logger.DatabaseCall("payments.transition", "paymentID", id, "to", domain.PaymentStatusRejected)
	query := `UPDATE payments SET status = 'REJECTED', rejection_reason = $1, reviewed_by = $2, reviewed_at = $3
		WHERE id = $4 AND status = 'PENDING_APPROVAL'
		RETURNING ` + paymentColumns
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, reason, reviewerID, now, id))
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: payment %d is no longer pending", domain.ErrConflict, id)
	}
	logger.DatabaseResult("payments.transition", boolToRows(err == nil), err, "paymentID", id)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.Reject", err, "paymentID", id)
		return nil, err
	}

	logger.ExitMethod("paymentRepository.Reject", "paymentID", id)
	return p, nil
}

func (r *paymentRepository) HasPending(ctx context.Context, userID int32) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM payments WHERE user_id = $1 AND status = 'PENDING_APPROVAL')`, userID).Scan(&exists)
	return exists, err
}

func (r *paymentRepository) LatestOpenSubmission(ctx context.Context, userID int32) (*domain.Payment, error) {
	logger.EnterMethod("paymentRepository.LatestOpenSubmission", "userID", userID)

	// A rejection stays visible until a later payment completes
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = $1
		  AND (status = 'PENDING_APPROVAL'
		       OR (status = 'REJECTED' AND created_at > COALESCE(
		           (SELECT MAX(created_at) FROM payments WHERE user_id = $1 AND status = 'COMPLETED'),
		           '-infinity'::timestamptz)))
		ORDER BY (status = 'PENDING_APPROVAL') DESC, created_at DESC
		LIMIT 1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		logger.ExitMethod("paymentRepository.LatestOpenSubmission", "userID", userID, "found", false)
		return nil, nil
	}
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.LatestOpenSubmission", err, "userID", userID)
		return nil, err
	}

	logger.ExitMethod("paymentRepository.LatestOpenSubmission", "userID", userID, "paymentID", p.ID)
	return p, nil
}

func (r *paymentRepository) CountPendingOlderThan(ctx context.Context, cutoff time.Time) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE status = 'PENDING_APPROVAL' AND created_at < $1`, cutoff).Scan(&count)
	return count, err
}

func (r *paymentRepository) RevenueByType(ctx context.Context) (map[domain.MembershipType]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT membership_type, COALESCE(SUM(amount), 0) FROM payments WHERE status = 'COMPLETED' GROUP BY membership_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	revenue := make(map[domain.MembershipType]int64)
	for rows.Next() {
		var t domain.MembershipType
		var sum int64
		if err := rows.Scan(&t, &sum); err != nil {
			return nil, err
		}
		revenue[t] = sum
	}
	return revenue, rows.Err()
}

func (r *paymentRepository) CountCompletedBetween(ctx context.Context, start, end time.Time) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE status = 'COMPLETED' AND payment_date >= $1 AND payment_date < $2`,
		start, end).Scan(&count)
	return count, err
}

func (r *paymentRepository) CountCompletedByType(ctx context.Context, t domain.MembershipType) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE status = 'COMPLETED' AND membership_type = $1`, t).Scan(&count)
	return count, err
}

// MonthlyRevenueSince buckets by UTC calendar month whatever the session
// TimeZone is, matching the UTC month boundaries the report is built on.
func (r *paymentRepository) MonthlyRevenueSince(ctx context.Context, since time.Time) ([]domain.MonthlyRevenue, error) {
	query := `
		SELECT EXTRACT(YEAR FROM payment_date AT TIME ZONE 'UTC')::int,
		       EXTRACT(MONTH FROM payment_date AT TIME ZONE 'UTC')::int,
		       COALESCE(SUM(amount), 0)
		FROM payments
		WHERE status = 'COMPLETED' AND payment_date >= $1
		GROUP BY 1, 2
		ORDER BY 1, 2`
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var months []domain.MonthlyRevenue
	for rows.Next() {
		var m domain.MonthlyRevenue
		if err := rows.Scan(&m.Year, &m.Month, &m.Total); err != nil {
			return nil, err
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertPayment(ctx context.Context, q execer, p *domain.Payment) error {
	query := `
		INSERT INTO payments (
			user_id, amount, membership_type, payment_date, payment_method, transaction_id,
			gateway_order_id, notes, status, recorded_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	return q.QueryRowContext(ctx, query,
		p.UserID, p.Amount, p.MembershipType, p.PaymentDate, p.PaymentMethod, nullString(p.TransactionID),
		nullString(p.GatewayOrderID), nullString(p.Notes), p.Status, p.RecordedBy, p.CreatedAt,
	).Scan(&p.ID, &p.CreatedAt)
}

func lockUser(ctx context.Context, tx *sql.Tx, id int32) (*domain.User, error) {
	u, err := scanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return u, nil
}

func saveMembership(ctx context.Context, q execer, u *domain.User, now time.Time) error {
	u.UpdatedAt = now
	_, err := q.ExecContext(ctx,
		`UPDATE users SET status = $1, membership_type = $2, expiry_date = $3, last_payment_date = $4, updated_at = $5 WHERE id = $6`,
		u.Status, nullString(string(u.MembershipType)), u.ExpiryDate, u.LastPaymentDate, u.UpdatedAt, u.ID)
	return err
}

func boolToRows(ok bool) int64 {
	if ok {
		return 1
	}
	return 0
}
