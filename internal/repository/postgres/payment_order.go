package postgres

import (
	"context"
	"database/sql"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/logger"
	"membership-portal-backend/internal/repository"
)

type paymentOrderRepository struct {
	db *sql.DB
}

func NewPaymentOrderRepository(db *sql.DB) repository.PaymentOrderRepository {
	return &paymentOrderRepository{db: db}
}

func (r *paymentOrderRepository) Create(ctx context.Context, o *domain.PaymentOrder) error {
	logger.EnterMethod("paymentOrderRepository.Create", "orderID", o.OrderID, "userID", o.UserID)

	query := `
		INSERT INTO payment_orders (order_id, user_id, plan, amount, currency, receipt_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if o.Status == "" {
		o.Status = domain.PaymentOrderStatusCreated
	}
	err := r.db.QueryRowContext(ctx, query,
		o.OrderID, o.UserID, o.Plan, o.Amount, o.Currency, o.ReceiptID, o.Status, o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		err = translateError(err)
		logger.ExitMethodWithError("paymentOrderRepository.Create", err, "orderID", o.OrderID)
		return err
	}

	logger.ExitMethod("paymentOrderRepository.Create", "id", o.ID)
	return nil
}

func (r *paymentOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	logger.EnterMethod("paymentOrderRepository.GetByOrderID", "orderID", orderID)

	query := `SELECT id, order_id, user_id, plan, amount, currency, receipt_id, status, created_at, paid_at
		FROM payment_orders WHERE order_id = $1`
	o := &domain.PaymentOrder{}
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&o.ID, &o.OrderID, &o.UserID, &o.Plan, &o.Amount, &o.Currency, &o.ReceiptID, &o.Status, &o.CreatedAt, &o.PaidAt,
	)
	if err != nil {
		err = translateError(err)
		logger.ExitMethodWithError("paymentOrderRepository.GetByOrderID", err, "orderID", orderID)
		return nil, err
	}

	logger.ExitMethod("paymentOrderRepository.GetByOrderID", "orderID", orderID, "status", o.Status)
	return o, nil
}
