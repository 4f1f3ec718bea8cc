package postgres

import (
	"database/sql/driver"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var userColumnNames = []string{
	"id", "name", "email", "password_hash", "role", "phone", "address",
	"profile_image", "date_of_birth", "occupation", "skills", "interests",
	"experience", "motivation", "bio",
	"ec_name", "ec_phone", "ec_relationship",
	"status", "membership_type", "expiry_date", "last_payment_date",
	"date_joined", "last_active", "approved_by", "approved_at", "rejected_by", "rejected_at", "rejection_reason",
	"created_at", "updated_at",
}

var paymentColumnNames = []string{
	"id", "user_id", "amount", "membership_type", "payment_date", "payment_method",
	"transaction_id", "gateway_order_id", "notes", "status", "recorded_by",
	"rejection_reason", "reviewed_by", "reviewed_at", "created_at",
}

func userRow(id int64, status string, expiry *time.Time) []driver.Value {
	joined := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	var exp driver.Value
	if expiry != nil {
		exp = *expiry
	}
	return []driver.Value{
		id, "Asha", "asha@example.com", "hash", "MEMBER", "999", "",
		"", nil, "", "{}", "{birds,trees}",
		"", "", "",
		"", "", "",
		status, "ANNUAL", exp, nil,
		joined, nil, nil, nil, nil, nil, "",
		joined, joined,
	}
}

func userRows(rows ...[]driver.Value) *sqlmock.Rows {
	r := sqlmock.NewRows(userColumnNames)
	for _, row := range rows {
		r.AddRow(row...)
	}
	return r
}

func paymentRow(id, userID int64, status string) []driver.Value {
	paid := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []driver.Value{
		id, userID, int64(500), "ANNUAL", paid, "UPI",
		"UPI-1", "", "", status, userID,
		"", nil, nil, paid,
	}
}

func paymentRows(rows ...[]driver.Value) *sqlmock.Rows {
	r := sqlmock.NewRows(paymentColumnNames)
	for _, row := range rows {
		r.AddRow(row...)
	}
	return r
}
