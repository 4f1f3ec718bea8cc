package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodUPI          PaymentMethod = "UPI"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodOther        PaymentMethod = "OTHER"
	PaymentMethodRazorpay     PaymentMethod = "RAZORPAY"
)

// SelfReportable reports whether a member may declare a payment made this way.
func (m PaymentMethod) SelfReportable() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodUPI, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// AdminRecordable reports whether an admin may record a payment made this way.
// Gateway payments only enter through signature-verified capture.
func (m PaymentMethod) AdminRecordable() bool {
	return m.SelfReportable() || m == PaymentMethodOther
}

type PaymentStatus string

const (
	PaymentStatusCompleted       PaymentStatus = "COMPLETED"
	PaymentStatusPendingApproval PaymentStatus = "PENDING_APPROVAL"
	PaymentStatusRejected        PaymentStatus = "REJECTED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusPendingApproval, PaymentStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusRejected
}

// Payment is one dues payment attempt. Once COMPLETED or REJECTED it never changes.
type Payment struct {
	ID              int32          `json:"id"`
	UserID          int32          `json:"user_id"`
	Amount          int64          `json:"amount"`
	MembershipType  MembershipType `json:"membership_type"`
	PaymentDate     time.Time      `json:"payment_date"`
	PaymentMethod   PaymentMethod  `json:"payment_method"`
	TransactionID   string         `json:"transaction_id,omitempty"`
	GatewayOrderID  string         `json:"gateway_order_id,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	Status          PaymentStatus  `json:"status"`
	RecordedBy      int32          `json:"recorded_by"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	ReviewedBy      *int32         `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// PaymentWithMember is a payment row joined with the paying member's contact info.
type PaymentWithMember struct {
	Payment
	MemberName  string `json:"member_name"`
	MemberEmail string `json:"member_email"`
}

type PaymentFilter struct {
	UserID int32
	Status PaymentStatus
	Search string
	Page   int32
	Limit  int32
}

type PaymentOrderStatus string

const (
	PaymentOrderStatusCreated PaymentOrderStatus = "CREATED"
	PaymentOrderStatusPaid    PaymentOrderStatus = "PAID"
)

// PaymentOrder is a gateway checkout session opened for a member.
type PaymentOrder struct {
	ID        int32              `json:"id"`
	OrderID   string             `json:"order_id"`
	UserID    int32              `json:"user_id"`
	Plan      MembershipType     `json:"plan"`
	Amount    int64              `json:"amount"`
	Currency  string             `json:"currency"`
	ReceiptID string             `json:"receipt_id"`
	Status    PaymentOrderStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	PaidAt    *time.Time         `json:"paid_at,omitempty"`
}

// MembershipStatusView is what a member sees about their own standing.
type MembershipStatusView struct {
	Membership     Membership `json:"membership"`
	Lapsed         bool       `json:"lapsed"`
	PendingRequest *Payment   `json:"pending_request"`
}
