package http

import (
	"net/http"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/service"
)

// PaymentHandler exposes payment intake, the approval workflow, and the
// member's own membership view.
type PaymentHandler struct {
	paymentSvc  service.PaymentService
	approvalSvc service.ApprovalService
}

func NewPaymentHandler(paymentSvc service.PaymentService, approvalSvc service.ApprovalService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc, approvalSvc: approvalSvc}
}

type paymentResponse struct {
	Payment    *domain.Payment    `json:"payment"`
	Membership *domain.Membership `json:"membership,omitempty"`
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.paymentSvc.CreateOrder(r.Context(), ActorFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req service.VerifyPaymentInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	payment, membership, err := h.paymentSvc.VerifyOnlinePayment(r.Context(), ActorFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentResponse{Payment: payment, Membership: membership})
}

func (h *PaymentHandler) SubmitOfflinePayment(w http.ResponseWriter, r *http.Request) {
	var req service.OfflinePaymentInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	payment, err := h.paymentSvc.SubmitOfflinePayment(r.Context(), ActorFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentResponse{Payment: payment})
}

func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req service.RecordPaymentInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	payment, membership, err := h.paymentSvc.RecordPayment(r.Context(), ActorFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentResponse{Payment: payment, Membership: membership})
}

func (h *PaymentHandler) MembershipStatus(w http.ResponseWriter, r *http.Request) {
	view, err := h.paymentSvc.MembershipStatus(r.Context(), ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *PaymentHandler) MyPayments(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt32(r, "page")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt32(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	payments, pagination, err := h.paymentSvc.MyPayments(r.Context(), ActorFromContext(r.Context()), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paginated[domain.PaymentWithMember]{Data: payments, Pagination: pagination})
}

func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.PaymentFilter{
		Status: domain.PaymentStatus(q.Get("status")),
		Search: q.Get("search"),
	}
	var err error
	if filter.Page, err = queryInt32(r, "page"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.Limit, err = queryInt32(r, "limit"); err != nil {
		writeError(w, r, err)
		return
	}

	payments, pagination, err := h.paymentSvc.ListPayments(r.Context(), ActorFromContext(r.Context()), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paginated[domain.PaymentWithMember]{Data: payments, Pagination: pagination})
}

func (h *PaymentHandler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	payment, membership, err := h.approvalSvc.ApprovePayment(r.Context(), ActorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentResponse{Payment: payment, Membership: membership})
}

func (h *PaymentHandler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reasonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	payment, err := h.approvalSvc.RejectPayment(r.Context(), ActorFromContext(r.Context()), id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentResponse{Payment: payment})
}
