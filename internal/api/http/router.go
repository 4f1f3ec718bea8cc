package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"membership-portal-backend/internal/security"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Member   *MemberHandler
	Payment  *PaymentHandler
	Report   *ReportHandler
	Activity *ActivityHandler
	Bulletin *BulletinHandler
	Proof    *ProofHandler
}

// NewRouter builds the /api/v1 surface. Every route is named; the name keys
// the security table, the rate-limit policies, and the metric labels.
// limiter may be nil.
func NewRouter(h Handlers, tokens security.TokenManager, limiter *RateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	r.Use(Recover, RequestContext, Metrics, NewAuthMiddleware(tokens).Handler, limiter.Handler)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet).Name("Health")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Auth and profile
	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost).Name("Register")
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost).Name("Login")
	api.HandleFunc("/auth/me", h.Auth.Me).Methods(http.MethodGet).Name("Me")
	api.HandleFunc("/profile", h.Auth.UpdateProfile).Methods(http.MethodPut).Name("UpdateProfile")
	api.HandleFunc("/profile/change-password", h.Auth.ChangePassword).Methods(http.MethodPost).Name("ChangePassword")

	// Membership and payment intake
	api.HandleFunc("/membership/status", h.Payment.MembershipStatus).Methods(http.MethodGet).Name("MembershipStatus")
	api.HandleFunc("/membership/payments", h.Payment.MyPayments).Methods(http.MethodGet).Name("MyPayments")
	api.HandleFunc("/membership/offline-payments", h.Payment.SubmitOfflinePayment).Methods(http.MethodPost).Name("SubmitOfflinePayment")
	api.HandleFunc("/payments/orders", h.Payment.CreateOrder).Methods(http.MethodPost).Name("CreateOrder")
	api.HandleFunc("/payments/verify", h.Payment.VerifyPayment).Methods(http.MethodPost).Name("VerifyPayment")
	api.HandleFunc("/membership/payments/{id:[0-9]+}/proof", h.Proof.UploadProof).Methods(http.MethodPut).Name("UploadPaymentProof")
	api.HandleFunc("/payments/{id:[0-9]+}/proof", h.Proof.DownloadProof).Methods(http.MethodGet).Name("DownloadPaymentProof")

	// Dashboard
	api.HandleFunc("/dashboard", h.Report.Dashboard).Methods(http.MethodGet).Name("Dashboard")

	// Members
	api.HandleFunc("/members/{id:[0-9]+}", h.Member.GetMember).Methods(http.MethodGet).Name("GetMember")

	// Activities
	api.HandleFunc("/activities", h.Activity.ListActivities).Methods(http.MethodGet).Name("ListActivities")
	api.HandleFunc("/activities", h.Activity.CreateActivity).Methods(http.MethodPost).Name("CreateActivity")
	api.HandleFunc("/activities/{id:[0-9]+}", h.Activity.GetActivity).Methods(http.MethodGet).Name("GetActivity")
	api.HandleFunc("/activities/{id:[0-9]+}", h.Activity.UpdateActivity).Methods(http.MethodPatch).Name("UpdateActivity")
	api.HandleFunc("/activities/{id:[0-9]+}", h.Activity.DeleteActivity).Methods(http.MethodDelete).Name("DeleteActivity")
	api.HandleFunc("/activities/{id:[0-9]+}/join", h.Activity.JoinActivity).Methods(http.MethodPost).Name("JoinActivity")

	// Bulletin
	api.HandleFunc("/announcements", h.Bulletin.ListAnnouncements).Methods(http.MethodGet).Name("ListAnnouncements")
	api.HandleFunc("/resources", h.Bulletin.ListResources).Methods(http.MethodGet).Name("ListResources")

	// Admin
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/members", h.Member.ListMembers).Methods(http.MethodGet).Name("ListMembers")
	admin.HandleFunc("/members", h.Member.CreateMember).Methods(http.MethodPost).Name("CreateMember")
	admin.HandleFunc("/members/{id:[0-9]+}/approve", h.Member.ApproveRegistration).Methods(http.MethodPatch).Name("ApproveRegistration")
	admin.HandleFunc("/members/{id:[0-9]+}/reject", h.Member.RejectRegistration).Methods(http.MethodPatch).Name("RejectRegistration")
	admin.HandleFunc("/payments", h.Payment.ListPayments).Methods(http.MethodGet).Name("ListPayments")
	admin.HandleFunc("/payments", h.Payment.RecordPayment).Methods(http.MethodPost).Name("RecordPayment")
	admin.HandleFunc("/payments/{id:[0-9]+}/approve", h.Payment.ApprovePayment).Methods(http.MethodPatch).Name("ApprovePayment")
	admin.HandleFunc("/payments/{id:[0-9]+}/reject", h.Payment.RejectPayment).Methods(http.MethodPatch).Name("RejectPayment")
	admin.HandleFunc("/reports/revenue", h.Report.RevenueReport).Methods(http.MethodGet).Name("RevenueReport")
	admin.HandleFunc("/reports/activity", h.Report.ActivityReport).Methods(http.MethodGet).Name("ActivityReport")
	admin.HandleFunc("/announcements", h.Bulletin.CreateAnnouncement).Methods(http.MethodPost).Name("CreateAnnouncement")
	admin.HandleFunc("/resources", h.Bulletin.CreateResource).Methods(http.MethodPost).Name("CreateResource")

	return r
}
