package service

import (
	"net/mail"
	"net/url"
	"strings"
	"time"

	"membership-portal-backend/internal/domain"
)

const (
	dateLayout        = "2006-01-02"
	minPasswordLength = 6
	maxNotesLength    = 500
)

func parseDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, domain.NewValidationError(field, "is required")
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return domain.NewValidationError("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return domain.NewValidationError("email", "is not a valid address")
	}
	return nil
}

func validatePassword(field, password string) error {
	if len(password) < minPasswordLength {
		return domain.NewValidationError(field, "must be at least 6 characters")
	}
	return nil
}

func validateNotes(notes string) error {
	if len(notes) > maxNotesLength {
		return domain.NewValidationError("notes", "must be at most 500 characters")
	}
	return nil
}

// CreateOrderInput opens an online checkout for a plan.
type CreateOrderInput struct {
	PlanType domain.MembershipType `json:"planType"`
}

func (in CreateOrderInput) Validate() error {
	if !in.PlanType.Payable() {
		return domain.NewValidationError("planType", "must be ANNUAL or LIFE")
	}
	return nil
}

// VerifyPaymentInput is the gateway's success callback payload.
type VerifyPaymentInput struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

func (in VerifyPaymentInput) Validate() error {
	switch {
	case in.OrderID == "":
		return domain.NewValidationError("orderId", "is required")
	case in.PaymentID == "":
		return domain.NewValidationError("paymentId", "is required")
	case in.Signature == "":
		return domain.NewValidationError("signature", "is required")
	}
	return nil
}

// OfflinePaymentInput is a member's self-reported payment.
type OfflinePaymentInput struct {
	Amount        int64                `json:"amount"`
	PaymentDate   string               `json:"paymentDate"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	TransactionID string               `json:"transactionId"`
	Notes         string               `json:"notes,omitempty"`

	date time.Time
}

func (in *OfflinePaymentInput) Validate() error {
	if in.Amount <= 0 {
		return domain.NewValidationError("amount", "must be a positive number of rupees")
	}
	date, err := parseDate("paymentDate", in.PaymentDate)
	if err != nil {
		return err
	}
	in.date = date
	if !in.PaymentMethod.SelfReportable() {
		return domain.NewValidationError("paymentMethod", "must be one of CASH, UPI, BANK_TRANSFER")
	}
	in.TransactionID = strings.TrimSpace(in.TransactionID)
	if in.TransactionID == "" {
		return domain.NewValidationError("transactionId", "is required")
	}
	return validateNotes(in.Notes)
}

// RecordPaymentInput is a payment an admin received directly.
type RecordPaymentInput struct {
	MemberID       int32                 `json:"memberId"`
	Amount         int64                 `json:"amount"`
	MembershipType domain.MembershipType `json:"membershipType"`
	PaymentDate    string                `json:"paymentDate"`
	PaymentMethod  domain.PaymentMethod  `json:"paymentMethod"`
	TransactionID  string                `json:"transactionId,omitempty"`
	Notes          string                `json:"notes,omitempty"`

	date time.Time
}

func (in *RecordPaymentInput) Validate() error {
	if in.MemberID <= 0 {
		return domain.NewValidationError("memberId", "is required")
	}
	if in.Amount <= 0 {
		return domain.NewValidationError("amount", "must be a positive number of rupees")
	}
	if !in.MembershipType.Payable() {
		return domain.NewValidationError("membershipType", "must be ANNUAL or LIFE")
	}
	date, err := parseDate("paymentDate", in.PaymentDate)
	if err != nil {
		return err
	}
	in.date = date
	if !in.PaymentMethod.AdminRecordable() {
		return domain.NewValidationError("paymentMethod", "must be one of CASH, UPI, BANK_TRANSFER, OTHER")
	}
	return validateNotes(in.Notes)
}

// RegisterInput is a self-service membership application.
type RegisterInput struct {
	Name             string                  `json:"name"`
	Email            string                  `json:"email"`
	Password         string                  `json:"password"`
	Phone            string                  `json:"phone"`
	Address          string                  `json:"address"`
	DateOfBirth      string                  `json:"dateOfBirth,omitempty"`
	Occupation       string                  `json:"occupation,omitempty"`
	Skills           []string                `json:"skills,omitempty"`
	Interests        []string                `json:"interests,omitempty"`
	Experience       string                  `json:"experience,omitempty"`
	Motivation       string                  `json:"motivation,omitempty"`
	EmergencyContact domain.EmergencyContact `json:"emergencyContact"`

	dateOfBirth *time.Time
}

func (in *RegisterInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		return domain.NewValidationError("name", "is required")
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if err := validatePassword("password", in.Password); err != nil {
		return err
	}
	if strings.TrimSpace(in.Phone) == "" {
		return domain.NewValidationError("phone", "is required")
	}
	if in.DateOfBirth != "" {
		dob, err := parseDate("dateOfBirth", in.DateOfBirth)
		if err != nil {
			return err
		}
		in.dateOfBirth = &dob
	}
	return nil
}

func (in *RegisterInput) toUser() *domain.User {
	return &domain.User{
		Name:             in.Name,
		Email:            in.Email,
		Phone:            in.Phone,
		Address:          in.Address,
		DateOfBirth:      in.dateOfBirth,
		Occupation:       in.Occupation,
		Skills:           in.Skills,
		Interests:        in.Interests,
		Experience:       in.Experience,
		Motivation:       in.Motivation,
		EmergencyContact: in.EmergencyContact,
	}
}

// CreateMemberInput is an admin-created account, active immediately.
type CreateMemberInput struct {
	RegisterInput
	Role           domain.Role           `json:"role"`
	MembershipType domain.MembershipType `json:"membershipType"`
	AutoApprove    *bool                 `json:"autoApprove,omitempty"`
}

// autoApprove defaults to true: admin-created accounts skip the review queue
func (in *CreateMemberInput) autoApprove() bool {
	return in.AutoApprove == nil || *in.AutoApprove
}

func (in *CreateMemberInput) Validate() error {
	if err := in.RegisterInput.Validate(); err != nil {
		return err
	}
	if in.Role == "" {
		in.Role = domain.RoleMember
	}
	if !in.Role.Valid() {
		return domain.NewValidationError("role", "must be one of SUPER_ADMIN, ADMIN, MEMBER")
	}
	if in.MembershipType == "" {
		in.MembershipType = domain.MembershipTypeAnnual
	}
	if !in.MembershipType.Valid() {
		return domain.NewValidationError("membershipType", "must be one of ANNUAL, LIFE, HONORARY")
	}
	return nil
}

type ProfileInput struct {
	Name             string                  `json:"name"`
	Phone            string                  `json:"phone"`
	Address          string                  `json:"address"`
	ProfileImage     string                  `json:"profileImage,omitempty"`
	Occupation       string                  `json:"occupation,omitempty"`
	Skills           []string                `json:"skills,omitempty"`
	Interests        []string                `json:"interests,omitempty"`
	Bio              string                  `json:"bio,omitempty"`
	EmergencyContact domain.EmergencyContact `json:"emergencyContact"`
}

func (in *ProfileInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.NewValidationError("name", "is required")
	}
	if len(in.Bio) > maxNotesLength {
		return domain.NewValidationError("bio", "must be at most 500 characters")
	}
	return nil
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (in ChangePasswordInput) Validate() error {
	if in.CurrentPassword == "" {
		return domain.NewValidationError("currentPassword", "is required")
	}
	if err := validatePassword("newPassword", in.NewPassword); err != nil {
		return err
	}
	if in.CurrentPassword == in.NewPassword {
		return domain.NewValidationError("newPassword", "must differ from the current password")
	}
	return nil
}

type ActivityInput struct {
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Type            domain.ActivityType `json:"type"`
	Date            time.Time           `json:"date"`
	Location        string              `json:"location"`
	MaxParticipants *int32              `json:"maxParticipants,omitempty"`
	Images          []string            `json:"images,omitempty"`
}

func (in *ActivityInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	switch {
	case in.Title == "":
		return domain.NewValidationError("title", "is required")
	case strings.TrimSpace(in.Description) == "":
		return domain.NewValidationError("description", "is required")
	case !in.Type.Valid():
		return domain.NewValidationError("type", "is not a known activity type")
	case in.Date.IsZero():
		return domain.NewValidationError("date", "is required")
	case strings.TrimSpace(in.Location) == "":
		return domain.NewValidationError("location", "is required")
	case in.MaxParticipants != nil && *in.MaxParticipants < 1:
		return domain.NewValidationError("maxParticipants", "must be at least 1")
	}
	return nil
}

// ActivityUpdateInput changes an activity's lifecycle or records its outcome.
// Nil fields are left as they are.
type ActivityUpdateInput struct {
	Status *domain.ActivityStatus `json:"status,omitempty"`
	Impact *domain.Impact         `json:"impact,omitempty"`
	Images []string               `json:"images,omitempty"`
}

func (in ActivityUpdateInput) Validate() error {
	if in.Status == nil && in.Impact == nil && in.Images == nil {
		return domain.NewValidationError("", "nothing to update")
	}
	if in.Status != nil && !in.Status.Valid() {
		return domain.NewValidationError("status", "is not a known activity status")
	}
	if in.Impact != nil {
		i := in.Impact
		if i.AnimalsRescued < 0 || i.TreesPlanted < 0 || i.BloodUnitsCollected < 0 || i.PeopleReached < 0 || i.WasteCollected < 0 {
			return domain.NewValidationError("impact", "values cannot be negative")
		}
	}
	return nil
}

type AnnouncementInput struct {
	Title    string                      `json:"title"`
	Content  string                      `json:"content"`
	Priority domain.AnnouncementPriority `json:"priority,omitempty"`
}

func (in *AnnouncementInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.NewValidationError("title", "is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return domain.NewValidationError("content", "is required")
	}
	switch in.Priority {
	case "":
		in.Priority = domain.AnnouncementPriorityNormal
	case domain.AnnouncementPriorityLow, domain.AnnouncementPriorityNormal, domain.AnnouncementPriorityHigh:
	default:
		return domain.NewValidationError("priority", "must be one of LOW, NORMAL, HIGH")
	}
	return nil
}

type ResourceInput struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	URL         string             `json:"url"`
	Category    string             `json:"category,omitempty"`
	AccessLevel domain.AccessLevel `json:"accessLevel,omitempty"`
}

func (in *ResourceInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.NewValidationError("title", "is required")
	}
	u, err := url.Parse(in.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.NewValidationError("url", "must be an absolute http(s) URL")
	}
	if in.AccessLevel == "" {
		in.AccessLevel = domain.AccessLevelMembersOnly
	}
	if !in.AccessLevel.Valid() {
		return domain.NewValidationError("accessLevel", "must be one of PUBLIC, MEMBERS_ONLY, ADMIN_ONLY")
	}
	return nil
}
