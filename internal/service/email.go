package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/logger"
)

const expiryDateLayout = "02 Jan 2006"

// mailClient is the part of the SendGrid client the service uses.
type mailClient interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type emailService struct {
	client    mailClient
	fromEmail string
	fromName  string
}

// NewEmailService sends through SendGrid. With an empty API key messages are
// only logged, which keeps local setups working without credentials.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	var client mailClient
	if apiKey != "" {
		client = sendgrid.NewSendClient(apiKey)
	}
	return newEmailService(client, fromEmail, fromName)
}

func newEmailService(client mailClient, fromEmail, fromName string) *emailService {
	return &emailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(ctx context.Context, to *domain.User, subject, body string) error {
	if s.client == nil {
		logger.InfoContext(ctx, "Email delivery disabled, dropping message", "to", to.Email, "subject", subject)
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(to.Name, to.Email)
	htmlBody := "<p>" + strings.ReplaceAll(html.EscapeString(body), "\n\n", "</p><p>") + "</p>"
	message := mail.NewSingleEmail(from, subject, recipient, body, htmlBody)

	logger.ExternalServiceCall("SendGrid", "Send", "to", to.Email, "subject", subject)
	response, err := s.client.Send(message)
	if err != nil {
		logger.ExternalServiceResult("SendGrid", "Send", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		err = fmt.Errorf("%w: sendgrid status %d: %s", domain.ErrUpstreamFailure, response.StatusCode, response.Body)
		logger.ExternalServiceResult("SendGrid", "Send", err)
		return err
	}
	logger.ExternalServiceResult("SendGrid", "Send", nil, "status", response.StatusCode)
	return nil
}

func (s *emailService) SendRegistrationDecision(ctx context.Context, user *domain.User, approved bool, reason string) error {
	if approved {
		body := fmt.Sprintf("Hello %s,\n\nYour membership application has been approved. You can now sign in to the member portal.", user.Name)
		return s.send(ctx, user, "Your membership application was approved", body+signature)
	}

	body := fmt.Sprintf("Hello %s,\n\nWe were unable to approve your membership application.", user.Name)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	return s.send(ctx, user, "Update on your membership application", body+signature)
}

func (s *emailService) SendPaymentReceipt(ctx context.Context, user *domain.User, payment *domain.Payment) error {
	body := fmt.Sprintf("Hello %s,\n\nWe received your payment of Rs. %d for %s membership (reference %s).%s",
		user.Name, payment.Amount, payment.MembershipType, payment.TransactionID, expiryLine(user))
	return s.send(ctx, user, "Payment receipt", body+signature)
}

func (s *emailService) SendPaymentApproved(ctx context.Context, user *domain.User, payment *domain.Payment) error {
	body := fmt.Sprintf("Hello %s,\n\nYour %s payment of Rs. %d submitted on %s has been verified.%s",
		user.Name, payment.PaymentMethod, payment.Amount, payment.PaymentDate.Format(expiryDateLayout), expiryLine(user))
	return s.send(ctx, user, "Your payment was approved", body+signature)
}

func (s *emailService) SendPaymentRejected(ctx context.Context, user *domain.User, payment *domain.Payment) error {
	body := fmt.Sprintf("Hello %s,\n\nWe could not verify your %s payment of Rs. %d (reference %s).\n\nReason: %s\n\nYou can submit a corrected payment from the portal.",
		user.Name, payment.PaymentMethod, payment.Amount, payment.TransactionID, payment.RejectionReason)
	return s.send(ctx, user, "Your payment could not be verified", body+signature)
}

func (s *emailService) SendExpiryReminder(ctx context.Context, user *domain.User) error {
	body := fmt.Sprintf("Hello %s,\n\nYour membership is about to lapse.%s\n\nRenew from the portal to keep your membership active.",
		user.Name, expiryLine(user))
	return s.send(ctx, user, "Your membership expires soon", body+signature)
}

func (s *emailService) SendLapseNotice(ctx context.Context, user *domain.User) error {
	body := fmt.Sprintf("Hello %s,\n\nYour membership has lapsed.%s\n\nYou can still sign in and renew online or submit an offline payment for review.",
		user.Name, lapsedLine(user))
	return s.send(ctx, user, "Your membership has lapsed", body+signature)
}

func (s *emailService) SendPendingPaymentDigest(ctx context.Context, admin *domain.User, pending int32) error {
	body := fmt.Sprintf("Hello %s,\n\n%d offline payment(s) have been waiting for review longer than expected.", admin.Name, pending)
	return s.send(ctx, admin, "Payments awaiting review", body+signature)
}

const signature = "\n\nRegards,\nMembership Team"

func lapsedLine(user *domain.User) string {
	if user.ExpiryDate == nil {
		return ""
	}
	return fmt.Sprintf(" It ended on %s.", user.ExpiryDate.Format(expiryDateLayout))
}

func expiryLine(user *domain.User) string {
	if user.ExpiryDate == nil {
		return ""
	}
	return fmt.Sprintf("\n\nYour membership is valid until %s.", user.ExpiryDate.Format(expiryDateLayout))
}
