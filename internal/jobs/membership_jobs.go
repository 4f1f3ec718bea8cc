package jobs

import (
	"context"
	"fmt"
	"time"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/logger"
	"membership-portal-backend/internal/metrics"
)

// SendLapseNotices emails members whose membership lapsed during the
// previous day. Lapse is derived from the expiry date; the member record is
// left alone so the member can still sign in and renew.
func (jr *JobRunner) SendLapseNotices() error {
	return jr.runWithRecovery("lapse-notices", func(ctx context.Context) error {
		to := jr.now().UTC().Truncate(24 * time.Hour)
		from := to.Add(-24 * time.Hour)

		lapsed, err := jr.users.ListExpiringBetween(ctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to list lapsed memberships: %w", err)
		}
		metrics.MembershipsLapsedTotal.Add(float64(len(lapsed)))

		sent := 0
		for i := range lapsed {
			member := &lapsed[i]
			logger.Audit(ctx, "membership.lapsed", 0, "userID", member.ID, "expiry", member.ExpiryDate)
			if err := jr.email.SendLapseNotice(ctx, member); err != nil {
				metrics.EmailFailuresTotal.WithLabelValues("lapse_notice").Inc()
				logger.WarnContext(ctx, "Failed to send lapse notice",
					"user_id", member.ID,
					"email", member.Email,
					"error", err)
				continue
			}
			sent++
		}

		logger.InfoContext(ctx, "Sent lapse notices", "lapsed", len(lapsed), "sent", sent)
		return nil
	})
}

// SendExpiryReminders emails members whose membership expires exactly
// ReminderWindowDays from today. Run daily, every member gets one reminder
// per term.
func (jr *JobRunner) SendExpiryReminders() error {
	return jr.runWithRecovery("expiry-reminders", func(ctx context.Context) error {
		window := time.Duration(jr.config.Membership.ReminderWindowDays) * 24 * time.Hour
		from := jr.now().UTC().Truncate(24 * time.Hour).Add(window)
		to := from.Add(24 * time.Hour)

		members, err := jr.users.ListExpiringBetween(ctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to list expiring memberships: %w", err)
		}

		sent := 0
		for i := range members {
			member := &members[i]
			if err := jr.email.SendExpiryReminder(ctx, member); err != nil {
				metrics.EmailFailuresTotal.WithLabelValues("expiry_reminder").Inc()
				logger.WarnContext(ctx, "Failed to send expiry reminder",
					"user_id", member.ID,
					"email", member.Email,
					"error", err)
				continue
			}
			sent++
		}

		logger.InfoContext(ctx, "Sent expiry reminders", "due", len(members), "sent", sent)
		return nil
	})
}

// SendPendingPaymentDigest tells every admin how many offline payments have
// waited for review longer than StalePendingHours.
func (jr *JobRunner) SendPendingPaymentDigest() error {
	return jr.runWithRecovery("pending-payment-digest", func(ctx context.Context) error {
		cutoff := jr.now().Add(-time.Duration(jr.config.Membership.StalePendingHours) * time.Hour)

		stale, err := jr.payments.CountPendingOlderThan(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to count stale pending payments: %w", err)
		}
		if stale == 0 {
			logger.InfoContext(ctx, "No stale pending payments")
			return nil
		}

		admins, err := jr.users.ListByRole(ctx, []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin})
		if err != nil {
			return fmt.Errorf("failed to list admins: %w", err)
		}

		for i := range admins {
			admin := &admins[i]
			if admin.Status != domain.MemberStatusActive {
				continue
			}
			if err := jr.email.SendPendingPaymentDigest(ctx, admin, stale); err != nil {
				metrics.EmailFailuresTotal.WithLabelValues("pending_payment_digest").Inc()
				logger.WarnContext(ctx, "Failed to send pending payment digest", "admin_id", admin.ID, "error", err)
			}
		}

		logger.InfoContext(ctx, "Sent pending payment digest", "stale", stale, "admins", len(admins))
		return nil
	})
}
