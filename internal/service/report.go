package service

import (
	"context"
	"fmt"
	"time"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/repository"
)

type reportService struct {
	userRepo     repository.UserRepository
	paymentRepo  repository.PaymentRepository
	activityRepo repository.ActivityRepository
	trendMonths  int
	opts         options
}

func NewReportService(
	userRepo repository.UserRepository,
	paymentRepo repository.PaymentRepository,
	activityRepo repository.ActivityRepository,
	trendMonths int,
	opts ...Option,
) ReportService {
	if trendMonths < 1 {
		trendMonths = 6
	}
	return &reportService{
		userRepo:     userRepo,
		paymentRepo:  paymentRepo,
		activityRepo: activityRepo,
		trendMonths:  trendMonths,
		opts:         buildOptions(opts),
	}
}

func (s *reportService) RevenueReport(ctx context.Context, actor domain.Actor) (*domain.RevenueReport, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	byType, err := s.paymentRepo.RevenueByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	report := &domain.RevenueReport{
		AnnualRevenue: byType[domain.MembershipTypeAnnual],
		LifeRevenue:   byType[domain.MembershipTypeLife],
	}
	for _, sum := range byType {
		report.TotalRevenue += sum
	}

	now := s.opts.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if report.PaymentsThisMonth, err = s.paymentRepo.CountCompletedBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0)); err != nil {
		return nil, fmt.Errorf("failed to count payments this month: %w", err)
	}
	if report.LifeMembers, err = s.paymentRepo.CountCompletedByType(ctx, domain.MembershipTypeLife); err != nil {
		return nil, fmt.Errorf("failed to count life members: %w", err)
	}

	since := monthStart.AddDate(0, -(s.trendMonths - 1), 0)
	rows, err := s.paymentRepo.MonthlyRevenueSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly revenue: %w", err)
	}
	report.MonthlyRevenue = fillMonths(since, s.trendMonths, rows)

	return report, nil
}

// fillMonths returns one bucket per calendar month starting at since,
// with months that had no payments reported as zero.
func fillMonths(since time.Time, months int, rows []domain.MonthlyRevenue) []domain.MonthlyRevenue {
	totals := make(map[[2]int]int64, len(rows))
	for _, r := range rows {
		totals[[2]int{r.Year, r.Month}] += r.Total
	}

	out := make([]domain.MonthlyRevenue, 0, months)
	for i := 0; i < months; i++ {
		m := since.AddDate(0, i, 0)
		out = append(out, domain.MonthlyRevenue{
			Year:  m.Year(),
			Month: int(m.Month()),
			Label: m.Format("Jan 2006"),
			Total: totals[[2]int{m.Year(), int(m.Month())}],
		})
	}
	return out
}

func (s *reportService) ActivityReport(ctx context.Context, actor domain.Actor, start, end *time.Time) (*domain.ActivityReport, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	rng := domain.DateRange{Start: time.Unix(0, 0).UTC(), End: s.opts.now()}
	if start != nil {
		rng.Start = *start
	}
	if end != nil {
		rng.End = *end
	}
	if rng.Start.After(rng.End) {
		return nil, domain.NewValidationError("startDate", "must not be after endDate")
	}

	report := &domain.ActivityReport{DateRange: rng}
	var err error

	if report.ActiveMembers, err = s.userRepo.CountByStatus(ctx, domain.MemberStatusActive); err != nil {
		return nil, fmt.Errorf("failed to count active members: %w", err)
	}
	if report.NewMembersInPeriod, err = s.userRepo.CountJoinedBetween(ctx, rng.Start, rng.End); err != nil {
		return nil, fmt.Errorf("failed to count new members: %w", err)
	}
	if report.TotalActivitiesInPeriod, err = s.activityRepo.CountBetween(ctx, rng.Start, rng.End, ""); err != nil {
		return nil, fmt.Errorf("failed to count activities: %w", err)
	}
	if report.CompletedActivitiesInPeriod, err = s.activityRepo.CountBetween(ctx, rng.Start, rng.End, domain.ActivityStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to count completed activities: %w", err)
	}
	if report.MembersByRole, err = s.userRepo.CountActiveByRole(ctx); err != nil {
		return nil, fmt.Errorf("failed to group members by role: %w", err)
	}
	if report.ActivitiesByType, err = s.activityRepo.CountByTypeBetween(ctx, rng.Start, rng.End); err != nil {
		return nil, fmt.Errorf("failed to group activities by type: %w", err)
	}

	impact, err := s.activityRepo.ImpactBetween(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("failed to sum impact: %w", err)
	}
	report.Impact = *impact

	if report.MembersByRole == nil {
		report.MembersByRole = []domain.NameCount{}
	}
	if report.ActivitiesByType == nil {
		report.ActivitiesByType = []domain.NameCount{}
	}
	return report, nil
}

const recentActivityCount = 5

// Dashboard is open to every member; the pending-approval count is only
// filled in for admins.
func (s *reportService) Dashboard(ctx context.Context, actor domain.Actor) (*domain.Dashboard, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}

	members, err := s.userRepo.CountSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	activities, err := s.activityRepo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize activities: %w", err)
	}
	recent, err := s.activityRepo.ListRecent(ctx, recentActivityCount)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent activities: %w", err)
	}

	dashboard := &domain.Dashboard{
		Stats: domain.DashboardStats{
			TotalMembers:        members.Total,
			ActiveMembers:       members.Active,
			UpcomingActivities:  activities.Upcoming,
			CompletedActivities: activities.Completed,
			TotalImpact:         activities.Impact,
		},
		RecentActivities: make([]domain.RecentActivity, 0, len(recent)),
	}
	if actor.Role.IsAdmin() {
		pending := members.PendingApproval
		dashboard.Stats.PendingApprovals = &pending
	}
	for _, a := range recent {
		dashboard.RecentActivities = append(dashboard.RecentActivities, domain.RecentActivity{
			ID:           a.ID,
			Title:        a.Title,
			Date:         a.Date,
			Participants: a.CurrentParticipants,
			Status:       a.Status,
		})
	}
	return dashboard, nil
}
