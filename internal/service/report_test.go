package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/service"
)

func TestReportService_RevenueReport(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	mockPaymentRepo := new(MockPaymentRepo)
	svc := service.NewReportService(nil, mockPaymentRepo, nil, 3, service.WithClock(fixedClock(now)))

	monthStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mockPaymentRepo.On("RevenueByType", ctx).Return(map[domain.MembershipType]int64{
		domain.MembershipTypeAnnual: 1500,
		domain.MembershipTypeLife:   5000,
	}, nil).Once()
	mockPaymentRepo.On("CountCompletedBetween", ctx, monthStart, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)).Return(int32(2), nil).Once()
	mockPaymentRepo.On("CountCompletedByType", ctx, domain.MembershipTypeLife).Return(int32(1), nil).Once()
	mockPaymentRepo.On("MonthlyRevenueSince", ctx, since).Return([]domain.MonthlyRevenue{
		{Year: 2024, Month: 3, Total: 1000},
	}, nil).Once()

	report, err := svc.RevenueReport(ctx, adminActor)
	require.NoError(t, err)
	assert.Equal(t, int64(6500), report.TotalRevenue)
	assert.Equal(t, int32(2), report.PaymentsThisMonth)
	assert.Equal(t, int32(1), report.LifeMembers)
	require.Len(t, report.MonthlyRevenue, 3)
	assert.Equal(t, "Jan 2024", report.MonthlyRevenue[0].Label)
	assert.Equal(t, int64(0), report.MonthlyRevenue[1].Total)
	assert.Equal(t, int64(1000), report.MonthlyRevenue[2].Total)
	mockPaymentRepo.AssertExpectations(t)

	_, err = svc.RevenueReport(ctx, memberActor)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestReportService_ActivityReport(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	mockUserRepo := new(MockUserRepo)
	mockActivityRepo := new(MockActivityRepo)
	svc := service.NewReportService(mockUserRepo, nil, mockActivityRepo, 6, service.WithClock(fixedClock(now)))

	t.Run("DefaultsToAllTime", func(t *testing.T) {
		epoch := time.Unix(0, 0).UTC()
		mockUserRepo.On("CountByStatus", ctx, domain.MemberStatusActive).Return(int32(40), nil).Once()
		mockUserRepo.On("CountJoinedBetween", ctx, epoch, now).Return(int32(55), nil).Once()
		mockActivityRepo.On("CountBetween", ctx, epoch, now, domain.ActivityStatus("")).Return(int32(12), nil).Once()
		mockActivityRepo.On("CountBetween", ctx, epoch, now, domain.ActivityStatusCompleted).Return(int32(9), nil).Once()
		mockUserRepo.On("CountActiveByRole", ctx).Return(nil, nil).Once()
		mockActivityRepo.On("CountByTypeBetween", ctx, epoch, now).Return([]domain.NameCount{{Name: "CLEANUP", Value: 4}}, nil).Once()
		mockActivityRepo.On("ImpactBetween", ctx, epoch, now).Return(&domain.Impact{TreesPlanted: 300}, nil).Once()

		report, err := svc.ActivityReport(ctx, adminActor, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, int32(40), report.ActiveMembers)
		assert.Equal(t, int32(9), report.CompletedActivitiesInPeriod)
		assert.Equal(t, int32(300), report.Impact.TreesPlanted)
		assert.NotNil(t, report.MembersByRole)
		assert.Equal(t, []domain.NameCount{{Name: "CLEANUP", Value: 4}}, report.ActivitiesByType)
	})

	t.Run("InvertedRange", func(t *testing.T) {
		start := now
		end := now.AddDate(0, -1, 0)
		_, err := svc.ActivityReport(ctx, adminActor, &start, &end)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestReportService_Dashboard(t *testing.T) {
	ctx := context.Background()
	mockUserRepo := new(MockUserRepo)
	mockActivityRepo := new(MockActivityRepo)
	svc := service.NewReportService(mockUserRepo, nil, mockActivityRepo, 6)
	when := time.Date(2024, 4, 6, 7, 0, 0, 0, time.UTC)

	mockUserRepo.On("CountSummary", ctx).Return(&domain.MemberCounts{Total: 60, Active: 40, PendingApproval: 5}, nil)
	mockActivityRepo.On("Summary", ctx).Return(&domain.ActivityCounts{
		Upcoming: 3, Completed: 9, Impact: domain.Impact{TreesPlanted: 300, PeopleReached: 1200},
	}, nil)
	mockActivityRepo.On("ListRecent", ctx, 5).Return([]domain.Activity{
		{ID: 11, Title: "Lake cleanup", Date: when, CurrentParticipants: 14, Status: domain.ActivityStatusUpcoming},
	}, nil)

	t.Run("AdminSeesPendingApprovals", func(t *testing.T) {
		dashboard, err := svc.Dashboard(ctx, adminActor)
		require.NoError(t, err)
		assert.Equal(t, int32(60), dashboard.Stats.TotalMembers)
		assert.Equal(t, int32(40), dashboard.Stats.ActiveMembers)
		require.NotNil(t, dashboard.Stats.PendingApprovals)
		assert.Equal(t, int32(5), *dashboard.Stats.PendingApprovals)
		assert.Equal(t, int32(300), dashboard.Stats.TotalImpact.TreesPlanted)
		assert.Equal(t, []domain.RecentActivity{
			{ID: 11, Title: "Lake cleanup", Date: when, Participants: 14, Status: domain.ActivityStatusUpcoming},
		}, dashboard.RecentActivities)
	})

	t.Run("MemberDoesNot", func(t *testing.T) {
		dashboard, err := svc.Dashboard(ctx, memberActor)
		require.NoError(t, err)
		assert.Nil(t, dashboard.Stats.PendingApprovals)
		assert.Equal(t, int32(3), dashboard.Stats.UpcomingActivities)
		assert.Equal(t, int32(9), dashboard.Stats.CompletedActivities)
	})

	t.Run("Anonymous", func(t *testing.T) {
		_, err := svc.Dashboard(ctx, domain.Actor{})
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}
