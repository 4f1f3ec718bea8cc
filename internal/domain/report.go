package domain

import "time"

// RevenueReport aggregates COMPLETED payments only.
type RevenueReport struct {
	TotalRevenue      int64            `json:"total_revenue"`
	AnnualRevenue     int64            `json:"annual_revenue"`
	LifeRevenue       int64            `json:"life_revenue"`
	PaymentsThisMonth int32            `json:"payments_this_month"`
	LifeMembers       int32            `json:"life_members"`
	MonthlyRevenue    []MonthlyRevenue `json:"monthly_revenue"`
}

type MonthlyRevenue struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
	Total int64  `json:"total"`
}

type NameCount struct {
	Name  string `json:"name"`
	Value int32  `json:"value"`
}

type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

type ActivityReport struct {
	ActiveMembers               int32       `json:"active_members"`
	NewMembersInPeriod          int32       `json:"new_members_in_period"`
	TotalActivitiesInPeriod     int32       `json:"total_activities_in_period"`
	CompletedActivitiesInPeriod int32       `json:"completed_activities_in_period"`
	MembersByRole               []NameCount `json:"members_by_role"`
	ActivitiesByType            []NameCount `json:"activities_by_type"`
	Impact                      Impact      `json:"impact"`
	DateRange                   DateRange   `json:"date_range"`
}

// Dashboard is the landing summary every signed-in member sees.
type Dashboard struct {
	Stats            DashboardStats   `json:"stats"`
	RecentActivities []RecentActivity `json:"recent_activities"`
}

type DashboardStats struct {
	TotalMembers        int32  `json:"total_members"`
	ActiveMembers       int32  `json:"active_members"`
	PendingApprovals    *int32 `json:"pending_approvals,omitempty"` // admins only
	UpcomingActivities  int32  `json:"upcoming_activities"`
	CompletedActivities int32  `json:"completed_activities"`
	TotalImpact         Impact `json:"total_impact"`
}

type RecentActivity struct {
	ID           int32          `json:"id"`
	Title        string         `json:"title"`
	Date         time.Time      `json:"date"`
	Participants int32          `json:"participants"`
	Status       ActivityStatus `json:"status"`
}

type MemberCounts struct {
	Total           int32
	Active          int32
	PendingApproval int32
}

type ActivityCounts struct {
	Upcoming  int32
	Completed int32
	Impact    Impact
}

// Pagination mirrors the list envelope returned by paginated endpoints.
type Pagination struct {
	Page  int32 `json:"page"`
	Limit int32 `json:"limit"`
	Total int32 `json:"total"`
	Pages int32 `json:"pages"`
}

func NewPagination(page, limit, total int32) Pagination {
	pages := int32(0)
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
