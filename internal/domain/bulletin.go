package domain

import "time"

type AnnouncementPriority string

const (
	AnnouncementPriorityLow    AnnouncementPriority = "LOW"
	AnnouncementPriorityNormal AnnouncementPriority = "NORMAL"
	AnnouncementPriorityHigh   AnnouncementPriority = "HIGH"
)

type Announcement struct {
	ID         int32                `json:"id"`
	Title      string               `json:"title"`
	Content    string               `json:"content"`
	Priority   AnnouncementPriority `json:"priority"`
	AuthorID   int32                `json:"author_id"`
	AuthorName string               `json:"author_name"`
	CreatedAt  time.Time            `json:"created_at"`
}

type AccessLevel string

const (
	AccessLevelPublic      AccessLevel = "PUBLIC"
	AccessLevelMembersOnly AccessLevel = "MEMBERS_ONLY"
	AccessLevelAdminOnly   AccessLevel = "ADMIN_ONLY"
)

func (a AccessLevel) Valid() bool {
	return a == AccessLevelPublic || a == AccessLevelMembersOnly || a == AccessLevelAdminOnly
}

// VisibleAccessLevels returns the resource access levels a caller may read.
// A nil actor is an anonymous visitor.
func VisibleAccessLevels(actor *Actor) []AccessLevel {
	switch {
	case actor == nil:
		return []AccessLevel{AccessLevelPublic}
	case actor.Role.IsAdmin():
		return []AccessLevel{AccessLevelPublic, AccessLevelMembersOnly, AccessLevelAdminOnly}
	default:
		return []AccessLevel{AccessLevelPublic, AccessLevelMembersOnly}
	}
}

type Resource struct {
	ID             int32       `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	URL            string      `json:"url"`
	Category       string      `json:"category"`
	AccessLevel    AccessLevel `json:"access_level"`
	UploadedBy     int32       `json:"uploaded_by"`
	UploadedByName string      `json:"uploaded_by_name"`
	CreatedAt      time.Time   `json:"created_at"`
}
