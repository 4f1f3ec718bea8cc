package domain

import "time"

type ActivityType string

const (
	ActivityTypeWildlifeRescue ActivityType = "WILDLIFE_RESCUE"
	ActivityTypeTreePlantation ActivityType = "TREE_PLANTATION"
	ActivityTypeBloodDonation  ActivityType = "BLOOD_DONATION"
	ActivityTypeAwareness      ActivityType = "AWARENESS"
	ActivityTypeCleanup        ActivityType = "CLEANUP"
	ActivityTypeOther          ActivityType = "OTHER"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityTypeWildlifeRescue, ActivityTypeTreePlantation, ActivityTypeBloodDonation,
		ActivityTypeAwareness, ActivityTypeCleanup, ActivityTypeOther:
		return true
	}
	return false
}

type ActivityStatus string

const (
	ActivityStatusUpcoming  ActivityStatus = "UPCOMING"
	ActivityStatusOngoing   ActivityStatus = "ONGOING"
	ActivityStatusCompleted ActivityStatus = "COMPLETED"
	ActivityStatusCancelled ActivityStatus = "CANCELLED"
)

func (s ActivityStatus) Valid() bool {
	switch s {
	case ActivityStatusUpcoming, ActivityStatusOngoing, ActivityStatusCompleted, ActivityStatusCancelled:
		return true
	}
	return false
}

// Joinable reports whether members may still sign up.
func (s ActivityStatus) Joinable() bool {
	return s == ActivityStatusUpcoming || s == ActivityStatusOngoing
}

type Impact struct {
	AnimalsRescued      int32 `json:"animals_rescued"`
	TreesPlanted        int32 `json:"trees_planted"`
	BloodUnitsCollected int32 `json:"blood_units_collected"`
	PeopleReached       int32 `json:"people_reached"`
	WasteCollected      int32 `json:"waste_collected"`
}

type Activity struct {
	ID                  int32          `json:"id"`
	Title               string         `json:"title"`
	Description         string         `json:"description"`
	Type                ActivityType   `json:"type"`
	Date                time.Time      `json:"date"`
	Location            string         `json:"location"`
	MaxParticipants     *int32         `json:"max_participants,omitempty"`
	CurrentParticipants int32          `json:"current_participants"`
	Status              ActivityStatus `json:"status"`
	OrganizerID         int32          `json:"organizer_id"`
	ParticipantIDs      []int32        `json:"participant_ids"`
	Images              []string       `json:"images"`
	Impact              Impact         `json:"impact"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

type ActivityFilter struct {
	Status ActivityStatus
	Type   ActivityType
}
