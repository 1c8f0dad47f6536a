package nats

import "time"

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// StreamEvents holds every event this service publishes or consumes.
const StreamEvents = "PERSONA_EVENTS"

// Subject constants.
const (
	SubjectEvents             = "persona.events.>"
	SubjectTurnRecorded       = "persona.events.turn_recorded"
	SubjectProfileUpdated     = "persona.events.profile_updated"
	SubjectMaintenanceCleaned = "persona.events.maintenance_cleaned"
)

// TurnRecordedEvent is published after a turn is persisted with its context.
type TurnRecordedEvent struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ConversationID string    `json:"conversation_id"`
	TargetPerson   string    `json:"target_person,omitempty"`
	TurnNumber     int       `json:"turn_number"`
	Role           string    `json:"role"`
	Mood           string    `json:"mood,omitempty"`
	SocialSetting  string    `json:"social_setting,omitempty"`
	TimeOfDay      string    `json:"time_of_day,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// ProfileUpdatedEvent is published by whatever retrains or edits persona
// profiles. An empty UserID means every profile changed.
type ProfileUpdatedEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MaintenanceCleanedEvent summarises one retention pass.
type MaintenanceCleanedEvent struct {
	ID            string    `json:"id"`
	UsersScanned  int       `json:"users_scanned"`
	TurnsRemoved  int64     `json:"turns_removed"`
	RetentionDays int       `json:"retention_days"`
	Failures      int       `json:"failures"`
	Timestamp     time.Time `json:"timestamp"`
}
