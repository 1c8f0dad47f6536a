package convcontext

// ConversationContext is recomputed for every turn. Callers may store it on a
// turn as a snapshot, but it is never persisted on its own.
type ConversationContext struct {
	// Temporal is nil when the turn carried no timestamp.
	Temporal       *TemporalContext `json:"temporal,omitempty"`
	Spatial        SpatialContext   `json:"spatial"`
	Social         SocialContext    `json:"social"`
	Emotional      EmotionalContext `json:"emotional"`
	ConversationID string           `json:"conversation_id,omitempty"`
	TurnNumber     int              `json:"turn_number,omitempty"`
}

type TemporalContext struct {
	TimeOfDay     TimeOfDay `json:"time_of_day"`
	DayOfWeek     DayOfWeek `json:"day_of_week"`
	Season        Season    `json:"season"`
	IsSpecialDate bool      `json:"is_special_date"`
	SpecialDate   string    `json:"special_date,omitempty"`
}

type SpatialContext struct {
	Location     string       `json:"location,omitempty"`
	LocationType LocationType `json:"location_type"`
	Scene        string       `json:"scene,omitempty"`
}

type SocialContext struct {
	TargetPerson     string        `json:"target_person,omitempty"`
	RelationshipType string        `json:"relationship_type,omitempty"`
	IntimacyLevel    *float64      `json:"intimacy_level,omitempty"`
	GroupSize        GroupSize     `json:"group_size"`
	SocialSetting    SocialSetting `json:"social_setting"`
}

type EmotionalContext struct {
	DetectedMood     Mood     `json:"detected_mood"`
	MoodIntensity    float64  `json:"mood_intensity"`
	ConversationTone Tone     `json:"conversation_tone"`
	EmotionalWords   []string `json:"emotional_words,omitempty"`
}

// Metadata is what the caller knows about a turn besides its text. Every
// field is optional.
type Metadata struct {
	// Timestamp is epoch milliseconds; zero means absent.
	Timestamp      int64    `json:"timestamp,omitempty"`
	Location       string   `json:"location,omitempty"`
	Scene          string   `json:"scene,omitempty"`
	Sender         string   `json:"sender,omitempty"`
	Participants   []string `json:"participants,omitempty"`
	ConversationID string   `json:"conversation_id,omitempty"`
	TurnNumber     int      `json:"turn_number,omitempty"`
}

// TimeOfDayOrUnknown is safe to call on contexts without temporal data.
func (c ConversationContext) TimeOfDayOrUnknown() TimeOfDay {
	if c.Temporal == nil {
		return TimeOfDayUnknown
	}
	return c.Temporal.TimeOfDay
}

// Intimacy reports the intimacy level and whether one was known.
func (c ConversationContext) Intimacy() (float64, bool) {
	if c.Social.IntimacyLevel == nil {
		return 0, false
	}
	return *c.Social.IntimacyLevel, true
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
