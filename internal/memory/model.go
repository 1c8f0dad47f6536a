package memory

import (
	"fmt"

	"github.com/aiox-platform/persona/internal/convcontext"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. Turns are immutable once written.
type Turn struct {
	Role            Role                             `json:"role" validate:"required,oneof=user assistant"`
	Content         string                           `json:"content" validate:"required"`
	Timestamp       int64                            `json:"timestamp" validate:"gte=0"`
	ContextSnapshot *convcontext.ConversationContext `json:"context_snapshot,omitempty"`
}

// StoredTurn is a row of the conversation_turns table.
type StoredTurn struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
	TargetPerson   string `json:"target_person,omitempty"`
	TurnNumber     int    `json:"turn_number"`
	Turn
}

// TopicMemory summarises the recent window of one conversation. It is
// recomputed on demand and never stored.
type TopicMemory struct {
	Topic        string   `json:"topic"`
	KeyPoints    []string `json:"key_points"`
	Participants []string `json:"participants"`
	StartTime    int64    `json:"start_time"`
	EndTime      int64    `json:"end_time"`
	TurnCount    int      `json:"turn_count"`
}

// CommunicationStyle is derived from the relationship formality score.
type CommunicationStyle uint8

const (
	StyleCasual CommunicationStyle = iota
	StyleFormal
)

func (s CommunicationStyle) String() string {
	if s == StyleFormal {
		return "formal"
	}
	return "casual"
}

func (s CommunicationStyle) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *CommunicationStyle) UnmarshalText(b []byte) error {
	switch string(b) {
	case "casual":
		*s = StyleCasual
	case "formal":
		*s = StyleFormal
	default:
		return fmt.Errorf("unknown communication style %q", b)
	}
	return nil
}

// LongTermPattern aggregates the user's history with one counterpart.
type LongTermPattern struct {
	TargetPerson       string             `json:"target_person"`
	TotalConversations int                `json:"total_conversations"`
	AverageIntimacy    float64            `json:"average_intimacy"`
	CommonTopics       []string           `json:"common_topics"`
	CommunicationStyle CommunicationStyle `json:"communication_style"`
	LastInteraction    int64              `json:"last_interaction"`
}

// Snapshot is the three memory tiers handed to prompt assembly.
type Snapshot struct {
	ShortTerm    []Turn           `json:"short_term"`
	CurrentTopic *TopicMemory     `json:"current_topic,omitempty"`
	LongTerm     *LongTermPattern `json:"long_term,omitempty"`
}
