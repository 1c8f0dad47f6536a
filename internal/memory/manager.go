package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aiox-platform/persona/internal/classify"
	"github.com/aiox-platform/persona/internal/convcontext"
	"github.com/aiox-platform/persona/internal/metrics"
	"github.com/aiox-platform/persona/internal/relationships"
)

// ErrInvalidTurn is returned by SaveTurn for turns that fail validation.
var ErrInvalidTurn = errors.New("invalid turn")

const (
	dayMillis        = int64(24 * time.Hour / time.Millisecond)
	defaultIntimacy  = 0.5
	defaultFormality = 0.5
	formalThreshold  = 0.6
)

// Manager is the conversation memory over a turn store. It keeps no state of
// its own, so every read observes every completed write.
type Manager struct {
	repo          Repository
	relationships relationships.Repository
	topics        classify.Classifier
	validate      *validator.Validate
	cfg           Config
	now           func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTopicClassifier replaces the keyword topic table.
func WithTopicClassifier(c classify.Classifier) ManagerOption {
	return func(m *Manager) { m.topics = c }
}

// WithClock overrides time.Now, for cutoffs and default timestamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager. Zero fields in cfg take their defaults.
func NewManager(repo Repository, rel relationships.Repository, cfg Config, opts ...ManagerOption) *Manager {
	m := &Manager{
		repo:          repo,
		relationships: rel,
		topics:        NewTopicClassifier(),
		validate:      validator.New(),
		cfg:           cfg.withDefaults(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SaveTurn appends one turn. A zero timestamp is set to now.
func (m *Manager) SaveTurn(ctx context.Context, userID, conversationID, targetPerson string, turn Turn, turnNumber int) error {
	if userID == "" || conversationID == "" {
		return fmt.Errorf("%w: user and conversation ids are required", ErrInvalidTurn)
	}
	if turnNumber < 1 {
		return fmt.Errorf("%w: turn number must be >= 1, got %d", ErrInvalidTurn, turnNumber)
	}
	if err := m.validate.Struct(turn); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTurn, err)
	}
	if turn.Timestamp == 0 {
		turn.Timestamp = m.now().UnixMilli()
	}

	st := &StoredTurn{
		UserID:         userID,
		ConversationID: conversationID,
		TargetPerson:   targetPerson,
		TurnNumber:     turnNumber,
		Turn:           turn,
	}
	if err := m.repo.Append(ctx, st); err != nil {
		return fmt.Errorf("saving turn: %w", err)
	}

	metrics.TurnsSavedTotal.WithLabelValues(string(turn.Role)).Inc()
	slog.Debug("turn saved",
		"user_id", userID,
		"conversation_id", conversationID,
		"turn_number", turnNumber,
		"role", turn.Role,
	)
	return nil
}

// ShortTermMemory returns the limit most recent turns of a conversation,
// oldest first. limit <= 0 means the configured short-term limit.
func (m *Manager) ShortTermMemory(ctx context.Context, conversationID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = m.cfg.ShortTermLimit
	}
	stored, err := m.repo.ListByConversation(ctx, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("reading short-term memory: %w", err)
	}
	if len(stored) > limit {
		stored = stored[:limit]
	}

	turns := make([]Turn, len(stored))
	for i, st := range stored {
		turns[len(stored)-1-i] = st.Turn
	}
	return turns, nil
}

// DetectCurrentTopic summarises the last turns of a conversation. It returns
// nil when there are too few turns to say anything.
func (m *Manager) DetectCurrentTopic(ctx context.Context, conversationID string) (*TopicMemory, error) {
	turns, err := m.ShortTermMemory(ctx, conversationID, m.cfg.TopicWindow)
	if err != nil {
		return nil, err
	}
	if len(turns) < m.cfg.TopicMinTurns {
		return nil, nil
	}

	contents := make([]string, len(turns))
	var participants []string
	tm := &TopicMemory{
		TurnCount: len(turns),
		StartTime: turns[0].Timestamp,
		EndTime:   turns[0].Timestamp,
	}
	for i, t := range turns {
		contents[i] = t.Content
		tm.StartTime = min(tm.StartTime, t.Timestamp)
		tm.EndTime = max(tm.EndTime, t.Timestamp)
		if t.ContextSnapshot == nil {
			continue
		}
		if p := t.ContextSnapshot.Social.TargetPerson; p != "" && !slices.Contains(participants, p) {
			participants = append(participants, p)
		}
	}

	tm.Topic = m.classifyTopic(strings.Join(contents, "\n"))
	tm.KeyPoints = extractKeyPoints(contents)
	tm.Participants = participants
	return tm, nil
}

func (m *Manager) classifyTopic(text string) string {
	label := m.topics.Classify(text).Label
	if label == "" {
		return TopicGeneral
	}
	return label
}

// LongTermPattern aggregates the user's history with targetPerson. It returns
// nil when the pair has never talked. The four reads are independent and
// not transactionally consistent with concurrent writes.
func (m *Manager) LongTermPattern(ctx context.Context, userID, targetPerson string) (*LongTermPattern, error) {
	total, err := m.repo.CountConversations(ctx, userID, targetPerson)
	if err != nil {
		return nil, fmt.Errorf("reading long-term pattern: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	var rel *relationships.Relationship
	if m.relationships != nil {
		rel, err = m.relationships.Get(ctx, userID, targetPerson)
		if err != nil {
			return nil, fmt.Errorf("reading long-term pattern: %w", err)
		}
	}

	contents, err := m.repo.RecentContents(ctx, userID, targetPerson, m.cfg.LongTermSamples)
	if err != nil {
		return nil, fmt.Errorf("reading long-term pattern: %w", err)
	}

	last, err := m.repo.LastInteraction(ctx, userID, targetPerson)
	if err != nil {
		return nil, fmt.Errorf("reading long-term pattern: %w", err)
	}

	p := &LongTermPattern{
		TargetPerson:       targetPerson,
		TotalConversations: total,
		AverageIntimacy:    rel.Intimacy(defaultIntimacy),
		CommonTopics:       commonTopics(m.topics, contents),
		LastInteraction:    last,
	}
	if rel.Formality(defaultFormality) > formalThreshold {
		p.CommunicationStyle = StyleFormal
	}
	return p, nil
}

// Snapshot composes the three memory tiers. The topic needs a conversation
// id and the long-term pattern needs a target person; either is skipped
// when its key is empty.
func (m *Manager) Snapshot(ctx context.Context, userID, conversationID, targetPerson string) (*Snapshot, error) {
	snap := &Snapshot{}
	if conversationID != "" {
		turns, err := m.ShortTermMemory(ctx, conversationID, 0)
		if err != nil {
			return nil, err
		}
		snap.ShortTerm = turns

		topic, err := m.DetectCurrentTopic(ctx, conversationID)
		if err != nil {
			return nil, err
		}
		snap.CurrentTopic = topic
	}
	if targetPerson != "" {
		lt, err := m.LongTermPattern(ctx, userID, targetPerson)
		if err != nil {
			return nil, err
		}
		snap.LongTerm = lt
	}
	return snap, nil
}

// CleanOldConversations deletes the user's turns older than daysToKeep days
// and returns how many were removed. daysToKeep <= 0 means the configured
// retention.
func (m *Manager) CleanOldConversations(ctx context.Context, userID string, daysToKeep int) (int64, error) {
	if daysToKeep <= 0 {
		daysToKeep = m.cfg.RetentionDays
	}
	cutoff := m.now().UnixMilli() - int64(daysToKeep)*dayMillis

	removed, err := m.repo.DeleteBefore(ctx, userID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning old conversations: %w", err)
	}

	metrics.TurnsCleanedTotal.Add(float64(removed))
	if removed > 0 {
		slog.Info("old conversations cleaned", "user_id", userID, "removed", removed, "days_to_keep", daysToKeep)
	}
	return removed, nil
}

// Users lists every user that has stored turns.
func (m *Manager) Users(ctx context.Context) ([]string, error) {
	users, err := m.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// RecentUserTurns implements convcontext.TurnHistory.
func (m *Manager) RecentUserTurns(ctx context.Context, userID string, limit int) ([]convcontext.HistoricalTurn, error) {
	stored, err := m.repo.ListUserTurns(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("reading user turns: %w", err)
	}
	out := make([]convcontext.HistoricalTurn, len(stored))
	for i, st := range stored {
		out[i] = convcontext.HistoricalTurn{
			Content:        st.Content,
			Timestamp:      st.Timestamp,
			TargetPerson:   st.TargetPerson,
			ConversationID: st.ConversationID,
			TurnNumber:     st.TurnNumber,
		}
	}
	return out, nil
}
