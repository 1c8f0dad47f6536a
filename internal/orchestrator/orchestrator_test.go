package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiox-platform/persona/internal/convcontext"
	"github.com/aiox-platform/persona/internal/memory"
	inats "github.com/aiox-platform/persona/internal/nats"
	"github.com/aiox-platform/persona/internal/persona"
	"github.com/aiox-platform/persona/internal/relationships"
)

type relationshipMap map[string]*relationships.Relationship

func (m relationshipMap) Get(_ context.Context, userID, target string) (*relationships.Relationship, error) {
	return m[userID+"/"+target], nil
}

type failingRelationships struct{}

func (failingRelationships) Get(context.Context, string, string) (*relationships.Relationship, error) {
	return nil, errors.New("relationship store offline")
}

type profileMap map[string]*persona.Profile

func (m profileMap) Get(_ context.Context, userID string) (*persona.Profile, error) {
	return m[userID], nil
}

type recordingEvents struct {
	events []inats.TurnRecordedEvent
	err    error
}

func (r *recordingEvents) PublishTurnRecorded(_ context.Context, e inats.TurnRecordedEvent) error {
	r.events = append(r.events, e)
	return r.err
}

func ptr(v float64) *float64 { return &v }

var lateNight = time.Date(2024, time.March, 6, 1, 30, 0, 0, time.UTC)

type fixture struct {
	pipeline *Pipeline
	repo     *memory.InMemoryRepository
	events   *recordingEvents
}

func newFixture(rel relationships.Repository) *fixture {
	repo := memory.NewInMemoryRepository()
	mgr := memory.NewManager(repo, rel, memory.DefaultConfig(), memory.WithClock(func() time.Time { return lateNight }))
	detector := convcontext.NewDetector(rel, convcontext.WithLocation(time.UTC), convcontext.WithHistory(mgr))

	profile := &persona.Profile{UserID: "u1"}
	profile.Traits[persona.CoreIdentity] = persona.Traits{"name": "Ana"}
	profile.Traits[persona.EmotionalProfile] = persona.Traits{"empathyLevel": 0.5}
	selector := persona.NewSelector(profileMap{"u1": profile}, persona.DefaultConfig())

	events := &recordingEvents{}
	return &fixture{
		pipeline: NewPipeline(detector, mgr, selector, events),
		repo:     repo,
		events:   events,
	}
}

func meta(turn int) convcontext.Metadata {
	return convcontext.Metadata{
		Timestamp:      lateNight.Add(time.Duration(turn) * time.Minute).UnixMilli(),
		Sender:         "boss",
		ConversationID: "conv-1",
		TurnNumber:     turn,
	}
}

func TestPipeline_PrepareAndRecord(t *testing.T) {
	f := newFixture(relationshipMap{"u1/boss": {RelationshipType: "boss", IntimacyLevel: ptr(0.2)}})
	ctx := context.Background()

	message := "I'm really stressed about the deadline"
	prep, err := f.pipeline.Prepare(ctx, "u1", message, meta(1))
	require.NoError(t, err)

	assert.Equal(t, convcontext.LateNight, prep.Context.Temporal.TimeOfDay)
	assert.Equal(t, convcontext.SettingProfessional, prep.Context.Social.SocialSetting)
	assert.Equal(t, "u1", prep.Persona.OverallPersonaID)
	assert.Contains(t, prep.PersonaPrompt, "Persona: u1\n")
	assert.Empty(t, prep.Memory.ShortTerm)
	assert.Empty(t, prep.MemoryPrompt)

	turn := memory.Turn{Role: memory.RoleUser, Content: message}
	require.NoError(t, f.pipeline.Record(ctx, "u1", meta(1), turn, &prep.Context))

	stored, err := f.repo.ListByConversation(ctx, "conv-1", 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, meta(1).Timestamp, stored[0].Timestamp)
	assert.Equal(t, "boss", stored[0].TargetPerson)
	require.NotNil(t, stored[0].ContextSnapshot)
	assert.Equal(t, convcontext.SettingProfessional, stored[0].ContextSnapshot.Social.SocialSetting)

	require.Len(t, f.events.events, 1)
	ev := f.events.events[0]
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, "conv-1", ev.ConversationID)
	assert.Equal(t, "user", ev.Role)
	assert.Equal(t, "professional", ev.SocialSetting)
	assert.Equal(t, "late-night", ev.TimeOfDay)

	next, err := f.pipeline.Prepare(ctx, "u1", "any update?", meta(2))
	require.NoError(t, err)
	require.Len(t, next.Memory.ShortTerm, 1)
	assert.Contains(t, next.MemoryPrompt, "Recent conversation:\n- user: "+message+"\n")
	require.NotNil(t, next.Memory.LongTerm)
	assert.Equal(t, 1, next.Memory.LongTerm.TotalConversations)
}

func TestPipeline_PrepareProfileNotFound(t *testing.T) {
	f := newFixture(relationshipMap{})
	_, err := f.pipeline.Prepare(context.Background(), "stranger", "hello", convcontext.Metadata{})
	assert.ErrorIs(t, err, persona.ErrProfileNotFound)
}

func TestPipeline_PrepareDetectorError(t *testing.T) {
	f := newFixture(failingRelationships{})
	_, err := f.pipeline.Prepare(context.Background(), "u1", "hello", meta(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detecting context")
}

func TestPipeline_PrepareWithoutMetadata(t *testing.T) {
	f := newFixture(relationshipMap{})
	prep, err := f.pipeline.Prepare(context.Background(), "u1", "hello", convcontext.Metadata{})
	require.NoError(t, err)
	assert.Nil(t, prep.Context.Temporal)
	assert.Nil(t, prep.Memory.CurrentTopic)
	assert.Nil(t, prep.Memory.LongTerm)
}

func TestPipeline_RecordInvalidTurn(t *testing.T) {
	f := newFixture(relationshipMap{})
	err := f.pipeline.Record(context.Background(), "u1", meta(1), memory.Turn{Role: "narrator", Content: "x"}, nil)
	assert.ErrorIs(t, err, memory.ErrInvalidTurn)
	assert.Empty(t, f.events.events)
}

func TestPipeline_RecordSurvivesPublishFailure(t *testing.T) {
	f := newFixture(relationshipMap{})
	f.events.err = errors.New("nats unavailable")

	turn := memory.Turn{Role: memory.RoleAssistant, Content: "Get some rest."}
	require.NoError(t, f.pipeline.Record(context.Background(), "u1", meta(1), turn, nil))

	stored, err := f.repo.ListByConversation(context.Background(), "conv-1", 10)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	require.Len(t, f.events.events, 1)
	assert.Empty(t, f.events.events[0].Mood)
}

func TestPipeline_RecordWithoutPublisher(t *testing.T) {
	f := newFixture(relationshipMap{})
	f.pipeline.events = nil

	turn := memory.Turn{Role: memory.RoleUser, Content: "hi"}
	assert.NoError(t, f.pipeline.Record(context.Background(), "u1", meta(1), turn, nil))
}
