//go:build integration

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiox-platform/persona/internal/convcontext"
	"github.com/aiox-platform/persona/internal/database/dbtest"
	"github.com/aiox-platform/persona/internal/relationships"
)

func TestPostgresRepository(t *testing.T) {
	pool := dbtest.NewPool(t)
	repo := NewPostgresRepository(pool)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	snap := &convcontext.ConversationContext{
		Social:    convcontext.SocialContext{TargetPerson: "bob", SocialSetting: convcontext.SettingPersonal},
		Emotional: convcontext.EmotionalContext{DetectedMood: convcontext.MoodHappy, MoodIntensity: 0.5},
	}

	turns := []*StoredTurn{
		{UserID: "alice", ConversationID: "c1", TargetPerson: "bob", TurnNumber: 1,
			Turn: Turn{Role: RoleUser, Content: "first", Timestamp: base, ContextSnapshot: snap}},
		{UserID: "alice", ConversationID: "c1", TargetPerson: "bob", TurnNumber: 2,
			Turn: Turn{Role: RoleAssistant, Content: "second", Timestamp: base + 1000}},
		{UserID: "alice", ConversationID: "c2", TargetPerson: "bob", TurnNumber: 1,
			Turn: Turn{Role: RoleUser, Content: "third", Timestamp: base + 2000}},
		{UserID: "alice", ConversationID: "c3", TurnNumber: 1,
			Turn: Turn{Role: RoleUser, Content: "no target", Timestamp: base - 10_000}},
		{UserID: "carol", ConversationID: "c4", TargetPerson: "bob", TurnNumber: 1,
			Turn: Turn{Role: RoleUser, Content: "other user", Timestamp: base}},
	}
	for _, tr := range turns {
		require.NoError(t, repo.Append(ctx, tr))
		assert.NotEmpty(t, tr.ID)
	}

	t.Run("list by conversation", func(t *testing.T) {
		got, err := repo.ListByConversation(ctx, "c1", 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 2, got[0].TurnNumber)
		assert.Equal(t, "first", got[1].Content)
		require.NotNil(t, got[1].ContextSnapshot)
		assert.Equal(t, convcontext.MoodHappy, got[1].ContextSnapshot.Emotional.DetectedMood)
		assert.Nil(t, got[0].ContextSnapshot)
	})

	t.Run("list user turns", func(t *testing.T) {
		got, err := repo.ListUserTurns(ctx, "alice", 10)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "third", got[0].Content)
		assert.Equal(t, "", got[2].TargetPerson)
	})

	t.Run("pair aggregates", func(t *testing.T) {
		n, err := repo.CountConversations(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		last, err := repo.LastInteraction(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.Equal(t, base+2000, last)

		none, err := repo.LastInteraction(ctx, "alice", "nobody")
		require.NoError(t, err)
		assert.Zero(t, none)

		contents, err := repo.RecentContents(ctx, "alice", "bob", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"third", "second"}, contents)
	})

	t.Run("users and retention", func(t *testing.T) {
		users, err := repo.ListUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "carol"}, users)

		removed, err := repo.DeleteBefore(ctx, "alice", base)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		left, err := repo.ListUserTurns(ctx, "alice", 10)
		require.NoError(t, err)
		assert.Len(t, left, 2)
	})
}

func TestManager_OnPostgres(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO relationships (user_id, target_person, relationship_type, intimacy_level, formality_score)
		 VALUES ('alice', 'boss', 'boss', 0.3, 0.9)`)
	require.NoError(t, err)

	m := NewManager(NewPostgresRepository(pool), relationships.NewPostgresRepository(pool), DefaultConfig(),
		WithClock(func() time.Time { return fixedNow }))

	msgs := []string{
		"The project deadline moved to Friday.",
		"Can you send the meeting notes?",
		"Sure, the report is in the shared folder.",
	}
	for i, content := range msgs {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		require.NoError(t, m.SaveTurn(ctx, "alice", "conv-1", "boss", Turn{Role: role, Content: content}, i+1))
	}

	snap, err := m.Snapshot(ctx, "alice", "conv-1", "boss")
	require.NoError(t, err)
	require.Len(t, snap.ShortTerm, 3)
	assert.Equal(t, msgs[0], snap.ShortTerm[0].Content)

	require.NotNil(t, snap.CurrentTopic)
	assert.Equal(t, "work", snap.CurrentTopic.Topic)

	require.NotNil(t, snap.LongTerm)
	assert.Equal(t, 1, snap.LongTerm.TotalConversations)
	assert.InDelta(t, 0.3, snap.LongTerm.AverageIntimacy, 1e-9)
	assert.Equal(t, StyleFormal, snap.LongTerm.CommunicationStyle)
}
