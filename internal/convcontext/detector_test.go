package convcontext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiox-platform/persona/internal/classify"
	"github.com/aiox-platform/persona/internal/relationships"
)

type fakeRelationships struct {
	records map[string]*relationships.Relationship
	err     error
	calls   int
}

func (f *fakeRelationships) Get(_ context.Context, userID, targetPerson string) (*relationships.Relationship, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records[userID+"/"+targetPerson], nil
}

func ptr(v float64) *float64 { return &v }

// 2024-03-05 is a Tuesday.
func tuesdayAt(hour, minute int) int64 {
	return time.Date(2024, time.March, 5, hour, minute, 0, 0, time.UTC).UnixMilli()
}

func newTestDetector(rel relationships.Repository, opts ...Option) *Detector {
	return NewDetector(rel, append([]Option{WithLocation(time.UTC)}, opts...)...)
}

func TestDetectContext_TimeOfDayBoundaries(t *testing.T) {
	d := newTestDetector(nil)

	tests := []struct {
		hour int
		want TimeOfDay
	}{
		{0, LateNight},
		{4, LateNight},
		{5, Morning},
		{11, Morning},
		{12, Afternoon},
		{16, Afternoon},
		{17, Evening},
		{20, Evening},
		{21, Night},
		{23, Night},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			cc, err := d.DetectContext(context.Background(), "u1", "hello", Metadata{Timestamp: tuesdayAt(tt.hour, 0)})
			require.NoError(t, err)
			require.NotNil(t, cc.Temporal)
			assert.Equal(t, tt.want, cc.Temporal.TimeOfDay, "hour %d", tt.hour)
		})
	}
}

func TestDetectContext_DayOfWeekAndSeason(t *testing.T) {
	d := newTestDetector(nil)
	ctx := context.Background()

	sat := time.Date(2024, time.March, 9, 10, 0, 0, 0, time.UTC).UnixMilli()
	cc, err := d.DetectContext(ctx, "u1", "hi", Metadata{Timestamp: sat})
	require.NoError(t, err)
	assert.Equal(t, Weekend, cc.Temporal.DayOfWeek)
	assert.Equal(t, Spring, cc.Temporal.Season)

	cc, err = d.DetectContext(ctx, "u1", "hi", Metadata{Timestamp: tuesdayAt(10, 0)})
	require.NoError(t, err)
	assert.Equal(t, Weekday, cc.Temporal.DayOfWeek)

	seasons := map[time.Month]Season{
		time.January: Winter, time.February: Winter, time.March: Spring, time.May: Spring,
		time.June: Summer, time.August: Summer, time.September: Autumn, time.November: Autumn,
		time.December: Winter,
	}
	for month, want := range seasons {
		ts := time.Date(2023, month, 10, 12, 0, 0, 0, time.UTC).UnixMilli()
		cc, err := d.DetectContext(ctx, "u1", "hi", Metadata{Timestamp: ts})
		require.NoError(t, err)
		assert.Equal(t, want, cc.Temporal.Season, month.String())
	}
}

func TestDetectContext_SpecialDate(t *testing.T) {
	d := newTestDetector(nil)

	ts := time.Date(2024, time.February, 14, 19, 0, 0, 0, time.UTC).UnixMilli()
	cc, err := d.DetectContext(context.Background(), "u1", "hi", Metadata{Timestamp: ts})
	require.NoError(t, err)
	assert.True(t, cc.Temporal.IsSpecialDate)
	assert.Equal(t, "Valentine's Day", cc.Temporal.SpecialDate)

	cc, err = d.DetectContext(context.Background(), "u1", "hi", Metadata{Timestamp: tuesdayAt(19, 0)})
	require.NoError(t, err)
	assert.False(t, cc.Temporal.IsSpecialDate)
	assert.Empty(t, cc.Temporal.SpecialDate)
}

func TestDetectContext_UsesConfiguredLocation(t *testing.T) {
	d := NewDetector(nil, WithLocation(time.FixedZone("UTC+8", 8*3600)))

	// 23:30 UTC Tuesday is 07:30 Wednesday at UTC+8.
	cc, err := d.DetectContext(context.Background(), "u1", "hi", Metadata{Timestamp: tuesdayAt(23, 30)})
	require.NoError(t, err)
	assert.Equal(t, Morning, cc.Temporal.TimeOfDay)
}

func TestDetectContext_MissingMetadataDegrades(t *testing.T) {
	rel := &fakeRelationships{}
	d := newTestDetector(rel)

	cc, err := d.DetectContext(context.Background(), "u1", "ok see you", Metadata{})
	require.NoError(t, err)

	assert.Nil(t, cc.Temporal)
	assert.Equal(t, TimeOfDayUnknown, cc.TimeOfDayOrUnknown())
	assert.Equal(t, LocationUnknown, cc.Spatial.LocationType)
	assert.Empty(t, cc.Social.TargetPerson)
	assert.Nil(t, cc.Social.IntimacyLevel)
	assert.Equal(t, OneOnOne, cc.Social.GroupSize)
	assert.Equal(t, SettingInformal, cc.Social.SocialSetting)
	assert.Equal(t, MoodNeutral, cc.Emotional.DetectedMood)
	assert.Zero(t, cc.Emotional.MoodIntensity)
	assert.Equal(t, ToneLight, cc.Emotional.ConversationTone)
	assert.Zero(t, rel.calls, "no sender means no relationship read")
}

func TestDetectContext_LocationType(t *testing.T) {
	d := newTestDetector(nil)

	tests := []struct {
		location string
		want     LocationType
	}{
		{"Home office", LocationHome},
		{"Company HQ", LocationWork},
		{"Blue Bottle cafe", LocationPublic},
		{"Gate 12, Airport", LocationTravel},
		{"公司会议室", LocationWork},
		{"Mars base", LocationUnknown},
		{"   ", LocationUnknown},
	}
	for _, tt := range tests {
		cc, err := d.DetectContext(context.Background(), "u1", "hi", Metadata{Location: tt.location})
		require.NoError(t, err)
		assert.Equal(t, tt.want, cc.Spatial.LocationType, tt.location)
	}
}

func TestDetectContext_GroupSize(t *testing.T) {
	d := newTestDetector(nil)

	tests := []struct {
		n    int
		want GroupSize
	}{
		{0, OneOnOne},
		{2, OneOnOne},
		{3, SmallGroup},
		{5, SmallGroup},
		{6, LargeGroup},
	}
	for _, tt := range tests {
		cc, err := d.DetectContext(context.Background(), "u1", "hi", Metadata{Participants: make([]string, tt.n)})
		require.NoError(t, err)
		assert.Equal(t, tt.want, cc.Social.GroupSize, "%d participants", tt.n)
	}
}

func TestDetectContext_Social(t *testing.T) {
	rel := &fakeRelationships{records: map[string]*relationships.Relationship{
		"u1/boss":  {RelationshipType: "boss", IntimacyLevel: ptr(0.2)},
		"u1/mom":   {RelationshipType: "mother", IntimacyLevel: ptr(1.4)},
		"u1/neigh": {RelationshipType: "acquaintance"},
		"u1/pal":   {RelationshipType: "gym buddy", IntimacyLevel: ptr(-0.5)},
	}}
	d := newTestDetector(rel)
	ctx := context.Background()

	cc, err := d.DetectContext(ctx, "u1", "hi", Metadata{Sender: "boss"})
	require.NoError(t, err)
	assert.Equal(t, "boss", cc.Social.TargetPerson)
	assert.Equal(t, "boss", cc.Social.RelationshipType)
	assert.Equal(t, SettingProfessional, cc.Social.SocialSetting)
	intimacy, ok := cc.Intimacy()
	require.True(t, ok)
	assert.InDelta(t, 0.2, intimacy, 1e-9)

	cc, err = d.DetectContext(ctx, "u1", "hi", Metadata{Sender: "mom"})
	require.NoError(t, err)
	assert.Equal(t, SettingPersonal, cc.Social.SocialSetting)
	assert.Equal(t, 1.0, *cc.Social.IntimacyLevel, "intimacy is clamped")

	cc, err = d.DetectContext(ctx, "u1", "hi", Metadata{Sender: "neigh"})
	require.NoError(t, err)
	assert.Equal(t, SettingFormal, cc.Social.SocialSetting)
	assert.Nil(t, cc.Social.IntimacyLevel)

	cc, err = d.DetectContext(ctx, "u1", "hi", Metadata{Sender: "pal"})
	require.NoError(t, err)
	assert.Equal(t, SettingInformal, cc.Social.SocialSetting)
	assert.Equal(t, 0.0, *cc.Social.IntimacyLevel)

	cc, err = d.DetectContext(ctx, "u1", "hi", Metadata{Sender: "stranger-danger"})
	require.NoError(t, err)
	assert.Equal(t, "stranger-danger", cc.Social.TargetPerson)
	assert.Empty(t, cc.Social.RelationshipType)
	assert.Equal(t, SettingInformal, cc.Social.SocialSetting)
}

func TestDetectContext_RelationshipErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	d := newTestDetector(&fakeRelationships{err: storeErr})

	_, err := d.DetectContext(context.Background(), "u1", "hi", Metadata{Sender: "boss"})
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
}

func TestDetectContext_Emotion(t *testing.T) {
	d := newTestDetector(nil)

	tests := []struct {
		name      string
		message   string
		mood      Mood
		intensity float64
		tone      Tone
	}{
		{"three happy hits saturate", "I'm so happy, great, awesome!", MoodHappy, 1.0, ToneLight},
		{"sad is supportive", "I feel so sad and lonely", MoodSad, 2.0 / 3.0, ToneSupportive},
		{"question is serious", "Are you sad?", MoodSad, 1.0 / 3.0, ToneSerious},
		{"chinese question marker", "你还好吗", MoodNeutral, 0, ToneSerious},
		{"humor", "haha that joke again", MoodNeutral, 0, ToneHumorous},
		{"angry", "I hate this, so angry 😡", MoodAngry, 1.0, ToneLight},
		{"tie keeps earlier bucket", "happy but also sad", MoodHappy, 1.0 / 3.0, ToneLight},
		{"emoji only", "🎉", MoodExcited, 1.0 / 3.0, ToneLight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc, err := d.DetectContext(context.Background(), "u1", tt.message, Metadata{})
			require.NoError(t, err)
			assert.Equal(t, tt.mood, cc.Emotional.DetectedMood)
			assert.InDelta(t, tt.intensity, cc.Emotional.MoodIntensity, 1e-9)
			assert.Equal(t, tt.tone, cc.Emotional.ConversationTone)
		})
	}
}

func TestDetectContext_EmotionalWordsDeduped(t *testing.T) {
	d := newTestDetector(nil)

	cc, err := d.DetectContext(context.Background(), "u1", "Happy happy HAPPY, great", Metadata{})
	require.NoError(t, err)
	assert.Equal(t, []string{"happy", "great"}, cc.Emotional.EmotionalWords)
}

func TestDetectContext_IntensityMonotonic(t *testing.T) {
	d := newTestDetector(nil)
	messages := []string{"fine", "happy", "happy, great", "happy, great, awesome", "happy, great, awesome, wonderful"}

	prev := -1.0
	for _, m := range messages {
		cc, err := d.DetectContext(context.Background(), "u1", m, Metadata{})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, cc.Emotional.MoodIntensity, prev, m)
		assert.LessOrEqual(t, cc.Emotional.MoodIntensity, 1.0, m)
		prev = cc.Emotional.MoodIntensity
	}
}

func TestDetectContext_PluggableEmotionClassifier(t *testing.T) {
	d := newTestDetector(nil, WithEmotionClassifier(classify.Func(func(string) classify.Result {
		return classify.Result{Label: "excited", Confidence: 0.7, Hits: 1}
	})))

	cc, err := d.DetectContext(context.Background(), "u1", "anything", Metadata{})
	require.NoError(t, err)
	assert.Equal(t, MoodExcited, cc.Emotional.DetectedMood)
	assert.InDelta(t, 0.7, cc.Emotional.MoodIntensity, 1e-9)
}

func TestDetectContext_StressedAtWorkLateNight(t *testing.T) {
	rel := &fakeRelationships{records: map[string]*relationships.Relationship{
		"u1/boss": {RelationshipType: "boss", IntimacyLevel: ptr(0.2)},
	}}
	d := newTestDetector(rel)

	// 01:30 Wednesday, the late-night bucket following Tuesday evening.
	ts := time.Date(2024, time.March, 6, 1, 30, 0, 0, time.UTC).UnixMilli()
	cc, err := d.DetectContext(context.Background(), "u1",
		"I'm really stressed about the deadline, 担心",
		Metadata{Timestamp: ts, Sender: "boss", ConversationID: "c1", TurnNumber: 4},
	)
	require.NoError(t, err)

	assert.Equal(t, SettingProfessional, cc.Social.SocialSetting)
	assert.Equal(t, MoodAnxious, cc.Emotional.DetectedMood)
	assert.Equal(t, 1.0, cc.Emotional.MoodIntensity)
	assert.Equal(t, ToneSupportive, cc.Emotional.ConversationTone)
	assert.Equal(t, LateNight, cc.Temporal.TimeOfDay)
	assert.Equal(t, "c1", cc.ConversationID)
	assert.Equal(t, 4, cc.TurnNumber)
}

type fakeHistory struct {
	turns []HistoricalTurn
	limit int
}

func (f *fakeHistory) RecentUserTurns(_ context.Context, _ string, limit int) ([]HistoricalTurn, error) {
	f.limit = limit
	if limit < len(f.turns) {
		return f.turns[:limit], nil
	}
	return f.turns, nil
}

func TestDetectHistoricalContexts(t *testing.T) {
	h := &fakeHistory{turns: []HistoricalTurn{
		{Content: "so happy today", Timestamp: tuesdayAt(9, 0), ConversationID: "c1", TurnNumber: 3},
		{Content: "feeling sad", Timestamp: tuesdayAt(22, 0), ConversationID: "c1", TurnNumber: 1},
	}}
	d := newTestDetector(nil, WithHistory(h))

	got, err := d.DetectHistoricalContexts(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, 100, h.limit)
	require.Len(t, got, 2)
	assert.Equal(t, MoodHappy, got[0].Emotional.DetectedMood)
	assert.Equal(t, Morning, got[0].Temporal.TimeOfDay)
	assert.Equal(t, 3, got[0].TurnNumber)
	assert.Equal(t, MoodSad, got[1].Emotional.DetectedMood)
}

func TestDetectHistoricalContexts_NoHistory(t *testing.T) {
	d := newTestDetector(nil)

	_, err := d.DetectHistoricalContexts(context.Background(), "u1", 10)
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestContextStatistics(t *testing.T) {
	at := func(tod TimeOfDay) *TemporalContext { return &TemporalContext{TimeOfDay: tod} }
	contexts := []ConversationContext{
		{Temporal: at(Evening), Emotional: EmotionalContext{DetectedMood: MoodHappy}, Social: SocialContext{SocialSetting: SettingProfessional}},
		{Temporal: at(Evening), Emotional: EmotionalContext{DetectedMood: MoodSad}, Social: SocialContext{SocialSetting: SettingPersonal}},
		{Temporal: at(Morning), Emotional: EmotionalContext{DetectedMood: MoodSad}, Social: SocialContext{SocialSetting: SettingProfessional}},
		{Emotional: EmotionalContext{DetectedMood: MoodNeutral}},
	}

	stats := ContextStatistics(contexts)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, Evening, stats.MostCommonTimeOfDay)
	assert.Equal(t, MoodSad, stats.MostCommonMood)
	assert.Equal(t, 2, stats.ProfessionalCount)
	assert.Equal(t, 1, stats.PersonalCount)
}

func TestContextStatistics_Empty(t *testing.T) {
	stats := ContextStatistics(nil)
	assert.Equal(t, Statistics{MostCommonTimeOfDay: TimeOfDayUnknown, MostCommonMood: MoodNeutral}, stats)
}
