package convcontext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aiox-platform/persona/internal/classify"
	"github.com/aiox-platform/persona/internal/metrics"
	"github.com/aiox-platform/persona/internal/relationships"
)

// Detector extracts a ConversationContext from a message and its metadata.
// Apart from the relationship lookup it holds no state and is safe for
// concurrent use.
type Detector struct {
	relationships relationships.Repository
	history       TurnHistory
	loc           *time.Location

	emotion  classify.Classifier
	humor    classify.Classifier
	location classify.Classifier
	setting  classify.Classifier
}

// Option configures a Detector.
type Option func(*Detector)

// WithLocation sets the timezone used for temporal buckets.
func WithLocation(loc *time.Location) Option {
	return func(d *Detector) {
		if loc != nil {
			d.loc = loc
		}
	}
}

// WithHistory enables DetectHistoricalContexts.
func WithHistory(h TurnHistory) Option {
	return func(d *Detector) { d.history = h }
}

// WithEmotionClassifier replaces the keyword emotion table.
func WithEmotionClassifier(c classify.Classifier) Option {
	return func(d *Detector) { d.emotion = c }
}

// WithLocationClassifier replaces the keyword location table.
func WithLocationClassifier(c classify.Classifier) Option {
	return func(d *Detector) { d.location = c }
}

// NewDetector creates a Detector. rel may be nil, in which case no
// relationship data is ever attached.
func NewDetector(rel relationships.Repository, opts ...Option) *Detector {
	d := &Detector{
		relationships: rel,
		loc:           time.Local,
		emotion:       NewEmotionClassifier(),
		humor:         NewHumorClassifier(),
		location:      NewLocationClassifier(),
		setting:       NewSettingClassifier(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectContext builds the context for one message sent to userID. Missing
// metadata degrades to defaults; only a relationship store failure is
// returned as an error.
func (d *Detector) DetectContext(ctx context.Context, userID, message string, meta Metadata) (ConversationContext, error) {
	start := time.Now()

	cc := ConversationContext{
		ConversationID: meta.ConversationID,
		TurnNumber:     meta.TurnNumber,
		Spatial:        d.detectSpatial(meta),
		Emotional:      d.detectEmotional(message),
	}
	if meta.Timestamp > 0 {
		cc.Temporal = temporalAt(time.UnixMilli(meta.Timestamp), d.loc)
	}

	social, err := d.detectSocial(ctx, userID, meta)
	if err != nil {
		return ConversationContext{}, err
	}
	cc.Social = social

	metrics.ContextDetectionDuration.Observe(time.Since(start).Seconds())
	metrics.ContextMoodsTotal.WithLabelValues(cc.Emotional.DetectedMood.String()).Inc()
	slog.Debug("context detected",
		"user_id", userID,
		"conversation_id", meta.ConversationID,
		"mood", cc.Emotional.DetectedMood,
		"setting", cc.Social.SocialSetting,
		"time_of_day", cc.TimeOfDayOrUnknown(),
	)
	return cc, nil
}

func (d *Detector) detectSpatial(meta Metadata) SpatialContext {
	sc := SpatialContext{
		Location: strings.TrimSpace(meta.Location),
		Scene:    strings.TrimSpace(meta.Scene),
	}
	if sc.Location == "" {
		return sc
	}
	var lt LocationType
	if err := lt.UnmarshalText([]byte(d.location.Classify(sc.Location).Label)); err == nil {
		sc.LocationType = lt
	}
	return sc
}

func (d *Detector) detectSocial(ctx context.Context, userID string, meta Metadata) (SocialContext, error) {
	sc := SocialContext{
		TargetPerson: strings.TrimSpace(meta.Sender),
		GroupSize:    groupSizeFor(len(meta.Participants)),
	}
	if sc.TargetPerson == "" || d.relationships == nil {
		return sc, nil
	}

	rel, err := d.relationships.Get(ctx, userID, sc.TargetPerson)
	if err != nil {
		return SocialContext{}, fmt.Errorf("looking up relationship: %w", err)
	}
	if rel == nil {
		return sc, nil
	}

	sc.RelationshipType = rel.RelationshipType
	if rel.IntimacyLevel != nil {
		v := clamp01(*rel.IntimacyLevel)
		sc.IntimacyLevel = &v
	}
	if sc.RelationshipType != "" {
		var s SocialSetting
		if err := s.UnmarshalText([]byte(d.setting.Classify(sc.RelationshipType).Label)); err == nil {
			sc.SocialSetting = s
		}
	}
	return sc, nil
}

func groupSizeFor(participants int) GroupSize {
	switch {
	case participants > 5:
		return LargeGroup
	case participants >= 3:
		return SmallGroup
	default:
		return OneOnOne
	}
}

func (d *Detector) detectEmotional(message string) EmotionalContext {
	res := d.emotion.Classify(message)
	ec := EmotionalContext{
		DetectedMood:   ParseMood(res.Label),
		MoodIntensity:  clamp01(res.Confidence),
		EmotionalWords: res.Matched,
	}
	ec.ConversationTone = d.toneFor(message, ec.DetectedMood)
	return ec
}

// toneFor applies the fixed chain: question, humor, distress, light.
func (d *Detector) toneFor(message string, mood Mood) Tone {
	for _, m := range interrogativeMarkers {
		if strings.Contains(message, m) {
			return ToneSerious
		}
	}
	if d.humor.Classify(message).Hits > 0 {
		return ToneHumorous
	}
	if mood == MoodSad || mood == MoodAnxious {
		return ToneSupportive
	}
	return ToneLight
}
