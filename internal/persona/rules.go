package persona

import (
	"fmt"

	cc "github.com/aiox-platform/persona/internal/convcontext"
)

// Weights holds one weight per layer.
type Weights [numLayers]float64

// DefaultWeights is the starting point before any rule applies.
var DefaultWeights = Weights{
	CoreIdentity:        1.0,
	CognitiveStyle:      0.8,
	LinguisticSignature: 0.9,
	EmotionalProfile:    0.7,
	SocialDynamics:      0.85,
	TemporalContext:     0.6,
}

// WeightRule overwrites layer weights when its predicate holds. Rules are
// applied in slice order and later rules win for the same layer.
type WeightRule struct {
	Name string
	When func(cc.ConversationContext) bool
	Set  map[Layer]float64
}

// DefaultWeightRules is the standard rule order. Late night precedes the
// mood rules, so a distressed message at night still gets full emotional
// weight.
var DefaultWeightRules = []WeightRule{
	{
		Name: "professional",
		When: settingIs(cc.SettingProfessional),
		Set:  map[Layer]float64{CognitiveStyle: 1.0, EmotionalProfile: 0.5, SocialDynamics: 0.95},
	},
	{
		Name: "personal",
		When: settingIs(cc.SettingPersonal),
		Set:  map[Layer]float64{EmotionalProfile: 1.0, SocialDynamics: 0.7},
	},
	{
		Name: "high-intimacy",
		When: intimacyAbove(0.8),
		Set:  map[Layer]float64{LinguisticSignature: 1.0, EmotionalProfile: 1.0},
	},
	{
		Name: "low-intimacy",
		When: intimacyBelow(0.3),
		Set:  map[Layer]float64{CognitiveStyle: 0.9, SocialDynamics: 1.0},
	},
	{
		Name: "late-night",
		When: func(c cc.ConversationContext) bool { return c.TimeOfDayOrUnknown() == cc.LateNight },
		Set:  map[Layer]float64{EmotionalProfile: 0.85, CognitiveStyle: 0.7},
	},
	{
		Name: "distress",
		When: moodIn(cc.MoodSad, cc.MoodAnxious),
		Set:  map[Layer]float64{EmotionalProfile: 1.0},
	},
	{
		Name: "excited",
		When: moodIn(cc.MoodExcited),
		Set:  map[Layer]float64{LinguisticSignature: 1.0},
	},
}

// ApplyWeightRules starts from DefaultWeights and applies rules in order.
func ApplyWeightRules(rules []WeightRule, c cc.ConversationContext) Weights {
	w := DefaultWeights
	for _, r := range rules {
		if !r.When(c) {
			continue
		}
		for l, v := range r.Set {
			w[l] = clamp01(v)
		}
	}
	return w
}

// TraitNudge shifts one numeric trait of one layer when its predicate holds.
// Traits the profile does not define are left absent.
type TraitNudge struct {
	Layer Layer
	Trait string
	Delta float64
	When  func(cc.ConversationContext) bool
}

var DefaultTraitNudges = []TraitNudge{
	{Layer: LinguisticSignature, Trait: "emojiUsage", Delta: -0.3, When: settingIs(cc.SettingProfessional)},
	{Layer: LinguisticSignature, Trait: "slangUsage", Delta: -0.2, When: intimacyBelow(0.4)},
	{Layer: EmotionalProfile, Trait: "empathyLevel", Delta: 0.2, When: moodIn(cc.MoodSad)},
	{Layer: SocialDynamics, Trait: "dominanceLevel", Delta: -0.2, When: func(c cc.ConversationContext) bool {
		return c.Social.GroupSize == cc.LargeGroup
	}},
}

// applyNudges adjusts traits in place; traits must already be a copy.
func applyNudges(nudges []TraitNudge, l Layer, traits Traits, c cc.ConversationContext) {
	for _, n := range nudges {
		if n.Layer != l || !n.When(c) {
			continue
		}
		v, ok := traits[n.Trait].(float64)
		if !ok {
			continue
		}
		traits[n.Trait] = clamp01(v + n.Delta)
	}
}

// contextualAdjustments emits prompt directives block by block: setting,
// intimacy, mood, time of day, special date.
func contextualAdjustments(c cc.ConversationContext) []string {
	out := []string{}

	switch c.Social.SocialSetting {
	case cc.SettingProfessional:
		out = append(out, "Use professional, precise language.", "Avoid emojis, slang and personal digressions.")
	case cc.SettingPersonal:
		out = append(out, "Speak warmly and naturally, as with someone close.")
	case cc.SettingFormal:
		out = append(out, "Keep a polite and respectful register.")
	}

	if intimacy, ok := c.Intimacy(); ok {
		switch {
		case intimacy > 0.8:
			out = append(out, "Familiar nicknames and shared jokes are welcome.")
		case intimacy < 0.3:
			out = append(out, "Keep a respectful distance and do not overshare.")
		}
	}

	switch c.Emotional.DetectedMood {
	case cc.MoodSad:
		out = append(out, "Show empathy and offer comfort.")
	case cc.MoodAngry:
		out = append(out, "Stay calm and rational; do not escalate.")
	case cc.MoodExcited:
		out = append(out, "Match their enthusiasm.")
	case cc.MoodHappy:
		out = append(out, "Share in their good mood.")
	}

	switch c.TimeOfDayOrUnknown() {
	case cc.LateNight:
		out = append(out, "It is late at night; keep replies brief.", "Gently suggest getting some rest.")
	case cc.Morning:
		out = append(out, "A light morning greeting fits.")
	}

	if c.Temporal != nil && c.Temporal.IsSpecialDate {
		out = append(out, fmt.Sprintf("Today is %s; acknowledge it if natural.", c.Temporal.SpecialDate))
	}

	return out
}

func settingIs(s cc.SocialSetting) func(cc.ConversationContext) bool {
	return func(c cc.ConversationContext) bool { return c.Social.SocialSetting == s }
}

func moodIn(moods ...cc.Mood) func(cc.ConversationContext) bool {
	return func(c cc.ConversationContext) bool {
		for _, m := range moods {
			if c.Emotional.DetectedMood == m {
				return true
			}
		}
		return false
	}
}

func intimacyAbove(threshold float64) func(cc.ConversationContext) bool {
	return func(c cc.ConversationContext) bool {
		v, ok := c.Intimacy()
		return ok && v > threshold
	}
}

func intimacyBelow(threshold float64) func(cc.ConversationContext) bool {
	return func(c cc.ConversationContext) bool {
		v, ok := c.Intimacy()
		return ok && v < threshold
	}
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
