package persona

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/aiox-platform/persona/internal/convcontext"
	"github.com/aiox-platform/persona/internal/metrics"
)

// Config sizes the profile cache.
type Config struct {
	CacheSize int
	CacheTTL  time.Duration
}

// DefaultConfig holds up to 256 profiles for an hour.
func DefaultConfig() Config {
	return Config{CacheSize: 256, CacheTTL: time.Hour}
}

// Selector blends a user's base profile with the current context into a
// SelectedPersona. The profile cache is its only mutable state.
type Selector struct {
	profiles Repository
	cache    *profileCache
	rules    []WeightRule
	nudges   []TraitNudge
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithWeightRules replaces DefaultWeightRules.
func WithWeightRules(rules []WeightRule) SelectorOption {
	return func(s *Selector) { s.rules = rules }
}

// WithTraitNudges replaces DefaultTraitNudges.
func WithTraitNudges(nudges []TraitNudge) SelectorOption {
	return func(s *Selector) { s.nudges = nudges }
}

// NewSelector creates a Selector. Non-positive cfg fields take defaults.
func NewSelector(profiles Repository, cfg Config, opts ...SelectorOption) *Selector {
	def := DefaultConfig()
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = def.CacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}

	s := &Selector{
		profiles: profiles,
		cache:    newProfileCache(cfg.CacheSize, cfg.CacheTTL),
		rules:    DefaultWeightRules,
		nudges:   DefaultTraitNudges,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectPersona computes the persona for userID in context c. It fails with
// ErrProfileNotFound when the user has no profile; store errors propagate.
func (s *Selector) SelectPersona(ctx context.Context, userID string, c convcontext.ConversationContext) (*SelectedPersona, error) {
	start := time.Now()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	weights := ApplyWeightRules(s.rules, c)
	sp := &SelectedPersona{
		OverallPersonaID:      profile.UserID,
		ContextualAdjustments: contextualAdjustments(c),
	}
	for _, l := range Layers {
		traits := maps.Clone(profile.Traits[l])
		if traits == nil {
			traits = Traits{}
		}
		applyNudges(s.nudges, l, traits, c)
		sp.Layers[l] = PersonaLayer{Name: l, Weight: weights[l], Traits: traits}
	}

	metrics.PersonaSelectionDuration.Observe(time.Since(start).Seconds())
	slog.Debug("persona selected",
		"user_id", userID,
		"conversation_id", c.ConversationID,
		"adjustments", len(sp.ContextualAdjustments),
	)
	return sp, nil
}

func (s *Selector) loadProfile(ctx context.Context, userID string) (*Profile, error) {
	if p, ok := s.cache.get(userID); ok {
		return p, nil
	}

	gen := s.cache.generation()
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading persona profile: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("user %s: %w", userID, ErrProfileNotFound)
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	s.cache.add(gen, p)
	return p, nil
}

// ClearCache drops every cached profile. In-flight selections finish with
// whichever profile they already loaded.
func (s *Selector) ClearCache() {
	s.cache.purge()
	slog.Info("persona cache cleared")
}

// Invalidate drops the cached profile of one user.
func (s *Selector) Invalidate(userID string) {
	s.cache.remove(userID)
	slog.Debug("persona cache entry invalidated", "user_id", userID)
}
