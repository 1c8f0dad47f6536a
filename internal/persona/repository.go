package persona

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aiox-platform/persona/internal/metrics"
)

// Repository reads base persona profiles. Get returns (nil, nil) when the
// user has no profile.
type Repository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
}

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new profile repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*Profile, error) {
	var raw [numLayers]*string
	err := r.pool.QueryRow(ctx,
		`SELECT core_identity_traits, cognitive_style_traits, linguistic_signature_traits,
		        emotional_profile_traits, social_dynamics_traits, temporal_context_traits
		 FROM persona_profiles
		 WHERE user_id = $1`,
		userID,
	).Scan(&raw[0], &raw[1], &raw[2], &raw[3], &raw[4], &raw[5])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying persona profile: %w", err)
	}

	p := &Profile{UserID: userID}
	for _, l := range Layers {
		var s string
		if raw[l] != nil {
			s = *raw[l]
		}
		p.Traits[l] = ParseTraits(userID, l, s)
	}
	return p, nil
}

// ParseTraits decodes a stored trait map. Blank input is an empty map.
// Anything that is not a JSON object is logged, counted and also treated as
// an empty map, so one corrupt layer never blocks persona selection.
func ParseTraits(userID string, layer Layer, raw string) Traits {
	if strings.TrimSpace(raw) == "" {
		return Traits{}
	}
	var t Traits
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		metrics.TraitParseFailuresTotal.WithLabelValues(layer.String()).Inc()
		slog.Warn("malformed persona traits, using empty map",
			"user_id", userID,
			"layer", layer,
			"error", err,
		)
		return Traits{}
	}
	if t == nil {
		return Traits{}
	}
	return t
}
