package relationships

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads relationship records. Get returns (nil, nil) when the pair
// has no record.
type Repository interface {
	Get(ctx context.Context, userID, targetPerson string) (*Relationship, error)
}

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new relationship repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Get(ctx context.Context, userID, targetPerson string) (*Relationship, error) {
	var rel Relationship
	var relType *string
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, target_person, relationship_type, intimacy_level, formality_score, updated_at
		 FROM relationships
		 WHERE user_id = $1 AND target_person = $2`,
		userID, targetPerson,
	).Scan(&rel.UserID, &rel.TargetPerson, &relType, &rel.IntimacyLevel, &rel.FormalityScore, &rel.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying relationship: %w", err)
	}
	if relType != nil {
		rel.RelationshipType = *relType
	}
	return &rel, nil
}
