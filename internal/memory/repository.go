package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aiox-platform/persona/internal/convcontext"
)

// Repository is the turn store. Every list method returns newest first.
type Repository interface {
	Append(ctx context.Context, turn *StoredTurn) error
	// ListByConversation orders by turn_number descending.
	ListByConversation(ctx context.Context, conversationID string, limit int) ([]StoredTurn, error)
	// ListUserTurns returns user-role turns ordered by timestamp descending.
	ListUserTurns(ctx context.Context, userID string, limit int) ([]StoredTurn, error)
	// RecentContents returns turn contents for the pair, newest timestamp first.
	RecentContents(ctx context.Context, userID, targetPerson string, limit int) ([]string, error)
	CountConversations(ctx context.Context, userID, targetPerson string) (int, error)
	// LastInteraction returns the max timestamp for the pair, 0 if none.
	LastInteraction(ctx context.Context, userID, targetPerson string) (int64, error)
	// DeleteBefore removes the user's turns with timestamp < cutoff.
	DeleteBefore(ctx context.Context, userID string, cutoff int64) (int64, error)
	ListUsers(ctx context.Context) ([]string, error)
}

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new turn repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Append(ctx context.Context, t *StoredTurn) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	var snapshot []byte
	if t.ContextSnapshot != nil {
		b, err := json.Marshal(t.ContextSnapshot)
		if err != nil {
			return fmt.Errorf("marshaling context snapshot: %w", err)
		}
		snapshot = b
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO conversation_turns
		   (id, user_id, conversation_id, target_person, turn_number, role, content, context_snapshot, timestamp)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)`,
		t.ID, t.UserID, t.ConversationID, t.TargetPerson, t.TurnNumber, string(t.Role), t.Content, snapshot, t.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}
	return nil
}

const turnColumns = `id, user_id, conversation_id, COALESCE(target_person, ''), turn_number, role, content, context_snapshot, timestamp`

func (r *PostgresRepository) ListByConversation(ctx context.Context, conversationID string, limit int) ([]StoredTurn, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+turnColumns+`
		 FROM conversation_turns
		 WHERE conversation_id = $1
		 ORDER BY turn_number DESC
		 LIMIT $2`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing conversation turns: %w", err)
	}
	return collectTurns(rows)
}

func (r *PostgresRepository) ListUserTurns(ctx context.Context, userID string, limit int) ([]StoredTurn, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+turnColumns+`
		 FROM conversation_turns
		 WHERE user_id = $1 AND role = 'user'
		 ORDER BY timestamp DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing user turns: %w", err)
	}
	return collectTurns(rows)
}

func collectTurns(rows pgx.Rows) ([]StoredTurn, error) {
	defer rows.Close()

	var turns []StoredTurn
	for rows.Next() {
		var t StoredTurn
		var role string
		var snapshot []byte
		if err := rows.Scan(&t.ID, &t.UserID, &t.ConversationID, &t.TargetPerson, &t.TurnNumber,
			&role, &t.Content, &snapshot, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		t.Role = Role(role)
		if len(snapshot) > 0 {
			var cc convcontext.ConversationContext
			if err := json.Unmarshal(snapshot, &cc); err == nil {
				t.ContextSnapshot = &cc
			}
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (r *PostgresRepository) RecentContents(ctx context.Context, userID, targetPerson string, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT content
		 FROM conversation_turns
		 WHERE user_id = $1 AND target_person = $2
		 ORDER BY timestamp DESC
		 LIMIT $3`,
		userID, targetPerson, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing turn contents: %w", err)
	}
	contents, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning turn contents: %w", err)
	}
	return contents, nil
}

func (r *PostgresRepository) CountConversations(ctx context.Context, userID, targetPerson string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT conversation_id)
		 FROM conversation_turns
		 WHERE user_id = $1 AND target_person = $2`,
		userID, targetPerson,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting conversations: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) LastInteraction(ctx context.Context, userID, targetPerson string) (int64, error) {
	var last int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(timestamp), 0)
		 FROM conversation_turns
		 WHERE user_id = $1 AND target_person = $2`,
		userID, targetPerson,
	).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("querying last interaction: %w", err)
	}
	return last, nil
}

func (r *PostgresRepository) DeleteBefore(ctx context.Context, userID string, cutoff int64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM conversation_turns WHERE user_id = $1 AND timestamp < $2`,
		userID, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old turns: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT user_id FROM conversation_turns ORDER BY user_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users with turns: %w", err)
	}
	users, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning user ids: %w", err)
	}
	return users, nil
}
