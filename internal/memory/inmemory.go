package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository is an in-process turn store for local/dev use and tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	turns []StoredTurn
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Append(_ context.Context, t *StoredTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	r.turns = append(r.turns, *t)
	return nil
}

func (r *InMemoryRepository) ListByConversation(_ context.Context, conversationID string, limit int) ([]StoredTurn, error) {
	out := r.filter(func(t StoredTurn) bool { return t.ConversationID == conversationID })
	slices.SortStableFunc(out, func(a, b StoredTurn) int { return cmp.Compare(b.TurnNumber, a.TurnNumber) })
	return truncate(out, limit), nil
}

func (r *InMemoryRepository) ListUserTurns(_ context.Context, userID string, limit int) ([]StoredTurn, error) {
	out := r.filter(func(t StoredTurn) bool { return t.UserID == userID && t.Role == RoleUser })
	sortNewestFirst(out)
	return truncate(out, limit), nil
}

func (r *InMemoryRepository) RecentContents(_ context.Context, userID, targetPerson string, limit int) ([]string, error) {
	out := r.filter(pairFilter(userID, targetPerson))
	sortNewestFirst(out)
	out = truncate(out, limit)

	contents := make([]string, len(out))
	for i, t := range out {
		contents[i] = t.Content
	}
	return contents, nil
}

func (r *InMemoryRepository) CountConversations(_ context.Context, userID, targetPerson string) (int, error) {
	seen := make(map[string]struct{})
	for _, t := range r.filter(pairFilter(userID, targetPerson)) {
		seen[t.ConversationID] = struct{}{}
	}
	return len(seen), nil
}

func (r *InMemoryRepository) LastInteraction(_ context.Context, userID, targetPerson string) (int64, error) {
	var last int64
	for _, t := range r.filter(pairFilter(userID, targetPerson)) {
		last = max(last, t.Timestamp)
	}
	return last, nil
}

func (r *InMemoryRepository) DeleteBefore(_ context.Context, userID string, cutoff int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.turns[:0]
	var removed int64
	for _, t := range r.turns {
		if t.UserID == userID && t.Timestamp < cutoff {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	r.turns = kept
	return removed, nil
}

func (r *InMemoryRepository) ListUsers(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var users []string
	for _, t := range r.turns {
		if !slices.Contains(users, t.UserID) {
			users = append(users, t.UserID)
		}
	}
	slices.Sort(users)
	return users, nil
}

func (r *InMemoryRepository) filter(keep func(StoredTurn) bool) []StoredTurn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []StoredTurn
	for _, t := range r.turns {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func pairFilter(userID, targetPerson string) func(StoredTurn) bool {
	return func(t StoredTurn) bool { return t.UserID == userID && t.TargetPerson == targetPerson }
}

func sortNewestFirst(turns []StoredTurn) {
	slices.SortStableFunc(turns, func(a, b StoredTurn) int { return cmp.Compare(b.Timestamp, a.Timestamp) })
}

func truncate(turns []StoredTurn, limit int) []StoredTurn {
	if limit > 0 && len(turns) > limit {
		return turns[:limit]
	}
	return turns
}
