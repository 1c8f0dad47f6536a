package convcontext

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoHistory is returned by DetectHistoricalContexts on a Detector built
// without WithHistory.
var ErrNoHistory = errors.New("no turn history configured")

const defaultHistoryLimit = 100

// HistoricalTurn is the subset of a stored user turn that detection replays.
type HistoricalTurn struct {
	Content        string
	Timestamp      int64
	TargetPerson   string
	ConversationID string
	TurnNumber     int
}

// TurnHistory reads a user's most recent user-role turns, newest first.
type TurnHistory interface {
	RecentUserTurns(ctx context.Context, userID string, limit int) ([]HistoricalTurn, error)
}

// DetectHistoricalContexts replays DetectContext over the user's most recent
// stored turns. limit <= 0 means 100.
func (d *Detector) DetectHistoricalContexts(ctx context.Context, userID string, limit int) ([]ConversationContext, error) {
	if d.history == nil {
		return nil, ErrNoHistory
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	turns, err := d.history.RecentUserTurns(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("loading turn history: %w", err)
	}

	out := make([]ConversationContext, 0, len(turns))
	for _, t := range turns {
		cc, err := d.DetectContext(ctx, userID, t.Content, Metadata{
			Timestamp:      t.Timestamp,
			Sender:         t.TargetPerson,
			ConversationID: t.ConversationID,
			TurnNumber:     t.TurnNumber,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, nil
}

// Statistics summarises a batch of contexts.
type Statistics struct {
	Total               int       `json:"total"`
	MostCommonTimeOfDay TimeOfDay `json:"most_common_time_of_day"`
	MostCommonMood      Mood      `json:"most_common_mood"`
	ProfessionalCount   int       `json:"professional_count"`
	PersonalCount       int       `json:"personal_count"`
}

// ContextStatistics reduces contexts to their most common time of day and
// mood plus a professional/personal tally. Ties go to the value declared
// first; contexts without temporal data do not vote on time of day.
func ContextStatistics(contexts []ConversationContext) Statistics {
	stats := Statistics{Total: len(contexts)}

	times := make([]int, len(timeOfDayNames))
	moods := make([]int, len(moodNames))
	for _, c := range contexts {
		if c.Temporal != nil {
			times[c.Temporal.TimeOfDay]++
		}
		moods[c.Emotional.DetectedMood]++

		switch c.Social.SocialSetting {
		case SettingProfessional:
			stats.ProfessionalCount++
		case SettingPersonal:
			stats.PersonalCount++
		}
	}

	stats.MostCommonTimeOfDay = TimeOfDay(argmax(times))
	stats.MostCommonMood = Mood(argmax(moods))
	return stats
}

// argmax returns the first index holding the largest positive count, or 0.
func argmax(counts []int) int {
	best, bestCount := 0, 0
	for i, n := range counts {
		if n > bestCount {
			best, bestCount = i, n
		}
	}
	return best
}
