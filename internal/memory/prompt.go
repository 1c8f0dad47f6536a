package memory

import (
	"fmt"
	"strings"
)

const (
	promptRecentTurns = 3
	promptKeyPoints   = 3
)

// PromptDescription renders a snapshot as prompt text. Empty tiers are
// omitted; a nil or empty snapshot renders as "".
func PromptDescription(s *Snapshot) string {
	if s == nil {
		return ""
	}

	var sections []string

	if len(s.ShortTerm) > 0 {
		var b strings.Builder
		b.WriteString("Recent conversation:\n")
		recent := s.ShortTerm[max(0, len(s.ShortTerm)-promptRecentTurns):]
		for _, t := range recent {
			fmt.Fprintf(&b, "- %s: %s\n", t.Role, strings.TrimSpace(t.Content))
		}
		sections = append(sections, b.String())
	}

	if tm := s.CurrentTopic; tm != nil {
		var b strings.Builder
		fmt.Fprintf(&b, "Current topic: %s (%d turns)\n", tm.Topic, tm.TurnCount)
		points := tm.KeyPoints[:min(len(tm.KeyPoints), promptKeyPoints)]
		if len(points) > 0 {
			b.WriteString("Key points:\n")
			for _, p := range points {
				fmt.Fprintf(&b, "- %s\n", p)
			}
		}
		sections = append(sections, b.String())
	}

	if lt := s.LongTerm; lt != nil {
		var b strings.Builder
		fmt.Fprintf(&b, "History with %s:\n", lt.TargetPerson)
		fmt.Fprintf(&b, "- conversations: %d\n", lt.TotalConversations)
		fmt.Fprintf(&b, "- intimacy: %.2f\n", lt.AverageIntimacy)
		fmt.Fprintf(&b, "- style: %s\n", lt.CommunicationStyle)
		if len(lt.CommonTopics) > 0 {
			fmt.Fprintf(&b, "- common topics: %s\n", strings.Join(lt.CommonTopics, ", "))
		}
		sections = append(sections, b.String())
	}

	return strings.Join(sections, "\n")
}
