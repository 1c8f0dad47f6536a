package relationships

import "time"

// Relationship is the per-(user, contact) record kept by the relationship
// store. Nullable columns are pointers so absence is distinguishable from 0.
type Relationship struct {
	UserID           string    `json:"user_id"`
	TargetPerson     string    `json:"target_person"`
	RelationshipType string    `json:"relationship_type,omitempty"`
	IntimacyLevel    *float64  `json:"intimacy_level,omitempty"`
	FormalityScore   *float64  `json:"formality_score,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Intimacy returns the intimacy level, or fallback when unset.
func (r *Relationship) Intimacy(fallback float64) float64 {
	if r == nil || r.IntimacyLevel == nil {
		return fallback
	}
	return *r.IntimacyLevel
}

// Formality returns the formality score, or fallback when unset.
func (r *Relationship) Formality(fallback float64) float64 {
	if r == nil || r.FormalityScore == nil {
		return fallback
	}
	return *r.FormalityScore
}
