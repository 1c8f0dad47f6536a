package relationships

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelationship_Fallbacks(t *testing.T) {
	var nilRel *Relationship
	assert.Equal(t, 0.5, nilRel.Intimacy(0.5))
	assert.Equal(t, 0.5, nilRel.Formality(0.5))

	rel := &Relationship{}
	assert.Equal(t, 0.5, rel.Intimacy(0.5))

	intimacy, formality := 0.9, 0.1
	rel = &Relationship{IntimacyLevel: &intimacy, FormalityScore: &formality}
	assert.Equal(t, 0.9, rel.Intimacy(0.5))
	assert.Equal(t, 0.1, rel.Formality(0.5))
}
