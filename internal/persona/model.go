package persona

import (
	"errors"
	"fmt"
)

// ErrProfileNotFound is returned when a user has no base persona profile.
var ErrProfileNotFound = errors.New("persona profile not found")

// Layer is one of the six fixed personality dimensions.
type Layer uint8

const (
	CoreIdentity Layer = iota
	CognitiveStyle
	LinguisticSignature
	EmotionalProfile
	SocialDynamics
	TemporalContext

	numLayers = int(TemporalContext) + 1
)

// Layers lists every layer in presentation order.
var Layers = [numLayers]Layer{
	CoreIdentity, CognitiveStyle, LinguisticSignature, EmotionalProfile, SocialDynamics, TemporalContext,
}

var layerNames = [numLayers]string{
	"coreIdentity", "cognitiveStyle", "linguisticSignature", "emotionalProfile", "socialDynamics", "temporalContext",
}

func (l Layer) String() string {
	if int(l) < numLayers {
		return layerNames[l]
	}
	return fmt.Sprintf("Layer(%d)", uint8(l))
}

func (l Layer) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Layer) UnmarshalText(b []byte) error {
	for i, n := range layerNames {
		if n == string(b) {
			*l = Layer(i)
			return nil
		}
	}
	return fmt.Errorf("unknown persona layer %q", b)
}

// Traits is an open key/value map. Numeric values are float64.
type Traits map[string]any

// Profile is a user's base persona. It is shared through the cache and must
// not be modified after loading.
type Profile struct {
	UserID string
	Traits [numLayers]Traits
}

// PersonaLayer is one weighted layer of a selected persona.
type PersonaLayer struct {
	Name   Layer   `json:"layer_name"`
	Weight float64 `json:"weight"`
	Traits Traits  `json:"traits"`
}

// SelectedPersona is recomputed for every turn and never stored.
type SelectedPersona struct {
	OverallPersonaID      string                  `json:"overall_persona_id"`
	Layers                [numLayers]PersonaLayer `json:"layers"`
	ContextualAdjustments []string                `json:"contextual_adjustments"`
}

// Layer returns the selected layer l.
func (p *SelectedPersona) Layer(l Layer) PersonaLayer {
	return p.Layers[l]
}
