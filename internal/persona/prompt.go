package persona

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// PromptDescription renders a selected persona as prompt text: every layer in
// fixed order with its weight and sorted traits, then the adjustments.
func PromptDescription(p *SelectedPersona) string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Persona: %s\n", p.OverallPersonaID)
	for _, l := range Layers {
		layer := p.Layers[l]
		fmt.Fprintf(&b, "[%s] weight=%.2f\n", l, layer.Weight)
		for _, k := range slices.Sorted(maps.Keys(layer.Traits)) {
			fmt.Fprintf(&b, "  %s: %v\n", k, layer.Traits[k])
		}
	}
	if len(p.ContextualAdjustments) > 0 {
		b.WriteString("Adjustments:\n")
		for _, a := range p.ContextualAdjustments {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}
	return b.String()
}
