package settings

// Persona is a named synthesis preset for the voice partner.
type Persona struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Pitch float64 `json:"pitch"`
	Rate  float64 `json:"rate"`
}

var personas = []Persona{
	{ID: "rp_plain", Label: "RP • Neutral", Pitch: 1.0, Rate: 1.0},
	{ID: "rp_formal", Label: "RP • Formal", Pitch: 0.95, Rate: 0.95},
	{ID: "estuary", Label: "Estuary • Modern", Pitch: 1.05, Rate: 1.02},
	{ID: "cockney_soft", Label: "Cockney • Soft", Pitch: 1.05, Rate: 1.05},
	{ID: "cockney_strong", Label: "Cockney • Strong", Pitch: 1.1, Rate: 1.02},
}

// Personas returns the available presets in display order.
func Personas() []Persona {
	out := make([]Persona, len(personas))
	copy(out, personas)
	return out
}

// LookupPersona returns the preset with id, or the first preset when id is
// unknown.
func LookupPersona(id string) Persona {
	for _, p := range personas {
		if p.ID == id {
			return p
		}
	}
	return personas[0]
}

func knownPersona(id string) bool {
	for _, p := range personas {
		if p.ID == id {
			return true
		}
	}
	return false
}
