package director

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Persona is the fixed enumerated set of victim characters. Selection and
// switching work over this enum; everything persona-flavored (style lines,
// fallback replies) is catalogue data, not logic.
type Persona string

const (
	PersonaUncle     Persona = "uncle"
	PersonaWorried   Persona = "worried"
	PersonaAunty     Persona = "aunty"
	PersonaStudent   Persona = "student"
	PersonaTechSavvy Persona = "techsavvy"
)

// primaryPersona maps each scam category to the persona that plays it best.
var primaryPersona = map[ScamCategory]Persona{
	CategoryBankKYC:       PersonaUncle,
	CategoryUPIScam:       PersonaUncle,
	CategoryCreditCard:    PersonaWorried,
	CategoryInvestment:    PersonaTechSavvy,
	CategoryPoliceLegal:   PersonaWorried,
	CategoryTaxRefund:     PersonaWorried,
	CategoryGovtScheme:    PersonaUncle,
	CategoryJobOffer:      PersonaStudent,
	CategoryPrizeLottery:  PersonaAunty,
	CategoryBillPayment:   PersonaWorried,
	CategoryRomance:       PersonaAunty,
	CategoryDelivery:      PersonaWorried,
	CategoryUrgencyThreat: PersonaWorried,
	CategoryUnknown:       PersonaUncle,
}

// fallbackPersona is the one-hop switch graph used when conversation quality
// collapses. No entry maps to itself, so a switch always changes persona.
var fallbackPersona = map[Persona]Persona{
	PersonaUncle:     PersonaWorried,
	PersonaWorried:   PersonaUncle,
	PersonaAunty:     PersonaUncle,
	PersonaStudent:   PersonaWorried,
	PersonaTechSavvy: PersonaUncle,
}

// PrimaryPersona returns the table persona for a category, defaulting to
// uncle for anything unmapped.
func PrimaryPersona(cat ScamCategory) Persona {
	if p, ok := primaryPersona[cat]; ok {
		return p
	}
	return PersonaUncle
}

// FallbackPersona returns the one-hop fallback for a persona.
func FallbackPersona(p Persona) Persona {
	if f, ok := fallbackPersona[p]; ok {
		return f
	}
	return PersonaUncle
}

// Profile is the static catalogue entry for one persona.
type Profile struct {
	Display       string   `yaml:"display"`
	Style         string   `yaml:"style"`
	FallbackLines []string `yaml:"fallback_lines"`
}

//go:embed personas.yaml
var personaCatalogue []byte

var profiles map[Persona]Profile

func init() {
	var raw map[Persona]Profile
	if err := yaml.Unmarshal(personaCatalogue, &raw); err != nil {
		panic(fmt.Sprintf("director: bad persona catalogue: %v", err))
	}
	profiles = raw
}

// ProfileFor returns the catalogue entry for a persona. Every enum value has
// an entry; unknown values get the uncle profile.
func ProfileFor(p Persona) Profile {
	if prof, ok := profiles[p]; ok {
		return prof
	}
	return profiles[PersonaUncle]
}
