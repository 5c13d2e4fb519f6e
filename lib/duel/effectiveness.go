package duel

import "fmt"

// Effectiveness multipliers, collapsed to the three tiers the chart uses.
// Pairs absent from the table are neutral and are not stored.
const (
	SuperEffective   = 1.6
	NotVeryEffective = 0.625
	NoEffect         = 0.391
	Neutral          = 1.0
)

// effectiveness maps attacking category -> defending category -> multiplier.
var effectiveness = map[string]map[string]float64{
	"normal":   {"rock": NotVeryEffective, "ghost": NoEffect, "steel": NotVeryEffective},
	"fire":     {"fire": NotVeryEffective, "water": NotVeryEffective, "grass": SuperEffective, "ice": SuperEffective, "bug": SuperEffective, "rock": NotVeryEffective, "dragon": NotVeryEffective, "steel": SuperEffective, "fairy": NotVeryEffective},
	"water":    {"fire": SuperEffective, "water": NotVeryEffective, "grass": NotVeryEffective, "ground": SuperEffective, "rock": SuperEffective, "dragon": NotVeryEffective},
	"electric": {"water": SuperEffective, "electric": NotVeryEffective, "grass": NotVeryEffective, "ground": NoEffect, "flying": SuperEffective, "dragon": NotVeryEffective},
	"grass":    {"fire": NotVeryEffective, "water": SuperEffective, "grass": NotVeryEffective, "poison": NotVeryEffective, "ground": SuperEffective, "flying": NotVeryEffective, "bug": NotVeryEffective, "rock": SuperEffective, "dragon": NotVeryEffective, "steel": NotVeryEffective},
	"ice":      {"fire": NotVeryEffective, "water": NotVeryEffective, "grass": SuperEffective, "ice": NotVeryEffective, "ground": SuperEffective, "flying": SuperEffective, "dragon": SuperEffective, "steel": NotVeryEffective},
	"fighting": {"normal": SuperEffective, "ice": SuperEffective, "flying": NotVeryEffective, "psychic": NotVeryEffective, "bug": NotVeryEffective, "rock": SuperEffective, "dark": SuperEffective, "steel": SuperEffective, "fairy": NotVeryEffective},
	"poison":   {"grass": SuperEffective, "poison": NotVeryEffective, "ground": NotVeryEffective, "rock": NotVeryEffective, "ghost": NotVeryEffective, "steel": NoEffect, "fairy": SuperEffective, "bug": SuperEffective},
	"ground":   {"fire": SuperEffective, "electric": SuperEffective, "grass": NotVeryEffective, "poison": SuperEffective, "flying": NoEffect, "bug": NotVeryEffective, "rock": SuperEffective, "steel": SuperEffective, "ground": NotVeryEffective},
	"flying":   {"electric": NotVeryEffective, "grass": SuperEffective, "fighting": SuperEffective, "bug": SuperEffective, "rock": NotVeryEffective, "steel": NotVeryEffective, "flying": NotVeryEffective},
	"psychic":  {"fighting": SuperEffective, "poison": SuperEffective, "psychic": NotVeryEffective, "dark": NoEffect, "steel": NotVeryEffective},
	"bug":      {"fire": NotVeryEffective, "grass": SuperEffective, "fighting": NotVeryEffective, "poison": NotVeryEffective, "flying": NotVeryEffective, "psychic": SuperEffective, "ghost": NotVeryEffective, "dark": SuperEffective, "steel": NotVeryEffective, "fairy": NotVeryEffective, "bug": NotVeryEffective},
	"rock":     {"fire": SuperEffective, "ice": SuperEffective, "fighting": NotVeryEffective, "ground": NotVeryEffective, "flying": SuperEffective, "bug": SuperEffective, "steel": NotVeryEffective, "rock": NotVeryEffective},
	"ghost":    {"normal": NoEffect, "psychic": SuperEffective, "ghost": SuperEffective, "dark": NotVeryEffective},
	"dragon":   {"dragon": SuperEffective, "steel": NotVeryEffective, "fairy": NoEffect},
	"dark":     {"fighting": NotVeryEffective, "psychic": SuperEffective, "ghost": SuperEffective, "dark": NotVeryEffective, "fairy": NotVeryEffective},
	"steel":    {"fire": NotVeryEffective, "water": NotVeryEffective, "electric": NotVeryEffective, "ice": SuperEffective, "rock": SuperEffective, "steel": NotVeryEffective, "fairy": SuperEffective},
	"fairy":    {"fire": NotVeryEffective, "fighting": SuperEffective, "poison": NotVeryEffective, "dragon": SuperEffective, "dark": SuperEffective, "steel": NotVeryEffective, "fairy": NotVeryEffective},
}

// EffectivenessOf returns the multiplier for an attacking category hitting a
// defending category. Pairs not present in the chart are neutral.
func EffectivenessOf(attacker, defender string) float64 {
	if row, ok := effectiveness[attacker]; ok {
		if m, ok := row[defender]; ok {
			return m
		}
	}
	return Neutral
}

// Weaknesses returns every attacking category with a multiplier above neutral
// against any of the given defending categories. When both defending
// categories are hit by the same attacker the multipliers compound.
func Weaknesses(defending []string) map[string]float64 {
	weaknesses := make(map[string]float64)
	for _, def := range defending {
		for atk, row := range effectiveness {
			m, ok := row[def]
			if !ok || m <= Neutral {
				continue
			}
			if existing, ok := weaknesses[atk]; ok {
				weaknesses[atk] = existing * m
			} else {
				weaknesses[atk] = m
			}
		}
	}
	return weaknesses
}

// Resistances is the counterpart of Weaknesses for multipliers below neutral.
func Resistances(defending []string) map[string]float64 {
	resistances := make(map[string]float64)
	for _, def := range defending {
		for atk, row := range effectiveness {
			m, ok := row[def]
			if !ok || m >= Neutral {
				continue
			}
			if existing, ok := resistances[atk]; ok {
				resistances[atk] = existing * m
			} else {
				resistances[atk] = m
			}
		}
	}
	return resistances
}

// AdvantageText formats an overall advantage multiplier for display.
func AdvantageText(advantage float64) string {
	switch {
	case advantage >= SuperEffective:
		return fmt.Sprintf("Super Effective! (x%.1f)", advantage)
	case advantage > Neutral:
		return fmt.Sprintf("Effective (x%.1f)", advantage)
	case advantage == Neutral:
		return "Neutral (x1)"
	case advantage > NotVeryEffective:
		return fmt.Sprintf("Resisted (x%.1f)", advantage)
	case advantage > NoEffect:
		return fmt.Sprintf("Very Resisted (x%.1f)", advantage)
	default:
		return fmt.Sprintf("No Effect! (x%.1f)", advantage)
	}
}
