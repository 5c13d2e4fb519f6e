package duel

import "context"

// Classifier answers the dex questions the eligibility rules depend on.
// This package only encodes the decision policy, never the lookup.
type Classifier interface {
	// EvolutionStage reports 1, 2 or 3 for a dex key, defaulting to 1 when the
	// evolution chain cannot be resolved.
	EvolutionStage(ctx context.Context, key string) int
	// IsLegendary reports whether a dex key is on the fixed legendary list.
	IsLegendary(key string) bool
}

// Rejection reasons surfaced to the submitting player.
const (
	ReasonAlreadyUsed       = "This creature has already been used in this duel!"
	ReasonNotFirstEvolution = "Only 1st evolution creatures are allowed in this duel!"
	ReasonNotSecondStage    = "Only 2nd evolution creatures are allowed in this duel!"
	ReasonNotLegendary      = "Only Legendary creatures are allowed in this duel!"
	ReasonLegendaryBanned   = "Legendary creatures are not allowed in normal duels!"
)

// IsEligible decides whether a creature may be selected for the given variant.
// Rules are checked in order; the first violation wins.
func IsEligible(ctx context.Context, c *Creature, variant Variant, used map[string]struct{}, classifier Classifier) (bool, string) {
	if _, taken := used[c.UsedKey()]; taken {
		return false, ReasonAlreadyUsed
	}

	switch variant {
	case VariantFirstEvolution:
		if classifier.EvolutionStage(ctx, c.Key) != 1 {
			return false, ReasonNotFirstEvolution
		}

	case VariantSecondEvolution:
		if classifier.EvolutionStage(ctx, c.Key) != 2 {
			return false, ReasonNotSecondStage
		}

	case VariantLegendaries:
		// The specific form or its base form qualifies.
		if !classifier.IsLegendary(c.Key) && !classifier.IsLegendary(c.BaseKey()) {
			return false, ReasonNotLegendary
		}

	case VariantNormal:
		if classifier.IsLegendary(c.Key) || classifier.IsLegendary(c.BaseKey()) {
			return false, ReasonLegendaryBanned
		}
	}

	return true, ""
}
