package duel

import (
	"fmt"
	"strings"
)

// Variant is the eligibility ruleset applied to creature selection for a match.
type Variant string

const (
	VariantNormal          Variant = "normal"
	VariantFirstEvolution  Variant = "1st-evolution"
	VariantSecondEvolution Variant = "2nd-evolution"
	VariantLegendaries     Variant = "legendaries"
)

// ParseVariant rejects unknown variants at the boundary so the scoring logic
// never sees a value outside the closed set.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantNormal:
		return VariantNormal, nil
	case VariantFirstEvolution:
		return VariantFirstEvolution, nil
	case VariantSecondEvolution:
		return VariantSecondEvolution, nil
	case VariantLegendaries:
		return VariantLegendaries, nil
	}
	return "", fmt.Errorf("unknown duel variant: %q", s)
}

// Label formats a variant for user-facing messages ("1st Evolution").
func (v Variant) Label() string {
	words := strings.Split(strings.ReplaceAll(string(v), "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
