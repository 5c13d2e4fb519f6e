package duel

import (
	"crypto/md5"
	"strings"
)

// SameTypeBonus is applied once per attacking category, since every iterated
// attacking category belongs to the attacker's own category set by construction.
const SameTypeBonus = 1.2

// Stat weights emphasise offensive capability.
const (
	weightHP             = 0.8
	weightAttack         = 1.2
	weightDefense        = 0.9
	weightSpecialAttack  = 1.2
	weightSpecialDefense = 0.9
	weightSpeed          = 1.0
)

// DeriveAttributeBoosts derives six boosts in [0,31] from a creature's name.
// The hash is stable, so the same name always yields the same boosts; fairness
// audits rely on that reproducibility.
func DeriveAttributeBoosts(name string) Stats {
	digest := md5.Sum([]byte(strings.ToLower(name)))

	// Six non-overlapping bytes of the digest, one per stat.
	return Stats{
		HP:             int(digest[0]) % 32,
		Attack:         int(digest[1]) % 32,
		Defense:        int(digest[2]) % 32,
		SpecialAttack:  int(digest[3]) % 32,
		SpecialDefense: int(digest[4]) % 32,
		Speed:          int(digest[5]) % 32,
	}
}

// TypeAdvantage computes the offensive multiplier each side carries into the
// pairing. The same-category bonus is applied once per attacking-category
// iteration, not once per match.
func TypeAdvantage(typesA, typesB []string) (float64, float64) {
	return offensiveMultiplier(typesA, typesB), offensiveMultiplier(typesB, typesA)
}

func offensiveMultiplier(attacking, defending []string) float64 {
	product := 1.0
	for _, atk := range attacking {
		product *= SameTypeBonus
		for _, def := range defending {
			product *= EffectivenessOf(atk, def)
		}
	}
	return product
}

// WeightedStats collapses a stat block into a single number, scaled down to
// keep battle scores readable.
func WeightedStats(s Stats) float64 {
	total := float64(s.HP)*weightHP +
		float64(s.Attack)*weightAttack +
		float64(s.Defense)*weightDefense +
		float64(s.SpecialAttack)*weightSpecialAttack +
		float64(s.SpecialDefense)*weightSpecialDefense +
		float64(s.Speed)*weightSpeed
	return total / 100
}

// BattleScore resolves one pairing. Pure and deterministic: boosts are added
// to each base stat before weighting, then each side's weighted total is
// scaled by its type advantage.
func BattleScore(a, b *Creature) (float64, float64) {
	statsA := a.Stats.Add(DeriveAttributeBoosts(a.Name))
	statsB := b.Stats.Add(DeriveAttributeBoosts(b.Name))

	advantageA, advantageB := TypeAdvantage(a.Types, b.Types)

	return WeightedStats(statsA) * advantageA, WeightedStats(statsB) * advantageB
}

// TripleBattleScores scores a 3-way round: each creature's score is the
// average of its pairwise score against the other two.
func TripleBattleScores(creatures [3]*Creature) [3]float64 {
	var scores [3]float64
	for i := range creatures {
		first, _ := BattleScore(creatures[i], creatures[(i+1)%3])
		second, _ := BattleScore(creatures[i], creatures[(i+2)%3])
		scores[i] = (first + second) / 2
	}
	return scores
}
