package duel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveAttributeBoostsIsDeterministicAndCaseInsensitive(t *testing.T) {
	first := DeriveAttributeBoosts("Charizard")
	second := DeriveAttributeBoosts("charizard")
	third := DeriveAttributeBoosts("CHARIZARD")

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)

	for _, boost := range []int{first.HP, first.Attack, first.Defense, first.SpecialAttack, first.SpecialDefense, first.Speed} {
		assert.GreaterOrEqual(t, boost, 0)
		assert.Less(t, boost, 32)
	}

	// Different names should not collide in general.
	assert.NotEqual(t, first, DeriveAttributeBoosts("Blastoise"))
}

func TestWeightedStats(t *testing.T) {
	flat := Stats{HP: 100, Attack: 100, Defense: 100, SpecialAttack: 100, SpecialDefense: 100, Speed: 100}
	assert.InDelta(t, 6.0, WeightedStats(flat), 1e-9)

	// Offensive stats outweigh defensive ones.
	attacker := Stats{Attack: 100, SpecialAttack: 100}
	defender := Stats{Defense: 100, SpecialDefense: 100}
	assert.Greater(t, WeightedStats(attacker), WeightedStats(defender))
}

func TestTypeAdvantageAsymmetry(t *testing.T) {
	fire, water := TypeAdvantage([]string{"fire"}, []string{"water"})
	assert.InDelta(t, SameTypeBonus*NotVeryEffective, fire, 1e-9)
	assert.InDelta(t, SameTypeBonus*SuperEffective, water, 1e-9)
}

func TestTypeAdvantageCompoundsAcrossCategories(t *testing.T) {
	// Water hitting a fire/rock defender compounds both matchups.
	water, _ := TypeAdvantage([]string{"water"}, []string{"fire", "rock"})
	assert.InDelta(t, SameTypeBonus*SuperEffective*SuperEffective, water, 1e-9)

	// A dual-category attacker gets the same-category bonus per category.
	dual, _ := TypeAdvantage([]string{"fire", "flying"}, []string{"grass"})
	assert.InDelta(t, (SameTypeBonus*SuperEffective)*(SameTypeBonus*SuperEffective), dual, 1e-9)
}

func TestBattleScoreIsPure(t *testing.T) {
	a := strongCreature("Inferno", "fire")
	b := weakCreature("Sprout", "grass")

	firstA, firstB := BattleScore(a, b)
	secondA, secondB := BattleScore(a, b)

	assert.Equal(t, firstA, secondA)
	assert.Equal(t, firstB, secondB)
	assert.Greater(t, firstA, firstB, "overwhelming stats and a favorable matchup must win")
}

func TestTripleBattleScoresMirrorImageTies(t *testing.T) {
	c := strongCreature("Inferno", "fire")
	scores := TripleBattleScores([3]*Creature{c, c, c})
	assert.Equal(t, scores[0], scores[1])
	assert.Equal(t, scores[1], scores[2])
}

func TestTripleBattleScoresAveragesPairings(t *testing.T) {
	a := strongCreature("Inferno", "fire")
	b := weakCreature("Sprout", "grass")
	c := weakCreature("Fern", "grass")

	scores := TripleBattleScores([3]*Creature{a, b, c})

	ab, _ := BattleScore(a, b)
	ac, _ := BattleScore(a, c)
	assert.InDelta(t, (ab+ac)/2, scores[0], 1e-9)
	assert.Greater(t, scores[0], scores[1])
	assert.Greater(t, scores[0], scores[2])
}
