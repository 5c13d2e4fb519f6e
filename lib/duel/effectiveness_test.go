package duel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectivenessOf(t *testing.T) {
	assert.Equal(t, SuperEffective, EffectivenessOf("fire", "grass"))
	assert.Equal(t, NotVeryEffective, EffectivenessOf("fire", "water"))
	assert.Equal(t, NoEffect, EffectivenessOf("electric", "ground"))
	assert.Equal(t, NoEffect, EffectivenessOf("normal", "ghost"))

	// Pairs absent from the chart are neutral.
	assert.Equal(t, Neutral, EffectivenessOf("normal", "normal"))
	assert.Equal(t, Neutral, EffectivenessOf("fire", "electric"))
	assert.Equal(t, Neutral, EffectivenessOf("fighting", "poison"))
	assert.Equal(t, Neutral, EffectivenessOf("fighting", "ghost"))

	// Unknown categories never panic.
	assert.Equal(t, Neutral, EffectivenessOf("cosmic", "fire"))
	assert.Equal(t, Neutral, EffectivenessOf("fire", "cosmic"))
}

func TestWeaknessesCompound(t *testing.T) {
	weaknesses := Weaknesses([]string{"fire", "flying"})

	// Rock is super effective against both defending categories.
	assert.InDelta(t, SuperEffective*SuperEffective, weaknesses["rock"], 1e-9)
	assert.InDelta(t, SuperEffective, weaknesses["water"], 1e-9)
	assert.InDelta(t, SuperEffective, weaknesses["electric"], 1e-9)
	assert.NotContains(t, weaknesses, "grass")
}

func TestResistancesCompound(t *testing.T) {
	resistances := Resistances([]string{"fire", "flying"})

	// Grass is resisted by both defending categories.
	assert.InDelta(t, NotVeryEffective*NotVeryEffective, resistances["grass"], 1e-9)
	assert.InDelta(t, NoEffect, resistances["ground"], 1e-9)
	assert.NotContains(t, resistances, "water")
}

func TestAdvantageText(t *testing.T) {
	assert.Equal(t, "Super Effective! (x1.6)", AdvantageText(SuperEffective))
	assert.Equal(t, "Neutral (x1)", AdvantageText(Neutral))
	assert.Equal(t, "Resisted (x0.8)", AdvantageText(0.8))
	assert.Equal(t, "No Effect! (x0.4)", AdvantageText(NoEffect))
}
