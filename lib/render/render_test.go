package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"arena/lib/duel"
	"arena/lib/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCreature(name string) *duel.Creature {
	return &duel.Creature{
		Name:   name,
		Key:    name,
		Stats:  duel.Stats{HP: 78, Attack: 84, Defense: 78, SpecialAttack: 109, SpecialDefense: 85, Speed: 100},
		Types:  []string{"fire", "flying"},
		Height: 1.7,
		Weight: 90.5,
	}
}

func TestVersusCardTwoPanels(t *testing.T) {
	g := NewGenerator()

	data, err := g.VersusCard(
		[]*duel.Creature{sampleCreature("Charizard"), sampleCreature("Blastoise")},
		[]string{"Ash", "Gary"},
		[]float64{12.5, 9.1},
	)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, panelMargin+2*(panelWidth+panelMargin), img.Bounds().Dx())
	assert.Equal(t, panelHeight+2*panelMargin, img.Bounds().Dy())
}

func TestVersusCardThreePanels(t *testing.T) {
	g := NewGenerator()

	data, err := g.VersusCard(
		[]*duel.Creature{sampleCreature("A"), sampleCreature("B"), sampleCreature("C")},
		[]string{"Ash", "Gary", "May"},
		[]float64{1, 2, 3},
	)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, panelMargin+3*(panelWidth+panelMargin), img.Bounds().Dx())
}

func TestVersusCardRejectsMismatchedInputs(t *testing.T) {
	g := NewGenerator()

	_, err := g.VersusCard([]*duel.Creature{sampleCreature("A")}, []string{"Ash", "Gary"}, []float64{1})
	assert.Error(t, err)
	_, err = g.VersusCard(nil, nil, nil)
	assert.Error(t, err)
}

func TestFormatMultipliersOrdersAndCaps(t *testing.T) {
	weaknesses := duel.Weaknesses([]string{"fire", "flying"})

	// Rock compounds (1.6 * 1.6) and must lead the weakness line; at most
	// four entries fit a panel.
	line := formatMultipliers(weaknesses, true)
	assert.True(t, strings.HasPrefix(line, "rock x2.56"), line)
	assert.LessOrEqual(t, strings.Count(line, ","), 3)

	resistances := formatMultipliers(duel.Resistances([]string{"fire", "flying"}), false)
	assert.Contains(t, resistances, "grass x0.39")
}

func TestFormatMultipliersEmpty(t *testing.T) {
	assert.Equal(t, "none", formatMultipliers(nil, true))
}

func TestStatsCard(t *testing.T) {
	g := NewGenerator()

	data, err := g.StatsCard("Ash", history.Stats{Wins: 12, Losses: 3, TotalDuels: 15, WinRate: 80, BestStreak: 6})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}
