package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sort"
	"strings"

	"arena/lib/duel"
	"arena/lib/history"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Category chip colors, the conventional palette players expect.
var typeColors = map[string]color.RGBA{
	"normal":   {168, 168, 120, 255},
	"fire":     {240, 128, 48, 255},
	"water":    {104, 144, 240, 255},
	"electric": {248, 208, 48, 255},
	"grass":    {120, 200, 80, 255},
	"ice":      {152, 216, 216, 255},
	"fighting": {192, 48, 40, 255},
	"poison":   {160, 64, 160, 255},
	"ground":   {224, 192, 104, 255},
	"flying":   {168, 144, 240, 255},
	"psychic":  {248, 88, 136, 255},
	"bug":      {168, 184, 32, 255},
	"rock":     {184, 160, 56, 255},
	"ghost":    {112, 88, 152, 255},
	"dragon":   {112, 56, 248, 255},
	"dark":     {112, 88, 72, 255},
	"steel":    {184, 184, 208, 255},
	"fairy":    {238, 153, 172, 255},
}

var (
	background = color.RGBA{40, 40, 60, 255}
	panel      = color.RGBA{55, 55, 80, 255}
	divider    = color.RGBA{100, 100, 150, 255}
	textColor  = color.RGBA{255, 255, 255, 255}
	gold       = color.RGBA{255, 200, 60, 255}
	barTrack   = color.RGBA{30, 30, 45, 255}
	barFill    = color.RGBA{96, 170, 255, 255}
)

const (
	panelWidth   = 360
	panelHeight  = 520
	panelMargin  = 20
	maxStatValue = 255 // bar scale
)

// Generator renders battle and stats cards as PNGs. Stateless and safe for
// concurrent use.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// VersusCard draws one panel per creature side by side: name, category
// chips, stat bars and the battle score. The highest-scoring panel gets a
// gold border.
func (g *Generator) VersusCard(creatures []*duel.Creature, playerNames []string, scores []float64) ([]byte, error) {
	if len(creatures) == 0 || len(creatures) != len(playerNames) || len(creatures) != len(scores) {
		return nil, fmt.Errorf("mismatched card inputs: %d creatures, %d players, %d scores",
			len(creatures), len(playerNames), len(scores))
	}

	width := panelMargin + len(creatures)*(panelWidth+panelMargin)
	height := panelHeight + 2*panelMargin
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fillRect(img, img.Bounds(), background)

	best := 0
	for i := range scores {
		if scores[i] > scores[best] {
			best = i
		}
	}

	// Head-to-head advantage is only meaningful for a single pairing; triple
	// rounds already fold the matchups into the averaged scores.
	matchups := make([]string, len(creatures))
	if len(creatures) == 2 {
		advantage_a, advantage_b := duel.TypeAdvantage(creatures[0].Types, creatures[1].Types)
		matchups[0] = duel.AdvantageText(advantage_a)
		matchups[1] = duel.AdvantageText(advantage_b)
	}

	for i, creature := range creatures {
		x := panelMargin + i*(panelWidth+panelMargin)
		bounds := image.Rect(x, panelMargin, x+panelWidth, panelMargin+panelHeight)
		fillRect(img, bounds, panel)
		if i == best {
			drawBorder(img, bounds, gold, 3)
		}
		g.drawCreaturePanel(img, bounds, creature, playerNames[i], scores[i], matchups[i])
	}

	return encode(img)
}

func (g *Generator) drawCreaturePanel(img *image.RGBA, bounds image.Rectangle, creature *duel.Creature, playerName string, score float64, matchup string) {
	x := bounds.Min.X + 16
	y := bounds.Min.Y + 28

	drawText(img, x, y, playerName, textColor)
	y += 24
	drawText(img, x, y, creature.Name, gold)
	y += 20
	hline(img, x, y, bounds.Max.X-16, divider)
	y += 24

	// Category chips.
	chipX := x
	for _, category := range creature.Types {
		chip, ok := typeColors[category]
		if !ok {
			chip = color.RGBA{128, 128, 128, 255}
		}
		chipBounds := image.Rect(chipX, y-14, chipX+100, y+8)
		fillRect(img, chipBounds, chip)
		drawText(img, chipX+8, y, category, textColor)
		chipX += 110
	}
	y += 36

	stats := []struct {
		label string
		value int
	}{
		{"HP", creature.Stats.HP},
		{"Attack", creature.Stats.Attack},
		{"Defense", creature.Stats.Defense},
		{"Sp. Atk", creature.Stats.SpecialAttack},
		{"Sp. Def", creature.Stats.SpecialDefense},
		{"Speed", creature.Stats.Speed},
	}
	for _, stat := range stats {
		drawText(img, x, y, fmt.Sprintf("%-8s %3d", stat.label, stat.value), textColor)
		drawBar(img, x+130, y-10, bounds.Max.X-16, stat.value)
		y += 28
	}

	y += 12
	hline(img, x, y, bounds.Max.X-16, divider)
	y += 28
	drawText(img, x, y, fmt.Sprintf("Battle Score: %.1f", score), gold)
	if matchup != "" {
		y += 20
		drawText(img, x, y, matchup, textColor)
	}
	if creature.Height > 0 || creature.Weight > 0 {
		y += 24
		drawText(img, x, y, fmt.Sprintf("%.1fm / %.1fkg", creature.Height, creature.Weight), textColor)
	}

	y += 28
	drawText(img, x, y, "Weak vs: "+formatMultipliers(duel.Weaknesses(creature.Types), true), textColor)
	y += 20
	drawText(img, x, y, "Resists: "+formatMultipliers(duel.Resistances(creature.Types), false), textColor)
}

// formatMultipliers lists categories strongest effect first, capped at four
// so the line fits a panel.
func formatMultipliers(multipliers map[string]float64, descending bool) string {
	if len(multipliers) == 0 {
		return "none"
	}

	categories := make([]string, 0, len(multipliers))
	for category := range multipliers {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		a, b := multipliers[categories[i]], multipliers[categories[j]]
		if a != b {
			if descending {
				return a > b
			}
			return a < b
		}
		return categories[i] < categories[j]
	})
	if len(categories) > 4 {
		categories = categories[:4]
	}

	parts := make([]string, len(categories))
	for i, category := range categories {
		parts[i] = fmt.Sprintf("%s x%.2f", category, multipliers[category])
	}
	return strings.Join(parts, ", ")
}

// StatsCard draws a player's aggregate record in the same dark theme.
func (g *Generator) StatsCard(playerName string, stats history.Stats) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 600, 400))
	fillRect(img, img.Bounds(), background)

	drawText(img, 20, 36, playerName+"'s Duel Stats", textColor)
	hline(img, 20, 60, 580, divider)

	rows := []struct {
		label string
		value string
	}{
		{"Wins", fmt.Sprintf("%d", stats.Wins)},
		{"Losses", fmt.Sprintf("%d", stats.Losses)},
		{"Win Rate", fmt.Sprintf("%.1f%%", stats.WinRate)},
		{"Best Streak", fmt.Sprintf("%d", stats.BestStreak)},
		{"Total Duels", fmt.Sprintf("%d", stats.TotalDuels)},
	}

	y := 100
	for _, row := range rows {
		drawText(img, 40, y, row.label, textColor)
		drawText(img, 400, y, row.value, gold)
		hline(img, 20, y+16, 580, barTrack)
		y += 52
	}

	return encode(img)
}

func encode(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode card: %w", err)
	}
	return buf.Bytes(), nil
}

func fillRect(img *image.RGBA, bounds image.Rectangle, c color.RGBA) {
	draw.Draw(img, bounds, &image.Uniform{c}, image.Point{}, draw.Src)
}

func drawBorder(img *image.RGBA, bounds image.Rectangle, c color.RGBA, thickness int) {
	fillRect(img, image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+thickness), c)
	fillRect(img, image.Rect(bounds.Min.X, bounds.Max.Y-thickness, bounds.Max.X, bounds.Max.Y), c)
	fillRect(img, image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+thickness, bounds.Max.Y), c)
	fillRect(img, image.Rect(bounds.Max.X-thickness, bounds.Min.Y, bounds.Max.X, bounds.Max.Y), c)
}

func hline(img *image.RGBA, x0, y, x1 int, c color.RGBA) {
	fillRect(img, image.Rect(x0, y, x1, y+2), c)
}

func drawBar(img *image.RGBA, x0, y, x1, value int) {
	if value > maxStatValue {
		value = maxStatValue
	}
	if value < 0 {
		value = 0
	}
	track := image.Rect(x0, y, x1, y+12)
	fillRect(img, track, barTrack)
	filled := x0 + (x1-x0)*value/maxStatValue
	fillRect(img, image.Rect(x0, y, filled, y+12), barFill)
}

func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}
