package duel

import "strings"

// Stats are the six base attributes of a creature as served by the dex.
type Stats struct {
	HP             int `json:"hp"`
	Attack         int `json:"attack"`
	Defense        int `json:"defense"`
	SpecialAttack  int `json:"special_attack"`
	SpecialDefense int `json:"special_defense"`
	Speed          int `json:"speed"`
}

// Add returns the element-wise sum of two stat blocks.
func (s Stats) Add(other Stats) Stats {
	return Stats{
		HP:             s.HP + other.HP,
		Attack:         s.Attack + other.Attack,
		Defense:        s.Defense + other.Defense,
		SpecialAttack:  s.SpecialAttack + other.SpecialAttack,
		SpecialDefense: s.SpecialDefense + other.SpecialDefense,
		Speed:          s.Speed + other.Speed,
	}
}

// Creature is an immutable snapshot fetched once per selection. It is owned
// by the match for the duration of one round and discarded after scoring.
type Creature struct {
	Name     string   `json:"name"`     // display name, e.g. "Deoxys Attack"
	Key      string   `json:"key"`      // canonical dex key, e.g. "deoxys-attack"
	Stats    Stats    `json:"stats"`
	Types    []string `json:"types"`    // 1 or 2 lowercase categories, ordered
	ImageURL string   `json:"image_url"`
	Height   float64  `json:"height"` // meters
	Weight   float64  `json:"weight"` // kilograms
}

// BaseKey strips a form qualifier from the dex key ("deoxys-attack" -> "deoxys").
func (c *Creature) BaseKey() string {
	base, _, _ := strings.Cut(c.Key, "-")
	return base
}

// UsedKey is the case-insensitive key recorded in a match's used-set.
func (c *Creature) UsedKey() string {
	return strings.ToLower(c.Key)
}
