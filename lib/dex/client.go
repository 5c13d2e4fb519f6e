package dex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"arena/lib/duel"
)

var (
	DefaultBaseURL = "https://pokeapi.co/api/v2"

	errNotFound = errors.New("dex entry not found")
)

// Client resolves creature names against the public dex API. Responses are
// cached for the lifetime of the process: dex data is static, and selection
// bursts during duels would otherwise hammer the API.
type Client struct {
	base string
	http *http.Client

	mu     sync.RWMutex
	cache  map[string]*duel.Creature
	stages map[string]int
}

// NewClient builds a dex client. An empty base URL selects the public API.
func NewClient(base string) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		base:   strings.TrimSuffix(base, "/"),
		http:   &http.Client{Timeout: 10 * time.Second},
		cache:  make(map[string]*duel.Creature),
		stages: make(map[string]int),
	}
}

// Normalize converts a player-typed name into a dex key:
// "Deoxys Attack" -> "deoxys-attack".
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// Lookup resolves a creature by name. The full key is tried first, then the
// base form ("giratina-unknown-form" falls back to "giratina"), so a typo in
// a form qualifier still resolves to something playable. A miss on every
// candidate is ErrUnknownCreature.
func (c *Client) Lookup(ctx context.Context, name string) (*duel.Creature, error) {
	key := Normalize(name)
	if key == "" {
		return nil, duel.ErrUnknownCreature
	}

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	candidates := []string{key}
	if base, _, found := strings.Cut(key, "-"); found && base != "" {
		candidates = append(candidates, base)
	}

	for _, candidate := range candidates {
		payload, err := c.fetchPokemon(ctx, candidate)
		if err == errNotFound {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch dex entry %q: %w", candidate, err)
		}

		creature := payload.toCreature()
		c.mu.Lock()
		c.cache[key] = creature
		c.mu.Unlock()
		return creature, nil
	}

	return nil, duel.ErrUnknownCreature
}

// EvolutionStage walks the species' evolution chain and reports the position
// of the key within it. Any resolution failure degrades to stage 1 rather
// than blocking a selection.
func (c *Client) EvolutionStage(ctx context.Context, key string) int {
	key = Normalize(key)

	c.mu.RLock()
	stage, ok := c.stages[key]
	c.mu.RUnlock()
	if ok {
		return stage
	}

	stage = c.resolveStage(ctx, key)

	c.mu.Lock()
	c.stages[key] = stage
	c.mu.Unlock()
	return stage
}

// IsLegendary reports whether the key is on the fixed legendary list. Forms
// are the caller's concern; only exact keys match here.
func (c *Client) IsLegendary(key string) bool {
	_, ok := legendaries[Normalize(key)]
	return ok
}

func (c *Client) resolveStage(ctx context.Context, key string) int {
	var species struct {
		EvolutionChain struct {
			URL string `json:"url"`
		} `json:"evolution_chain"`
	}
	if err := c.getJSON(ctx, "/pokemon-species/"+key, &species); err != nil {
		slog.Debug("Dex : species lookup failed, defaulting to stage 1", "key", key, "error", err)
		return 1
	}

	chainPath, err := relativePath(species.EvolutionChain.URL)
	if err != nil {
		slog.Debug("Dex : bad evolution chain url", "key", key, "url", species.EvolutionChain.URL)
		return 1
	}

	var chain struct {
		Chain chainLink `json:"chain"`
	}
	if err := c.getJSON(ctx, chainPath, &chain); err != nil {
		slog.Debug("Dex : evolution chain lookup failed, defaulting to stage 1", "key", key, "error", err)
		return 1
	}

	if stage := findStage(chain.Chain, key, 1); stage > 0 {
		return stage
	}
	return 1
}

type chainLink struct {
	Species struct {
		Name string `json:"name"`
	} `json:"species"`
	EvolvesTo []chainLink `json:"evolves_to"`
}

func findStage(link chainLink, target string, stage int) int {
	if link.Species.Name == target {
		return stage
	}
	for _, next := range link.EvolvesTo {
		if found := findStage(next, target, stage+1); found > 0 {
			return found
		}
	}
	return 0
}

// relativePath strips the API host and version prefix from an absolute URL
// returned by the API, so follow-up requests go through the configured base.
func relativePath(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	path := strings.TrimPrefix(u.Path, "/api/v2")
	if path == "" || path[0] != '/' {
		return "", fmt.Errorf("unexpected api path: %q", u.Path)
	}
	return path, nil
}

type pokemonPayload struct {
	Name  string `json:"name"`
	Stats []struct {
		BaseStat int `json:"base_stat"`
	} `json:"stats"`
	Types []struct {
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
		Other        struct {
			OfficialArtwork struct {
				FrontDefault string `json:"front_default"`
			} `json:"official-artwork"`
		} `json:"other"`
	} `json:"sprites"`
	Height int `json:"height"`
	Weight int `json:"weight"`
}

// toCreature maps the wire payload onto the battle model. Stats arrive in a
// fixed order (hp, attack, defense, sp. attack, sp. defense, speed); height
// and weight are decimeters and hectograms on the wire.
func (p *pokemonPayload) toCreature() *duel.Creature {
	stats := duel.Stats{}
	order := []*int{&stats.HP, &stats.Attack, &stats.Defense, &stats.SpecialAttack, &stats.SpecialDefense, &stats.Speed}
	for i, slot := range order {
		if i < len(p.Stats) {
			*slot = p.Stats[i].BaseStat
		}
	}

	types := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		types = append(types, strings.ToLower(t.Type.Name))
	}

	image := p.Sprites.Other.OfficialArtwork.FrontDefault
	if image == "" {
		image = p.Sprites.FrontDefault
	}

	return &duel.Creature{
		Name:     displayName(p.Name),
		Key:      p.Name,
		Stats:    stats,
		Types:    types,
		ImageURL: image,
		Height:   float64(p.Height) / 10,
		Weight:   float64(p.Weight) / 10,
	}
}

// displayName turns a dex key into a readable name: "deoxys-attack" ->
// "Deoxys Attack".
func displayName(key string) string {
	words := strings.Split(key, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func (c *Client) fetchPokemon(ctx context.Context, key string) (*pokemonPayload, error) {
	var payload pokemonPayload
	if err := c.getJSON(ctx, "/pokemon/"+key, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
