package dex

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"arena/lib/duel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pikachuBody = `{
	"name": "pikachu",
	"stats": [
		{"base_stat": 35}, {"base_stat": 55}, {"base_stat": 40},
		{"base_stat": 50}, {"base_stat": 50}, {"base_stat": 90}
	],
	"types": [{"type": {"name": "electric"}}],
	"sprites": {
		"front_default": "https://img.example/pikachu-small.png",
		"other": {"official-artwork": {"front_default": "https://img.example/pikachu.png"}}
	},
	"height": 4,
	"weight": 60
}`

const deoxysBody = `{
	"name": "deoxys-normal",
	"stats": [
		{"base_stat": 50}, {"base_stat": 150}, {"base_stat": 50},
		{"base_stat": 150}, {"base_stat": 50}, {"base_stat": 150}
	],
	"types": [{"type": {"name": "psychic"}}],
	"sprites": {"front_default": "", "other": {"official-artwork": {"front_default": ""}}},
	"height": 17,
	"weight": 608
}`

func newTestServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		switch r.URL.Path {
		case "/pokemon/pikachu":
			fmt.Fprint(w, pikachuBody)
		case "/pokemon/deoxys":
			fmt.Fprint(w, deoxysBody)
		case "/pokemon-species/ivysaur":
			fmt.Fprintf(w, `{"evolution_chain": {"url": "%s/evolution-chain/1"}}`, server.URL)
		case "/evolution-chain/1":
			fmt.Fprint(w, `{"chain": {
				"species": {"name": "bulbasaur"},
				"evolves_to": [{
					"species": {"name": "ivysaur"},
					"evolves_to": [{"species": {"name": "venusaur"}, "evolves_to": []}]
				}]
			}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "deoxys-attack", Normalize("  Deoxys Attack "))
	assert.Equal(t, "ho-oh", Normalize("Ho-Oh"))
	assert.Equal(t, "", Normalize("   "))
}

func TestLookupExactKey(t *testing.T) {
	server := newTestServer(t, nil)
	client := NewClient(server.URL)

	creature, err := client.Lookup(context.Background(), "Pikachu")
	require.NoError(t, err)

	assert.Equal(t, "Pikachu", creature.Name)
	assert.Equal(t, "pikachu", creature.Key)
	assert.Equal(t, duel.Stats{HP: 35, Attack: 55, Defense: 40, SpecialAttack: 50, SpecialDefense: 50, Speed: 90}, creature.Stats)
	assert.Equal(t, []string{"electric"}, creature.Types)
	assert.Equal(t, "https://img.example/pikachu.png", creature.ImageURL)
	assert.InDelta(t, 0.4, creature.Height, 1e-9)
	assert.InDelta(t, 6.0, creature.Weight, 1e-9)
}

func TestLookupFallsBackToBaseForm(t *testing.T) {
	server := newTestServer(t, nil)
	client := NewClient(server.URL)

	// "deoxys-unknown" misses; the base form resolves.
	creature, err := client.Lookup(context.Background(), "Deoxys Unknown")
	require.NoError(t, err)
	assert.Equal(t, "deoxys-normal", creature.Key)
	assert.Equal(t, "Deoxys Normal", creature.Name)
}

func TestLookupUnknownCreature(t *testing.T) {
	server := newTestServer(t, nil)
	client := NewClient(server.URL)

	_, err := client.Lookup(context.Background(), "Missingno")
	assert.ErrorIs(t, err, duel.ErrUnknownCreature)
}

func TestLookupCachesEntries(t *testing.T) {
	var hits atomic.Int64
	server := newTestServer(t, &hits)
	client := NewClient(server.URL)

	_, err := client.Lookup(context.Background(), "Pikachu")
	require.NoError(t, err)
	first := hits.Load()

	_, err = client.Lookup(context.Background(), "pikachu")
	require.NoError(t, err)
	assert.Equal(t, first, hits.Load(), "second lookup must be served from cache")
}

func TestEvolutionStage(t *testing.T) {
	server := newTestServer(t, nil)
	client := NewClient(server.URL)
	ctx := context.Background()

	assert.Equal(t, 2, client.EvolutionStage(ctx, "ivysaur"))

	// Unresolvable species degrade to stage 1.
	assert.Equal(t, 1, client.EvolutionStage(ctx, "missingno"))
}

func TestIsLegendary(t *testing.T) {
	client := NewClient("")

	assert.True(t, client.IsLegendary("mewtwo"))
	assert.True(t, client.IsLegendary("Tapu Koko"), "multi-word names normalize to dex keys")
	assert.False(t, client.IsLegendary("pikachu"))
	assert.False(t, client.IsLegendary("deoxys-attack"), "forms only match through their base key")
}
