package duel

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	mu       sync.Mutex
	messages []string
	edits    []string
	deleted  []string
	whispers []string
	renames  []string
	uploads  int
	locks    []bool
	seq      int
}

func (f *fakeMessenger) CreateMatchChannel(ctx context.Context, name string, participantIDs []string) (string, error) {
	return "channel-1", nil
}

func (f *fakeMessenger) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, content)
	f.seq++
	return fmt.Sprintf("msg-%d", f.seq), nil
}

func (f *fakeMessenger) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, content)
	return nil
}

func (f *fakeMessenger) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeMessenger) AttachReadyCheck(ctx context.Context, channelID, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return fmt.Sprintf("ready-%d", f.seq), nil
}

func (f *fakeMessenger) Whisper(ctx context.Context, channelID, participantID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.whispers = append(f.whispers, content)
	return nil
}

func (f *fakeMessenger) UploadImage(ctx context.Context, channelID, caption, filename string, png []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	return nil
}

func (f *fakeMessenger) SetChannelWritable(ctx context.Context, channelID string, participantIDs []string, writable bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locks = append(f.locks, writable)
	return nil
}

func (f *fakeMessenger) RenameChannel(ctx context.Context, channelID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renames = append(f.renames, name)
	return nil
}

func (f *fakeMessenger) countContaining(sub string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, msg := range f.messages {
		if strings.Contains(msg, sub) {
			count++
		}
	}
	return count
}

func (f *fakeMessenger) whisperCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.whispers)
}

type fakeDex struct {
	creatures map[string]*Creature
	stages    map[string]int
	legendary map[string]struct{}
}

func (d *fakeDex) Lookup(ctx context.Context, name string) (*Creature, error) {
	c, ok := d.creatures[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnknownCreature
	}
	return c, nil
}

func (d *fakeDex) EvolutionStage(ctx context.Context, key string) int {
	if stage, ok := d.stages[key]; ok {
		return stage
	}
	return 1
}

func (d *fakeDex) IsLegendary(key string) bool {
	_, ok := d.legendary[key]
	return ok
}

func strongCreature(name, category string) *Creature {
	return &Creature{
		Name:  name,
		Key:   strings.ToLower(name),
		Stats: Stats{HP: 200, Attack: 200, Defense: 200, SpecialAttack: 200, SpecialDefense: 200, Speed: 200},
		Types: []string{category},
	}
}

func weakCreature(name, category string) *Creature {
	return &Creature{
		Name:  name,
		Key:   strings.ToLower(name),
		Stats: Stats{HP: 10, Attack: 10, Defense: 10, SpecialAttack: 10, SpecialDefense: 10, Speed: 10},
		Types: []string{category},
	}
}

func testSettings() Settings {
	return Settings{
		CountdownTicks:    1,
		CountdownInterval: time.Millisecond,
		SelectionCooldown: 0,
		RevealDelay:       0,
		WinnerDelay:       0,
		ShowdownDuration:  time.Millisecond,
	}
}

func testDex() *fakeDex {
	return &fakeDex{
		creatures: map[string]*Creature{
			"inferno": strongCreature("Inferno", "fire"),
			"blaze":   strongCreature("Blaze", "fire"),
			"sprout":  weakCreature("Sprout", "grass"),
			"leaf":    weakCreature("Leaf", "grass"),
			"fern":    weakCreature("Fern", "grass"),
			"mythic":  strongCreature("Mythic", "dragon"),
		},
		stages:    map[string]int{},
		legendary: map[string]struct{}{"mythic": {}},
	}
}

func newTestMatch(t *testing.T, players []Player, rounds int, variant Variant) (*Match, *fakeMessenger, chan *Result) {
	t.Helper()
	messenger := &fakeMessenger{}
	results := make(chan *Result, 1)
	m, err := NewMatch("channel-1", players, rounds, variant, testDex(), messenger, testSettings(), func(r *Result) {
		results <- r
	})
	require.NoError(t, err)
	return m, messenger, results
}

func twoPlayers() []Player {
	return []Player{{ID: "p1", Name: "Ash"}, {ID: "p2", Name: "Gary"}}
}

func waitPhase(t *testing.T, m *Match, want Phase) {
	t.Helper()
	require.Eventually(t, func() bool {
		return m.Phase() == want
	}, 2*time.Second, time.Millisecond, "expected phase %s", want)
}

func TestNewMatchValidation(t *testing.T) {
	messenger := &fakeMessenger{}
	dex := testDex()

	cases := []struct {
		name    string
		players []Player
		rounds  int
		want    error
	}{
		{"even rounds", twoPlayers(), 4, ErrInvalidRounds},
		{"too few players", []Player{{ID: "p1", Name: "Ash"}}, 3, ErrPlayerCount},
		{"too many players", []Player{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}, {ID: "p4"}}, 3, ErrPlayerCount},
		{"self duel", []Player{{ID: "p1", Name: "Ash"}, {ID: "p1", Name: "Ash"}}, 3, ErrSelfDuel},
		{"duplicate opponent", []Player{{ID: "p1"}, {ID: "p2"}, {ID: "p2"}}, 5, ErrDuplicateOpponent},
		{"bot opponent", []Player{{ID: "p1"}, {ID: "p2", IsBot: true}}, 3, ErrBotOpponent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMatch("channel-1", tc.players, tc.rounds, VariantNormal, dex, messenger, testSettings(), nil)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	m, err := NewMatch("channel-1", twoPlayers(), 7, VariantNormal, dex, messenger, testSettings(), nil)
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingReady, m.Phase())
	assert.Equal(t, 4, m.winThreshold())
}

func TestMatchFullTwoPlayerFlow(t *testing.T) {
	ctx := context.Background()
	m, messenger, results := newTestMatch(t, twoPlayers(), 3, VariantNormal)

	m.Begin(ctx)
	m.HandleReady(ctx, "p1")
	m.HandleReady(ctx, "p2")
	waitPhase(t, m, PhaseSelecting)

	// Round 1: fire crushes grass regardless of name-derived boosts.
	m.HandleSubmission(ctx, "p1", "msg-a", "Inferno")
	m.HandleSubmission(ctx, "p2", "msg-b", "Sprout")
	waitPhase(t, m, PhaseAwaitingReady)

	assert.Equal(t, map[string]int{"p1": 1, "p2": 0}, m.Scores())
	require.Len(t, m.History(), 1)
	assert.Equal(t, "Ash", m.History()[0].Winner)
	assert.Equal(t, 1, m.Round())

	// Round 2 ends the best-of-3.
	m.HandleReady(ctx, "p1")
	m.HandleReady(ctx, "p2")
	waitPhase(t, m, PhaseSelecting)
	m.HandleSubmission(ctx, "p1", "msg-c", "Blaze")
	m.HandleSubmission(ctx, "p2", "msg-d", "Leaf")

	var result *Result
	select {
	case result = <-results:
	case <-time.After(2 * time.Second):
		t.Fatal("match did not finish")
	}

	assert.True(t, m.Ended())
	assert.Equal(t, "p1", result.WinnerID)
	assert.Equal(t, []int{2, 0}, result.Scores)
	assert.Equal(t, []string{"p2"}, result.LoserIDs)
	assert.Len(t, result.History, 2)

	// Terminal ceremony: showdown opened then closed, channel renamed.
	assert.Equal(t, []bool{true, false}, messenger.locks)
	require.Len(t, messenger.renames, 1)
	assert.Equal(t, "completed-ash-vs-gary", messenger.renames[0])

	// Terminal phase ignores further events.
	m.HandleReady(ctx, "p1")
	m.HandleSubmission(ctx, "p1", "msg-e", "Fern")
	assert.Equal(t, PhaseEnded, m.Phase())
}

func TestHandleReadyStartsCountdownOnce(t *testing.T) {
	ctx := context.Background()
	m, messenger, _ := newTestMatch(t, twoPlayers(), 3, VariantNormal)

	m.Begin(ctx)
	m.HandleReady(ctx, "p1")
	m.HandleReady(ctx, "p1") // re-acknowledgment is a no-op
	m.HandleReady(ctx, "p2")
	m.HandleReady(ctx, "p2") // arrives after the transition out of AwaitingReady
	waitPhase(t, m, PhaseSelecting)

	assert.Equal(t, 1, messenger.countContaining("All players are ready"))
}

func TestHandleReadyIgnoresNonParticipants(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMatch(t, twoPlayers(), 3, VariantNormal)

	m.Begin(ctx)
	m.HandleReady(ctx, "stranger")
	m.HandleReady(ctx, "p1")
	assert.Equal(t, PhaseAwaitingReady, m.Phase())
}

func TestUnknownCreatureDoesNotConsumeTurn(t *testing.T) {
	ctx := context.Background()
	m, messenger, _ := newTestMatch(t, twoPlayers(), 3, VariantNormal)

	m.mu.Lock()
	m.phase = PhaseSelecting
	m.mu.Unlock()

	m.HandleSubmission(ctx, "p1", "msg-a", "NoSuchCreature")

	assert.Equal(t, 1, messenger.whisperCount())
	assert.Equal(t, PhaseSelecting, m.Phase())
	assert.Equal(t, map[string]int{"p1": 0, "p2": 0}, m.Scores())

	// The turn is still open.
	m.HandleSubmission(ctx, "p1", "msg-b", "Inferno")
	m.mu.Lock()
	selected := m.participants[0].selection != nil
	m.mu.Unlock()
	assert.True(t, selected)
}

func TestIneligibleSubmissionAwardsOpponents(t *testing.T) {
	ctx := context.Background()
	m, messenger, _ := newTestMatch(t, twoPlayers(), 3, VariantNormal)

	m.mu.Lock()
	m.phase = PhaseSelecting
	m.mu.Unlock()

	// Opponent already locked in a valid selection; the round is still
	// abandoned for everyone.
	m.HandleSubmission(ctx, "p1", "msg-a", "Inferno")
	m.HandleSubmission(ctx, "p2", "msg-b", "Mythic") // legendary in a normal duel

	assert.Equal(t, map[string]int{"p1": 1, "p2": 0}, m.Scores())
	assert.Empty(t, m.History(), "abandoned rounds are not recorded")
	assert.Equal(t, 0, m.Round())
	assert.Equal(t, PhaseAwaitingReady, m.Phase())
	assert.Equal(t, 1, messenger.countContaining("All opponents gain 1 point"))

	m.mu.Lock()
	_, infernoStillUsed := m.used["inferno"]
	cleared := m.participants[0].selection == nil
	m.mu.Unlock()
	assert.True(t, infernoStillUsed, "accepted selections stay in the used-set")
	assert.True(t, cleared, "per-round state resets together")
}

func TestIneligiblePenaltyCanEndTheMatch(t *testing.T) {
	ctx := context.Background()
	m, _, results := newTestMatch(t, twoPlayers(), 3, VariantNormal)

	m.mu.Lock()
	m.phase = PhaseSelecting
	m.participants[0].score = 1 // one away from the threshold
	m.mu.Unlock()

	m.HandleSubmission(ctx, "p2", "msg-a", "Mythic")

	select {
	case result := <-results:
		assert.Equal(t, "p1", result.WinnerID)
		assert.Equal(t, []int{2, 0}, result.Scores)
	case <-time.After(2 * time.Second):
		t.Fatal("penalty did not end the match")
	}
	assert.True(t, m.Ended())
}

func TestDuplicateCreatureIsRejected(t *testing.T) {
	ctx := context.Background()
	m, messenger, _ := newTestMatch(t, twoPlayers(), 3, VariantNormal)

	m.mu.Lock()
	m.phase = PhaseSelecting
	m.used["inferno"] = struct{}{}
	m.mu.Unlock()

	m.HandleSubmission(ctx, "p1", "msg-a", "Inferno")

	assert.Equal(t, map[string]int{"p1": 0, "p2": 1}, m.Scores())
	assert.Equal(t, 1, messenger.countContaining(ReasonAlreadyUsed))
}

func TestSelectionCooldownDropsRapidSubmissions(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMatch(t, twoPlayers(), 3, VariantNormal)

	base := time.Now()
	current := base
	m.SetClock(func() time.Time { return current })
	m.settings.SelectionCooldown = 3 * time.Second

	m.mu.Lock()
	m.phase = PhaseSelecting
	m.mu.Unlock()

	m.HandleSubmission(ctx, "p1", "msg-a", "Inferno")
	m.HandleSubmission(ctx, "p2", "msg-b", "Sprout") // inside the window: dropped

	m.mu.Lock()
	dropped := m.participants[1].selection == nil
	m.mu.Unlock()
	assert.True(t, dropped)
	assert.Equal(t, PhaseSelecting, m.Phase())

	current = base.Add(3 * time.Second)
	m.HandleSubmission(ctx, "p2", "msg-c", "Sprout")
	waitPhase(t, m, PhaseAwaitingReady)
	assert.Equal(t, map[string]int{"p1": 1, "p2": 0}, m.Scores())
}

func TestTripleRoundResolvesWithThreeScores(t *testing.T) {
	ctx := context.Background()
	players := []Player{{ID: "p1", Name: "Ash"}, {ID: "p2", Name: "Gary"}, {ID: "p3", Name: "May"}}
	m, _, _ := newTestMatch(t, players, 3, VariantNormal)

	m.mu.Lock()
	m.phase = PhaseSelecting
	m.mu.Unlock()

	m.HandleSubmission(ctx, "p1", "msg-a", "Inferno")
	m.HandleSubmission(ctx, "p2", "msg-b", "Sprout")
	m.HandleSubmission(ctx, "p3", "msg-c", "Fern")
	waitPhase(t, m, PhaseAwaitingReady)

	history := m.History()
	require.Len(t, history, 1)
	assert.Len(t, history[0].Scores, 3)
	assert.Equal(t, "Ash", history[0].Winner)
	assert.Equal(t, map[string]int{"p1": 1, "p2": 0, "p3": 0}, m.Scores())
}

func TestRoundWinner(t *testing.T) {
	idx, tied := roundWinner([]float64{1.0, 3.0, 2.0})
	assert.Equal(t, 1, idx)
	assert.False(t, tied)

	_, tied = roundWinner([]float64{2.0, 2.0})
	assert.True(t, tied, "a shared maximum awards nobody")

	_, tied = roundWinner([]float64{2.0, 1.0, 2.0})
	assert.True(t, tied, "ties are detected across non-adjacent seats")
}

func TestScoresAreMonotonic(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMatch(t, twoPlayers(), 5, VariantNormal)

	previous := map[string]int{"p1": 0, "p2": 0}
	submissions := [][2]string{{"Inferno", "Sprout"}, {"Blaze", "Leaf"}}
	for _, pair := range submissions {
		m.mu.Lock()
		m.phase = PhaseSelecting
		m.mu.Unlock()

		m.HandleSubmission(ctx, "p1", "msg-a", pair[0])
		m.HandleSubmission(ctx, "p2", "msg-b", pair[1])
		waitPhase(t, m, PhaseAwaitingReady)

		scores := m.Scores()
		for id, score := range scores {
			assert.GreaterOrEqual(t, score, previous[id])
		}
		previous = scores
	}
}
