package duel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"arena/lib/platform"

	"github.com/google/uuid"
)

var (
	ErrInvalidRounds     = errors.New("rounds must be 3, 5 or 7")
	ErrPlayerCount       = errors.New("a duel needs 2 or 3 players")
	ErrSelfDuel          = errors.New("a player cannot duel themselves")
	ErrDuplicateOpponent = errors.New("the same opponent cannot be listed twice")
	ErrBotOpponent       = errors.New("bots cannot be challenged")
)

// ErrUnknownCreature is returned by a Provider when no creature matches a
// submitted name. It is recoverable: the submitter is prompted to retry.
var ErrUnknownCreature = errors.New("unknown creature")

// Phase is the lifecycle position of a match. Every phase before Ended loops
// once per round; Ended is terminal.
type Phase int

const (
	PhaseAwaitingReady Phase = iota
	PhaseCounting
	PhaseSelecting
	PhaseResolving
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingReady:
		return "awaiting_ready"
	case PhaseCounting:
		return "counting"
	case PhaseSelecting:
		return "selecting"
	case PhaseResolving:
		return "resolving"
	case PhaseEnded:
		return "ended"
	}
	return "unknown"
}

// TieMarker is recorded as the round winner when no points are awarded.
const TieMarker = "Tie (no points awarded)"

// Provider resolves creature names and classifications. The dex client
// implements it.
type Provider interface {
	Classifier
	Lookup(ctx context.Context, name string) (*Creature, error)
}

// Player identifies a match participant at creation time.
type Player struct {
	ID    string
	Name  string
	IsBot bool
}

// participant is the per-player mutable state within one match. The
// per-round fields (ready, selection) are always reset together.
type participant struct {
	id        string
	name      string
	ready     bool
	selection *Creature
	score     int
}

// RoundRecord is one resolved round, appended to the match history.
type RoundRecord struct {
	Creatures []string  `json:"creatures"`
	Scores    []float64 `json:"scores"`
	Winner    string    `json:"winner"`
}

// Result is the write-once snapshot taken when a match ends.
type Result struct {
	MatchID     string
	ChannelID   string
	Variant     Variant
	Rounds      int
	PlayerIDs   []string
	PlayerNames []string
	Scores      []int
	WinnerID    string
	WinnerName  string
	LoserIDs    []string
	IsTriple    bool
	History     []RoundRecord
	EndedAt     time.Time
}

// Settings are the pacing knobs of a match. Tests shrink the durations;
// production uses DefaultSettings.
type Settings struct {
	CountdownTicks    int
	CountdownInterval time.Duration
	SelectionCooldown time.Duration
	RevealDelay       time.Duration
	WinnerDelay       time.Duration
	ShowdownDuration  time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		CountdownTicks:    3,
		CountdownInterval: time.Second,
		SelectionCooldown: 3 * time.Second,
		RevealDelay:       time.Second,
		WinnerDelay:       2 * time.Second,
		ShowdownDuration:  7 * time.Second,
	}
}

// Renderer produces the battle imagery attached to round results. Purely
// presentational; a nil renderer downgrades to text-only results.
type Renderer interface {
	VersusCard(creatures []*Creature, playerNames []string, scores []float64) ([]byte, error)
}

// Match orchestrates one best-of-N duel end to end. Ready acknowledgments
// and creature submissions arrive from independent actors at arbitrary
// times; every transition is serialized behind mu, so acceptance of a
// submission, the used-set update and the all-submitted check form one
// atomic unit per participant action.
type Match struct {
	ID        string
	ChannelID string
	Variant   Variant
	Rounds    int

	mu             sync.Mutex
	phase          Phase
	participants   []*participant
	used           map[string]struct{}
	round          int
	history        []RoundRecord
	lastSelection  time.Time
	lastActivity   time.Time
	readyMessageID string
	ended          bool

	settings Settings
	now      func() time.Time
	platform platform.Messenger
	dex      Provider
	renderer Renderer
	onEnd    func(*Result)
}

// ValidateChallenge enforces the structural rules: 2 or 3 distinct human
// players and an odd best-of count. Callers check this before provisioning
// anything on the platform.
func ValidateChallenge(players []Player, rounds int) error {
	if rounds != 3 && rounds != 5 && rounds != 7 {
		return ErrInvalidRounds
	}
	if len(players) != 2 && len(players) != 3 {
		return ErrPlayerCount
	}

	challenger := players[0]
	seen := map[string]struct{}{challenger.ID: {}}
	for _, opponent := range players[1:] {
		if opponent.ID == challenger.ID {
			return ErrSelfDuel
		}
		if _, dup := seen[opponent.ID]; dup {
			return ErrDuplicateOpponent
		}
		seen[opponent.ID] = struct{}{}
	}
	for _, p := range players {
		if p.IsBot {
			return ErrBotOpponent
		}
	}
	return nil
}

// NewMatch builds a validated match in AwaitingReady. Structural violations
// fail fast; no match object is created.
func NewMatch(channelID string, players []Player, rounds int, variant Variant, dex Provider, messenger platform.Messenger, settings Settings, onEnd func(*Result)) (*Match, error) {
	if err := ValidateChallenge(players, rounds); err != nil {
		return nil, err
	}

	m := &Match{
		ID:        uuid.New().String(),
		ChannelID: channelID,
		Variant:   variant,
		Rounds:    rounds,
		phase:     PhaseAwaitingReady,
		used:      make(map[string]struct{}),
		settings:  settings,
		now:       time.Now,
		platform:  messenger,
		dex:       dex,
		onEnd:     onEnd,
	}
	for _, p := range players {
		m.participants = append(m.participants, &participant{id: p.ID, name: p.Name})
	}
	m.lastActivity = m.now()
	return m, nil
}

// SetRenderer attaches a battle-card renderer.
func (m *Match) SetRenderer(r Renderer) {
	m.renderer = r
}

// SetClock overrides the cooldown clock. Tests only.
func (m *Match) SetClock(now func() time.Time) {
	m.now = now
}

func (m *Match) IsTriple() bool {
	return len(m.participants) == 3
}

func (m *Match) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

func (m *Match) Ended() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ended
}

// Scores reports the current per-player scores keyed by player ID.
func (m *Match) Scores() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	scores := make(map[string]int, len(m.participants))
	for _, p := range m.participants {
		scores[p.id] = p.score
	}
	return scores
}

// History returns a copy of the resolved-round log.
func (m *Match) History() []RoundRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := make([]RoundRecord, len(m.history))
	copy(history, m.history)
	return history
}

// Round reports the zero-based index of the next round to resolve.
func (m *Match) Round() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.round
}

// LastActivity is the time of the last inbound event this match processed.
func (m *Match) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// PlayerIDs lists the participants in seat order.
func (m *Match) PlayerIDs() []string {
	ids := make([]string, len(m.participants))
	for i, p := range m.participants {
		ids[i] = p.id
	}
	return ids
}

// winThreshold is the score that decides the match: the majority of the
// target round count.
func (m *Match) winThreshold() int {
	return m.Rounds/2 + 1
}

// Dispatch routes one inbound platform event into the state machine.
func (m *Match) Dispatch(ctx context.Context, event *platform.Event) {
	m.mu.Lock()
	m.lastActivity = m.now()
	m.mu.Unlock()

	switch event.Kind {
	case platform.EventReactionAdded:
		if event.Emoji == platform.ReadyEmoji {
			m.HandleReady(ctx, event.ActorID)
		}
	case platform.EventMessagePosted:
		m.HandleSubmission(ctx, event.ActorID, event.MessageID, event.Content)
	}
}

// Begin posts the welcome message and the first ready check.
func (m *Match) Begin(ctx context.Context) {
	if _, err := m.platform.SendMessage(ctx, m.ChannelID, m.welcomeText()); err != nil {
		slog.Warn("Duel : welcome message failed", "channel_id", m.ChannelID, "error", err)
	}
	m.postReadyCheck(ctx, "**READY?**")
}

// HandleReady records one ready acknowledgment. Re-acknowledging is a no-op,
// and the transition to Counting happens at most once per round: the phase
// flips under the lock, so a second completing acknowledgment cannot start a
// second countdown.
func (m *Match) HandleReady(ctx context.Context, actorID string) {
	m.mu.Lock()
	if m.ended || m.phase != PhaseAwaitingReady {
		m.mu.Unlock()
		return
	}
	p := m.participantByID(actorID)
	if p == nil {
		m.mu.Unlock()
		return
	}

	p.ready = true

	all := true
	for _, p := range m.participants {
		if !p.ready {
			all = false
			break
		}
	}
	if all {
		m.phase = PhaseCounting
	}

	text := m.readyCheckTextLocked("**READY?**")
	channel_id, message_id := m.ChannelID, m.readyMessageID
	m.mu.Unlock()

	m.platform.EditMessage(ctx, channel_id, message_id, text)

	if all {
		go m.runCountdown(ctx)
	}
}

// runCountdown is fixed and non-cancellable once started; further ready
// events are ignored because the phase already left AwaitingReady.
func (m *Match) runCountdown(ctx context.Context) {
	m.platform.SendMessage(ctx, m.ChannelID, "All players are ready! Starting in...")
	for i := m.settings.CountdownTicks; i > 0; i-- {
		m.platform.SendMessage(ctx, m.ChannelID, fmt.Sprintf("**%d...**", i))
		time.Sleep(m.settings.CountdownInterval)
	}
	m.platform.SendMessage(ctx, m.ChannelID, fmt.Sprintf(
		"**GO!**\n\nAll players, please send your creature's name!\n\n**Duel Type: %s**\nYour selection will be hidden from your opponents.",
		m.Variant.Label()))

	m.mu.Lock()
	for _, p := range m.participants {
		p.ready = false
	}
	m.phase = PhaseSelecting
	m.mu.Unlock()
}

// HandleSubmission processes one creature submission. The lock is held for
// the whole path: cooldown read-compare-write, dex resolution, eligibility,
// used-set update and the all-submitted check must not interleave between
// participants.
func (m *Match) HandleSubmission(ctx context.Context, actorID, messageID, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ended || m.phase != PhaseSelecting {
		return
	}
	p := m.participantByID(actorID)
	if p == nil {
		return
	}

	// Anti-spam: within the shared cooldown window the submission is dropped
	// with no penalty; the player must resubmit after the window.
	now := m.now()
	if !m.lastSelection.IsZero() && now.Sub(m.lastSelection) < m.settings.SelectionCooldown {
		return
	}

	// Hide the selection from opponents immediately. Best-effort: a failed
	// delete must not block the selection pipeline.
	m.platform.DeleteMessage(ctx, m.ChannelID, messageID)

	if p.selection != nil {
		return
	}

	creature, err := m.dex.Lookup(ctx, content)
	if err != nil {
		// Recoverable: the turn is not consumed and the cooldown not charged.
		m.platform.Whisper(ctx, m.ChannelID, p.id,
			"I couldn't find that creature. Please try again.\n\nUse forms like: `Deoxys Attack`, `Giratina Origin`, etc.")
		return
	}

	if ok, reason := IsEligible(ctx, creature, m.Variant, m.used, m.dex); !ok {
		m.penalizeIneligibleLocked(ctx, p, reason)
		return
	}

	m.used[creature.UsedKey()] = struct{}{}
	p.selection = creature
	m.lastSelection = now

	for _, other := range m.participants {
		if other.selection == nil {
			return
		}
	}
	m.phase = PhaseResolving
	go m.resolveRound(ctx)
}

// penalizeIneligibleLocked awards every opponent a point, abandons the round
// without recording history or advancing the round index, and either ends the
// match or loops back to a fresh ready check. Caller holds mu.
func (m *Match) penalizeIneligibleLocked(ctx context.Context, offender *participant, reason string) {
	for _, p := range m.participants {
		if p != offender {
			p.score++
		}
	}

	m.platform.SendMessage(ctx, m.ChannelID, fmt.Sprintf(
		"❌ %s selected an invalid creature for %s duel!\n**All opponents gain 1 point!**\n\nReason: %s",
		offender.name, m.Variant.Label(), reason))

	for _, p := range m.participants {
		if p.score >= m.winThreshold() {
			result := m.endLocked()
			go m.finale(ctx, result)
			return
		}
	}

	m.resetRoundLocked()
	go m.postReadyCheck(ctx, "**READY FOR NEXT ROUND?**")
}

// resetRoundLocked clears every per-round mutable field together and reopens
// the ready check. Caller holds mu.
func (m *Match) resetRoundLocked() {
	for _, p := range m.participants {
		p.ready = false
		p.selection = nil
	}
	m.phase = PhaseAwaitingReady
}

// resolveRound scores the selections, applies the outcome, then either ends
// the match or resets for the next round.
func (m *Match) resolveRound(ctx context.Context) {
	m.mu.Lock()

	creatures := make([]*Creature, len(m.participants))
	names := make([]string, len(m.participants))
	playerNames := make([]string, len(m.participants))
	for i, p := range m.participants {
		creatures[i] = p.selection
		names[i] = p.selection.Name
		playerNames[i] = p.name
	}

	var scores []float64
	if m.IsTriple() {
		triple := TripleBattleScores([3]*Creature{creatures[0], creatures[1], creatures[2]})
		scores = triple[:]
	} else {
		scoreA, scoreB := BattleScore(creatures[0], creatures[1])
		scores = []float64{scoreA, scoreB}
	}

	winner_idx, tied := roundWinner(scores)

	record := RoundRecord{Creatures: names, Scores: scores, Winner: TieMarker}
	var winnerName, winnerCreature string
	if !tied {
		record.Winner = m.participants[winner_idx].name
		m.participants[winner_idx].score++
		winnerName = m.participants[winner_idx].name
		winnerCreature = names[winner_idx]
	}
	m.history = append(m.history, record)
	m.round++

	finished := false
	for _, p := range m.participants {
		if p.score >= m.winThreshold() {
			finished = true
			break
		}
	}

	round_number := m.round
	scoreLine := m.scoreLineLocked()
	m.mu.Unlock()

	// Brief pause for suspense; pacing only.
	time.Sleep(m.settings.RevealDelay)

	m.postRoundResult(ctx, round_number, creatures, playerNames, names, scores)

	time.Sleep(m.settings.WinnerDelay)

	if tied {
		m.platform.SendMessage(ctx, m.ChannelID, "**It's a tie!** No points awarded this round.")
	} else {
		m.platform.SendMessage(ctx, m.ChannelID, fmt.Sprintf(
			"🏆 **Round Winner!**\n%s wins this round with **%s**!", winnerName, winnerCreature))
	}

	m.platform.SendMessage(ctx, m.ChannelID, scoreLine)

	if finished {
		m.mu.Lock()
		result := m.endLocked()
		m.mu.Unlock()
		m.finale(ctx, result)
		return
	}

	m.mu.Lock()
	m.resetRoundLocked()
	m.mu.Unlock()
	m.postReadyCheck(ctx, "**READY FOR NEXT ROUND?**")
}

func (m *Match) postRoundResult(ctx context.Context, round int, creatures []*Creature, playerNames, names []string, scores []float64) {
	var parts []string
	for i := range names {
		parts = append(parts, fmt.Sprintf("**%s** (Battle Score: %.1f)", names[i], scores[i]))
	}
	text := fmt.Sprintf("**Round %d Results**\n%s", round, strings.Join(parts, " vs "))

	if m.renderer != nil {
		png, err := m.renderer.VersusCard(creatures, playerNames, scores)
		if err == nil {
			m.platform.UploadImage(ctx, m.ChannelID, text, "vs_battle.png", png)
			return
		}
		slog.Warn("Duel : versus card rendering failed", "match_id", m.ID, "error", err)
	}
	m.platform.SendMessage(ctx, m.ChannelID, text)
}

// endLocked flips the match into its terminal phase and snapshots the result.
// Idempotent guard: once ended, inbound events are ignored. Caller holds mu.
func (m *Match) endLocked() *Result {
	m.phase = PhaseEnded
	m.ended = true

	winner := m.participants[0]
	for _, p := range m.participants[1:] {
		if p.score > winner.score {
			winner = p
		}
	}

	result := &Result{
		MatchID:    m.ID,
		ChannelID:  m.ChannelID,
		Variant:    m.Variant,
		Rounds:     m.Rounds,
		WinnerID:   winner.id,
		WinnerName: winner.name,
		IsTriple:   m.IsTriple(),
		History:    append([]RoundRecord(nil), m.history...),
		EndedAt:    m.now(),
	}
	for _, p := range m.participants {
		result.PlayerIDs = append(result.PlayerIDs, p.id)
		result.PlayerNames = append(result.PlayerNames, p.name)
		result.Scores = append(result.Scores, p.score)
		if p != winner {
			result.LoserIDs = append(result.LoserIDs, p.id)
		}
	}
	return result
}

// finale runs the end-of-match ceremony: final score, champion summary,
// showdown window, channel lockdown and rename, then the end hook.
func (m *Match) finale(ctx context.Context, result *Result) {
	m.platform.SendMessage(ctx, m.ChannelID, "# FINAL SCORE: "+formatScores(result.Scores))

	m.platform.SendMessage(ctx, m.ChannelID, fmt.Sprintf(
		"🏆 **Duel Champion!** 🏆\n%s has won the duel!\nFinal Score: %s\nDuel Type: %s",
		result.WinnerName, formatScores(result.Scores), result.Variant.Label()))

	m.platform.SendMessage(ctx, m.ChannelID, matchSummaryText(result))

	m.platform.SendMessage(ctx, m.ChannelID,
		"🎤 **SHOWDOWN MODE!** 🎤\n\nYou have 7 seconds to trash talk each other!\n\n**GO!**")
	m.platform.SetChannelWritable(ctx, m.ChannelID, result.PlayerIDs, true)
	time.Sleep(m.settings.ShowdownDuration)
	m.platform.SetChannelWritable(ctx, m.ChannelID, result.PlayerIDs, false)
	m.platform.SendMessage(ctx, m.ChannelID, "⏰ **Showdown mode ended!** The channel is now locked for new messages.")

	m.platform.RenameChannel(ctx, m.ChannelID, completedChannelName(result))

	if m.onEnd != nil {
		m.onEnd(result)
	}
}

func (m *Match) postReadyCheck(ctx context.Context, header string) {
	m.mu.Lock()
	text := m.readyCheckTextLocked(header)
	channel_id := m.ChannelID
	m.mu.Unlock()

	message_id, err := m.platform.AttachReadyCheck(ctx, channel_id, text)
	if err != nil {
		slog.Warn("Duel : ready check failed", "channel_id", channel_id, "error", err)
		return
	}

	m.mu.Lock()
	m.readyMessageID = message_id
	m.mu.Unlock()
}

func (m *Match) participantByID(id string) *participant {
	for _, p := range m.participants {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (m *Match) readyCheckTextLocked(header string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	for _, p := range m.participants {
		mark := "❌"
		if p.ready {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s: %s\n", p.name, mark)
	}
	return b.String()
}

func (m *Match) scoreLineLocked() string {
	scores := make([]int, len(m.participants))
	for i, p := range m.participants {
		scores[i] = p.score
	}
	return "# " + formatScores(scores)
}

func (m *Match) welcomeText() string {
	names := make([]string, len(m.participants))
	for i, p := range m.participants {
		names[i] = p.name
	}
	title := "🎉 Creature 1v1 Duel 🎉"
	if m.IsTriple() {
		title = "🎉 Creature Triple Duel 🎉"
	}
	return fmt.Sprintf(
		"%s\nPlayers: %s\nFormat: Best of %d rounds\nDuel Type: %s\n\n"+
			"How to Play:\n"+
			"1. All players react with %s when ready\n"+
			"2. When prompted, send a creature name (hidden from opponents)\n"+
			"3. Battle scores are calculated from type advantages\n"+
			"4. Highest battle score wins the round!\n\n"+
			"Selections are hidden until all players have chosen.",
		title, strings.Join(names, " vs "), m.Rounds, m.Variant.Label(), platform.ReadyEmoji)
}

func matchSummaryText(result *Result) string {
	var b strings.Builder
	b.WriteString("📊 **Duel Summary**\n")
	fmt.Fprintf(&b, "Complete history of %s\n", strings.Join(result.PlayerNames, " vs "))
	for i, round := range result.History {
		fmt.Fprintf(&b, "\n**Round %d**\n", i+1)
		for j, name := range round.Creatures {
			fmt.Fprintf(&b, "%s: %s (%.1f)\n", result.PlayerNames[j], name, round.Scores[j])
		}
		fmt.Fprintf(&b, "Winner: %s\n", round.Winner)
	}
	b.WriteString("\n**Final Result**\n")
	for i, name := range result.PlayerNames {
		fmt.Fprintf(&b, "%s: %d\n", name, result.Scores[i])
	}
	fmt.Fprintf(&b, "\nDuel Type: %s", result.Variant.Label())
	return b.String()
}

func completedChannelName(result *Result) string {
	prefix := "completed"
	if result.IsTriple {
		prefix = "completed-triple"
	}
	return prefix + "-" + strings.ToLower(strings.Join(result.PlayerNames, "-vs-"))
}

// roundWinner picks the highest score; a shared maximum is a no-point tie.
func roundWinner(scores []float64) (int, bool) {
	winner_idx := 0
	tied := false
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[winner_idx] {
			winner_idx = i
			tied = false
		} else if scores[i] == scores[winner_idx] {
			tied = true
		}
	}
	return winner_idx, tied
}

func formatScores(scores []int) string {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, " - ")
}
