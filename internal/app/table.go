package app

import (
	"fmt"
	"math/rand"
	"slices"
	"sync"

	"github.com/google/uuid"

	"jacks/internal/domain"
)

// Table is the lobby and game lifecycle for one channel. The master owns the
// table: only they may kick, cancel or start a game. Running totals carry over
// from one game to the next.
type Table struct {
	ID        string
	ChannelID string
	Master    string

	mu     sync.Mutex
	trump  domain.Suit
	rng    *rand.Rand
	roster []string
	game   *domain.Game
	totals map[string]int
}

func newTable(channelID, master string, trump domain.Suit, rng *rand.Rand) *Table {
	return &Table{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		Master:    master,
		trump:     trump,
		rng:       rng,
		totals:    make(map[string]int),
	}
}

// NewTable constructs a standalone table outside any Registry.
func NewTable(channelID, master string, trump domain.Suit, rng *rand.Rand) *Table {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return newTable(channelID, master, trump, rng)
}

// inGame reports whether a hand is being passed or played. Callers hold mu.
func (t *Table) inGame() bool {
	if t.game == nil {
		return false
	}
	ph := t.game.Phase()
	return ph == domain.PhasePassing || ph == domain.PhasePlaying
}

func (t *Table) seatOf(user string) int {
	return slices.Index(t.roster, user)
}

// Join adds user to the roster.
func (t *Table) Join(user string) ([]Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inGame() {
		return nil, ErrGameInProgress
	}
	if t.seatOf(user) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyJoined, user)
	}
	if len(t.roster) >= MaxSeats {
		return nil, ErrTableFull
	}
	t.roster = append(t.roster, user)
	return []Event{{
		Kind:    EventPlayerJoined,
		Payload: PlayerJoinedPayload{UserID: user, Seat: len(t.roster) - 1},
	}}, nil
}

// Leave removes user from the roster. The master cannot leave; they cancel.
func (t *Table) Leave(user string) ([]Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if user == t.Master {
		return nil, ErrMasterMustCancel
	}
	seat := t.seatOf(user)
	if seat < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotJoined, user)
	}
	if t.inGame() {
		return nil, ErrGameInProgress
	}
	t.roster = slices.Delete(t.roster, seat, seat+1)
	return []Event{{Kind: EventPlayerLeft, Payload: PlayerLeftPayload{UserID: user}}}, nil
}

// Kick removes target from the roster on the master's behalf.
func (t *Table) Kick(actor, target string) ([]Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if actor != t.Master {
		return nil, ErrNotMaster
	}
	if target == t.Master {
		return nil, ErrCannotKickSelf
	}
	seat := t.seatOf(target)
	if seat < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotJoined, target)
	}
	if t.inGame() {
		return nil, ErrGameInProgress
	}
	t.roster = slices.Delete(t.roster, seat, seat+1)
	return []Event{{
		Kind:    EventPlayerKicked,
		Payload: PlayerKickedPayload{UserID: target, KickedBy: actor},
	}}, nil
}

// Cancel ends the table. The caller is expected to drop it from its Registry.
func (t *Table) Cancel(actor string) ([]Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if actor != t.Master {
		return nil, ErrNotMaster
	}
	t.game = nil
	t.roster = nil
	return []Event{{Kind: EventLobbyCancelled, Payload: LobbyCancelledPayload{ChannelID: t.ChannelID}}}, nil
}

// Ready deals a new game for the current roster in join order.
func (t *Table) Ready(actor string) ([]Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if actor != t.Master {
		return nil, ErrNotMaster
	}
	if t.inGame() {
		return nil, ErrGameInProgress
	}
	if n := len(t.roster); n < MinPlayersToStartGame || n > MaxSeats {
		return nil, fmt.Errorf("%w: have %d", ErrBadPlayerCount, n)
	}

	ids := make([]domain.PlayerID, len(t.roster))
	scores := make(map[domain.PlayerID]int, len(t.roster))
	for i, u := range t.roster {
		ids[i] = domain.PlayerID(u)
		scores[ids[i]] = t.totals[u]
	}
	game, err := domain.NewGame(ids,
		domain.WithTrump(t.trump),
		domain.WithRand(t.rng),
		domain.WithScores(scores),
	)
	if err != nil {
		return nil, err
	}
	t.game = game

	events := make([]Event, 0, len(ids)+1)
	events = append(events, Event{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{Players: slices.Clone(t.roster), Trump: t.trump},
	})
	for _, id := range ids {
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{UserID: string(id), Hand: game.Hand(id)},
			Recipients: []string{string(id)},
		})
	}
	return events, nil
}

// OfferPass commits user's three passing cards. The offer that completes the
// barrier also reports every seat's received cards and opens play.
func (t *Table) OfferPass(user string, cards []domain.Card) ([]Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.game == nil {
		return nil, ErrNoGame
	}
	id := domain.PlayerID(user)
	if err := t.game.OfferPass(id, cards); err != nil {
		return nil, err
	}

	waiting := 0
	for _, p := range t.game.Players() {
		if !t.game.HasOffered(p) {
			waiting++
		}
	}
	events := []Event{{
		Kind:    EventPassCommitted,
		Payload: PassCommittedPayload{UserID: user, Waiting: waiting},
	}}
	if t.game.Phase() != domain.PhasePlaying {
		return events, nil
	}

	for _, p := range t.game.Players() {
		events = append(events, Event{
			Kind: EventCardsReceived,
			Payload: CardsReceivedPayload{
				UserID:   string(p),
				Received: t.game.Received(p),
				Hand:     t.game.Hand(p),
			},
			Recipients: []string{string(p)},
		})
	}
	first, _ := t.game.CurrentPlayer()
	events = append(events, Event{
		Kind:    EventPlayingStarted,
		Payload: PlayingStartedPayload{FirstTurnUserID: string(first)},
	})
	return events, nil
}

// PlayCard plays one card for user and reports trick and hand completion.
// Completing the hand folds the scores into the running totals and returns
// the table to the lobby.
func (t *Table) PlayCard(user string, card domain.Card) ([]Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.game == nil {
		return nil, ErrNoGame
	}
	out, err := t.game.PlayCard(domain.PlayerID(user), card)
	if err != nil {
		return nil, err
	}

	events := []Event{{
		Kind: EventCardPlayed,
		Payload: CardPlayedPayload{
			UserID:         user,
			Card:           card,
			NextTurnUserID: string(out.NextPlayer),
		},
	}}
	if out.Resolved {
		events = append(events, Event{
			Kind: EventTrickResolved,
			Payload: TrickResolvedPayload{
				WinnerUserID: string(out.Winner.Player),
				WinningCard:  out.Winner.Card,
				Lead:         out.Lead,
				Trick:        out.Trick,
				Fallback:     out.Fallback,
			},
		})
	}
	if out.HandComplete {
		res, _ := t.game.Result()
		for _, s := range res.Seats {
			t.totals[string(s.Player)] = s.Score
		}
		events = append(events, Event{
			Kind: EventHandCompleted,
			Payload: HandCompletedPayload{
				Trump:  res.Trump,
				Seats:  res.Seats,
				Totals: t.totalsCopy(),
			},
		})
	}
	return events, nil
}

func (t *Table) totalsCopy() map[string]int {
	out := make(map[string]int, len(t.totals))
	for k, v := range t.totals {
		out[k] = v
	}
	return out
}

// Game returns the current or most recently finished game, if any.
func (t *Table) Game() *domain.Game {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game
}

// Roster returns joined users in seat order.
func (t *Table) Roster() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.roster)
}

// Totals returns running scores across every finished game at this table.
func (t *Table) Totals() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalsCopy()
}

// Phase returns PhaseLobby, PhasePassing or PhasePlaying.
func (t *Table) Phase() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase()
}

func (t *Table) phase() string {
	if !t.inGame() {
		return PhaseLobby
	}
	if t.game.Phase() == domain.PhasePassing {
		return PhasePassing
	}
	return PhasePlaying
}

// TableState is a point-in-time view of the table from one user's seat.
type TableState struct {
	TableID         string         `json:"table_id"`
	ChannelID       string         `json:"channel_id"`
	Master          string         `json:"master"`
	Phase           string         `json:"phase"`
	Roster          []string       `json:"roster"`
	Trump           domain.Suit    `json:"trump"`
	Hand            []domain.Card  `json:"hand"`
	Valid           []domain.Card  `json:"valid"`
	Offered         bool           `json:"offered"`
	Trick           []domain.Play  `json:"trick"`
	CurrentTurnUser string         `json:"current_turn_user_id"`
	Totals          map[string]int `json:"totals"`
}

// Snapshot returns the table state as seen by user. Hand and Valid are empty
// for users without a seat in the current game.
func (t *Table) Snapshot(user string) TableState {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := TableState{
		TableID:   t.ID,
		ChannelID: t.ChannelID,
		Master:    t.Master,
		Phase:     t.phase(),
		Roster:    slices.Clone(t.roster),
		Trump:     t.trump,
		Totals:    t.totalsCopy(),
	}
	if !t.inGame() {
		return st
	}
	id := domain.PlayerID(user)
	st.Hand = t.game.Hand(id)
	st.Valid = t.game.ValidPlays(id)
	st.Offered = t.game.HasOffered(id)
	st.Trick = t.game.CurrentTrick()
	if cur, ok := t.game.CurrentPlayer(); ok {
		st.CurrentTurnUser = string(cur)
	}
	return st
}
