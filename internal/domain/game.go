package domain

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Option configures a Game at construction.
type Option func(*gameOptions)

type gameOptions struct {
	trump  Suit
	rng    *rand.Rand
	deck   []Card
	scores map[PlayerID]int
}

// WithTrump fixes the trump suit for the lifetime of the game. Hearts by default.
func WithTrump(s Suit) Option {
	return func(o *gameOptions) { o.trump = s }
}

// WithRand sets the shuffle source. A time-seeded source is used by default.
func WithRand(rng *rand.Rand) Option {
	return func(o *gameOptions) { o.rng = rng }
}

// WithDeck deals the given cards in order instead of shuffling a fresh deck.
// The deck must be a permutation of NewDeck.
func WithDeck(deck []Card) Option {
	return func(o *gameOptions) { o.deck = append([]Card(nil), deck...) }
}

// WithScores seeds running scores carried over from earlier hands.
func WithScores(scores map[PlayerID]int) Option {
	return func(o *gameOptions) { o.scores = scores }
}

// Game owns one hand of Jacks: deal, passing barrier, trick play and scoring.
// All methods are safe for concurrent use; mutations are serialised.
type Game struct {
	mu sync.RWMutex

	trump    Suit
	phase    GamePhase
	players  []*Player
	seats    map[PlayerID]int
	ledger   *PassLedger
	received [][]Card
	engine   *TrickEngine
	result   *HandResult
}

// NewGame shuffles, deals and opens the passing phase for the given seats.
func NewGame(ids []PlayerID, opts ...Option) (*Game, error) {
	if len(ids) < MinPlayers || len(ids) > MaxPlayers {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPlayerCount, len(ids))
	}
	o := gameOptions{trump: SuitHearts}
	for _, opt := range opts {
		opt(&o)
	}

	g := &Game{
		trump:   o.trump,
		phase:   PhaseDealing,
		players: make([]*Player, len(ids)),
		seats:   make(map[PlayerID]int, len(ids)),
	}
	for i, id := range ids {
		if _, dup := g.seats[id]; dup {
			return nil, fmt.Errorf("%w: %q seated twice", ErrInvalidPlayerCount, id)
		}
		g.seats[id] = i
		g.players[i] = &Player{ID: id, Seat: i, Score: o.scores[id]}
	}

	deck := o.deck
	if deck == nil {
		rng := o.rng
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		deck = Shuffle(NewDeck(), rng)
	}
	if err := checkDeck(deck); err != nil {
		return nil, err
	}
	for i, hand := range Deal(deck, len(ids)) {
		g.players[i].Hand = hand
	}

	g.ledger = NewPassLedger(len(ids))
	g.phase = PhasePassing
	return g, nil
}

func checkDeck(deck []Card) error {
	if len(deck) != DeckSize {
		return fmt.Errorf("deck has %d cards, want %d", len(deck), DeckSize)
	}
	seen := make(map[Card]bool, DeckSize)
	for _, c := range deck {
		if seen[c] {
			return fmt.Errorf("deck repeats %s", c)
		}
		seen[c] = true
	}
	return nil
}

func (g *Game) player(id PlayerID) (*Player, bool) {
	seat, ok := g.seats[id]
	if !ok {
		return nil, false
	}
	return g.players[seat], true
}

// Phase returns the current phase.
func (g *Game) Phase() GamePhase {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.phase
}

// Trump returns the fixed trump suit.
func (g *Game) Trump() Suit {
	return g.trump
}

// Players returns player IDs in seat order.
func (g *Game) Players() []PlayerID {
	out := make([]PlayerID, len(g.players))
	for i, p := range g.players {
		out[i] = p.ID
	}
	return out
}

// Hand returns a sorted copy of the player's hand.
func (g *Game) Hand(id PlayerID) []Card {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.player(id)
	if !ok {
		return nil
	}
	return SortedCopy(p.Hand)
}

// HasOffered reports whether the player has committed a pass this hand.
func (g *Game) HasOffered(id PlayerID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.player(id)
	if !ok {
		return false
	}
	return g.received != nil || g.ledger.Has(p.Seat)
}

// Received returns the cards the player was passed, once passing is done.
func (g *Game) Received(id PlayerID) []Card {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.player(id)
	if !ok || g.received == nil {
		return nil
	}
	return SortedCopy(g.received[p.Seat])
}

// CurrentPlayer returns who acts next during play.
func (g *Game) CurrentPlayer() (PlayerID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.phase != PhasePlaying {
		return "", false
	}
	return g.players[g.engine.Current()].ID, true
}

// CurrentTrick returns the plays of the trick in progress.
func (g *Game) CurrentTrick() []Play {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.engine == nil {
		return nil
	}
	return g.engine.Trick()
}

// ValidPlays returns the player's legal cards. It is empty outside the
// playing phase and for unknown players.
func (g *Game) ValidPlays(id PlayerID) []Card {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.phase != PhasePlaying {
		return nil
	}
	p, ok := g.player(id)
	if !ok {
		return nil
	}
	return g.engine.ValidPlays(p)
}

// OfferPass commits the player's three passing cards. The offer that completes
// the barrier distributes every offer one seat forward and opens play.
func (g *Game) OfferPass(id PlayerID, cards []Card) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.player(id)
	if !ok {
		return fmt.Errorf("%w: unknown player %q", ErrInvalidSelection, id)
	}
	if g.phase != PhasePassing {
		return fmt.Errorf("%w: passing is over", ErrDuplicateOffer)
	}

	complete, err := g.ledger.Offer(p, cards)
	if err != nil || !complete {
		return err
	}

	received, err := g.ledger.Distribute(g.players)
	if err != nil {
		return err
	}
	g.received = received
	g.engine = NewTrickEngine(len(g.players), g.trump, 0)
	g.phase = PhasePlaying
	return nil
}

// PlayCard plays one card for the player. Rejected plays change nothing.
func (g *Game) PlayCard(id PlayerID, card Card) (TrickOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhasePlaying {
		return TrickOutcome{}, fmt.Errorf("%w: not in playing phase (%s)", ErrIllegalMove, g.phase)
	}
	p, ok := g.player(id)
	if !ok {
		return TrickOutcome{}, fmt.Errorf("%w: unknown player %q", ErrIllegalMove, id)
	}

	out, err := g.engine.Play(p, card)
	if err != nil {
		return TrickOutcome{}, err
	}

	if out.Resolved {
		winner := g.players[out.Winner.Seat]
		winner.Taken = append(winner.Taken, trickCards(out.Trick))
		if g.handsEmpty() {
			res := scoreHand(g.players, g.trump)
			g.result = &res
			g.phase = PhaseHandComplete
			out.HandComplete = true
			return out, nil
		}
	}
	out.NextPlayer = g.players[out.NextSeat].ID
	return out, nil
}

func (g *Game) handsEmpty() bool {
	for _, p := range g.players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// Taken returns copies of the tricks the player has captured this hand.
func (g *Game) Taken(id PlayerID) [][]Card {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.player(id)
	if !ok {
		return nil
	}
	out := make([][]Card, len(p.Taken))
	for i, t := range p.Taken {
		out[i] = append([]Card(nil), t...)
	}
	return out
}

// Result returns the scoring summary once the hand is complete.
func (g *Game) Result() (HandResult, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.result == nil {
		return HandResult{}, false
	}
	return *g.result, true
}

// Standings returns a snapshot of every seat's score and progress.
func (g *Game) Standings() []PlayerScore {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]PlayerScore, len(g.players))
	for i, p := range g.players {
		out[i] = PlayerScore{
			Player:      p.ID,
			Seat:        p.Seat,
			Score:       p.Score,
			TricksWon:   len(p.Taken),
			JacksCaught: CountJacks(p.Taken),
			HandSize:    len(p.Hand),
		}
	}
	return out
}

// CardsAccounted counts every card the game holds: hands, pending passes,
// the trick in progress and captured tricks. It is DeckSize throughout a hand.
func (g *Game) CardsAccounted() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := g.ledger.Pending()
	for _, p := range g.players {
		n += len(p.Hand)
		for _, t := range p.Taken {
			n += len(t)
		}
	}
	if g.engine != nil {
		n += len(g.engine.trick)
	}
	return n
}
