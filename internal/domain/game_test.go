package domain

import (
	"errors"
	"math/rand"
	"reflect"
	"runtime"
	"sync"
	"testing"
)

var fourSeats = []PlayerID{"north", "east", "south", "west"}

// newSortedGame deals an unshuffled deck: with four seats, seat 0 holds every
// heart, seat 1 every club, seat 2 every diamond and seat 3 every spade.
func newSortedGame(t *testing.T, opts ...Option) *Game {
	t.Helper()
	g, err := NewGame(fourSeats, append([]Option{WithDeck(NewDeck())}, opts...)...)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return g
}

// passLowest has every seat pass the three lowest cards of its hand.
func passLowest(t *testing.T, g *Game) {
	t.Helper()
	for _, id := range g.Players() {
		if err := g.OfferPass(id, g.Hand(id)[:3]); err != nil {
			t.Fatalf("OfferPass(%s): %v", id, err)
		}
	}
}

func TestNewGamePlayerCount(t *testing.T) {
	tests := []struct {
		name    string
		players []PlayerID
		wantErr bool
	}{
		{name: "two", players: []PlayerID{"a", "b"}, wantErr: true},
		{name: "three", players: []PlayerID{"a", "b", "c"}},
		{name: "four", players: []PlayerID{"a", "b", "c", "d"}},
		{name: "five", players: []PlayerID{"a", "b", "c", "d", "e"}, wantErr: true},
		{name: "duplicate seat", players: []PlayerID{"a", "b", "a"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGame(tt.players, WithRand(rand.New(rand.NewSource(1))))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPlayerCount) {
					t.Fatalf("NewGame() error = %v, want ErrInvalidPlayerCount", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewGame() error = %v", err)
			}
			if g.Phase() != PhasePassing {
				t.Fatalf("phase = %s, want passing", g.Phase())
			}
			want := DeckSize / len(tt.players)
			for _, id := range tt.players {
				if got := len(g.Hand(id)); got != want {
					t.Fatalf("hand of %s = %d cards, want %d", id, got, want)
				}
			}
			if g.CardsAccounted() != DeckSize {
				t.Fatalf("cards accounted = %d", g.CardsAccounted())
			}
		})
	}
}

func TestNewGameRejectsBadDeck(t *testing.T) {
	deck := NewDeck()
	deck[1] = deck[0]
	if _, err := NewGame(fourSeats, WithDeck(deck)); err == nil {
		t.Fatalf("expected error for repeated card")
	}
}

func TestOfferPassDistributesToNextSeat(t *testing.T) {
	g := newSortedGame(t)
	passLowest(t, g)

	if g.Phase() != PhasePlaying {
		t.Fatalf("phase = %s, want playing", g.Phase())
	}
	for i, id := range fourSeats {
		hand := g.Hand(id)
		if len(hand) != 12 {
			t.Fatalf("%s hand size = %d, want 12", id, len(hand))
		}
		from := Suits[(i+3)%4]
		want := []Card{{Suit: from, Rank: Rank3}, {Suit: from, Rank: Rank4}, {Suit: from, Rank: Rank5}}
		if got := g.Received(id); !reflect.DeepEqual(got, want) {
			t.Fatalf("%s received %v, want %v", id, got, want)
		}
		if !g.HasOffered(id) {
			t.Fatalf("%s should be marked as offered", id)
		}
	}
	if g.CardsAccounted() != DeckSize {
		t.Fatalf("cards accounted = %d", g.CardsAccounted())
	}
}

func TestOfferPassErrors(t *testing.T) {
	g := newSortedGame(t)

	if err := g.OfferPass("north", cards("3H", "4H")); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("two cards: %v", err)
	}
	if err := g.OfferPass("north", cards("3H", "4H", "5H", "6H")); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("four cards: %v", err)
	}
	if err := g.OfferPass("north", cards("3H", "4H", "3C")); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("card not in hand: %v", err)
	}
	if err := g.OfferPass("nobody", cards("3H", "4H", "5H")); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("unknown player: %v", err)
	}
	if len(g.Hand("north")) != 12 || g.HasOffered("north") {
		t.Fatalf("rejected offers changed state")
	}

	if err := g.OfferPass("north", cards("3H", "4H", "5H")); err != nil {
		t.Fatalf("valid offer: %v", err)
	}
	if err := g.OfferPass("north", cards("6H", "7H", "8H")); !errors.Is(err, ErrDuplicateOffer) {
		t.Fatalf("re-offer: %v", err)
	}
	if len(g.Hand("north")) != 9 {
		t.Fatalf("north hand = %d, want 9", len(g.Hand("north")))
	}
	if g.CardsAccounted() != DeckSize {
		t.Fatalf("cards accounted = %d", g.CardsAccounted())
	}

	if _, err := g.PlayCard("north", c("6H")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("play during passing: %v", err)
	}
	if g.ValidPlays("north") != nil {
		t.Fatalf("ValidPlays during passing should be empty")
	}
}

func TestOfferPassAfterBarrierIsDuplicate(t *testing.T) {
	g := newSortedGame(t)
	passLowest(t, g)
	before := g.Hand("east")

	err := g.OfferPass("east", before[:3])
	if !errors.Is(err, ErrDuplicateOffer) {
		t.Fatalf("offer after barrier = %v, want ErrDuplicateOffer", err)
	}
	if !reflect.DeepEqual(g.Hand("east"), before) {
		t.Fatalf("second distribution happened")
	}
}

func TestConcurrentOffersDistributeOnce(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		g, err := NewGame(fourSeats, WithRand(rand.New(rand.NewSource(seed))))
		if err != nil {
			t.Fatalf("NewGame: %v", err)
		}
		offers := make(map[PlayerID][]Card)
		for _, id := range fourSeats {
			offers[id] = g.Hand(id)[9:]
		}

		var wg sync.WaitGroup
		errs := make(chan error, len(fourSeats)*2)
		for _, id := range fourSeats {
			for attempt := 0; attempt < 2; attempt++ {
				wg.Add(1)
				go func(id PlayerID) {
					defer wg.Done()
					errs <- g.OfferPass(id, offers[id])
				}(id)
			}
		}
		wg.Wait()
		close(errs)

		accepted := 0
		for err := range errs {
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, ErrDuplicateOffer):
			default:
				t.Fatalf("seed %d: unexpected error %v", seed, err)
			}
		}
		if accepted != len(fourSeats) {
			t.Fatalf("seed %d: accepted %d offers, want %d", seed, accepted, len(fourSeats))
		}
		if g.Phase() != PhasePlaying {
			t.Fatalf("seed %d: phase = %s", seed, g.Phase())
		}
		for i, id := range fourSeats {
			prev := fourSeats[(i+3)%4]
			if !reflect.DeepEqual(g.Received(id), SortedCopy(offers[prev])) {
				t.Fatalf("seed %d: %s received %v, want %v", seed, id, g.Received(id), offers[prev])
			}
			if len(g.Hand(id)) != 12 {
				t.Fatalf("seed %d: %s has %d cards", seed, id, len(g.Hand(id)))
			}
		}
	}
}

func TestPlayCardTurnAndFollowSuit(t *testing.T) {
	g := newSortedGame(t, WithTrump(SuitClubs))
	passLowest(t, g)

	if cur, ok := g.CurrentPlayer(); !ok || cur != "north" {
		t.Fatalf("current = %q, want north", cur)
	}

	// east holds 3H 4H 5H after passing and must follow hearts.
	if _, err := g.PlayCard("east", c("3H")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("out of turn: %v", err)
	}
	if len(g.CurrentTrick()) != 0 {
		t.Fatalf("rejected play reached the trick")
	}
	if cur, _ := g.CurrentPlayer(); cur != "north" {
		t.Fatalf("current moved to %q", cur)
	}
	if _, err := g.PlayCard("north", c("3C")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("card not in hand: %v", err)
	}

	out, err := g.PlayCard("north", c("6H"))
	if err != nil {
		t.Fatalf("lead: %v", err)
	}
	if out.Resolved || out.NextPlayer != "east" || out.Lead != c("6H") {
		t.Fatalf("unexpected outcome after lead: %+v", out)
	}

	if got := g.ValidPlays("east"); !reflect.DeepEqual(got, cards("3H", "4H", "5H")) {
		t.Fatalf("east ValidPlays = %v", got)
	}
	if _, err := g.PlayCard("east", c("AC")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("failing to follow suit: %v", err)
	}
	if _, err := g.PlayCard("east", c("5H")); err != nil {
		t.Fatalf("east follow: %v", err)
	}

	// south is void in hearts and trumps with a club; west discards a spade.
	if got := len(g.ValidPlays("south")); got != 12 {
		t.Fatalf("south ValidPlays = %d cards, want 12", got)
	}
	if _, err := g.PlayCard("south", c("3C")); err != nil {
		t.Fatalf("south trump: %v", err)
	}
	out, err = g.PlayCard("west", c("AS"))
	if err != nil {
		t.Fatalf("west discard: %v", err)
	}

	if !out.Resolved || out.Winner.Player != "south" || out.Winner.Card != c("3C") || out.Fallback {
		t.Fatalf("unexpected resolution: %+v", out)
	}
	if len(out.Trick) != 4 || out.Lead != c("6H") {
		t.Fatalf("resolved trick = %v", out.Trick)
	}
	if out.NextPlayer != "south" {
		t.Fatalf("winner should lead next, got %q", out.NextPlayer)
	}
	if len(g.CurrentTrick()) != 0 {
		t.Fatalf("trick not reset")
	}
	st := g.Standings()
	if st[2].TricksWon != 1 || st[2].HandSize != 11 {
		t.Fatalf("south standings = %+v", st[2])
	}
	if g.CardsAccounted() != DeckSize {
		t.Fatalf("cards accounted = %d", g.CardsAccounted())
	}
}

// playOut plays the first legal card for whoever is on turn until the hand ends.
func playOut(t *testing.T, g *Game) TrickOutcome {
	t.Helper()
	var last TrickOutcome
	for step := 0; g.Phase() == PhasePlaying; step++ {
		if step > DeckSize {
			t.Fatalf("hand did not terminate")
		}
		id, ok := g.CurrentPlayer()
		if !ok {
			t.Fatalf("no current player while playing")
		}
		valid := g.ValidPlays(id)
		if len(valid) == 0 {
			t.Fatalf("%s has no legal play", id)
		}
		out, err := g.PlayCard(id, valid[0])
		if err != nil {
			t.Fatalf("PlayCard(%s, %s): %v", id, valid[0], err)
		}
		if out.Fallback {
			t.Fatalf("trick resolved by fallback: %+v", out)
		}
		if g.CardsAccounted() != DeckSize {
			t.Fatalf("cards accounted = %d after %s", g.CardsAccounted(), valid[0])
		}
		last = out
	}
	return last
}

func TestFullHandScoresAndCompletes(t *testing.T) {
	tests := []struct {
		name    string
		players []PlayerID
	}{
		{name: "three players", players: []PlayerID{"a", "b", "c"}},
		{name: "four players", players: fourSeats},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGame(tt.players, WithRand(rand.New(rand.NewSource(11))), WithTrump(SuitSpades),
				WithScores(map[PlayerID]int{tt.players[0]: 5}))
			if err != nil {
				t.Fatalf("NewGame: %v", err)
			}
			passLowest(t, g)
			last := playOut(t, g)

			if !last.HandComplete || last.NextPlayer != "" {
				t.Fatalf("last outcome = %+v", last)
			}
			if g.Phase() != PhaseHandComplete {
				t.Fatalf("phase = %s", g.Phase())
			}
			res, ok := g.Result()
			if !ok {
				t.Fatalf("missing hand result")
			}

			tricks, jacks, total := 0, 0, 0
			for i, s := range res.Seats {
				tricks += s.TricksWon
				jacks += s.JacksCaught
				total += s.HandScore
				want := s.TricksWon + s.JacksCaught*JackPenalty(len(tt.players))
				if s.HandScore != want {
					t.Fatalf("seat %d hand score = %d, want %d", i, s.HandScore, want)
				}
			}
			if tricks != DeckSize/len(tt.players) || jacks != 4 {
				t.Fatalf("tricks = %d jacks = %d", tricks, jacks)
			}
			if total != tricks+4*JackPenalty(len(tt.players)) {
				t.Fatalf("total hand score = %d", total)
			}
			if res.Seats[0].Score != 5+res.Seats[0].HandScore {
				t.Fatalf("carried score not applied: %+v", res.Seats[0])
			}

			for _, id := range tt.players {
				if _, err := g.PlayCard(id, Card{}); !errors.Is(err, ErrIllegalMove) {
					t.Fatalf("play after hand complete: %v", err)
				}
			}
			if _, ok := g.CurrentPlayer(); ok {
				t.Fatalf("no one should be on turn after the hand")
			}
		})
	}
}

func TestConcurrentPlaysAreSerialisedByTurn(t *testing.T) {
	g := newSortedGame(t)
	passLowest(t, g)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		order []int
	)
	for seat, id := range fourSeats {
		wg.Add(1)
		go func(seat int, id PlayerID) {
			defer wg.Done()
			hand := g.Hand(id)
			card := hand[len(hand)-1]
			for {
				_, err := g.PlayCard(id, card)
				if err == nil {
					mu.Lock()
					order = append(order, seat)
					mu.Unlock()
					return
				}
				if !errors.Is(err, ErrIllegalMove) {
					t.Errorf("%s: unexpected error %v", id, err)
					return
				}
				runtime.Gosched()
			}
		}(seat, id)
	}
	wg.Wait()

	if !reflect.DeepEqual(order, []int{0, 1, 2, 3}) {
		t.Fatalf("plays accepted in order %v", order)
	}
	tricks := 0
	for _, s := range g.Standings() {
		tricks += s.TricksWon
		if s.HandSize != 11 {
			t.Fatalf("%s hand size = %d", s.Player, s.HandSize)
		}
	}
	if tricks != 1 {
		t.Fatalf("tricks won = %d, want 1", tricks)
	}
	if g.CardsAccounted() != DeckSize {
		t.Fatalf("cards accounted = %d", g.CardsAccounted())
	}
}
