package domain

import "fmt"

// TrickOutcome reports the effect of an accepted play.
type TrickOutcome struct {
	Play         Play
	Resolved     bool     // the play completed the trick
	Trick        []Play   // the completed trick, set when Resolved
	Lead         Card     // first card of the trick
	Winner       Play     // set when Resolved
	Fallback     bool     // winner chosen by the unreachable first-play fallback
	NextSeat     int      // seat to act next
	NextPlayer   PlayerID // occupant of NextSeat; empty once the hand is over
	HandComplete bool
}

// TrickEngine drives turn rotation and trick resolution for one hand.
type TrickEngine struct {
	players int
	trump   Suit
	lead    int
	current int
	trick   []Play
	played  int // completed tricks
}

// NewTrickEngine starts play with leader opening the first trick.
func NewTrickEngine(players int, trump Suit, leader int) *TrickEngine {
	return &TrickEngine{
		players: players,
		trump:   trump,
		lead:    leader,
		current: leader,
		trick:   make([]Play, 0, players),
	}
}

// Current returns the seat expected to play next.
func (e *TrickEngine) Current() int { return e.current }

// Leader returns the seat that opened the trick in progress.
func (e *TrickEngine) Leader() int { return e.lead }

// TricksPlayed returns the number of resolved tricks.
func (e *TrickEngine) TricksPlayed() int { return e.played }

// Trick returns a copy of the trick in progress.
func (e *TrickEngine) Trick() []Play {
	return append([]Play(nil), e.trick...)
}

// ValidPlays returns p's legal cards against the trick in progress.
func (e *TrickEngine) ValidPlays(p *Player) []Card {
	return ValidPlays(p.Hand, e.trick)
}

// Play applies p playing card. Out-of-turn and illegal cards are rejected with
// ErrIllegalMove and leave all state unchanged.
func (e *TrickEngine) Play(p *Player, card Card) (TrickOutcome, error) {
	if p.Seat != e.current {
		return TrickOutcome{}, fmt.Errorf("%w: seat %d played out of turn, seat %d to act", ErrIllegalMove, p.Seat, e.current)
	}
	if !containsCard(e.ValidPlays(p), card) {
		if !containsCard(p.Hand, card) {
			return TrickOutcome{}, fmt.Errorf("%w: %s is not in hand", ErrIllegalMove, card)
		}
		return TrickOutcome{}, fmt.Errorf("%w: must follow %s", ErrIllegalMove, e.trick[0].Card.Suit)
	}

	removeCard(&p.Hand, card)
	play := Play{Player: p.ID, Seat: p.Seat, Card: card}
	e.trick = append(e.trick, play)
	out := TrickOutcome{Play: play, Lead: e.trick[0].Card}

	if len(e.trick) < e.players {
		e.current = nextSeat(e.current, e.players)
		out.NextSeat = e.current
		return out, nil
	}

	winner, fallback := EvaluateTrick(e.trick, e.trump)
	out.Resolved = true
	out.Trick = e.Trick()
	out.Winner = winner
	out.Fallback = fallback
	out.NextSeat = winner.Seat

	e.trick = make([]Play, 0, e.players)
	e.lead = winner.Seat
	e.current = winner.Seat
	e.played++
	return out, nil
}

// trickCards extracts the cards of a trick.
func trickCards(plays []Play) []Card {
	cards := make([]Card, len(plays))
	for i, p := range plays {
		cards[i] = p.Card
	}
	return cards
}
