package domain

import (
	"fmt"
	"strings"
)

// Suit is one of the four card suits. The numeric order is the display order.
type Suit int

const (
	SuitHearts Suit = iota
	SuitClubs
	SuitDiamonds
	SuitSpades
)

// Suits lists every suit in ascending order.
var Suits = []Suit{SuitHearts, SuitClubs, SuitDiamonds, SuitSpades}

// Rank is a card rank. Jacks has no twos: the lowest rank is three.
type Rank int

const (
	Rank3 Rank = iota
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ
	RankQ
	RankK
	RankA
)

// Ranks lists every rank in ascending order.
var Ranks = []Rank{Rank3, Rank4, Rank5, Rank6, Rank7, Rank8, Rank9, Rank10, RankJ, RankQ, RankK, RankA}

func (s Suit) String() string {
	switch s {
	case SuitHearts:
		return "Hearts"
	case SuitClubs:
		return "Clubs"
	case SuitDiamonds:
		return "Diamonds"
	case SuitSpades:
		return "Spades"
	default:
		return "?"
	}
}

// Letter returns the single-letter code used on the wire ("H", "C", "D", "S").
func (s Suit) Letter() string {
	switch s {
	case SuitHearts:
		return "H"
	case SuitClubs:
		return "C"
	case SuitDiamonds:
		return "D"
	case SuitSpades:
		return "S"
	default:
		return "?"
	}
}

// Symbol returns the unicode suit symbol.
func (s Suit) Symbol() string {
	switch s {
	case SuitHearts:
		return "♥"
	case SuitClubs:
		return "♣"
	case SuitDiamonds:
		return "♦"
	case SuitSpades:
		return "♠"
	default:
		return "?"
	}
}

func (r Rank) String() string {
	switch r {
	case RankJ:
		return "J"
	case RankQ:
		return "Q"
	case RankK:
		return "K"
	case RankA:
		return "A"
	}
	if r >= Rank3 && r <= Rank10 {
		return fmt.Sprintf("%d", int(r)+3)
	}
	return "?"
}

func (s Suit) MarshalText() ([]byte, error) {
	return []byte(s.Letter()), nil
}

func (s *Suit) UnmarshalText(b []byte) error {
	parsed, err := ParseSuit(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSuit accepts a suit letter or name, case-insensitively.
func ParseSuit(s string) (Suit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "H", "HEARTS":
		return SuitHearts, nil
	case "C", "CLUBS":
		return SuitClubs, nil
	case "D", "DIAMONDS":
		return SuitDiamonds, nil
	case "S", "SPADES":
		return SuitSpades, nil
	default:
		return SuitHearts, fmt.Errorf("invalid suit %q", s)
	}
}

// ParseRank accepts "3".."10", "J", "Q", "K" and "A".
func ParseRank(s string) (Rank, error) {
	for _, r := range Ranks {
		if r.String() == strings.ToUpper(strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return Rank3, fmt.Errorf("invalid rank %q", s)
}

// Card is an immutable playing card. Two cards are equal iff suit and rank match.
type Card struct {
	Suit Suit
	Rank Rank
}

// String renders a card like "10♣" or "J♥".
func (c Card) String() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// Code renders the wire form of a card, rank followed by suit letter: "10C", "JH".
func (c Card) Code() string {
	return c.Rank.String() + c.Suit.Letter()
}

// ParseCard decodes the wire form produced by Card.Code.
func ParseCard(code string) (Card, error) {
	code = strings.TrimSpace(code)
	if len(code) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", code)
	}
	suit, err := ParseSuit(code[len(code)-1:])
	if err != nil {
		return Card{}, err
	}
	rank, err := ParseRank(code[:len(code)-1])
	if err != nil {
		return Card{}, err
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// MarshalText encodes the card in its wire form, so JSON carries "10C".
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.Code()), nil
}

func (c *Card) UnmarshalText(b []byte) error {
	parsed, err := ParseCard(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Less orders cards by suit first, then rank.
func Less(a, b Card) bool {
	if a.Suit != b.Suit {
		return a.Suit < b.Suit
	}
	return a.Rank < b.Rank
}

// GamePhase is the lifecycle stage of a single hand.
type GamePhase int

const (
	PhaseDealing GamePhase = iota
	PhasePassing
	PhasePlaying
	PhaseHandComplete
)

func (p GamePhase) String() string {
	switch p {
	case PhaseDealing:
		return "dealing"
	case PhasePassing:
		return "passing"
	case PhasePlaying:
		return "playing"
	case PhaseHandComplete:
		return "hand_complete"
	default:
		return "unknown"
	}
}

// PlayerID is the stable external reference for a seat's occupant.
type PlayerID string

// Player holds one seat's state for a hand.
type Player struct {
	ID    PlayerID
	Seat  int
	Hand  []Card
	Taken [][]Card // captured tricks, in the order they were won
	Score int
}

// Play is one card contributed to a trick.
type Play struct {
	Player PlayerID `json:"user_id"`
	Seat   int      `json:"seat"`
	Card   Card     `json:"card"`
}

// PlayerScore is a read-only standings row.
type PlayerScore struct {
	Player      PlayerID
	Seat        int
	Score       int
	TricksWon   int
	JacksCaught int
	HandSize    int
}
