package domain

import (
	"math/rand"
	"sort"
)

// NewDeck returns the 48-card deck in generation order: suit-major, rank-minor.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffle returns a uniformly shuffled copy of deck drawn from rng.
func Shuffle(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Deal splits deck into n contiguous hands of len(deck)/n cards, in deck order.
func Deal(deck []Card, n int) [][]Card {
	if n <= 0 {
		return nil
	}
	size := len(deck) / n
	hands := make([][]Card, n)
	for i := 0; i < n; i++ {
		hands[i] = append([]Card(nil), deck[i*size:(i+1)*size]...)
	}
	return hands
}

// SortCards orders cards in place by Less.
func SortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool { return Less(cards[i], cards[j]) })
}

// SortedCopy returns a sorted copy, leaving cards untouched.
func SortedCopy(cards []Card) []Card {
	out := append([]Card(nil), cards...)
	SortCards(out)
	return out
}
