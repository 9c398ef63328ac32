package domain

import "fmt"

// PassLedger is the passing-phase barrier. Each seat commits exactly PassSize
// cards; once every seat has committed, Distribute rotates the offers one seat
// forward. The ledger is not safe for concurrent use; Game serialises access.
type PassLedger struct {
	players     int
	offers      map[int][]Card
	distributed bool
}

// NewPassLedger returns an empty ledger for a table of the given size.
func NewPassLedger(players int) *PassLedger {
	return &PassLedger{
		players: players,
		offers:  make(map[int][]Card, players),
	}
}

// Has reports whether seat already committed an offer.
func (l *PassLedger) Has(seat int) bool {
	_, ok := l.offers[seat]
	return ok
}

// Count returns the number of committed offers.
func (l *PassLedger) Count() int {
	return len(l.offers)
}

// Complete reports whether every seat has committed.
func (l *PassLedger) Complete() bool {
	return len(l.offers) == l.players
}

// Offer validates cards against the player's hand, removes them, and records
// the offer. It returns true when this offer completed the barrier. A rejected
// offer leaves the hand and the ledger untouched.
func (l *PassLedger) Offer(p *Player, cards []Card) (bool, error) {
	if l.distributed || l.Has(p.Seat) {
		// A repeat offer is both a duplicate and an invalid selection.
		return false, fmt.Errorf("%w: %w: seat %d", ErrDuplicateOffer, ErrInvalidSelection, p.Seat)
	}
	if len(cards) != PassSize {
		return false, fmt.Errorf("%w: pass exactly %d cards, got %d", ErrInvalidSelection, PassSize, len(cards))
	}
	seen := make(map[Card]bool, len(cards))
	for _, c := range cards {
		if seen[c] {
			return false, fmt.Errorf("%w: %s selected twice", ErrInvalidSelection, c)
		}
		seen[c] = true
		if !containsCard(p.Hand, c) {
			return false, fmt.Errorf("%w: %s is not in hand", ErrInvalidSelection, c)
		}
	}

	p.Hand = RemoveCards(p.Hand, cards)
	l.offers[p.Seat] = append([]Card(nil), cards...)
	return l.Complete(), nil
}

// Pending returns how many cards are held by the ledger.
func (l *PassLedger) Pending() int {
	n := 0
	for _, cards := range l.offers {
		n += len(cards)
	}
	return n
}

// Distribute gives seat i the offer recorded by seat i-1 (mod n), clears the
// ledger and returns what each seat received. It runs at most once.
func (l *PassLedger) Distribute(players []*Player) ([][]Card, error) {
	if l.distributed {
		return nil, fmt.Errorf("%w: passing already distributed", ErrDuplicateOffer)
	}
	if !l.Complete() || len(players) != l.players {
		return nil, fmt.Errorf("%w: %d of %d offers committed", ErrInvalidSelection, len(l.offers), l.players)
	}

	received := make([][]Card, l.players)
	for _, p := range players {
		from := (p.Seat - 1 + l.players) % l.players
		received[p.Seat] = l.offers[from]
		p.Hand = append(p.Hand, l.offers[from]...)
	}
	l.offers = make(map[int][]Card, l.players)
	l.distributed = true
	return received, nil
}
