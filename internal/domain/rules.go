package domain

// ValidPlays returns the cards in hand that may be played onto trick. Leading
// allows any card; otherwise the lead suit must be followed when possible, and
// any card (trump included) may be played when it cannot.
func ValidPlays(hand []Card, trick []Play) []Card {
	if len(hand) == 0 {
		return nil
	}
	if len(trick) == 0 {
		return SortedCopy(hand)
	}
	follow := filterBySuit(hand, trick[0].Card.Suit)
	if len(follow) > 0 {
		return SortedCopy(follow)
	}
	return SortedCopy(hand)
}

// EvaluateTrick picks the winning play. Trump wins when any was played and
// trump is not the lead suit; otherwise the highest lead-suit card wins. The
// bool reports the fallback where neither partition has a card and the first
// play is awarded the trick; follow-suit legality makes that unreachable.
func EvaluateTrick(plays []Play, trump Suit) (Play, bool) {
	if len(plays) == 0 {
		return Play{}, true
	}
	lead := plays[0].Card.Suit

	best := -1
	if trump != lead {
		best = highestOfSuit(plays, trump)
	}
	if best < 0 {
		best = highestOfSuit(plays, lead)
	}
	if best < 0 {
		return plays[0], true
	}
	return plays[best], false
}

func highestOfSuit(plays []Play, suit Suit) int {
	best := -1
	for i, p := range plays {
		if p.Card.Suit != suit {
			continue
		}
		if best < 0 || p.Card.Rank > plays[best].Card.Rank {
			best = i
		}
	}
	return best
}
