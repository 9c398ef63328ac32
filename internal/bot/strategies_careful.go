package bot

import (
	"sort"

	"jacks/internal/domain"
)

// Careful avoids capturing jacks. It passes jacks and high cards away, wins
// tricks cheaply when no jack is at stake, ducks when one is, and sheds jacks
// whenever it cannot follow suit.
type Careful struct{}

func (Careful) ChoosePass(view View) []domain.Card {
	hand := append([]domain.Card(nil), view.Hand...)
	sort.SliceStable(hand, func(i, j int) bool {
		ji, jj := hand[i].Rank == domain.RankJ, hand[j].Rank == domain.RankJ
		if ji != jj {
			return ji
		}
		if hand[i].Rank != hand[j].Rank {
			return hand[i].Rank > hand[j].Rank
		}
		return domain.Less(hand[i], hand[j])
	})
	return hand[:domain.PassSize]
}

func (c Careful) ChoosePlay(view View) domain.Card {
	valid := view.Valid
	if len(valid) == 1 {
		return valid[0]
	}
	if view.Leading() {
		return c.lead(view)
	}

	if j, ok := c.sheddableJack(view); ok {
		return j
	}
	jackAtStake := trickHasJack(view.Trick)

	var winners, losers []domain.Card
	for _, card := range valid {
		if winsIfPlayed(view, card) {
			winners = append(winners, card)
		} else {
			losers = append(losers, card)
		}
	}

	if jackAtStake || len(winners) == 0 {
		if card, ok := highestNonJack(losers); ok {
			return card
		}
		if len(losers) > 0 {
			return losers[len(losers)-1]
		}
		return lowestNonJack(winners)
	}
	if card, ok := cheapestNonJack(winners); ok {
		return card
	}
	if card, ok := highestNonJack(losers); ok {
		return card
	}
	return lowestNonJack(valid)
}

// lead opens with the lowest plain card, keeping jacks and trumps back.
func (Careful) lead(view View) domain.Card {
	best, found := domain.Card{}, false
	for _, card := range view.Valid {
		if card.Rank == domain.RankJ || card.Suit == view.Trump {
			continue
		}
		if !found || card.Rank < best.Rank {
			best, found = card, true
		}
	}
	if found {
		return best
	}
	return lowestNonJack(view.Valid)
}

// sheddableJack picks a jack that currently loses the trick, handing it to
// whoever takes the trick.
func (Careful) sheddableJack(view View) (domain.Card, bool) {
	for _, card := range view.Valid {
		if card.Rank == domain.RankJ && !winsIfPlayed(view, card) {
			return card, true
		}
	}
	return domain.Card{}, false
}

// winsIfPlayed reports whether card would be winning the trick right now.
// Later seats may still overtake it.
func winsIfPlayed(view View, card domain.Card) bool {
	plays := append(append([]domain.Play(nil), view.Trick...), domain.Play{Player: view.Self, Seat: view.Seat, Card: card})
	winner, _ := domain.EvaluateTrick(plays, view.Trump)
	return winner.Seat == view.Seat
}

func trickHasJack(trick []domain.Play) bool {
	for _, p := range trick {
		if p.Card.Rank == domain.RankJ {
			return true
		}
	}
	return false
}

func cheapestNonJack(cards []domain.Card) (domain.Card, bool) {
	best, found := domain.Card{}, false
	for _, c := range cards {
		if c.Rank == domain.RankJ {
			continue
		}
		if !found || c.Rank < best.Rank {
			best, found = c, true
		}
	}
	return best, found
}

func highestNonJack(cards []domain.Card) (domain.Card, bool) {
	best, found := domain.Card{}, false
	for _, c := range cards {
		if c.Rank == domain.RankJ {
			continue
		}
		if !found || c.Rank > best.Rank {
			best, found = c, true
		}
	}
	return best, found
}

// lowestNonJack falls back to the lowest card when every option is a jack.
func lowestNonJack(cards []domain.Card) domain.Card {
	if c, ok := cheapestNonJack(cards); ok {
		return c
	}
	lowest := cards[0]
	for _, c := range cards[1:] {
		if c.Rank < lowest.Rank {
			lowest = c
		}
	}
	return lowest
}
