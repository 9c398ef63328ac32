package bot

import (
	"jacks/internal/domain"
)

// View is what a seat can see when it has to decide: its own hand, the legal
// cards, the trick on the table and the trump suit.
type View struct {
	Self    domain.PlayerID
	Seat    int
	Players int
	Trump   domain.Suit
	Hand    []domain.Card
	Valid   []domain.Card
	Trick   []domain.Play
}

// Leading reports whether the seat opens the trick.
func (v View) Leading() bool { return len(v.Trick) == 0 }

// Strategy is the interface that all bot strategies must implement.
// ChoosePass returns exactly domain.PassSize cards from Hand; ChoosePlay
// returns one card from Valid.
type Strategy interface {
	ChoosePass(view View) []domain.Card
	ChoosePlay(view View) domain.Card
}
