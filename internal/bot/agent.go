package bot

import (
	"fmt"
	"slices"

	"jacks/internal/domain"
)

// Agent represents an autonomous player seated in a game.
type Agent struct {
	ID       string
	Strategy Strategy
}

// ViewOf builds the decision view of id's seat in game.
func ViewOf(game *domain.Game, id domain.PlayerID) (View, error) {
	players := game.Players()
	seat := slices.Index(players, id)
	if seat < 0 {
		return View{}, fmt.Errorf("player %q not seated", id)
	}
	return View{
		Self:    id,
		Seat:    seat,
		Players: len(players),
		Trump:   game.Trump(),
		Hand:    game.Hand(id),
		Valid:   game.ValidPlays(id),
		Trick:   game.CurrentTrick(),
	}, nil
}

// Pass asks the agent for its passing cards.
func (a *Agent) Pass(game *domain.Game) ([]domain.Card, error) {
	view, err := ViewOf(game, domain.PlayerID(a.ID))
	if err != nil {
		return nil, err
	}
	if len(view.Hand) < domain.PassSize {
		return nil, fmt.Errorf("hand of %s too small to pass", a.ID)
	}
	return a.Strategy.ChoosePass(view), nil
}

// Play asks the agent for its next card. It fails when the agent has no legal
// play, which means it is not in the playing phase.
func (a *Agent) Play(game *domain.Game) (domain.Card, error) {
	view, err := ViewOf(game, domain.PlayerID(a.ID))
	if err != nil {
		return domain.Card{}, err
	}
	if len(view.Valid) == 0 {
		return domain.Card{}, fmt.Errorf("%s has no legal play", a.ID)
	}
	return a.Strategy.ChoosePlay(view), nil
}
