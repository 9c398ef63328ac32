package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"jacks/internal/app"
	"jacks/internal/domain"
)

func (s *session) render(ev app.Event) {
	switch p := ev.Payload.(type) {
	case app.PlayerJoinedPayload:
		s.logger.Debug("player joined", "user", p.UserID, "seat", p.Seat)
	case app.HandDealtPayload:
		s.logger.Debug("hand dealt", "user", p.UserID, "hand", cardList(p.Hand))
	case app.PassCommittedPayload:
		s.logger.Debug("pass committed", "user", p.UserID, "waiting", p.Waiting)
	case app.CardsReceivedPayload:
		s.logger.Info("cards received", "user", short(p.UserID), "received", cardList(p.Received))
	case app.TrickResolvedPayload:
		line := pterm.Sprintf("%s  won by %s with %s", trickLine(p.Trick), pterm.LightCyan(short(p.WinnerUserID)), p.WinningCard)
		if p.Fallback {
			s.logger.Warn("trick resolved by leader fallback", "winner", p.WinnerUserID)
		}
		pterm.Println(line)
	case app.HandCompletedPayload:
		renderResult(p)
	}
}

func renderResult(p app.HandCompletedPayload) {
	data := pterm.TableData{{"Seat", "Player", "Tricks", "Jacks", "Hand", "Total"}}
	for _, seat := range p.Seats {
		data = append(data, []string{
			strconv.Itoa(seat.Seat),
			short(string(seat.Player)),
			strconv.Itoa(seat.TricksWon),
			strconv.Itoa(seat.JacksCaught),
			signed(seat.HandScore),
			signed(seat.Score),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}
}

func trickLine(plays []domain.Play) string {
	parts := make([]string, len(plays))
	for i, pl := range plays {
		card := pl.Card.String()
		if pl.Card.Rank == domain.RankJ {
			card = pterm.LightRed(card)
		}
		parts[i] = fmt.Sprintf("%s:%s", short(string(pl.Player)), card)
	}
	return strings.Join(parts, " ")
}

func cardList(cards []domain.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.Code()
	}
	return strings.Join(parts, ",")
}

// short trims bot ids to something readable in a terminal.
func short(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func signed(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
