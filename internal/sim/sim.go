// Package sim drives seeded self-play hands and checks engine invariants
// after every action.
package sim

import (
	"fmt"
	"math/rand"
	"strings"

	"jacks/internal/bot"
	"jacks/internal/domain"
)

// ActionRecord is one accepted action during self-play.
type ActionRecord struct {
	Step   int
	Phase  domain.GamePhase
	Player domain.PlayerID
	Pass   []domain.Card
	Card   domain.Card
}

func (r ActionRecord) String() string {
	if r.Pass != nil {
		codes := make([]string, len(r.Pass))
		for i, c := range r.Pass {
			codes[i] = c.Code()
		}
		return fmt.Sprintf("[s%d %s %s] pass %s", r.Step, r.Phase, r.Player, strings.Join(codes, ","))
	}
	return fmt.Sprintf("[s%d %s %s] play %s", r.Step, r.Phase, r.Player, r.Card.Code())
}

// Run plays one hand for the given number of seats. strategies is either nil,
// in which case every seat plays Careful, or has one entry per seat.
func Run(seed int64, players int, strategies []bot.Strategy) (domain.HandResult, error) {
	if strategies == nil {
		strategies = make([]bot.Strategy, players)
		for i := range strategies {
			strategies[i] = bot.Careful{}
		}
	}
	if len(strategies) != players {
		return domain.HandResult{}, fmt.Errorf("got %d strategies for %d players", len(strategies), players)
	}

	ids := make([]domain.PlayerID, players)
	agents := make(map[domain.PlayerID]*bot.Agent, players)
	for i := range ids {
		ids[i] = domain.PlayerID(fmt.Sprintf("p%d", i))
		agents[ids[i]] = &bot.Agent{ID: string(ids[i]), Strategy: strategies[i]}
	}
	g, err := domain.NewGame(ids, domain.WithRand(rand.New(rand.NewSource(seed))))
	if err != nil {
		return domain.HandResult{}, err
	}

	var records []ActionRecord
	step := 0
	fail := func(player domain.PlayerID, reason string) error {
		return failure(seed, step, g.Phase(), player, records, reason)
	}

	for _, id := range ids {
		pass, err := agents[id].Pass(g)
		if err != nil {
			return domain.HandResult{}, fail(id, err.Error())
		}
		if err := g.OfferPass(id, pass); err != nil {
			return domain.HandResult{}, fail(id, fmt.Sprintf("offer error: %v", err))
		}
		records = append(records, ActionRecord{Step: step, Phase: g.Phase(), Player: id, Pass: pass})
		if err := checkInvariants(g); err != nil {
			return domain.HandResult{}, fail(id, err.Error())
		}
		step++
	}

	for maxSteps := step + domain.DeckSize; g.Phase() == domain.PhasePlaying; step++ {
		if step > maxSteps {
			return domain.HandResult{}, fail("", "hand did not terminate")
		}
		id, ok := g.CurrentPlayer()
		if !ok {
			return domain.HandResult{}, fail("", "no current player")
		}
		card, err := agents[id].Play(g)
		if err != nil {
			return domain.HandResult{}, fail(id, err.Error())
		}
		out, err := g.PlayCard(id, card)
		if err != nil {
			return domain.HandResult{}, fail(id, fmt.Sprintf("apply error: %v", err))
		}
		records = append(records, ActionRecord{Step: step, Phase: g.Phase(), Player: id, Card: card})
		if out.Fallback {
			return domain.HandResult{}, fail(id, "trick resolved by fallback")
		}
		if err := checkInvariants(g); err != nil {
			return domain.HandResult{}, fail(id, err.Error())
		}
	}

	res, ok := g.Result()
	if !ok {
		return domain.HandResult{}, fail("", fmt.Sprintf("hand ended in phase %s without result", g.Phase()))
	}
	if err := checkScores(res, players); err != nil {
		return domain.HandResult{}, fail("", err.Error())
	}
	return res, nil
}

func checkInvariants(g *domain.Game) error {
	if n := g.CardsAccounted(); n != domain.DeckSize {
		return fmt.Errorf("card count mismatch: %d", n)
	}
	players := g.Players()
	trick := g.CurrentTrick()
	if len(trick) >= len(players) {
		return fmt.Errorf("invalid trick size: %d", len(trick))
	}

	seen := map[domain.Card]bool{}
	add := func(c domain.Card) error {
		if seen[c] {
			return fmt.Errorf("duplicate card detected: %s", c)
		}
		seen[c] = true
		return nil
	}
	for _, id := range players {
		for _, c := range g.Hand(id) {
			if err := add(c); err != nil {
				return err
			}
		}
		for _, t := range g.Taken(id) {
			if len(t) != len(players) {
				return fmt.Errorf("captured trick of %d cards", len(t))
			}
			for _, c := range t {
				if err := add(c); err != nil {
					return err
				}
			}
		}
	}
	for _, p := range trick {
		if err := add(p.Card); err != nil {
			return err
		}
	}

	if g.Phase() == domain.PhasePlaying {
		lo, hi := domain.DeckSize, 0
		for _, id := range players {
			n := len(g.Hand(id))
			lo, hi = min(lo, n), max(hi, n)
		}
		if hi-lo > 1 {
			return fmt.Errorf("hand sizes drifted: %d..%d", lo, hi)
		}
	}
	return nil
}

func checkScores(res domain.HandResult, players int) error {
	tricks, jacks, total := 0, 0, 0
	for _, s := range res.Seats {
		tricks += s.TricksWon
		jacks += s.JacksCaught
		total += s.HandScore
	}
	if tricks != domain.DeckSize/players {
		return fmt.Errorf("tricks won %d, want %d", tricks, domain.DeckSize/players)
	}
	if jacks != 4 {
		return fmt.Errorf("jacks caught %d, want 4", jacks)
	}
	if want := tricks + jacks*domain.JackPenalty(players); total != want {
		return fmt.Errorf("score sum %d, want %d", total, want)
	}
	return nil
}

func failure(seed int64, step int, phase domain.GamePhase, player domain.PlayerID, records []ActionRecord, reason string) error {
	start := 0
	if len(records) > 20 {
		start = len(records) - 20
	}
	var log strings.Builder
	for _, r := range records[start:] {
		log.WriteString(r.String())
		log.WriteByte('\n')
	}
	return fmt.Errorf("seed=%d step=%d phase=%s player=%s reason=%s\nlast actions:\n%s",
		seed, step, phase, player, reason, log.String())
}
