// Command jackssim plays tables of Jacks between bots in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/pterm/pterm"

	"jacks/internal/app"
	"jacks/internal/bot"
	"jacks/internal/domain"
	"jacks/internal/ports"
	"jacks/internal/ports/natsbus"
	"jacks/internal/sim"
)

const channelID = "jackssim"

func main() {
	playersFlag := flag.Int("players", 4, "number of seats (3 or 4)")
	handsFlag := flag.Int("hands", 1, "hands to play at the table")
	seedFlag := flag.Int64("seed", time.Now().UnixNano(), "shuffle seed")
	trumpFlag := flag.String("trump", "H", "trump suit (C, D, H or S)")
	strategyFlag := flag.String("strategy", "careful", "bot strategy: careful or random")
	natsFlag := flag.String("nats", "", "mirror table events to this NATS server")
	verifyFlag := flag.Int("verify", 0, "self-play this many seeds with invariant checks instead of rendering a table")
	flag.Parse()

	handler := pterm.NewSlogHandler(&pterm.DefaultLogger)
	logger := slog.New(handler)

	if *verifyFlag > 0 {
		if err := verify(logger, *seedFlag, *verifyFlag, *playersFlag); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		return
	}

	trump, err := domain.ParseSuit(*trumpFlag)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(2)
	}
	level, err := bot.ParseLevel(*strategyFlag)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(2)
	}

	var publisher ports.EventPublisher
	if *natsFlag != "" {
		nc, err := natsbus.Connect(*natsFlag, "jackssim")
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		defer nc.Drain()
		publisher = natsbus.NewPublisher(nc, "jacks")
		logger.Info("mirroring events", "url", *natsFlag)
	}

	pterm.DefaultSection.Printfln("Jacks: %d players, trump %s, seed %d", *playersFlag, trump, *seedFlag)

	rng := rand.New(rand.NewSource(*seedFlag))
	s := &session{
		logger:    logger,
		publisher: publisher,
		registry:  app.NewRegistry(trump, rng),
	}
	if err := s.seat(*playersFlag, level, rng); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	for hand := 1; hand <= *handsFlag; hand++ {
		pterm.DefaultSection.WithLevel(2).Printfln("Hand %d", hand)
		if err := s.playHand(context.Background()); err != nil {
			logger.Error("hand aborted", "hand", hand, "error", err)
			os.Exit(1)
		}
	}
}

func verify(logger *slog.Logger, seed int64, seeds, players int) error {
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("self-playing %d seeds", seeds))
	for i := int64(0); i < int64(seeds); i++ {
		if _, err := sim.Run(seed+i, players, nil); err != nil {
			spinner.Fail(fmt.Sprintf("seed %d failed", seed+i))
			return err
		}
	}
	spinner.Success(fmt.Sprintf("%d seeds played with every invariant intact", seeds))
	logger.Debug("verify finished", "first_seed", seed, "players", players)
	return nil
}

type session struct {
	logger    *slog.Logger
	publisher ports.EventPublisher
	registry  *app.Registry
	table     *app.Table
	agents    map[string]*bot.Agent
}

func (s *session) seat(players int, level bot.BotLevel, rng *rand.Rand) error {
	s.agents = make(map[string]*bot.Agent, players)
	var ids []string
	for i := 0; i < players; i++ {
		strategy, err := bot.NewStrategy(level, rand.New(rand.NewSource(rng.Int63())))
		if err != nil {
			return err
		}
		id := bot.NewBotID()
		s.agents[id] = &bot.Agent{ID: id, Strategy: strategy}
		ids = append(ids, id)
	}

	table, err := s.registry.Create(channelID, ids[0])
	if err != nil {
		return err
	}
	s.table = table
	for _, id := range ids {
		events, err := table.Join(id)
		if err != nil {
			return err
		}
		s.emit(context.Background(), events)
	}
	return nil
}

func (s *session) playHand(ctx context.Context) error {
	events, err := s.table.Ready(s.table.Master)
	if err != nil {
		return err
	}
	s.emit(ctx, events)

	game := s.table.Game()
	for _, id := range game.Players() {
		cards, err := s.agents[string(id)].Pass(game)
		if err != nil {
			return err
		}
		events, err := s.table.OfferPass(string(id), cards)
		if err != nil {
			return err
		}
		s.emit(ctx, events)
	}

	for game.Phase() == domain.PhasePlaying {
		cur, _ := game.CurrentPlayer()
		card, err := s.agents[string(cur)].Play(game)
		if err != nil {
			return err
		}
		events, err := s.table.PlayCard(string(cur), card)
		if err != nil {
			return err
		}
		s.emit(ctx, events)
	}
	return nil
}

func (s *session) emit(ctx context.Context, events []app.Event) {
	for _, ev := range events {
		s.render(ev)
		if s.publisher == nil {
			continue
		}
		if err := s.publisher.Publish(ctx, channelID, ev); err != nil {
			s.logger.Warn("publish failed", "kind", ev.Kind, "error", err)
		}
	}
}
