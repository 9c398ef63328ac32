package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"
	"slices"
	"time"

	"jacks/internal/app"
	"jacks/internal/bot"
	"jacks/internal/config"
	"jacks/internal/domain"
	"jacks/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	ChannelID    string                      `json:"channel_id"`
	Table        *app.Table                  `json:"-"`
	Tick         int64                       `json:"tick"`           // Current tick; the match runs at one tick per second
	Presences    map[string]runtime.Presence `json:"-"`              // Map UserId -> Presence for targeted messaging
	Bots         map[string]*bot.Agent       `json:"-"`              // Active bot agents keyed by seat user id
	Config       config.GameConfig           `json:"config"`         // File config with runtime env overrides applied
	BotWaitUntil int64                       `json:"bot_wait_until"` // Tick when the pending bot acts; 0 when none is scheduled
	IdleSince    int64                       `json:"idle_since"`     // Tick of the last accepted table action
	Scores       ports.ScorePort             `json:"-"`
	Publisher    ports.EventPublisher        `json:"-"`

	label string
	rng   *rand.Rand
}

func (ms *MatchState) random() *rand.Rand {
	if ms.rng == nil {
		ms.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return ms.rng
}

func (ms *MatchState) GetOpenSeatsCount() int {
	return app.MaxSeats - len(ms.Table.Roster())
}

// GetHumanPresenceCount counts connected non-bot users.
func (ms *MatchState) GetHumanPresenceCount() int {
	count := 0
	for userID := range ms.Presences {
		if !isBotUserId(userID) {
			count++
		}
	}
	return count
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

func turnTimeoutTicks(cfg config.GameConfig) int64 {
	return int64(cfg.TurnTimeout() / time.Second)
}

type matchHandler struct {
	registry  *app.Registry
	publisher ports.EventPublisher
	cfg       config.GameConfig
}

func newMatchHandler(registry *app.Registry, publisher ports.EventPublisher, cfg config.GameConfig) *matchHandler {
	return &matchHandler{registry: registry, publisher: publisher, cfg: cfg}
}

// MatchInit is called when the match is created. params carry the channel
// and the master's user id from the create_table RPC.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	channelID, _ := params["channel_id"].(string)
	master, _ := params["master"].(string)
	if channelID == "" || master == "" {
		logger.Error("MatchInit: channel_id and master are required, got %q and %q", channelID, master)
		return nil, 0, ""
	}

	cfg := mh.cfg
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		cfg = cfg.WithEnv(env)
	}

	table, err := mh.registry.Create(channelID, master)
	if err != nil {
		logger.Error("MatchInit: Failed to open table for channel %s: %v", channelID, err)
		return nil, 0, ""
	}

	state := &MatchState{
		ChannelID: channelID,
		Table:     table,
		Presences: make(map[string]runtime.Presence),
		Bots:      make(map[string]*bot.Agent),
		Config:    cfg,
		Scores:    NewNakamaScoreAdapter(nk, cfg.GetScoreCollection()),
		Publisher: mh.publisher,
	}

	label, err := encodeLabel(channelID, app.MaxSeats, app.PhaseLobby)
	if err != nil {
		logger.Error("MatchInit: %v", err)
		mh.registry.Close(channelID)
		return nil, 0, ""
	}
	state.label = label

	logger.Info("MatchInit: Table %s opened for channel %s by %s (bots=%t, timeout=%s)",
		table.ID, channelID, master, cfg.BotsEnabled, cfg.TurnTimeout())
	return state, 1, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Seated players may always reconnect.
	if slices.Contains(matchState.Table.Roster(), presence.GetUserId()) {
		return state, true, ""
	}
	if matchState.Table.Phase() != app.PhaseLobby {
		return state, false, "Game in progress"
	}
	if matchState.GetOpenSeatsCount() <= 0 {
		return state, false, "Table full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if slices.Contains(matchState.Table.Roster(), userID) {
			logger.Info("MatchJoin: User %s reconnected.", userID)
		} else {
			events, err := matchState.Table.Join(userID)
			if err != nil {
				logger.Warn("MatchJoin: User %s joined but could not take a seat: %v", userID, err)
			}
			for _, ev := range events {
				mh.broadcastEvent(ctx, matchState, dispatcher, logger, ev)
			}
		}
		mh.sendState(matchState, dispatcher, logger, userID)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match. In the lobby
// a leaving player gives up their seat and a leaving master closes the table.
// Mid-game the seat is kept and the abandon policy plays it.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		if matchState.Table.Phase() != app.PhaseLobby {
			logger.Info("MatchLeave: User %s left mid-game; seat kept.", userID)
			continue
		}
		if userID == matchState.Table.Master {
			logger.Info("MatchLeave: Master %s left the lobby; closing table.", userID)
			return mh.closeTable(ctx, matchState, dispatcher, logger)
		}
		events, err := matchState.Table.Leave(userID)
		if err != nil && !errors.Is(err, app.ErrNotJoined) {
			logger.Warn("MatchLeave: User %s: %v", userID, err)
		}
		for _, ev := range events {
			mh.broadcastEvent(ctx, matchState, dispatcher, logger, ev)
		}
	}

	if matchState.GetHumanPresenceCount() == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return mh.closeTable(ctx, matchState, dispatcher, logger)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick
	logger = logger.WithField("channel_id", matchState.ChannelID)

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpReady:
			mh.handleReady(ctx, matchState, dispatcher, logger, msg)
		case OpKick:
			mh.handleKick(ctx, matchState, dispatcher, logger, msg)
		case OpCancel:
			if mh.handleCancel(ctx, matchState, dispatcher, logger, msg) {
				return nil
			}
		case OpOfferPass:
			mh.handleOfferPass(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCard:
			mh.handlePlayCard(ctx, matchState, dispatcher, logger, msg)
		case OpRequestState:
			mh.sendState(matchState, dispatcher, logger, msg.GetUserId())
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.processIdleSeats(ctx, matchState, dispatcher, logger)
	return matchState
}

// apply dispatches the events of an accepted action or reports its error to the actor.
func (mh *matchHandler) apply(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, actor string, events []app.Event, err error) bool {
	if err != nil {
		logger.Warn("User %s: request rejected: %v", actor, err)
		mh.sendError(state, dispatcher, logger, actor, 400, err.Error())
		return false
	}
	state.IdleSince = state.Tick
	state.BotWaitUntil = 0
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.updateLabel(state, dispatcher, logger)
	return true
}

func (mh *matchHandler) handleReady(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	logger.Info("Ready: Request received from %s (master=%s, seated=%d)", senderID, state.Table.Master, len(state.Table.Roster()))

	if senderID == state.Table.Master && state.Config.BotsEnabled {
		mh.fillWithBots(ctx, state, dispatcher, logger)
	}

	events, err := state.Table.Ready(senderID)
	if mh.apply(ctx, state, dispatcher, logger, senderID, events, err) {
		logger.Info("Ready: Game started with %d players.", len(state.Table.Roster()))
	}
}

// fillWithBots seats bots until the roster can start a game.
func (mh *matchHandler) fillWithBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for len(state.Table.Roster()) < app.MinPlayersToStartGame {
		botID := bot.NewBotID()
		events, err := state.Table.Join(botID)
		if err != nil {
			logger.Error("fillWithBots: Failed to seat bot: %v", err)
			return
		}
		state.Bots[botID] = &bot.Agent{ID: botID, Strategy: bot.Careful{}}
		logger.Info("fillWithBots: Added bot %s", botID)
		for _, ev := range events {
			mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
		}
	}
}

func (mh *matchHandler) handleKick(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	var req KickRequest
	if err := decodeRequest(msg.GetData(), &req); err != nil {
		mh.apply(ctx, state, dispatcher, logger, senderID, nil, err)
		return
	}

	events, err := state.Table.Kick(senderID, req.UserID)
	if !mh.apply(ctx, state, dispatcher, logger, senderID, events, err) {
		return
	}
	delete(state.Bots, req.UserID)
	if p, ok := state.Presences[req.UserID]; ok {
		if err := dispatcher.MatchKick([]runtime.Presence{p}); err != nil {
			logger.Error("handleKick: Failed to kick presence %s: %v", req.UserID, err)
		}
	}
}

// handleCancel reports whether the table was closed.
func (mh *matchHandler) handleCancel(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) bool {
	senderID := msg.GetUserId()
	if senderID != state.Table.Master {
		mh.apply(ctx, state, dispatcher, logger, senderID, nil, app.ErrNotMaster)
		return false
	}
	mh.closeTable(ctx, state, dispatcher, logger)
	return true
}

// closeTable cancels the table, notifies everyone and forgets the channel.
// It returns the nil state that terminates the match.
func (mh *matchHandler) closeTable(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) interface{} {
	events, err := state.Table.Cancel(state.Table.Master)
	if err != nil {
		logger.Error("closeTable: %v", err)
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.registry.Close(state.ChannelID)
	return nil
}

func (mh *matchHandler) handleOfferPass(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	cards, err := decodeOfferPass(msg.GetData())
	if err != nil {
		mh.apply(ctx, state, dispatcher, logger, senderID, nil, err)
		return
	}
	events, err := state.Table.OfferPass(senderID, cards)
	mh.apply(ctx, state, dispatcher, logger, senderID, events, err)
}

func (mh *matchHandler) handlePlayCard(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	card, err := decodePlayCard(msg.GetData())
	if err != nil {
		mh.apply(ctx, state, dispatcher, logger, senderID, nil, err)
		return
	}
	events, err := state.Table.PlayCard(senderID, card)
	if err != nil && state.Table.Game() != nil {
		logger.Debug("handlePlayCard: User %s requested %s, hand %v", senderID, card, state.Table.Game().Hand(domain.PlayerID(senderID)))
	}
	mh.apply(ctx, state, dispatcher, logger, senderID, events, err)
}

// processIdleSeats lets bots act after their delay and applies the abandon
// policy to human seats that stayed idle past the turn timeout.
func (mh *matchHandler) processIdleSeats(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	game := state.Table.Game()
	if game == nil {
		return
	}

	var pending []domain.PlayerID
	switch game.Phase() {
	case domain.PhasePassing:
		for _, id := range game.Players() {
			if !game.HasOffered(id) {
				pending = append(pending, id)
			}
		}
	case domain.PhasePlaying:
		if id, ok := game.CurrentPlayer(); ok {
			pending = append(pending, id)
		}
	default:
		return
	}

	var bots, humans []domain.PlayerID
	for _, id := range pending {
		if isBotUserId(string(id)) {
			bots = append(bots, id)
		} else {
			humans = append(humans, id)
		}
	}

	if len(bots) > 0 {
		if state.BotWaitUntil == 0 {
			lo, hi := state.Config.BotDelay()
			spread := int64((hi - lo) / time.Second)
			state.BotWaitUntil = state.Tick + int64(lo/time.Second) + state.random().Int63n(spread+1)
			logger.Debug("processIdleSeats: %d bot(s) will act at tick %d (current %d)", len(bots), state.BotWaitUntil, state.Tick)
		}
		if state.Tick >= state.BotWaitUntil {
			for _, id := range bots {
				agent, ok := state.Bots[string(id)]
				if !ok {
					agent = &bot.Agent{ID: string(id), Strategy: bot.Careful{}}
					state.Bots[string(id)] = agent
				}
				mh.actFor(ctx, state, dispatcher, logger, game, agent)
			}
		}
		return
	}

	if len(humans) > 0 && state.Tick-state.IdleSince >= turnTimeoutTicks(state.Config) {
		for _, id := range humans {
			logger.Info("processIdleSeats: User %s idle since tick %d; playing on their behalf.", id, state.IdleSince)
			mh.actFor(ctx, state, dispatcher, logger, game, &bot.Agent{ID: string(id), Strategy: bot.Careful{}})
		}
	}
}

// actFor takes the pending decision of agent's seat.
func (mh *matchHandler) actFor(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, game *domain.Game, agent *bot.Agent) {
	var (
		events []app.Event
		err    error
	)
	switch game.Phase() {
	case domain.PhasePassing:
		var cards []domain.Card
		if cards, err = agent.Pass(game); err == nil {
			events, err = state.Table.OfferPass(agent.ID, cards)
		}
	case domain.PhasePlaying:
		var card domain.Card
		if card, err = agent.Play(game); err == nil {
			events, err = state.Table.PlayCard(agent.ID, card)
		}
	default:
		return
	}
	if err != nil {
		logger.Error("actFor: Seat %s failed to act: %v", agent.ID, err)
		return
	}
	mh.apply(ctx, state, dispatcher, logger, agent.ID, events, nil)
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	switch p := ev.Payload.(type) {
	case app.GameStartedPayload:
		logger.Info("Event: game_started (players=%v, trump=%s)", p.Players, p.Trump)
	case app.TrickResolvedPayload:
		if p.Fallback {
			logger.Warn("Event: trick resolved by fallback to the leader: %+v", p.Trick)
		}
	case app.HandCompletedPayload:
		mh.recordScores(ctx, state, logger, p)
	}

	if state.Publisher != nil {
		if err := state.Publisher.Publish(ctx, state.ChannelID, ev); err != nil {
			logger.Error("Failed to publish event %v: %v", ev.Kind, err)
		}
	}

	opCode, data, err := encodeEvent(ev)
	if err != nil {
		logger.Error("Failed to encode event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// Private events for seats without a presence (bots, disconnected
		// players) must not fall through to a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
		logger.Error("Failed to broadcast event %v: %v", ev.Kind, err)
	}
}

func (mh *matchHandler) recordScores(ctx context.Context, state *MatchState, logger runtime.Logger, p app.HandCompletedPayload) {
	if state.Scores == nil {
		return
	}
	scores := make([]ports.HandScore, 0, len(p.Seats))
	for _, s := range p.Seats {
		userID := string(s.Player)
		if isBotUserId(userID) {
			continue
		}
		scores = append(scores, ports.HandScore{
			UserID:      userID,
			ChannelID:   state.ChannelID,
			HandScore:   s.HandScore,
			TableTotal:  p.Totals[userID],
			TricksWon:   s.TricksWon,
			JacksCaught: s.JacksCaught,
		})
	}
	if err := state.Scores.RecordHands(ctx, scores); err != nil {
		logger.Error("Failed to record scores: %v", err)
	}
}

// sendState sends the caller's view of the table privately.
func (mh *matchHandler) sendState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send state to %s: Presence not found", userID)
		return
	}
	data, err := json.Marshal(state.Table.Snapshot(userID))
	if err != nil {
		logger.Error("Failed to marshal table state: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpTableState, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("Failed to send table state to %s: %v", userID, err)
	}
}

// sendError sends a GameError to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	data, err := json.Marshal(GameError{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal GameError: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("Failed to send error to %s: %v", userID, err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := encodeLabel(state.ChannelID, state.GetOpenSeatsCount(), state.Table.Phase())
	if err != nil {
		logger.Error("UpdateLabel: %v", err)
		return
	}
	if label == state.label {
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
		return
	}
	state.label = label
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	if matchState, ok := state.(*MatchState); ok {
		mh.registry.Close(matchState.ChannelID)
	}
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
