package app

import "jacks/internal/domain"

// EventKind identifies emitted table events for Nakama dispatch.
type EventKind string

const (
	EventPlayerJoined   EventKind = "player_joined"
	EventPlayerLeft     EventKind = "player_left"
	EventPlayerKicked   EventKind = "player_kicked"
	EventLobbyCancelled EventKind = "lobby_cancelled"
	EventGameStarted    EventKind = "game_started"
	EventHandDealt      EventKind = "hand_dealt"
	EventPassCommitted  EventKind = "pass_committed"
	EventCardsReceived  EventKind = "cards_received"
	EventPlayingStarted EventKind = "playing_started"
	EventCardPlayed     EventKind = "card_played"
	EventTrickResolved  EventKind = "trick_resolved"
	EventHandCompleted  EventKind = "hand_completed"
)

// Event is a table event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID string `json:"user_id"`
	Seat   int    `json:"seat"`
}

type PlayerLeftPayload struct {
	UserID string `json:"user_id"`
}

type PlayerKickedPayload struct {
	UserID   string `json:"user_id"`
	KickedBy string `json:"kicked_by"`
}

type LobbyCancelledPayload struct {
	ChannelID string `json:"channel_id"`
}

type GameStartedPayload struct {
	Players []string    `json:"players"`
	Trump   domain.Suit `json:"trump"`
}

type HandDealtPayload struct {
	UserID string        `json:"user_id"`
	Hand   []domain.Card `json:"hand"`
}

type PassCommittedPayload struct {
	UserID  string `json:"user_id"`
	Waiting int    `json:"waiting"` // seats that still owe a pass
}

// CardsReceivedPayload is sent privately once the passing barrier completes.
type CardsReceivedPayload struct {
	UserID   string        `json:"user_id"`
	Received []domain.Card `json:"received"`
	Hand     []domain.Card `json:"hand"`
}

type PlayingStartedPayload struct {
	FirstTurnUserID string `json:"first_turn_user_id"`
}

type CardPlayedPayload struct {
	UserID         string      `json:"user_id"`
	Card           domain.Card `json:"card"`
	NextTurnUserID string      `json:"next_turn_user_id"` // empty once the hand is over
}

type TrickResolvedPayload struct {
	WinnerUserID string        `json:"winner_user_id"`
	WinningCard  domain.Card   `json:"winning_card"`
	Lead         domain.Card   `json:"lead"`
	Trick        []domain.Play `json:"trick"`
	Fallback     bool          `json:"fallback"`
}

type HandCompletedPayload struct {
	Trump  domain.Suit         `json:"trump"`
	Seats  []domain.SeatResult `json:"seats"`
	Totals map[string]int      `json:"totals"`
}
