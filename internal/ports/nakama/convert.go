package nakama

import (
	"encoding/json"
	"fmt"

	"jacks/internal/app"
	"jacks/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var eventOpCodes = map[app.EventKind]int64{
	app.EventPlayerJoined:   OpPlayerJoined,
	app.EventPlayerLeft:     OpPlayerLeft,
	app.EventPlayerKicked:   OpPlayerKicked,
	app.EventLobbyCancelled: OpLobbyCancelled,
	app.EventGameStarted:    OpGameStarted,
	app.EventHandDealt:      OpHandDealt,
	app.EventPassCommitted:  OpPassCommitted,
	app.EventCardsReceived:  OpCardsReceived,
	app.EventPlayingStarted: OpPlayingStarted,
	app.EventCardPlayed:     OpCardPlayed,
	app.EventTrickResolved:  OpTrickResolved,
	app.EventHandCompleted:  OpHandCompleted,
}

// KickRequest is the OpKick payload.
type KickRequest struct {
	UserID string `json:"user_id"`
}

// OfferPassRequest is the OpOfferPass payload. Cards use the rank+suit form ("10C").
type OfferPassRequest struct {
	Cards []domain.Card `json:"cards"`
}

// PlayCardRequest is the OpPlayCard payload.
type PlayCardRequest struct {
	Card *domain.Card `json:"card"`
}

// GameError is sent privately on OpGameError when a request is rejected.
type GameError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func decodeRequest(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid request payload: %w", err)
	}
	return nil
}

func decodeOfferPass(data []byte) ([]domain.Card, error) {
	var req OfferPassRequest
	if err := decodeRequest(data, &req); err != nil {
		return nil, err
	}
	if len(req.Cards) != domain.PassSize {
		return nil, fmt.Errorf("%w: pass exactly %d cards", domain.ErrInvalidSelection, domain.PassSize)
	}
	return req.Cards, nil
}

func decodePlayCard(data []byte) (domain.Card, error) {
	var req PlayCardRequest
	if err := decodeRequest(data, &req); err != nil {
		return domain.Card{}, err
	}
	if req.Card == nil {
		return domain.Card{}, fmt.Errorf("%w: card is required", domain.ErrIllegalMove)
	}
	return *req.Card, nil
}

// encodeEvent maps an app event to its op code and JSON payload.
func encodeEvent(ev app.Event) (int64, []byte, error) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		return 0, nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal %s: %w", ev.Kind, err)
	}
	return opCode, data, nil
}

// encodeLabel builds the match label listing queries run against, e.g.
// "+label.game:jacks +label.channel:abc".
func encodeLabel(channelID string, open int, phase string) (string, error) {
	label, err := structpb.NewStruct(map[string]any{
		"game":    "jacks",
		"channel": channelID,
		"open":    open,
		"phase":   phase,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build label: %w", err)
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", fmt.Errorf("failed to marshal label: %w", err)
	}
	return string(b), nil
}
