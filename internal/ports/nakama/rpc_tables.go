package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	"jacks/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Channel IDs end up in label queries, so keep them to a query-safe alphabet.
var channelIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// CreateTableRequest is the create_table payload.
type CreateTableRequest struct {
	ChannelID string `json:"channel_id"`
}

// CreateTableResponse is returned to clients opening or finding a channel's table.
type CreateTableResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// StandingsRequest is the table_standings payload. UserID defaults to the caller.
type StandingsRequest struct {
	UserID string `json:"user_id"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer, cfg config.GameConfig) error {
	if err := initializer.RegisterRpc(RpcCreateTable, rpcCreateTable); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcTableStandings, newRpcTableStandings(cfg.GetScoreCollection(), nil))
}

func rpcCreateTable(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", 16)
	}

	var req CreateTableRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil || !channelIDPattern.MatchString(req.ChannelID) {
		return "", runtime.NewError("channel_id is required", 3)
	}

	query := fmt.Sprintf("+label.game:jacks +label.channel:%s", req.ChannelID)
	matches, err := nk.MatchList(ctx, 1, true, "", nil, nil, query)
	if err != nil {
		logger.Error("CreateTable [User:%s]: MatchList error: %v", userID, err)
		return "", err
	}
	if len(matches) > 0 {
		logger.Info("CreateTable [User:%s]: Found table %s for channel %s", userID, matches[0].MatchId, req.ChannelID)
		b, _ := json.Marshal(CreateTableResponse{MatchID: matches[0].MatchId, IsNew: false})
		return string(b), nil
	}

	// The caller becomes master; MatchInit registers the table with the app registry.
	matchID, err := nk.MatchCreate(ctx, MatchNameJacks, map[string]interface{}{
		"channel_id": req.ChannelID,
		"master":     userID,
	})
	if err != nil {
		logger.Error("CreateTable [User:%s]: MatchCreate error: %v", userID, err)
		return "", err
	}

	logger.Info("CreateTable [User:%s]: Created table %s for channel %s", userID, matchID, req.ChannelID)
	b, _ := json.Marshal(CreateTableResponse{MatchID: matchID, IsNew: true})
	return string(b), nil
}

// newRpcTableStandings returns the table_standings RPC. A nil storage uses
// the runtime's NakamaModule.
func newRpcTableStandings(collection string, storage StorageModule) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		caller, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

		var req StandingsRequest
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), &req); err != nil {
				return "", runtime.NewError("invalid payload", 3)
			}
		}
		if req.UserID == "" {
			req.UserID = caller
		}
		if req.UserID == "" {
			return "", runtime.NewError("user_id is required", 3)
		}

		store := storage
		if store == nil {
			store = nk
		}
		standing, err := NewNakamaScoreAdapter(store, collection).GetStanding(ctx, req.UserID)
		if err != nil {
			logger.Error("TableStandings [User:%s]: %v", caller, err)
			return "", err
		}
		b, err := json.Marshal(standing)
		if err != nil {
			return "", fmt.Errorf("failed to marshal standing: %w", err)
		}
		return string(b), nil
	}
}
