package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jacks/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

const standingKey = "standing_v1"

// StorageModule is the part of runtime.NakamaModule the score adapter needs.
type StorageModule interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
}

// NakamaScoreAdapter implements ports.ScorePort using Nakama storage. Each
// player owns one object in the collection.
type NakamaScoreAdapter struct {
	nk         StorageModule
	collection string
}

// NewNakamaScoreAdapter creates a new score adapter.
func NewNakamaScoreAdapter(nk StorageModule, collection string) *NakamaScoreAdapter {
	return &NakamaScoreAdapter{nk: nk, collection: collection}
}

func (a *NakamaScoreAdapter) read(ctx context.Context, userID string) (ports.Standing, string, error) {
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: a.collection,
		Key:        standingKey,
		UserID:     userID,
	}})
	if err != nil {
		return ports.Standing{}, "", fmt.Errorf("failed to read standing: %w", err)
	}
	standing := ports.Standing{UserID: userID}
	if len(objects) == 0 {
		return standing, "", nil
	}
	if err := json.Unmarshal([]byte(objects[0].GetValue()), &standing); err != nil {
		return ports.Standing{}, "", fmt.Errorf("failed to unmarshal standing: %w", err)
	}
	return standing, objects[0].GetVersion(), nil
}

// GetStanding retrieves the stored standing for a user.
func (a *NakamaScoreAdapter) GetStanding(ctx context.Context, userID string) (ports.Standing, error) {
	if userID == "" {
		return ports.Standing{}, fmt.Errorf("userID is required")
	}
	standing, _, err := a.read(ctx, userID)
	return standing, err
}

// RecordHands folds each hand into the player's standing. Writes are
// conditional on the version read, retrying once on a concurrent update.
func (a *NakamaScoreAdapter) RecordHands(ctx context.Context, scores []ports.HandScore) error {
	for _, score := range scores {
		if score.UserID == "" {
			continue
		}
		err := a.recordHand(ctx, score)
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			err = a.recordHand(ctx, score)
		}
		if err != nil {
			return fmt.Errorf("failed to record hand for user %s: %w", score.UserID, err)
		}
	}
	return nil
}

func (a *NakamaScoreAdapter) recordHand(ctx context.Context, score ports.HandScore) error {
	standing, version, err := a.read(ctx, score.UserID)
	if err != nil {
		return err
	}
	if standing.HandsPlayed == 0 || score.HandScore > standing.Best {
		standing.Best = score.HandScore
	}
	standing.HandsPlayed++
	standing.Total += score.HandScore
	standing.JacksCaught += score.JacksCaught
	standing.LastChannel = score.ChannelID
	standing.LastTotal = score.TableTotal

	value, err := json.Marshal(standing)
	if err != nil {
		return fmt.Errorf("failed to marshal standing: %w", err)
	}
	if version == "" {
		// Only create when absent.
		version = "*"
	}
	_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      a.collection,
		Key:             standingKey,
		UserID:          score.UserID,
		Value:           string(value),
		Version:         version,
		PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
	return err
}

var _ ports.ScorePort = (*NakamaScoreAdapter)(nil)
