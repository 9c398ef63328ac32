package ports

import "context"

// HandScore is one seat's result to fold into a player's standing.
type HandScore struct {
	UserID      string
	ChannelID   string
	HandScore   int
	TableTotal  int
	TricksWon   int
	JacksCaught int
}

// Standing is a player's lifetime record across tables.
type Standing struct {
	UserID      string `json:"user_id"`
	HandsPlayed int    `json:"hands_played"`
	Total       int    `json:"total"`
	Best        int    `json:"best"`
	JacksCaught int    `json:"jacks_caught"`
	LastChannel string `json:"last_channel"`
	LastTotal   int    `json:"last_total"`
}

// ScorePort persists per-player standings.
type ScorePort interface {
	// GetStanding returns the stored standing, or a zero Standing for new players.
	GetStanding(ctx context.Context, userID string) (Standing, error)

	// RecordHands folds completed-hand results into each player's standing.
	RecordHands(ctx context.Context, scores []HandScore) error
}
