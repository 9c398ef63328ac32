package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"jacks/internal/domain"
)

// Runtime environment keys that override the file per match.
const (
	EnvBotsEnabled        = "jacks_bots_enabled"
	EnvTurnTimeoutSeconds = "jacks_turn_timeout_sec"
	EnvNatsURL            = "jacks_nats_url"
)

const (
	defaultTurnTimeoutSeconds = 30
	defaultBotMinDelaySeconds = 1
	defaultBotMaxDelaySeconds = 3
	defaultScoreCollection    = "jacks_scores"
	defaultNatsSubjectPrefix  = "jacks"
)

type GameConfig struct {
	// Trump is a suit name or letter; Hearts when empty.
	Trump              string `json:"trump"`
	TurnTimeoutSeconds int    `json:"turn_timeout_seconds"`
	BotMinDelaySeconds int    `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds int    `json:"bot_max_delay_seconds"`
	BotsEnabled        bool   `json:"bots_enabled"`
	ScoreCollection    string `json:"score_collection"`
	NatsURL            string `json:"nats_url"`
	NatsSubjectPrefix  string `json:"nats_subject_prefix"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}
		cfg, loadErr = ParseGameConfig(data)
	})
	return loadErr
}

// ParseGameConfig decodes and validates a JSON game configuration.
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var c GameConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if c.Trump != "" {
		if _, err := domain.ParseSuit(c.Trump); err != nil {
			return nil, fmt.Errorf("invalid game config: %w", err)
		}
	}
	if c.BotMaxDelaySeconds > 0 && c.BotMaxDelaySeconds < c.BotMinDelaySeconds {
		return nil, fmt.Errorf("invalid game config: bot_max_delay_seconds %d < bot_min_delay_seconds %d",
			c.BotMaxDelaySeconds, c.BotMinDelaySeconds)
	}
	return &c, nil
}

// GetGameConfig returns the global game configuration. When nothing was
// loaded it returns the defaults.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return GameConfig{}
	}
	return *cfg
}

// TrumpSuit returns the configured trump suit, Hearts by default.
func (c GameConfig) TrumpSuit() domain.Suit {
	s, err := domain.ParseSuit(c.Trump)
	if err != nil {
		return domain.SuitHearts
	}
	return s
}

// TurnTimeout is how long a seat may idle before the abandon policy acts for it.
func (c GameConfig) TurnTimeout() time.Duration {
	if c.TurnTimeoutSeconds <= 0 {
		return defaultTurnTimeoutSeconds * time.Second
	}
	return time.Duration(c.TurnTimeoutSeconds) * time.Second
}

// BotDelay returns the inclusive range a bot waits before acting.
func (c GameConfig) BotDelay() (lo, hi time.Duration) {
	from, to := c.BotMinDelaySeconds, c.BotMaxDelaySeconds
	if from <= 0 {
		from = defaultBotMinDelaySeconds
	}
	if to < from {
		to = max(from, defaultBotMaxDelaySeconds)
	}
	return time.Duration(from) * time.Second, time.Duration(to) * time.Second
}

func (c GameConfig) GetScoreCollection() string {
	if c.ScoreCollection == "" {
		return defaultScoreCollection
	}
	return c.ScoreCollection
}

func (c GameConfig) GetNatsSubjectPrefix() string {
	if c.NatsSubjectPrefix == "" {
		return defaultNatsSubjectPrefix
	}
	return strings.TrimSuffix(c.NatsSubjectPrefix, ".")
}

// WithEnv returns a copy with runtime environment overrides applied. Values
// that fail to parse are ignored.
func (c GameConfig) WithEnv(env map[string]string) GameConfig {
	if v, ok := env[EnvBotsEnabled]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.BotsEnabled = b
		}
	}
	if v, ok := env[EnvTurnTimeoutSeconds]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TurnTimeoutSeconds = n
		}
	}
	if v, ok := env[EnvNatsURL]; ok {
		c.NatsURL = v
	}
	return c
}
