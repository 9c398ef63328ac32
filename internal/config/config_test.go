package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"jacks/internal/domain"
)

func TestParseGameConfig(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{name: "full", data: `{"trump":"S","turn_timeout_seconds":10,"bots_enabled":true}`},
		{name: "empty object", data: `{}`},
		{name: "bad json", data: `{"trump":`, wantErr: true},
		{name: "bad trump", data: `{"trump":"stars"}`, wantErr: true},
		{name: "inverted delay", data: `{"bot_min_delay_seconds":5,"bot_max_delay_seconds":2}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGameConfig([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	var c GameConfig
	if c.TrumpSuit() != domain.SuitHearts {
		t.Fatalf("trump = %s", c.TrumpSuit())
	}
	if c.TurnTimeout() != 30*time.Second {
		t.Fatalf("timeout = %s", c.TurnTimeout())
	}
	lo, hi := c.BotDelay()
	if lo != time.Second || hi != 3*time.Second {
		t.Fatalf("bot delay = %s..%s", lo, hi)
	}
	if c.GetScoreCollection() != "jacks_scores" || c.GetNatsSubjectPrefix() != "jacks" {
		t.Fatalf("collection %q prefix %q", c.GetScoreCollection(), c.GetNatsSubjectPrefix())
	}
}

func TestWithEnv(t *testing.T) {
	base := GameConfig{TurnTimeoutSeconds: 20}
	got := base.WithEnv(map[string]string{
		EnvBotsEnabled:        "true",
		EnvTurnTimeoutSeconds: "5",
		EnvNatsURL:            "nats://localhost:4222",
	})
	if !got.BotsEnabled || got.TurnTimeoutSeconds != 5 || got.NatsURL != "nats://localhost:4222" {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if base.BotsEnabled {
		t.Fatalf("WithEnv mutated receiver")
	}

	kept := base.WithEnv(map[string]string{EnvBotsEnabled: "maybe", EnvTurnTimeoutSeconds: "-1"})
	if kept.BotsEnabled || kept.TurnTimeoutSeconds != 20 {
		t.Fatalf("bad values should be ignored: %+v", kept)
	}
}

func TestLoadGameConfigShippedFile(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "data", "jacks_config.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	c, err := ParseGameConfig(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.TrumpSuit() != domain.SuitHearts || !c.BotsEnabled {
		t.Fatalf("shipped config = %+v", c)
	}
}
