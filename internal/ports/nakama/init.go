package nakama

import (
	"context"
	"database/sql"

	"jacks/internal/app"
	"jacks/internal/config"
	"jacks/internal/ports"
	"jacks/internal/ports/natsbus"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig(GameConfigPath); err != nil {
		logger.Warn("Failed to load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		cfg = cfg.WithEnv(env)
	}

	var publisher ports.EventPublisher
	if cfg.NatsURL != "" {
		nc, err := natsbus.Connect(cfg.NatsURL, "jacks-nakama")
		if err != nil {
			// Event mirroring is optional; tables run without it.
			logger.Error("NATS unavailable, events will not be mirrored: %v", err)
		} else {
			publisher = natsbus.NewPublisher(nc, cfg.GetNatsSubjectPrefix())
			logger.Info("Mirroring table events to %s under %q", cfg.NatsURL, cfg.GetNatsSubjectPrefix())
		}
	}

	registry := app.NewRegistry(cfg.TrumpSuit(), nil)

	if err := RegisterRPCs(initializer, cfg); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameJacks, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(registry, publisher, cfg), nil
	}); err != nil {
		return err
	}

	logger.Info("Jacks Go module loaded (trump=%s, bots=%t).", cfg.TrumpSuit(), cfg.BotsEnabled)
	return nil
}
