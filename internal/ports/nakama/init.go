package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
	"go.uber.org/zap"

	"staredown/internal/config"
	"staredown/internal/lobby"
	"staredown/internal/logging"
	"staredown/internal/sweep"
)

// InitModule builds the room registry inside the Nakama runtime and
// registers the game RPCs.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	cfg, err := config.Load(env[EnvConfigPath])
	if err != nil {
		logger.Error("staredown: config: %v", err)
		return err
	}
	zl, err := logging.New(cfg.Log)
	if err != nil {
		logger.Error("staredown: logger: %v", err)
		return err
	}

	pusher := NewPusher(nk, logger)
	reg := lobby.NewRegistry(
		lobby.WithLogger(zl.Logger),
		lobby.WithPolicy(lobby.PolicyFrom(cfg.Expiry)),
		lobby.WithNotifier(pusher),
	)

	module := NewModule(reg, pusher)
	if err := RegisterEvents(initializer, module); err != nil {
		return err
	}

	sweeper := sweep.New(cfg.Expiry.SweepInterval, func() { module.Sweep() }, zl.Logger)
	sweeper.Start()

	if err := initializer.RegisterShutdown(func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) {
		sweeper.Stop()
		stats := reg.Stats()
		zl.Info("staredown module stopping", zap.Int("rooms", stats.Rooms), zap.Int("players", stats.Players))
		_ = zl.Close()
	}); err != nil {
		sweeper.Stop()
		return err
	}

	if err := RegisterRPCs(initializer, module); err != nil {
		sweeper.Stop()
		return err
	}

	logger.Info("Staredown Go module loaded.")
	return nil
}
