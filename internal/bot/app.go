package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"justtrades-bot/internal/config"
	"justtrades-bot/internal/discord"
	"justtrades-bot/internal/health"
	"justtrades-bot/internal/logging"
	"justtrades-bot/internal/notify"
)

const shutdownTimeout = 10 * time.Second

// App is the running bot: the core connected to Discord, plus the health
// server.
type App struct {
	Core   *Core
	client *discord.Client
	server *health.Server
	logger zerolog.Logger
}

// New wires the bot from cfg. The Discord token must be present.
func New(cfg *config.Config, version string, logger zerolog.Logger) (*App, error) {
	if err := cfg.RequireToken(); err != nil {
		return nil, err
	}

	client, err := discord.New(cfg.Discord, logger)
	if err != nil {
		return nil, err
	}

	primary := discord.NewChannelSink(client.Session(), cfg.ChannelIDs(), cfg.Schedule.DeliveryTimeout)
	sink := notify.NewMultiSink(primary, cfg.Notifications, logger)

	core, err := NewCore(cfg, sink, CoreOptions{Gateway: client}, logger)
	if err != nil {
		return nil, err
	}
	client.SetRouter(core.Router)

	core.Monitor.Register("discord", func(context.Context) health.ComponentHealth {
		if !client.Connected() {
			return health.ComponentHealth{Status: health.StatusUnhealthy, Message: "gateway not ready"}
		}
		h := health.Healthy(fmt.Sprintf("%d guilds", client.Guilds()))
		h.Latency = client.Latency()
		return h
	})

	a := &App{
		Core:   core,
		client: client,
		logger: logging.WithComponent(logger, "bot"),
	}
	if cfg.Health.Enabled {
		a.server = health.NewServer(cfg.Health.Addr(), core.Monitor, core.SchedulerStats, version, logger)
	}

	// Digests only start once the gateway can deliver them.
	client.OnReady(core.StartSchedulers)
	return a, nil
}

// Run connects to Discord and blocks until ctx is cancelled, then shuts
// everything down.
func (a *App) Run(ctx context.Context) error {
	if a.server != nil {
		a.server.Start()
	}

	if err := a.client.Open(); err != nil {
		return errors.Join(err, a.shutdown())
	}
	a.logger.Info().
		Int("commands", len(a.Core.Router.Commands())).
		Int("jobs", len(a.Core.Schedulers)).
		Msg("Bot running")

	<-ctx.Done()
	a.logger.Info().Msg("Shutting down")
	return a.shutdown()
}

// shutdown stops the schedulers, then the health server, then the Discord
// session, then the journal.
func (a *App) shutdown() error {
	var errs []error

	a.Core.StopSchedulers()

	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("health server: %w", err))
		}
		cancel()
	}

	if err := a.client.Close(); err != nil {
		errs = append(errs, fmt.Errorf("discord: %w", err))
	}

	if err := a.Core.Close(); err != nil {
		errs = append(errs, fmt.Errorf("journal: %w", err))
	}

	for _, err := range errs {
		a.logger.Error().Err(err).Msg("Shutdown error")
	}
	a.logger.Info().Msg("Shutdown complete")
	return errors.Join(errs...)
}
