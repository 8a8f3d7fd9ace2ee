package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"justtrades-bot/internal/bot"
	"justtrades-bot/internal/notify"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and run the bot until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Config.RequireToken(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, err := bot.New(app.Config, Version, app.Logger)
			if err != nil {
				return err
			}
			app.Logger.Info().
				Str("version", Version).
				Str("timezone", app.Config.Schedule.Timezone).
				Bool("journal", app.Config.Journal.Enabled).
				Bool("health", app.Config.Health.Enabled).
				Msg("Starting JustTrades bot")
			return b.Run(ctx)
		},
	}
}

// offlineCore builds the bot core without a Discord connection or journal,
// posting to sink.
func offlineCore(app *App, sink notify.Sink) (*bot.Core, error) {
	cfg := *app.Config
	cfg.Journal.Enabled = false
	return bot.NewCore(&cfg, sink, bot.CoreOptions{Now: app.now}, app.Logger)
}
