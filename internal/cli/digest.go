package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"justtrades-bot/internal/digest"
	"justtrades-bot/internal/models"
	"justtrades-bot/internal/notify"
)

func newDigestCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Work with the scheduled digests",
	}

	previewCmd := &cobra.Command{
		Use:       "preview [daily|weekly]",
		Short:     "Render a digest to the terminal instead of Discord",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(digest.KindDaily), string(digest.KindWeekly)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := digest.KindWeekly
			if len(args) == 1 {
				kind = digest.Kind(args[0])
			}
			noMarket, _ := cmd.Flags().GetBool("no-market")

			output := NewOutput(cmd)
			sink := notify.NewTerminalSink(output.Writer(), output.ColorEnabled())
			core, err := offlineCore(app, sink)
			if err != nil {
				return err
			}
			defer core.Close()

			var (
				spec    digest.Spec
				channel string
			)
			switch kind {
			case digest.KindDaily:
				spec, channel = core.DailySpec(), app.Config.Schedule.Daily.Channel
			case digest.KindWeekly:
				spec, channel = core.WeeklySpec(), app.Config.Schedule.Weekly.Channel
			default:
				return fmt.Errorf("unknown digest %q (want daily or weekly)", kind)
			}
			if noMarket {
				spec.IncludeMarket = false
			}

			key, ok := models.ParseChannelKey(channel)
			if !ok {
				key = models.ChannelEconomicCalendar
			}
			now := app.Now()
			if output.IsJSON() {
				msg := core.Digest.Render(core.Digest.Build(cmd.Context(), spec, now))
				return output.JSON(map[string]interface{}{"channel": key, "message": msg})
			}
			return core.Digest.Deliver(cmd.Context(), sink, key, spec, now)
		},
	}
	previewCmd.Flags().Bool("no-market", false, "skip fetching market quotes")
	cmd.AddCommand(previewCmd)

	return cmd
}
