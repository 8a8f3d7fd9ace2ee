package cli

import (
	"time"

	"github.com/spf13/cobra"

	"justtrades-bot/internal/calendar"
	"justtrades-bot/internal/models"
	"justtrades-bot/internal/notify"
)

func newCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Inspect the economic calendar and the digest schedule",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List upcoming events",
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			store, err := loadCalendar(app)
			if err != nil {
				return err
			}
			events := store.Upcoming(app.Now(), days)

			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"days": days, "events": events})
			}
			output.Bold("Economic Calendar - Next %d Days", days)
			if len(events) == 0 {
				output.Dim("No economic events in the next %d days.", days)
				return nil
			}
			renderEvents(output, events, app.Config.Schedule.TimezoneLabel)
			return nil
		},
	}
	listCmd.Flags().Int("days", 7, "number of days to look ahead")
	cmd.AddCommand(listCmd)

	allCmd := &cobra.Command{
		Use:   "all",
		Short: "List every event in the calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			store, err := loadCalendar(app)
			if err != nil {
				return err
			}
			events, omitted := store.ListAll(limit)

			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"events": events, "omitted": omitted})
			}
			output.Bold("All Calendar Events (%d)", store.Len())
			renderEvents(output, events, app.Config.Schedule.TimezoneLabel)
			if omitted > 0 {
				output.Dim("...and %d more", omitted)
			}
			return nil
		},
	}
	allCmd.Flags().Int("limit", 25, "maximum events to show (0 for all)")
	cmd.AddCommand(allCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "next",
		Short: "Show when each scheduled digest fires next",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := offlineCore(app, notify.NewMemorySink())
			if err != nil {
				return err
			}
			defer core.Close()
			stats := core.SchedulerStats()

			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(stats)
			}
			if len(stats) == 0 {
				output.Dim("No scheduled digests are enabled.")
				return nil
			}
			table := NewTable(output, "JOB", "AT", "GUARD", "NEXT FIRE")
			for _, st := range stats {
				table.AddRow(st.Job, st.At, st.Guard, st.NextFire.In(core.Location).Format("Mon 2006-01-02 15:04 MST"))
			}
			table.Render()
			return nil
		},
	})

	return cmd
}

func loadCalendar(app *App) (*calendar.Store, error) {
	seed, err := calendar.Seed(app.Config.Calendar.SeedFile)
	if err != nil {
		return nil, err
	}
	return calendar.NewStore(app.Logger, seed...), nil
}

func renderEvents(output *Output, events []models.CalendarEvent, tzLabel string) {
	table := NewTable(output, "DATE", "TIME", "IMPACT", "EVENT", "FORECAST")
	for _, e := range events {
		day := e.Date
		if d, err := time.Parse(models.DateLayout, e.Date); err == nil {
			day = d.Format("Mon 2006-01-02")
		}
		table.AddRow(day, e.TimeLabel()+" "+tzLabel, output.Impact(e.Impact), e.Name, e.Forecast)
	}
	table.Render()
}
