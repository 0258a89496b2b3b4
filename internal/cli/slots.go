package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/elevate-events/lounge/internal/booking"
	"github.com/elevate-events/lounge/internal/i18n"
	"github.com/spf13/cobra"
)

func newSlotsCmd() *cobra.Command {
	var (
		date string
		tz   string
		lang string
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print the start times still bookable on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("invalid --tz: %w", err)
			}

			now := time.Now().In(loc)
			if date == "" {
				date = now.Format(booking.DateLayout)
			}
			if _, err := time.ParseInLocation(booking.DateLayout, date, loc); err != nil {
				return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", date)
			}

			out := cmd.OutOrStdout()
			if booking.NoSlotsLeft(date, now, booking.SlotInterval) {
				fmt.Fprintln(out, i18n.For(lang).T(i18n.KeyNoSlots))
				return nil
			}

			fmt.Fprintln(out, strings.Join(booking.Slots(date, now, booking.SlotInterval), " "))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to list, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&tz, "tz", "Europe/Berlin", "venue time zone")
	cmd.Flags().StringVar(&lang, "lang", "en", "message language")

	return cmd
}
