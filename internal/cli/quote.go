package cli

import (
	"fmt"

	"github.com/elevate-events/lounge/internal/booking"
	"github.com/elevate-events/lounge/internal/catalog"
	"github.com/elevate-events/lounge/internal/domain"
	"github.com/elevate-events/lounge/internal/i18n"
	"github.com/spf13/cobra"
)

func newQuoteCmd() *cobra.Command {
	var (
		venue string
		hours int
		lang  string
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Print the price of a lounge for a number of hours",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalog.Default()

			v, ok := cat.Get(venue)
			if !ok {
				return fmt.Errorf("%w: %q", booking.ErrUnknownVenue, venue)
			}
			if hours < booking.MinDurationHours || hours > booking.MaxDurationHours {
				return fmt.Errorf("--hours must be between %d and %d", booking.MinDurationHours, booking.MaxDurationHours)
			}

			total := booking.Total(cat, domain.BookingDraft{VenueID: v.ID, DurationHours: hours})
			fmt.Fprintf(cmd.OutOrStdout(), "%s, %dh: %s\n", v.Name, hours, i18n.For(lang).FormatEUR(total))
			return nil
		},
	}

	cmd.Flags().StringVar(&venue, "venue", "", "lounge id (platinum, gold, vip)")
	cmd.Flags().IntVar(&hours, "hours", booking.DefaultDurationHours, "booked hours")
	cmd.Flags().StringVar(&lang, "lang", "en", "display language")
	_ = cmd.MarkFlagRequired("venue")

	return cmd
}
