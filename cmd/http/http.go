package http

import "github.com/spf13/cobra"

func NewHTTPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Public availability API",
		Long: `Serve the coach availability API.

The server answers bookable dates, grouped slots for a date and slot
re-verification. Calendar change events received over NATS drop cached
busy times so the next request sees fresh data.`,
	}

	cmd.AddCommand(NewStartCommand())

	return cmd
}
