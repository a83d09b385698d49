package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	availabilitycmd "github.com/coachbook/coachbook_backend/cmd/availability"
	httpcmd "github.com/coachbook/coachbook_backend/cmd/http"
	systemcmd "github.com/coachbook/coachbook_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "coachbook",
	Short: "Coachbook connects real-estate agents with coaches.",
	Long: `Coachbook is the backend of a coaching marketplace for real-estate agents.
It computes which dates and time slots a coach can still be booked for,
based on the coach's weekly schedule and their connected calendar.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
	rootCmd.AddCommand(availabilitycmd.NewAvailabilityCommand())
}
