package availability

import "github.com/spf13/cobra"

func NewAvailabilityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Inspect availability computations offline",
	}

	cmd.AddCommand(NewPreviewCommand())

	return cmd
}
