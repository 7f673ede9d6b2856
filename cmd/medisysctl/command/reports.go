package command

import (
	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Diagnostic reports",
	Long:  "The reports command is used to inspect and export stored reports",
}

var reportsParams = struct {
	ClinicId string
	Limit    int
}{}

func init() {
	reportsCmd.PersistentFlags().StringVar(&reportsParams.ClinicId, "clinic", "", "Only include reports of this clinic")
	reportsCmd.PersistentFlags().IntVar(&reportsParams.Limit, "limit", 100, "Maximum number of reports")

	rootCmd.AddCommand(reportsCmd)
}
