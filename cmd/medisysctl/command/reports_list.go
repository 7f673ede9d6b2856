package command

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/medisys-health/diagnostics/reports/query"
)

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports",
	Long:  "The list command prints the newest reports, optionally of a single clinic",
	RunE:  func(cmd *cobra.Command, args []string) error { return Run(listReports) },
}

func listReports(engine *query.Engine) error {
	list, err := engine.List(context.Background(), operatorAccess, query.Params{
		Limit:        reportsParams.Limit,
		ClinicFilter: reportsParams.ClinicId,
	})
	if err != nil {
		return err
	}

	for _, report := range list {
		fmt.Printf("%s %s %s %s %d tests, %d critical\n",
			report.ReportId,
			report.ClinicId,
			report.PatientId,
			report.Timestamp.Format(time.RFC3339),
			len(report.TestResults),
			report.CriticalCount(),
		)
	}
	fmt.Printf("Found %v reports\n", len(list))

	return nil
}

func init() {
	reportsCmd.AddCommand(reportsListCmd)
}
