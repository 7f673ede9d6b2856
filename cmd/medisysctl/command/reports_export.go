package command

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medisys-health/diagnostics/ingest"
	"github.com/medisys-health/diagnostics/reports/query"
)

var reportsExportParams = struct {
	Out string
}{}

var reportsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export reports to a workbook",
	Long:  "The export command writes the newest reports to an xlsx workbook in the lab export layout",
	RunE:  func(cmd *cobra.Command, args []string) error { return Run(exportReports) },
}

func exportReports(engine *query.Engine) (err error) {
	list, err := engine.List(context.Background(), operatorAccess, query.Params{
		Limit:        reportsParams.Limit,
		ClinicFilter: reportsParams.ClinicId,
	})
	if err != nil {
		return err
	}

	file, err := os.Create(reportsExportParams.Out)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	if err := ingest.ExportWorkbook(list, file); err != nil {
		return fmt.Errorf("unable to write workbook: %w", err)
	}
	fmt.Printf("Exported %v reports to %s\n", len(list), reportsExportParams.Out)

	return nil
}

func init() {
	reportsExportCmd.Flags().StringVar(&reportsExportParams.Out, "out", "reports.xlsx", "Output file")

	reportsCmd.AddCommand(reportsExportCmd)
}
