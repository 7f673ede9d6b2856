package command

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/medisys-health/diagnostics/analytics"
	"github.com/medisys-health/diagnostics/reports/query"
)

var analyticsParams = struct {
	Days int
}{}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Print report analytics",
	Long:  "The analytics command prints the dashboard statistics of every clinic",
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyticsParams.Days < 1 || analyticsParams.Days > 365 {
			return fmt.Errorf("days must be between 1 and 365")
		}
		return Run(printAnalytics)
	},
}

func printAnalytics(engine *query.Engine) error {
	now := time.Now()
	list, err := engine.ListForAnalytics(context.Background(), operatorAccess, analyticsParams.Days, now)
	if err != nil {
		return err
	}

	result := analytics.Aggregate(list, analyticsParams.Days, now)
	result.Metadata = analytics.NewMetadata(operatorAccess, analyticsParams.Days, len(list), now)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	return nil
}

func init() {
	analyticsCmd.Flags().IntVar(&analyticsParams.Days, "days", 30, "Number of days to aggregate")

	rootCmd.AddCommand(analyticsCmd)
}
