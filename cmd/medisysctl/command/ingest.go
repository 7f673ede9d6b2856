package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medisys-health/diagnostics/ingest"
)

var ingestParams = struct {
	Bucket string
	Key    string
	File   string
}{}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a lab export",
	Long: "The ingest command processes an upload from the landing zone, or a local file when --file is set. " +
		"The key determines the clinic of rows without a clinic_id.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if ingestParams.Bucket == "" && ingestParams.File == "" {
			return fmt.Errorf("either --bucket or --file is required")
		}
		return Run(ingestUpload)
	},
}

func ingestUpload(processor *ingest.Processor) error {
	ctx := context.Background()
	ref := ingest.ObjectRef{
		Bucket: ingestParams.Bucket,
		Key:    ingestParams.Key,
	}

	var outcome ingest.FileOutcome
	if ingestParams.File != "" {
		content, err := os.ReadFile(ingestParams.File)
		if err != nil {
			return err
		}
		outcome = processor.ProcessContent(ctx, ref, content)
	} else {
		outcome = processor.ProcessObject(ctx, ref)
	}

	out, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if outcome.Status == ingest.FileStatusFailed {
		return fmt.Errorf("unable to ingest %s: %s", ref.Key, outcome.Error)
	}
	return nil
}

func init() {
	ingestCmd.Flags().StringVar(&ingestParams.Bucket, "bucket", "", "Landing zone bucket")
	ingestCmd.Flags().StringVar(&ingestParams.Key, "key", "", "Object key, e.g. uploads/{clinicId}/export.csv")
	ingestCmd.Flags().StringVar(&ingestParams.File, "file", "", "Local file to ingest instead of downloading the object")
	_ = ingestCmd.MarkFlagRequired("key")

	rootCmd.AddCommand(ingestCmd)
}
