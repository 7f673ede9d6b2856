package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/fx"

	"github.com/medisys-health/diagnostics/api"
	"github.com/medisys-health/diagnostics/ingest"
)

func main() {
	var processor *ingest.Processor
	app := fx.New(append(api.Dependencies(), fx.Populate(&processor))...)
	if err := app.Start(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "unable to start ingestion: %s\n", err)
		os.Exit(1)
	}

	lambda.Start(handler(processor))
}

// handler processes every object referenced by an s3 or eventbridge trigger. A
// trigger that can't be parsed fails the invocation so it's retried.
func handler(processor *ingest.Processor) func(ctx context.Context, event json.RawMessage) (ingest.Summary, error) {
	return func(ctx context.Context, event json.RawMessage) (ingest.Summary, error) {
		return processor.ProcessEvent(ctx, event)
	}
}
