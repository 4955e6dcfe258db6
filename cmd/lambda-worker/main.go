package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker
//
// The function is triggered by an SQS queue whose messages are queue.Message
// payloads, e.g. scheduled re-analyses published by EventBridge.

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"pagespeed-campaign/internal/analyses"
	"pagespeed-campaign/internal/bootstrap"
	"pagespeed-campaign/internal/shared/config"
	"pagespeed-campaign/internal/shared/telemetry"
	"pagespeed-campaign/internal/workerproc"
)

var (
	initOnce sync.Once
	initErr  error
	svc      *analyses.Service
)

func initApp() {
	app, err := bootstrap.TryBuild(config.Load())
	if err != nil {
		initErr = err
		return
	}
	svc = app.AnalysesService
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("lambda.bootstrap.error", map[string]any{"error": initErr.Error()})
		return events.SQSEventResponse{BatchItemFailures: allFailed(event)}, initErr
	}
	return process(ctx, svc, event), nil
}

func process(ctx context.Context, svc *analyses.Service, event events.SQSEvent) events.SQSEventResponse {
	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		if err := workerproc.HandleBody(ctx, svc, record.MessageId, record.Body); err != nil {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func allFailed(event events.SQSEvent) []events.SQSBatchItemFailure {
	failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
	for _, record := range event.Records {
		failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
	}
	return failures
}

func main() {
	lambda.Start(handler)
}
