package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"pagespeed-campaign/internal/bootstrap"
	"pagespeed-campaign/internal/shared/config"
	"pagespeed-campaign/internal/shared/server/respond"
	"pagespeed-campaign/internal/shared/telemetry"
)

var (
	initOnce  sync.Once
	initErr   error
	ginLambda *ginadapter.GinLambdaV2
)

func initApp() {
	app, err := bootstrap.TryBuild(config.Load())
	if err != nil {
		initErr = err
		return
	}
	ginLambda = ginadapter.NewV2(app.Router)
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("lambda.bootstrap.error", map[string]any{
			"error":     initErr.Error(),
			"route_key": req.RouteKey,
		})
		return errorResponse(http.StatusInternalServerError, "Service unavailable: bootstrap failed"), nil
	}
	return ginLambda.ProxyWithContext(ctx, req)
}

// errorResponse answers in the same envelope the router uses.
func errorResponse(status int, message string) events.APIGatewayV2HTTPResponse {
	body, err := json.Marshal(respond.ErrorResponse{
		Error: respond.ErrorBody{Code: respond.CodeInternal, Message: message},
	})
	if err != nil {
		body = []byte(`{"error":{"code":"internal_error","message":"Unexpected server error"}}`)
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	lambda.Start(handler)
}
