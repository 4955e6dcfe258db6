package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"pagespeed-campaign/internal/analyses"
	"pagespeed-campaign/internal/queue"
	"pagespeed-campaign/internal/shared/metrics"
	"pagespeed-campaign/internal/shared/telemetry"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrProcess indicates the analysis failed after the message was parsed.
type ErrProcess struct {
	RunID     string
	RequestID string
	Err       error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process analysis"
	}
	return "process analysis: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// Retryable reports whether redelivering the message could succeed. Bad
// payloads and invalid requests never will; upstream and storage failures may.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var empty ErrEmptyBody
	var decode ErrDecode
	switch {
	case errors.As(err, &empty), errors.As(err, &decode):
		return false
	case errors.Is(err, analyses.ErrInvalidRequest), errors.Is(err, analyses.ErrMissingAPIKey):
		return false
	default:
		return true
	}
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}
	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	return msg, meta, nil
}

// HandleMessage runs the analysis a message asks for. The service is copied
// so a message run id does not leak into other runs.
func HandleMessage(ctx context.Context, svc *analyses.Service, msg queue.Message) (*analyses.Result, error) {
	if svc == nil {
		return nil, errors.New("analysis service not configured")
	}
	run := *svc
	if id := strings.TrimSpace(msg.RunID); id != "" {
		run.NewID = func() string { return id }
	}

	res, err := run.Run(analyses.WithRequestID(ctx, msg.RequestID), msg.Request)
	if err != nil {
		return nil, ErrProcess{RunID: msg.RunID, RequestID: msg.RequestID, Err: err}
	}
	return res, nil
}

// HandleBody parses and processes one raw message, logging and counting the
// outcome. The returned error is nil for completed and dropped messages; a
// non-nil error means the message should be redelivered.
func HandleBody(ctx context.Context, svc *analyses.Service, messageID, body string) error {
	metrics.IncJobsReceived()
	fields := map[string]any{"message_id": messageID}

	msg, meta, err := ParseMessage(body)
	if err != nil {
		fields["body_len"] = meta.BodyLen
		if meta.BodySHA != "" {
			fields["body_sha256"] = meta.BodySHA
		}
		fields["error"] = err.Error()
		telemetry.Error("worker.analysis.decode_failed", fields)
		metrics.IncJobsDropped()
		return nil
	}
	fields["run_id"] = msg.RunID
	fields["url"] = msg.Request.URL
	if msg.RequestID != "" {
		fields["request_id"] = msg.RequestID
	}
	telemetry.Info("worker.analysis.received", fields)

	res, err := HandleMessage(ctx, svc, msg)
	if err != nil {
		fields["error"] = err.Error()
		if !Retryable(err) {
			telemetry.Error("worker.analysis.dropped", fields)
			metrics.IncJobsDropped()
			return nil
		}
		telemetry.Error("worker.analysis.failed", fields)
		metrics.IncJobsFailed()
		return err
	}

	fields["run_id"] = res.RunID
	fields["reports"] = len(res.Reports)
	telemetry.Info("worker.analysis.completed", fields)
	metrics.IncJobsCompleted()
	return nil
}
