package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
	"github.com/secmon-lab/nudgebot/pkg/utils/errutil"
	"github.com/secmon-lab/nudgebot/pkg/utils/logging"
	"github.com/secmon-lab/nudgebot/pkg/utils/safe"
)

// slackSignatureWindow is how far a request timestamp may be from now
const slackSignatureWindow = 5 * time.Minute

// verifySlackSignature checks the v0 HMAC-SHA256 signature Slack puts on
// every request
func verifySlackSignature(signingSecret, timestamp, signature string, body []byte, now time.Time) error {
	if timestamp == "" {
		return goerr.New("missing timestamp")
	}
	if signature == "" {
		return goerr.New("missing signature")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return goerr.Wrap(err, "invalid timestamp")
	}

	skew := now.Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > slackSignatureWindow {
		return goerr.New("timestamp out of range", goerr.V("timestamp", timestamp), goerr.V("now", now.Unix()))
	}

	mac := hmac.New(sha256.New, []byte(signingSecret))
	if _, err := fmt.Fprintf(mac, "v0:%s:%s", timestamp, body); err != nil {
		return goerr.Wrap(err, "failed to compute HMAC")
	}
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return goerr.New("signature mismatch")
	}

	return nil
}

// SlackSignatureMiddleware rejects requests without a valid Slack signature
// and hands the verified body to the next handler
func SlackSignatureMiddleware(signingSecret string) func(http.Handler) http.Handler {
	return slackSignatureMiddleware(signingSecret, time.Now)
}

func slackSignatureMiddleware(signingSecret string, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
				return
			}
			safe.Close(ctx, r.Body)

			timestamp := r.Header.Get("X-Slack-Request-Timestamp")
			signature := r.Header.Get("X-Slack-Signature")

			if err := verifySlackSignature(signingSecret, timestamp, signature, body, now()); err != nil {
				logging.From(ctx).Warn("slack signature verification failed", "error", err.Error())
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

// WebhookUseCase dispatches one inbound Slack webhook
type WebhookUseCase interface {
	HandleEvent(ctx context.Context, in *model.InboundEvent) *model.WebhookResponse
}

// SlackWebhookHandler passes Slack webhook bodies to the dispatcher and
// writes its status and body back
type SlackWebhookHandler struct {
	webhookUC WebhookUseCase
	decoding  model.PayloadDecoding
}

// NewSlackEventHandler handles Events API requests, whose body is JSON
func NewSlackEventHandler(webhookUC WebhookUseCase) *SlackWebhookHandler {
	return &SlackWebhookHandler{
		webhookUC: webhookUC,
		decoding:  model.DecodeDirect,
	}
}

// NewSlackInteractionHandler handles interactivity requests, whose body is a
// form with the JSON in its "payload" field
func NewSlackInteractionHandler(webhookUC WebhookUseCase) *SlackWebhookHandler {
	return &SlackWebhookHandler{
		webhookUC: webhookUC,
		decoding:  model.DecodeTransport,
	}
}

func (h *SlackWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	resp := h.webhookUC.HandleEvent(ctx, &model.InboundEvent{
		Body:     string(body),
		Decoding: h.decoding,
	})

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(resp.StatusCode)
	safe.Write(ctx, w, []byte(resp.Body))
}
