package http_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/nudgebot/pkg/controller/http"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
)

// computeSlackSignature computes the Slack signature for testing
func computeSlackSignature(signingSecret, timestamp, body string) string {
	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	return "v0=" + hex.EncodeToString(h.Sum(nil))
}

func signedRequest(secret, path, body string, at time.Time) *http.Request {
	timestamp := strconv.FormatInt(at.Unix(), 10)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", computeSlackSignature(secret, timestamp, body))
	return req
}

func TestVerifySlackSignature(t *testing.T) {
	signingSecret := "test-signing-secret"
	body := []byte(`{"type":"url_verification","challenge":"test"}`)
	now := time.Now()
	timestamp := strconv.FormatInt(now.Unix(), 10)

	t.Run("valid signature", func(t *testing.T) {
		signature := computeSlackSignature(signingSecret, timestamp, string(body))
		gt.NoError(t, httpctrl.VerifySlackSignature(signingSecret, timestamp, signature, body, now))
	})

	t.Run("invalid signature", func(t *testing.T) {
		err := httpctrl.VerifySlackSignature(signingSecret, timestamp, "v0=invalid_signature", body, now)
		gt.Value(t, err).NotNil()
	})

	t.Run("tampered body", func(t *testing.T) {
		signature := computeSlackSignature(signingSecret, timestamp, string(body))
		err := httpctrl.VerifySlackSignature(signingSecret, timestamp, signature, []byte(`{"type":"other"}`), now)
		gt.Value(t, err).NotNil()
	})

	t.Run("missing timestamp", func(t *testing.T) {
		signature := computeSlackSignature(signingSecret, "123456", string(body))
		err := httpctrl.VerifySlackSignature(signingSecret, "", signature, body, now)
		gt.Value(t, err).NotNil()
	})

	t.Run("missing signature", func(t *testing.T) {
		err := httpctrl.VerifySlackSignature(signingSecret, timestamp, "", body, now)
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid timestamp format", func(t *testing.T) {
		err := httpctrl.VerifySlackSignature(signingSecret, "not-a-number", "v0=abc", body, now)
		gt.Value(t, err).NotNil()
	})

	t.Run("timestamp too old", func(t *testing.T) {
		old := strconv.FormatInt(now.Add(-6*time.Minute).Unix(), 10)
		signature := computeSlackSignature(signingSecret, old, string(body))
		err := httpctrl.VerifySlackSignature(signingSecret, old, signature, body, now)
		gt.Value(t, err).NotNil()
	})

	t.Run("timestamp too far in the future", func(t *testing.T) {
		future := strconv.FormatInt(now.Add(6*time.Minute).Unix(), 10)
		signature := computeSlackSignature(signingSecret, future, string(body))
		err := httpctrl.VerifySlackSignature(signingSecret, future, signature, body, now)
		gt.Value(t, err).NotNil()
	})

	t.Run("timestamp within window", func(t *testing.T) {
		recent := strconv.FormatInt(now.Add(-4*time.Minute).Unix(), 10)
		signature := computeSlackSignature(signingSecret, recent, string(body))
		gt.NoError(t, httpctrl.VerifySlackSignature(signingSecret, recent, signature, body, now))
	})
}

func TestSlackSignatureMiddleware(t *testing.T) {
	signingSecret := "test-signing-secret"
	body := `{"type":"url_verification","challenge":"test"}`

	t.Run("calls next handler with restored body when signature is valid", func(t *testing.T) {
		req := signedRequest(signingSecret, "/hooks/slack/event", body, time.Now())
		rec := httptest.NewRecorder()

		var receivedBody []byte
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var err error
			receivedBody, err = io.ReadAll(r.Body)
			gt.NoError(t, err)
			w.WriteHeader(http.StatusOK)
		})

		httpctrl.SlackSignatureMiddleware(signingSecret)(next).ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, string(receivedBody)).Equal(body)
	})

	t.Run("does not call next handler with a different secret", func(t *testing.T) {
		req := signedRequest("correct-secret", "/hooks/slack/event", body, time.Now())
		rec := httptest.NewRecorder()

		nextCalled := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextCalled = true
		})

		httpctrl.SlackSignatureMiddleware("wrong-secret")(next).ServeHTTP(rec, req)

		gt.Bool(t, nextCalled).False()
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("uses the injected clock", func(t *testing.T) {
		signedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		req := signedRequest(signingSecret, "/hooks/slack/event", body, signedAt)
		rec := httptest.NewRecorder()

		nextCalled := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextCalled = true
		})

		clock := func() time.Time { return signedAt.Add(time.Minute) }
		httpctrl.SlackSignatureMiddlewareWithClock(signingSecret, clock)(next).ServeHTTP(rec, req)

		gt.Bool(t, nextCalled).True()
	})
}

// mockWebhookUseCase records inbound events and returns a fixed response
type mockWebhookUseCase struct {
	received []*model.InboundEvent
	resp     *model.WebhookResponse
}

func (m *mockWebhookUseCase) HandleEvent(ctx context.Context, in *model.InboundEvent) *model.WebhookResponse {
	m.received = append(m.received, in)
	return m.resp
}

func TestSlackWebhookHandler(t *testing.T) {
	t.Run("event endpoint uses direct decoding", func(t *testing.T) {
		uc := &mockWebhookUseCase{resp: &model.WebhookResponse{StatusCode: http.StatusOK, Body: "challenge-value"}}
		body := `{"type":"url_verification","challenge":"challenge-value"}`

		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader([]byte(body)))
		rec := httptest.NewRecorder()
		httpctrl.NewSlackEventHandler(uc).ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, rec.Body.String()).Equal("challenge-value")
		gt.Value(t, len(uc.received)).Equal(1).Required()
		gt.Value(t, uc.received[0].Body).Equal(body)
		gt.Value(t, uc.received[0].Decoding).Equal(model.DecodeDirect)
	})

	t.Run("interaction endpoint uses transport decoding", func(t *testing.T) {
		uc := &mockWebhookUseCase{resp: &model.WebhookResponse{StatusCode: http.StatusOK, Body: "Action processed"}}

		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/interaction", bytes.NewReader([]byte("payload=%7B%7D")))
		rec := httptest.NewRecorder()
		httpctrl.NewSlackInteractionHandler(uc).ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, len(uc.received)).Equal(1).Required()
		gt.Value(t, uc.received[0].Body).Equal("payload=%7B%7D")
		gt.Value(t, uc.received[0].Decoding).Equal(model.DecodeTransport)
	})

	t.Run("status code of the dispatcher is returned", func(t *testing.T) {
		uc := &mockWebhookUseCase{resp: &model.WebhookResponse{StatusCode: http.StatusBadRequest, Body: "Missing user_id"}}

		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader([]byte(`{}`)))
		rec := httptest.NewRecorder()
		httpctrl.NewSlackEventHandler(uc).ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
		gt.Value(t, rec.Body.String()).Equal("Missing user_id")
	})
}
