package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/interfaces"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
	"github.com/secmon-lab/nudgebot/pkg/utils/errutil"
	"github.com/secmon-lab/nudgebot/pkg/utils/logging"
)

// Response bodies of the dispatcher
const (
	BodyMissingUser      = "Missing user_id"
	BodyInvalidPayload   = "Invalid payload"
	BodyPublishFailed    = "Failed to publish view"
	BodyHomePublished    = "Home view published"
	BodyActionProcessed  = "Action processed"
	BodyNotHandled       = "Success, event not handled"
	BodyConfigurationErr = "Configuration error"
)

// WebhookUseCase dispatches one inbound Slack webhook to its handler
type WebhookUseCase struct {
	repo      interfaces.Repository
	connector *slackConnector
	profile   ProfileConfig
	now       func() time.Time
}

func newWebhookUseCase(repo interfaces.Repository, connector *slackConnector, profile ProfileConfig, now func() time.Time) *WebhookUseCase {
	if now == nil {
		now = time.Now
	}
	return &WebhookUseCase{
		repo:      repo,
		connector: connector,
		profile:   profile.withDefaults(),
		now:       now,
	}
}

func respond(status int, body string) *model.WebhookResponse {
	return &model.WebhookResponse{StatusCode: status, Body: body}
}

// HandleEvent classifies the event and runs its handler. It always returns a
// response; failures are logged and mapped to a status code.
func (uc *WebhookUseCase) HandleEvent(ctx context.Context, in *model.InboundEvent) *model.WebhookResponse {
	var data []byte
	if len(in.Structured) > 0 {
		data = in.Structured
	} else {
		decoded, err := DecodePayload(in.Body, in.IsBase64Encoded, in.Decoding)
		if err != nil {
			logging.From(ctx).Warn("failed to decode webhook payload", "error", err.Error())
			return respond(http.StatusBadRequest, BodyInvalidPayload)
		}
		data = decoded
	}

	event, err := ParseWebhookEvent(data)
	if err != nil {
		logging.From(ctx).Warn("failed to parse webhook payload", "error", err.Error())
		return respond(http.StatusBadRequest, BodyInvalidPayload)
	}

	logging.From(ctx).Info("dispatching webhook event", "kind", event.EventKind())

	switch ev := event.(type) {
	case *model.URLVerificationEvent:
		return respond(http.StatusOK, ev.Challenge)

	case *model.AppHomeOpenedEvent:
		return uc.handleAppHomeOpened(ctx, ev)

	case *model.BlockActionEvent:
		if ev.ActionID != SubmitActionID {
			return respond(http.StatusOK, BodyNotHandled)
		}
		return uc.handleProfileSubmit(ctx, ev)

	default:
		return respond(http.StatusOK, BodyNotHandled)
	}
}

func (uc *WebhookUseCase) handleAppHomeOpened(ctx context.Context, ev *model.AppHomeOpenedEvent) *model.WebhookResponse {
	if ev.UserID == "" {
		logging.From(ctx).Warn("rejected home view event", "error", ErrMissingUser.Error())
		return respond(http.StatusBadRequest, BodyMissingUser)
	}

	svc, err := uc.connector.connect(ctx)
	if err != nil {
		errutil.Handle(ctx, err, "failed to prepare slack client")
		return respond(http.StatusInternalServerError, BodyConfigurationErr)
	}

	var existing *string
	record, err := uc.repo.ProfileResponse().Get(ctx, ev.UserID)
	if err != nil {
		// treated as no stored response
		logging.From(ctx).Warn("failed to look up profile response",
			"user_id", ev.UserID,
			"error", err.Error(),
		)
	} else if record != nil && record.Response != "" {
		// an empty stored answer asks the question again
		existing = &record.Response
	}

	blocks := buildHomeViewBlocks(uc.profile, existing)
	if err := svc.PublishHomeView(ctx, string(ev.UserID), blocks); err != nil {
		errutil.Handle(ctx, goerr.Wrap(ErrDownstreamCall, "failed to publish home view",
			goerr.V(UserIDKey, ev.UserID),
			goerr.V("error", err.Error()),
		), "home view publish failed")
		return respond(http.StatusInternalServerError, BodyPublishFailed)
	}

	return respond(http.StatusOK, BodyHomePublished)
}

func (uc *WebhookUseCase) handleProfileSubmit(ctx context.Context, ev *model.BlockActionEvent) *model.WebhookResponse {
	logger := logging.From(ctx)

	raw, ok := ev.FormValues.Lookup(ProfileBlockID, ProfileInputID)
	if ev.UserID == "" || !ok {
		logger.Warn("profile submission without user or answer, skipped",
			"user_id", ev.UserID,
			"has_answer", ok,
		)
		return respond(http.StatusOK, BodyActionProcessed)
	}

	svc, err := uc.connector.connect(ctx)
	if err != nil {
		errutil.Handle(ctx, err, "failed to prepare slack client")
		return respond(http.StatusInternalServerError, BodyConfigurationErr)
	}

	answer := decodeFormValue(raw)

	record := model.NewProfileResponse(ev.UserID, answer, uc.now())
	if err := uc.repo.ProfileResponse().Put(ctx, record); err != nil {
		errutil.Handle(ctx, goerr.Wrap(ErrPersistence, "failed to save profile response",
			goerr.V(UserIDKey, ev.UserID),
			goerr.V("error", err.Error()),
		), "profile response not saved")
	}

	if err := svc.PostMessage(ctx, string(ev.UserID), confirmationMessage(uc.profile, answer)); err != nil {
		errutil.Handle(ctx, goerr.Wrap(ErrDownstreamCall, "failed to send confirmation",
			goerr.V(UserIDKey, ev.UserID),
			goerr.V("error", err.Error()),
		), "confirmation message not sent")
	}

	logger.Info("profile response processed", "user_id", ev.UserID)
	return respond(http.StatusOK, BodyActionProcessed)
}

// StatusOf maps a use case error to an HTTP status code
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrEmptyPayload), errors.Is(err, ErrMalformedPayload), errors.Is(err, ErrMissingUser):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
