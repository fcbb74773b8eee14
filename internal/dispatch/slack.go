package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/allisson/zkgate/internal/delegation/domain"
	apperrors "github.com/allisson/zkgate/internal/errors"
)

// SlackDispatcher posts messages through the Slack Web API chat.postMessage method.
type SlackDispatcher struct {
	apiURL   string
	client   *http.Client
	resolver TokenResolver
	logger   *slog.Logger
}

// NewSlackDispatcher creates a dispatcher posting to apiURL (https://slack.com/api).
func NewSlackDispatcher(
	apiURL string,
	timeout time.Duration,
	resolver TokenResolver,
	logger *slog.Logger,
) *SlackDispatcher {
	return &SlackDispatcher{
		// slack-go appends method names directly to the API URL.
		apiURL:   strings.TrimRight(apiURL, "/") + "/",
		client:   &http.Client{Timeout: timeout},
		resolver: resolver,
		logger:   logger,
	}
}

// Execute posts payload["message"] to payload["channel"] with the token the record
// references. The request is sent once and never retried.
func (d *SlackDispatcher) Execute(
	ctx context.Context,
	record *domain.DelegationRecord,
	payload domain.ActionPayload,
) (*domain.ActionOutcome, error) {
	channel, message, err := messageFromPayload(payload)
	if err != nil {
		return nil, err
	}

	token, err := d.resolver.Resolve(record.TokenIdentifier)
	if err != nil {
		return nil, err
	}

	api := slack.New(token,
		slack.OptionAPIURL(d.apiURL),
		slack.OptionHTTPClient(d.client),
		slack.OptionLog(slog.NewLogLogger(d.logger.Handler(), slog.LevelDebug)),
	)

	postedChannel, ts, err := api.PostMessageContext(ctx, channel, slack.MsgOptionText(message, false))
	if err != nil {
		return nil, slackError(err)
	}

	d.logger.Info("message posted",
		slog.String("channel", channel),
		slog.String("token_identifier", record.TokenIdentifier),
		slog.String("ts", ts),
	)

	if postedChannel == "" {
		postedChannel = channel
	}
	return &domain.ActionOutcome{
		Action:       record.Action,
		Detail:       fmt.Sprintf("posted to %s at %s", postedChannel, ts),
		DispatchedAt: time.Now().UTC(),
	}, nil
}

// slackError maps a Web API failure to ErrDispatch, keeping the Slack error code.
func slackError(err error) error {
	var (
		apiErr       slack.SlackErrorResponse
		statusErr    slack.StatusCodeError
		rateLimitErr *slack.RateLimitedError
	)
	switch {
	case errors.As(err, &apiErr):
		return apperrors.Wrap(apperrors.ErrDispatch, "slack error: "+apiErr.Err)
	case errors.As(err, &statusErr):
		return apperrors.Wrap(apperrors.ErrDispatch, fmt.Sprintf("slack returned status %d", statusErr.Code))
	case errors.As(err, &rateLimitErr):
		return apperrors.Wrap(apperrors.ErrDispatch, rateLimitErr.Error())
	default:
		return fmt.Errorf("%w: slack request failed: %w", apperrors.ErrDispatch, err)
	}
}
