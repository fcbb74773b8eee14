// Package dispatch executes authorized actions against downstream services.
// Dispatchers only ever receive records the authorization gate has already approved.
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/allisson/zkgate/internal/delegation/domain"
	apperrors "github.com/allisson/zkgate/internal/errors"
)

// Payload keys understood by post_message dispatchers.
const (
	PayloadChannel = "channel"
	PayloadMessage = "message"
)

// DefaultTokenIdentifier names the token used when a record's identifier has no
// dedicated token configured.
const DefaultTokenIdentifier = "default"

// Dispatcher performs the action a delegation record permits.
// Downstream failures wrap apperrors.ErrDispatch, unusable payloads wrap
// apperrors.ErrInvalidInput.
type Dispatcher interface {
	Execute(
		ctx context.Context,
		record *domain.DelegationRecord,
		payload domain.ActionPayload,
	) (*domain.ActionOutcome, error)
}

// Registry routes records to the dispatcher registered for their action.
type Registry struct {
	dispatchers map[domain.Action]Dispatcher
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{dispatchers: make(map[domain.Action]Dispatcher)}
}

// Register binds a dispatcher to an action, replacing any previous binding.
func (r *Registry) Register(action domain.Action, dispatcher Dispatcher) {
	r.dispatchers[action] = dispatcher
}

// Execute forwards to the dispatcher registered for record.Action.
func (r *Registry) Execute(
	ctx context.Context,
	record *domain.DelegationRecord,
	payload domain.ActionPayload,
) (*domain.ActionOutcome, error) {
	dispatcher, ok := r.dispatchers[record.Action]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrDispatch, fmt.Sprintf("no dispatcher for action %q", record.Action))
	}
	return dispatcher.Execute(ctx, record, payload)
}

// TokenResolver maps a record's token identifier to the downstream credential.
type TokenResolver interface {
	Resolve(identifier string) (string, error)
}

type staticTokenResolver struct {
	tokens map[string]string
}

// NewStaticTokenResolver resolves identifiers from a fixed map. Identifiers without an
// entry fall back to DefaultTokenIdentifier when it is configured.
func NewStaticTokenResolver(tokens map[string]string) TokenResolver {
	copied := make(map[string]string, len(tokens))
	for k, v := range tokens {
		copied[k] = v
	}
	return &staticTokenResolver{tokens: copied}
}

func (r *staticTokenResolver) Resolve(identifier string) (string, error) {
	if token, ok := r.tokens[identifier]; ok {
		return token, nil
	}
	if token, ok := r.tokens[DefaultTokenIdentifier]; ok {
		return token, nil
	}
	return "", apperrors.Wrap(apperrors.ErrDispatch, fmt.Sprintf("no token configured for %q", identifier))
}

// messageFromPayload extracts channel and message of a post_message action.
// ValidatePayload checks the payload shape shared by every action in the closed set.
// Callers run it before authorization so a malformed request never spends a proof.
func ValidatePayload(payload domain.ActionPayload) error {
	_, _, err := messageFromPayload(payload)
	return err
}

func messageFromPayload(payload domain.ActionPayload) (string, string, error) {
	channel := strings.TrimSpace(payload[PayloadChannel])
	message := payload[PayloadMessage]
	if channel == "" || strings.TrimSpace(message) == "" {
		return "", "", apperrors.Wrap(apperrors.ErrInvalidInput, "channel and message are required")
	}
	return channel, message, nil
}
