package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/allisson/zkgate/internal/delegation/domain"
	apperrors "github.com/allisson/zkgate/internal/errors"
	"github.com/allisson/zkgate/internal/metrics"
)

const metricsDomain = "delegation"

// outcomeStatus labels an operation result; denials are reported apart from failures.
func outcomeStatus(err error) string {
	if err == nil {
		return "success"
	}
	if _, ok := domain.DenialReasonOf(err); ok {
		return "denied"
	}
	return "error"
}

func recordOutcome(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	status := outcomeStatus(err)
	m.RecordOperation(ctx, metricsDomain, operation, status)
	m.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
	if reason, ok := domain.DenialReasonOf(err); ok {
		m.RecordDenial(ctx, string(reason))
	}
}

// issuerUseCaseWithMetrics decorates IssuerUseCase with metrics instrumentation.
type issuerUseCaseWithMetrics struct {
	next    IssuerUseCase
	metrics metrics.BusinessMetrics
}

// NewIssuerUseCaseWithMetrics wraps an IssuerUseCase with metrics recording.
func NewIssuerUseCaseWithMetrics(useCase IssuerUseCase, m metrics.BusinessMetrics) IssuerUseCase {
	return &issuerUseCaseWithMetrics{next: useCase, metrics: m}
}

func (i *issuerUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *domain.IssueCredentialInput,
) (*domain.IssueCredentialOutput, error) {
	start := time.Now()
	output, err := i.next.Issue(ctx, input)
	recordOutcome(ctx, i.metrics, "credential_issue", start, err)
	return output, err
}

func (i *issuerUseCaseWithMetrics) Get(
	ctx context.Context,
	commitment domain.Commitment,
) (*domain.DelegationRecord, error) {
	start := time.Now()
	output, err := i.next.Get(ctx, commitment)
	recordOutcome(ctx, i.metrics, "credential_get", start, err)
	return output, err
}

// gateUseCaseWithMetrics decorates GateUseCase with metrics instrumentation.
type gateUseCaseWithMetrics struct {
	next    GateUseCase
	metrics metrics.BusinessMetrics
}

// NewGateUseCaseWithMetrics wraps a GateUseCase with metrics recording.
// Denials are counted per reason code.
func NewGateUseCaseWithMetrics(useCase GateUseCase, m metrics.BusinessMetrics) GateUseCase {
	return &gateUseCaseWithMetrics{next: useCase, metrics: m}
}

func (g *gateUseCaseWithMetrics) Authorize(
	ctx context.Context,
	input *domain.AuthorizeInput,
) (*domain.AuthorizedAction, error) {
	start := time.Now()
	output, err := g.next.Authorize(ctx, input)
	recordOutcome(ctx, g.metrics, "authorize", start, err)
	return output, err
}

// executeUseCaseWithMetrics decorates ExecuteUseCase with metrics instrumentation.
// Denials inside Execute are already counted by the decorated gate.
type executeUseCaseWithMetrics struct {
	next    ExecuteUseCase
	metrics metrics.BusinessMetrics
}

// NewExecuteUseCaseWithMetrics wraps an ExecuteUseCase with metrics recording.
func NewExecuteUseCaseWithMetrics(useCase ExecuteUseCase, m metrics.BusinessMetrics) ExecuteUseCase {
	return &executeUseCaseWithMetrics{next: useCase, metrics: m}
}

func (e *executeUseCaseWithMetrics) Execute(
	ctx context.Context,
	input *domain.ExecuteInput,
) (*domain.ExecuteOutput, error) {
	start := time.Now()
	output, err := e.next.Execute(ctx, input)

	status := outcomeStatus(err)
	e.metrics.RecordOperation(ctx, metricsDomain, "execute", status)
	e.metrics.RecordDuration(ctx, metricsDomain, "execute", time.Since(start), status)

	switch {
	case err == nil:
		e.metrics.RecordDispatch(ctx, "success")
	case errors.Is(err, apperrors.ErrDispatch):
		e.metrics.RecordDispatch(ctx, "failed")
	}

	return output, err
}

// proveUseCaseWithMetrics decorates ProveUseCase with metrics instrumentation.
type proveUseCaseWithMetrics struct {
	next    ProveUseCase
	metrics metrics.BusinessMetrics
}

// NewProveUseCaseWithMetrics wraps a ProveUseCase with metrics recording.
func NewProveUseCaseWithMetrics(useCase ProveUseCase, m metrics.BusinessMetrics) ProveUseCase {
	return &proveUseCaseWithMetrics{next: useCase, metrics: m}
}

func (p *proveUseCaseWithMetrics) Prove(ctx context.Context, commitment domain.Commitment) ([]byte, error) {
	start := time.Now()
	output, err := p.next.Prove(ctx, commitment)
	recordOutcome(ctx, p.metrics, "prove", start, err)
	return output, err
}
