package backend

import (
	"context"
	"errors"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
	"github.com/ositahq/cbam-gateway/internal/infrastructure/resilience"
)

// classifyBackendError governs idempotent reads: transport failures and
// 5xx responses retry; caller mistakes and missing resources do not.
func classifyBackendError(err error) resilience.Classification {
	if err == nil {
		return resilience.Classification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Classification{}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.Classification{Retryable: true, RecordFailure: true}
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return resilience.Classification{Retryable: true, RecordFailure: true}
	}
	if domain.IsKind(err, domain.ErrInvalidInput) ||
		domain.IsKind(err, domain.ErrUnauthorized) ||
		domain.IsKind(err, domain.ErrProjectNotFound) ||
		domain.IsKind(err, domain.ErrDocumentNotFound) ||
		domain.IsKind(err, domain.ErrFieldNotFound) {
		return resilience.Classification{RecordFailure: false}
	}
	return resilience.Classification{RecordFailure: true}
}

// classifyMutationError never retries: uploads, field edits and exports
// are one-shot and re-triggered by the user, not the gateway.
func classifyMutationError(err error) resilience.Classification {
	class := classifyBackendError(err)
	class.Retryable = false
	return class
}
