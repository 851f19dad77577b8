package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
	"github.com/ositahq/cbam-gateway/internal/core/ports"
)

// ValidationAggregator fetches a project's validation verdict and
// classifies it for UI gating. can_export is trusted verbatim from the
// backend; the aggregator never recomputes it from the flag list.
type ValidationAggregator struct {
	gateway ports.BackendGateway
	cache   ports.QueryCache
}

func NewValidationAggregator(gateway ports.BackendGateway, cache ports.QueryCache) *ValidationAggregator {
	return &ValidationAggregator{gateway: gateway, cache: cache}
}

func validationKey(projectID string) string {
	return "validation/" + projectID
}

// Report requests a fresh validation run. On failure the prior cached
// result stays visible (stale-while-error); with no result ever loaded
// the error propagates and export stays gated off.
func (a *ValidationAggregator) Report(ctx context.Context, ident domain.Identity, projectID string) (*ports.ValidationReport, error) {
	if projectID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate project", fmt.Errorf("empty project id"))
	}

	key := validationKey(projectID)
	generation := a.cache.Generation(key)

	result, err := a.gateway.ValidateProject(ctx, ident, projectID)
	if err != nil {
		if cached, ok := a.cache.GetStale(key); ok {
			prior := cached.(domain.ValidationResult)
			slog.Warn("validation_fetch_failed_serving_stale", "project_id", projectID, "error", err)
			return &ports.ValidationReport{Result: prior, Buckets: prior.Partition(), Stale: true}, nil
		}
		return nil, fmt.Errorf("validate project: %w", err)
	}

	a.cache.SetIfCurrent(key, generation, *result)
	return &ports.ValidationReport{Result: *result, Buckets: result.Partition()}, nil
}

// LastKnown returns the cached verdict without a network call, or nil if
// none has ever loaded. Export gating reads this.
func (a *ValidationAggregator) LastKnown(projectID string) *ports.ValidationReport {
	cached, ok := a.cache.GetStale(validationKey(projectID))
	if !ok {
		return nil
	}
	result := cached.(domain.ValidationResult)
	return &ports.ValidationReport{Result: result, Buckets: result.Partition()}
}

// InvalidateValidation drops the cached verdict; callers do this after
// any mutation the verdict depends on.
func (a *ValidationAggregator) InvalidateValidation(projectID string) {
	a.cache.Invalidate(validationKey(projectID))
}
