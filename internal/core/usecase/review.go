package usecase

import (
	"context"
	"fmt"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
	"github.com/ositahq/cbam-gateway/internal/core/ports"
)

// FieldReviewer drives the confirm/correct flow over extracted fields.
// Edits are never applied optimistically: every mutation re-fetches the
// field list, trading latency for consistency on a low-frequency,
// high-stakes action.
type FieldReviewer struct {
	gateway ports.BackendGateway
	cache   ports.QueryCache
}

func NewFieldReviewer(gateway ports.BackendGateway, cache ports.QueryCache) *FieldReviewer {
	return &FieldReviewer{gateway: gateway, cache: cache}
}

func fieldsKey(documentID string) string {
	return "fields/" + documentID
}

func (r *FieldReviewer) Fields(ctx context.Context, ident domain.Identity, documentID string) ([]domain.ExtractedField, error) {
	key := fieldsKey(documentID)
	if cached, ok := r.cache.Get(key); ok {
		return cached.([]domain.ExtractedField), nil
	}

	generation := r.cache.Generation(key)
	fields, err := r.gateway.GetFields(ctx, ident, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch fields: %w", err)
	}
	r.cache.SetIfCurrent(key, generation, fields)
	return fields, nil
}

// Confirm marks one field confirmed without changing its value, then
// re-fetches the list.
func (r *FieldReviewer) Confirm(ctx context.Context, ident domain.Identity, documentID, fieldID string) ([]domain.ExtractedField, error) {
	if _, err := r.gateway.ConfirmField(ctx, ident, fieldID); err != nil {
		return nil, fmt.Errorf("confirm field: %w", err)
	}
	return r.refresh(ctx, ident, documentID)
}

// Save submits a value/unit edit. When the caller does not pick a status
// the edit lands as corrected; manual is passed through for values typed
// in from scratch.
func (r *FieldReviewer) Save(ctx context.Context, ident domain.Identity, documentID, fieldID string, update domain.FieldUpdate) ([]domain.ExtractedField, error) {
	if update.Value == nil && update.Unit == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "save field", fmt.Errorf("nothing to update"))
	}
	if update.Status == nil {
		corrected := domain.FieldCorrected
		update.Status = &corrected
	}
	if *update.Status != domain.FieldCorrected && *update.Status != domain.FieldManual {
		return nil, domain.WrapError(domain.ErrInvalidInput, "save field",
			fmt.Errorf("edits may only set corrected or manual, got %q", *update.Status))
	}

	if _, err := r.gateway.UpdateField(ctx, ident, fieldID, update); err != nil {
		return nil, fmt.Errorf("update field: %w", err)
	}
	return r.refresh(ctx, ident, documentID)
}

// ConfirmAll confirms every currently-unconfirmed field. A repeat call
// is a no-op returning zero.
func (r *FieldReviewer) ConfirmAll(ctx context.Context, ident domain.Identity, documentID string) (int, []domain.ExtractedField, error) {
	confirmed, err := r.gateway.ConfirmAllFields(ctx, ident, documentID)
	if err != nil {
		return 0, nil, fmt.Errorf("confirm all: %w", err)
	}
	fields, err := r.refresh(ctx, ident, documentID)
	if err != nil {
		return confirmed, nil, err
	}
	return confirmed, fields, nil
}

func (r *FieldReviewer) refresh(ctx context.Context, ident domain.Identity, documentID string) ([]domain.ExtractedField, error) {
	r.cache.Invalidate(fieldsKey(documentID))
	return r.Fields(ctx, ident, documentID)
}
