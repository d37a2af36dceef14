// Package audit defines the audit trail contract for domain services and
// helpers for stamping user attribution on entities.
package audit

import (
	"context"

	"posledger/internal/core/id"
	"posledger/internal/core/security"
)

// Action is the audited operation kind.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionCancel Action = "cancel"
	ActionDelete Action = "delete"
	ActionAdjust Action = "adjust"
)

// Recorder persists audit entries. Implementations are expected to honor
// an ambient transaction so the entry commits or rolls back with the
// change it describes.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
}

// NopRecorder discards every entry. Used when auditing is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, string, id.ID, Action, map[string]any) error {
	return nil
}

// EnrichCreatedBy stamps CreatedBy and UpdatedBy from the request scope.
// No-op when the context carries no authenticated user.
func EnrichCreatedBy(ctx context.Context, createdBy, updatedBy *string) {
	userID := security.GetScope(ctx).UserID
	if userID == "" {
		return
	}
	if createdBy != nil && *createdBy == "" {
		*createdBy = userID
	}
	if updatedBy != nil {
		*updatedBy = userID
	}
}

// EnrichUpdatedBy stamps only UpdatedBy from the request scope.
func EnrichUpdatedBy(ctx context.Context, updatedBy *string) {
	userID := security.GetScope(ctx).UserID
	if userID == "" {
		return
	}
	if updatedBy != nil {
		*updatedBy = userID
	}
}
