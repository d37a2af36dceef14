// Package entity provides base types shared by catalogs and documents.
package entity

import (
	"context"
	"time"

	"posledger/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// BaseEntity contains common fields for all persisted entities.
// Every row is scoped to a company; cross-company reads are a bug.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// CompanyID scopes the row to one tenant company
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a new BaseEntity with generated ID.
func NewBaseEntity(companyID id.ID) BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		CompanyID: companyID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp and increments version.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.Version++
}

// SetVersion updates the version number (used by repository after sync).
func (b *BaseEntity) SetVersion(v int) {
	b.Version = v
}

// SetUpdatedAt updates the updated_at timestamp (used by repository).
func (b *BaseEntity) SetUpdatedAt(t time.Time) {
	b.UpdatedAt = t
}
