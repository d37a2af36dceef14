package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/domain/catalogs/location"
	"posledger/internal/infrastructure/storage/postgres"
)

const locationTable = "cat_locations"

// LocationRepo implements location.Repository.
type LocationRepo struct {
	*BaseCatalogRepo[*location.Location]
}

// NewLocationRepo creates a new location repository.
func NewLocationRepo(txManager *postgres.TxManager) *LocationRepo {
	return &LocationRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			locationTable,
			postgres.ExtractDBColumns[location.Location](),
			func() *location.Location { return &location.Location{} },
		),
	}
}

// GetDefault retrieves the default location for a company.
func (r *LocationRepo) GetDefault(ctx context.Context, companyID id.ID) (*location.Location, error) {
	q := r.baseSelect(companyID).
		Where(squirrel.Eq{"is_default": true}).
		Where(squirrel.Eq{"active": true}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("default location", companyID.String())
		}
		return nil, err
	}
	return item, nil
}

// ClearDefault clears the default flag on all company locations.
func (r *LocationRepo) ClearDefault(ctx context.Context, companyID id.ID) error {
	q := r.Builder().
		Update(locationTable).
		Set("is_default", false).
		Where(squirrel.Eq{"company_id": companyID}).
		Where(squirrel.Eq{"is_default": true})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build clear default: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear default location: %w", err)
	}
	return nil
}
