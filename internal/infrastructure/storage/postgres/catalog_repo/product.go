package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/domain/catalogs/product"
	"posledger/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// GetBySKU retrieves a product by SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, companyID id.ID, sku string) (*product.Product, error) {
	q := r.baseSelect(companyID).
		Where(squirrel.Eq{"sku": sku}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", sku)
		}
		return nil, err
	}
	return item, nil
}

// GetByBarcode retrieves a product by barcode for POS scanning.
func (r *ProductRepo) GetByBarcode(ctx context.Context, companyID id.ID, barcode string) (*product.Product, error) {
	q := r.baseSelect(companyID).
		Where(squirrel.Eq{"barcode": barcode}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", barcode)
		}
		return nil, err
	}
	return item, nil
}
