// Package main provides a CLI tool for seeding the database with demo data:
// a store location, a handful of products and their opening stock. Safe to
// run repeatedly; existing rows are left alone.
package main

import (
	"context"
	"fmt"
	"os"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/types"
	"posledger/internal/domain/catalogs/location"
	"posledger/internal/domain/catalogs/product"
	"posledger/internal/domain/inventory"
	"posledger/internal/infrastructure/storage/postgres"
	"posledger/internal/infrastructure/storage/postgres/catalog_repo"
	"posledger/internal/infrastructure/storage/postgres/inventory_repo"
	"posledger/pkg/logger"
	"posledger/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	companyID, err := resolveCompanyID()
	if err != nil {
		log.Fatalw("invalid COMPANY_ID", "error", err)
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	num := numerator.New(func(ctx context.Context) numerator.Querier {
		return txManager.GetQuerier(ctx)
	})

	productRepo := catalog_repo.NewProductRepo(txManager)
	locationRepo := catalog_repo.NewLocationRepo(txManager)
	inventoryRepo := inventory_repo.NewInventoryRepo(txManager)

	productService := product.NewService(productRepo, txManager, num)
	locationService := location.NewService(locationRepo, txManager, num)
	inventoryService := inventory.NewService(inventoryRepo, inventory.NewMutator(inventoryRepo), txManager)

	locID, err := seedLocation(ctx, locationService, companyID, log)
	if err != nil {
		log.Fatalw("failed to seed location", "error", err)
	}

	productIDs, err := seedProducts(ctx, productService, companyID, log)
	if err != nil {
		log.Fatalw("failed to seed products", "error", err)
	}

	if err := seedOpeningStock(ctx, inventoryService, companyID, locID, productIDs, log); err != nil {
		log.Fatalw("failed to seed opening stock", "error", err)
	}

	log.Infow("seeding completed successfully", "company_id", companyID)
}

// resolveCompanyID reads COMPANY_ID or generates a fresh one. The generated
// value is printed so tokens for testing can carry the same company claim.
func resolveCompanyID() (id.ID, error) {
	if raw := os.Getenv("COMPANY_ID"); raw != "" {
		return id.Parse(raw)
	}
	return id.New(), nil
}

func seedLocation(ctx context.Context, svc *location.Service, companyID id.ID, log *logger.Logger) (id.ID, error) {
	const code = "LOC-000001"

	existing, err := svc.GetByCode(ctx, companyID, code)
	if err == nil {
		log.Infow("location already exists", "code", code, "id", existing.ID)
		return existing.ID, nil
	}
	if !apperror.IsNotFound(err) {
		return id.Nil(), err
	}

	loc := location.NewLocation(companyID, code, "Main Store", location.TypeStore)
	loc.IsDefault = true
	addr := "1 High Street"
	loc.Address = &addr

	if err := svc.Create(ctx, loc); err != nil {
		return id.Nil(), err
	}

	log.Infow("location created", "code", loc.Code, "id", loc.ID)
	return loc.ID, nil
}

func seedProducts(ctx context.Context, svc *product.Service, companyID id.ID, log *logger.Logger) ([]id.ID, error) {
	seeds := []struct {
		name    string
		sku     string
		barcode string
		unit    string
		price   string
	}{
		{"Espresso Beans 1kg", "COF-ESP-1KG", "4600000000017", "pcs", "18.50"},
		{"Whole Milk 1L", "MLK-WHL-1L", "4600000000024", "pcs", "1.20"},
		{"Paper Cup 250ml (50 pack)", "CUP-250-50", "4600000000031", "pack", "4.90"},
		{"Croissant", "BKR-CRS", "4600000000048", "pcs", "2.30"},
		{"Sparkling Water 0.5L", "WTR-SPK-05", "4600000000055", "pcs", "0.95"},
	}

	ids := make([]id.ID, 0, len(seeds))
	for _, s := range seeds {
		existing, err := svc.GetBySKU(ctx, companyID, s.sku)
		if err == nil {
			log.Infow("product already exists", "sku", s.sku, "id", existing.ID)
			ids = append(ids, existing.ID)
			continue
		}
		if !apperror.IsNotFound(err) {
			return nil, err
		}

		p := product.NewProduct(companyID, "", s.name, s.sku)
		p.Unit = s.unit
		barcode := s.barcode
		p.Barcode = &barcode
		p.SalePrice = types.MustMoney(s.price)

		if err := svc.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("create product %s: %w", s.sku, err)
		}

		log.Infow("product created", "sku", p.SKU, "code", p.Code, "id", p.ID)
		ids = append(ids, p.ID)
	}

	return ids, nil
}

func seedOpeningStock(
	ctx context.Context,
	svc *inventory.Service,
	companyID, locationID id.ID,
	productIDs []id.ID,
	log *logger.Logger,
) error {
	createdBy := "seed"
	notes := "initial stock load"

	for _, productID := range productIDs {
		qty, err := svc.GetQuantity(ctx, companyID, productID, locationID)
		if err != nil {
			return err
		}
		if !qty.IsZero() {
			log.Infow("opening stock already present", "product_id", productID, "quantity", qty)
			continue
		}

		entry, err := svc.CreateMovement(ctx, inventory.Movement{
			CompanyID:     companyID,
			ProductID:     productID,
			LocationID:    locationID,
			Quantity:      types.NewQuantityFromInt(100),
			MovementType:  inventory.MovementIn,
			ReferenceType: inventory.RefOpeningStock,
			Notes:         &notes,
			CreatedBy:     &createdBy,
		})
		if err != nil {
			return fmt.Errorf("opening stock for product %s: %w", productID, err)
		}

		log.Infow("opening stock recorded", "product_id", productID, "movement_id", entry.ID)
	}

	return nil
}
