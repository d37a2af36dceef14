package possale

import (
	"context"
	"fmt"
	"sort"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/tx"
	"posledger/internal/core/types"
	"posledger/internal/domain"
	"posledger/internal/domain/audit"
	"posledger/internal/domain/inventory"
	"posledger/pkg/logger"
	"posledger/pkg/numerator"
)

// Service orchestrates sale creation. It is the only writer of POS_SALE
// ledger entries: direct stock movements reject that reference type.
type Service struct {
	repo      Repository
	invRepo   inventory.Repository
	mutator   *inventory.Mutator
	numerator *numerator.Service
	txManager tx.Manager
	auditor   audit.Recorder

	invoiceCfg numerator.Config
}

// NewService creates the sale orchestrator. invoicePrefix is the company-wide
// invoice prefix from configuration (for example "INV").
func NewService(
	repo Repository,
	invRepo inventory.Repository,
	mutator *inventory.Mutator,
	num *numerator.Service,
	txManager tx.Manager,
	invoicePrefix string,
) *Service {
	return &Service{
		repo:       repo,
		invRepo:    invRepo,
		mutator:    mutator,
		numerator:  num,
		txManager:  txManager,
		auditor:    audit.NopRecorder{},
		invoiceCfg: numerator.InvoiceConfig(invoicePrefix),
	}
}

// WithAudit attaches an audit recorder. Entries are written inside the
// same transaction as the change they describe.
func (s *Service) WithAudit(r audit.Recorder) *Service {
	if r != nil {
		s.auditor = r
	}
	return s
}

// CreateSale persists the sale and, for a completed and paid sale, its
// inventory effects in one transaction. The stock of every distinct product
// is locked and checked before any decrement: the first shortfall aborts
// the whole operation and nothing persists.
func (s *Service) CreateSale(ctx context.Context, sale *PosSale) (*PosSale, error) {
	sale.RecalculateTotals()
	if err := sale.Validate(ctx); err != nil {
		return nil, err
	}
	audit.EnrichCreatedBy(ctx, &sale.CreatedBy, &sale.UpdatedBy)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if sale.Status == StatusCompleted {
			if err := s.lockAndCheckStock(ctx, sale); err != nil {
				return err
			}
		}

		if sale.Number == "" {
			number, err := s.numerator.NextNumber(ctx, sale.CompanyID, s.invoiceCfg, sale.Date)
			if err != nil {
				return fmt.Errorf("generate invoice number: %w", err)
			}
			sale.Number = number
		}

		if err := s.repo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := s.repo.SaveItems(ctx, sale.ID, sale.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}

		if sale.DecrementsInventory() {
			if err := s.writeMovements(ctx, sale); err != nil {
				return err
			}
		}

		return s.auditor.Record(ctx, "pos_sale", sale.ID, audit.ActionCreate, map[string]any{
			"number":        sale.Number,
			"status":        string(sale.Status),
			"paymentStatus": string(sale.PaymentStatus),
			"total":         sale.Total.String(),
			"items":         len(sale.Items),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "pos sale created",
		"id", sale.ID,
		"number", sale.Number,
		"status", sale.Status,
		"paymentStatus", sale.PaymentStatus,
		"total", sale.Total,
		"items", len(sale.Items))
	return sale, nil
}

// lockAndCheckStock locks the inventory rows for every distinct product in
// the cart and verifies availability before any write. Products are locked
// in a stable order so two concurrent sales over the same cart cannot
// deadlock each other.
func (s *Service) lockAndCheckStock(ctx context.Context, sale *PosSale) error {
	requested := make(map[id.ID]struct {
		qty    int64
		lineNo int
	}, len(sale.Items))
	for _, item := range sale.Items {
		agg := requested[item.ProductID]
		agg.qty += item.Quantity.Int64Scaled()
		if agg.lineNo == 0 {
			agg.lineNo = item.LineNo
		}
		requested[item.ProductID] = agg
	}

	productIDs := make([]id.ID, 0, len(requested))
	for pid := range requested {
		productIDs = append(productIDs, pid)
	}
	sort.Slice(productIDs, func(i, j int) bool {
		return productIDs[i].String() < productIDs[j].String()
	})

	for _, pid := range productIDs {
		rec, err := s.invRepo.GetRecordForUpdate(ctx, sale.CompanyID, pid, sale.LocationID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNoInventoryRecord(pid.String(), sale.LocationID.String())
			}
			return err
		}
		want := requested[pid]
		if want.qty > rec.Quantity.Int64Scaled() {
			return apperror.NewInsufficientStock(
				pid.String(),
				types.NewQuantityFromInt64Scaled(want.qty).String(),
				rec.Quantity.String(),
			).WithDetail("lineNo", want.lineNo)
		}
	}
	return nil
}

func (s *Service) writeMovements(ctx context.Context, sale *PosSale) error {
	saleID := sale.ID
	createdBy := sale.CreatedBy
	for _, item := range sale.Items {
		mv := inventory.Movement{
			CompanyID:     sale.CompanyID,
			ProductID:     item.ProductID,
			LocationID:    sale.LocationID,
			Quantity:      item.Quantity,
			MovementType:  inventory.MovementOut,
			ReferenceType: inventory.RefPosSale,
			ReferenceID:   &saleID,
		}
		if createdBy != "" {
			mv.CreatedBy = &createdBy
		}
		if _, _, err := s.mutator.ApplyMovement(ctx, mv); err != nil {
			return fmt.Errorf("apply sale movement for product %s: %w", item.ProductID, err)
		}
	}
	return nil
}

// UpdateSale replaces the header fields and, when items are supplied, the
// full item set. It never re-adjusts inventory or the ledger: the original
// movements stand regardless of the edit.
func (s *Service) UpdateSale(ctx context.Context, companyID, saleID id.ID, updated *PosSale) (*PosSale, error) {
	existing, err := s.GetByID(ctx, companyID, saleID)
	if err != nil {
		return nil, err
	}

	if existing.Status == StatusCancelled && updated.Status != StatusCompleted {
		return nil, apperror.NewConflict("a cancelled sale can only be updated to COMPLETED").
			WithDetail("saleId", saleID.String()).
			WithDetail("status", string(updated.Status))
	}

	existing.Status = updated.Status
	existing.PaymentStatus = updated.PaymentStatus
	existing.PaymentMethod = updated.PaymentMethod
	existing.TerminalID = updated.TerminalID
	existing.ClientID = updated.ClientID
	existing.CashierID = updated.CashierID
	existing.Notes = updated.Notes
	existing.UpdatedBy = updated.UpdatedBy
	if len(updated.Items) > 0 {
		existing.Items = updated.Items
	}

	existing.RecalculateTotals()
	if err := existing.Validate(ctx); err != nil {
		return nil, err
	}
	audit.EnrichUpdatedBy(ctx, &existing.UpdatedBy)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, existing); err != nil {
			return fmt.Errorf("update sale: %w", err)
		}
		if len(updated.Items) > 0 {
			if err := s.repo.SaveItems(ctx, existing.ID, existing.Items); err != nil {
				return fmt.Errorf("save items: %w", err)
			}
		}

		return s.auditor.Record(ctx, "pos_sale", existing.ID, audit.ActionUpdate, map[string]any{
			"status":        string(existing.Status),
			"paymentStatus": string(existing.PaymentStatus),
			"total":         existing.Total.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "pos sale updated", "id", existing.ID, "number", existing.Number)
	return existing, nil
}

// CancelSale is a status-only transition to CANCELLED. The original
// inventory decrement is not reversed; a compensating receipt must go
// through a POS_RETURN flow.
func (s *Service) CancelSale(ctx context.Context, companyID, saleID id.ID) (*PosSale, error) {
	sale, err := s.GetByID(ctx, companyID, saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status == StatusCancelled {
		return sale, nil
	}

	sale.Status = StatusCancelled
	if err := s.repo.Update(ctx, sale); err != nil {
		return nil, fmt.Errorf("cancel sale: %w", err)
	}
	if err := s.auditor.Record(ctx, "pos_sale", sale.ID, audit.ActionCancel, map[string]any{
		"number": sale.Number,
	}); err != nil {
		logger.Warn(ctx, "audit record failed", "id", sale.ID, "error", err)
	}

	logger.Info(ctx, "pos sale cancelled", "id", sale.ID, "number", sale.Number)
	return sale, nil
}

// DeleteSale removes the sale and its items. A completed and paid sale has
// already moved stock and cannot be deleted.
func (s *Service) DeleteSale(ctx context.Context, companyID, saleID id.ID) error {
	sale, err := s.GetByID(ctx, companyID, saleID)
	if err != nil {
		return err
	}

	if sale.Status == StatusCompleted && sale.PaymentStatus == PaymentPaid {
		return apperror.NewConflict("a completed and paid sale cannot be deleted").
			WithDetail("saleId", saleID.String())
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, companyID, saleID); err != nil {
			return err
		}
		return s.auditor.Record(ctx, "pos_sale", saleID, audit.ActionDelete, map[string]any{
			"number": sale.Number,
		})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "pos sale deleted", "id", saleID, "number", sale.Number)
	return nil
}

// GetByID retrieves the sale with its items.
func (s *Service) GetByID(ctx context.Context, companyID, saleID id.ID) (*PosSale, error) {
	sale, err := s.repo.GetByID(ctx, companyID, saleID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	sale.Items = items
	return sale, nil
}

// List retrieves sale headers matching the filter. Items are not loaded.
func (s *Service) List(ctx context.Context, companyID id.ID, filter ListFilter) (domain.ListResult[*PosSale], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, companyID, filter)
}
