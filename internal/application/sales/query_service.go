package sales

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/walldriyan/pos11v-sub000/internal/domain/billing"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// SaleQueryService serves read paths: the sale context lookup that the
// return and credit screens drive, and the paginated sale listings.
type SaleQueryService struct {
	sales        billing.SaleRecordRepository
	installments billing.InstallmentRepository
}

func NewSaleQueryService(sales billing.SaleRecordRepository, installments billing.InstallmentRepository) *SaleQueryService {
	return &SaleQueryService{sales: sales, installments: installments}
}

// GetSaleContext resolves a bill number to its pristine original and the
// currently active record. Before any return the two are the same record.
func (s *SaleQueryService) GetSaleContext(ctx context.Context, scope shared.TenantScope, billNumber string) (*SaleContextResponse, error) {
	if billNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Bill number is required")
	}

	pristine, err := s.sales.FindPristineByBillNumber(ctx, scope, billNumber)
	if err != nil {
		return nil, err
	}

	active, err := s.sales.FindAdjustedActiveFor(ctx, scope, pristine.ID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		active = pristine
	}

	installments, err := s.installments.FindBySaleRecord(ctx, pristine.ID)
	if err != nil {
		return nil, err
	}

	return &SaleContextResponse{
		PristineOriginal: ToSaleRecordResponse(pristine, installments),
		ActiveRecord:     ToSaleRecordResponse(active, installments),
	}, nil
}

// GetSaleRecord fetches one record by ID with its installment history
func (s *SaleQueryService) GetSaleRecord(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*SaleRecordResponse, error) {
	record, err := s.sales.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	ledgerID := record.ID
	if record.OriginalSaleRecordID != nil {
		ledgerID = *record.OriginalSaleRecordID
	}
	installments, err := s.installments.FindBySaleRecord(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	resp := ToSaleRecordResponse(record, installments)
	return &resp, nil
}

// ListSales pages through pristine originals only. Adjusted states and
// return transactions never appear here; they are reachable through the
// sale context of their original.
func (s *SaleQueryService) ListSales(ctx context.Context, scope shared.TenantScope, filter SaleListFilter) (*shared.Paginated[SaleRecordResponse], error) {
	repoFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		repoFilter.Page = filter.Page
	}
	if filter.PageSize > 0 && filter.PageSize <= 100 {
		repoFilter.PageSize = filter.PageSize
	}
	if filter.Customer != nil {
		repoFilter.Filters["customer_id"] = *filter.Customer
	}
	if filter.From != nil {
		repoFilter.Filters["from"] = *filter.From
	}
	if filter.To != nil {
		repoFilter.Filters["to"] = *filter.To
	}

	records, total, err := s.sales.FindOriginals(ctx, scope, repoFilter)
	if err != nil {
		return nil, err
	}

	items := make([]SaleRecordResponse, len(records))
	for idx := range records {
		items[idx] = ToSaleRecordResponse(&records[idx], nil)
	}
	out := shared.NewPaginated(items, total, repoFilter.Page, repoFilter.PageSize)
	return &out, nil
}
