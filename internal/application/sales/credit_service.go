package sales

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/walldriyan/pos11v-sub000/internal/domain/billing"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared/valueobject"
)

// CreditService manages the installment ledger of credit sales. All
// mutations recompute outstanding and status from the full installment
// history against the currently active bill total.
type CreditService struct {
	tx           TxManager
	sales        billing.SaleRecordRepository
	installments billing.InstallmentRepository
	logger       *zap.Logger
}

func NewCreditService(tx TxManager, sales billing.SaleRecordRepository, installments billing.InstallmentRepository, logger *zap.Logger) *CreditService {
	return &CreditService{tx: tx, sales: sales, installments: installments, logger: logger}
}

// RecordPayment adds an installment against a credit sale. Payment is
// validated against the active record's outstanding balance; returns may
// have shrunk the bill since the sale was made.
func (s *CreditService) RecordPayment(ctx context.Context, scope shared.TenantScope, req RecordPaymentRequest, userID uuid.UUID) (*SaleRecordResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment amount must be positive")
	}
	if req.Method == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment method is required")
	}

	var active *billing.SaleRecord
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		pristine, current, err := s.resolve(ctx, scope, req.SaleID)
		if err != nil {
			return err
		}
		if !pristine.IsCredit() {
			return shared.NewDomainError("INVALID_STATE", "Record is not a credit sale")
		}
		if current.CreditOutstanding.Add(valueobject.Epsilon).LessThan(req.Amount) {
			return shared.NewDomainError("INSUFFICIENT_BALANCE", "Payment exceeds the outstanding balance")
		}

		installment, err := billing.NewPaymentInstallment(pristine.ID, scope.TenantID(), req.Amount, req.Method, userID)
		if err != nil {
			return err
		}
		installment.Note = req.Note
		if err := s.installments.Create(ctx, installment); err != nil {
			return err
		}

		history, err := s.installments.FindBySaleRecord(ctx, pristine.ID)
		if err != nil {
			return err
		}
		current.RecomputeCredit(billing.SumInstallments(history))
		if err := s.sales.Save(ctx, current); err != nil {
			return err
		}
		active = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("credit payment recorded",
		zap.String("sale_id", active.ID.String()),
		zap.String("bill_number", active.BillNumber),
		zap.String("credit_status", string(active.CreditStatus)))

	return s.respond(ctx, active)
}

// DeleteInstallment removes a payment and recomputes the ledger. Deleting
// the initial installment of a sale is allowed; the status simply falls
// back to pending when nothing remains paid.
func (s *CreditService) DeleteInstallment(ctx context.Context, scope shared.TenantScope, installmentID uuid.UUID) (*SaleRecordResponse, error) {
	var active *billing.SaleRecord
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		installment, err := s.installments.FindByID(ctx, scope, installmentID)
		if err != nil {
			return err
		}
		pristine, current, err := s.resolve(ctx, scope, installment.SaleRecordID)
		if err != nil {
			return err
		}

		if err := s.installments.Delete(ctx, installment.ID); err != nil {
			return err
		}
		history, err := s.installments.FindBySaleRecord(ctx, pristine.ID)
		if err != nil {
			return err
		}
		current.RecomputeCredit(billing.SumInstallments(history))
		if err := s.sales.Save(ctx, current); err != nil {
			return err
		}
		active = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("credit installment deleted",
		zap.String("installment_id", installmentID.String()),
		zap.String("sale_id", active.ID.String()))

	return s.respond(ctx, active)
}

// ListCreditSales pages through credit sale records by ledger status,
// customer and date range.
func (s *CreditService) ListCreditSales(ctx context.Context, scope shared.TenantScope, filter CreditSaleListFilter) (*shared.Paginated[SaleRecordResponse], error) {
	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	records, total, err := s.sales.FindCreditSales(ctx, scope, billing.CreditSaleFilter{
		Status:     filter.Status,
		CustomerID: filter.Customer,
		From:       filter.From,
		To:         filter.To,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]SaleRecordResponse, len(records))
	for idx := range records {
		items[idx] = ToSaleRecordResponse(&records[idx], nil)
	}
	out := shared.NewPaginated(items, total, page, pageSize)
	return &out, nil
}

// resolve maps any record of a sale lifecycle to its pristine original and
// the currently active record (adjusted when one exists).
func (s *CreditService) resolve(ctx context.Context, scope shared.TenantScope, saleID uuid.UUID) (pristine, active *billing.SaleRecord, err error) {
	record, err := s.sales.FindByID(ctx, scope, saleID)
	if err != nil {
		return nil, nil, err
	}
	pristine = record
	if record.OriginalSaleRecordID != nil {
		pristine, err = s.sales.FindByID(ctx, scope, *record.OriginalSaleRecordID)
		if err != nil {
			return nil, nil, err
		}
	}

	active, err = s.sales.FindAdjustedActiveFor(ctx, scope, pristine.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return pristine, pristine, nil
		}
		return nil, nil, err
	}
	return pristine, active, nil
}

func (s *CreditService) respond(ctx context.Context, record *billing.SaleRecord) (*SaleRecordResponse, error) {
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
