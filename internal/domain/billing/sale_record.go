package billing

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/walldriyan/pos11v-sub000/internal/domain/promotion"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared/valueobject"
)

// RecordType distinguishes sale documents from return transaction documents
type RecordType string

const (
	RecordTypeSale              RecordType = "SALE"
	RecordTypeReturnTransaction RecordType = "RETURN_TRANSACTION"
)

// BillStatus is the lifecycle state of a sale record
type BillStatus string

const (
	// StatusCompletedOriginal marks the pristine original: the immutable
	// first-recorded state of a sale. Exactly one exists per bill number.
	StatusCompletedOriginal BillStatus = "COMPLETED_ORIGINAL"
	// StatusAdjustedActive marks the single current derived bill state
	// reflecting all non-undone returns against a pristine original.
	StatusAdjustedActive BillStatus = "ADJUSTED_ACTIVE"
	// StatusReturnTransactionCompleted marks an immutable record of one
	// return action.
	StatusReturnTransactionCompleted BillStatus = "RETURN_TRANSACTION_COMPLETED"
)

// IsValid checks if the status is known
func (s BillStatus) IsValid() bool {
	switch s {
	case StatusCompletedOriginal, StatusAdjustedActive, StatusReturnTransactionCompleted:
		return true
	}
	return false
}

// PaymentMethod is how a sale is settled
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCredit PaymentMethod = "credit"
)

// CreditStatus tracks a credit sale's ledger state
type CreditStatus string

const (
	CreditStatusPending       CreditStatus = "PENDING"
	CreditStatusPartiallyPaid CreditStatus = "PARTIALLY_PAID"
	CreditStatusFullyPaid     CreditStatus = "FULLY_PAID"
)

// SaleItem is one line of a sale record. EffectivePricePaidPerUnit is the
// unit price net of this line's share of all applied discount, fixed at
// the time the unit was (last) sold; refunds read it and never re-derive.
type SaleItem struct {
	ProductID   uuid.UUID  `json:"productId"`
	ProductName string     `json:"productName"`
	BatchID     *uuid.UUID `json:"batchId,omitempty"`
	BatchNumber string     `json:"batchNumber,omitempty"`
	Unit        string     `json:"unit"`

	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`

	LineDiscount      decimal.Decimal `json:"lineDiscount"`
	CartDiscountShare decimal.Decimal `json:"cartDiscountShare"`
	NetLineTotal      decimal.Decimal `json:"netLineTotal"`

	EffectivePricePaidPerUnit decimal.Decimal `json:"effectivePricePaidPerUnit"`
	TaxRate                   decimal.Decimal `json:"taxRate"`
	TaxAmount                 decimal.Decimal `json:"taxAmount"`

	// CustomDiscount preserves a manual override so return recomputation
	// can replay it against the kept quantity
	CustomDiscount *promotion.CustomDiscount `json:"customDiscount,omitempty"`
}

// GrossValue returns quantity times unit price
func (i SaleItem) GrossValue() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// lineKey identifies a line across documents for return matching
type lineKey struct {
	productID uuid.UUID
	batchID   uuid.UUID // uuid.Nil when the line has no batch
}

func (i SaleItem) key() lineKey {
	k := lineKey{productID: i.ProductID}
	if i.BatchID != nil {
		k.batchID = *i.BatchID
	}
	return k
}

// SaleItemList is the JSONB-stored item collection
type SaleItemList []SaleItem

// Value implements driver.Valuer
func (l SaleItemList) Value() (driver.Value, error) {
	if l == nil {
		l = SaleItemList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner. The read path is lenient: unreadable stored
// items decode to an empty list rather than failing the read.
func (l *SaleItemList) Scan(value any) error {
	*l = SaleItemList{}
	if value == nil {
		*l = SaleItemList{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SaleItemList", value)
	}
	if len(raw) == 0 {
		*l = SaleItemList{}
		return nil
	}
	if err := json.Unmarshal(raw, l); err != nil {
		*l = SaleItemList{}
	}
	return nil
}

// Validate checks the write-path invariants of every item
func (l SaleItemList) Validate() error {
	for idx, item := range l {
		if item.ProductID == uuid.Nil {
			return shared.NewDomainError("INVALID_ITEM", fmt.Sprintf("Item %d has no product", idx))
		}
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_ITEM", fmt.Sprintf("Item %d quantity must be positive", idx))
		}
		if item.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_ITEM", fmt.Sprintf("Item %d unit price cannot be negative", idx))
		}
	}
	return nil
}

// Rollup holds the monetary totals of a bill
type Rollup struct {
	SubtotalOriginal  decimal.Decimal
	TotalItemDiscount decimal.Decimal
	TotalCartDiscount decimal.Decimal
	NetSubtotal       decimal.Decimal
	TaxAmount         decimal.Decimal
	TotalAmount       decimal.Decimal
}

// SaleRecord is an immutable-once-created financial document. The pristine
// original is never mutated after creation; derived adjusted-active and
// return-transaction records reference it through OriginalSaleRecordID.
type SaleRecord struct {
	shared.TenantAggregateRoot
	RecordType RecordType
	Status     BillStatus
	// BillNumber is unique per pristine original and shared across the
	// sale's whole lifecycle (adjusted and return records carry it too)
	BillNumber   string
	CustomerID   *uuid.UUID
	CustomerName string

	Items SaleItemList `gorm:"type:jsonb"`

	SubtotalOriginal  decimal.Decimal
	TotalItemDiscount decimal.Decimal
	TotalCartDiscount decimal.Decimal
	NetSubtotal       decimal.Decimal
	TaxAmount         decimal.Decimal
	TotalAmount       decimal.Decimal

	AppliedDiscountSummary promotion.AppliedRuleList `gorm:"type:jsonb"`
	ReturnedItemsLog       ReturnedItemList          `gorm:"type:jsonb"`

	// OriginalSaleRecordID back-references the pristine original for
	// adjusted-active and return-transaction records
	OriginalSaleRecordID *uuid.UUID `gorm:"type:uuid;index"`
	// CampaignID is the campaign applied at sale time; returns re-apply
	// this campaign, never a newer one
	CampaignID *uuid.UUID `gorm:"type:uuid"`

	PaymentMethod     PaymentMethod
	AmountPaid        decimal.Decimal
	CreditOutstanding decimal.Decimal
	CreditStatus      CreditStatus
}

// NewSaleRecord creates a pristine original sale record
func NewSaleRecord(tenantID uuid.UUID, billNumber string, items SaleItemList, rollup Rollup, summary promotion.AppliedRuleList) (*SaleRecord, error) {
	if billNumber == "" {
		return nil, shared.NewDomainError("INVALID_BILL_NUMBER", "Bill number cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Cannot create a sale without items")
	}
	if err := items.Validate(); err != nil {
		return nil, err
	}

	return &SaleRecord{
		TenantAggregateRoot:    shared.NewTenantAggregateRoot(tenantID),
		RecordType:             RecordTypeSale,
		Status:                 StatusCompletedOriginal,
		BillNumber:             billNumber,
		Items:                  items,
		SubtotalOriginal:       rollup.SubtotalOriginal,
		TotalItemDiscount:      rollup.TotalItemDiscount,
		TotalCartDiscount:      rollup.TotalCartDiscount,
		NetSubtotal:            rollup.NetSubtotal,
		TaxAmount:              rollup.TaxAmount,
		TotalAmount:            rollup.TotalAmount,
		AppliedDiscountSummary: summary,
		ReturnedItemsLog:       ReturnedItemList{},
		PaymentMethod:          PaymentMethodCash,
		AmountPaid:             rollup.TotalAmount,
	}, nil
}

// SetCustomer attaches customer info
func (r *SaleRecord) SetCustomer(customerID uuid.UUID, name string) {
	r.CustomerID = &customerID
	r.CustomerName = name
	r.UpdatedAt = time.Now()
}

// SetCampaign records which campaign priced this bill
func (r *SaleRecord) SetCampaign(campaignID uuid.UUID) {
	r.CampaignID = &campaignID
	r.UpdatedAt = time.Now()
}

// MarkAsCredit converts the record into a credit sale with an initial
// payment. Outstanding and status derive from the initial payment.
func (r *SaleRecord) MarkAsCredit(initialPayment decimal.Decimal) error {
	if initialPayment.IsNegative() {
		return shared.NewDomainError("INVALID_PAYMENT", "Initial payment cannot be negative")
	}
	if initialPayment.GreaterThan(r.TotalAmount.Add(valueobject.Epsilon)) {
		return shared.NewDomainError("INVALID_PAYMENT", "Initial payment cannot exceed the bill total")
	}
	r.PaymentMethod = PaymentMethodCredit
	r.RecomputeCredit(initialPayment)
	return nil
}

// RecomputeCredit re-derives outstanding and status from the sum of all
// installments, independent of how many return cycles occurred. The total
// used is this record's (the currently active state's) total.
func (r *SaleRecord) RecomputeCredit(totalInstallments decimal.Decimal) {
	r.AmountPaid = totalInstallments
	outstanding := r.TotalAmount.Sub(totalInstallments)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	r.CreditOutstanding = outstanding

	switch {
	case valueobject.ApproxZero(outstanding):
		r.CreditOutstanding = decimal.Zero
		r.CreditStatus = CreditStatusFullyPaid
	case totalInstallments.GreaterThan(decimal.Zero):
		r.CreditStatus = CreditStatusPartiallyPaid
	default:
		r.CreditStatus = CreditStatusPending
	}
	r.UpdatedAt = time.Now()
}

// IsCredit reports whether this is a credit sale
func (r *SaleRecord) IsCredit() bool {
	return r.PaymentMethod == PaymentMethodCredit
}

// IsPristine reports whether this is the immutable original
func (r *SaleRecord) IsPristine() bool {
	return r.RecordType == RecordTypeSale && r.Status == StatusCompletedOriginal
}

// IsAdjustedActive reports whether this is the current derived state
func (r *SaleRecord) IsAdjustedActive() bool {
	return r.RecordType == RecordTypeSale && r.Status == StatusAdjustedActive
}

// GetItem returns the line matching a product/batch pair, nil when absent
func (r *SaleRecord) GetItem(productID uuid.UUID, batchID *uuid.UUID) *SaleItem {
	want := lineKey{productID: productID}
	if batchID != nil {
		want.batchID = *batchID
	}
	for idx := range r.Items {
		if r.Items[idx].key() == want {
			return &r.Items[idx]
		}
	}
	return nil
}

// ActiveReturnedQuantities sums non-undone returned quantities per line
func (r *SaleRecord) ActiveReturnedQuantities() map[lineKey]decimal.Decimal {
	return r.ReturnedItemsLog.activeQuantities()
}

// HasActiveReturns reports whether any non-undone return entries remain
func (r *SaleRecord) HasActiveReturns() bool {
	for _, e := range r.ReturnedItemsLog {
		if !e.IsUndone {
			return true
		}
	}
	return false
}

// ResetToPristine collapses the record back to its original state after
// the last active return is undone. Only the status flip and log clear
// happen here; the original items and totals were never touched.
func (r *SaleRecord) ResetToPristine() error {
	if r.RecordType != RecordTypeSale {
		return shared.NewDomainError("INVALID_STATE", "Only sale records can reset to pristine")
	}
	if r.HasActiveReturns() {
		return shared.NewDomainError("INVALID_STATE", "Cannot reset while active returns remain")
	}
	r.Status = StatusCompletedOriginal
	r.ReturnedItemsLog = ReturnedItemList{}
	r.UpdatedAt = time.Now()
	return nil
}
