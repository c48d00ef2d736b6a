package billing

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// ReturnedItemDetail is one entry per (return transaction x line).
// RefundAmountPerUnit is the effective price paid at original sale time;
// it is copied here at return time and never recomputed.
type ReturnedItemDetail struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   uuid.UUID  `json:"productId"`
	ProductName string     `json:"productName"`
	BatchID     *uuid.UUID `json:"batchId,omitempty"`
	// OriginalBatchID is kept for stock reversal even when the refund
	// lands in the synthetic returned-stock batch
	OriginalBatchID *uuid.UUID `json:"originalBatchId,omitempty"`

	ReturnedQuantity    decimal.Decimal `json:"returnedQuantity"`
	RefundAmountPerUnit decimal.Decimal `json:"refundAmountPerUnit"`
	TotalRefund         decimal.Decimal `json:"totalRefundForThisReturnEntry"`

	// ReturnTransactionID is shared by every entry created in one return
	// action
	ReturnTransactionID uuid.UUID `json:"returnTransactionId"`
	ReturnedAt          time.Time `json:"returnedAt"`
	ReturnedBy          uuid.UUID `json:"returnedBy"`

	IsUndone bool       `json:"isUndone"`
	UndoneAt *time.Time `json:"undoneAt,omitempty"`
	UndoneBy *uuid.UUID `json:"undoneBy,omitempty"`
}

// NewReturnedItemDetail creates one return log entry
func NewReturnedItemDetail(item SaleItem, returnedQty decimal.Decimal, returnTransactionID, userID uuid.UUID) (*ReturnedItemDetail, error) {
	if returnedQty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Returned quantity must be positive")
	}
	refundPerUnit := item.EffectivePricePaidPerUnit
	return &ReturnedItemDetail{
		ID:                  uuid.New(),
		ProductID:           item.ProductID,
		ProductName:         item.ProductName,
		BatchID:             item.BatchID,
		OriginalBatchID:     item.BatchID,
		ReturnedQuantity:    returnedQty,
		RefundAmountPerUnit: refundPerUnit,
		TotalRefund:         refundPerUnit.Mul(returnedQty),
		ReturnTransactionID: returnTransactionID,
		ReturnedAt:          time.Now(),
		ReturnedBy:          userID,
	}, nil
}

// MarkUndone flips the entry to undone with audit metadata
func (d *ReturnedItemDetail) MarkUndone(userID uuid.UUID) error {
	if d.IsUndone {
		return shared.ErrAlreadyUndone
	}
	now := time.Now()
	d.IsUndone = true
	d.UndoneAt = &now
	d.UndoneBy = &userID
	return nil
}

func (d ReturnedItemDetail) key() lineKey {
	k := lineKey{productID: d.ProductID}
	if d.BatchID != nil {
		k.batchID = *d.BatchID
	}
	return k
}

// ReturnedItemList is the JSONB-stored return log. Undone entries are
// preserved for audit; only non-undone entries shape the adjusted state.
type ReturnedItemList []ReturnedItemDetail

// Value implements driver.Valuer
func (l ReturnedItemList) Value() (driver.Value, error) {
	if l == nil {
		l = ReturnedItemList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner, lenient on malformed stored data
func (l *ReturnedItemList) Scan(value any) error {
	*l = ReturnedItemList{}
	if value == nil {
		*l = ReturnedItemList{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ReturnedItemList", value)
	}
	if len(raw) == 0 {
		*l = ReturnedItemList{}
		return nil
	}
	if err := json.Unmarshal(raw, l); err != nil {
		*l = ReturnedItemList{}
	}
	return nil
}

// FindByID locates an entry by its ID, nil when absent
func (l ReturnedItemList) FindByID(entryID uuid.UUID) *ReturnedItemDetail {
	for idx := range l {
		if l[idx].ID == entryID {
			return &l[idx]
		}
	}
	return nil
}

// activeQuantities sums non-undone returned quantity per line key
func (l ReturnedItemList) activeQuantities() map[lineKey]decimal.Decimal {
	out := make(map[lineKey]decimal.Decimal)
	for _, e := range l {
		if e.IsUndone {
			continue
		}
		out[e.key()] = out[e.key()].Add(e.ReturnedQuantity)
	}
	return out
}

// ActiveEntries returns the non-undone entries
func (l ReturnedItemList) ActiveEntries() ReturnedItemList {
	out := ReturnedItemList{}
	for _, e := range l {
		if !e.IsUndone {
			out = append(out, e)
		}
	}
	return out
}

// TotalActiveRefund sums refunds across non-undone entries
func (l ReturnedItemList) TotalActiveRefund() decimal.Decimal {
	total := decimal.Zero
	for _, e := range l {
		if !e.IsUndone {
			total = total.Add(e.TotalRefund)
		}
	}
	return total
}
