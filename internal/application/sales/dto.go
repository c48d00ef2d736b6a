package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/walldriyan/pos11v-sub000/internal/domain/billing"
	"github.com/walldriyan/pos11v-sub000/internal/domain/promotion"
)

// SaleLineRequest is one cart line in a create-sale request. UnitPrice
// overrides the batch/product price when positive.
type SaleLineRequest struct {
	ProductID      uuid.UUID                 `json:"productId" binding:"required"`
	BatchID        *uuid.UUID                `json:"batchId,omitempty"`
	Quantity       decimal.Decimal           `json:"quantity" binding:"required"`
	UnitPrice      *decimal.Decimal          `json:"unitPrice,omitempty"`
	Unit           string                    `json:"unit,omitempty"`
	CustomDiscount *promotion.CustomDiscount `json:"customDiscount,omitempty"`
}

// CreateSaleRequest is the input to SaleService.CreateSale
type CreateSaleRequest struct {
	BillNumber    string                `json:"billNumber" binding:"required,max=50"`
	CustomerID    *uuid.UUID            `json:"customerId,omitempty"`
	CustomerName  string                `json:"customerName,omitempty"`
	PaymentMethod billing.PaymentMethod `json:"paymentMethod" binding:"required,oneof=cash credit"`
	// AmountPaid is the initial payment on a credit sale; ignored for cash
	AmountPaid decimal.Decimal   `json:"amountPaid"`
	CampaignID *uuid.UUID        `json:"campaignId,omitempty"`
	Items      []SaleLineRequest `json:"items" binding:"required,min=1,dive"`
}

// ReturnLineRequest names one line quantity to take back
type ReturnLineRequest struct {
	ProductID uuid.UUID       `json:"productId" binding:"required"`
	BatchID   *uuid.UUID      `json:"batchId,omitempty"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// ProcessReturnRequest is the input to ReturnService.ProcessReturn. The
// caller supplies both the pristine original and the currently active
// record; ActiveID may be nil when no return has happened yet.
type ProcessReturnRequest struct {
	PristineID uuid.UUID           `json:"pristineId" binding:"required"`
	ActiveID   *uuid.UUID          `json:"activeId,omitempty"`
	Items      []ReturnLineRequest `json:"items" binding:"required,min=1,dive"`
}

// ProcessReturnResponse identifies the artifacts of one return action
type ProcessReturnResponse struct {
	ReturnTransactionID uuid.UUID `json:"returnTransactionId"`
	AdjustedSaleID      uuid.UUID `json:"adjustedSaleId"`
}

// RecordPaymentRequest is the input to CreditService.RecordPayment
type RecordPaymentRequest struct {
	SaleID uuid.UUID       `json:"saleId" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Method string          `json:"method" binding:"required"`
	Note   string          `json:"note,omitempty"`
}

// SaleItemResponse mirrors billing.SaleItem for callers
type SaleItemResponse struct {
	ProductID                 uuid.UUID                 `json:"productId"`
	ProductName               string                    `json:"productName"`
	BatchID                   *uuid.UUID                `json:"batchId,omitempty"`
	BatchNumber               string                    `json:"batchNumber,omitempty"`
	Unit                      string                    `json:"unit"`
	Quantity                  decimal.Decimal           `json:"quantity"`
	UnitPrice                 decimal.Decimal           `json:"unitPrice"`
	LineDiscount              decimal.Decimal           `json:"lineDiscount"`
	CartDiscountShare         decimal.Decimal           `json:"cartDiscountShare"`
	NetLineTotal              decimal.Decimal           `json:"netLineTotal"`
	EffectivePricePaidPerUnit decimal.Decimal           `json:"effectivePricePaidPerUnit"`
	TaxRate                   decimal.Decimal           `json:"taxRate"`
	TaxAmount                 decimal.Decimal           `json:"taxAmount"`
	CustomDiscount            *promotion.CustomDiscount `json:"customDiscount,omitempty"`
}

// InstallmentResponse mirrors one payment installment
type InstallmentResponse struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Note      string          `json:"note,omitempty"`
	IsInitial bool            `json:"isInitial"`
	PaidAt    time.Time       `json:"paidAt"`
}

// SaleRecordResponse is the full caller-facing view of a sale record
type SaleRecordResponse struct {
	ID                     uuid.UUID                  `json:"id"`
	RecordType             billing.RecordType         `json:"recordType"`
	Status                 billing.BillStatus         `json:"status"`
	BillNumber             string                     `json:"billNumber"`
	CustomerID             *uuid.UUID                 `json:"customerId,omitempty"`
	CustomerName           string                     `json:"customerName,omitempty"`
	Items                  []SaleItemResponse         `json:"items"`
	SubtotalOriginal       decimal.Decimal            `json:"subtotalOriginal"`
	TotalItemDiscount      decimal.Decimal            `json:"totalItemDiscountAmount"`
	TotalCartDiscount      decimal.Decimal            `json:"totalCartDiscountAmount"`
	NetSubtotal            decimal.Decimal            `json:"netSubtotal"`
	TaxAmount              decimal.Decimal            `json:"taxAmount"`
	TotalAmount            decimal.Decimal            `json:"totalAmount"`
	AppliedDiscountSummary promotion.AppliedRuleList  `json:"appliedDiscountSummary"`
	ReturnedItemsLog       billing.ReturnedItemList   `json:"returnedItemsLog"`
	OriginalSaleRecordID   *uuid.UUID                 `json:"originalSaleRecordId,omitempty"`
	CampaignID             *uuid.UUID                 `json:"campaignId,omitempty"`
	PaymentMethod          billing.PaymentMethod      `json:"paymentMethod"`
	AmountPaid             decimal.Decimal            `json:"amountPaid"`
	CreditOutstanding      decimal.Decimal            `json:"creditOutstandingAmount"`
	CreditStatus           billing.CreditStatus       `json:"creditStatus,omitempty"`
	PaymentInstallments    []InstallmentResponse      `json:"paymentInstallments,omitempty"`
	CreatedAt              time.Time                  `json:"createdAt"`
	UpdatedAt              time.Time                  `json:"updatedAt"`
}

// SaleContextResponse pairs the pristine original with whichever record is
// currently active for display/refund/credit purposes
type SaleContextResponse struct {
	PristineOriginal SaleRecordResponse `json:"pristineOriginal"`
	ActiveRecord     SaleRecordResponse `json:"activeRecord"`
}

// ToSaleRecordResponse maps a domain record and its installments
func ToSaleRecordResponse(record *billing.SaleRecord, installments []billing.PaymentInstallment) SaleRecordResponse {
	items := make([]SaleItemResponse, len(record.Items))
	for idx, item := range record.Items {
		items[idx] = SaleItemResponse{
			ProductID:                 item.ProductID,
			ProductName:               item.ProductName,
			BatchID:                   item.BatchID,
			BatchNumber:               item.BatchNumber,
			Unit:                      item.Unit,
			Quantity:                  item.Quantity,
			UnitPrice:                 item.UnitPrice,
			LineDiscount:              item.LineDiscount,
			CartDiscountShare:         item.CartDiscountShare,
			NetLineTotal:              item.NetLineTotal,
			EffectivePricePaidPerUnit: item.EffectivePricePaidPerUnit,
			TaxRate:                   item.TaxRate,
			TaxAmount:                 item.TaxAmount,
			CustomDiscount:            item.CustomDiscount,
		}
	}

	var insts []InstallmentResponse
	for _, inst := range installments {
		insts = append(insts, InstallmentResponse{
			ID:        inst.ID,
			Amount:    inst.Amount,
			Method:    inst.Method,
			Note:      inst.Note,
			IsInitial: inst.IsInitial,
			PaidAt:    inst.PaidAt,
		})
	}

	return SaleRecordResponse{
		ID:                     record.ID,
		RecordType:             record.RecordType,
		Status:                 record.Status,
		BillNumber:             record.BillNumber,
		CustomerID:             record.CustomerID,
		CustomerName:           record.CustomerName,
		Items:                  items,
		SubtotalOriginal:       record.SubtotalOriginal,
		TotalItemDiscount:      record.TotalItemDiscount,
		TotalCartDiscount:      record.TotalCartDiscount,
		NetSubtotal:            record.NetSubtotal,
		TaxAmount:              record.TaxAmount,
		TotalAmount:            record.TotalAmount,
		AppliedDiscountSummary: record.AppliedDiscountSummary,
		ReturnedItemsLog:       record.ReturnedItemsLog,
		OriginalSaleRecordID:   record.OriginalSaleRecordID,
		CampaignID:             record.CampaignID,
		PaymentMethod:          record.PaymentMethod,
		AmountPaid:             record.AmountPaid,
		CreditOutstanding:      record.CreditOutstanding,
		CreditStatus:           record.CreditStatus,
		PaymentInstallments:    insts,
		CreatedAt:              record.CreatedAt,
		UpdatedAt:              record.UpdatedAt,
	}
}

// SaleListFilter narrows the paginated original-only sale listing
type SaleListFilter struct {
	Page     int        `form:"page"`
	PageSize int        `form:"pageSize"`
	Customer *uuid.UUID `form:"customerId"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
}

// CreditSaleListFilter narrows the credit sale listing
type CreditSaleListFilter struct {
	Status   *billing.CreditStatus `form:"status"`
	Customer *uuid.UUID            `form:"customerId"`
	From     *time.Time            `form:"from" time_format:"2006-01-02"`
	To       *time.Time            `form:"to" time_format:"2006-01-02"`
	Page     int                   `form:"page"`
	PageSize int                   `form:"pageSize"`
}
