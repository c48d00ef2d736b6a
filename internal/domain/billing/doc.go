// Package billing holds the sale transaction bounded context: sale records,
// their item lines and financial rollups, payment installments, and the
// return reconciliation that rewrites adjusted records from pristine ones.
//
// Key aggregates:
//   - SaleRecord: a sale or return entry under a bill number. Pristine
//     originals are immutable; returns produce adjusted active records
//     rebuilt from the original plus the accumulated return log.
//   - PaymentInstallment: a single payment against a credit sale.
//
// Pricing lives in bill_pricing.go and reuses the promotion evaluator to
// recompute discounts when a bill is rebuilt after a return.
package billing
