package models

import "github.com/insightdelivered/invoice-scanner/internal/spc"

const (
	confidenceFound    = 0.9
	confidenceNotFound = 0.3

	defaultCurrency = "CHF"
)

// NewInvoiceRecord maps a decoded payment code (or nil when none was found)
// into the downstream record shape. A found code starts at warning/0.9
// pending vendor confirmation; no code starts at error/0.3 for manual
// completion. An unset amount flattens to zero here because the downstream
// form requires a concrete number.
func NewInvoiceRecord(docID string, code *spc.PaymentCode, homeCountry string) InvoiceRecord {
	rec := InvoiceRecord{
		ID:         docID,
		Currency:   defaultCurrency,
		Status:     StatusError,
		Confidence: confidenceNotFound,
	}
	if code == nil {
		return rec
	}

	rec.VendorName = code.Creditor.Name
	if code.Creditor.Address != nil {
		rec.VendorAddress = code.Creditor.Address.Display(homeCountry)
	}
	rec.VendorIBAN = code.IBAN

	if code.Debtor != nil {
		rec.DebtorName = code.Debtor.Name
		if code.Debtor.Address != nil {
			rec.DebtorAddress = code.Debtor.Address.Display(homeCountry)
		}
	}

	if code.Amount != nil {
		rec.Amount = *code.Amount
	}
	if code.Currency != "" {
		rec.Currency = code.Currency
	}

	rec.PaymentReference = code.Reference.Display
	if rec.PaymentReference == "" {
		rec.PaymentReference = code.Reference.Value
	}
	rec.ReferenceType = string(code.Reference.Kind)
	rec.Message = code.Message
	rec.Description = code.Message

	if code.Billing.Kind != spc.BillingAbsent {
		rec.VendorInvoiceNo = code.Billing.InvoiceNumber
		rec.InvoiceDate = code.Billing.InvoiceDate
	}

	rec.RawCode = code.Raw
	rec.Status = StatusWarning
	rec.Confidence = confidenceFound
	return rec
}
