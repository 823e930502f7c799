package models

// Status reflects how much attention a scanned invoice still needs before
// export. Downstream collaborators own the transition to valid.
type Status string

const (
	StatusValid   Status = "valid"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// InvoiceRecord is the normalized record handed to downstream collaborators
// (vendor matching, ledger-account suggestion, export). Everything except
// RawCode may be overwritten by them.
type InvoiceRecord struct {
	ID string `json:"id"`

	VendorName    string `json:"vendorName"`
	VendorAddress string `json:"vendorAddress"`
	VendorIBAN    string `json:"vendorIBAN"`

	DebtorName    string `json:"debtorName"`
	DebtorAddress string `json:"debtorAddress"`

	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`

	PaymentReference string `json:"paymentReference"`
	ReferenceType    string `json:"referenceType"`
	Message          string `json:"message"`

	VendorInvoiceNo string `json:"vendorInvoiceNo"`
	InvoiceDate     string `json:"invoiceDate"`
	Description     string `json:"description"`

	// Enrichment fields owned by downstream collaborators; never populated
	// here.
	VendorNo   string `json:"vendorNo"`
	GLAccount  string `json:"glAccount"`
	Dimension1 string `json:"dimension1"`
	Dimension2 string `json:"dimension2"`

	// RawCode retains the decoded payload text for audit and debugging.
	RawCode string `json:"rawCode,omitempty"`

	Status     Status  `json:"status"`
	Confidence float64 `json:"confidence"`
	Modified   bool    `json:"modified"`
}
