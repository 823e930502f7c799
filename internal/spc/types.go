package spc

import "strings"

// AddressType selects between the two address encodings the Swiss payment
// standard permits, fixed by a one-character discriminator in the payload.
type AddressType string

const (
	// AddressStructured carries street and building number in separate fields.
	AddressStructured AddressType = "S"
	// AddressCombined carries two free-form address lines.
	AddressCombined AddressType = "K"
)

// Address is a party address in either the structured or combined encoding.
// The discriminator is set at decode time and never changes.
type Address struct {
	Type       AddressType `json:"type"`
	Street     string      `json:"street,omitempty"`
	Building   string      `json:"building,omitempty"`
	Line1      string      `json:"line1,omitempty"`
	Line2      string      `json:"line2,omitempty"`
	PostalCode string      `json:"postalCode,omitempty"`
	City       string      `json:"city,omitempty"`
	Country    string      `json:"country,omitempty"`
}

// Display renders the address as a single line. The country code is appended
// only when it differs from homeCountry.
func (a *Address) Display(homeCountry string) string {
	var parts []string
	switch a.Type {
	case AddressStructured:
		switch {
		case a.Street != "" && a.Building != "":
			parts = append(parts, a.Street+" "+a.Building)
		case a.Street != "":
			parts = append(parts, a.Street)
		case a.Building != "":
			parts = append(parts, a.Building)
		}
	case AddressCombined:
		if a.Line1 != "" {
			parts = append(parts, a.Line1)
		}
		if a.Line2 != "" {
			parts = append(parts, a.Line2)
		}
	}
	if locality := strings.TrimSpace(a.PostalCode + " " + a.City); locality != "" {
		parts = append(parts, locality)
	}
	if a.Country != "" && a.Country != homeCountry {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, ", ")
}

// Party is one of the creditor, ultimate creditor or debtor roles.
type Party struct {
	Name    string   `json:"name"`
	Address *Address `json:"address,omitempty"`
}

// ReferenceKind classifies the payment reference field.
type ReferenceKind string

const (
	ReferenceQR       ReferenceKind = "QRR"
	ReferenceCreditor ReferenceKind = "SCOR"
	ReferenceNone     ReferenceKind = "NON"
)

// Reference is the payment reference with its grouped display rendering.
// Kind NON implies both value fields are empty.
type Reference struct {
	Kind    ReferenceKind `json:"kind"`
	Value   string        `json:"value,omitempty"`
	Display string        `json:"display,omitempty"`
}

// VATDetail is one rate/amount entry of a Swico VAT breakdown.
type VATDetail struct {
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

// BillingKind tags which billing-extension encoding was decoded.
type BillingKind string

const (
	BillingAbsent     BillingKind = "absent"
	BillingStructured BillingKind = "structured"
	BillingGeneric    BillingKind = "generic"
)

// Billing holds the decoded billing-information extension. The structured
// (Swico) path fills the named fields and keeps unrecognized codes in Extra;
// the generic key/value path fills only the named fields it can classify.
type Billing struct {
	Kind              BillingKind       `json:"kind"`
	InvoiceNumber     string            `json:"invoiceNumber,omitempty"`
	InvoiceDate       string            `json:"invoiceDate,omitempty"`
	CustomerReference string            `json:"customerReference,omitempty"`
	OrderNumber       string            `json:"orderNumber,omitempty"`
	VATNumber         string            `json:"vatNumber,omitempty"`
	VATDates          string            `json:"vatDates,omitempty"`
	VATDetails        []VATDetail       `json:"vatDetails,omitempty"`
	PaymentConditions string            `json:"paymentConditions,omitempty"`
	Extra             map[string]string `json:"extra,omitempty"`
}

// PaymentCode is the decoded payment code. It is constructed once by Decode
// and immutable afterwards. A nil Amount means the payer determines the
// amount; it is distinct from zero.
type PaymentCode struct {
	Format           string    `json:"format"`
	Version          string    `json:"version,omitempty"`
	Coding           string    `json:"coding,omitempty"`
	IBAN             string    `json:"iban,omitempty"`
	Creditor         Party     `json:"creditor"`
	UltimateCreditor *Party    `json:"ultimateCreditor,omitempty"`
	Amount           *float64  `json:"amount,omitempty"`
	Currency         string    `json:"currency,omitempty"`
	Debtor           *Party    `json:"debtor,omitempty"`
	Reference        Reference `json:"reference"`
	Message          string    `json:"message,omitempty"`
	Trailer          string    `json:"trailer,omitempty"`
	Billing          Billing   `json:"billing"`
	AltProcedures    []string  `json:"altProcedures,omitempty"`
	Raw              string    `json:"raw,omitempty"`
}
