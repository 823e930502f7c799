package spc

import (
	"fmt"
	"strconv"
	"strings"
)

// billingPrefix marks the Swico S1 structured billing sub-format.
const billingPrefix = "//S1/"

// Swico field codes. Unrecognized codes are retained, never dropped.
const (
	swicoInvoiceNumber     = "10"
	swicoInvoiceDate       = "11"
	swicoCustomerReference = "20"
	swicoVATNumber         = "30"
	swicoVATDates          = "31"
	swicoVATDetails        = "32"
	swicoConditions        = "40"
)

// DecodeBilling decodes the billing-information extension string. It never
// fails: malformed segments are skipped, an empty string decodes to Absent,
// and anything without the Swico sentinel goes through the lossier generic
// key/value fallback.
func DecodeBilling(s string) Billing {
	s = strings.TrimSpace(s)
	if s == "" {
		return Billing{Kind: BillingAbsent}
	}
	if strings.HasPrefix(s, billingPrefix) {
		return decodeSwico(strings.TrimPrefix(s, billingPrefix))
	}
	return decodeGenericBilling(s)
}

// decodeSwico interprets consecutive "/"-separated tokens as code/value
// pairs. A trailing unpaired token or a pair with an empty code is dropped;
// well-formed siblings are kept.
func decodeSwico(s string) Billing {
	b := Billing{Kind: BillingStructured}
	tokens := strings.Split(s, "/")
	for i := 0; i+1 < len(tokens); i += 2 {
		code, value := tokens[i], tokens[i+1]
		if code == "" {
			continue
		}
		switch code {
		case swicoInvoiceNumber:
			b.InvoiceNumber = value
		case swicoInvoiceDate:
			b.InvoiceDate = decodeSwicoDate(value)
		case swicoCustomerReference:
			b.CustomerReference = value
		case swicoVATNumber:
			b.VATNumber = value
		case swicoVATDates:
			b.VATDates = decodeSwicoDateRange(value)
		case swicoVATDetails:
			b.VATDetails = decodeVATDetails(value)
		case swicoConditions:
			b.PaymentConditions = value
		default:
			if b.Extra == nil {
				b.Extra = make(map[string]string)
			}
			b.Extra[code] = value
		}
	}
	return b
}

// decodeSwicoDate expands a 6-digit YYMMDD value to an ISO date. Two-digit
// years above 50 map to the 1900s; this pivot is inherited from the Swico
// encoding and is a known limitation of the format.
func decodeSwicoDate(v string) string {
	if len(v) != 6 || !digitsPattern.MatchString(v) {
		return v
	}
	yy, err := strconv.Atoi(v[:2])
	if err != nil {
		return v
	}
	century := 2000
	if yy > 50 {
		century = 1900
	}
	return fmt.Sprintf("%d-%s-%s", century+yy, v[2:4], v[4:6])
}

// decodeSwicoDateRange handles the VAT date field, which may carry one
// 6-digit date or a 12-digit start/end pair.
func decodeSwicoDateRange(v string) string {
	if len(v) == 12 && digitsPattern.MatchString(v) {
		return decodeSwicoDate(v[:6]) + " - " + decodeSwicoDate(v[6:])
	}
	return decodeSwicoDate(v)
}

// decodeVATDetails splits "rate:amount" pairs separated by ";". A malformed
// pair decodes to {0,0} rather than aborting the extension.
func decodeVATDetails(v string) []VATDetail {
	var details []VATDetail
	for _, pair := range strings.Split(v, ";") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		var d VATDetail
		if i := strings.Index(pair, ":"); i >= 0 {
			d.Rate, _ = strconv.ParseFloat(pair[:i], 64)
			d.Amount, _ = strconv.ParseFloat(pair[i+1:], 64)
		}
		details = append(details, d)
	}
	return details
}

// decodeGenericBilling is the free-form key/value fallback: segments split on
// the double-slash delimiter, each on its first "/", with keys classified by
// case-insensitive substring match. Unmatched keys are ignored; this path is
// deliberately lossier than the structured one.
func decodeGenericBilling(s string) Billing {
	b := Billing{Kind: BillingGeneric}
	for _, seg := range strings.Split(s, "//") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		key, value := seg, ""
		if i := strings.Index(seg, "/"); i >= 0 {
			key, value = seg[:i], seg[i+1:]
		}
		if value == "" {
			continue
		}
		switch k := strings.ToLower(key); {
		case strings.Contains(k, "invoice") || strings.Contains(k, "facture"):
			b.InvoiceNumber = value
		case strings.Contains(k, "date"):
			b.InvoiceDate = value
		case strings.Contains(k, "vat") || strings.Contains(k, "tax") || strings.Contains(k, "tva"):
			b.VATNumber = value
		case strings.Contains(k, "order") || strings.Contains(k, "commande"):
			b.OrderNumber = value
		}
	}
	return b
}
