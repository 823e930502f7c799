// Package spc decodes the Swiss Payment Code payload carried inside the QR
// symbol of a QR-bill. The payload is strictly positional: each datum lives
// at a fixed line index. A payload that does not carry the SPC identifier is
// decoded through a best-effort generic fallback instead.
package spc

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

const (
	// identifier is the fixed token on line 0 of every SPC payload.
	identifier = "SPC"
	// FormatGeneric tags records produced by the generic fallback.
	FormatGeneric = "GENERIC"
	// minLines is the minimum line count for a payload claiming to be SPC.
	minLines = 20
	// defaultCurrency applies when the currency line is blank.
	defaultCurrency = "CHF"
)

// ErrNotRecognized reports a payload that carries the SPC identifier but does
// not match the expected layout. Callers treat it as "no code here", not as a
// hard failure.
var ErrNotRecognized = errors.New("payload does not match the Swiss payment code layout")

var (
	ibanPattern   = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z0-9]{5,30}$`)
	amountPattern = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	digitsPattern = regexp.MustCompile(`^\d+$`)

	// Patterns for the generic fallback: an IBAN-shaped substring, a
	// currency-prefixed amount and a date-shaped substring.
	genericIBANPattern   = regexp.MustCompile(`(?i)\bCH\d{2}\s?(?:\d{4}\s?){4}\d\b`)
	genericAmountPattern = regexp.MustCompile(`(?i)(?:CHF|EUR)\s?(\d+[.,]\d{2})`)
	genericDatePattern   = regexp.MustCompile(`\b\d{1,2}[./]\d{1,2}[./]\d{4}\b`)
)

// Decode turns raw QR symbol text into a PaymentCode. Text without the SPC
// identifier goes through the generic fallback, which never fails but may
// return a sparse record. Text with the identifier but fewer than 20 lines
// returns ErrNotRecognized. Within a recognized payload, a malformed line
// degrades only that field to absent.
func Decode(raw string) (*PaymentCode, error) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	line := func(i int) string {
		if i < len(lines) {
			return strings.TrimSpace(lines[i])
		}
		return ""
	}

	if line(0) != identifier {
		return decodeGeneric(raw), nil
	}
	if len(lines) < minLines {
		return nil, ErrNotRecognized
	}

	code := &PaymentCode{
		Format:  identifier,
		Version: line(1),
		Coding:  line(2),
		Raw:     raw,
	}

	if iban := line(3); ibanPattern.MatchString(iban) {
		code.IBAN = iban
	}

	if creditor := parseParty(line, 4); creditor != nil {
		code.Creditor = *creditor
	}
	code.UltimateCreditor = parseParty(line, 11)

	// Absence or mismatch leaves the amount unset: unset means the payer
	// determines the amount, which is not the same as zero.
	if amt := line(18); amountPattern.MatchString(amt) {
		if v, err := strconv.ParseFloat(amt, 64); err == nil {
			code.Amount = &v
		}
	}

	code.Currency = line(19)
	if code.Currency == "" {
		code.Currency = defaultCurrency
	}

	code.Debtor = parseParty(line, 20)
	code.Reference = buildReference(line(27), line(28))
	code.Message = line(29)
	code.Trailer = line(30)
	code.Billing = DecodeBilling(line(31))

	for _, i := range []int{32, 33} {
		if s := line(i); s != "" {
			code.AltProcedures = append(code.AltProcedures, s)
		}
	}

	return code, nil
}

// parseParty reads the seven-line party group starting at base: discriminator,
// name, two address lines, postal code, city, country. The group is present
// only when the discriminator slot is non-blank.
func parseParty(line func(int) string, base int) *Party {
	discriminator := line(base)
	if discriminator == "" {
		return nil
	}

	p := &Party{Name: line(base + 1)}

	var addrType AddressType
	switch discriminator {
	case string(AddressStructured):
		addrType = AddressStructured
	case string(AddressCombined):
		addrType = AddressCombined
	default:
		// Unknown discriminator: keep the name, drop the address.
		return p
	}

	addr := &Address{
		Type:       addrType,
		PostalCode: line(base + 4),
		City:       line(base + 5),
		Country:    line(base + 6),
	}
	if addrType == AddressStructured {
		addr.Street = line(base + 2)
		addr.Building = line(base + 3)
	} else {
		addr.Line1 = line(base + 2)
		addr.Line2 = line(base + 3)
	}
	p.Address = addr
	return p
}

// buildReference maps the reference-kind discriminator and raw value to a
// Reference. A QR reference of exactly 27 digits gets the 2-5-5-5-5-5 grouped
// display rendering.
func buildReference(kind, value string) Reference {
	switch ReferenceKind(kind) {
	case ReferenceQR:
		ref := Reference{Kind: ReferenceQR, Value: value, Display: value}
		if len(value) == 27 && digitsPattern.MatchString(value) {
			ref.Display = groupQRReference(value)
		}
		return ref
	case ReferenceCreditor:
		return Reference{Kind: ReferenceCreditor, Value: value, Display: value}
	default:
		// NON, blank or unrecognized: no reference.
		return Reference{Kind: ReferenceNone}
	}
}

func groupQRReference(value string) string {
	groups := []string{value[:2]}
	for i := 2; i < len(value); i += 5 {
		groups = append(groups, value[i:i+5])
	}
	return strings.Join(groups, " ")
}

// decodeGeneric extracts whatever payment-shaped data it can find in
// non-standard QR text. It never fails; missing data simply stays absent.
func decodeGeneric(raw string) *PaymentCode {
	code := &PaymentCode{
		Format:  FormatGeneric,
		Raw:     raw,
		Billing: Billing{Kind: BillingAbsent},
	}

	if m := genericIBANPattern.FindString(raw); m != "" {
		code.IBAN = strings.ReplaceAll(m, " ", "")
	}

	if m := genericAmountPattern.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64); err == nil {
			code.Amount = &v
			if strings.Contains(strings.ToUpper(raw), "EUR") {
				code.Currency = "EUR"
			} else {
				code.Currency = defaultCurrency
			}
		}
	}

	// A date-shaped substring has no slot of its own on the record; surface
	// it through the generic billing mapping.
	if m := genericDatePattern.FindString(raw); m != "" {
		code.Billing = Billing{Kind: BillingGeneric, InvoiceDate: m}
	}

	code.Reference = Reference{Kind: ReferenceNone}
	return code
}
