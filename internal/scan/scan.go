// Package scan runs the per-document pipeline: text-layer fast path, raster
// QR search, record normalization. Each document is processed by an
// independent pipeline invocation with no shared mutable state, so callers
// may scan multiple documents concurrently.
package scan

import (
	"context"
	"image"

	"github.com/insightdelivered/invoice-scanner/internal/extractor"
	"github.com/insightdelivered/invoice-scanner/internal/locator"
	"github.com/insightdelivered/invoice-scanner/internal/models"
	"github.com/insightdelivered/invoice-scanner/internal/render"
	"github.com/insightdelivered/invoice-scanner/internal/spc"
)

// Outcome bundles everything one document scan produced. Record is always
// populated, even when nothing was found or the document could not be
// rendered; status and confidence carry the "needs attention" signal.
type Outcome struct {
	Record    models.InvoiceRecord
	Code      *spc.PaymentCode
	Found     bool
	FirstPage image.Image
}

// Scanner scans invoice documents for payment codes.
type Scanner struct {
	Decoder     locator.SymbolDecoder
	HomeCountry string
}

func (s *Scanner) homeCountry() string {
	if s.HomeCountry == "" {
		return "CH"
	}
	return s.HomeCountry
}

// ScanFile processes one PDF. The returned error reports operational
// problems (missing poppler, unreadable file); even then the outcome carries
// a valid record with error status.
func (s *Scanner) ScanFile(ctx context.Context, path, docID string) (Outcome, error) {
	// Fast path: some QR-bill PDFs carry the payload in the text layer.
	if pages, err := extractor.ExtractPages(path); err == nil {
		if payload, ok := extractor.FindPayload(pages); ok {
			if code, err := spc.Decode(payload); err == nil {
				return s.outcome(docID, code, nil), nil
			}
		}
	}

	doc, err := render.Open(path)
	if err != nil {
		return s.outcome(docID, nil, nil), err
	}

	loc := &locator.Locator{Decoder: s.Decoder}
	res, err := loc.Locate(ctx, doc)
	if err != nil {
		return s.outcome(docID, nil, res.FirstPage), err
	}

	var code *spc.PaymentCode
	if res.Found {
		code = res.Code
	}
	return s.outcome(docID, code, res.FirstPage), nil
}

func (s *Scanner) outcome(docID string, code *spc.PaymentCode, firstPage image.Image) Outcome {
	return Outcome{
		Record:    models.NewInvoiceRecord(docID, code, s.homeCountry()),
		Code:      code,
		Found:     code != nil,
		FirstPage: firstPage,
	}
}
