// Package locator searches a rendered document for a decodable payment code.
// Pages, scales and regions are tried strictly in a fixed order, front-loaded
// toward the bottom of the page where the payment slip sits, and the search
// stops on the first decode the payload decoder accepts.
package locator

import (
	"context"
	"image"

	"github.com/disintegration/imaging"

	"github.com/insightdelivered/invoice-scanner/internal/spc"
)

// Document gives access to a multi-page document that can be rasterized page
// by page at a caller-chosen scale.
type Document interface {
	NumPages() int
	RenderPage(ctx context.Context, page int, scale float64) (image.Image, error)
}

// SymbolDecoder attempts to read a QR symbol from a pixel region. A missing
// symbol is a normal outcome, not an error.
type SymbolDecoder interface {
	DecodeSymbol(img image.Image) (string, bool)
}

// Region describes a page area as fractions of the page dimensions, so it is
// independent of the rendered pixel size.
type Region struct {
	Name   string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Regions in priority order. Payment slips occupy the bottom of the page in
// the vast majority of documents; the full-page fallback covers the rest.
var Regions = []Region{
	{Name: "bottom-quarter", X: 0, Y: 0.75, Width: 1, Height: 0.25},
	{Name: "payment-slip", X: 0, Y: 0.6, Width: 1, Height: 0.4},
	{Name: "bottom-half", X: 0, Y: 0.5, Width: 1, Height: 0.5},
	{Name: "full-page", X: 0, Y: 0, Width: 1, Height: 1},
}

// Scales tried per page: primary first, then a smaller and a larger render.
// Calibrated against typical 300dpi invoice scans.
var Scales = []float64{3.0, 2.0, 4.0}

// Result is the outcome of a document search. FirstPage holds one rasterized
// image of the first page regardless of whether a code was found, captured at
// most once per document for downstream secondary recognition.
type Result struct {
	Found     bool
	Code      *spc.PaymentCode
	FirstPage image.Image
}

// Locator drives the page/scale/region search. Zero values for Regions and
// Scales fall back to the package defaults.
type Locator struct {
	Decoder SymbolDecoder
	Regions []Region
	Scales  []float64
}

// Locate scans the document in order and returns on the first accepted
// decode. A document with no decodable symbol anywhere reports Found=false;
// that is a valid terminal outcome, not an error.
func (l *Locator) Locate(ctx context.Context, doc Document) (Result, error) {
	regions := l.Regions
	if len(regions) == 0 {
		regions = Regions
	}
	scales := l.Scales
	if len(scales) == 0 {
		scales = Scales
	}

	var res Result
	for page := 0; page < doc.NumPages(); page++ {
		for _, scale := range scales {
			img, err := doc.RenderPage(ctx, page, scale)
			if err != nil {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				continue
			}
			if page == 0 && res.FirstPage == nil {
				res.FirstPage = img
			}
			for _, region := range regions {
				text, ok := l.Decoder.DecodeSymbol(cropRegion(img, region))
				if !ok {
					continue
				}
				code, err := spc.Decode(text)
				if err != nil {
					// Recognizably broken payload: keep searching.
					continue
				}
				res.Found = true
				res.Code = code
				return res, nil
			}
		}
	}
	return res, nil
}

func cropRegion(img image.Image, r Region) image.Image {
	if r.X == 0 && r.Y == 0 && r.Width == 1 && r.Height == 1 {
		return img
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	rect := image.Rect(
		b.Min.X+int(w*r.X),
		b.Min.Y+int(h*r.Y),
		b.Min.X+int(w*(r.X+r.Width)),
		b.Min.Y+int(h*(r.Y+r.Height)),
	)
	return imaging.Crop(img, rect)
}
