// Package qr implements the symbol-decode capability on top of the gozxing
// ZXing port. Absence of a symbol in a region is a normal outcome.
package qr

import (
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Decoder reads QR symbols from pixel regions.
type Decoder struct {
	reader gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
}

// NewDecoder returns a decoder tuned for document scans, where symbols are
// small relative to the region and often slightly degraded.
func NewDecoder() *Decoder {
	return &Decoder{
		reader: qrcode.NewQRCodeReader(),
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// DecodeSymbol attempts to decode a QR symbol from the region and returns its
// raw text. The second return value is false when no symbol was found.
func (d *Decoder) DecodeSymbol(img image.Image) (string, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}
	result, err := d.reader.Decode(bmp, d.hints)
	if err != nil {
		return "", false
	}
	return result.GetText(), true
}
