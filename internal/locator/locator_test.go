package locator

import (
	"context"
	"fmt"
	"image"
	"strings"
	"testing"
)

// attempt identifies one decode attempt by its search coordinates.
type attempt struct {
	page   int
	scale  float64
	region string
}

// recorder is shared between the fake document and fake decoder. The search
// is strictly sequential, so the decoder can attribute each attempt to the
// page/scale most recently rendered.
type recorder struct {
	page     int
	scale    float64
	renders  []attempt
	attempts []attempt
	// succeed, when set, returns payload text for a matching attempt.
	succeed func(a attempt) (string, bool)
}

type fakeDoc struct {
	rec   *recorder
	pages int
}

func (d *fakeDoc) NumPages() int { return d.pages }

func (d *fakeDoc) RenderPage(_ context.Context, page int, scale float64) (image.Image, error) {
	d.rec.page, d.rec.scale = page, scale
	d.rec.renders = append(d.rec.renders, attempt{page: page, scale: scale})
	return image.NewGray(image.Rect(0, 0, 200, 400)), nil
}

type fakeDecoder struct {
	rec *recorder
}

// regionFromHeight maps cropped pixel heights back to region names for a
// 400px tall page render.
func regionFromHeight(h int) string {
	switch h {
	case 100:
		return "bottom-quarter"
	case 160:
		return "payment-slip"
	case 200:
		return "bottom-half"
	case 400:
		return "full-page"
	}
	return fmt.Sprintf("unexpected-%dpx", h)
}

func (f *fakeDecoder) DecodeSymbol(img image.Image) (string, bool) {
	a := attempt{
		page:   f.rec.page,
		scale:  f.rec.scale,
		region: regionFromHeight(img.Bounds().Dy()),
	}
	f.rec.attempts = append(f.rec.attempts, a)
	if f.rec.succeed != nil {
		return f.rec.succeed(a)
	}
	return "", false
}

// validPayload is the minimal SPC payload the decoder accepts.
var validPayload = strings.Join([]string{
	"SPC", "0200", "1", "CH4431999123000889012",
	"S", "Robert Schneider AG", "Rue du Lac", "1268", "2501", "Biel", "CH",
	"", "", "", "", "", "", "",
	"99.95", "CHF",
	"", "", "", "", "", "", "",
	"NON", "",
	"", "EPD",
}, "\n")

func TestLocate_NotFoundIsExhaustiveAndIdempotent(t *testing.T) {
	rec := &recorder{}
	doc := &fakeDoc{rec: rec, pages: 2}
	l := &Locator{Decoder: &fakeDecoder{rec: rec}}

	res, err := l.Locate(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Found {
		t.Fatal("expected found=false")
	}
	if res.Code != nil {
		t.Errorf("expected nil code, got %+v", res.Code)
	}

	want := doc.pages * len(Scales) * len(Regions)
	if len(rec.attempts) != want {
		t.Fatalf("attempts: got %d, want %d", len(rec.attempts), want)
	}

	// Every page/scale/region combination exactly once.
	seen := make(map[attempt]bool)
	for _, a := range rec.attempts {
		if seen[a] {
			t.Errorf("duplicate attempt: %+v", a)
		}
		seen[a] = true
	}

	// First page image captured even when nothing was found.
	if res.FirstPage == nil {
		t.Error("expected first page capture")
	}
}

func TestLocate_SearchOrder(t *testing.T) {
	rec := &recorder{}
	doc := &fakeDoc{rec: rec, pages: 1}
	l := &Locator{Decoder: &fakeDecoder{rec: rec}}

	if _, err := l.Locate(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Scales in configured order, regions bottom-first within each scale.
	wantFirst := []attempt{
		{0, 3.0, "bottom-quarter"},
		{0, 3.0, "payment-slip"},
		{0, 3.0, "bottom-half"},
		{0, 3.0, "full-page"},
		{0, 2.0, "bottom-quarter"},
	}
	for i, w := range wantFirst {
		if rec.attempts[i] != w {
			t.Errorf("attempt %d: got %+v, want %+v", i, rec.attempts[i], w)
		}
	}
}

func TestLocate_LateHitStopsImmediately(t *testing.T) {
	// Only page 2 (index 1), full-page region, at the third configured scale
	// carries a decodable symbol.
	rec := &recorder{}
	rec.succeed = func(a attempt) (string, bool) {
		if a.page == 1 && a.scale == 4.0 && a.region == "full-page" {
			return validPayload, true
		}
		return "", false
	}
	doc := &fakeDoc{rec: rec, pages: 2}
	l := &Locator{Decoder: &fakeDecoder{rec: rec}}

	res, err := l.Locate(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found {
		t.Fatal("expected found=true")
	}
	if res.Code == nil || res.Code.IBAN != "CH4431999123000889012" {
		t.Fatalf("code: got %+v", res.Code)
	}

	// Page 1 fully searched (12), page 2 at the first two scales (8), then
	// all four regions of the third scale, stopping on the last.
	want := 12 + 8 + 4
	if len(rec.attempts) != want {
		t.Fatalf("attempts: got %d, want %d", len(rec.attempts), want)
	}
	last := rec.attempts[len(rec.attempts)-1]
	if (last != attempt{1, 4.0, "full-page"}) {
		t.Errorf("last attempt: got %+v", last)
	}
}

func TestLocate_RejectedPayloadKeepsSearching(t *testing.T) {
	// The first region yields a symbol whose payload claims SPC but is too
	// short; the locator must treat it as "no code here" and continue.
	rec := &recorder{}
	rec.succeed = func(a attempt) (string, bool) {
		if a.page == 0 && a.scale == 3.0 && a.region == "bottom-quarter" {
			return "SPC\n0200\n1", true
		}
		if a.page == 0 && a.scale == 3.0 && a.region == "payment-slip" {
			return validPayload, true
		}
		return "", false
	}
	doc := &fakeDoc{rec: rec, pages: 1}
	l := &Locator{Decoder: &fakeDecoder{rec: rec}}

	res, err := l.Locate(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found {
		t.Fatal("expected found=true after continuing past rejected payload")
	}
	if len(rec.attempts) != 2 {
		t.Errorf("attempts: got %d, want 2", len(rec.attempts))
	}
}

func TestLocate_GenericFallbackStopsSearch(t *testing.T) {
	// A non-SPC symbol still terminates the search with a sparse record.
	rec := &recorder{}
	rec.succeed = func(a attempt) (string, bool) {
		if a.page == 0 && a.scale == 3.0 && a.region == "bottom-quarter" {
			return "some voucher CHF 12.50", true
		}
		return "", false
	}
	doc := &fakeDoc{rec: rec, pages: 1}
	l := &Locator{Decoder: &fakeDecoder{rec: rec}}

	res, err := l.Locate(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found {
		t.Fatal("expected found=true")
	}
	if res.Code.Format != "GENERIC" {
		t.Errorf("format: got %q", res.Code.Format)
	}
	if len(rec.attempts) != 1 {
		t.Errorf("attempts: got %d, want 1", len(rec.attempts))
	}
}

func TestLocate_FirstPageCapturedOnce(t *testing.T) {
	rec := &recorder{}
	doc := &fakeDoc{rec: rec, pages: 3}
	l := &Locator{Decoder: &fakeDecoder{rec: rec}}

	res, err := l.Locate(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FirstPage == nil {
		t.Fatal("expected first page capture")
	}
	// First render overall is page 0 at the primary scale.
	if rec.renders[0] != (attempt{page: 0, scale: 3.0}) {
		t.Errorf("first render: got %+v", rec.renders[0])
	}
}
