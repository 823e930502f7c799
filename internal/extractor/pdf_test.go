package extractor

import (
	"strings"
	"testing"
)

var payloadBlock = strings.Join([]string{
	"SPC", "0200", "1", "CH4431999123000889012",
	"S", "Robert Schneider AG", "Rue du Lac", "1268", "2501", "Biel", "CH",
	"", "", "", "", "", "", "",
	"1949.75", "CHF",
	"", "", "", "", "", "", "",
	"QRR", "210000000003139471430009017",
	"Order of 15 June 2020", "EPD",
}, "\n")

func TestFindPayload(t *testing.T) {
	page := "Invoice 2024-17\nSome header text\n" + payloadBlock + "\n//S1/10/2024-17\nFooter"
	got, ok := FindPayload([]string{page})
	if !ok {
		t.Fatal("expected payload hit")
	}
	if !strings.HasPrefix(got, "SPC\n") {
		t.Errorf("payload must start at the identifier, got %q", got[:10])
	}
	if !strings.Contains(got, "//S1/10/2024-17") {
		t.Error("trailing extension line lost")
	}
	lines := strings.Split(got, "\n")
	if lines[30] != "EPD" {
		t.Errorf("line 30: got %q, want EPD", lines[30])
	}
}

func TestFindPayload_MissingTrailer(t *testing.T) {
	page := "SPC\n0200\n1\nno trailer anywhere"
	if _, ok := FindPayload([]string{page}); ok {
		t.Fatal("expected no hit without trailer")
	}
}

func TestFindPayload_CollapsedBlockRejected(t *testing.T) {
	// Extraction that drops blank lines shifts every positional field; such
	// a block must not be offered to the decoder.
	collapsed := "SPC\n0200\n1\nCH4431999123000889012\nS\nName\nStreet\n1\n8000\nCity\nCH\n10.00\nCHF\nQRR\nref\nmsg\nEPD"
	if _, ok := FindPayload([]string{collapsed}); ok {
		t.Fatal("expected collapsed block to be rejected")
	}
}

func TestFindPayload_LaterPage(t *testing.T) {
	pages := []string{"just a cover letter", payloadBlock}
	got, ok := FindPayload(pages)
	if !ok {
		t.Fatal("expected payload on second page")
	}
	if !strings.HasSuffix(got, "EPD") {
		t.Errorf("payload end: got %q", got)
	}
}
