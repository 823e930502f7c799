// Package extractor reads the text layer of a PDF document. Digitally
// produced QR-bills sometimes carry the payment-code payload as selectable
// text, which makes a full raster search unnecessary.
package extractor

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// payloadTrailer is the marker line closing an SPC payload block.
const payloadTrailer = "EPD"

// spcBlockMinLines is the least a payload block from SPC through EPD can
// span when no line was lost in extraction.
const spcBlockMinLines = 31

// trailingLines after EPD that may belong to the payload (billing extension
// and two alternative procedures).
const trailingLines = 3

// ExtractPages returns the text content of each page. It tries row-based
// extraction first for layout fidelity and falls back to plain-text
// extraction per page.
func ExtractPages(filePath string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	pages = extractByRow(r, numPages)
	if !hasText(pages) {
		pages = extractByPlainText(r, numPages)
	}
	return pages, nil
}

// FindPayload scans page text for an embedded payment-code block: an SPC
// identifier line followed by a trailer line, with the positional lines in
// between intact. Blocks that lost lines in extraction are rejected, since
// the payload format is positional and a shifted block would decode garbage.
func FindPayload(pages []string) (string, bool) {
	for _, page := range pages {
		lines := strings.Split(page, "\n")
		start := -1
		for i, ln := range lines {
			if strings.TrimSpace(ln) == "SPC" {
				start = i
				break
			}
		}
		if start < 0 {
			continue
		}

		end := -1
		for i := start; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == payloadTrailer {
				end = i
				break
			}
		}
		if end < 0 || end-start+1 < spcBlockMinLines {
			continue
		}

		stop := end + 1 + trailingLines
		if stop > len(lines) {
			stop = len(lines)
		}
		return strings.Join(lines[start:stop], "\n"), true
	}
	return "", false
}

func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			lines = append(lines, strings.TrimSpace(strings.Join(parts, " ")))
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func extractByPlainText(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fontNames := page.Fonts()
		fonts := make(map[string]*pdf.Font)
		for _, name := range fontNames {
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return pages
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
