// Package render rasterizes PDF pages through pdftoppm (poppler-utils),
// implementing the page-render capability the locator consumes.
package render

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// baseDPI is the rendering resolution at scale 1.0, matching PDF points.
const baseDPI = 72

// Renderer rasterizes pages of a single PDF document. Rendering is
// deterministic for a given (document, page, scale).
type Renderer struct {
	path  string
	pages int
}

// Open prepares a renderer for the given PDF. It fails when pdftoppm is not
// installed; page rendering itself happens lazily.
func Open(path string) (*Renderer, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("pdftoppm not available (install poppler-utils): %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	pages := pageCount(path)
	if pages == 0 {
		// pdfinfo missing or unreadable output; assume a single page so the
		// search still runs.
		pages = 1
	}
	return &Renderer{path: path, pages: pages}, nil
}

// NumPages returns the page count reported by pdfinfo.
func (r *Renderer) NumPages() int {
	return r.pages
}

// RenderPage rasterizes one page (0-based) at the given scale to a pixel
// buffer. Each call owns its temp directory, so buffers never accumulate on
// disk across pages.
func (r *Renderer) RenderPage(ctx context.Context, page int, scale float64) (image.Image, error) {
	dpi := int(scale * baseDPI)
	if dpi <= 0 {
		return nil, fmt.Errorf("invalid scale %v", scale)
	}

	tmpDir, err := os.MkdirTemp("", "render-page-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pageArg := strconv.Itoa(page + 1)
	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-r", strconv.Itoa(dpi), "-png",
		"-f", pageArg, "-l", pageArg,
		r.path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %v (output: %s)", err, strings.TrimSpace(string(out)))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("read temp dir: %w", err)
	}
	var pngs []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			pngs = append(pngs, filepath.Join(tmpDir, e.Name()))
		}
	}
	if len(pngs) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no image for page %d", page+1)
	}
	sort.Strings(pngs)

	img, err := imaging.Open(pngs[0])
	if err != nil {
		return nil, fmt.Errorf("decode rendered page: %w", err)
	}
	return img, nil
}

// pageCount returns the number of pages in a PDF using pdfinfo.
func pageCount(path string) int {
	out, err := exec.Command("pdfinfo", path).Output()
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "Pages:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
			if err == nil {
				return n
			}
		}
	}
	return 0
}
