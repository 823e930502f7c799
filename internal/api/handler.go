// Package api exposes the scan pipeline over HTTP.
package api

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/insightdelivered/invoice-scanner/internal/models"
	"github.com/insightdelivered/invoice-scanner/internal/scan"
	"github.com/insightdelivered/invoice-scanner/internal/spc"
	"github.com/insightdelivered/invoice-scanner/internal/store"
)

// Version reported by the health endpoint and scan responses.
const Version = "1.0.0"

// ScanResponse is the JSON envelope for /api/scan.
type ScanResponse struct {
	Success bool                  `json:"success"`
	Error   string                `json:"error,omitempty"`
	Found   bool                  `json:"found"`
	Invoice *models.InvoiceRecord `json:"invoice,omitempty"`
	Code    *spc.PaymentCode      `json:"code,omitempty"`
	Version string                `json:"version,omitempty"`
}

// Handler holds the HTTP handlers. Store may be nil when persistence is not
// configured.
type Handler struct {
	Scanner *scan.Scanner
	Store   *store.Store
}

// Register sets up the API routes.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/scan", h.HandleScan)
	app.Get("/api/invoices", h.HandleList)
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"engine":  "fiber",
	})
}

// HandleScan accepts a multipart PDF upload, runs the pipeline and returns
// the normalized record. A document with no code is a successful response
// with found=false; only operational failures produce error envelopes.
func (h *Handler) HandleScan(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return writeError(c, fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	tmpFile, err := os.CreateTemp("", "invoice-*.pdf")
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to create temp file.")
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveFile(fileHeader, tmpPath); err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}

	docID := uuid.NewString()
	out, scanErr := h.Scanner.ScanFile(c.UserContext(), tmpPath, docID)
	if scanErr != nil && !out.Found {
		// The record still describes the document (error status); surface the
		// operational failure alongside it.
		log.Printf("scan %s (%s): %v", docID, fileHeader.Filename, scanErr)
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Scan failed: %v", scanErr))
	}

	if h.Store != nil {
		if err := h.Store.Save(out.Record, fileHeader.Filename); err != nil {
			log.Printf("persist %s: %v", docID, err)
		}
	}

	return c.JSON(ScanResponse{
		Success: true,
		Found:   out.Found,
		Invoice: &out.Record,
		Code:    out.Code,
		Version: Version,
	})
}

func (h *Handler) HandleList(c *fiber.Ctx) error {
	if h.Store == nil {
		return writeError(c, fiber.StatusServiceUnavailable, "No database configured; set DATABASE_URL to enable persistence.")
	}
	records, err := h.Store.List()
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}
	if records == nil {
		records = []store.Record{}
	}
	return c.JSON(records)
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ScanResponse{Success: false, Error: msg})
}
