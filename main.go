package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/insightdelivered/invoice-scanner/internal/api"
	"github.com/insightdelivered/invoice-scanner/internal/config"
	"github.com/insightdelivered/invoice-scanner/internal/qr"
	"github.com/insightdelivered/invoice-scanner/internal/scan"
	"github.com/insightdelivered/invoice-scanner/internal/store"
)

func main() {
	serveFlag := flag.Bool("serve", false, "Run the HTTP API instead of converting files")
	portFlag := flag.Int("port", 0, "HTTP port (overrides SCANNER_PORT)")
	jsonFlag := flag.Bool("json", false, "Print the full invoice record as JSON")
	concurrencyFlag := flag.Int("concurrency", 1, "Number of documents scanned in parallel")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Swiss QR-bill Invoice Scanner
by Insight Delivered

Locates and decodes the Swiss Payment Code on scanned invoice PDFs and
emits a normalized invoice record for downstream bookkeeping.

Usage:
  invoice-scanner [flags] <input.pdf> [input2.pdf ...]
  invoice-scanner -serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Scan a single invoice and print a summary
  invoice-scanner invoice.pdf

  # Scan a batch, four documents at a time, as JSON
  invoice-scanner -json -concurrency=4 *.pdf

  # Run the HTTP API on port 9000
  invoice-scanner -serve -port=9000

Requires poppler-utils (pdftoppm, pdfinfo) for page rasterization.
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("invoice-scanner v%s\n", api.Version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("Configuration error: %v\n", err)
	}
	if *portFlag != 0 {
		cfg.Port = *portFlag
	}

	scanner := &scan.Scanner{
		Decoder:     qr.NewDecoder(),
		HomeCountry: cfg.HomeCountry,
	}

	if *serveFlag {
		runServer(cfg, scanner)
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	if runBatch(scanner, flag.Args(), *jsonFlag, *concurrencyFlag) {
		os.Exit(1)
	}
}

// runBatch scans each file with an independent pipeline instance, at most
// workers at a time. Returns true when any file failed.
func runBatch(scanner *scan.Scanner, files []string, asJSON bool, workers int) bool {
	if workers < 1 {
		workers = 1
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed bool
	)
	sem := make(chan struct{}, workers)

	for _, inputPath := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(path string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := processFile(scanner, path, asJSON); err != nil {
				mu.Lock()
				failed = true
				mu.Unlock()
				fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", path, err)
			}
		}(inputPath)
	}
	wg.Wait()
	return failed
}

func processFile(scanner *scan.Scanner, inputPath string, asJSON bool) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}
	if ext := strings.ToLower(filepath.Ext(inputPath)); ext != ".pdf" {
		return fmt.Errorf("expected .pdf file, got %q", ext)
	}

	docID := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	out, err := scanner.ScanFile(context.Background(), inputPath, docID)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := json.MarshalIndent(out.Record, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Processing: %s\n", inputPath)
	if !out.Found {
		fmt.Println("  No payment code found; record needs manual completion.")
		return nil
	}

	rec := out.Record
	fmt.Printf("  Payment code: %s\n", out.Code.Format)
	if rec.VendorName != "" {
		fmt.Printf("  Creditor: %s\n", rec.VendorName)
	}
	if rec.VendorIBAN != "" {
		fmt.Printf("  Account: %s\n", rec.VendorIBAN)
	}
	fmt.Printf("  Amount: %.2f %s\n", rec.Amount, rec.Currency)
	if rec.PaymentReference != "" {
		fmt.Printf("  Reference: %s (%s)\n", rec.PaymentReference, rec.ReferenceType)
	}
	if rec.VendorInvoiceNo != "" {
		fmt.Printf("  Invoice no: %s\n", rec.VendorInvoiceNo)
	}
	fmt.Printf("  Status: %s (confidence %.0f%%)\n", rec.Status, rec.Confidence*100)
	return nil
}

func runServer(cfg config.Config, scanner *scan.Scanner) {
	app := fiber.New(fiber.Config{
		BodyLimit: 32 << 20,
	})
	app.Use(logger.New())

	handler := &api.Handler{Scanner: scanner}

	if cfg.DatabaseURL != "" {
		st, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		handler.Store = st
		log.Println("persistence enabled")
	}

	handler.Register(app)

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
