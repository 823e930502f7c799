// Package store persists scanned invoice records so downstream enrichment
// can pick them up later. Persistence is optional; the pipeline runs
// stateless when no database is configured.
package store

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/insightdelivered/invoice-scanner/internal/models"
)

// Record is the persisted form of a scanned invoice.
type Record struct {
	gorm.Model
	DocumentID       string `gorm:"uniqueIndex"`
	FileName         string
	VendorName       string
	VendorIBAN       string
	Amount           float64
	Currency         string
	PaymentReference string
	VendorInvoiceNo  string
	InvoiceDate      string
	Status           string
	Confidence       float64
	RawCode          string
}

// Store wraps the database connection.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save persists one scanned record.
func (s *Store) Save(rec models.InvoiceRecord, fileName string) error {
	r := Record{
		DocumentID:       rec.ID,
		FileName:         fileName,
		VendorName:       rec.VendorName,
		VendorIBAN:       rec.VendorIBAN,
		Amount:           rec.Amount,
		Currency:         rec.Currency,
		PaymentReference: rec.PaymentReference,
		VendorInvoiceNo:  rec.VendorInvoiceNo,
		InvoiceDate:      rec.InvoiceDate,
		Status:           string(rec.Status),
		Confidence:       rec.Confidence,
		RawCode:          rec.RawCode,
	}
	if err := s.db.Create(&r).Error; err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// List returns persisted records, newest first.
func (s *Store) List() ([]Record, error) {
	var records []Record
	if err := s.db.Order("created_at desc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}
