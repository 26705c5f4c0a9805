package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/lnsettle/eclair-adapter/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const invoiceDir = "invoices"

type invoiceRecordRepository struct {
	store *badgerhold.Store
}

func NewInvoiceRecordRepository(baseDir string, logger badger.Logger) (domain.InvoiceRecordRepository, error) {
	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, invoiceDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open invoice record store: %s", err)
	}
	return &invoiceRecordRepository{store}, nil
}

func (r *invoiceRecordRepository) Upsert(ctx context.Context, record domain.InvoiceRecord) error {
	return r.store.Upsert(record.PreimageHash, &record)
}

func (r *invoiceRecordRepository) Get(ctx context.Context, preimageHash string) (*domain.InvoiceRecord, error) {
	var record domain.InvoiceRecord
	err := r.store.Get(preimageHash, &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("invoice record %s not found", preimageHash)
	}
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *invoiceRecordRepository) GetAll(ctx context.Context) ([]domain.InvoiceRecord, error) {
	var records []domain.InvoiceRecord
	err := r.store.Find(&records, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get all invoice records: %w", err)
	}

	return records, nil
}

func (r *invoiceRecordRepository) Close() {
	// nolint:all
	r.store.Close()
}
