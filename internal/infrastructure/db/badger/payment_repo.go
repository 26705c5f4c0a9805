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

const paymentDir = "payments"

type paymentRecordRepository struct {
	store *badgerhold.Store
}

func NewPaymentRecordRepository(baseDir string, logger badger.Logger) (domain.PaymentRecordRepository, error) {
	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, paymentDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open payment record store: %s", err)
	}
	return &paymentRecordRepository{store}, nil
}

func (r *paymentRecordRepository) Upsert(ctx context.Context, record domain.PaymentRecord) error {
	return r.store.Upsert(record.PreimageHash, &record)
}

func (r *paymentRecordRepository) Get(ctx context.Context, preimageHash string) (*domain.PaymentRecord, error) {
	var record domain.PaymentRecord
	err := r.store.Get(preimageHash, &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("payment record %s not found", preimageHash)
	}
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *paymentRecordRepository) GetAll(ctx context.Context) ([]domain.PaymentRecord, error) {
	var records []domain.PaymentRecord
	err := r.store.Find(&records, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get all payment records: %w", err)
	}

	return records, nil
}

func (r *paymentRecordRepository) Close() {
	// nolint:all
	r.store.Close()
}
