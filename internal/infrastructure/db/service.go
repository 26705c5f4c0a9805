package db

import (
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/lnsettle/eclair-adapter/internal/core/domain"
	"github.com/lnsettle/eclair-adapter/internal/core/ports"
	badgerdb "github.com/lnsettle/eclair-adapter/internal/infrastructure/db/badger"
)

var allowedTypes = strings.Join([]string{"badger"}, ",")

type ServiceConfig struct {
	DbType string
	// Datadir is the base directory for the stores; empty means
	// in-memory, useful for tests.
	Datadir string
	Logger  badger.Logger
}

type service struct {
	paymentRepo domain.PaymentRecordRepository
	invoiceRepo domain.InvoiceRecordRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	var (
		paymentRepo domain.PaymentRecordRepository
		invoiceRepo domain.InvoiceRecordRepository
		err         error
	)

	switch config.DbType {
	case "badger":
		paymentRepo, err = badgerdb.NewPaymentRecordRepository(config.Datadir, config.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open payment record db: %s", err)
		}
		invoiceRepo, err = badgerdb.NewInvoiceRecordRepository(config.Datadir, config.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open invoice record db: %s", err)
		}
	default:
		return nil, fmt.Errorf("unsupported db type %s, allowed: %s", config.DbType, allowedTypes)
	}

	return &service{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
	}, nil
}

func (s *service) Payments() domain.PaymentRecordRepository {
	return s.paymentRepo
}

func (s *service) Invoices() domain.InvoiceRecordRepository {
	return s.invoiceRepo
}

func (s *service) Close() {
	s.paymentRepo.Close()
	s.invoiceRepo.Close()
}
