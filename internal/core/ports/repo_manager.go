package ports

import "github.com/lnsettle/eclair-adapter/internal/core/domain"

type RepoManager interface {
	Payments() domain.PaymentRecordRepository
	Invoices() domain.InvoiceRecordRepository
	Close()
}
