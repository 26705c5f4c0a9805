package domain

import (
	"context"
	"time"
)

// Invoice is a request for payment identified by its payment hash.
// Amounts are millisatoshi, the node's native unit.
type Invoice struct {
	PreimageHash   string
	Preimage       string
	Request        string
	Destination    string
	AmountMsat     uint64
	AmountPaidMsat uint64
	Description    string
	ExpirySeconds  int64
	CltvExpiry     int64
	BlockHeight    int64
	State          InvoiceState
	CreatedAt      time.Time
}

// InvoiceRecord is the persisted trace of an invoice observed by the
// adapter, keyed by preimage hash.
type InvoiceRecord struct {
	PreimageHash   string
	AmountPaidMsat uint64
	State          InvoiceState
	UpdatedAt      time.Time
}

type InvoiceRecordRepository interface {
	Upsert(ctx context.Context, record InvoiceRecord) error
	Get(ctx context.Context, preimageHash string) (*InvoiceRecord, error)
	GetAll(ctx context.Context) ([]InvoiceRecord, error)
	Close()
}
