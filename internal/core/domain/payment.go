package domain

import (
	"context"
	"time"
)

// Payment is an attempt to pay an invoice, possibly split into parts
// routed independently by the node. Preimage, fees and state are set
// only once a terminal outcome is known.
type Payment struct {
	PreimageHash   string
	Preimage       string
	Request        string
	Destination    string
	AmountMsat     uint64
	AmountPaidMsat uint64
	FeeSettledMsat uint64
	// FeeLimitPct bounds routing fees as a percentage of the amount.
	FeeLimitPct float64
	// Label is the node-assigned id of the representative part.
	Label     string
	State     PaymentState
	CreatedAt time.Time
}

// PaymentRecord is the persisted trace of an outgoing payment observed
// by the adapter, keyed by preimage hash.
type PaymentRecord struct {
	PreimageHash   string
	Preimage       string
	AmountMsat     uint64
	AmountPaidMsat uint64
	FeeSettledMsat uint64
	State          PaymentState
	UpdatedAt      time.Time
}

type PaymentRecordRepository interface {
	Upsert(ctx context.Context, record PaymentRecord) error
	Get(ctx context.Context, preimageHash string) (*PaymentRecord, error)
	GetAll(ctx context.Context) ([]PaymentRecord, error)
	Close()
}

// NodeInfo is the subset of getinfo the adapter cares about.
type NodeInfo struct {
	NodeID      string
	Alias       string
	BlockHeight int64
	Version     string
}
