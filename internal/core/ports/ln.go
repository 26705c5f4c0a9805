package ports

import (
	"context"

	"github.com/lnsettle/eclair-adapter/internal/core/domain"
)

// LightningService is the uniform payment-service contract the platform
// consumes. Implementations reconcile the node's eventually-consistent
// model into the terminal states of domain.Invoice and domain.Payment.
type LightningService interface {
	// Request issues a new invoice for the given amount.
	Request(
		ctx context.Context,
		amountMsat uint64, description, preimage string, expirySeconds int64,
	) (*domain.Invoice, error)
	// Send submits the payment and blocks until it reaches a terminal
	// state or the polling deadline expires.
	Send(ctx context.Context, payment domain.Payment) (*domain.Payment, error)
	// Decode parses a serialized payment request without touching it.
	Decode(ctx context.Context, request string) (*domain.Invoice, error)
	// EstimateFee probes a route and derives a fee bound in msat.
	EstimateFee(ctx context.Context, payment domain.Payment) (uint64, error)
	// GetInvoice returns the current state of a received invoice, or
	// (nil, nil) if the node knows nothing about the hash.
	GetInvoice(ctx context.Context, preimageHash string) (*domain.Invoice, error)
	// GetPayment returns the current state of a sent payment, or
	// (nil, nil) if no parts exist for the hash.
	GetPayment(ctx context.Context, preimageHash string) (*domain.Payment, error)
	GetInfo(ctx context.Context) (*domain.NodeInfo, error)
	CanRequest(amountMsat uint64) bool
	CanSend(amountMsat uint64) bool
}
