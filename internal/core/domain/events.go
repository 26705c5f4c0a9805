package domain

import "time"

type EventKind string

const (
	EventKindPaymentReceived EventKind = "payment_received"
	EventKindPaymentSent     EventKind = "payment_sent"
)

// Event is a node-originated fact republished on the internal bus.
// The set of implementations is closed.
type Event interface {
	Kind() EventKind
}

// PaymentReceived reports an incoming payment settling an invoice.
// AmountPaidMsat is the sum across all received parts.
type PaymentReceived struct {
	PreimageHash   string
	AmountPaidMsat uint64
	Timestamp      time.Time
}

func (PaymentReceived) Kind() EventKind { return EventKindPaymentReceived }

// PaymentSent reports an outgoing payment reaching the recipient.
type PaymentSent struct {
	Preimage       string
	PreimageHash   string
	AmountMsat     uint64
	AmountPaidMsat uint64
	Timestamp      time.Time
}

func (PaymentSent) Kind() EventKind { return EventKindPaymentSent }
