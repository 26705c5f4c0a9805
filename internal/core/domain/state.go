package domain

// Raw status vocabulary reported by the eclair node.
const (
	InvoiceStatusPending  = "pending"
	InvoiceStatusReceived = "received"
	InvoiceStatusExpired  = "expired"

	PaymentStatusPending = "pending"
	PaymentStatusSent    = "sent"
	PaymentStatusFailed  = "failed"
)

type InvoiceState string

const (
	InvoicePending   InvoiceState = "PENDING"
	InvoiceSettled   InvoiceState = "SETTLED"
	InvoiceCancelled InvoiceState = "CANCELLED"
)

type PaymentState string

const (
	PaymentPending   PaymentState = "PENDING"
	PaymentCompleted PaymentState = "COMPLETED"
	PaymentFailed    PaymentState = "FAILED"
)

// ParseInvoiceState maps a node-reported invoice status to its abstract
// state. Values outside the known vocabulary are never coerced.
func ParseInvoiceState(raw string) (InvoiceState, error) {
	switch raw {
	case InvoiceStatusPending:
		return InvoicePending, nil
	case InvoiceStatusReceived:
		return InvoiceSettled, nil
	case InvoiceStatusExpired:
		return InvoiceCancelled, nil
	default:
		return "", &UnknownStateError{Kind: "invoice", Raw: raw}
	}
}

// ParsePaymentState maps a node-reported payment status to its abstract
// state.
func ParsePaymentState(raw string) (PaymentState, error) {
	switch raw {
	case PaymentStatusPending:
		return PaymentPending, nil
	case PaymentStatusSent:
		return PaymentCompleted, nil
	case PaymentStatusFailed:
		return PaymentFailed, nil
	default:
		return "", &UnknownStateError{Kind: "payment", Raw: raw}
	}
}
