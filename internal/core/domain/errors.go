package domain

import (
	"fmt"
	"time"
)

// ValidationError rejects a request before any call reaches the node.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// ServiceUnavailableError wraps a transport failure or non-2xx response
// from the node's RPC interface.
type ServiceUnavailableError struct {
	Endpoint string
	Message  string
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("eclair %s unavailable: %s", e.Endpoint, e.Message)
}

// UnknownStateError signals a node status string outside the known
// vocabulary. It indicates an upstream contract change, not a transient
// condition.
type UnknownStateError struct {
	Kind string
	Raw  string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("unknown %s state %q", e.Kind, e.Raw)
}

// RouteNotFoundError means fee estimation found no viable path to the
// destination.
type RouteNotFoundError struct {
	Hops int
}

func (e *RouteNotFoundError) Error() string {
	return "no route found"
}

// PaymentFailedError carries the node-reported terminal failure for a
// submitted payment.
type PaymentFailedError struct {
	Message string
}

func (e *PaymentFailedError) Error() string {
	return fmt.Sprintf("payment failed: %s", e.Message)
}

// PollTimeoutError means a submitted payment did not reach a terminal
// state within the configured deadline. The payment may still settle on
// the node side; callers must treat it as unresolved, not failed.
type PollTimeoutError struct {
	PaymentID string
	Timeout   time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("payment %s still pending after %s", e.PaymentID, e.Timeout)
}
