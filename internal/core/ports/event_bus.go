package ports

import "github.com/lnsettle/eclair-adapter/internal/core/domain"

// Subscription is a live feed of domain events. Close releases it; the
// events channel is closed afterwards.
type Subscription interface {
	Events() <-chan domain.Event
	Close()
}

// EventBus fans node-originated events out to in-process consumers.
type EventBus interface {
	Publish(event domain.Event)
	Subscribe() Subscription
}
