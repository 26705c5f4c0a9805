package application

import (
	"context"

	"github.com/lnsettle/eclair-adapter/internal/core/domain"
	"github.com/lnsettle/eclair-adapter/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// Recorder subscribes to the internal event bus and persists the
// settlement trace of every payment the node reports, so lookups keep
// working after the node prunes its own history.
type Recorder struct {
	bus   ports.EventBus
	repos ports.RepoManager
}

func NewRecorder(bus ports.EventBus, repos ports.RepoManager) *Recorder {
	return &Recorder{bus: bus, repos: repos}
}

// Start blocks until the context is cancelled.
func (r *Recorder) Start(ctx context.Context) {
	sub := r.bus.Subscribe()
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			r.record(ctx, event)
		}
	}
}

func (r *Recorder) record(ctx context.Context, event domain.Event) {
	switch e := event.(type) {
	case domain.PaymentReceived:
		err := r.repos.Invoices().Upsert(ctx, domain.InvoiceRecord{
			PreimageHash:   e.PreimageHash,
			AmountPaidMsat: e.AmountPaidMsat,
			State:          domain.InvoiceSettled,
			UpdatedAt:      e.Timestamp,
		})
		if err != nil {
			log.WithError(err).WithField("hash", e.PreimageHash).Error("failed to record received payment")
		}
	case domain.PaymentSent:
		err := r.repos.Payments().Upsert(ctx, domain.PaymentRecord{
			PreimageHash:   e.PreimageHash,
			Preimage:       e.Preimage,
			AmountMsat:     e.AmountMsat,
			AmountPaidMsat: e.AmountPaidMsat,
			State:          domain.PaymentCompleted,
			UpdatedAt:      e.Timestamp,
		})
		if err != nil {
			log.WithError(err).WithField("hash", e.PreimageHash).Error("failed to record sent payment")
		}
	}
}
