package services

import (
	"sync"

	"github.com/sirupsen/logrus"

	"qrlink/internal/models"
	"qrlink/internal/repository"
)

// VisitRecorder accepts a visit event for persistence. The redirect path
// treats recording as best-effort: a recorder must never block the caller
// for longer than a channel send.
type VisitRecorder interface {
	Record(event models.VisitEvent) error
}

// ChannelRecorder hands events to the worker pool through a buffered channel.
// The send is non-blocking: when the buffer is full the event is dropped and
// a warning logged, so a saturated telemetry pipeline cannot delay redirects.
// The recorder owns closing the channel: Record after Close drops the event
// instead of panicking, so a redirect racing shutdown still succeeds.
type ChannelRecorder struct {
	events chan<- models.VisitEvent
	mu     sync.RWMutex
	closed bool
}

// NewChannelRecorder wraps the visit event channel drained by the workers.
func NewChannelRecorder(events chan<- models.VisitEvent) *ChannelRecorder {
	return &ChannelRecorder{events: events}
}

// Record queues the event for asynchronous persistence.
func (r *ChannelRecorder) Record(event models.VisitEvent) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		logrus.Warnf("Visit recorder is closed, dropping event for code ID %d", event.CodeID)
		return nil
	}

	select {
	case r.events <- event:
		logrus.Debugf("Visit event queued for code ID %d", event.CodeID)
	default:
		logrus.Warnf("Visit event channel is full, dropping event for code ID %d", event.CodeID)
	}
	return nil
}

// Close closes the underlying channel so the workers drain and exit.
// Safe to call once shutdown has stopped accepting new requests; any
// stragglers are dropped rather than panicking. Idempotent.
func (r *ChannelRecorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	close(r.events)
}

// StoreRecorder persists events synchronously through the visit repository.
type StoreRecorder struct {
	visitRepo repository.VisitRepository
}

// NewStoreRecorder returns a recorder writing directly to the store.
func NewStoreRecorder(visitRepo repository.VisitRepository) *StoreRecorder {
	return &StoreRecorder{visitRepo: visitRepo}
}

// Record writes the visit immediately.
func (r *StoreRecorder) Record(event models.VisitEvent) error {
	return r.visitRepo.Create(&models.Visit{
		CodeID:    event.CodeID,
		Timestamp: event.Timestamp,
		IPAddress: event.IPAddress,
		Location:  event.Location,
		Device:    event.Device,
		Platform:  event.Platform,
		TargetURL: event.TargetURL,
	})
}
