package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrlink/internal/models"
	"qrlink/internal/services"
)

func TestChannelRecorder(t *testing.T) {
	t.Run("queues events for the workers", func(t *testing.T) {
		events := make(chan models.VisitEvent, 2)
		recorder := services.NewChannelRecorder(events)

		require.NoError(t, recorder.Record(models.VisitEvent{CodeID: 1}))

		select {
		case got := <-events:
			assert.Equal(t, uint(1), got.CodeID)
		default:
			t.Fatal("expected a queued event")
		}
	})

	t.Run("drops events instead of blocking when the buffer is full", func(t *testing.T) {
		events := make(chan models.VisitEvent, 1)
		recorder := services.NewChannelRecorder(events)

		require.NoError(t, recorder.Record(models.VisitEvent{CodeID: 1}))

		done := make(chan struct{})
		go func() {
			defer close(done)
			assert.NoError(t, recorder.Record(models.VisitEvent{CodeID: 2}))
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Record blocked on a full channel")
		}
		assert.Len(t, events, 1)
	})

	t.Run("recording after close drops the event without panicking", func(t *testing.T) {
		events := make(chan models.VisitEvent, 1)
		recorder := services.NewChannelRecorder(events)

		recorder.Close()

		// A redirect arriving during the shutdown drain window must
		// still succeed; the recorder swallows the event.
		assert.NotPanics(t, func() {
			assert.NoError(t, recorder.Record(models.VisitEvent{CodeID: 1}))
		})

		_, open := <-events
		assert.False(t, open, "channel closed so the workers exit")
	})

	t.Run("close is idempotent", func(t *testing.T) {
		recorder := services.NewChannelRecorder(make(chan models.VisitEvent, 1))

		assert.NotPanics(t, func() {
			recorder.Close()
			recorder.Close()
		})
	})

	t.Run("concurrent records racing close never panic", func(t *testing.T) {
		events := make(chan models.VisitEvent, 4)
		recorder := services.NewChannelRecorder(events)

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NotPanics(t, func() {
					recorder.Record(models.VisitEvent{CodeID: 1})
				})
			}()
		}
		recorder.Close()
		wg.Wait()
	})
}
