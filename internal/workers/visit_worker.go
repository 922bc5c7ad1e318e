// Package workers drains the visit event channel and persists events to the
// visit store. Persistence errors are logged and never reach the redirect
// path.
package workers

import (
	"github.com/sirupsen/logrus"

	"qrlink/internal/models"
	"qrlink/internal/repository"
)

// StartVisitWorkers launches a pool of goroutines processing visit events
// from the shared channel. Workers exit when the channel is closed.
func StartVisitWorkers(workerCount int, events <-chan models.VisitEvent, visitRepo repository.VisitRepository) {
	logrus.Infof("Starting %d visit worker(s)...", workerCount)
	for i := 0; i < workerCount; i++ {
		go visitWorker(events, visitRepo)
	}
}

func visitWorker(events <-chan models.VisitEvent, visitRepo repository.VisitRepository) {
	for event := range events {
		visit := &models.Visit{
			CodeID:    event.CodeID,
			Timestamp: event.Timestamp,
			IPAddress: event.IPAddress,
			Location:  event.Location,
			Device:    event.Device,
			Platform:  event.Platform,
			TargetURL: event.TargetURL,
		}

		if err := visitRepo.Create(visit); err != nil {
			logrus.Errorf("Failed to save visit for code ID %d (IP: %s): %v",
				event.CodeID, event.IPAddress, err)
			continue
		}
		logrus.Debugf("Visit recorded for code ID %d", event.CodeID)
	}
}
