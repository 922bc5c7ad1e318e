// Package monitor periodically checks that the target URLs behind code
// records are still reachable and logs state transitions.
package monitor

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"qrlink/internal/repository"
)

// TargetMonitor polls every code's target URL on a fixed interval and keeps
// the last known state per code to detect transitions.
type TargetMonitor struct {
	codeRepo    repository.CodeRepository
	interval    time.Duration
	knownStates map[uint]bool
	mu          sync.Mutex
	httpClient  *http.Client
}

// NewTargetMonitor creates and returns a new TargetMonitor.
func NewTargetMonitor(codeRepo repository.CodeRepository, interval time.Duration) *TargetMonitor {
	return &TargetMonitor{
		codeRepo:    codeRepo,
		interval:    interval,
		knownStates: make(map[uint]bool),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Start runs the monitoring loop. It blocks until the process exits.
func (m *TargetMonitor) Start() {
	logrus.Infof("[MONITOR] Starting target URL monitor with interval of %v...", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.checkTargets()

	for range ticker.C {
		m.checkTargets()
	}
}

func (m *TargetMonitor) checkTargets() {
	codes, err := m.codeRepo.FindAll()
	if err != nil {
		logrus.Errorf("[MONITOR] Failed to retrieve codes for monitoring: %v", err)
		return
	}

	for _, code := range codes {
		currentState := m.isReachable(code.TargetURL)

		m.mu.Lock()
		previousState, seen := m.knownStates[code.ID]
		m.knownStates[code.ID] = currentState
		m.mu.Unlock()

		if !seen {
			logrus.Infof("[MONITOR] Initial state for code %d (%s): %s",
				code.ID, code.TargetURL, formatState(currentState))
			continue
		}

		if currentState != previousState {
			logrus.Warnf("[MONITOR] Code %d (%s) changed from %s to %s",
				code.ID, code.TargetURL, formatState(previousState), formatState(currentState))
		}
	}
}

// isReachable issues a HEAD request and treats 2xx/3xx as reachable.
func (m *TargetMonitor) isReachable(url string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		logrus.Debugf("[MONITOR] Failed to build request for %q: %v", url, err)
		return false
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		logrus.Debugf("[MONITOR] Failed to reach %q: %v", url, err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

func formatState(reachable bool) string {
	if reachable {
		return "REACHABLE"
	}
	return "UNREACHABLE"
}
