package monitor

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrlink/internal/models"
)

// stubCodeRepo serves a fixed code list; the monitor only calls FindAll.
type stubCodeRepo struct {
	codes []models.Code
	err   error
}

func (s *stubCodeRepo) FindAll() ([]models.Code, error) { return s.codes, s.err }

func (s *stubCodeRepo) Create(*models.Code) error                       { return nil }
func (s *stubCodeRepo) FindByToken(string) (*models.Code, error)        { return nil, nil }
func (s *stubCodeRepo) FindByID(uint) (*models.Code, error)             { return nil, nil }
func (s *stubCodeRepo) FindByOwner(string) ([]models.Code, error)       { return nil, nil }
func (s *stubCodeRepo) UpdateTarget(uint, string) (*models.Code, error) { return nil, nil }

func TestCheckTargetsTracksStateTransitions(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	repo := &stubCodeRepo{codes: []models.Code{
		{ID: 1, OwnerID: "alice", Kind: models.KindDynamic, TargetURL: srv.URL},
	}}
	m := NewTargetMonitor(repo, time.Minute)

	// First pass records the initial state.
	m.checkTargets()
	m.mu.Lock()
	reachable, seen := m.knownStates[1]
	m.mu.Unlock()
	require.True(t, seen)
	assert.True(t, reachable)

	// Target breaks: the next pass flips the known state.
	status.Store(http.StatusInternalServerError)
	m.checkTargets()
	m.mu.Lock()
	reachable = m.knownStates[1]
	m.mu.Unlock()
	assert.False(t, reachable)

	// And recovers.
	status.Store(http.StatusOK)
	m.checkTargets()
	m.mu.Lock()
	reachable = m.knownStates[1]
	m.mu.Unlock()
	assert.True(t, reachable)
}

func TestCheckTargetsUnreachableTarget(t *testing.T) {
	repo := &stubCodeRepo{codes: []models.Code{
		{ID: 7, OwnerID: "alice", Kind: models.KindStatic, TargetURL: "http://127.0.0.1:1/down"},
	}}
	m := NewTargetMonitor(repo, time.Minute)

	m.checkTargets()

	m.mu.Lock()
	reachable, seen := m.knownStates[7]
	m.mu.Unlock()
	require.True(t, seen)
	assert.False(t, reachable)
}

func TestCheckTargetsRepositoryError(t *testing.T) {
	m := NewTargetMonitor(&stubCodeRepo{err: errors.New("db down")}, time.Minute)

	m.checkTargets()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.knownStates)
}
