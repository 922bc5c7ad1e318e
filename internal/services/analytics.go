package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"qrlink/internal/access"
	customerrors "qrlink/internal/errors"
	"qrlink/internal/models"
	"qrlink/internal/repository"
	"qrlink/internal/summary"
)

// Report is the analytics result for one code. Every breakdown map sums to
// TotalScans; keys are exact recorded values.
type Report struct {
	TotalScans     int            `json:"total_scans"`
	UniqueVisitors int            `json:"unique_visitors"`
	Trends         map[string]int `json:"trends"`    // UTC YYYY-MM-DD -> visits that day
	Platforms      map[string]int `json:"platforms"` // platform category -> visits
	Devices        map[string]int `json:"devices"`   // device category -> visits
	Locations      map[string]int `json:"locations"` // location string -> visits
	Targets        map[string]int `json:"targets"`   // target URL at visit time -> visits
	Summary        string         `json:"summary"`
}

// AnalyticsService recomputes analytics from the full visit history on every
// request. No incrementally maintained counters exist anywhere, so concurrent
// visit recording cannot produce lost updates here.
type AnalyticsService struct {
	codeRepo       repository.CodeRepository
	visitRepo      repository.VisitRepository
	summarizer     summary.Summarizer
	summaryTimeout time.Duration
}

// NewAnalyticsService creates and returns a new AnalyticsService.
// summaryTimeout bounds the summarizer call; exceeding it counts as
// summarizer failure.
func NewAnalyticsService(codeRepo repository.CodeRepository, visitRepo repository.VisitRepository, summarizer summary.Summarizer, summaryTimeout time.Duration) *AnalyticsService {
	return &AnalyticsService{
		codeRepo:       codeRepo,
		visitRepo:      visitRepo,
		summarizer:     summarizer,
		summaryTimeout: summaryTimeout,
	}
}

// Aggregate computes the analytics report for a code on behalf of its owner.
// Fails NotFound for an unknown id or a code with zero visits, Forbidden for
// a non-owner. Summarizer failure degrades the report instead of failing it.
func (s *AnalyticsService) Aggregate(ctx context.Context, codeID uint, callerID string) (*Report, error) {
	code, err := s.codeRepo.FindByID(codeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrCodeNotFound
		}
		return nil, err
	}

	if err := access.RequireOwner(code, callerID); err != nil {
		return nil, err
	}

	visits, err := s.visitRepo.FindByCodeID(code.ID)
	if err != nil {
		return nil, err
	}
	if len(visits) == 0 {
		return nil, customerrors.ErrNoVisits
	}

	report := buildReport(visits)

	report.Summary = s.summarize(ctx, report)
	return report, nil
}

// buildReport folds the visit history into counts and breakdowns.
func buildReport(visits []models.Visit) *Report {
	report := &Report{
		TotalScans: len(visits),
		Trends:     make(map[string]int),
		Platforms:  make(map[string]int),
		Devices:    make(map[string]int),
		Locations:  make(map[string]int),
		Targets:    make(map[string]int),
	}

	uniqueIPs := make(map[string]struct{})
	for _, v := range visits {
		uniqueIPs[v.IPAddress] = struct{}{}

		// Calendar date in UTC, so a visit is bucketed the same way
		// regardless of the server's local zone.
		day := v.Timestamp.UTC().Format("2006-01-02")
		report.Trends[day]++

		report.Platforms[v.Platform]++
		report.Devices[v.Device]++
		report.Locations[v.Location]++
		report.Targets[v.TargetURL]++
	}
	report.UniqueVisitors = len(uniqueIPs)

	return report
}

// summarize requests the narrative under a bounded timeout. On any failure
// the explicit unavailable marker is returned; the numeric report stands.
func (s *AnalyticsService) summarize(ctx context.Context, report *Report) string {
	ctx, cancel := context.WithTimeout(ctx, s.summaryTimeout)
	defer cancel()

	text, err := s.summarizer.Summarize(ctx, summary.Aggregates{
		TotalScans:     report.TotalScans,
		UniqueVisitors: report.UniqueVisitors,
		Trends:         report.Trends,
		Platforms:      report.Platforms,
		Devices:        report.Devices,
		Locations:      report.Locations,
		Targets:        report.Targets,
	})
	if err != nil {
		logrus.Warnf("Summarizer failed, returning report without narrative: %v", err)
		return summary.Unavailable
	}
	return text
}
