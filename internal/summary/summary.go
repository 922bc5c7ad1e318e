// Package summary turns computed analytics aggregates into a short narrative.
// The summarizer is an external collaborator: its failure is absorbed by the
// aggregation boundary, which substitutes the Unavailable marker instead of
// failing the whole analytics request.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	customerrors "qrlink/internal/errors"
)

// Unavailable is the explicit marker returned in place of a narrative when
// the summarizer fails or times out.
const Unavailable = "Summary unavailable."

// Aggregates carries the computed statistics handed to the summarizer.
type Aggregates struct {
	TotalScans     int            `json:"total_scans"`
	UniqueVisitors int            `json:"unique_visitors"`
	Trends         map[string]int `json:"trends"`
	Platforms      map[string]int `json:"platforms"`
	Devices        map[string]int `json:"devices"`
	Locations      map[string]int `json:"locations"`
	Targets        map[string]int `json:"targets"`
}

// Summarizer produces a narrative from aggregates.
type Summarizer interface {
	Summarize(ctx context.Context, agg Aggregates) (string, error)
}

// ForEndpoint selects the summarizer for a configured endpoint: the HTTP
// client when one is set, the local text fallback otherwise. Server and CLI
// both go through this so their reports agree.
func ForEndpoint(endpoint, apiKey string, timeout time.Duration) Summarizer {
	if endpoint == "" {
		return TextSummarizer{}
	}
	return NewHTTPSummarizer(endpoint, apiKey, timeout)
}

// Describe renders the aggregates as one deterministic block of prose-ready
// text. Map entries are sorted so the output is stable.
func Describe(agg Aggregates) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total scans: %d. Unique visitors: %d.", agg.TotalScans, agg.UniqueVisitors)
	writeCounts(&b, " Trends: ", agg.Trends, "scans")
	writeCounts(&b, " Platforms: ", agg.Platforms, "")
	writeCounts(&b, " Devices: ", agg.Devices, "")
	writeCounts(&b, " Locations: ", agg.Locations, "")
	writeCounts(&b, " Targets: ", agg.Targets, "visits")
	return b.String()
}

func writeCounts(b *strings.Builder, label string, counts map[string]int, unit string) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString(label)
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		if unit != "" {
			fmt.Fprintf(b, "%s: %d %s", k, counts[k], unit)
		} else {
			fmt.Fprintf(b, "%s: %d", k, counts[k])
		}
	}
	b.WriteString(".")
}

// HTTPSummarizer calls a remote summarization endpoint with the described
// aggregates and returns its narrative.
type HTTPSummarizer struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPSummarizer builds a summarizer for the given endpoint. The timeout
// bounds the whole exchange; exceeding it counts as summarizer failure.
func NewHTTPSummarizer(endpoint, apiKey string, timeout time.Duration) *HTTPSummarizer {
	return &HTTPSummarizer{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type summarizeRequest struct {
	Input string `json:"input"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// Summarize posts the described aggregates and decodes the narrative.
func (s *HTTPSummarizer) Summarize(ctx context.Context, agg Aggregates) (string, error) {
	body, err := json.Marshal(summarizeRequest{Input: Describe(agg)})
	if err != nil {
		return "", customerrors.External("summarizer", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", customerrors.External("summarizer", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", customerrors.External("summarizer", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", customerrors.External("summarizer", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var out summarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", customerrors.External("summarizer", err)
	}
	if out.Summary == "" {
		return "", customerrors.External("summarizer", fmt.Errorf("empty summary in response"))
	}
	return out.Summary, nil
}

// TextSummarizer is the local fallback used when no remote endpoint is
// configured. It returns the described aggregates verbatim.
type TextSummarizer struct{}

// Summarize renders the aggregates locally. It never fails.
func (TextSummarizer) Summarize(_ context.Context, agg Aggregates) (string, error) {
	return Describe(agg), nil
}
