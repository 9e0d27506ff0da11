package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/raine/market-dashboard/internal/chart"
	"github.com/raine/market-dashboard/internal/export"
	"github.com/raine/market-dashboard/internal/history"
	"github.com/raine/market-dashboard/internal/listing"
	"github.com/raine/market-dashboard/internal/metrics"
	"github.com/rs/zerolog/log"
)

var (
	ErrSearchInProgress = errors.New("a search is already in progress")
	ErrNoResults        = errors.New("no results found")
	ErrNoDashboard      = errors.New("no search has been run yet")
	ErrEntryNotFound    = errors.New("history entry not found")
)

// SearchError wraps a failure of the search collaborator.
type SearchError struct {
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed: %v", e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// Searcher fetches the listings matching a query.
type Searcher interface {
	Search(ctx context.Context, q listing.Query) ([]listing.Record, error)
}

// History keeps the recent searches.
type History interface {
	Record(q listing.Query) (history.Entry, error)
	List() []history.Entry
	Find(id string) (history.Entry, bool)
	Clear() error
}

// Charts owns the rendered chart instances.
type Charts interface {
	Render(id string, d chart.Descriptor) error
	Lookup(id string) (chart.Instance, bool)
}

var (
	_ History = (*history.Store)(nil)
	_ Charts  = (*chart.Manager)(nil)
)

// Service runs searches for the single dashboard session. Only one search
// runs at a time; the last successful dashboard stays current until the next
// successful one replaces it.
type Service struct {
	searcher Searcher
	history  History
	charts   Charts

	searching atomic.Bool

	mu      sync.RWMutex
	current *Dashboard
}

func NewService(searcher Searcher, history History, charts Charts) *Service {
	return &Service{
		searcher: searcher,
		history:  history,
		charts:   charts,
	}
}

// Search validates q, runs it and makes the result the current dashboard.
// An empty result set leaves the current dashboard and the history as they
// were and returns ErrNoResults.
func (s *Service) Search(ctx context.Context, q listing.Query) (*Dashboard, error) {
	start := time.Now()

	q = q.Normalize()
	if err := q.Validate(); err != nil {
		metrics.RecordSearch(metrics.OutcomeInvalid, 0, 0)
		return nil, err
	}

	if !s.searching.CompareAndSwap(false, true) {
		metrics.RecordSearch(metrics.OutcomeBusy, 0, 0)
		return nil, ErrSearchInProgress
	}
	defer s.searching.Store(false)

	records, err := s.searcher.Search(ctx, q)
	if err != nil {
		metrics.RecordSearch(metrics.OutcomeFailed, 0, time.Since(start))
		log.Error().Err(err).Str("query", q.Text).Msg("search failed")
		return nil, &SearchError{Err: err}
	}
	if len(records) == 0 {
		metrics.RecordSearch(metrics.OutcomeNoResults, 0, time.Since(start))
		log.Info().Str("query", q.Text).Msg("search returned no results")
		return nil, ErrNoResults
	}

	d := Build(q, records)
	s.renderCharts(d)

	s.mu.Lock()
	s.current = d
	s.mu.Unlock()

	if _, err := s.history.Record(q); err != nil {
		log.Warn().Err(err).Str("query", q.Text).Msg("failed to save search history")
	}

	metrics.RecordSearch(metrics.OutcomeOK, len(records), time.Since(start))
	log.Info().
		Str("query", q.Text).
		Int("results", len(records)).
		Dur("took", time.Since(start)).
		Msg("search completed")

	return d, nil
}

// renderCharts redraws every chart of d. A chart that fails to render is left
// without an instance; the search itself still succeeds.
func (s *Service) renderCharts(d *Dashboard) {
	for _, desc := range d.Charts {
		err := s.charts.Render(desc.ID, desc)
		switch {
		case err == nil:
		case errors.Is(err, chart.ErrNoData):
			log.Debug().Str("chart", desc.ID).Msg("no data for chart")
		default:
			log.Warn().Err(err).Str("chart", desc.ID).Msg("chart render failed")
		}
	}
}

// Rerun searches again with the query stored in a history entry.
func (s *Service) Rerun(ctx context.Context, entryID string) (*Dashboard, error) {
	entry, ok := s.history.Find(entryID)
	if !ok {
		return nil, ErrEntryNotFound
	}
	return s.Search(ctx, entry.Query)
}

// Current returns the last successful dashboard.
func (s *Service) Current() (*Dashboard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// Chart returns the live instance of a dashboard chart.
func (s *Service) Chart(id string) (chart.Instance, bool) {
	return s.charts.Lookup(id)
}

// ExportCSV renders the current results as CSV and returns it with its
// download filename.
func (s *Service) ExportCSV() (filename, body string, err error) {
	d, ok := s.Current()
	if !ok {
		return "", "", ErrNoDashboard
	}
	return export.Filename(d.Query.Text), export.ToCSV(d.Records), nil
}

// History returns the recent searches, most recent first.
func (s *Service) History() []history.Entry {
	return s.history.List()
}

// ClearHistory removes every history entry.
func (s *Service) ClearHistory() error {
	return s.history.Clear()
}
