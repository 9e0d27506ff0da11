// Package chart owns the rendered chart instances of the dashboard.
package chart

import (
	"fmt"
	"slices"
	"sync"

	"github.com/raine/market-dashboard/internal/analytics"
	"github.com/rs/zerolog/log"
)

// Kind is the chart type.
type Kind string

const (
	KindScatter   Kind = "scatter"
	KindHistogram Kind = "histogram"
	KindDonut     Kind = "donut"
)

// Axes describes axis titles. An empty Y title hides the y axis.
type Axes struct {
	X     string `json:"x"`
	Y     string `json:"y"`
	TimeX bool   `json:"timeX"`
}

// Descriptor is everything needed to draw one chart. Scatter charts use
// Series, histograms use Bins and donuts use Counts.
type Descriptor struct {
	ID     string                      `json:"id"`
	Kind   Kind                        `json:"kind"`
	Title  string                      `json:"title"`
	Axes   Axes                        `json:"axes"`
	Series analytics.CategorizedSeries `json:"series"`
	Bins   []analytics.Bin             `json:"bins,omitempty"`
	Counts analytics.ConditionCounts   `json:"counts"`
}

// Instance is a live rendered chart.
type Instance interface {
	// Destroy releases the instance's rendering resources. It is called
	// exactly once, before the instance is replaced.
	Destroy()
}

// Renderer draws a descriptor into a new instance.
type Renderer interface {
	Render(d Descriptor) (Instance, error)
}

// Manager maps chart IDs to their live instance. Rendering an ID that already
// has an instance destroys the old one first, so there is never more than one
// live instance per ID.
type Manager struct {
	renderer  Renderer
	mu        sync.Mutex
	instances map[string]Instance
}

// NewManager creates a manager drawing with r.
func NewManager(r Renderer) *Manager {
	return &Manager{
		renderer:  r,
		instances: make(map[string]Instance),
	}
}

// Render replaces the instance registered under id with a new one built from
// d. When rendering fails the ID is left without an instance.
func (m *Manager) Render(id string, d Descriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.instances[id]; ok {
		old.Destroy()
		delete(m.instances, id)
	}

	d.ID = id
	inst, err := m.renderer.Render(d)
	if err != nil {
		return fmt.Errorf("failed to render chart %s: %w", id, err)
	}
	m.instances[id] = inst

	log.Debug().Str("chart", id).Str("kind", string(d.Kind)).Msg("chart rendered")
	return nil
}

// Lookup returns the live instance for id.
func (m *Manager) Lookup(id string) (Instance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[id]
	return inst, ok
}

// IDs returns the IDs with a live instance, sorted.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.instances))
	for id := range m.instances {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close destroys every live instance.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, inst := range m.instances {
		inst.Destroy()
		delete(m.instances, id)
	}
}
