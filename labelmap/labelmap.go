// Package labelmap serves generic labeled maps: a data.json of colored
// points and labeled paths, enhanced so that path vertices inherit the
// labels of the points they pass through.
package labelmap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/transit-widgets/config"
)

// PathView is a path with its label placement.
type PathView struct {
	Path
	Anchor *Point  `json:"anchor,omitempty"`
	Scale  float64 `json:"scale"`
}

// View is the rendered label map.
type View struct {
	Name      string     `json:"name"`
	Center    *Point     `json:"center,omitempty"`
	Points    []Point    `json:"points"`
	Paths     []PathView `json:"paths"`
	Enhanced  int        `json:"enhanced"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Revision  uint64     `json:"revision"`
}

// LabelMap is one configured label map.
type LabelMap struct {
	name  string
	path  string
	watch bool
	log   zerolog.Logger
	now   func() time.Time

	mu   sync.RWMutex
	view View
}

func New(cfg config.LabelMapConfig, log zerolog.Logger) *LabelMap {
	return &LabelMap{
		name:  cfg.Name,
		path:  cfg.Path,
		watch: cfg.Watch,
		log:   log.With().Str("labelMap", cfg.Name).Logger(),
		now:   time.Now,
		view:  View{Name: cfg.Name},
	}
}

func (m *LabelMap) Name() string { return m.name }

// Watching reports whether the file should be watched for changes.
func (m *LabelMap) Watching() bool { return m.watch }

// Refresh reloads the file. A file that fails to load leaves the previous
// view in place.
func (m *LabelMap) Refresh(context.Context) error {
	d, err := Load(m.path)
	m.apply(d, err)
	if err != nil {
		return fmt.Errorf("label map %s: %w", m.name, err)
	}
	return nil
}

func (m *LabelMap) apply(d *Data, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.view.Error = err.Error()
		m.log.Error().Err(err).Str("path", m.path).Msg("load failed")
		return
	}
	m.view = render(m.name, d)
	m.view.UpdatedAt = m.now()
	m.view.Revision++
	m.log.Info().Int("points", len(d.Points)).Int("paths", len(d.Paths)).Int("enhanced", m.view.Enhanced).Msg("loaded")
}

func render(name string, d *Data) View {
	v := View{Name: name, Enhanced: Enhance(d), Points: d.Points}
	if c, ok := Center(d); ok {
		v.Center = &c
	}
	v.Paths = make([]PathView, 0, len(d.Paths))
	for _, p := range d.Paths {
		pv := PathView{Path: p, Scale: Scale(p.LabelSize())}
		if a, ok := LabelAnchor(p); ok {
			pv.Anchor = &a
		}
		v.Paths = append(v.Paths, pv)
	}
	return v
}

// Snapshot returns the current view.
func (m *LabelMap) Snapshot() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v := m.view
	v.Points = append([]Point(nil), m.view.Points...)
	v.Paths = append([]PathView(nil), m.view.Paths...)
	return v
}

func (m *LabelMap) View() any { return m.Snapshot() }

// Run watches the file until ctx is done, re-rendering on every change.
func (m *LabelMap) Run(ctx context.Context) error {
	return Watch(ctx, m.path, m.log, m.apply)
}
