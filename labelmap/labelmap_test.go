package labelmap

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-widgets/config"
)

const sample = `{
  "points": [
    {"lat": 49.2827, "lng": -123.1207, "label": "Waterfront", "color": "#0a0", "icon": "train.svg"},
    {"lat": 49.2633, "lng": -123.1386, "label": ""},
    {"lat": 49.2500, "lng": -123.1000, "label": "Broadway"}
  ],
  "paths": [
    {"label": "Canada Line", "color": "blue", "size": "21", "points": [
      {"lat": 49.28270000001, "lng": -123.1207},
      {"lat": 49.2633, "lng": -123.1386},
      {"lat": 49.2500, "lng": -123.1000, "label": "kept"},
      {"lat": 49.2400, "lng": -123.1100}
    ]},
    {"color": "red", "points": [{"lat": 49.2500, "lng": -123.1000}]}
  ]
}`

func TestDecodeSize(t *testing.T) {
	d, err := Decode([]byte(`{"points":[],"paths":[{"size":18,"points":[]},{"size":"12px","points":[]},{"points":[]}]}`))
	require.NoError(t, err)
	assert.Equal(t, 18.0, d.Paths[0].LabelSize())
	assert.Equal(t, 12.0, d.Paths[1].LabelSize())
	assert.Equal(t, DefaultLabelSize, d.Paths[2].LabelSize())

	_, err = Decode([]byte(`{"paths":[{"size":"big"}]}`))
	assert.Error(t, err)
}

func TestEnhance(t *testing.T) {
	d, err := Decode([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 2, Enhance(d))
	pts := d.Paths[0].Points
	assert.Equal(t, "Waterfront", pts[0].Label, "coordinates match at six decimals")
	assert.Empty(t, pts[1].Label, "empty point labels are not copied")
	assert.Equal(t, "kept", pts[2].Label, "existing labels are kept")
	assert.Empty(t, pts[3].Label)
	assert.Equal(t, "Broadway", d.Paths[1].Points[0].Label)

	assert.Zero(t, Enhance(d), "enhancing twice adds nothing")
}

func TestCenterAndAnchor(t *testing.T) {
	_, ok := Center(&Data{})
	assert.False(t, ok)

	c, ok := Center(&Data{
		Points: []Point{{Lat: 1, Lng: 10}},
		Paths:  []Path{{Points: []Point{{Lat: 3, Lng: 20}, {Lat: 5, Lng: 30}}}},
	})
	require.True(t, ok)
	assert.InDelta(t, 3, c.Lat, 1e-12)
	assert.InDelta(t, 20, c.Lng, 1e-12)

	odd := Path{Label: "x", Points: []Point{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}, {Lat: 3, Lng: 3}}}
	a, ok := LabelAnchor(odd)
	require.True(t, ok)
	assert.Equal(t, Point{Lat: 2, Lng: 2}, a)

	even := Path{Label: "x", Points: []Point{{Lat: 0, Lng: 0}, {Lat: 2, Lng: 4}, {Lat: 4, Lng: 8}, {Lat: 9, Lng: 9}}}
	a, ok = LabelAnchor(even)
	require.True(t, ok)
	assert.Equal(t, Point{Lat: 3, Lng: 6}, a)

	_, ok = LabelAnchor(Path{Points: odd.Points})
	assert.False(t, ok, "unlabeled paths have no anchor")

	assert.Equal(t, 1.5, Scale(21))
}

func writeSample(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	return path
}

func TestLabelMapRefresh(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir)
	m := New(config.LabelMapConfig{Name: "custom", Path: path}, zerolog.Nop())

	require.NoError(t, m.Refresh(context.Background()))
	v := m.Snapshot()
	assert.Equal(t, 2, v.Enhanced)
	require.NotNil(t, v.Center)
	require.Len(t, v.Paths, 2)
	require.NotNil(t, v.Paths[0].Anchor)
	assert.Equal(t, 1.5, v.Paths[0].Scale)
	assert.Nil(t, v.Paths[1].Anchor)
	assert.Equal(t, uint64(1), v.Revision)

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	require.Error(t, m.Refresh(context.Background()))
	v = m.Snapshot()
	assert.NotEmpty(t, v.Error)
	assert.Len(t, v.Paths, 2, "previous view is kept")
}

func TestSaveRoundTrip(t *testing.T) {
	d, err := Decode([]byte(sample))
	require.NoError(t, err)
	Enhance(d)
	out := filepath.Join(t.TempDir(), "data_enhanced.json")
	require.NoError(t, Save(out, d))

	back, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, "Waterfront", back.Paths[0].Points[0].Label)
	assert.Equal(t, 21.0, back.Paths[0].LabelSize())
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zerolog.Nop(), func(d *Data, err error) {
			if err == nil && len(d.Points) == 3 {
				calls.Add(1)
			}
		})
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(sample), 0o644)
		return calls.Load() > 0
	}, 5*time.Second, 300*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
