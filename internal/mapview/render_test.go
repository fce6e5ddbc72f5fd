package mapview

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault-atlas/internal/mapdoc"
)

// recorder logs every renderer call as a compact string.
type recorder struct {
	calls []string
}

func (r *recorder) Rebuild(cfg *mapdoc.MapConfig) {
	r.calls = append(r.calls, fmt.Sprintf("rebuild %dx%d", cfg.Width, cfg.Height))
}
func (r *recorder) UpsertLayer(l mapdoc.MapLayer) {
	r.calls = append(r.calls, "layer+"+l.ID)
}
func (r *recorder) RemoveLayer(id string) {
	r.calls = append(r.calls, "layer-"+id)
}
func (r *recorder) UpsertPin(p mapdoc.MapPin, style PinStyle) {
	r.calls = append(r.calls, fmt.Sprintf("pin+%s/%d", p.ID, style))
}
func (r *recorder) RemovePin(id string) {
	r.calls = append(r.calls, "pin-"+id)
}
func (r *recorder) UpsertRegion(reg mapdoc.MapRegion, style RegionStyle) {
	r.calls = append(r.calls, fmt.Sprintf("region+%s/%d", reg.ID, style))
}
func (r *recorder) RemoveRegion(id string) {
	r.calls = append(r.calls, "region-"+id)
}

func (r *recorder) reset() { r.calls = nil }

func (r *recorder) has(call string) bool {
	for _, c := range r.calls {
		if c == call {
			return true
		}
	}
	return false
}

func renderConfig() *mapdoc.MapConfig {
	cfg := mapdoc.New("test", 1000, 500)
	cfg.Layers = []mapdoc.MapLayer{
		{ID: "base", Name: "Base", Image: "base.png", Opacity: 1, Visible: true},
		{ID: "pol", Name: "Political", Image: "pol.png", Opacity: 0.5, ZIndex: 1, Visible: true},
	}
	cfg.Pins = []mapdoc.MapPin{
		{ID: "p1", X: 100, Y: 100},
		{ID: "ghost", X: 200, Y: 200, Invisible: true},
	}
	cfg.Shapes = []mapdoc.MapRegion{square("r1", 0, 0, 100)}
	return cfg
}

func TestSyncInitialBuild(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec)

	s.Sync(renderConfig(), ViewState{})

	assert.Equal(t, "rebuild 1000x500", rec.calls[0], "first sync is structural")
	assert.True(t, rec.has("layer+base"))
	assert.True(t, rec.has("layer+pol"))
	assert.True(t, rec.has(fmt.Sprintf("pin+p1/%d", PinNormal)))
	assert.True(t, rec.has(fmt.Sprintf("pin+ghost/%d", PinConcealed)))
	assert.True(t, rec.has(fmt.Sprintf("region+r1/%d", RegionHidden)))
}

func TestSyncIdenticalConfigIsNoOp(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec)
	cfg := renderConfig()
	view := ViewState{}

	s.Sync(cfg, view)
	rec.reset()
	s.Sync(cfg, view)
	assert.Empty(t, rec.calls, "pointer-identical config and view must not touch the renderer")
}

func TestSyncIncrementalUpdatePreservesScene(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec)
	cfg := renderConfig()
	s.Sync(cfg, ViewState{})
	rec.reset()

	// A pin moved: same dimensions, same base image. Entities are upserted
	// by id, nothing is rebuilt.
	next := cfg.Clone()
	next.Pins[0].X = 150
	s.Sync(next, ViewState{})

	assert.False(t, rec.has("rebuild 1000x500"), "no structural rebuild for an entity edit")
	assert.True(t, rec.has(fmt.Sprintf("pin+p1/%d", PinNormal)))
}

func TestSyncRemovesDeletedEntities(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec)
	cfg := renderConfig()
	s.Sync(cfg, ViewState{})
	rec.reset()

	next := cfg.Clone()
	next.Pins = next.Pins[:1]
	next.Shapes = nil
	s.Sync(next, ViewState{})

	assert.True(t, rec.has("pin-ghost"))
	assert.True(t, rec.has("region-r1"))
}

func TestSyncRebuildTriggers(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *mapdoc.MapConfig)
	}{
		{"width", func(c *mapdoc.MapConfig) { c.Width = 2000 }},
		{"height", func(c *mapdoc.MapConfig) { c.Height = 1000 }},
		{"base image", func(c *mapdoc.MapConfig) { c.Layers[0].Image = "new.png" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			s := NewSynchronizer(rec)
			cfg := renderConfig()
			s.Sync(cfg, ViewState{})
			rec.reset()

			next := cfg.Clone()
			tt.mutate(next)
			s.Sync(next, ViewState{})

			require.NotEmpty(t, rec.calls)
			assert.Contains(t, rec.calls[0], "rebuild")
		})
	}
}

func TestSyncRegionStyles(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec)
	cfg := renderConfig()

	s.Sync(cfg, ViewState{})
	rec.reset()

	// Console opens: hidden regions become visible, ghost pins appear.
	s.Sync(cfg, ViewState{ConsoleOpen: true})
	assert.True(t, rec.has(fmt.Sprintf("region+r1/%d", RegionVisible)))
	assert.True(t, rec.has(fmt.Sprintf("pin+ghost/%d", PinGhost)))
	assert.False(t, rec.has(fmt.Sprintf("pin+p1/%d", PinNormal)), "unchanged styles are not re-upserted")
	rec.reset()

	// Hover highlight wins over the console style.
	s.Sync(cfg, ViewState{ConsoleOpen: true, Highlighted: map[string]bool{"r1": true, "ghost": true}})
	assert.True(t, rec.has(fmt.Sprintf("region+r1/%d", RegionHighlighted)))
	assert.True(t, rec.has(fmt.Sprintf("pin+ghost/%d", PinHighlighted)))
	rec.reset()

	// Back to browsing.
	s.Sync(cfg, ViewState{})
	assert.True(t, rec.has(fmt.Sprintf("region+r1/%d", RegionHidden)))
	assert.True(t, rec.has(fmt.Sprintf("pin+ghost/%d", PinConcealed)))
}

func TestSyncShowGhostPreference(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec)
	cfg := renderConfig()

	s.Sync(cfg, ViewState{})
	rec.reset()

	// The preference reveals ghost pins without opening the console.
	s.Sync(cfg, ViewState{ShowGhost: true})
	assert.True(t, rec.has(fmt.Sprintf("pin+ghost/%d", PinGhost)))
	assert.False(t, rec.has(fmt.Sprintf("region+r1/%d", RegionVisible)), "regions stay hidden")
	rec.reset()

	// Turning it off conceals them again.
	s.Sync(cfg, ViewState{})
	assert.True(t, rec.has(fmt.Sprintf("pin+ghost/%d", PinConcealed)))
}

func TestSyncSkipsHiddenLayerEntities(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec)
	cfg := renderConfig()
	cfg.Layers[1].Visible = false
	cfg.Pins = append(cfg.Pins, mapdoc.MapPin{ID: "onPol", X: 5, Y: 5, LayerID: "pol"})
	cfg.Pins = append(cfg.Pins, mapdoc.MapPin{ID: "dangling", X: 6, Y: 6, LayerID: "gone"})

	s.Sync(cfg, ViewState{})

	assert.False(t, rec.has(fmt.Sprintf("pin+onPol/%d", PinNormal)))
	assert.False(t, rec.has(fmt.Sprintf("pin+dangling/%d", PinNormal)))

	// The layer becomes visible again: its pin materializes without a
	// rebuild.
	rec.reset()
	next := cfg.Clone()
	next.Layers[1].Visible = true
	s.Sync(next, ViewState{})
	assert.False(t, rec.has("rebuild 1000x500"))
	assert.True(t, rec.has(fmt.Sprintf("pin+onPol/%d", PinNormal)))
	assert.False(t, rec.has(fmt.Sprintf("pin+dangling/%d", PinNormal)), "dangling stays hidden")
}
