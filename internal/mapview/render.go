package mapview

import (
	"vault-atlas/internal/mapdoc"
)

// RegionStyle is the mutually exclusive visual state of a region primitive.
type RegionStyle int

const (
	// RegionHidden is the default browsing look: fully transparent, no
	// outline, still hit-testable.
	RegionHidden RegionStyle = iota
	// RegionVisible is the console-open look: light fill, thin outline.
	RegionVisible
	// RegionHighlighted is the hovered or console-selected look: opaque
	// fill, thick outline, brought to front.
	RegionHighlighted
)

// PinStyle is the visual state of a pin marker.
type PinStyle int

const (
	// PinNormal is a regular marker at full opacity.
	PinNormal PinStyle = iota
	// PinGhost is an invisible-flagged pin while the console is open:
	// translucent, so it can be located and edited.
	PinGhost
	// PinConcealed is an invisible-flagged pin in normal browsing:
	// near-zero opacity.
	PinConcealed
	// PinHighlighted is a hovered or console-selected marker: full
	// opacity, enlarged, raised stacking.
	PinHighlighted
)

// Renderer is the viewport's primitive surface. The synchronizer drives it
// with id-keyed upserts and removals; only Rebuild tears the scene down.
// Implementations must preserve pan and zoom across everything but Rebuild.
type Renderer interface {
	// Rebuild recreates the whole scene for a map whose reference
	// dimensions or base image changed.
	Rebuild(cfg *mapdoc.MapConfig)
	UpsertLayer(layer mapdoc.MapLayer)
	RemoveLayer(id string)
	UpsertPin(pin mapdoc.MapPin, style PinStyle)
	RemovePin(id string)
	UpsertRegion(region mapdoc.MapRegion, style RegionStyle)
	RemoveRegion(id string)
}

// ViewState is the interaction state that feeds styling, independent of the
// configuration itself.
type ViewState struct {
	ConsoleOpen bool
	// ShowGhost renders invisible-flagged pins translucently even while
	// the console is closed (the "show ghost pins" preference).
	ShowGhost bool
	// Highlighted holds the ids of hovered or console-selected
	// annotations, pins and regions alike.
	Highlighted map[string]bool
}

// Highlight reports whether the id is in the highlighted set.
func (v ViewState) Highlight(id string) bool {
	return v.Highlighted[id]
}

// Synchronizer reconciles a Renderer against the current configuration.
// Configs are replaced wholesale on every mutation, never edited in place,
// so a pointer-identical config with unchanged view state is a guaranteed
// no-op.
type Synchronizer struct {
	r Renderer

	last     *mapdoc.MapConfig
	lastView ViewState

	lastWidth  int
	lastHeight int
	lastBase   string

	layers  map[string]bool
	pins    map[string]PinStyle
	regions map[string]RegionStyle
}

// NewSynchronizer creates a synchronizer driving the given renderer.
func NewSynchronizer(r Renderer) *Synchronizer {
	return &Synchronizer{
		r:       r,
		layers:  make(map[string]bool),
		pins:    make(map[string]PinStyle),
		regions: make(map[string]RegionStyle),
	}
}

// Sync brings the renderer in step with cfg and view. Structural rebuild
// happens only when the reference dimensions or the base layer's image
// changed; everything else is incremental, keyed by entity id.
func (s *Synchronizer) Sync(cfg *mapdoc.MapConfig, view ViewState) {
	if cfg == nil {
		return
	}
	if cfg == s.last && viewEqual(view, s.lastView) {
		return
	}

	base := ""
	if b := cfg.BaseLayer(); b != nil {
		base = b.Image
	}
	if s.last == nil || cfg.Width != s.lastWidth || cfg.Height != s.lastHeight || base != s.lastBase {
		s.r.Rebuild(cfg)
		s.layers = make(map[string]bool)
		s.pins = make(map[string]PinStyle)
		s.regions = make(map[string]RegionStyle)
	}
	s.lastWidth = cfg.Width
	s.lastHeight = cfg.Height
	s.lastBase = base

	configChanged := cfg != s.last
	s.syncLayers(cfg, configChanged)
	s.syncPins(cfg, view, configChanged)
	s.syncRegions(cfg, view, configChanged)

	s.last = cfg
	s.lastView = cloneView(view)
}

func (s *Synchronizer) syncLayers(cfg *mapdoc.MapConfig, configChanged bool) {
	seen := make(map[string]bool, len(cfg.Layers))
	for _, layer := range cfg.Layers {
		seen[layer.ID] = true
		if configChanged || !s.layers[layer.ID] {
			s.r.UpsertLayer(layer)
			s.layers[layer.ID] = true
		}
	}
	for id := range s.layers {
		if !seen[id] {
			s.r.RemoveLayer(id)
			delete(s.layers, id)
		}
	}
}

func (s *Synchronizer) syncPins(cfg *mapdoc.MapConfig, view ViewState, configChanged bool) {
	seen := make(map[string]bool, len(cfg.Pins))
	for _, pin := range cfg.Pins {
		if !mapdoc.IsLayerVisible(pin.LayerID, cfg.Layers) {
			continue
		}
		seen[pin.ID] = true
		style := pinStyle(pin, view)
		prev, existed := s.pins[pin.ID]
		if configChanged || !existed || prev != style {
			s.r.UpsertPin(pin, style)
			s.pins[pin.ID] = style
		}
	}
	for id := range s.pins {
		if !seen[id] {
			s.r.RemovePin(id)
			delete(s.pins, id)
		}
	}
}

func (s *Synchronizer) syncRegions(cfg *mapdoc.MapConfig, view ViewState, configChanged bool) {
	seen := make(map[string]bool, len(cfg.Shapes))
	for _, region := range cfg.Shapes {
		if !mapdoc.IsLayerVisible(region.LayerID, cfg.Layers) {
			continue
		}
		seen[region.ID] = true
		style := regionStyle(region.ID, view)
		prev, existed := s.regions[region.ID]
		if configChanged || !existed || prev != style {
			s.r.UpsertRegion(region, style)
			s.regions[region.ID] = style
		}
	}
	for id := range s.regions {
		if !seen[id] {
			s.r.RemoveRegion(id)
			delete(s.regions, id)
		}
	}
}

func pinStyle(pin mapdoc.MapPin, view ViewState) PinStyle {
	if view.Highlight(pin.ID) {
		return PinHighlighted
	}
	if pin.Invisible {
		if view.ConsoleOpen || view.ShowGhost {
			return PinGhost
		}
		return PinConcealed
	}
	return PinNormal
}

func regionStyle(id string, view ViewState) RegionStyle {
	if view.Highlight(id) {
		return RegionHighlighted
	}
	if view.ConsoleOpen {
		return RegionVisible
	}
	return RegionHidden
}

func viewEqual(a, b ViewState) bool {
	if a.ConsoleOpen != b.ConsoleOpen || a.ShowGhost != b.ShowGhost || len(a.Highlighted) != len(b.Highlighted) {
		return false
	}
	for id := range a.Highlighted {
		if !b.Highlighted[id] {
			return false
		}
	}
	return true
}

func cloneView(v ViewState) ViewState {
	out := ViewState{ConsoleOpen: v.ConsoleOpen, ShowGhost: v.ShowGhost}
	if v.Highlighted != nil {
		out.Highlighted = make(map[string]bool, len(v.Highlighted))
		for id, on := range v.Highlighted {
			out.Highlighted[id] = on
		}
	}
	return out
}
