package mapview

import (
	"vault-atlas/internal/mapdoc"
	"vault-atlas/pkg/geometry"
)

// PinHitRadius is the pick radius around a pin marker, in screen pixels.
// Divided by the current zoom to get the radius in map-pixel space.
const PinHitRadius = 12.0

// NavKind distinguishes the two navigation target kinds an annotation can
// carry.
type NavKind int

const (
	NavPage NavKind = iota
	NavMap
)

// NavTarget is a resolved navigation intent: open the page or map with the
// given title.
type NavTarget struct {
	Kind  NavKind
	Title string
}

// HoverState is the outcome of a pointer-motion hit test.
type HoverState struct {
	// Pin is the hovered pin marker, if any. A pin always wins over
	// regions under the same point.
	Pin *mapdoc.MapPin
	// Labels are the tooltip lines, one per matched object.
	Labels []string
	// Preview is the rich-preview target, set only for an unambiguous
	// single match with a target while the console is closed. AnchorID
	// identifies the object the preview is anchored to.
	Preview  *NavTarget
	AnchorID string
	// ActiveIDs is the set of region ids under the pointer, for styling.
	// ActiveChanged is true only when membership differs from the previous
	// hover, so motion events inside the same object stay cheap; the
	// hovered pin counts toward membership.
	ActiveIDs     []string
	ActiveChanged bool
}

// ClickKind classifies what a primary click resolved to.
type ClickKind int

const (
	ClickNone ClickKind = iota
	ClickNavigate
	ClickMenu
)

// MenuEntry is one candidate action in a disambiguation menu.
type MenuEntry struct {
	// Label is the display name of the owning annotation.
	Label  string
	Target NavTarget
	// RegionID is empty for pin entries.
	RegionID string
}

// ClickResult is the outcome of a primary click: nothing, a direct
// navigation, or a disambiguation menu.
type ClickResult struct {
	Kind   ClickKind
	Target NavTarget
	Menu   []MenuEntry
}

// EntityKind tags context-menu entries by annotation type.
type EntityKind int

const (
	EntityPin EntityKind = iota
	EntityRegion
)

// ContextEntry is one annotation offered for editing from a context-click.
type ContextEntry struct {
	Kind  EntityKind
	ID    string
	Label string
}

// ContextResult is the outcome of a context-click: annotations to edit, or
// an empty spot inviting creation.
type ContextResult struct {
	Entries []ContextEntry
	// AddHere is true when nothing was hit; the menu offers "Add Pin Here"
	// and "Start Drawing" instead.
	AddHere bool
}

// Controller resolves pointer gestures against a map configuration. It keeps
// the previous hover's active-region set so callers only restyle when the
// set actually changes.
type Controller struct {
	active map[string]struct{}
}

// NewController creates a hit-test controller with an empty active set.
func NewController() *Controller {
	return &Controller{active: make(map[string]struct{})}
}

// Reset clears the active set, e.g. when the pointer leaves the canvas, and
// reports whether anything was active.
func (c *Controller) Reset() bool {
	return c.setActive(nil)
}

// Hover resolves a pointer position (pixel space) to tooltip, preview, and
// styling state. zoom is the current viewport zoom; consoleOpen suppresses
// previews and makes ghost pins hoverable.
func (c *Controller) Hover(cfg *mapdoc.MapConfig, x, y, zoom float64, consoleOpen bool) HoverState {
	if pin := hitPin(cfg, x, y, zoom, consoleOpen); pin != nil {
		state := HoverState{
			Pin:    pin,
			Labels: []string{pinLabel(pin)},
		}
		if target, ok := primaryTarget(pin.TargetPage, pin.TargetMap); ok && !consoleOpen {
			state.Preview = &target
			state.AnchorID = pin.ID
		}
		// The pin suppresses region highlights under it but joins the
		// active set itself, so entering and leaving a pin restyles too.
		state.ActiveChanged = c.setActive([]string{pin.ID})
		return state
	}

	matches := mapdoc.RegionsAt(x, y, cfg.Shapes, cfg.Layers)
	state := HoverState{}
	for _, r := range matches {
		state.Labels = append(state.Labels, regionLabel(r))
		state.ActiveIDs = append(state.ActiveIDs, r.ID)
	}
	if len(matches) == 1 && !consoleOpen {
		if target, ok := primaryTarget(matches[0].TargetPage, matches[0].TargetMap); ok {
			state.Preview = &target
			state.AnchorID = matches[0].ID
		}
	}
	state.ActiveChanged = c.setActive(state.ActiveIDs)
	return state
}

// Click resolves a primary click (pixel space) to a navigation or a
// disambiguation menu. Pins win over regions; regions without a target are
// transparent to clicks.
func (c *Controller) Click(cfg *mapdoc.MapConfig, x, y, zoom float64, consoleOpen bool) ClickResult {
	if pin := hitPin(cfg, x, y, zoom, consoleOpen); pin != nil {
		entries := targetEntries(pinLabel(pin), "", pin.TargetPage, pin.TargetMap)
		return resolveEntries(entries)
	}

	var entries []MenuEntry
	for _, r := range mapdoc.RegionsAt(x, y, cfg.Shapes, cfg.Layers) {
		if !r.HasTarget() {
			continue
		}
		entries = append(entries, targetEntries(regionLabel(r), r.ID, r.TargetPage, r.TargetMap)...)
	}
	return resolveEntries(entries)
}

// ContextClick gathers every annotation under the point for Edit/Delete,
// regardless of navigation targets. An empty result invites creation.
func (c *Controller) ContextClick(cfg *mapdoc.MapConfig, x, y, zoom float64, consoleOpen bool) ContextResult {
	var res ContextResult
	if pin := hitPin(cfg, x, y, zoom, consoleOpen); pin != nil {
		res.Entries = append(res.Entries, ContextEntry{Kind: EntityPin, ID: pin.ID, Label: pinLabel(pin)})
	}
	for _, r := range mapdoc.RegionsAt(x, y, cfg.Shapes, cfg.Layers) {
		res.Entries = append(res.Entries, ContextEntry{Kind: EntityRegion, ID: r.ID, Label: regionLabel(r)})
	}
	res.AddHere = len(res.Entries) == 0
	return res
}

// setActive replaces the active set and reports whether membership changed.
func (c *Controller) setActive(ids []string) bool {
	if len(ids) == len(c.active) {
		same := true
		for _, id := range ids {
			if _, ok := c.active[id]; !ok {
				same = false
				break
			}
		}
		if same {
			return false
		}
	}
	c.active = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		c.active[id] = struct{}{}
	}
	return true
}

// hitPin returns the closest pin within the pick radius, or nil. Pins on
// hidden layers never hit; ghost pins hit only while the console is open.
func hitPin(cfg *mapdoc.MapConfig, x, y, zoom float64, consoleOpen bool) *mapdoc.MapPin {
	if zoom <= 0 {
		zoom = 1
	}
	radius := PinHitRadius / zoom
	p := geometry.Point2D{X: x, Y: y}

	var best *mapdoc.MapPin
	bestDist := radius
	for i := range cfg.Pins {
		pin := &cfg.Pins[i]
		if pin.Invisible && !consoleOpen {
			continue
		}
		if !mapdoc.IsLayerVisible(pin.LayerID, cfg.Layers) {
			continue
		}
		d := p.Distance(geometry.Point2D{X: float64(pin.X), Y: float64(pin.Y)})
		if d <= bestDist {
			best = pin
			bestDist = d
		}
	}
	return best
}

func resolveEntries(entries []MenuEntry) ClickResult {
	switch len(entries) {
	case 0:
		return ClickResult{Kind: ClickNone}
	case 1:
		return ClickResult{Kind: ClickNavigate, Target: entries[0].Target}
	default:
		return ClickResult{Kind: ClickMenu, Menu: entries}
	}
}

// targetEntries expands an annotation into one menu entry per target it
// carries, page before map.
func targetEntries(label, regionID, targetPage, targetMap string) []MenuEntry {
	var entries []MenuEntry
	if targetPage != "" {
		entries = append(entries, MenuEntry{
			Label:    label,
			Target:   NavTarget{Kind: NavPage, Title: targetPage},
			RegionID: regionID,
		})
	}
	if targetMap != "" {
		entries = append(entries, MenuEntry{
			Label:    label,
			Target:   NavTarget{Kind: NavMap, Title: targetMap},
			RegionID: regionID,
		})
	}
	return entries
}

func primaryTarget(targetPage, targetMap string) (NavTarget, bool) {
	switch {
	case targetPage != "":
		return NavTarget{Kind: NavPage, Title: targetPage}, true
	case targetMap != "":
		return NavTarget{Kind: NavMap, Title: targetMap}, true
	default:
		return NavTarget{}, false
	}
}

func pinLabel(p *mapdoc.MapPin) string {
	if p.Label != "" {
		return p.Label
	}
	if p.TargetPage != "" {
		return p.TargetPage
	}
	if p.TargetMap != "" {
		return p.TargetMap
	}
	return "Pin"
}

func regionLabel(r *mapdoc.MapRegion) string {
	if r.Label != "" {
		return r.Label
	}
	if r.TargetPage != "" {
		return r.TargetPage
	}
	if r.TargetMap != "" {
		return r.TargetMap
	}
	return "Region"
}
