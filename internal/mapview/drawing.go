package mapview

import (
	"github.com/google/uuid"

	"vault-atlas/internal/mapdoc"
	"vault-atlas/pkg/geometry"
)

// DrawingHooks are the viewport side effects of entering and leaving drawing
// mode. Any hook may be nil.
type DrawingHooks struct {
	// SetZoomEnabled toggles the default double-click zoom interaction,
	// which would otherwise swallow the finishing double-click.
	SetZoomEnabled func(enabled bool)
	// CloseConsole force-closes the management console; drawing needs the
	// full canvas.
	CloseConsole func()
	// Preview replaces the temporary open-polyline overlay with the given
	// renderer-space vertices. Called with nil to clear.
	Preview func(points []geometry.Point2D)
}

// Drawing collects polygon vertices while the user authors a new region.
// It is a two-state machine, idle or drawing; all methods are no-ops in the
// state they do not apply to.
type Drawing struct {
	hooks  DrawingHooks
	frame  Frame
	active bool
	points []geometry.Point2D // renderer space
}

// NewDrawing creates an idle drawing machine.
func NewDrawing(hooks DrawingHooks) *Drawing {
	return &Drawing{hooks: hooks}
}

// Active reports whether a draw is in progress.
func (d *Drawing) Active() bool {
	return d.active
}

// Points returns the buffered renderer-space vertices.
func (d *Drawing) Points() []geometry.Point2D {
	return d.points
}

// Start enters drawing mode for a map with the given frame.
func (d *Drawing) Start(frame Frame) {
	if d.active {
		return
	}
	d.active = true
	d.frame = frame
	d.points = nil
	if d.hooks.SetZoomEnabled != nil {
		d.hooks.SetZoomEnabled(false)
	}
	if d.hooks.CloseConsole != nil {
		d.hooks.CloseConsole()
	}
}

// AddPoint appends a clicked renderer-space vertex and extends the preview
// polyline.
func (d *Drawing) AddPoint(p geometry.Point2D) {
	if !d.active {
		return
	}
	d.points = append(d.points, p)
	if d.hooks.Preview != nil {
		d.hooks.Preview(d.points)
	}
}

// Finish leaves drawing mode. With three or more buffered vertices it
// returns a draft polygon region in pixel space, rounded to whole pixels;
// the draft is handed to an edit form and is not persisted here. Fewer
// vertices are discarded silently.
func (d *Drawing) Finish() (*mapdoc.MapRegion, bool) {
	if !d.active {
		return nil, false
	}
	points := d.points
	frame := d.frame
	d.reset()

	if len(points) < 3 {
		return nil, false
	}
	pixels := make([]geometry.Point2D, len(points))
	for i, p := range points {
		pixels[i] = frame.ToPixel(p).Round()
	}
	return &mapdoc.MapRegion{
		ID:     uuid.NewString(),
		Kind:   mapdoc.RegionPolygon,
		Points: pixels,
	}, true
}

// Cancel leaves drawing mode, discarding the buffer.
func (d *Drawing) Cancel() {
	if !d.active {
		return
	}
	d.reset()
}

func (d *Drawing) reset() {
	d.active = false
	d.points = nil
	if d.hooks.Preview != nil {
		d.hooks.Preview(nil)
	}
	if d.hooks.SetZoomEnabled != nil {
		d.hooks.SetZoomEnabled(true)
	}
}
