package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault-atlas/internal/mapdoc"
	"vault-atlas/pkg/geometry"
)

// drawingProbe records the side effects of entering and leaving drawing
// mode.
type drawingProbe struct {
	zoomEnabled  bool
	consoleOpen  bool
	previewCalls [][]geometry.Point2D
}

func newDrawingProbe() (*drawingProbe, DrawingHooks) {
	p := &drawingProbe{zoomEnabled: true, consoleOpen: true}
	return p, DrawingHooks{
		SetZoomEnabled: func(on bool) { p.zoomEnabled = on },
		CloseConsole:   func() { p.consoleOpen = false },
		Preview: func(pts []geometry.Point2D) {
			p.previewCalls = append(p.previewCalls, pts)
		},
	}
}

func TestDrawingFinishEmitsDraft(t *testing.T) {
	probe, hooks := newDrawingProbe()
	d := NewDrawing(hooks)
	frame := NewFrame(1000, 500)

	d.Start(frame)
	assert.True(t, d.Active())
	assert.False(t, probe.zoomEnabled, "double-click zoom is disabled while drawing")
	assert.False(t, probe.consoleOpen, "console is force-closed")

	// Renderer-space clicks; Y is flipped back on finish.
	d.AddPoint(geometry.Point2D{X: 10, Y: 490})
	d.AddPoint(geometry.Point2D{X: 100.4, Y: 400})
	d.AddPoint(geometry.Point2D{X: 50, Y: 300.6})

	draft, ok := d.Finish()
	require.True(t, ok)
	assert.False(t, d.Active())
	assert.True(t, probe.zoomEnabled, "zoom is re-enabled on finish")

	assert.NotEmpty(t, draft.ID)
	assert.Equal(t, mapdoc.RegionPolygon, draft.Kind)
	require.Len(t, draft.Points, 3)
	assert.Equal(t, geometry.Point2D{X: 10, Y: 10}, draft.Points[0])
	assert.Equal(t, geometry.Point2D{X: 100, Y: 100}, draft.Points[1], "coordinates are rounded")
	assert.Equal(t, geometry.Point2D{X: 50, Y: 199}, draft.Points[2])

	// Preview grew with each point and was cleared at the end.
	require.Len(t, probe.previewCalls, 4)
	assert.Len(t, probe.previewCalls[2], 3)
	assert.Nil(t, probe.previewCalls[3])
}

func TestDrawingFinishWithTooFewPoints(t *testing.T) {
	probe, hooks := newDrawingProbe()
	d := NewDrawing(hooks)

	d.Start(NewFrame(100, 100))
	d.AddPoint(geometry.Point2D{X: 1, Y: 1})
	d.AddPoint(geometry.Point2D{X: 2, Y: 2})

	draft, ok := d.Finish()
	assert.False(t, ok)
	assert.Nil(t, draft)
	assert.False(t, d.Active())
	assert.True(t, probe.zoomEnabled)
}

func TestDrawingCancel(t *testing.T) {
	probe, hooks := newDrawingProbe()
	d := NewDrawing(hooks)

	d.Start(NewFrame(100, 100))
	d.AddPoint(geometry.Point2D{X: 1, Y: 1})
	d.Cancel()

	assert.False(t, d.Active())
	assert.Empty(t, d.Points())
	assert.Nil(t, probe.previewCalls[len(probe.previewCalls)-1], "preview cleared on cancel")
	assert.True(t, probe.zoomEnabled)

	// Cancel and Finish outside drawing mode are no-ops.
	d.Cancel()
	_, ok := d.Finish()
	assert.False(t, ok)
}

func TestDrawingIgnoresInputWhileIdle(t *testing.T) {
	d := NewDrawing(DrawingHooks{})
	d.AddPoint(geometry.Point2D{X: 5, Y: 5})
	assert.Empty(t, d.Points())
}
