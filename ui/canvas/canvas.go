// Package canvas provides the interactive map viewport: layer compositing
// with pan and zoom, annotation primitives driven by the rendering
// synchronizer, and pointer gestures reported in image coordinates.
package canvas

import (
	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"vault-atlas/internal/assets"
	"vault-atlas/internal/mapview"
	"vault-atlas/pkg/geometry"
)

const (
	maxZoom  = 10.0
	zoomStep = 1.25
)

// MapCanvas displays a map with its annotation primitives. It implements
// mapview.Renderer; the synchronizer keeps its primitive tables in step with
// the current configuration.
type MapCanvas struct {
	widget.BaseWidget

	assets *assets.Index
	icons  *assets.IconCache

	// Scene, keyed by entity id.
	frame   mapview.Frame
	layers  map[string]*layerPrimitive
	pins    map[string]*pinPrimitive
	regions map[string]*regionPrimitive
	draft   []geometry.Point2D // open polyline, image coords

	// Display state
	raster  *fynecanvas.Raster
	zoom    float64
	minZoom float64

	zoomEnabled bool

	scroll  *zoomScroll
	content *hoverableContent
	imgSize fyne.Size

	// Callbacks; coordinates are image pixels, origin top-left.
	onHover     func(x, y float64)
	onHoverOut  func()
	onTap       func(x, y float64)
	onSecondary func(x, y float64)
	onDoubleTap func(x, y float64)
	onZoom      func(zoom float64)
}

// NewMapCanvas creates an empty map canvas resolving images through the
// given indexes.
func NewMapCanvas(assetIx *assets.Index, icons *assets.IconCache) *MapCanvas {
	mc := &MapCanvas{
		assets:      assetIx,
		icons:       icons,
		layers:      make(map[string]*layerPrimitive),
		pins:        make(map[string]*pinPrimitive),
		regions:     make(map[string]*regionPrimitive),
		zoom:        1.0,
		minZoom:     0.1,
		zoomEnabled: true,
		imgSize:     fyne.NewSize(400, 300),
	}

	mc.raster = fynecanvas.NewRaster(mc.draw)
	mc.raster.ScaleMode = fynecanvas.ImageScalePixels
	mc.raster.SetMinSize(mc.imgSize)

	mc.content = newHoverableContent(mc, mc.raster)
	mc.scroll = newZoomScroll(mc.content, mc)

	mc.ExtendBaseWidget(mc)
	return mc
}

// Container returns the canvas container for embedding in layouts.
func (mc *MapCanvas) Container() fyne.CanvasObject {
	return mc.scroll
}

// Zoom returns the current zoom level.
func (mc *MapCanvas) Zoom() float64 {
	return mc.zoom
}

// SetZoom sets the zoom level, clamped so the map never shrinks below the
// viewport fit.
func (mc *MapCanvas) SetZoom(zoom float64) {
	view := mc.scroll.Size()
	zoom = mc.frame.ClampZoom(zoom, float64(view.Width), float64(view.Height), maxZoom)
	mc.zoom = zoom
	mc.updateContentSize()
	if mc.onZoom != nil {
		mc.onZoom(zoom)
	}
}

// ZoomIn increases the zoom level.
func (mc *MapCanvas) ZoomIn() { mc.SetZoom(mc.zoom * zoomStep) }

// ZoomOut decreases the zoom level.
func (mc *MapCanvas) ZoomOut() { mc.SetZoom(mc.zoom / zoomStep) }

// FitToView zooms out to the enforced minimum, showing the whole map.
func (mc *MapCanvas) FitToView() {
	view := mc.scroll.Size()
	mc.SetZoom(mc.frame.FitZoom(float64(view.Width), float64(view.Height)))
}

// SetZoomEnabled toggles the double-click zoom gesture. The drawing state
// machine disables it so a finishing double-click is not swallowed.
func (mc *MapCanvas) SetZoomEnabled(enabled bool) {
	mc.zoomEnabled = enabled
}

// SetDraft replaces the open-polyline preview shown while drawing. Points
// are image coordinates; nil clears.
func (mc *MapCanvas) SetDraft(points []geometry.Point2D) {
	mc.draft = points
	mc.Refresh()
}

// OnHover sets the pointer-motion callback.
func (mc *MapCanvas) OnHover(cb func(x, y float64)) { mc.onHover = cb }

// OnHoverOut sets the pointer-exit callback.
func (mc *MapCanvas) OnHoverOut(cb func()) { mc.onHoverOut = cb }

// OnTap sets the primary-click callback.
func (mc *MapCanvas) OnTap(cb func(x, y float64)) { mc.onTap = cb }

// OnSecondaryTap sets the context-click callback.
func (mc *MapCanvas) OnSecondaryTap(cb func(x, y float64)) { mc.onSecondary = cb }

// OnDoubleTap sets the double-click callback, fired only while the zoom
// gesture is disabled.
func (mc *MapCanvas) OnDoubleTap(cb func(x, y float64)) { mc.onDoubleTap = cb }

// OnZoomChange sets a callback for zoom changes.
func (mc *MapCanvas) OnZoomChange(cb func(zoom float64)) { mc.onZoom = cb }

// Refresh redraws the raster.
func (mc *MapCanvas) Refresh() {
	mc.raster.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (mc *MapCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(mc.scroll)
}

func (mc *MapCanvas) updateContentSize() {
	if mc.frame.Width <= 0 || mc.frame.Height <= 0 {
		mc.imgSize = fyne.NewSize(400, 300)
	} else {
		mc.imgSize = fyne.NewSize(
			float32(mc.frame.Width*mc.zoom),
			float32(mc.frame.Height*mc.zoom),
		)
	}

	mc.raster.SetMinSize(mc.imgSize)
	mc.raster.Resize(mc.imgSize)
	if mc.content != nil {
		mc.content.Resize(mc.imgSize)
		mc.content.Refresh()
	}
	mc.raster.Refresh()
	if mc.scroll != nil {
		mc.scroll.Refresh()
	}
}

// toImage converts a viewport position to image coordinates.
func (mc *MapCanvas) toImage(pos fyne.Position) (float64, float64) {
	return float64(pos.X) / mc.zoom, float64(pos.Y) / mc.zoom
}

// zoomScroll wraps a scroll container but intercepts the wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *MapCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *MapCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

func (zs *zoomScroll) Size() fyne.Size {
	return zs.scroll.Size()
}

func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// hoverableContent wraps the raster to receive pointer events.
type hoverableContent struct {
	widget.BaseWidget
	canvas *MapCanvas
	raster *fynecanvas.Raster
}

func newHoverableContent(mc *MapCanvas, raster *fynecanvas.Raster) *hoverableContent {
	hc := &hoverableContent{canvas: mc, raster: raster}
	hc.ExtendBaseWidget(hc)
	return hc
}

func (hc *hoverableContent) CreateRenderer() fyne.WidgetRenderer {
	return &contentRenderer{content: hc}
}

func (hc *hoverableContent) MinSize() fyne.Size {
	return hc.raster.MinSize()
}

func (hc *hoverableContent) inBounds(pos fyne.Position) bool {
	size := hc.Size()
	return pos.X >= 0 && pos.Y >= 0 && pos.X <= size.Width && pos.Y <= size.Height
}

func (hc *hoverableContent) Tapped(ev *fyne.PointEvent) {
	if hc.canvas.onTap == nil || !hc.inBounds(ev.Position) {
		return
	}
	x, y := hc.canvas.toImage(ev.Position)
	hc.canvas.onTap(x, y)
}

func (hc *hoverableContent) TappedSecondary(ev *fyne.PointEvent) {
	if hc.canvas.onSecondary == nil || !hc.inBounds(ev.Position) {
		return
	}
	x, y := hc.canvas.toImage(ev.Position)
	hc.canvas.onSecondary(x, y)
}

func (hc *hoverableContent) DoubleTapped(ev *fyne.PointEvent) {
	if hc.canvas.zoomEnabled {
		hc.canvas.ZoomIn()
		return
	}
	if hc.canvas.onDoubleTap != nil && hc.inBounds(ev.Position) {
		x, y := hc.canvas.toImage(ev.Position)
		hc.canvas.onDoubleTap(x, y)
	}
}

func (hc *hoverableContent) MouseIn(ev *desktop.MouseEvent) {
	hc.MouseMoved(ev)
}

func (hc *hoverableContent) MouseMoved(ev *desktop.MouseEvent) {
	if hc.canvas.onHover == nil || !hc.inBounds(ev.Position) {
		return
	}
	x, y := hc.canvas.toImage(ev.Position)
	hc.canvas.onHover(x, y)
}

func (hc *hoverableContent) MouseOut() {
	if hc.canvas.onHoverOut != nil {
		hc.canvas.onHoverOut()
	}
}

type contentRenderer struct {
	content *hoverableContent
}

func (r *contentRenderer) Layout(size fyne.Size) {
	r.content.raster.Resize(size)
}

func (r *contentRenderer) MinSize() fyne.Size {
	return r.content.raster.MinSize()
}

func (r *contentRenderer) Refresh() {
	r.content.raster.Refresh()
}

func (r *contentRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.raster}
}

func (r *contentRenderer) Destroy() {}

var _ desktop.Hoverable = (*hoverableContent)(nil)
var _ fyne.Tappable = (*hoverableContent)(nil)
var _ fyne.SecondaryTappable = (*hoverableContent)(nil)
var _ fyne.DoubleTappable = (*hoverableContent)(nil)
