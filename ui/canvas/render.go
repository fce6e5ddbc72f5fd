package canvas

import (
	"image"
	"log"
	"sort"

	"github.com/disintegration/imaging"

	"vault-atlas/internal/mapdoc"
	"vault-atlas/internal/mapview"
)

type layerPrimitive struct {
	layer mapdoc.MapLayer
	img   image.Image // nil when the filename did not resolve
}

type pinPrimitive struct {
	pin   mapdoc.MapPin
	style mapview.PinStyle
	icon  image.Image
}

type regionPrimitive struct {
	region mapdoc.MapRegion
	style  mapview.RegionStyle
}

// markerSize is the pin marker edge length in image pixels at zoom 1.
const markerSize = 24

// Rebuild implements mapview.Renderer: tear down and recreate the scene for
// a map whose reference dimensions or base image changed.
func (mc *MapCanvas) Rebuild(cfg *mapdoc.MapConfig) {
	mc.layers = make(map[string]*layerPrimitive)
	mc.pins = make(map[string]*pinPrimitive)
	mc.regions = make(map[string]*regionPrimitive)
	mc.draft = nil
	mc.frame = mapview.NewFrame(float64(cfg.Width), float64(cfg.Height))

	view := mc.scroll.Size()
	mc.minZoom = mc.frame.FitZoom(float64(view.Width), float64(view.Height))
	mc.SetZoom(mc.minZoom)
}

// UpsertLayer implements mapview.Renderer.
func (mc *MapCanvas) UpsertLayer(layer mapdoc.MapLayer) {
	prim := &layerPrimitive{layer: layer}
	if path, ok := mc.assets.Resolve(layer.Image); ok {
		img, err := imaging.Open(path)
		if err != nil {
			// Unresolvable or unreadable images render nothing.
			log.Printf("canvas: cannot load layer image %s: %v", path, err)
		} else {
			prim.img = img
		}
	}
	mc.layers[layer.ID] = prim
	mc.Refresh()
}

// RemoveLayer implements mapview.Renderer.
func (mc *MapCanvas) RemoveLayer(id string) {
	delete(mc.layers, id)
	mc.Refresh()
}

// UpsertPin implements mapview.Renderer.
func (mc *MapCanvas) UpsertPin(pin mapdoc.MapPin, style mapview.PinStyle) {
	prim := &pinPrimitive{pin: pin, style: style}
	if pin.Icon != "" {
		if path, ok := mc.assets.Resolve(pin.Icon); ok {
			if icon, err := mc.icons.Load(path, markerSize); err == nil {
				prim.icon = icon
			}
		}
	}
	mc.pins[pin.ID] = prim
	mc.Refresh()
}

// RemovePin implements mapview.Renderer.
func (mc *MapCanvas) RemovePin(id string) {
	delete(mc.pins, id)
	mc.Refresh()
}

// UpsertRegion implements mapview.Renderer.
func (mc *MapCanvas) UpsertRegion(region mapdoc.MapRegion, style mapview.RegionStyle) {
	mc.regions[region.ID] = &regionPrimitive{region: region, style: style}
	mc.Refresh()
}

// RemoveRegion implements mapview.Renderer.
func (mc *MapCanvas) RemoveRegion(id string) {
	delete(mc.regions, id)
	mc.Refresh()
}

var _ mapview.Renderer = (*MapCanvas)(nil)

// draw is the raster drawing function. Layers composite bottom-up by
// zIndex; regions draw above them, highlighted ones last; pins sit on top.
func (mc *MapCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(output.Pix); i += 4 {
		output.Pix[i] = 255
	}

	for _, prim := range mc.sortedLayers() {
		if !prim.layer.Visible || prim.img == nil {
			continue
		}
		mc.compositeLayer(output, prim)
	}

	for _, prim := range mc.sortedRegions() {
		mc.drawRegion(output, prim)
	}

	if len(mc.draft) > 0 {
		mc.drawDraft(output)
	}

	for _, prim := range mc.sortedPins() {
		mc.drawPin(output, prim)
	}

	return output
}

// sortedLayers returns layer primitives bottom-up: ascending zIndex, id as
// the tie-break so the order is stable.
func (mc *MapCanvas) sortedLayers() []*layerPrimitive {
	prims := make([]*layerPrimitive, 0, len(mc.layers))
	for _, p := range mc.layers {
		prims = append(prims, p)
	}
	sort.Slice(prims, func(i, j int) bool {
		if prims[i].layer.ZIndex != prims[j].layer.ZIndex {
			return prims[i].layer.ZIndex < prims[j].layer.ZIndex
		}
		return prims[i].layer.ID < prims[j].layer.ID
	})
	return prims
}

// sortedRegions returns region primitives with highlighted ones last, so
// they draw on top.
func (mc *MapCanvas) sortedRegions() []*regionPrimitive {
	prims := make([]*regionPrimitive, 0, len(mc.regions))
	for _, p := range mc.regions {
		prims = append(prims, p)
	}
	sort.Slice(prims, func(i, j int) bool {
		if prims[i].style != prims[j].style {
			return prims[i].style < prims[j].style
		}
		return prims[i].region.ID < prims[j].region.ID
	})
	return prims
}

// sortedPins returns pin primitives with highlighted ones last.
func (mc *MapCanvas) sortedPins() []*pinPrimitive {
	prims := make([]*pinPrimitive, 0, len(mc.pins))
	for _, p := range mc.pins {
		prims = append(prims, p)
	}
	sort.Slice(prims, func(i, j int) bool {
		hi := prims[i].style == mapview.PinHighlighted
		hj := prims[j].style == mapview.PinHighlighted
		if hi != hj {
			return !hi
		}
		return prims[i].pin.ID < prims[j].pin.ID
	})
	return prims
}
