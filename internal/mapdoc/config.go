// Package mapdoc defines the interactive map configuration model and the
// operations on it: the JSON codec for .map.json files, layer visibility
// resolution, point-hit queries, and the rescale transform.
package mapdoc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoBaseLayer is returned by operations that need a reference image on a
// map without layers.
var ErrNoBaseLayer = errors.New("map has no base layer")

// CurrentVersion is written into newly created map configurations. The
// version of loaded files is carried through untouched.
const CurrentVersion = 1

// FileExtension is the on-disk suffix for map configuration files.
const FileExtension = ".map.json"

// MapConfig is the complete configuration of one interactive map.
// Width and Height are the reference pixel dimensions of the base image;
// all pin and shape coordinates live in that pixel space (origin top-left,
// Y down).
type MapConfig struct {
	Version int       `json:"version"`
	Title   string    `json:"title"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Scale   *ScaleBar `json:"scale,omitempty"`

	Layers []MapLayer  `json:"layers"`
	Pins   []MapPin    `json:"pins"`
	Shapes []MapRegion `json:"shapes"`
}

// ScaleBar relates a pixel distance to a real-world distance.
type ScaleBar struct {
	Pixels float64 `json:"pixels"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
}

// MapLayer is one image layer of the map. The base layer (lowest ZIndex)
// defines the map's reference dimensions.
type MapLayer struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Image   string  `json:"image"`
	Opacity float64 `json:"opacity"`
	ZIndex  int     `json:"zIndex"`
	Visible bool    `json:"visible"`
}

// MapPin is a point annotation in pixel space. A pin with Invisible set is a
// "ghost": hidden during normal browsing, shown translucently while the
// management console is open.
type MapPin struct {
	ID         string `json:"id"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	LayerID    string `json:"layerId,omitempty"`
	TargetPage string `json:"targetPage,omitempty"`
	TargetMap  string `json:"targetMap,omitempty"`
	Label      string `json:"label,omitempty"`
	Icon       string `json:"icon,omitempty"`
	Color      string `json:"color,omitempty"`
	Invisible  bool   `json:"invisible,omitempty"`
}

// New creates an empty map configuration for a base image of the given
// reference dimensions.
func New(title string, width, height int) *MapConfig {
	return &MapConfig{
		Version: CurrentVersion,
		Title:   title,
		Width:   width,
		Height:  height,
		Layers:  make([]MapLayer, 0),
		Pins:    make([]MapPin, 0),
		Shapes:  make([]MapRegion, 0),
	}
}

// Clone returns a deep copy of the configuration. All mutation of cached
// configurations goes through Clone: consumers never see a config change
// underneath them.
func (c *MapConfig) Clone() *MapConfig {
	out := *c
	if c.Scale != nil {
		scale := *c.Scale
		out.Scale = &scale
	}
	out.Layers = append([]MapLayer(nil), c.Layers...)
	out.Pins = append([]MapPin(nil), c.Pins...)
	out.Shapes = make([]MapRegion, len(c.Shapes))
	for i, s := range c.Shapes {
		out.Shapes[i] = s.clone()
	}
	return &out
}

// BaseLayer returns the layer defining the reference dimensions: the one
// with the lowest ZIndex, first in slice order on ties. Returns nil when the
// map has no layers.
func (c *MapConfig) BaseLayer() *MapLayer {
	var base *MapLayer
	for i := range c.Layers {
		if base == nil || c.Layers[i].ZIndex < base.ZIndex {
			base = &c.Layers[i]
		}
	}
	return base
}

// FindLayer returns the layer with the given id, or nil.
func (c *MapConfig) FindLayer(id string) *MapLayer {
	for i := range c.Layers {
		if c.Layers[i].ID == id {
			return &c.Layers[i]
		}
	}
	return nil
}

// FindPin returns the pin with the given id, or nil.
func (c *MapConfig) FindPin(id string) *MapPin {
	for i := range c.Pins {
		if c.Pins[i].ID == id {
			return &c.Pins[i]
		}
	}
	return nil
}

// FindShape returns the region with the given id, or nil.
func (c *MapConfig) FindShape(id string) *MapRegion {
	for i := range c.Shapes {
		if c.Shapes[i].ID == id {
			return &c.Shapes[i]
		}
	}
	return nil
}

// Encode serializes the configuration as pretty-printed JSON, the on-disk
// .map.json format.
func Encode(c *MapConfig) ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode map config: %w", err)
	}
	return data, nil
}

// Decode parses a .map.json document.
func Decode(data []byte) (*MapConfig, error) {
	var c MapConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse map config: %w", err)
	}
	return &c, nil
}
