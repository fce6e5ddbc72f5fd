// Package panels provides the side panels and dialogs around the map
// canvas: the management console and the pin, region, and map forms.
package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"vault-atlas/internal/app"
	"vault-atlas/internal/mapdoc"
)

// consoleEntry is one row of the console list.
type consoleEntry struct {
	id     string
	isPin  bool
	label  string
	detail string
}

// Console is the management panel listing every pin and region of the open
// map for bulk editing. While it is open, hidden regions and ghost pins are
// rendered so they can be located.
type Console struct {
	state  *app.State
	window fyne.Window

	entries []consoleEntry
	list    *widget.List
	layers  *fyne.Container
	root    fyne.CanvasObject
}

// NewConsole creates the console panel.
func NewConsole(state *app.State, window fyne.Window) *Console {
	c := &Console{state: state, window: window}

	c.list = widget.NewList(
		func() int { return len(c.entries) },
		func() fyne.CanvasObject {
			return container.NewVBox(
				widget.NewLabel("label"),
				widget.NewLabel("detail"),
			)
		},
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			box := obj.(*fyne.Container)
			entry := c.entries[i]
			title := box.Objects[0].(*widget.Label)
			title.TextStyle = fyne.TextStyle{Bold: true}
			title.SetText(entry.label)
			box.Objects[1].(*widget.Label).SetText(entry.detail)
		},
	)
	c.list.OnSelected = func(i widget.ListItemID) {
		c.state.SetHighlight(c.entries[i].id)
	}
	c.list.OnUnselected = func(widget.ListItemID) {
		c.state.SetHighlight()
	}

	editBtn := widget.NewButton("Edit", func() { c.editSelected() })
	deleteBtn := widget.NewButton("Delete", func() { c.deleteSelected() })
	buttons := container.NewHBox(editBtn, deleteBtn)

	c.layers = container.NewVBox()
	top := container.NewVBox(
		widget.NewLabel("Layers"),
		c.layers,
		widget.NewSeparator(),
		widget.NewLabel("Pins & Regions"),
	)

	c.root = container.NewBorder(
		top,
		buttons,
		nil, nil,
		c.list,
	)

	state.On(app.EventMapOpened, func(interface{}) { c.Reload() })
	state.On(app.EventMapUpdated, func(interface{}) { c.Reload() })

	c.Reload()
	return c
}

// Widget returns the panel for embedding.
func (c *Console) Widget() fyne.CanvasObject {
	return c.root
}

// Reload rebuilds the layer toggles and entry rows from the live config.
func (c *Console) Reload() {
	c.entries = c.entries[:0]
	c.layers.Objects = nil
	cfg := c.state.Current()
	if cfg != nil {
		for _, layer := range cfg.Layers {
			id := layer.ID
			check := widget.NewCheck(layer.Name, nil)
			check.SetChecked(layer.Visible)
			// Handler attached after SetChecked so initialization does
			// not loop back into an update.
			check.OnChanged = func(on bool) {
				err := c.state.UpdateMap(func(cfg *mapdoc.MapConfig) *mapdoc.MapConfig {
					if l := cfg.FindLayer(id); l != nil {
						l.Visible = on
					}
					return cfg
				})
				if err != nil {
					dialog.ShowError(err, c.window)
				}
			}
			c.layers.Add(check)
		}
		for _, pin := range cfg.Pins {
			detail := fmt.Sprintf("Pin at (%d, %d)", pin.X, pin.Y)
			if pin.Invisible {
				detail += ", ghost"
			}
			if !mapdoc.IsLayerVisible(pin.LayerID, cfg.Layers) {
				detail += ", layer hidden"
			}
			c.entries = append(c.entries, consoleEntry{
				id:     pin.ID,
				isPin:  true,
				label:  pinTitle(pin),
				detail: detail,
			})
		}
		for _, region := range cfg.Shapes {
			detail := string(region.Kind)
			if region.Kind == mapdoc.RegionPolygon {
				detail = fmt.Sprintf("polygon, %d points", len(region.Points))
			}
			if !mapdoc.IsLayerVisible(region.LayerID, cfg.Layers) {
				detail += ", layer hidden"
			}
			c.entries = append(c.entries, consoleEntry{
				id:     region.ID,
				label:  regionTitle(region),
				detail: detail,
			})
		}
	}
	c.layers.Refresh()
	c.list.UnselectAll()
	c.list.Refresh()
}

// EditByID opens the matching edit form, used by the canvas context menu.
func (c *Console) EditByID(id string) {
	cfg := c.state.Current()
	if cfg == nil {
		return
	}
	if pin := cfg.FindPin(id); pin != nil {
		ShowPinForm(c.window, c.state, pin)
		return
	}
	if region := cfg.FindShape(id); region != nil {
		ShowRegionForm(c.window, c.state, region, false)
	}
}

// DeleteByID removes the matching annotation after confirmation.
func (c *Console) DeleteByID(id string, label string) {
	dialog.ShowConfirm("Delete Annotation",
		fmt.Sprintf("Delete %q? This cannot be undone.", label),
		func(ok bool) {
			if !ok {
				return
			}
			err := c.state.UpdateMap(func(cfg *mapdoc.MapConfig) *mapdoc.MapConfig {
				for i, pin := range cfg.Pins {
					if pin.ID == id {
						cfg.Pins = append(cfg.Pins[:i], cfg.Pins[i+1:]...)
						return cfg
					}
				}
				for i, region := range cfg.Shapes {
					if region.ID == id {
						cfg.Shapes = append(cfg.Shapes[:i], cfg.Shapes[i+1:]...)
						return cfg
					}
				}
				return cfg
			})
			if err != nil {
				dialog.ShowError(err, c.window)
			}
		}, c.window)
}

func (c *Console) selected() (consoleEntry, bool) {
	// widget.List keeps no public selection accessor; track via highlight.
	highlighted := c.state.Highlighted()
	for _, entry := range c.entries {
		if highlighted[entry.id] {
			return entry, true
		}
	}
	return consoleEntry{}, false
}

func (c *Console) editSelected() {
	if entry, ok := c.selected(); ok {
		c.EditByID(entry.id)
	}
}

func (c *Console) deleteSelected() {
	if entry, ok := c.selected(); ok {
		c.DeleteByID(entry.id, entry.label)
	}
}

func pinTitle(p mapdoc.MapPin) string {
	if p.Label != "" {
		return p.Label
	}
	if p.TargetPage != "" {
		return p.TargetPage
	}
	if p.TargetMap != "" {
		return p.TargetMap
	}
	return "Unnamed pin"
}

func regionTitle(r mapdoc.MapRegion) string {
	if r.Label != "" {
		return r.Label
	}
	if r.TargetPage != "" {
		return r.TargetPage
	}
	if r.TargetMap != "" {
		return r.TargetMap
	}
	return "Unnamed region"
}
