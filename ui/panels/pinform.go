package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/google/uuid"

	"vault-atlas/internal/app"
	"vault-atlas/internal/mapdoc"
)

// ShowNewPinForm opens the pin form for a fresh pin at the given pixel
// position.
func ShowNewPinForm(window fyne.Window, state *app.State, x, y int) {
	pin := &mapdoc.MapPin{ID: uuid.NewString(), X: x, Y: y}
	showPinForm(window, state, pin, true)
}

// ShowPinForm opens the pin form for an existing pin.
func ShowPinForm(window fyne.Window, state *app.State, pin *mapdoc.MapPin) {
	edit := *pin
	showPinForm(window, state, &edit, false)
}

func showPinForm(window fyne.Window, state *app.State, pin *mapdoc.MapPin, isNew bool) {
	label := widget.NewEntry()
	label.SetText(pin.Label)
	targetPage := widget.NewEntry()
	targetPage.SetText(pin.TargetPage)
	targetPage.SetPlaceHolder("page title")
	targetMap := widget.NewEntry()
	targetMap.SetText(pin.TargetMap)
	targetMap.SetPlaceHolder("map title")
	icon := widget.NewEntry()
	icon.SetText(pin.Icon)
	icon.SetPlaceHolder("icon filename")
	colorEntry := widget.NewEntry()
	colorEntry.SetText(pin.Color)
	colorEntry.SetPlaceHolder("#rrggbb")
	ghost := widget.NewCheck("Only visible in console", nil)
	ghost.SetChecked(pin.Invisible)
	layer := layerSelect(state, pin.LayerID)

	items := []*widget.FormItem{
		widget.NewFormItem("Label", label),
		widget.NewFormItem("Target page", targetPage),
		widget.NewFormItem("Target map", targetMap),
		widget.NewFormItem("Icon", icon),
		widget.NewFormItem("Color", colorEntry),
		widget.NewFormItem("Layer", layer),
		widget.NewFormItem("Ghost", ghost),
	}

	title := "Edit Pin"
	if isNew {
		title = "Add Pin"
	}
	dialog.ShowForm(title, "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		pin.Label = label.Text
		pin.TargetPage = targetPage.Text
		pin.TargetMap = targetMap.Text
		pin.Icon = icon.Text
		pin.Color = colorEntry.Text
		pin.Invisible = ghost.Checked
		pin.LayerID = selectedLayerID(state, layer)

		err := state.UpdateMap(func(cfg *mapdoc.MapConfig) *mapdoc.MapConfig {
			for i := range cfg.Pins {
				if cfg.Pins[i].ID == pin.ID {
					cfg.Pins[i] = *pin
					return cfg
				}
			}
			cfg.Pins = append(cfg.Pins, *pin)
			return cfg
		})
		if err != nil {
			dialog.ShowError(err, window)
		}
	}, window)
}

// layerSelect builds a layer picker with a leading "none" entry for global
// annotations.
func layerSelect(state *app.State, currentID string) *widget.Select {
	options := []string{"(none)"}
	selected := "(none)"
	if cfg := state.Current(); cfg != nil {
		for _, l := range cfg.Layers {
			options = append(options, l.Name)
			if l.ID == currentID {
				selected = l.Name
			}
		}
	}
	sel := widget.NewSelect(options, nil)
	sel.SetSelected(selected)
	return sel
}

// selectedLayerID maps the picker's selection back to a layer id.
func selectedLayerID(state *app.State, sel *widget.Select) string {
	if sel.Selected == "(none)" {
		return ""
	}
	if cfg := state.Current(); cfg != nil {
		for _, l := range cfg.Layers {
			if l.Name == sel.Selected {
				return l.ID
			}
		}
	}
	return ""
}
