package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"vault-atlas/internal/app"
	"vault-atlas/internal/mapdoc"
)

// ShowRegionForm opens the region form. For a draft from the drawing state
// machine pass isNew = true; saving then appends the region instead of
// replacing one.
func ShowRegionForm(window fyne.Window, state *app.State, region *mapdoc.MapRegion, isNew bool) {
	edit := *region

	label := widget.NewEntry()
	label.SetText(edit.Label)
	targetPage := widget.NewEntry()
	targetPage.SetText(edit.TargetPage)
	targetPage.SetPlaceHolder("page title")
	targetMap := widget.NewEntry()
	targetMap.SetText(edit.TargetMap)
	targetMap.SetPlaceHolder("map title")
	colorEntry := widget.NewEntry()
	colorEntry.SetText(edit.Color)
	colorEntry.SetPlaceHolder("#rrggbb")
	layer := layerSelect(state, edit.LayerID)

	items := []*widget.FormItem{
		widget.NewFormItem("Label", label),
		widget.NewFormItem("Target page", targetPage),
		widget.NewFormItem("Target map", targetMap),
		widget.NewFormItem("Color", colorEntry),
		widget.NewFormItem("Layer", layer),
	}

	title := "Edit Region"
	if isNew {
		title = "New Region"
	}
	dialog.ShowForm(title, "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		edit.Label = label.Text
		edit.TargetPage = targetPage.Text
		edit.TargetMap = targetMap.Text
		edit.Color = colorEntry.Text
		edit.LayerID = selectedLayerID(state, layer)

		err := state.UpdateMap(func(cfg *mapdoc.MapConfig) *mapdoc.MapConfig {
			for i := range cfg.Shapes {
				if cfg.Shapes[i].ID == edit.ID {
					cfg.Shapes[i] = edit
					return cfg
				}
			}
			cfg.Shapes = append(cfg.Shapes, edit)
			return cfg
		})
		if err != nil {
			dialog.ShowError(err, window)
		}
	}, window)
}
