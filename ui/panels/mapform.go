package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"vault-atlas/internal/app"
)

// ShowNewMapForm opens the new-map dialog. The image filename is resolved
// through the asset index and its natural dimensions probed in the
// background; the dimension fields fill themselves in when the probe lands.
func ShowNewMapForm(window fyne.Window, state *app.State, dir string, onCreated func(path string)) {
	title := widget.NewEntry()
	title.SetPlaceHolder("map title")
	image := widget.NewEntry()
	image.SetPlaceHolder("base image filename")
	dims := widget.NewLabel("")

	var width, height int
	image.OnChanged = func(name string) {
		dims.SetText("probing...")
		width, height = 0, 0
		path, ok := state.Assets.Resolve(name)
		if !ok {
			dims.SetText("image not found in vault")
			return
		}
		state.Prober.Probe(path, func(w, h int, err error) {
			if err != nil {
				dims.SetText(fmt.Sprintf("unreadable: %v", err))
				return
			}
			width, height = w, h
			dims.SetText(fmt.Sprintf("%d x %d", w, h))
		})
	}

	items := []*widget.FormItem{
		widget.NewFormItem("Title", title),
		widget.NewFormItem("Base image", image),
		widget.NewFormItem("Dimensions", dims),
	}

	dialog.ShowForm("New Map", "Create", "Cancel", items, func(ok bool) {
		if !ok {
			state.Prober.Invalidate()
			return
		}
		if title.Text == "" || width == 0 || height == 0 {
			dialog.ShowError(fmt.Errorf("a title and a readable base image are required"), window)
			return
		}
		path, err := state.CreateMap(dir, title.Text, image.Text, width, height)
		if err != nil {
			dialog.ShowError(err, window)
			return
		}
		if onCreated != nil {
			onCreated(path)
		}
	}, window)
}

// ShowReplaceBaseForm opens the base-image replacement dialog. The
// replacement must keep the map's aspect ratio; on success every coordinate
// is rescaled to the new dimensions.
func ShowReplaceBaseForm(window fyne.Window, state *app.State) {
	cfg := state.Current()
	if cfg == nil {
		return
	}

	image := widget.NewEntry()
	image.SetPlaceHolder("replacement image filename")
	dims := widget.NewLabel(fmt.Sprintf("current: %d x %d", cfg.Width, cfg.Height))

	var width, height int
	image.OnChanged = func(name string) {
		width, height = 0, 0
		path, ok := state.Assets.Resolve(name)
		if !ok {
			dims.SetText("image not found in vault")
			return
		}
		state.Prober.Probe(path, func(w, h int, err error) {
			if err != nil {
				dims.SetText(fmt.Sprintf("unreadable: %v", err))
				return
			}
			width, height = w, h
			dims.SetText(fmt.Sprintf("new: %d x %d", w, h))
		})
	}

	items := []*widget.FormItem{
		widget.NewFormItem("Image", image),
		widget.NewFormItem("Dimensions", dims),
	}

	dialog.ShowForm("Replace Base Image", "Replace", "Cancel", items, func(ok bool) {
		if !ok {
			state.Prober.Invalidate()
			return
		}
		if width == 0 || height == 0 {
			dialog.ShowError(fmt.Errorf("a readable replacement image is required"), window)
			return
		}
		warning, err := state.ReplaceBaseImage(image.Text, width, height)
		if err != nil {
			dialog.ShowError(err, window)
			return
		}
		if warning != "" {
			dialog.ShowInformation("Coordinates Rescaled", warning, window)
		}
	}, window)
}
