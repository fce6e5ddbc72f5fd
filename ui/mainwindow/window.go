// Package mainwindow provides the main application window: the map canvas,
// the management console, the menus, and the glue between pointer gestures
// and the map subsystem.
package mainwindow

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"vault-atlas/internal/app"
	"vault-atlas/internal/mapdoc"
	"vault-atlas/internal/mapview"
	"vault-atlas/pkg/geometry"
	"vault-atlas/ui/canvas"
	"vault-atlas/ui/panels"
	"vault-atlas/ui/prefs"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs

	canvas  *canvas.MapCanvas
	console *panels.Console
	sync    *mapview.Synchronizer
	hits    *mapview.Controller
	drawing *mapview.Drawing

	statusBar *widget.Label
	split     *container.Split

	// showGhost mirrors the persisted ghost-pin visibility preference.
	showGhost bool
}

// New creates the main window and wires all subsystems together.
func New(fyneApp fyne.App, state *app.State, preferences *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Vault Atlas")

	mw := &MainWindow{
		Window:    win,
		app:       fyneApp,
		state:     state,
		prefs:     preferences,
		hits:      mapview.NewController(),
		showGhost: preferences.Bool(prefs.KeyShowHidden, false),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupGestures()
	mw.setupEventHandlers()

	win.Resize(fyne.NewSize(
		float32(preferences.Float(prefs.KeyWindowW, 1200)),
		float32(preferences.Float(prefs.KeyWindowH, 800)),
	))
	return mw
}

func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewMapCanvas(mw.state.Assets, mw.state.Icons)
	mw.sync = mapview.NewSynchronizer(mw.canvas)
	mw.console = panels.NewConsole(mw.state, mw.Window)

	mw.drawing = mapview.NewDrawing(mapview.DrawingHooks{
		SetZoomEnabled: mw.canvas.SetZoomEnabled,
		CloseConsole:   func() { mw.state.SetConsoleOpen(false) },
		Preview:        mw.showDraftPreview,
	})

	mw.statusBar = widget.NewLabel("No map open")

	toolbar := container.NewHBox(
		widget.NewButton("-", mw.canvas.ZoomOut),
		widget.NewButton("+", mw.canvas.ZoomIn),
		widget.NewButton("Fit", mw.canvas.FitToView),
		widget.NewButton("Console", func() {
			mw.state.SetConsoleOpen(!mw.state.ConsoleOpen())
		}),
	)

	canvasArea := container.NewBorder(toolbar, nil, nil, nil, mw.canvas.Container())
	mw.split = container.NewHSplit(mw.console.Widget(), canvasArea)
	mw.split.SetOffset(0)

	content := container.NewBorder(nil, container.NewPadded(mw.statusBar), nil, nil, mw.split)
	mw.SetContent(content)
}

func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Map...", func() {
			panels.ShowNewMapForm(mw.Window, mw.state, mw.state.Vault.Root(), func(path string) {
				mw.prefs.SetString(prefs.KeyLastMap, path)
			})
		}),
		fyne.NewMenuItem("Open Map...", mw.showOpenMap),
		fyne.NewMenuItem("Replace Base Image...", func() {
			panels.ShowReplaceBaseForm(mw.Window, mw.state)
		}),
	)
	ghostItem := fyne.NewMenuItem("Show Ghost Pins", nil)
	ghostItem.Checked = mw.showGhost
	ghostItem.Action = func() {
		mw.showGhost = !mw.showGhost
		ghostItem.Checked = mw.showGhost
		mw.prefs.SetBool(prefs.KeyShowHidden, mw.showGhost)
		mw.MainMenu().Refresh()
		mw.resync()
	}
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Toggle Console", func() {
			mw.state.SetConsoleOpen(!mw.state.ConsoleOpen())
		}),
		ghostItem,
		fyne.NewMenuItem("Fit To Window", mw.canvas.FitToView),
	)
	drawMenu := fyne.NewMenu("Draw",
		fyne.NewMenuItem("Start Region", mw.startDrawing),
		fyne.NewMenuItem("Cancel", func() { mw.drawing.Cancel() }),
	)
	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, drawMenu))
}

func (mw *MainWindow) setupGestures() {
	mw.canvas.OnHover(mw.onHover)
	mw.canvas.OnHoverOut(func() {
		if mw.hits.Reset() {
			mw.state.SetHighlight()
		}
		mw.setStatus("")
	})
	mw.canvas.OnTap(mw.onTap)
	mw.canvas.OnSecondaryTap(mw.onSecondaryTap)
	mw.canvas.OnDoubleTap(mw.onDoubleTap)
}

func (mw *MainWindow) setupEventHandlers() {
	resync := func(interface{}) { mw.resync() }
	mw.state.On(app.EventMapOpened, func(data interface{}) {
		cfg := data.(*mapdoc.MapConfig)
		mw.setStatus(fmt.Sprintf("Opened %s (%dx%d)", cfg.Title, cfg.Width, cfg.Height))
		mw.resync()
	})
	mw.state.On(app.EventMapUpdated, resync)
	mw.state.On(app.EventHighlightChanged, resync)
	mw.state.On(app.EventConsoleToggled, func(data interface{}) {
		open := data.(bool)
		if open {
			mw.split.SetOffset(0.25)
		} else {
			mw.split.SetOffset(0)
		}
		mw.resync()
	})
	mw.state.On(app.EventWriteFailed, func(data interface{}) {
		err := data.(error)
		dialog.ShowError(fmt.Errorf("saving the map failed, the changes on screen are not on disk: %w", err), mw.Window)
	})
	mw.state.On(app.EventTargetMissing, func(data interface{}) {
		dialog.ShowInformation("Not Found", data.(string), mw.Window)
	})
	mw.state.On(app.EventNavigatePage, func(data interface{}) {
		// Page display belongs to the host application; surface the
		// resolved path until one is attached.
		mw.setStatus("Open page: " + data.(string))
	})
}

// resync drives one idempotent render pass from the live state.
func (mw *MainWindow) resync() {
	cfg := mw.state.Current()
	if cfg == nil {
		return
	}
	mw.sync.Sync(cfg, mapview.ViewState{
		ConsoleOpen: mw.state.ConsoleOpen(),
		ShowGhost:   mw.showGhost,
		Highlighted: mw.state.Highlighted(),
	})
	mw.canvas.Refresh()
}

func (mw *MainWindow) onHover(x, y float64) {
	cfg := mw.state.Current()
	if cfg == nil || mw.drawing.Active() {
		return
	}
	hover := mw.hits.Hover(cfg, x, y, mw.canvas.Zoom(), mw.state.ConsoleOpen())
	if hover.ActiveChanged {
		ids := hover.ActiveIDs
		if hover.Pin != nil {
			ids = []string{hover.Pin.ID}
		}
		mw.state.SetHighlight(ids...)
	}

	switch {
	case len(hover.Labels) == 0:
		mw.setStatus("")
	case hover.Preview != nil:
		mw.setStatus(mw.previewText(hover.Labels[0], *hover.Preview))
	default:
		mw.setStatus(strings.Join(hover.Labels, " | "))
	}
}

// previewText resolves a hover preview target through the vault index so
// the user sees where the click would go, or that it goes nowhere.
func (mw *MainWindow) previewText(label string, target mapview.NavTarget) string {
	var resolved bool
	switch target.Kind {
	case mapview.NavPage:
		_, resolved = mw.state.Vault.ResolvePage(target.Title)
	case mapview.NavMap:
		_, resolved = mw.state.Vault.ResolveMap(target.Title)
	}
	if !resolved {
		return fmt.Sprintf("%s  →  %s (not found)", label, target.Title)
	}
	return fmt.Sprintf("%s  →  %s", label, target.Title)
}

func (mw *MainWindow) onTap(x, y float64) {
	cfg := mw.state.Current()
	if cfg == nil {
		return
	}
	if mw.drawing.Active() {
		frame := mapview.NewFrame(float64(cfg.Width), float64(cfg.Height))
		mw.drawing.AddPoint(frame.ToRenderer(geometry.Point2D{X: x, Y: y}))
		return
	}

	res := mw.hits.Click(cfg, x, y, mw.canvas.Zoom(), mw.state.ConsoleOpen())
	switch res.Kind {
	case mapview.ClickNavigate:
		mw.navigate(res.Target)
	case mapview.ClickMenu:
		items := make([]*fyne.MenuItem, 0, len(res.Menu))
		for _, entry := range res.Menu {
			target := entry.Target
			label := fmt.Sprintf("%s → %s", entry.Label, target.Title)
			items = append(items, fyne.NewMenuItem(label, func() {
				mw.navigate(target)
			}))
		}
		mw.popUpMenu(fyne.NewMenu("Go to", items...))
	}
}

func (mw *MainWindow) onSecondaryTap(x, y float64) {
	cfg := mw.state.Current()
	if cfg == nil || mw.drawing.Active() {
		return
	}

	res := mw.hits.ContextClick(cfg, x, y, mw.canvas.Zoom(), mw.state.ConsoleOpen())
	var items []*fyne.MenuItem
	if res.AddHere {
		px, py := int(x+0.5), int(y+0.5)
		items = append(items,
			fyne.NewMenuItem("Add Pin Here", func() {
				panels.ShowNewPinForm(mw.Window, mw.state, px, py)
			}),
			fyne.NewMenuItem("Start Drawing", mw.startDrawing),
		)
	} else {
		for _, entry := range res.Entries {
			id, label := entry.ID, entry.Label
			items = append(items,
				fyne.NewMenuItem("Edit "+label, func() {
					mw.console.EditByID(id)
				}),
				fyne.NewMenuItem("Delete "+label, func() {
					mw.console.DeleteByID(id, label)
				}),
			)
		}
	}
	mw.popUpMenu(fyne.NewMenu("Annotations", items...))
}

func (mw *MainWindow) onDoubleTap(x, y float64) {
	if !mw.drawing.Active() {
		return
	}
	draft, ok := mw.drawing.Finish()
	if !ok {
		return
	}
	panels.ShowRegionForm(mw.Window, mw.state, draft, true)
}

func (mw *MainWindow) startDrawing() {
	cfg := mw.state.Current()
	if cfg == nil {
		return
	}
	mw.drawing.Start(mapview.NewFrame(float64(cfg.Width), float64(cfg.Height)))
	mw.setStatus("Drawing: click to add vertices, double-click to finish")
}

// showDraftPreview converts the drawing machine's renderer-space polyline
// back to image coordinates for the canvas overlay.
func (mw *MainWindow) showDraftPreview(points []geometry.Point2D) {
	cfg := mw.state.Current()
	if cfg == nil || points == nil {
		mw.canvas.SetDraft(nil)
		return
	}
	frame := mapview.NewFrame(float64(cfg.Width), float64(cfg.Height))
	pixels := make([]geometry.Point2D, len(points))
	for i, p := range points {
		pixels[i] = frame.ToPixel(p)
	}
	mw.canvas.SetDraft(pixels)
}

func (mw *MainWindow) navigate(target mapview.NavTarget) {
	switch target.Kind {
	case mapview.NavPage:
		mw.state.NavigatePage(target.Title)
	case mapview.NavMap:
		mw.state.NavigateMap(target.Title)
		mw.prefs.SetString(prefs.KeyLastMap, mw.state.CurrentPath)
	}
}

// showOpenMap lists every map in the vault.
func (mw *MainWindow) showOpenMap() {
	entries := mw.state.Vault.Maps()
	if len(entries) == 0 {
		dialog.ShowInformation("No Maps", "The vault contains no map files.", mw.Window)
		return
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Title
	}
	sel := widget.NewSelect(names, nil)
	sel.SetSelectedIndex(0)

	dialog.ShowForm("Open Map", "Open", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Map", sel)},
		func(ok bool) {
			if !ok || sel.SelectedIndex() < 0 {
				return
			}
			path := entries[sel.SelectedIndex()].Path
			if err := mw.state.OpenMap(path); err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			mw.prefs.SetString(prefs.KeyLastMap, path)
		}, mw.Window)
}

func (mw *MainWindow) popUpMenu(menu *fyne.Menu) {
	pos := fyne.CurrentApp().Driver().AbsolutePositionForObject(mw.canvas.Container())
	widget.ShowPopUpMenuAtPosition(menu, mw.Canvas(), pos)
}

func (mw *MainWindow) setStatus(text string) {
	if text == "" {
		text = "Ready"
	}
	mw.statusBar.SetText(text)
}
