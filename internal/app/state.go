// Package app wires the map subsystem together: the shared application
// state, the event bus the UI panels subscribe to, and the high-level
// operations (open, navigate, mutate, rescale) the windows invoke.
package app

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"vault-atlas/internal/assets"
	"vault-atlas/internal/mapdoc"
	"vault-atlas/internal/mapstore"
	"vault-atlas/internal/vault"
)

// EventType identifies application events.
type EventType int

const (
	// EventMapOpened fires with the opened *mapdoc.MapConfig after a map
	// becomes current.
	EventMapOpened EventType = iota
	// EventMapUpdated fires with the new *mapdoc.MapConfig after any
	// mutation of the current map.
	EventMapUpdated
	// EventWriteFailed fires with an error when a queued disk write for
	// the current map fails. The on-screen state is kept.
	EventWriteFailed
	// EventConsoleToggled fires with the new bool state.
	EventConsoleToggled
	// EventHighlightChanged fires with the new highlight id set
	// (map[string]bool) when membership changes.
	EventHighlightChanged
	// EventNavigatePage fires with the absolute path of a page the user
	// navigated to; the host application opens it.
	EventNavigatePage
	// EventTargetMissing fires with a user-facing message when a
	// navigation target cannot be resolved.
	EventTargetMissing
	// EventVaultChanged fires after the vault index absorbed filesystem
	// changes.
	EventVaultChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State is the shared application state: the configuration store, the vault
// and asset indexes, and which map is currently open.
type State struct {
	mu sync.RWMutex

	Store  *mapstore.Store
	Vault  *vault.Index
	Assets *assets.Index
	Icons  *assets.IconCache
	Prober *assets.Prober

	// CurrentPath is the normalized path of the open map, empty when no
	// map is open.
	CurrentPath string

	consoleOpen bool
	highlighted map[string]bool

	listeners map[EventType][]EventListener
}

// NewState creates the application state around its collaborators.
func NewState(store *mapstore.Store, vaultIx *vault.Index, assetIx *assets.Index) *State {
	return &State{
		Store:       store,
		Vault:       vaultIx,
		Assets:      assetIx,
		Icons:       assets.NewIconCache(),
		Prober:      &assets.Prober{},
		highlighted: make(map[string]bool),
		listeners:   make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// OpenMap loads the map at path and makes it current.
func (s *State) OpenMap(path string) error {
	cfg, err := s.Store.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.CurrentPath = mapstore.Normalize(path)
	s.highlighted = make(map[string]bool)
	s.mu.Unlock()

	s.Emit(EventMapOpened, cfg)
	return nil
}

// Current returns the live cached config of the open map, or nil. Always
// re-read through this method after mutations; configs are replaced, never
// edited in place.
func (s *State) Current() *mapdoc.MapConfig {
	s.mu.RLock()
	path := s.CurrentPath
	s.mu.RUnlock()
	if path == "" {
		return nil
	}
	cfg, ok := s.Store.Get(path)
	if !ok {
		return nil
	}
	return cfg
}

// UpdateMap applies a transform to the current map. The cache and the UI
// update immediately; the disk write settles in the background and reports
// failure through EventWriteFailed.
func (s *State) UpdateMap(transform mapstore.Transform) error {
	s.mu.RLock()
	path := s.CurrentPath
	s.mu.RUnlock()
	if path == "" {
		return fmt.Errorf("no map open")
	}

	return s.UpdateAt(path, transform)
}

// CreateMap builds a fresh map file with a single base layer, registers it
// in the store, queues its first write, and opens it.
func (s *State) CreateMap(dir, title, image string, width, height int) (string, error) {
	cfg := mapdoc.New(title, width, height)
	cfg.Layers = []mapdoc.MapLayer{{
		ID:      "base",
		Name:    "Base",
		Image:   image,
		Opacity: 1,
		Visible: true,
	}}

	name := strings.ToLower(strings.ReplaceAll(title, " ", "-")) + mapdoc.FileExtension
	path := filepath.Join(dir, name)
	s.Store.Register(path, cfg)
	s.Vault.Update(path)

	if err := s.UpdateAt(path, func(c *mapdoc.MapConfig) *mapdoc.MapConfig { return c }); err != nil {
		return "", err
	}
	if err := s.OpenMap(path); err != nil {
		return "", err
	}
	return path, nil
}

// UpdateAt is UpdateMap for an explicit path, used when mutating a map that
// is not current (e.g. retargeting from the console).
func (s *State) UpdateAt(path string, transform mapstore.Transform) error {
	res, err := s.Store.Update(path, transform)
	if err != nil {
		return err
	}
	s.mu.RLock()
	current := s.CurrentPath == mapstore.Normalize(path)
	s.mu.RUnlock()
	if current {
		s.Emit(EventMapUpdated, res.Config)
	}

	go func() {
		if err := <-res.Done; err != nil {
			log.Printf("app: write failed for %s: %v", path, err)
			s.Emit(EventWriteFailed, err)
		}
	}()
	return nil
}

// ReplaceBaseImage validates the aspect ratio of a replacement base image
// and, if it passes, rescales every coordinate in the current map. The
// returned warning is non-empty when the scale change is large enough to be
// worth telling the user about.
func (s *State) ReplaceBaseImage(image string, newWidth, newHeight int) (string, error) {
	cfg := s.Current()
	if cfg == nil {
		return "", fmt.Errorf("no map open")
	}
	if cfg.BaseLayer() == nil {
		return "", mapdoc.ErrNoBaseLayer
	}
	scale, warning, err := mapdoc.ValidateReplacement(cfg.Width, cfg.Height, newWidth, newHeight)
	if err != nil {
		return "", err
	}

	err = s.UpdateMap(func(c *mapdoc.MapConfig) *mapdoc.MapConfig {
		out := mapdoc.Rescale(c, scale, newWidth, newHeight)
		if base := out.BaseLayer(); base != nil {
			base.Image = image
		}
		return out
	})
	return warning, err
}

// NavigatePage resolves a page title and announces the navigation, or a
// not-found notice.
func (s *State) NavigatePage(title string) {
	path, ok := s.Vault.ResolvePage(title)
	if !ok {
		s.Emit(EventTargetMissing, fmt.Sprintf("Page %q not found in vault", title))
		return
	}
	s.Emit(EventNavigatePage, path)
}

// NavigateMap resolves a map title and opens it.
func (s *State) NavigateMap(title string) {
	path, ok := s.Vault.ResolveMap(title)
	if !ok {
		s.Emit(EventTargetMissing, fmt.Sprintf("Map %q not found in vault", title))
		return
	}
	if err := s.OpenMap(path); err != nil {
		s.Emit(EventTargetMissing, fmt.Sprintf("Map %q could not be loaded: %v", title, err))
	}
}

// ConsoleOpen reports whether the management console is open.
func (s *State) ConsoleOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.consoleOpen
}

// SetConsoleOpen toggles the management console and notifies listeners.
func (s *State) SetConsoleOpen(open bool) {
	s.mu.Lock()
	changed := s.consoleOpen != open
	s.consoleOpen = open
	s.mu.Unlock()
	if changed {
		s.Emit(EventConsoleToggled, open)
	}
}

// Highlighted returns the current highlight id set. The returned map is
// shared; treat it as read-only.
func (s *State) Highlighted() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highlighted
}

// SetHighlight replaces the highlight set, notifying listeners only when
// membership actually changes.
func (s *State) SetHighlight(ids ...string) {
	next := make(map[string]bool, len(ids))
	for _, id := range ids {
		next[id] = true
	}

	s.mu.Lock()
	same := len(next) == len(s.highlighted)
	if same {
		for id := range next {
			if !s.highlighted[id] {
				same = false
				break
			}
		}
	}
	if !same {
		s.highlighted = next
	}
	s.mu.Unlock()

	if !same {
		s.Emit(EventHighlightChanged, next)
	}
}

// AbsorbVaultEvents applies a settled batch of filesystem changes to the
// vault and asset indexes.
func (s *State) AbsorbVaultEvents(batch []vault.Event) {
	for _, ev := range batch {
		switch ev.Op {
		case vault.Changed:
			s.Vault.Update(ev.Path)
			s.Assets.Add(ev.Path)
			s.Icons.Invalidate(ev.Path)
		case vault.Removed:
			s.Vault.Forget(ev.Path)
			s.Assets.Remove(ev.Path)
			s.Icons.Invalidate(ev.Path)
		}
	}
	s.Emit(EventVaultChanged, batch)
}
