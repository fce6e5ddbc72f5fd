package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault-atlas/internal/assets"
	"vault-atlas/internal/mapdoc"
	"vault-atlas/internal/mapstore"
	"vault-atlas/internal/vault"
)

func newTestState(t *testing.T) (*State, string) {
	t.Helper()
	dir := t.TempDir()
	s := NewState(mapstore.NewStore(mapstore.OSFileIO{}), vault.NewIndex(dir), assets.NewIndex())
	return s, dir
}

func writeTestMap(t *testing.T, path string, cfg *mapdoc.MapConfig) {
	t.Helper()
	data, err := mapdoc.Encode(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestOpenMapEmitsAndSetsCurrent(t *testing.T) {
	s, dir := newTestState(t)
	path := filepath.Join(dir, "west.map.json")
	writeTestMap(t, path, mapdoc.New("Westmarch", 1000, 500))

	var opened *mapdoc.MapConfig
	s.On(EventMapOpened, func(data interface{}) {
		opened = data.(*mapdoc.MapConfig)
	})

	require.NoError(t, s.OpenMap(path))
	require.NotNil(t, opened)
	assert.Equal(t, "Westmarch", opened.Title)
	assert.Same(t, opened, s.Current())
}

func TestUpdateMapReplacesCurrentAndPersists(t *testing.T) {
	s, dir := newTestState(t)
	path := filepath.Join(dir, "west.map.json")
	writeTestMap(t, path, mapdoc.New("Westmarch", 1000, 500))
	require.NoError(t, s.OpenMap(path))

	before := s.Current()
	var updated *mapdoc.MapConfig
	s.On(EventMapUpdated, func(data interface{}) {
		updated = data.(*mapdoc.MapConfig)
	})

	require.NoError(t, s.UpdateMap(func(c *mapdoc.MapConfig) *mapdoc.MapConfig {
		c.Pins = append(c.Pins, mapdoc.MapPin{ID: "p", X: 1, Y: 2})
		return c
	}))

	require.NotNil(t, updated)
	assert.NotSame(t, before, updated, "configs are replaced, not edited in place")
	assert.Same(t, updated, s.Current())
	assert.Len(t, before.Pins, 0)

	// The queued write lands on disk.
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		cfg, err := mapdoc.Decode(data)
		return err == nil && len(cfg.Pins) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUpdateMapWithoutOpenMap(t *testing.T) {
	s, _ := newTestState(t)
	err := s.UpdateMap(func(c *mapdoc.MapConfig) *mapdoc.MapConfig { return c })
	assert.Error(t, err)
}

func TestCreateMap(t *testing.T) {
	s, dir := newTestState(t)

	path, err := s.CreateMap(dir, "Sunken Isles", "isles.png", 800, 600)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sunken-isles.map.json"), path)

	cfg := s.Current()
	require.NotNil(t, cfg)
	assert.Equal(t, "Sunken Isles", cfg.Title)
	require.NotNil(t, cfg.BaseLayer())
	assert.Equal(t, "isles.png", cfg.BaseLayer().Image)

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	// The fresh map is immediately resolvable by title.
	got, ok := s.Vault.ResolveMap("sunken isles")
	assert.True(t, ok)
	assert.Equal(t, path, got)
}

func TestReplaceBaseImageRescales(t *testing.T) {
	s, dir := newTestState(t)
	cfg := mapdoc.New("Westmarch", 1000, 500)
	cfg.Layers = []mapdoc.MapLayer{{ID: "base", Name: "Base", Image: "old.png", Opacity: 1, Visible: true}}
	cfg.Pins = []mapdoc.MapPin{{ID: "p", X: 100, Y: 100}}
	path := filepath.Join(dir, "west.map.json")
	writeTestMap(t, path, cfg)
	require.NoError(t, s.OpenMap(path))

	// Wrong aspect ratio blocks.
	_, err := s.ReplaceBaseImage("new.png", 2000, 900)
	require.Error(t, err)
	assert.Equal(t, "old.png", s.Current().BaseLayer().Image)

	warning, err := s.ReplaceBaseImage("new.png", 2000, 1000)
	require.NoError(t, err)
	assert.NotEmpty(t, warning, "doubling the size warns")

	current := s.Current()
	assert.Equal(t, 2000, current.Width)
	assert.Equal(t, "new.png", current.BaseLayer().Image)
	assert.Equal(t, 200, current.Pins[0].X)
}

func TestNavigation(t *testing.T) {
	s, dir := newTestState(t)
	pagePath := filepath.Join(dir, "Harbor.md")
	require.NoError(t, os.WriteFile(pagePath, []byte("# Harbor\n"), 0644))
	mapPath := filepath.Join(dir, "isles.map.json")
	writeTestMap(t, mapPath, mapdoc.New("The Isles", 100, 100))
	require.NoError(t, s.Vault.Scan())

	var navigated string
	var missing string
	s.On(EventNavigatePage, func(data interface{}) { navigated = data.(string) })
	s.On(EventTargetMissing, func(data interface{}) { missing = data.(string) })

	s.NavigatePage("harbor")
	assert.Equal(t, pagePath, navigated)

	s.NavigateMap("the isles")
	require.NotNil(t, s.Current())
	assert.Equal(t, "The Isles", s.Current().Title)

	s.NavigatePage("nowhere")
	assert.Contains(t, missing, "nowhere")
}

func TestConsoleAndHighlightEvents(t *testing.T) {
	s, _ := newTestState(t)

	toggles := 0
	highlights := 0
	s.On(EventConsoleToggled, func(interface{}) { toggles++ })
	s.On(EventHighlightChanged, func(interface{}) { highlights++ })

	s.SetConsoleOpen(true)
	s.SetConsoleOpen(true)
	s.SetConsoleOpen(false)
	assert.Equal(t, 2, toggles, "redundant toggles are swallowed")

	s.SetHighlight("a", "b")
	s.SetHighlight("b", "a")
	s.SetHighlight("a")
	s.SetHighlight()
	assert.Equal(t, 3, highlights, "only membership changes are published")
	assert.True(t, s.ConsoleOpen() == false)
}

func TestAbsorbVaultEvents(t *testing.T) {
	s, dir := newTestState(t)
	mapPath := filepath.Join(dir, "new.map.json")
	writeTestMap(t, mapPath, mapdoc.New("Fresh", 10, 10))

	changed := false
	s.On(EventVaultChanged, func(interface{}) { changed = true })

	s.AbsorbVaultEvents([]vault.Event{{Path: mapPath, Op: vault.Changed}})
	assert.True(t, changed)
	_, ok := s.Vault.ResolveMap("fresh")
	assert.True(t, ok)

	s.AbsorbVaultEvents([]vault.Event{{Path: mapPath, Op: vault.Removed}})
	_, ok = s.Vault.ResolveMap("fresh")
	assert.False(t, ok)
}
