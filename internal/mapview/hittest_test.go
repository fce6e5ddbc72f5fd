package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault-atlas/internal/mapdoc"
	"vault-atlas/pkg/geometry"
)

func square(id string, x, y, size float64) mapdoc.MapRegion {
	return mapdoc.MapRegion{
		ID:   id,
		Kind: mapdoc.RegionPolygon,
		Points: []geometry.Point2D{
			{X: x, Y: y},
			{X: x + size, Y: y},
			{X: x + size, Y: y + size},
			{X: x, Y: y + size},
		},
	}
}

func overlapConfig() *mapdoc.MapConfig {
	cfg := mapdoc.New("test", 1000, 500)
	inner := square("inner", 40, 40, 20)
	inner.Label = "Inner"
	inner.TargetPage = "Inner Page"
	outer := square("outer", 0, 0, 100)
	outer.Label = "Outer"
	outer.TargetPage = "Outer Page"
	cfg.Shapes = []mapdoc.MapRegion{inner, outer}
	return cfg
}

func TestClickOverlappingRegionsYieldsMenuInQueryOrder(t *testing.T) {
	c := NewController()
	res := c.Click(overlapConfig(), 50, 50, 1, false)

	require.Equal(t, ClickMenu, res.Kind)
	require.Len(t, res.Menu, 2)
	assert.Equal(t, "inner", res.Menu[0].RegionID)
	assert.Equal(t, NavTarget{Kind: NavPage, Title: "Inner Page"}, res.Menu[0].Target)
	assert.Equal(t, "outer", res.Menu[1].RegionID)
	assert.Equal(t, NavTarget{Kind: NavPage, Title: "Outer Page"}, res.Menu[1].Target)
}

func TestClickSingleRegion(t *testing.T) {
	cfg := mapdoc.New("test", 100, 100)
	r := square("r", 0, 0, 50)
	r.TargetMap = "Harbor"
	cfg.Shapes = []mapdoc.MapRegion{r}
	c := NewController()

	res := c.Click(cfg, 25, 25, 1, false)
	assert.Equal(t, ClickNavigate, res.Kind)
	assert.Equal(t, NavTarget{Kind: NavMap, Title: "Harbor"}, res.Target)

	// Miss: no-op.
	res = c.Click(cfg, 90, 90, 1, false)
	assert.Equal(t, ClickNone, res.Kind)
}

func TestClickRegionWithBothTargets(t *testing.T) {
	cfg := mapdoc.New("test", 100, 100)
	r := square("r", 0, 0, 50)
	r.TargetPage = "The Keep"
	r.TargetMap = "Keep Interior"
	cfg.Shapes = []mapdoc.MapRegion{r}

	res := NewController().Click(cfg, 25, 25, 1, false)
	require.Equal(t, ClickMenu, res.Kind)
	require.Len(t, res.Menu, 2)
	assert.Equal(t, NavPage, res.Menu[0].Target.Kind)
	assert.Equal(t, NavMap, res.Menu[1].Target.Kind)
}

func TestClickIgnoresTargetlessRegions(t *testing.T) {
	cfg := mapdoc.New("test", 100, 100)
	cfg.Shapes = []mapdoc.MapRegion{square("decor", 0, 0, 50)}

	res := NewController().Click(cfg, 25, 25, 1, false)
	assert.Equal(t, ClickNone, res.Kind)
}

func TestPinTakesPriorityOverRegions(t *testing.T) {
	// A 1000x500 map with a base layer, a pin at pixel (500,250), and a
	// region covering the same spot. The click arrives in renderer
	// coordinates and is converted before hit-testing.
	cfg := mapdoc.New("test", 1000, 500)
	cfg.Layers = []mapdoc.MapLayer{{ID: "base", Name: "Base", Image: "base.png", Opacity: 1, Visible: true}}
	cfg.Pins = []mapdoc.MapPin{{ID: "p", X: 500, Y: 250, TargetPage: "Harbor Town"}}
	r := square("under", 400, 150, 200)
	r.TargetPage = "Region Page"
	cfg.Shapes = []mapdoc.MapRegion{r}

	frame := NewFrame(float64(cfg.Width), float64(cfg.Height))
	click := frame.ToPixel(frame.ToRenderer(geometry.Point2D{X: 500, Y: 250}))

	c := NewController()
	hover := c.Hover(cfg, click.X, click.Y, 1, false)
	require.NotNil(t, hover.Pin)
	assert.Equal(t, "p", hover.Pin.ID)
	assert.Equal(t, []string{"Harbor Town"}, hover.Labels)
	assert.Empty(t, hover.ActiveIDs, "pin suppresses region highlights")

	res := c.Click(cfg, click.X, click.Y, 1, false)
	assert.Equal(t, ClickNavigate, res.Kind)
	assert.Equal(t, NavTarget{Kind: NavPage, Title: "Harbor Town"}, res.Target)
}

func TestPinHitRadiusScalesWithZoom(t *testing.T) {
	cfg := mapdoc.New("test", 100, 100)
	cfg.Pins = []mapdoc.MapPin{{ID: "p", X: 50, Y: 50, Label: "P"}}
	c := NewController()

	// 10 map pixels away: inside the 12px radius at zoom 1, outside at
	// zoom 2 where the radius shrinks to 6 map pixels.
	hover := c.Hover(cfg, 60, 50, 1, false)
	assert.NotNil(t, hover.Pin)
	hover = c.Hover(cfg, 60, 50, 2, false)
	assert.Nil(t, hover.Pin)
}

func TestGhostPinsHitOnlyWithConsoleOpen(t *testing.T) {
	cfg := mapdoc.New("test", 100, 100)
	cfg.Pins = []mapdoc.MapPin{{ID: "g", X: 50, Y: 50, Label: "Ghost", Invisible: true}}
	c := NewController()

	assert.Nil(t, c.Hover(cfg, 50, 50, 1, false).Pin)
	assert.NotNil(t, c.Hover(cfg, 50, 50, 1, true).Pin)
}

func TestPinOnHiddenLayerDoesNotHit(t *testing.T) {
	cfg := mapdoc.New("test", 100, 100)
	cfg.Layers = []mapdoc.MapLayer{{ID: "l", Name: "L", Visible: false}}
	cfg.Pins = []mapdoc.MapPin{
		{ID: "hidden", X: 50, Y: 50, LayerID: "l"},
		{ID: "dangling", X: 20, Y: 20, LayerID: "gone"},
	}
	c := NewController()

	assert.Nil(t, c.Hover(cfg, 50, 50, 1, false).Pin)
	assert.Nil(t, c.Hover(cfg, 20, 20, 1, false).Pin, "dangling layer reference hides the pin")
}

func TestHoverStates(t *testing.T) {
	cfg := overlapConfig()
	c := NewController()

	// Ambiguous: both labels, no preview.
	hover := c.Hover(cfg, 50, 50, 1, false)
	assert.Nil(t, hover.Pin)
	assert.Equal(t, []string{"Inner", "Outer"}, hover.Labels)
	assert.Nil(t, hover.Preview, "previews are suppressed for ambiguous matches")
	assert.Equal(t, []string{"inner", "outer"}, hover.ActiveIDs)
	assert.True(t, hover.ActiveChanged)

	// Single match with a target: preview anchored to the region.
	hover = c.Hover(cfg, 5, 5, 1, false)
	assert.Equal(t, []string{"Outer"}, hover.Labels)
	require.NotNil(t, hover.Preview)
	assert.Equal(t, NavTarget{Kind: NavPage, Title: "Outer Page"}, *hover.Preview)
	assert.Equal(t, "outer", hover.AnchorID)

	// Console open suppresses the preview but keeps the tooltip.
	hover = c.Hover(cfg, 5, 5, 1, true)
	assert.Equal(t, []string{"Outer"}, hover.Labels)
	assert.Nil(t, hover.Preview)

	// Miss clears everything.
	hover = c.Hover(cfg, 900, 400, 1, false)
	assert.Empty(t, hover.Labels)
	assert.Empty(t, hover.ActiveIDs)
}

func TestHoverActiveSetChangeDetection(t *testing.T) {
	cfg := overlapConfig()
	c := NewController()

	assert.True(t, c.Hover(cfg, 50, 50, 1, false).ActiveChanged)
	assert.False(t, c.Hover(cfg, 55, 55, 1, false).ActiveChanged, "same membership, no restyle")
	assert.True(t, c.Hover(cfg, 5, 5, 1, false).ActiveChanged, "leaving the inner region changes the set")
	assert.True(t, c.Hover(cfg, 900, 400, 1, false).ActiveChanged, "clearing is a change")
	assert.False(t, c.Hover(cfg, 901, 401, 1, false).ActiveChanged, "still empty")
}

func TestHoverPinPublishesActiveChange(t *testing.T) {
	cfg := mapdoc.New("test", 100, 100)
	cfg.Pins = []mapdoc.MapPin{{ID: "p", X: 50, Y: 50, Label: "P"}}
	c := NewController()

	assert.True(t, c.Hover(cfg, 50, 50, 1, false).ActiveChanged, "entering the pin from empty space restyles")
	assert.False(t, c.Hover(cfg, 52, 50, 1, false).ActiveChanged, "still the same pin")
	assert.True(t, c.Hover(cfg, 90, 90, 1, false).ActiveChanged, "leaving the pin clears the styling")
	assert.False(t, c.Hover(cfg, 91, 91, 1, false).ActiveChanged, "still empty")
}

func TestHoverPinRegionTransitions(t *testing.T) {
	cfg := overlapConfig()
	cfg.Pins = []mapdoc.MapPin{{ID: "p", X: 50, Y: 50, Label: "P"}}
	c := NewController()

	hover := c.Hover(cfg, 50, 50, 1, false)
	require.NotNil(t, hover.Pin)
	assert.True(t, hover.ActiveChanged)

	// Off the pin onto the outer region alone.
	hover = c.Hover(cfg, 5, 5, 1, false)
	assert.Nil(t, hover.Pin)
	assert.True(t, hover.ActiveChanged)

	// And back.
	assert.True(t, c.Hover(cfg, 50, 50, 1, false).ActiveChanged)
}

func TestControllerReset(t *testing.T) {
	cfg := overlapConfig()
	c := NewController()

	c.Hover(cfg, 50, 50, 1, false)
	assert.True(t, c.Reset(), "leaving the canvas clears the active set")
	assert.False(t, c.Reset(), "already empty")
	assert.True(t, c.Hover(cfg, 50, 50, 1, false).ActiveChanged, "re-entry restores the highlight")
}

func TestContextClick(t *testing.T) {
	cfg := overlapConfig()
	cfg.Pins = []mapdoc.MapPin{{ID: "p", X: 50, Y: 50, Label: "P"}}
	c := NewController()

	res := c.ContextClick(cfg, 50, 50, 1, false)
	assert.False(t, res.AddHere)
	require.Len(t, res.Entries, 3)
	assert.Equal(t, EntityPin, res.Entries[0].Kind, "pin listed first")
	assert.Equal(t, "inner", res.Entries[1].ID)
	assert.Equal(t, "outer", res.Entries[2].ID)

	// Targetless regions are still offered for editing.
	res = c.ContextClick(cfg, 5, 5, 1, false)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "outer", res.Entries[0].ID)

	// Empty spot invites creation.
	res = c.ContextClick(cfg, 900, 400, 1, false)
	assert.True(t, res.AddHere)
	assert.Empty(t, res.Entries)
}
