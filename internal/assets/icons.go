package assets

import (
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
)

// IconCache loads pin icon images scaled to a marker size, caching by path
// and size so hover restyling never re-decodes.
type IconCache struct {
	mu    sync.Mutex
	icons map[iconKey]image.Image
}

type iconKey struct {
	path string
	size int
}

// NewIconCache creates an empty icon cache.
func NewIconCache() *IconCache {
	return &IconCache{icons: make(map[iconKey]image.Image)}
}

// Load returns the icon at path scaled to fit a size x size box, preserving
// aspect ratio.
func (c *IconCache) Load(path string, size int) (image.Image, error) {
	key := iconKey{path: path, size: size}

	c.mu.Lock()
	if img, ok := c.icons[key]; ok {
		c.mu.Unlock()
		return img, nil
	}
	c.mu.Unlock()

	src, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load icon %s: %w", path, err)
	}
	img := imaging.Fit(src, size, size, imaging.Lanczos)

	c.mu.Lock()
	c.icons[key] = img
	c.mu.Unlock()
	return img, nil
}

// Invalidate drops all cached entries for a path, e.g. after the file
// changed on disk.
func (c *IconCache) Invalidate(path string) {
	c.mu.Lock()
	for key := range c.icons {
		if key.path == path {
			delete(c.icons, key)
		}
	}
	c.mu.Unlock()
}
