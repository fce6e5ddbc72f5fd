// Package assets resolves image references for the map subsystem: natural
// dimension probing for the rescale engine, the case-insensitive
// filename-to-path index, and scaled icon loading for pin markers.
package assets

import (
	"fmt"
	"image"
	"os"
	"sync"

	// Register decoders for every format a vault may contain. Probing and
	// loading both go through image.Decode*.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ProbeDimensions returns the natural pixel dimensions of an image file
// without decoding its pixels.
func ProbeDimensions(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("probe %s: %w", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("probe %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Prober runs dimension probes in the background and discards results that
// arrive after the UI context they were requested for has changed.
//
// Each Probe call supersedes the previous one; Invalidate supersedes without
// starting a new probe (e.g. when the form that asked is closed).
type Prober struct {
	mu  sync.Mutex
	gen int

	// probeFn is swapped out in tests.
	probeFn func(path string) (int, int, error)
}

// Probe reads the image's dimensions on a background goroutine and calls
// deliver with the result, unless a later Probe or Invalidate made this
// request stale. deliver runs off the UI thread; callers rejoin it
// themselves.
func (p *Prober) Probe(path string, deliver func(width, height int, err error)) {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	probe := p.probeFn
	if probe == nil {
		probe = ProbeDimensions
	}
	p.mu.Unlock()

	go func() {
		w, h, err := probe(path)

		p.mu.Lock()
		live := p.gen == gen
		p.mu.Unlock()
		if live {
			deliver(w, h, err)
		}
	}()
}

// Invalidate marks any in-flight probe as stale.
func (p *Prober) Invalidate() {
	p.mu.Lock()
	p.gen++
	p.mu.Unlock()
}
