package vault

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is the coalesced outcome of one or more filesystem events on a path.
type Op int

const (
	// Changed covers creation and modification; the file exists and should
	// be (re-)indexed.
	Changed Op = iota
	// Removed means the file is gone (deleted or renamed away).
	Removed
)

// Event is one coalesced filesystem change.
type Event struct {
	Path string
	Op   Op
}

// Watcher watches the vault tree and delivers batched change events. Raw
// notifications for the same path within the settle window are coalesced to
// a single event carrying the last state: an editor's create-write-rename
// save dance becomes one Changed, a create followed by a delete becomes
// nothing at all.
type Watcher struct {
	root    string
	settle  time.Duration
	deliver func([]Event)

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
}

// NewWatcher creates a watcher for the vault root. deliver is called from a
// background goroutine with each settled batch.
func NewWatcher(root string, settle time.Duration, deliver func([]Event)) *Watcher {
	return &Watcher{
		root:    root,
		settle:  settle,
		deliver: deliver,
		stopCh:  make(chan struct{}),
	}
}

// Start begins watching. Every directory under the root is registered;
// directories created later are picked up from their create events.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw

	err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != w.root {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
	if err != nil {
		fsw.Close()
		return err
	}

	go w.loop()
	return nil
}

// Stop stops the watcher goroutine and releases the OS watches.
func (w *Watcher) Stop() {
	close(w.stopCh)
}

func (w *Watcher) loop() {
	defer w.fsw.Close()

	pending := make(map[string]Op)
	var order []string
	var timer *time.Timer
	var fire <-chan time.Time

	flush := func() {
		batch := make([]Event, 0, len(order))
		for _, path := range order {
			batch = append(batch, Event{Path: path, Op: pending[path]})
		}
		pending = make(map[string]Op)
		order = nil
		fire = nil
		if len(batch) > 0 {
			w.deliver(batch)
		}
	}

	for {
		select {
		case <-w.stopCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op.Has(fsnotify.Create) {
				// New directories need their own watch before anything
				// inside them can be seen.
				w.maybeWatchDir(ev.Name)
			}
			op, relevant := classify(ev)
			if !relevant {
				continue
			}
			if _, seen := pending[ev.Name]; !seen {
				order = append(order, ev.Name)
			}
			pending[ev.Name] = op

			if timer == nil {
				timer = time.NewTimer(w.settle)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.settle)
			}
			fire = timer.C

		case <-fire:
			flush()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("vault: watch error: %v", err)
		}
	}
}

func (w *Watcher) maybeWatchDir(path string) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		// Plain file, or the create lost a race with a delete.
		return
	}
	if err := w.fsw.Add(path); err != nil {
		log.Printf("vault: cannot watch %s: %v", path, err)
	}
}

// classify maps a raw fsnotify event to a coalesced op. Chmod-only events
// carry no content change and are dropped.
func classify(ev fsnotify.Event) (Op, bool) {
	switch {
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		return Removed, true
	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		return Changed, true
	default:
		return 0, false
	}
}
