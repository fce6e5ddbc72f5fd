// Package vault indexes the note vault surrounding the maps: which pages and
// maps exist, and how wiki-style titles resolve to files on disk. Pin and
// region targets reference pages and maps by title, never by path, so every
// navigation goes through this index.
package vault

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"vault-atlas/internal/mapdoc"
)

// MapEntry describes one map file found in the vault.
type MapEntry struct {
	Title string
	Path  string
}

// Index resolves page and map titles to vault paths. Titles are matched
// case-insensitively; a page's title is its filename without the .md
// extension, a map's title comes from the config itself.
type Index struct {
	mu    sync.RWMutex
	root  string
	pages map[string]string // lowercased title -> path
	maps  map[string]MapEntry
}

// NewIndex creates an empty index rooted at the vault directory.
func NewIndex(root string) *Index {
	return &Index{
		root:  root,
		pages: make(map[string]string),
		maps:  make(map[string]MapEntry),
	}
}

// Root returns the vault root directory.
func (ix *Index) Root() string {
	return ix.root
}

// Scan walks the vault and rebuilds both title tables. Dot-directories are
// skipped. Map files that fail to decode are logged and left out; a broken
// file should not take the rest of the vault down with it.
func (ix *Index) Scan() error {
	pages := make(map[string]string)
	maps := make(map[string]MapEntry)

	err := filepath.WalkDir(ix.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != ix.root {
				return filepath.SkipDir
			}
			return nil
		}
		switch {
		case strings.HasSuffix(path, mapdoc.FileExtension):
			if entry, ok := readMapEntry(path); ok {
				maps[strings.ToLower(entry.Title)] = entry
			}
		case strings.EqualFold(filepath.Ext(path), ".md"):
			title := pageTitle(path)
			pages[strings.ToLower(title)] = path
		}
		return nil
	})
	if err != nil {
		return err
	}

	ix.mu.Lock()
	ix.pages = pages
	ix.maps = maps
	ix.mu.Unlock()
	return nil
}

// Update re-indexes a single file after it was created or modified.
func (ix *Index) Update(path string) {
	switch {
	case strings.HasSuffix(path, mapdoc.FileExtension):
		entry, ok := readMapEntry(path)
		if !ok {
			return
		}
		ix.mu.Lock()
		// The file may have been renamed inside the config; drop any stale
		// title still pointing at this path.
		for key, old := range ix.maps {
			if old.Path == path && key != strings.ToLower(entry.Title) {
				delete(ix.maps, key)
			}
		}
		ix.maps[strings.ToLower(entry.Title)] = entry
		ix.mu.Unlock()
	case strings.EqualFold(filepath.Ext(path), ".md"):
		ix.mu.Lock()
		ix.pages[strings.ToLower(pageTitle(path))] = path
		ix.mu.Unlock()
	}
}

// Forget drops the entries for a path after the file was removed.
func (ix *Index) Forget(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for key, p := range ix.pages {
		if p == path {
			delete(ix.pages, key)
		}
	}
	for key, entry := range ix.maps {
		if entry.Path == path {
			delete(ix.maps, key)
		}
	}
}

// ResolvePage returns the path of the page with the given title.
func (ix *Index) ResolvePage(title string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	path, ok := ix.pages[strings.ToLower(title)]
	return path, ok
}

// ResolveMap returns the path of the map with the given title.
func (ix *Index) ResolveMap(title string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	entry, ok := ix.maps[strings.ToLower(title)]
	return entry.Path, ok
}

// Maps returns every indexed map, sorted by title.
func (ix *Index) Maps() []MapEntry {
	ix.mu.RLock()
	entries := make([]MapEntry, 0, len(ix.maps))
	for _, e := range ix.maps {
		entries = append(entries, e)
	}
	ix.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Title) < strings.ToLower(entries[j].Title)
	})
	return entries
}

func pageTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readMapEntry(path string) (MapEntry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("vault: skipping unreadable map %s: %v", path, err)
		return MapEntry{}, false
	}
	cfg, err := mapdoc.Decode(data)
	if err != nil {
		log.Printf("vault: skipping malformed map %s: %v", path, err)
		return MapEntry{}, false
	}
	title := cfg.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), mapdoc.FileExtension)
	}
	return MapEntry{Title: title, Path: path}, true
}
