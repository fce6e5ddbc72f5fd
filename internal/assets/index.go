package assets

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsImageFile reports whether the path has a supported image extension.
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Index maps bare image filenames to absolute paths, case-insensitively.
// Map layers and pin icons reference images by filename only; the index
// turns those references into loadable paths. Unresolvable references are
// the caller's concern (the renderer skips them silently).
type Index struct {
	mu     sync.RWMutex
	byName map[string]string
}

// NewIndex creates an empty asset index.
func NewIndex() *Index {
	return &Index{byName: make(map[string]string)}
}

// Scan walks the root directory and indexes every image file found.
// Previously indexed entries are discarded.
func (ix *Index) Scan(root string) error {
	fresh := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if IsImageFile(path) {
			fresh[strings.ToLower(d.Name())] = path
		}
		return nil
	})
	if err != nil {
		return err
	}

	ix.mu.Lock()
	ix.byName = fresh
	ix.mu.Unlock()
	return nil
}

// Add indexes a single image file, replacing any same-named entry.
func (ix *Index) Add(path string) {
	if !IsImageFile(path) {
		return
	}
	ix.mu.Lock()
	ix.byName[strings.ToLower(filepath.Base(path))] = path
	ix.mu.Unlock()
}

// Remove drops the entry for the given path, if it is the indexed one.
func (ix *Index) Remove(path string) {
	key := strings.ToLower(filepath.Base(path))
	ix.mu.Lock()
	if ix.byName[key] == path {
		delete(ix.byName, key)
	}
	ix.mu.Unlock()
}

// Resolve returns the absolute path for an image filename. The lookup is
// case-insensitive and ignores any directory components in name.
func (ix *Index) Resolve(name string) (string, bool) {
	key := strings.ToLower(filepath.Base(name))
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	path, ok := ix.byName[key]
	return path, ok
}

// Len returns the number of indexed images.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byName)
}
