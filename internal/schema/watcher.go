package schema

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ChangeHandler is called with the source id of a changed ER file.
type ChangeHandler func(sourceID string)

// FileWatcher reports edits to watched ER project files.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	onChange ChangeHandler
	mu       sync.RWMutex
	watching map[string]string // abs path -> source id
}

func NewFileWatcher(onChange ChangeHandler) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &FileWatcher{
		watcher:  watcher,
		onChange: onChange,
		watching: make(map[string]string),
	}
	go w.watchLoop()
	return w, nil
}

// Watch starts reporting changes of path as sourceID.
func (w *FileWatcher) Watch(sourceID, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.watching[absPath] = sourceID
	w.mu.Unlock()

	// Editors often save by rename, so watch the directory.
	return w.watcher.Add(filepath.Dir(absPath))
}

// Unwatch stops reporting changes for sourceID.
func (w *FileWatcher) Unwatch(sourceID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, id := range w.watching {
		if id == sourceID {
			delete(w.watching, path)
		}
	}
}

func (w *FileWatcher) Close() error {
	return w.watcher.Close()
}

func (w *FileWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			w.mu.RLock()
			sourceID, watched := w.watching[absPath]
			w.mu.RUnlock()
			if watched && w.onChange != nil {
				w.onChange(sourceID)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[schema] watcher error: %v", err)
		}
	}
}
