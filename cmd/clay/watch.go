package main

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events an editor save produces
const reloadDelay = 200 * time.Millisecond

// scriptWatcher reports writes to the autoload scripts as reloadEvents.
// Directories are watched rather than files so renames on save are seen.
type scriptWatcher struct {
	w     *fsnotify.Watcher
	files map[string]bool
	done  chan struct{}
}

func newScriptWatcher(paths []string) (*scriptWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	sw := &scriptWatcher{w: w, files: make(map[string]bool), done: make(chan struct{})}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		sw.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
		dirs[dir] = true
	}
	return sw, nil
}

// run forwards changes until Close; each file is reported once per burst
func (sw *scriptWatcher) run(events chan<- event, logf func(string, ...interface{})) {
	changed := make(map[string]bool)
	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	for {
		select {
		case <-sw.done:
			return
		case ev, more := <-sw.w.Events:
			if !more {
				return
			}
			if !sw.files[filepath.Clean(ev.Name)] {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			changed[filepath.Clean(ev.Name)] = true
			timer.Reset(reloadDelay)
		case err, more := <-sw.w.Errors:
			if !more {
				return
			}
			logf("watch: %v", err)
		case <-timer.C:
			for path := range changed {
				events <- reloadEvent{path: path}
			}
			changed = make(map[string]bool)
		}
	}
}

func (sw *scriptWatcher) Close() error {
	close(sw.done)
	return sw.w.Close()
}
