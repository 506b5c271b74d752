package clay

import (
	"sort"

	"github.com/puzpuzpuz/xsync"
)

// WorldInfo describes one world known to the host
type WorldInfo struct {
	Name      string
	Type      string
	Host      string
	Port      int
	Character string
	Connected bool
	SSL       bool
}

// Host supplies the facts builtins read but the engine does not own
type Host interface {
	CurrentWorld() string
	World(name string) (WorldInfo, bool)
	WorldNames() []string
	TerminalSize() (cols, rows int)
}

// WorldTable is the default Host. Connection goroutines update it while the
// engine reads it, so access goes through a reader-biased lock.
type WorldTable struct {
	mu      *xsync.RBMutex
	worlds  map[string]WorldInfo
	current string
	cols    int
	rows    int
}

// NewWorldTable creates an empty table with an 80x24 terminal
func NewWorldTable() *WorldTable {
	return &WorldTable{
		mu:     &xsync.RBMutex{},
		worlds: make(map[string]WorldInfo),
		cols:   80,
		rows:   24,
	}
}

// Put adds or replaces a world
func (w *WorldTable) Put(info WorldInfo) {
	w.mu.Lock()
	w.worlds[info.Name] = info
	w.mu.Unlock()
}

// Remove deletes a world, reporting whether it existed
func (w *WorldTable) Remove(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, found := w.worlds[name]; !found {
		return false
	}
	delete(w.worlds, name)
	if w.current == name {
		w.current = ""
	}
	return true
}

// SetConnected records a world's connection state
func (w *WorldTable) SetConnected(name string, connected bool) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	info, found := w.worlds[name]
	if !found {
		return false
	}
	info.Connected = connected
	w.worlds[name] = info
	return true
}

// SetCurrent makes name the foreground world
func (w *WorldTable) SetCurrent(name string) {
	w.mu.Lock()
	w.current = name
	w.mu.Unlock()
}

// SetTerminalSize records the terminal dimensions
func (w *WorldTable) SetTerminalSize(cols, rows int) {
	w.mu.Lock()
	w.cols, w.rows = cols, rows
	w.mu.Unlock()
}

// CurrentWorld returns the foreground world name, "" when none
func (w *WorldTable) CurrentWorld() string {
	t := w.mu.RLock()
	defer w.mu.RUnlock(t)
	return w.current
}

// World returns the named world
func (w *WorldTable) World(name string) (WorldInfo, bool) {
	t := w.mu.RLock()
	defer w.mu.RUnlock(t)
	info, found := w.worlds[name]
	return info, found
}

// WorldNames returns the world names sorted
func (w *WorldTable) WorldNames() []string {
	t := w.mu.RLock()
	names := make([]string, 0, len(w.worlds))
	for name := range w.worlds {
		names = append(names, name)
	}
	w.mu.RUnlock(t)
	sort.Strings(names)
	return names
}

// TerminalSize returns columns and rows
func (w *WorldTable) TerminalSize() (int, int) {
	t := w.mu.RLock()
	defer w.mu.RUnlock(t)
	return w.cols, w.rows
}
