package keyboard

import (
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/term"
)

// escapeTimeout is how long a lone ESC waits for the rest of a sequence
const escapeTimeout = 50 * time.Millisecond

// Handler reads raw input in the background and sends key names on Keys
type Handler struct {
	mu sync.Mutex

	input    io.Reader
	rawBytes chan []byte
	stop     chan struct{}

	// Keys receives decoded key names; it is closed when input ends
	Keys chan string

	terminalFd      int
	originalState   *term.State
	managesTerminal bool

	running bool
	decoder Decoder
	debugFn func(string)
}

// Options configures a Handler
type Options struct {
	// Input is the source of raw bytes (required)
	Input io.Reader

	// KeyBufferSize is the Keys channel capacity (default 64)
	KeyBufferSize int

	// DebugFn receives debug messages (optional)
	DebugFn func(string)

	// ManageTerminal puts Input in raw mode when it is a terminal (default true)
	ManageTerminal *bool
}

// New creates a Handler; call Start to begin reading
func New(opts Options) *Handler {
	size := opts.KeyBufferSize
	if size <= 0 {
		size = 64
	}
	manage := true
	if opts.ManageTerminal != nil {
		manage = *opts.ManageTerminal
	}

	h := &Handler{
		input:      opts.Input,
		rawBytes:   make(chan []byte, 64),
		stop:       make(chan struct{}),
		Keys:       make(chan string, size),
		terminalFd: -1,
		debugFn:    opts.DebugFn,
	}
	if manage {
		if f, isFile := opts.Input.(interface{ Fd() uintptr }); isFile {
			fd := int(f.Fd())
			if term.IsTerminal(fd) {
				h.terminalFd = fd
				h.managesTerminal = true
			}
		}
	}
	return h
}

// Start enters raw mode (when managing the terminal) and starts reading
func (h *Handler) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return fmt.Errorf("keyboard handler already running")
	}
	if h.managesTerminal {
		state, err := term.MakeRaw(h.terminalFd)
		if err != nil {
			return fmt.Errorf("failed to enable raw mode: %w", err)
		}
		h.originalState = state
		h.debug("terminal set to raw mode")
	}
	h.running = true

	go h.readLoop()
	go h.processLoop()
	return nil
}

// Stop stops processing and restores the terminal
func (h *Handler) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}
	close(h.stop)
	h.running = false

	if h.managesTerminal && h.originalState != nil {
		if err := term.Restore(h.terminalFd, h.originalState); err != nil {
			return fmt.Errorf("failed to restore terminal: %w", err)
		}
		h.originalState = nil
		h.debug("terminal restored")
	}
	return nil
}

// Suspend leaves raw mode temporarily, for running a child process
func (h *Handler) Suspend() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.originalState == nil {
		return nil
	}
	return term.Restore(h.terminalFd, h.originalState)
}

// Resume re-enters raw mode after Suspend
func (h *Handler) Resume() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.managesTerminal || !h.running {
		return nil
	}
	state, err := term.MakeRaw(h.terminalFd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	h.originalState = state
	return nil
}

// ManagesTerminal reports whether the handler put the terminal in raw mode
func (h *Handler) ManagesTerminal() bool {
	return h.managesTerminal
}

func (h *Handler) readLoop() {
	defer close(h.rawBytes)
	buf := make([]byte, 256)
	for {
		n, err := h.input.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case h.rawBytes <- data:
			case <-h.stop:
				return
			}
		}
		if err != nil {
			h.debug(fmt.Sprintf("read error: %v", err))
			return
		}
	}
}

func (h *Handler) processLoop() {
	defer close(h.Keys)
	timer := time.NewTimer(escapeTimeout)
	timer.Stop()

	for {
		select {
		case <-h.stop:
			return

		case data, more := <-h.rawBytes:
			if !more {
				h.emit(h.decoder.Flush())
				return
			}
			for _, b := range data {
				h.emit(h.decoder.Feed(b))
			}
			if h.decoder.Pending() {
				timer.Reset(escapeTimeout)
			}

		case <-timer.C:
			h.emit(h.decoder.Flush())
		}
	}
}

// emit delivers keys, dropping the oldest queued key when the buffer is full
func (h *Handler) emit(keys []string) {
	for _, key := range keys {
		select {
		case h.Keys <- key:
			continue
		default:
		}
		select {
		case <-h.Keys:
		default:
		}
		select {
		case h.Keys <- key:
		default:
			h.debug("key dropped: " + key)
		}
	}
}

func (h *Handler) debug(msg string) {
	if h.debugFn != nil {
		h.debugFn(msg)
	}
}
