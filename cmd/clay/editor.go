package main

import (
	"unicode/utf8"
)

// editResult tells the caller what a key did to the input line
type editResult int

const (
	editChanged   editResult = iota // buffer or cursor moved
	editSubmit                      // Enter: the line is complete
	editUnhandled                   // not an editing key
)

// maxHistory bounds the in-memory input history
const maxHistory = 500

// editor is the raw-mode input line, driven by key names from pkg/keyboard
type editor struct {
	buf    []rune
	cursor int

	history []string
	histPos int
	draft   string
}

func (ed *editor) Text() string {
	return string(ed.buf)
}

func (ed *editor) Cursor() int {
	return ed.cursor
}

// Key applies one key. On editSubmit the returned line is the finished input.
func (ed *editor) Key(key string) (string, editResult) {
	switch key {
	case "Enter", "^J":
		line := ed.Text()
		ed.remember(line)
		ed.buf = nil
		ed.cursor = 0
		return line, editSubmit
	case "Space":
		ed.insert(' ')
	case "Backspace", "^H":
		if ed.cursor > 0 {
			ed.buf = append(ed.buf[:ed.cursor-1], ed.buf[ed.cursor:]...)
			ed.cursor--
		}
	case "Delete", "^D":
		if ed.cursor < len(ed.buf) {
			ed.buf = append(ed.buf[:ed.cursor], ed.buf[ed.cursor+1:]...)
		}
	case "Left", "^B":
		if ed.cursor > 0 {
			ed.cursor--
		}
	case "Right", "^F":
		if ed.cursor < len(ed.buf) {
			ed.cursor++
		}
	case "Home", "^A":
		ed.cursor = 0
	case "End", "^E":
		ed.cursor = len(ed.buf)
	case "^U":
		ed.buf = append([]rune(nil), ed.buf[ed.cursor:]...)
		ed.cursor = 0
	case "^K":
		ed.buf = ed.buf[:ed.cursor]
	case "^W":
		ed.deleteWord()
	case "Up", "^P":
		ed.recall(-1)
	case "Down", "^N":
		ed.recall(1)
	default:
		r, size := utf8.DecodeRuneInString(key)
		if size == 0 || size != len(key) || r < ' ' {
			return "", editUnhandled
		}
		ed.insert(r)
	}
	return "", editChanged
}

func (ed *editor) insert(r rune) {
	ed.buf = append(ed.buf, 0)
	copy(ed.buf[ed.cursor+1:], ed.buf[ed.cursor:])
	ed.buf[ed.cursor] = r
	ed.cursor++
}

// deleteWord removes the word before the cursor along with trailing blanks
func (ed *editor) deleteWord() {
	start := ed.cursor
	for start > 0 && ed.buf[start-1] == ' ' {
		start--
	}
	for start > 0 && ed.buf[start-1] != ' ' {
		start--
	}
	ed.buf = append(ed.buf[:start], ed.buf[ed.cursor:]...)
	ed.cursor = start
}

func (ed *editor) remember(line string) {
	ed.histPos = 0
	ed.draft = ""
	if line == "" || (len(ed.history) > 0 && ed.history[len(ed.history)-1] == line) {
		return
	}
	ed.history = append(ed.history, line)
	if len(ed.history) > maxHistory {
		ed.history = ed.history[len(ed.history)-maxHistory:]
	}
}

// recall steps through history; histPos counts back from the newest entry
func (ed *editor) recall(dir int) {
	pos := ed.histPos - dir
	if pos < 0 || pos > len(ed.history) {
		return
	}
	if ed.histPos == 0 {
		ed.draft = ed.Text()
	}
	ed.histPos = pos
	if pos == 0 {
		ed.buf = []rune(ed.draft)
	} else {
		ed.buf = []rune(ed.history[len(ed.history)-pos])
	}
	ed.cursor = len(ed.buf)
}
