// Package keyboard turns raw terminal input into key names: printable
// characters as themselves, "^A" for control letters, "M-x" for meta, "F1",
// "Up", "C-Left" and so on. The names match what clay.NormalizeKey produces,
// so bindings can be looked up directly.
package keyboard

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// escBindings maps complete escape sequences to key names
var escBindings = map[string]string{
	"\x1b[A": "Up",
	"\x1b[B": "Down",
	"\x1b[C": "Right",
	"\x1b[D": "Left",
	"\x1bOA": "Up",
	"\x1bOB": "Down",
	"\x1bOC": "Right",
	"\x1bOD": "Left",

	"\x1bOP":   "F1",
	"\x1bOQ":   "F2",
	"\x1bOR":   "F3",
	"\x1bOS":   "F4",
	"\x1b[11~": "F1",
	"\x1b[12~": "F2",
	"\x1b[13~": "F3",
	"\x1b[14~": "F4",
	"\x1b[15~": "F5",
	"\x1b[17~": "F6",
	"\x1b[18~": "F7",
	"\x1b[19~": "F8",
	"\x1b[20~": "F9",
	"\x1b[21~": "F10",
	"\x1b[23~": "F11",
	"\x1b[24~": "F12",

	"\x1b[H":  "Home",
	"\x1b[F":  "End",
	"\x1bOH":  "Home",
	"\x1bOF":  "End",
	"\x1b[1~": "Home",
	"\x1b[4~": "End",
	"\x1b[7~": "Home",
	"\x1b[8~": "End",
	"\x1b[2~": "Insert",
	"\x1b[3~": "Delete",
	"\x1b[5~": "PageUp",
	"\x1b[6~": "PageDown",
	"\x1b[Z":  "S-Tab",
}

// tildeKeys names the "ESC [ n ; m ~" keys by n
var tildeKeys = map[int]string{
	1: "Home", 2: "Insert", 3: "Delete", 4: "End", 5: "PageUp", 6: "PageDown",
	7: "Home", 8: "End", 11: "F1", 12: "F2", 13: "F3", 14: "F4", 15: "F5",
	17: "F6", 18: "F7", 19: "F8", 20: "F9", 21: "F10", 23: "F11", 24: "F12",
}

// letterKeys names the "ESC [ 1 ; m X" keys by X
var letterKeys = map[byte]string{
	'A': "Up", 'B': "Down", 'C': "Right", 'D': "Left", 'H': "Home", 'F': "End",
	'P': "F1", 'Q': "F2", 'R': "F3", 'S': "F4",
}

// controlKeys names the C0 bytes that have their own key
var controlKeys = map[byte]string{
	0x00: "^@",
	0x08: "Backspace",
	0x09: "Tab",
	0x0d: "Enter",
	0x0a: "^J",
	0x7f: "Backspace",
}

const (
	pasteStart = "\x1b[200~"
	pasteEnd   = "\x1b[201~"
)

// Decoder is the byte-level state machine. It is not safe for concurrent use.
type Decoder struct {
	esc   []byte
	utf8  []byte
	paste []byte

	inPaste bool
}

// Pending reports whether an escape sequence is waiting for more bytes;
// callers flush it after a short timeout so a lone ESC becomes "Escape".
func (d *Decoder) Pending() bool {
	return len(d.esc) > 0
}

// Feed decodes one byte, returning any keys it completes
func (d *Decoder) Feed(b byte) []string {
	if d.inPaste {
		return d.feedPaste(b)
	}
	if len(d.esc) > 0 {
		return d.feedEscape(b)
	}
	if b == 0x1b {
		d.esc = []byte{b}
		return nil
	}
	if len(d.utf8) > 0 || b >= 0x80 {
		return d.feedUTF8(b)
	}
	return []string{byteKey(b)}
}

// Flush gives up on an incomplete escape sequence
func (d *Decoder) Flush() []string {
	if len(d.esc) == 0 {
		return nil
	}
	seq := d.esc
	d.esc = nil
	if len(seq) == 2 {
		if key, isMeta := metaKey(seq[1]); isMeta {
			return []string{key}
		}
	}
	keys := []string{"Escape"}
	for _, b := range seq[1:] {
		keys = append(keys, byteKey(b))
	}
	return keys
}

func (d *Decoder) feedEscape(b byte) []string {
	d.esc = append(d.esc, b)
	seq := string(d.esc)

	if seq == pasteStart {
		d.esc = nil
		d.inPaste = true
		return nil
	}
	if key, found := escBindings[seq]; found {
		d.esc = nil
		return []string{key}
	}
	if couldBePrefix(seq) {
		return nil
	}
	if key, found := parseModifiedCSI(seq); found {
		d.esc = nil
		return []string{key}
	}
	if len(seq) == 2 {
		if key, isMeta := metaKey(b); isMeta {
			d.esc = nil
			return []string{key}
		}
	}
	return d.Flush()
}

// feedPaste collects pasted text and emits it as ordinary keys
func (d *Decoder) feedPaste(b byte) []string {
	d.paste = append(d.paste, b)
	if !strings.HasSuffix(string(d.paste), pasteEnd) {
		return nil
	}
	content := d.paste[:len(d.paste)-len(pasteEnd)]
	d.paste = nil
	d.inPaste = false

	var keys []string
	var inner Decoder
	for _, c := range content {
		if c == '\n' {
			c = '\r'
		}
		keys = append(keys, inner.Feed(c)...)
	}
	return append(keys, inner.Flush()...)
}

func (d *Decoder) feedUTF8(b byte) []string {
	d.utf8 = append(d.utf8, b)
	if utf8.FullRune(d.utf8) {
		r, _ := utf8.DecodeRune(d.utf8)
		d.utf8 = nil
		if r == utf8.RuneError {
			return nil
		}
		return []string{string(r)}
	}
	if len(d.utf8) >= utf8.UTFMax {
		d.utf8 = nil
	}
	return nil
}

func byteKey(b byte) string {
	if key, found := controlKeys[b]; found {
		return key
	}
	switch {
	case b == ' ':
		return "Space"
	case b < 0x20:
		return "^" + string(rune(b+'@'))
	}
	return string(rune(b))
}

// metaKey names ESC followed by one byte; letters are lower-cased
func metaKey(b byte) (string, bool) {
	switch {
	case b >= 'A' && b <= 'Z':
		return "M-" + string(rune(b-'A'+'a')), true
	case b == '\r':
		return "M-Enter", true
	case b == 0x7f || b == 0x08:
		return "M-Backspace", true
	case b == '\t':
		return "M-Tab", true
	case b == ' ':
		return "M-Space", true
	case b > 0x20 && b < 0x7f:
		return "M-" + string(rune(b)), true
	}
	return "", false
}

// couldBePrefix reports whether seq may still grow into a known sequence
func couldBePrefix(seq string) bool {
	if strings.HasPrefix(pasteStart, seq) {
		return true
	}
	for known := range escBindings {
		if len(seq) < len(known) && strings.HasPrefix(known, seq) {
			return true
		}
	}
	if len(seq) >= 2 && seq[1] == '[' {
		last := seq[len(seq)-1]
		return len(seq) == 2 || last < 0x40 || last > 0x7e
	}
	return len(seq) == 2 && seq[1] == 'O'
}

// parseModifiedCSI reads xterm modified keys such as "ESC [ 1 ; 5 C"
func parseModifiedCSI(seq string) (string, bool) {
	if len(seq) < 4 || seq[1] != '[' {
		return "", false
	}
	final := seq[len(seq)-1]
	params := strings.Split(seq[2:len(seq)-1], ";")
	mod := 1
	if len(params) == 2 {
		n, err := strconv.Atoi(params[1])
		if err != nil {
			return "", false
		}
		mod = n
	}

	var base string
	if final == '~' {
		n, err := strconv.Atoi(params[0])
		if err != nil {
			return "", false
		}
		base = tildeKeys[n]
	} else {
		base = letterKeys[final]
	}
	if base == "" {
		return "", false
	}
	return modifierPrefix(mod) + base, true
}

// modifierPrefix turns an xterm modifier parameter into "S-", "M-", "C-" prefixes
func modifierPrefix(mod int) string {
	if mod < 2 {
		return ""
	}
	mod--
	prefix := ""
	if mod&4 != 0 {
		prefix += "C-"
	}
	if mod&2 != 0 {
		prefix += "M-"
	}
	if mod&1 != 0 {
		prefix += "S-"
	}
	return prefix
}
