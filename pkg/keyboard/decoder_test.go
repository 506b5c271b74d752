package keyboard

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(input string) []string {
	var d Decoder
	var keys []string
	for i := 0; i < len(input); i++ {
		keys = append(keys, d.Feed(input[i])...)
	}
	return append(keys, d.Flush()...)
}

func TestDecoderKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"printable", "ab", []string{"a", "b"}},
		{"space", " ", []string{"Space"}},
		{"enter", "\r", []string{"Enter"}},
		{"control letter", "\x01\x1a", []string{"^A", "^Z"}},
		{"backspace", "\x7f", []string{"Backspace"}},
		{"arrows", "\x1b[A\x1bOD", []string{"Up", "Left"}},
		{"function keys", "\x1bOP\x1b[24~", []string{"F1", "F12"}},
		{"navigation", "\x1b[5~\x1b[3~", []string{"PageUp", "Delete"}},
		{"ctrl arrow", "\x1b[1;5C", []string{"C-Right"}},
		{"alt arrow", "\x1b[1;3A", []string{"M-Up"}},
		{"meta letter", "\x1bx", []string{"M-x"}},
		{"meta upper letter", "\x1bX", []string{"M-x"}},
		{"lone escape", "\x1b", []string{"Escape"}},
		{"utf8", "é€", []string{"é", "€"}},
		{"shift tab", "\x1b[Z", []string{"S-Tab"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeAll(tt.input))
		})
	}
}

func TestDecoderPaste(t *testing.T) {
	keys := decodeAll("\x1b[200~hi\nyo\x1b[201~")
	assert.Equal(t, []string{"h", "i", "Enter", "y", "o"}, keys)
}

func TestDecoderPendingEscape(t *testing.T) {
	var d Decoder
	assert.Empty(t, d.Feed(0x1b))
	assert.True(t, d.Pending())
	assert.Equal(t, []string{"Escape"}, d.Flush())
	assert.False(t, d.Pending())
}

func TestHandlerReadsKeys(t *testing.T) {
	manage := false
	h := New(Options{Input: strings.NewReader("a\x1b[B\r"), ManageTerminal: &manage})
	require.NoError(t, h.Start())
	defer h.Stop()

	var got []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case key, more := <-h.Keys:
			if !more {
				assert.Equal(t, []string{"a", "Down", "Enter"}, got)
				return
			}
			got = append(got, key)
		case <-timeout:
			t.Fatalf("timed out, got %v", got)
		}
	}
}
