package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func typeKeys(ed *editor, keys ...string) (string, editResult) {
	var (
		line string
		res  editResult
	)
	for _, k := range keys {
		line, res = ed.Key(k)
	}
	return line, res
}

func TestEditorInsertAndSubmit(t *testing.T) {
	var ed editor
	line, res := typeKeys(&ed, "h", "i", "Space", "é", "Enter")
	assert.Equal(t, editSubmit, res)
	assert.Equal(t, "hi é", line)
	assert.Equal(t, "", ed.Text())
	assert.Equal(t, 0, ed.Cursor())
}

func TestEditorCursorMovement(t *testing.T) {
	var ed editor
	typeKeys(&ed, "a", "c", "Left", "b")
	assert.Equal(t, "abc", ed.Text())
	assert.Equal(t, 2, ed.Cursor())

	typeKeys(&ed, "Home", "Delete")
	assert.Equal(t, "bc", ed.Text())
	assert.Equal(t, 0, ed.Cursor())

	typeKeys(&ed, "End", "Backspace")
	assert.Equal(t, "b", ed.Text())
	assert.Equal(t, 1, ed.Cursor())
}

func TestEditorKillKeys(t *testing.T) {
	var ed editor
	typeKeys(&ed, "o", "n", "e", "Space", "t", "w", "o", "^W")
	assert.Equal(t, "one ", ed.Text())

	typeKeys(&ed, "Home", "Right", "^K")
	assert.Equal(t, "o", ed.Text())

	typeKeys(&ed, "x", "y", "Left", "^U")
	assert.Equal(t, "y", ed.Text())
	assert.Equal(t, 0, ed.Cursor())
}

func TestEditorHistory(t *testing.T) {
	var ed editor
	typeKeys(&ed, "a", "Enter")
	typeKeys(&ed, "b", "Enter")
	typeKeys(&ed, "d", "r")

	typeKeys(&ed, "Up")
	assert.Equal(t, "b", ed.Text())
	typeKeys(&ed, "Up")
	assert.Equal(t, "a", ed.Text())
	typeKeys(&ed, "Up")
	assert.Equal(t, "a", ed.Text(), "stays on the oldest entry")
	typeKeys(&ed, "Down", "Down")
	assert.Equal(t, "dr", ed.Text(), "returns to the draft")
}

func TestEditorUnhandled(t *testing.T) {
	var ed editor
	for _, key := range []string{"F1", "M-x", "^C", "PageUp"} {
		_, res := ed.Key(key)
		assert.Equal(t, editUnhandled, res, key)
	}
}
