package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineSplitter(t *testing.T) {
	var s lineSplitter
	got := s.Feed([]byte("hello\r\nwor"))
	assert.Equal(t, []serverLine{{text: "hello"}}, got)
	assert.Equal(t, "wor", s.Partial())

	got = s.Feed([]byte("ld\n"))
	assert.Equal(t, []serverLine{{text: "world"}}, got)
}

func TestLineSplitterTelnet(t *testing.T) {
	var s lineSplitter
	data := []byte{telnetIAC, telnetWill, 1, 'a', telnetIAC, telnetIAC, '\n'}
	assert.Equal(t, []serverLine{{text: "a\xff"}}, s.Feed(data))

	data = []byte{telnetIAC, telnetSB, 24, 1, telnetIAC, telnetSE, 'o', 'k', '\n'}
	assert.Equal(t, []serverLine{{text: "ok"}}, s.Feed(data))
}

func TestLineSplitterPrompt(t *testing.T) {
	var s lineSplitter
	data := append([]byte("HP: 10> "), telnetIAC, telnetGA)
	assert.Equal(t, []serverLine{{text: "HP: 10> ", prompt: true}}, s.Feed(data))
	assert.Equal(t, "", s.Partial())
}
