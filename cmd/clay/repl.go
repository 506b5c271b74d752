package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"
	"github.com/phroun/clay/pkg/keyboard"
)

// runRaw drives the app from the raw-mode keyboard
func (a *app) runRaw() error {
	h := keyboard.New(keyboard.Options{
		Input:         os.Stdin,
		KeyBufferSize: a.cfg.KeyBuffer,
	})
	if err := h.Start(); err != nil {
		return err
	}
	defer h.Stop()
	a.raw = h.ManagesTerminal()

	go func() {
		for key := range h.Keys {
			a.events <- keyEvent{key: key}
		}
		a.events <- inputClosedEvent{}
	}()

	a.redraw()
	a.loop()
	if a.raw {
		io.WriteString(a.out, "\r\n")
	}
	return nil
}

// runPlain drives the app from a liner prompt with persistent history
func (a *app) runPlain() error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := expandHome(a.cfg.HistoryFile)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if err := os.MkdirAll(filepath.Dir(histPath), 0755); err != nil {
				return
			}
			if f, err := os.Create(histPath); err == nil {
				ln.WriteHistory(f)
				f.Close()
			}
		}()
	}

	go func() {
		prompt := ""
		next := make(chan string, 1)
		for {
			line, err := ln.Prompt(prompt)
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				a.events <- inputClosedEvent{}
				return
			}
			if err != nil {
				a.events <- inputClosedEvent{}
				return
			}
			if line != "" {
				ln.AppendHistory(line)
			}
			a.events <- inputEvent{line: line, next: next}
			select {
			case prompt = <-next:
			case <-a.ctx.Done():
				return
			}
		}
	}()

	a.loop()
	return nil
}
