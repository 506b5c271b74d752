package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/phroun/clay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	worlds := clay.NewWorldTable()
	a := newApp(defaults(), worlds, &out)
	a.engine = clay.New(&clay.Config{Host: worlds, LogOut: io.Discard, RandSeed: 1})
	t.Cleanup(a.shutdown)
	return a, &out
}

func TestAppEchoAndErrors(t *testing.T) {
	a, out := newTestApp(t)

	a.dispatch(inputEvent{line: "#echo hello"})
	a.dispatch(inputEvent{line: "#nosuchcommand"})
	assert.Equal(t, "hello\n% unknown command #nosuchcommand\n", out.String())
}

func TestAppSendWithoutConnection(t *testing.T) {
	a, out := newTestApp(t)
	a.dispatch(inputEvent{line: "say hi"})
	assert.Contains(t, out.String(), "% no foreground world")
}

func TestAppServerLineTriggers(t *testing.T) {
	a, out := newTestApp(t)
	a.worlds.Put(clay.WorldInfo{Name: "dune", Host: "localhost", Port: 4000})
	a.worlds.SetCurrent("dune")

	require.Equal(t, "", firstFailure(a.engine.Execute("#gag *spam*")))
	require.Equal(t, "", firstFailure(a.engine.Execute(`#def -t"You are hungry" eat = #echo eating`)))

	a.dispatch(lineEvent{world: "dune", line: serverLine{text: "some spam here"}})
	a.dispatch(lineEvent{world: "dune", line: serverLine{text: "You are hungry"}})
	a.flush()
	assert.Equal(t, "eating\nYou are hungry\n", out.String())
}

func TestAppBackgroundLinesArePrefixed(t *testing.T) {
	a, out := newTestApp(t)
	a.worlds.Put(clay.WorldInfo{Name: "one"})
	a.worlds.Put(clay.WorldInfo{Name: "two"})
	a.worlds.SetCurrent("one")

	a.dispatch(lineEvent{world: "two", line: serverLine{text: "psst"}})
	assert.Equal(t, "[two] psst\n", out.String())
}

func TestAppWorldOps(t *testing.T) {
	a, out := newTestApp(t)
	a.dispatch(inputEvent{line: `#expr addworld("mud", "tiny", "mud.example.org", 4201)`})
	a.flush()

	info, found := a.worlds.World("mud")
	require.True(t, found)
	assert.Equal(t, "mud.example.org", info.Host)
	assert.Equal(t, 4201, info.Port)

	out.Reset()
	a.clientCommand("worlds")
	assert.Equal(t, "  mud mud.example.org:4201\n", out.String())
}

func TestAppClientCommands(t *testing.T) {
	a, out := newTestApp(t)
	a.dispatch(inputEvent{line: "/bogus"})
	assert.Equal(t, "% unknown command /bogus\n", out.String())

	out.Reset()
	a.dispatch(inputEvent{line: "/world nowhere"})
	assert.Equal(t, "% unknown world nowhere\n", out.String())

	a.dispatch(inputEvent{line: "#quit"})
	assert.True(t, a.quit)
}

func TestAppPromptInBlock(t *testing.T) {
	a, _ := newTestApp(t)
	next := make(chan string, 1)
	a.dispatch(inputEvent{line: "#while (0)", next: next})
	assert.Equal(t, "> ", <-next)
	a.dispatch(inputEvent{line: "#endwhile", next: next})
	assert.Equal(t, "", <-next)
}

func TestAppReload(t *testing.T) {
	a, out := newTestApp(t)
	a.dispatch(reloadEvent{path: "/nonexistent/clayrc.tf"})
	assert.Contains(t, out.String(), "% reloading /nonexistent/clayrc.tf\n")
	assert.Contains(t, out.String(), "% cannot load")
}

func firstFailure(r clay.Result) string {
	if f, failed := clay.FirstFailure(r); failed {
		return f.Message
	}
	return ""
}
