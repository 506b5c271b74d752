package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/phroun/clay"
)

// event is anything the main loop reacts to. Only the loop goroutine touches
// the engine; readers, the watcher and signal handlers just send events.
type event interface{}

type (
	keyEvent   struct{ key string }
	inputEvent struct {
		line string
		next chan<- string // receives the prompt for the following line
	}
	inputClosedEvent struct{}
	lineEvent        struct {
		world string
		line  serverLine
	}
	closedEvent struct {
		world string
		err   error
	}
	connectedEvent struct {
		world string
		conn  *conn
		err   error
	}
	resizeEvent struct{}
	reloadEvent struct{ path string }
)

// maxDrainRounds bounds how often effects that produce further effects are
// drained for one event
const maxDrainRounds = 100

// app is the terminal host around one engine
type app struct {
	engine *clay.Engine
	worlds *clay.WorldTable
	cfg    *Config

	conns  map[string]*conn
	events chan event
	ctx    context.Context
	cancel context.CancelFunc

	out   io.Writer
	color bool
	raw   bool
	ed    editor
	quit  bool

	// termSize reads the terminal size; nil keeps the last known size
	termSize func() (int, int, error)
}

func newApp(cfg *Config, worlds *clay.WorldTable, out io.Writer) *app {
	ctx, cancel := context.WithCancel(context.Background())
	return &app{
		worlds: worlds,
		cfg:    cfg,
		conns:  make(map[string]*conn),
		events: make(chan event, 256),
		ctx:    ctx,
		cancel: cancel,
		out:    out,
	}
}

// logWriter routes engine log output through the app's printer
type logWriter struct{ a *app }

func (w logWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		w.a.printLine(line)
	}
	return len(p), nil
}

func (a *app) prompt() string {
	if a.engine.InBlock() {
		return "> "
	}
	return ""
}

// printLine writes text above the input line
func (a *app) printLine(text string) {
	if !a.raw {
		fmt.Fprintln(a.out, text)
		return
	}
	fmt.Fprint(a.out, "\r\x1b[K"+strings.ReplaceAll(text, "\n", "\r\n")+"\r\n")
	a.redraw()
}

func (a *app) printError(format string, args ...interface{}) {
	a.printLine(renderLine(clay.OutputLine{Text: "% " + fmt.Sprintf(format, args...), IsError: true}, a.color))
}

// redraw repaints the raw-mode input line and places the cursor
func (a *app) redraw() {
	if !a.raw {
		return
	}
	p := a.prompt()
	if a.color && p != "" {
		p = promptColor(a.cfg.Background) + p + colorReset
	}
	text := a.ed.Text()
	fmt.Fprint(a.out, "\r\x1b[K"+p+text)
	if back := len([]rune(text)) - a.ed.Cursor(); back > 0 {
		fmt.Fprintf(a.out, "\x1b[%dD", back)
	}
}

// loop runs events until quit
func (a *app) loop() {
	for !a.quit {
		select {
		case ev := <-a.events:
			a.dispatch(ev)
			a.flush()
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *app) dispatch(ev event) {
	switch ev := ev.(type) {
	case keyEvent:
		a.handleKey(ev.key)
	case inputEvent:
		a.submit(ev.line)
		a.flush()
		if ev.next != nil {
			ev.next <- a.prompt()
		}
	case inputClosedEvent:
		a.quit = true
	case lineEvent:
		a.serverLine(ev.world, ev.line)
	case connectedEvent:
		a.connected(ev)
	case closedEvent:
		a.closed(ev)
	case resizeEvent:
		a.resize()
	case reloadEvent:
		a.printLine("% reloading " + ev.path)
		a.handleResult(a.engine.LoadScript(ev.path), a.worlds.CurrentWorld())
	}
}

func (a *app) handleKey(key string) {
	if r, handled := a.engine.HandleKey(key); handled {
		a.handleResult(r, a.worlds.CurrentWorld())
		a.redraw()
		return
	}
	line, res := a.ed.Key(key)
	switch res {
	case editSubmit:
		fmt.Fprint(a.out, "\r\n")
		a.engine.SetKeyboardBuffer("", 0)
		a.submit(line)
	case editUnhandled:
		if key == "^C" {
			a.quit = true
			return
		}
	}
	a.engine.SetKeyboardBuffer(a.ed.Text(), a.ed.Cursor())
	a.redraw()
}

// submit runs one line typed by the user
func (a *app) submit(line string) {
	a.handleResult(a.engine.Execute(line), a.worlds.CurrentWorld())
}

// handleResult acts on what Execute or LoadScript returned
func (a *app) handleResult(r clay.Result, world string) {
	for _, item := range clay.Flatten(r) {
		switch v := item.(type) {
		case clay.SendToMud:
			a.send(world, v.Text)
		case clay.ClayCommand:
			a.clientCommand(v.Text)
		case clay.Failure:
			a.printError("%s", v.Message)
		case clay.Success:
			if v.Text != "" {
				a.printLine(v.Text)
			}
		}
	}
}

// flush carries out everything the engine queued
func (a *app) flush() {
	for round := 0; round < maxDrainRounds; round++ {
		p := a.engine.Drain()
		if p.Empty() {
			return
		}
		for _, line := range p.Output {
			a.printLine(renderLine(line, a.color))
		}
		for _, op := range p.WorldOps {
			a.applyWorldOp(op)
		}
		for _, cmd := range p.Commands {
			if cmd.Client {
				a.clientCommand(cmd.Text)
			} else {
				a.send(cmd.World, cmd.Text)
			}
		}
	}
	a.printError("script effects did not settle after %d rounds", maxDrainRounds)
}

func (a *app) applyWorldOp(op clay.WorldOp) {
	info, exists := a.worlds.World(op.Name)
	if exists && info.Connected {
		return
	}
	a.worlds.Put(clay.WorldInfo{
		Name: op.Name, Type: op.Type, Host: op.Host, Port: op.Port,
		Character: op.Character, SSL: op.SSL,
	})
	a.engine.Logger().DebugCat(clay.CatApp, "world %s is %s:%d", op.Name, op.Host, op.Port)
}

// send delivers text to a world's connection
func (a *app) send(world, text string) {
	if world == "" {
		a.printError("no foreground world")
		return
	}
	c, found := a.conns[world]
	if !found {
		a.printError("not connected to %s", world)
		return
	}
	a.engine.FireHook(clay.HookSend)
	if err := c.Send(text); err != nil {
		a.printError("send to %s: %v", world, err)
	}
}

// clientCommand runs a "/" command or a client request from a script
func (a *app) clientCommand(text string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}
	switch strings.ToLower(fields[0]) {
	case "quit":
		a.quit = true
	case "world", "connect":
		if len(fields) < 2 {
			a.listWorlds()
			return
		}
		a.switchWorld(fields[1])
	case "dc", "disconnect":
		name := a.worlds.CurrentWorld()
		if len(fields) > 1 {
			name = fields[1]
		}
		a.disconnect(name)
	case "worlds":
		a.listWorlds()
	default:
		a.printError("unknown command /%s", fields[0])
	}
}

func (a *app) listWorlds() {
	current := a.worlds.CurrentWorld()
	names := a.worlds.WorldNames()
	if len(names) == 0 {
		a.printLine("% no worlds defined")
		return
	}
	for _, name := range names {
		info, _ := a.worlds.World(name)
		mark := " "
		if name == current {
			mark = "*"
		}
		state := ""
		if info.Connected {
			state = " (connected)"
		}
		a.printLine(fmt.Sprintf("%s %s %s:%d%s", mark, name, info.Host, info.Port, state))
	}
}

// switchWorld brings a world to the foreground, connecting it if needed
func (a *app) switchWorld(name string) {
	info, found := a.worlds.World(name)
	if !found {
		a.printError("unknown world %s", name)
		return
	}
	if a.worlds.CurrentWorld() != name {
		a.worlds.SetCurrent(name)
		a.engine.FireHook(clay.HookWorld)
	}
	if _, open := a.conns[name]; open {
		return
	}
	a.printLine(fmt.Sprintf("%% connecting to %s (%s:%d)", name, info.Host, info.Port))
	go func() {
		c, err := dial(a.ctx, info)
		a.events <- connectedEvent{world: name, conn: c, err: err}
	}()
}

func (a *app) connected(ev connectedEvent) {
	if ev.err != nil {
		a.printError("%v", ev.err)
		return
	}
	a.conns[ev.world] = ev.conn
	a.worlds.SetConnected(ev.world, true)
	go ev.conn.readLoop(a.events)
	a.printLine("% connected to " + ev.world)
	a.engine.FireHook(clay.HookConnect)

	info, _ := a.worlds.World(ev.world)
	if a.engine.FireHook(clay.HookLogin) == 0 && info.Character != "" {
		password := ""
		if w, found := a.configWorld(ev.world); found {
			password = w.Password
		}
		a.send(ev.world, strings.TrimSpace("connect "+info.Character+" "+password))
	}
}

func (a *app) configWorld(name string) (WorldConfig, bool) {
	for _, w := range a.cfg.Worlds {
		if w.Name == name {
			return w, true
		}
	}
	return WorldConfig{}, false
}

func (a *app) disconnect(name string) {
	c, found := a.conns[name]
	if !found {
		a.printError("not connected to %s", name)
		return
	}
	c.Close()
}

func (a *app) closed(ev closedEvent) {
	if _, found := a.conns[ev.world]; !found {
		return
	}
	delete(a.conns, ev.world)
	a.worlds.SetConnected(ev.world, false)
	a.printLine("% connection to " + ev.world + " closed")
	a.engine.FireHook(clay.HookDisconnect)
}

// serverLine runs a received line through the triggers and shows it
func (a *app) serverLine(world string, l serverLine) {
	outcome := a.engine.ProcessServerLine(world, l.text)
	if l.prompt {
		a.engine.FireHook(clay.HookPrompt)
	}
	background := world != a.worlds.CurrentWorld()
	if background && len(outcome.Fired) > 0 {
		a.engine.FireHook(clay.HookBackground)
	}
	a.flush()
	if outcome.Gag {
		return
	}
	text := outcome.Line
	if background {
		text = "[" + world + "] " + text
	}
	a.printLine(renderLine(clay.OutputLine{Text: text, Attrs: outcome.Attrs}, a.color))
}

func (a *app) resize() {
	if a.termSize == nil {
		return
	}
	cols, rows, err := a.termSize()
	if err != nil {
		return
	}
	a.worlds.SetTerminalSize(cols, rows)
	a.engine.FireHook(clay.HookResize)
	a.redraw()
}

// shutdown closes every connection
func (a *app) shutdown() {
	a.cancel()
	for _, c := range a.conns {
		c.Close()
	}
	a.engine.Close()
}
