package clay

import (
	"strings"
)

// OutputLine is text for the host to display
type OutputLine struct {
	Text    string
	Attrs   Attributes
	IsError bool
}

// Command is text for the host to send to a world, or to run as a client
// command when Client is set
type Command struct {
	Text   string
	World  string
	Client bool
}

// Substitution replaces the server line being processed
type Substitution struct {
	Text  string
	Attrs Attributes
}

// WorldOp asks the host to create or update a world
type WorldOp struct {
	Name      string
	Type      string
	Host      string
	Port      int
	Character string
	Password  string
	SSL       bool
}

// Pending holds the effects scripts produced since the last Drain
type Pending struct {
	Output        []OutputLine
	Commands      []Command
	Substitutions []Substitution
	WorldOps      []WorldOp
}

// Empty reports whether nothing is queued
func (p Pending) Empty() bool {
	return len(p.Output) == 0 && len(p.Commands) == 0 &&
		len(p.Substitutions) == 0 && len(p.WorldOps) == 0
}

// Drain returns and clears the queued effects
func (e *Engine) Drain() Pending {
	p := e.pending
	e.pending = Pending{}
	return p
}

// Peek returns the queued effects without clearing them
func (e *Engine) Peek() Pending {
	return e.pending
}

func (e *Engine) enqueueOutput(text string, attrs Attributes) {
	for _, line := range strings.Split(text, "\n") {
		e.pending.Output = append(e.pending.Output, OutputLine{Text: line, Attrs: attrs})
	}
}

func (e *Engine) enqueueError(message string) {
	e.pending.Output = append(e.pending.Output, OutputLine{Text: "% " + message, IsError: true})
}

func (e *Engine) enqueueCommand(text, world string, client bool) {
	if world == "" {
		world = e.host.CurrentWorld()
	}
	e.pending.Commands = append(e.pending.Commands, Command{Text: text, World: world, Client: client})
}

// enqueueResults queues what a trigger or hook body produced, since no
// caller is waiting for its Result
func (e *Engine) enqueueResults(r Result, world string) {
	for _, item := range Flatten(r) {
		switch v := item.(type) {
		case SendToMud:
			e.enqueueCommand(v.Text, world, false)
		case ClayCommand:
			e.enqueueCommand(v.Text, world, true)
		case Failure:
			e.enqueueError(v.Message)
		case Success:
			if v.Text != "" {
				e.enqueueOutput(v.Text, Attributes{})
			}
		}
	}
}
