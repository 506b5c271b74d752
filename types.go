package clay

import (
	"fmt"
	"io"
	"strings"
)

// Result represents the result of executing one script line
type Result interface {
	isResult()
}

// Success is a completed command, optionally with text to display
type Success struct {
	Text string
}

func (Success) isResult() {}

// Failure carries the text of a lex, parse, evaluation, flow or definition error
type Failure struct {
	Message string
}

func (Failure) isResult() {}

// SendToMud is text destined for the server connection
type SendToMud struct {
	Text string
}

func (SendToMud) isResult() {}

// ClayCommand is a host-level command (a line starting with "/")
type ClayCommand struct {
	Text string
}

func (ClayCommand) isResult() {}

// Results is the ordered outcome of a control-flow block or macro body
type Results []Result

func (Results) isResult() {}

// loopBreak is produced by #break and consumed by the innermost loop
type loopBreak struct{}

func (loopBreak) isResult() {}

// ok is the empty success
var ok = Success{}

// Flatten expands nested Results into a flat slice
func Flatten(r Result) []Result {
	switch v := r.(type) {
	case nil:
		return nil
	case Results:
		var out []Result
		for _, item := range v {
			out = append(out, Flatten(item)...)
		}
		return out
	default:
		return []Result{r}
	}
}

// FirstFailure returns the first Failure inside r, if any
func FirstFailure(r Result) (Failure, bool) {
	for _, item := range Flatten(r) {
		if f, isFail := item.(Failure); isFail {
			return f, true
		}
	}
	return Failure{}, false
}

func failf(format string, args ...interface{}) Failure {
	return Failure{Message: fmt.Sprintf(format, args...)}
}

func failure(err error) Failure {
	return Failure{Message: err.Error()}
}

// combine packs results, dropping empty successes and unwrapping singletons
func combine(results []Result) Result {
	var kept Results
	for _, r := range results {
		if r == nil {
			continue
		}
		if s, isSuccess := r.(Success); isSuccess && s.Text == "" {
			continue
		}
		kept = append(kept, r)
	}
	switch len(kept) {
	case 0:
		return ok
	case 1:
		return kept[0]
	default:
		return kept
	}
}

// ErrorKind classifies script errors
type ErrorKind int

const (
	ErrParse ErrorKind = iota
	ErrEval
	ErrFlow
	ErrDefine
	ErrIO
)

func (k ErrorKind) String() string {
	switch k {
	case ErrParse:
		return "parse"
	case ErrEval:
		return "eval"
	case ErrFlow:
		return "flow"
	case ErrDefine:
		return "define"
	case ErrIO:
		return "io"
	}
	return "unknown"
}

// ScriptError is an error raised by script text. It never stops the host.
type ScriptError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ScriptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

func parseErrorf(format string, args ...interface{}) error {
	return &ScriptError{Kind: ErrParse, Message: fmt.Sprintf(format, args...)}
}

func evalErrorf(format string, args ...interface{}) error {
	return &ScriptError{Kind: ErrEval, Message: fmt.Sprintf(format, args...)}
}

func flowErrorf(format string, args ...interface{}) error {
	return &ScriptError{Kind: ErrFlow, Message: fmt.Sprintf(format, args...)}
}

func defineErrorf(format string, args ...interface{}) error {
	return &ScriptError{Kind: ErrDefine, Message: fmt.Sprintf(format, args...)}
}

func ioError(message string, err error) error {
	return &ScriptError{Kind: ErrIO, Message: message, Err: err}
}

// Config holds engine configuration
type Config struct {
	Debug         bool
	LoopLimit     int       // maximum body executions per #while/#for
	MaxMacroDepth int       // maximum nested macro calls
	RandSeed      int64     // 0 seeds from the clock
	ScriptDir     string    // base for relative #load/#save/tfopen paths
	Host          Host      // world and terminal facts; nil uses a private WorldTable
	LogOut        io.Writer // nil keeps stdout/stderr
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Debug:         false,
		LoopLimit:     10000,
		MaxMacroDepth: 64,
	}
}

// Attributes are the display attributes a fired trigger applies to a line
type Attributes struct {
	Gag       bool
	Bold      bool
	Underline bool
	Reverse   bool
	Flash     bool
	Dim       bool
	Bell      bool
	Hilite    bool
	NoRecord  bool
	Color     string
}

// IsZero reports whether no attribute is set
func (a Attributes) IsZero() bool {
	return a == Attributes{}
}

// Merge returns the union of a and b; b's color wins when set
func (a Attributes) Merge(b Attributes) Attributes {
	out := Attributes{
		Gag:       a.Gag || b.Gag,
		Bold:      a.Bold || b.Bold,
		Underline: a.Underline || b.Underline,
		Reverse:   a.Reverse || b.Reverse,
		Flash:     a.Flash || b.Flash,
		Dim:       a.Dim || b.Dim,
		Bell:      a.Bell || b.Bell,
		Hilite:    a.Hilite || b.Hilite,
		NoRecord:  a.NoRecord || b.NoRecord,
		Color:     a.Color,
	}
	if b.Color != "" {
		out.Color = b.Color
	}
	return out
}

// String renders the attributes in -a flag syntax (without the "-a")
func (a Attributes) String() string {
	var sb strings.Builder
	if a.Gag {
		sb.WriteByte('g')
	}
	if a.Bold {
		sb.WriteByte('B')
	}
	if a.Underline {
		sb.WriteByte('u')
	}
	if a.Reverse {
		sb.WriteByte('r')
	}
	if a.Flash {
		sb.WriteByte('f')
	}
	if a.Dim {
		sb.WriteByte('d')
	}
	if a.Bell {
		sb.WriteByte('b')
	}
	if a.NoRecord {
		sb.WriteByte('n')
	}
	if a.Hilite {
		sb.WriteByte('h')
	}
	if a.Color != "" {
		sb.WriteString("C" + a.Color)
	}
	return sb.String()
}

// parseAttributes reads -a flag letters
func parseAttributes(spec string) (Attributes, error) {
	var a Attributes
	for i := 0; i < len(spec); i++ {
		switch spec[i] {
		case 'g':
			a.Gag = true
		case 'B':
			a.Bold = true
		case 'u':
			a.Underline = true
		case 'r':
			a.Reverse = true
		case 'f':
			a.Flash = true
		case 'd':
			a.Dim = true
		case 'b':
			a.Bell = true
		case 'n':
			a.NoRecord = true
		case 'h':
			a.Hilite = true
		case 'x':
			// plain: no attribute
		case 'C':
			a.Color = spec[i+1:]
			if a.Color == "" {
				return a, defineErrorf("attribute C needs a color name")
			}
			return a, nil
		default:
			return a, defineErrorf("unknown attribute '%c'", spec[i])
		}
	}
	return a, nil
}
