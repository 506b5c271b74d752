package clay

import (
	"strings"
)

// blockKind is the assembler state
type blockKind int

const (
	blockNone blockKind = iota
	blockIf
	blockWhile
	blockFor
)

func (k blockKind) String() string {
	switch k {
	case blockIf:
		return "#if"
	case blockWhile:
		return "#while"
	case blockFor:
		return "#for"
	}
	return "none"
}

// Branch is one condition of an #if/#elseif chain
type Branch struct {
	Cond string
	cond Expr
	Body []string
}

// IfBlock is an assembled #if ... #endif
type IfBlock struct {
	Branches []Branch
	Else     []string
	HasElse  bool
}

// WhileBlock is an assembled #while ... #endwhile
type WhileBlock struct {
	Cond string
	cond Expr
	Body []string
}

// ForBlock is an assembled #for ... #endfor
type ForBlock struct {
	Var   string
	Start Value
	End   Value
	Step  Value
	Body  []string
}

// assembler collects the lines of a multi-line block as they arrive
type assembler struct {
	kind   blockKind
	depth  int
	ifb    *IfBlock
	whileb *WhileBlock
	forb   *ForBlock
	body   *[]string
	// err is set when the opener failed; the block is absorbed but never run
	err error
}

func (a *assembler) active() bool {
	return a.kind != blockNone
}

func (a *assembler) reset() {
	*a = assembler{}
}

// splitKeyword returns the lower-cased command word of a "#" line and its
// arguments. Trailing blanks of the arguments are kept.
func splitKeyword(line string) (string, string) {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, "#") {
		return "", ""
	}
	trimmed = trimmed[1:]
	end := strings.IndexAny(trimmed, " \t")
	if end < 0 {
		return strings.ToLower(strings.TrimSpace(trimmed)), ""
	}
	return strings.ToLower(trimmed[:end]), strings.TrimLeft(trimmed[end+1:], " \t")
}

// splitCondition takes "(cond) rest" apart by counting parentheses
func splitCondition(args string) (cond, rest string, err error) {
	args = strings.TrimSpace(args)
	if !strings.HasPrefix(args, "(") {
		return "", "", flowErrorf("condition must be in parentheses")
	}
	depth := 0
	var quote byte
	for i := 0; i < len(args); i++ {
		c := args[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return strings.TrimSpace(args[1:i]), strings.TrimSpace(args[i+1:]), nil
			}
		}
	}
	return "", "", flowErrorf("unbalanced parentheses in condition")
}

// opensIf reports whether an #if line opens a multi-line block
func opensIf(args string) bool {
	_, rest, err := splitCondition(args)
	return err == nil && rest == ""
}

func parseCondition(src string) (Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, flowErrorf("empty condition")
	}
	return ParseExpression(src)
}

// openIf starts collecting an #if block
func (e *Engine) openIf(a *assembler, cond string) Result {
	a.kind, a.depth = blockIf, 1
	a.ifb = &IfBlock{}
	expr, err := parseCondition(cond)
	a.ifb.Branches = append(a.ifb.Branches, Branch{Cond: cond, cond: expr})
	a.body = &a.ifb.Branches[0].Body
	if err != nil {
		a.err = err
		return failure(err)
	}
	e.logger.DebugCat(CatFlow, "collecting #if (%s)", cond)
	return ok
}

// openWhile starts collecting a #while block
func (e *Engine) openWhile(a *assembler, args string) Result {
	a.kind, a.depth = blockWhile, 1
	a.whileb = &WhileBlock{}
	a.body = &a.whileb.Body
	cond, rest, err := splitCondition(args)
	if err == nil && rest != "" {
		err = flowErrorf("unexpected text after #while condition: %s", rest)
	}
	if err == nil {
		a.whileb.Cond = cond
		a.whileb.cond, err = parseCondition(cond)
	}
	if err != nil {
		a.err = err
		return failure(err)
	}
	e.logger.DebugCat(CatFlow, "collecting #while (%s)", cond)
	return ok
}

// openFor starts collecting a #for block: "var start end [step]"
func (e *Engine) openFor(a *assembler, args string) Result {
	a.kind, a.depth = blockFor, 1
	a.forb = &ForBlock{}
	a.body = &a.forb.Body
	if err := e.parseForHeader(a.forb, args); err != nil {
		a.err = err
		return failure(err)
	}
	e.logger.DebugCat(CatFlow, "collecting #for %s %s..%s step %s", a.forb.Var, a.forb.Start, a.forb.End, a.forb.Step)
	return ok
}

func (e *Engine) parseForHeader(f *ForBlock, args string) error {
	fields := strings.Fields(args)
	if len(fields) < 3 || len(fields) > 4 {
		return flowErrorf("usage: #for var start end [step]")
	}
	f.Var = fields[0]
	for _, r := range f.Var {
		if !isIdentPart(r) {
			return flowErrorf("bad #for variable %q", f.Var)
		}
	}
	bounds := make([]Value, len(fields)-1)
	for i, src := range fields[1:] {
		v, err := e.Evaluate(src)
		if err != nil {
			return err
		}
		bounds[i] = v.numeric()
	}
	f.Start, f.End = bounds[0], bounds[1]
	if len(bounds) == 3 {
		f.Step = bounds[2]
		if f.Step.ToFloat() == 0 {
			return flowErrorf("#for step must not be zero")
		}
	} else if compareValues(f.Start, f.End) <= 0 {
		f.Step = Int(1)
	} else {
		f.Step = Int(-1)
	}
	return nil
}

// feedBlock hands one line to an open block. The block runs when its
// closer arrives at depth 1.
func (e *Engine) feedBlock(a *assembler, line string) Result {
	kw, args := splitKeyword(line)

	if kw == "abort" {
		kind := a.kind
		a.reset()
		return Success{Text: "% " + kind.String() + " block aborted"}
	}

	switch a.kind {
	case blockIf:
		switch {
		case kw == "if" && opensIf(args):
			a.depth++
		case kw == "endif":
			if a.depth == 1 {
				return e.closeBlock(a)
			}
			a.depth--
		case kw == "elseif" && a.depth == 1:
			if a.ifb.HasElse {
				return e.poison(a, flowErrorf("#elseif after #else"))
			}
			cond, rest, err := splitCondition(args)
			if err == nil && rest != "" {
				err = flowErrorf("unexpected text after #elseif condition: %s", rest)
			}
			var expr Expr
			if err == nil {
				expr, err = parseCondition(cond)
			}
			a.ifb.Branches = append(a.ifb.Branches, Branch{Cond: cond, cond: expr})
			a.body = &a.ifb.Branches[len(a.ifb.Branches)-1].Body
			if err != nil {
				return e.poison(a, err)
			}
			return ok
		case kw == "else" && a.depth == 1:
			if a.ifb.HasElse {
				return e.poison(a, flowErrorf("duplicate #else"))
			}
			a.ifb.HasElse = true
			a.body = &a.ifb.Else
			return ok
		}

	case blockWhile, blockFor:
		switch kw {
		case "while", "for":
			a.depth++
		case "endwhile", "endfor", "done":
			if a.depth == 1 {
				return e.closeBlock(a)
			}
			a.depth--
		}
	}

	*a.body = append(*a.body, line)
	return ok
}

// poison records an error; the rest of the block is collected and discarded
func (e *Engine) poison(a *assembler, err error) Result {
	if a.err == nil {
		a.err = err
	}
	e.logger.DebugCat(CatFlow, "block poisoned: %v", err)
	return failure(err)
}

func (e *Engine) closeBlock(a *assembler) Result {
	kind, ifb, whileb, forb, err := a.kind, a.ifb, a.whileb, a.forb, a.err
	a.reset()
	if err != nil {
		e.logger.DebugCat(CatFlow, "discarding %s block: %v", kind, err)
		return ok
	}
	switch kind {
	case blockIf:
		return e.runIf(ifb)
	case blockWhile:
		return e.runWhile(whileb)
	case blockFor:
		return e.runFor(forb)
	}
	return ok
}

func (e *Engine) runIf(b *IfBlock) Result {
	for _, branch := range b.Branches {
		v, err := e.eval(branch.cond)
		if err != nil {
			return failure(err)
		}
		if v.ToBool() {
			return e.runLines(branch.Body)
		}
	}
	if b.HasElse {
		return e.runLines(b.Else)
	}
	return ok
}

func (e *Engine) runWhile(b *WhileBlock) Result {
	var results []Result
	for runs := 0; ; runs++ {
		v, err := e.eval(b.cond)
		if err != nil {
			results = append(results, failure(err))
			break
		}
		if !v.ToBool() {
			break
		}
		if runs == e.config.LoopLimit {
			e.logger.WarnCat(CatFlow, "#while (%s) stopped after %d iterations", b.Cond, runs)
			results = append(results, failure(flowErrorf("#while loop exceeded %d iterations", e.config.LoopLimit)))
			break
		}
		r, broke := stripBreak(e.runLines(b.Body))
		results = append(results, r)
		if broke {
			break
		}
	}
	return combine(results)
}

func (e *Engine) runFor(b *ForBlock) Result {
	var results []Result
	ascending := b.Step.ToFloat() > 0
	current := b.Start
	for runs := 0; ; runs++ {
		c := compareValues(current, b.End)
		if (ascending && c > 0) || (!ascending && c < 0) {
			break
		}
		if runs == e.config.LoopLimit {
			e.logger.WarnCat(CatFlow, "#for %s stopped after %d iterations", b.Var, runs)
			results = append(results, failure(flowErrorf("#for loop exceeded %d iterations", e.config.LoopLimit)))
			break
		}
		e.setVar(b.Var, current)
		r, broke := stripBreak(e.runLines(b.Body))
		results = append(results, r)
		if broke {
			break
		}
		next, err := arith("+", current, b.Step)
		if err != nil {
			results = append(results, failure(err))
			break
		}
		current = next
	}
	return combine(results)
}

// runLines executes lines with their own assembler; blocks they open must
// close within them. A #break stops at the first line producing it and is
// passed up to the enclosing loop.
func (e *Engine) runLines(lines []string) Result {
	sub := &assembler{}
	var results []Result
	for _, line := range lines {
		r := e.executeIn(sub, line)
		results = append(results, r)
		if hasBreak(r) {
			return combine(results)
		}
	}
	if sub.active() {
		results = append(results, failure(flowErrorf("unclosed %s block", sub.kind)))
	}
	return combine(results)
}

func hasBreak(r Result) bool {
	for _, item := range Flatten(r) {
		if _, isBreak := item.(loopBreak); isBreak {
			return true
		}
	}
	return false
}

// stripBreak removes loopBreak markers, reporting whether there were any
func stripBreak(r Result) (Result, bool) {
	if !hasBreak(r) {
		return r, false
	}
	var kept []Result
	for _, item := range Flatten(r) {
		if _, isBreak := item.(loopBreak); !isBreak {
			kept = append(kept, item)
		}
	}
	return combine(kept), true
}

// strayBreak turns a #break that escaped every loop into an error
func strayBreak(r Result) Result {
	kept, broke := stripBreak(r)
	if !broke {
		return r
	}
	return combine([]Result{kept, failf("#break outside of a loop")})
}

// Execute runs one script line. Lines belonging to an open multi-line block
// are collected until the block closes.
func (e *Engine) Execute(line string) Result {
	e.logger.TraceCat(CatCommand, "execute: %s", line)
	r := strayBreak(e.executeIn(e.assembler, line))
	if f, failed := FirstFailure(r); failed {
		e.logger.DebugCat(CatCommand, "%s: %s", line, f.Message)
	}
	return r
}

// executeIn runs one line against the given assembler
func (e *Engine) executeIn(a *assembler, line string) Result {
	if a.active() {
		return e.feedBlock(a, line)
	}

	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return ok
	case trimmed[0] == '/':
		return ClayCommand{Text: trimmed[1:]}
	case trimmed[0] != '#':
		return SendToMud{Text: line}
	}

	kw, args := splitKeyword(line)
	switch kw {
	case "":
		return failf("missing command name")
	case "if":
		cond, rest, err := splitCondition(args)
		if err != nil {
			return failure(err)
		}
		if rest == "" {
			return e.openIf(a, cond)
		}
		v, err := e.Evaluate(cond)
		if err != nil {
			return failure(err)
		}
		if !v.ToBool() {
			return ok
		}
		return e.executeIn(a, rest)
	case "while":
		return e.openWhile(a, args)
	case "for":
		return e.openFor(a, args)
	case "elseif", "else", "endif", "endwhile", "endfor", "done":
		return failf("#%s without an open block", kw)
	case "abort":
		return failf("#abort: no open block")
	case "break":
		return loopBreak{}
	}
	return e.runCommand(kw, args)
}
