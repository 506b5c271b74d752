package clay

import (
	"io"
	"testing"
)

// newTestEngine returns an engine with quiet logging and a fixed seed
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(&Config{RandSeed: 42, LogOut: io.Discard})
	t.Cleanup(e.Close)
	return e
}

// mustExecute runs lines and fails the test on the first Failure
func mustExecute(t *testing.T, e *Engine, lines ...string) Result {
	t.Helper()
	var results []Result
	for _, line := range lines {
		r := e.Execute(line)
		if f, failed := FirstFailure(r); failed {
			t.Fatalf("%q failed: %s", line, f.Message)
		}
		results = append(results, r)
	}
	return combine(results)
}

// outputTexts drains the engine and returns the output lines
func outputTexts(e *Engine) []string {
	var texts []string
	for _, line := range e.Drain().Output {
		texts = append(texts, line.Text)
	}
	return texts
}

func evalString(t *testing.T, e *Engine, src string) string {
	t.Helper()
	v, err := e.Evaluate(src)
	if err != nil {
		t.Fatalf("Evaluate(%q): %v", src, err)
	}
	return v.String()
}
