package clay

import (
	"encoding/json"
	"strings"

	"github.com/itchyny/gojq"
)

// jqCode compiles a query once per engine
func (e *Engine) jqCode(query string) (*gojq.Code, error) {
	if code, found := e.jqCache[query]; found {
		return code, nil
	}
	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, evalErrorf("jq: %v", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, evalErrorf("jq: %v", err)
	}
	e.jqCache[query] = code
	return code, nil
}

// jqText renders one query result: strings as they are, everything else as JSON
func jqText(v interface{}) (string, error) {
	if s, isString := v.(string); isString {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func buildDataLib() {
	// jq(query, json) runs a jq query over a JSON document; several results
	// are joined with spaces
	builtins["jq"] = builtin{2, 2, "jq(query, json)", func(e *Engine, args []Value) (Value, error) {
		code, err := e.jqCode(args[0].String())
		if err != nil {
			return Value{}, err
		}
		var input interface{}
		if err := json.Unmarshal([]byte(args[1].String()), &input); err != nil {
			return Value{}, evalErrorf("jq: bad JSON input: %v", err)
		}
		var out []string
		iter := code.Run(input)
		for {
			v, more := iter.Next()
			if !more {
				break
			}
			if err, isErr := v.(error); isErr {
				return Value{}, evalErrorf("jq: %v", err)
			}
			text, err := jqText(v)
			if err != nil {
				return Value{}, evalErrorf("jq: %v", err)
			}
			out = append(out, text)
		}
		if len(out) == 1 {
			if n := Str(out[0]); n.IsNumeric() {
				return n.numeric(), nil
			}
		}
		return Str(strings.Join(out, " ")), nil
	}}
}
