package clay

import (
	"time"

	"github.com/itchyny/timefmt-go"
)

// timeArg reads an optional epoch-seconds argument at index i
func timeArg(args []Value, i int) time.Time {
	if i < len(args) {
		secs := args[i].ToFloat()
		return time.Unix(int64(secs), int64((secs-float64(int64(secs)))*1e9))
	}
	return time.Now()
}

func buildTimeLib() {
	builtins["time"] = builtin{0, 0, "time()", func(e *Engine, args []Value) (Value, error) {
		return Int(time.Now().Unix()), nil
	}}

	builtins["ctime"] = builtin{0, 1, "ctime([secs])", func(e *Engine, args []Value) (Value, error) {
		return Str(timeArg(args, 0).Format(time.ANSIC)), nil
	}}

	builtins["ftime"] = builtin{1, 2, "ftime(format[, secs])", func(e *Engine, args []Value) (Value, error) {
		return Str(timefmt.Format(timeArg(args, 1), args[0].String())), nil
	}}

	// mktime(year, month, day[, hour, min, sec]) in local time
	builtins["mktime"] = builtin{3, 6, "mktime(year, month, day[, hour, min, sec])", func(e *Engine, args []Value) (Value, error) {
		parts := [6]int{}
		for i, a := range args {
			parts[i] = int(a.ToInt())
		}
		t := time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, time.Local)
		return Int(t.Unix()), nil
	}}

	builtins["strptime"] = builtin{2, 2, "strptime(text, format)", func(e *Engine, args []Value) (Value, error) {
		t, err := timefmt.ParseInLocation(args[0].String(), args[1].String(), time.Local)
		if err != nil {
			return Value{}, evalErrorf("strptime: %v", err)
		}
		return Int(t.Unix()), nil
	}}
}
