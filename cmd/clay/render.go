package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/phroun/clay"
)

// ANSI color codes for terminal output
const (
	colorYellow    = "\x1b[93m" // Bright yellow foreground
	colorDarkBrown = "\x1b[33m" // Dark yellow/brown for light backgrounds
	colorReset     = "\x1b[0m"  // Reset to default
)

var colorCodes = map[string]int{
	"black": 30, "red": 31, "green": 32, "yellow": 33,
	"blue": 34, "magenta": 35, "cyan": 36, "white": 37,
}

// sgr returns the escape sequence that turns on attrs, "" when none apply
func sgr(attrs clay.Attributes) string {
	var codes []string
	if attrs.Bold || attrs.Hilite {
		codes = append(codes, "1")
	}
	if attrs.Dim {
		codes = append(codes, "2")
	}
	if attrs.Underline {
		codes = append(codes, "4")
	}
	if attrs.Flash {
		codes = append(codes, "5")
	}
	if attrs.Reverse {
		codes = append(codes, "7")
	}
	if attrs.Color != "" {
		name := strings.ToLower(attrs.Color)
		offset := 0
		if strings.HasPrefix(name, "bg") {
			name = name[2:]
			offset = 10
		}
		if n, found := colorCodes[name]; found {
			codes = append(codes, fmt.Sprint(n+offset))
		}
	}
	if len(codes) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

// renderLine formats one output line for the terminal
func renderLine(line clay.OutputLine, color bool) string {
	text := line.Text
	if line.IsError && color {
		text = colorYellow + text + colorReset
	} else if on := sgr(line.Attrs); on != "" && color {
		text = on + text + colorReset
	}
	if line.Attrs.Bell {
		text += "\a"
	}
	return text
}

// promptColor picks the prompt color for the configured background
func promptColor(background string) string {
	if background == "light" {
		return colorDarkBrown
	}
	return colorYellow
}

// stdoutSupportsColor checks if stdout is a terminal that supports color output
func stdoutSupportsColor() bool {
	return supportsColor(os.Stdout)
}

func supportsColor(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	if (info.Mode() & os.ModeCharDevice) == 0 {
		return false
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// errorPrintf prints an error message to stderr, using color if supported
func errorPrintf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	if supportsColor(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s%s%s", colorYellow, message, colorReset)
	} else {
		fmt.Fprint(os.Stderr, message)
	}
}
