package terminal

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
)

// EnvTerminalMode forces glyph selection: "ascii" or "unicode".
const EnvTerminalMode = "NODEBOARD_TERMINAL_MODE"

// Capabilities describes what the attached terminal can display.
type Capabilities struct {
	Name string
	// ASCII restricts drawing to plain ASCII. Box-drawing glyphs need a
	// UTF-8 locale and single-width ambiguous characters.
	ASCII bool
	Color bool
}

// FullCapabilities is a UTF-8, colour terminal.
func FullCapabilities() Capabilities {
	return Capabilities{Name: "unicode", Color: true}
}

// ASCIICapabilities is a plain ASCII, monochrome terminal.
func ASCIICapabilities() Capabilities {
	return Capabilities{Name: "ascii", ASCII: true}
}

// DetectCapabilities inspects the environment of the current process.
func DetectCapabilities() Capabilities {
	switch os.Getenv(EnvTerminalMode) {
	case "ascii":
		return ASCIICapabilities()
	case "unicode":
		return FullCapabilities()
	}

	term := os.Getenv("TERM")
	caps := Capabilities{Name: term, Color: term != "" && term != "dumb"}
	if prog := os.Getenv("TERM_PROGRAM"); prog != "" {
		caps.Name = prog
	}

	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		caps.Color = false
	}

	switch {
	case !utf8Locale():
		caps.ASCII = true
	case term == "linux" || term == "dumb":
		caps.ASCII = true
	case runewidth.IsEastAsian():
		// Box-drawing characters are ambiguous width and take two cells.
		caps.ASCII = true
	}
	return caps
}

// utf8Locale reports whether the first set locale variable names UTF-8.
func utf8Locale() bool {
	for _, env := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		value := os.Getenv(env)
		if value == "" {
			continue
		}
		upper := strings.ToUpper(value)
		return strings.Contains(upper, "UTF-8") || strings.Contains(upper, "UTF8")
	}
	return false
}
