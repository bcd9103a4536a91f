// Package output formats server responses, errors, and status lines for the
// terminal, either as styled text or as JSON records.
package output

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Formatter renders the three kinds of rconcli output.
type Formatter interface {
	// Response renders raw server output.
	Response(text string) string
	// Error renders a failure message.
	Error(msg string) string
	// Info renders a status or progress line.
	Info(msg string) string
}

// NewFormatter returns a Formatter for the given format string. Supported
// formats: "text" (default) and "json". color only affects text output.
func NewFormatter(format string, color bool) Formatter {
	if strings.ToLower(format) == "json" {
		return &JSONFormatter{now: time.Now}
	}
	return &TextFormatter{Color: color}
}

var (
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6"))

	numberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))

	playerListStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2"))

	numberPattern = regexp.MustCompile(`\b\d+\b`)
)

// TextFormatter renders plain or lipgloss-styled text.
type TextFormatter struct {
	// Color enables styling. With it off the formatter is a passthrough,
	// which is what pipes and dumb terminals get.
	Color bool
}

func (f *TextFormatter) Response(text string) string {
	if !f.Color {
		return text
	}

	// Light-touch highlighting of common Minecraft server output: the
	// player list header and any numbers.
	colored := strings.ReplaceAll(
		text,
		"players online:",
		playerListStyle.Render("players online:"),
	)
	colored = numberPattern.ReplaceAllStringFunc(colored, func(n string) string {
		return numberStyle.Render(n)
	})
	return colored
}

func (f *TextFormatter) Error(msg string) string {
	if !f.Color {
		return "Error: " + msg
	}
	return errorStyle.Render("Error: " + msg)
}

func (f *TextFormatter) Info(msg string) string {
	if !f.Color {
		return msg
	}
	return infoStyle.Render(msg)
}

// JSONFormatter renders each output as a single JSON object with an RFC3339
// timestamp, one record per line.
type JSONFormatter struct {
	now func() time.Time
}

func (f *JSONFormatter) record(key, value string) string {
	ts := time.Now
	if f.now != nil {
		ts = f.now
	}
	b, err := json.Marshal(map[string]string{
		key:         value,
		"timestamp": ts().UTC().Format(time.RFC3339),
	})
	if err != nil {
		// A map of strings cannot fail to marshal; keep the output usable
		// anyway.
		return `{"error":"failed to encode output"}`
	}
	return string(b)
}

func (f *JSONFormatter) Response(text string) string { return f.record("response", text) }
func (f *JSONFormatter) Error(msg string) string     { return f.record("error", msg) }
func (f *JSONFormatter) Info(msg string) string      { return f.record("info", msg) }
