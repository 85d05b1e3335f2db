package cli

import (
	"fmt"
	"os"
	"strings"
)

// ANSI codes used by the terminal views
const (
	Reset = "\033[0m"

	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
	White  = "\033[37m"
	Gray   = "\033[90m"

	Bold = "\033[1m"
	Dim  = "\033[2m"
)

// Styles shared by every command
var (
	HeaderStyle  = Cyan + Bold
	SuccessStyle = Green + Bold
	ErrorStyle   = Red + Bold
	WarningStyle = Yellow + Bold
	InfoStyle    = Blue + Bold
	LabelStyle   = Cyan
	ValueStyle   = White + Bold
	CountStyle   = Yellow + Bold
	DimStyle     = Dim
	MetaStyle    = Gray
)

// colorsEnabled is false when NO_COLOR is set, see https://no-color.org
var colorsEnabled = os.Getenv("NO_COLOR") == ""

func paint(style, text string) string {
	if !colorsEnabled {
		return text
	}
	return style + text + Reset
}

func FormatHeader(text string) string {
	return paint(HeaderStyle, text)
}

func FormatSuccess(text string) string {
	return paint(SuccessStyle, text)
}

func FormatError(text string) string {
	return paint(ErrorStyle, text)
}

func FormatWarning(text string) string {
	return paint(WarningStyle, text)
}

func FormatInfo(text string) string {
	return paint(InfoStyle, text)
}

func FormatLabel(text string) string {
	return paint(LabelStyle, text)
}

func FormatValue(text string) string {
	return paint(ValueStyle, text)
}

func FormatCount(count int) string {
	return paint(CountStyle, fmt.Sprintf("%d", count))
}

func FormatDim(text string) string {
	return paint(DimStyle, text)
}

func FormatMeta(text string) string {
	return paint(MetaStyle, text)
}

// FormatLabelValue formats a "label value" pair
func FormatLabelValue(label, value string) string {
	return FormatLabel(label) + " " + FormatValue(value)
}

// FormatCountLabel formats a "label count" pair
func FormatCountLabel(label string, count int) string {
	return FormatLabel(label) + " " + FormatCount(count)
}

// FormatTitle renders a section title underlined to its own width
func FormatTitle(text string) string {
	return FormatHeader(text) + "\n" + FormatDim(strings.Repeat("=", len([]rune(text))))
}

// FormatBar renders count as a bar scaled against max, at most width cells wide
func FormatBar(count, max, width int) string {
	if count <= 0 || max <= 0 || width <= 0 {
		return ""
	}
	n := count * width / max
	if n == 0 {
		n = 1
	}
	return paint(Red, strings.Repeat("█", n))
}

// orDash shows missing category values explicitly
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
