package colour

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI escape codes for terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiFgPrefix = "\033[38;2;"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 4
)

func rgb8(c RGBA) (r, g, b uint8) {
	return to8(c.R), to8(c.G), to8(c.B)
}

// Swatch returns a solid block of width cells in colour c.
func Swatch(c RGBA, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	r, g, b := rgb8(c)
	return fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, r, g, b, ansiSuffix) + strings.Repeat(" ", width) + ansiReset
}

// SwatchWithText renders text centred on c, in black or white depending on
// which contrasts more.
func SwatchWithText(c RGBA, text string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	if len(text) > width {
		text = text[:width]
	} else if len(text) < width {
		pad := (width - len(text)) / 2
		text = strings.Repeat(" ", pad) + text + strings.Repeat(" ", width-len(text)-pad)
	}

	fg := White
	if ContrastRatio(c, Black) > ContrastRatio(c, White) {
		fg = Black
	}
	r, g, b := rgb8(c)
	fr, fgr, fb := rgb8(fg)
	return fmt.Sprintf("%s%d;%d;%d%s%s%d;%d;%d%s%s%s",
		ansiBgPrefix, r, g, b, ansiSuffix,
		ansiFgPrefix, fr, fgr, fb, ansiSuffix,
		text, ansiReset)
}

// SupportsANSI reports whether w is a terminal that should receive colour
// escapes. NO_COLOR disables colour regardless.
func SupportsANSI(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
