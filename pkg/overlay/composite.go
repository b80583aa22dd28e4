package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const resetStyle = "\x1b[0m"

// Composite draws fg centered over bg within a width x height canvas. Both
// may contain ANSI sequences; cells of bg outside fg's box are preserved.
func Composite(bg, fg string, width, height int) string {
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}

	fgLines := strings.Split(fg, "\n")
	fgWidth := 0
	for _, l := range fgLines {
		fgWidth = max(fgWidth, ansi.StringWidth(l))
	}

	x := max(0, (width-fgWidth)/2)
	y := max(0, (height-len(fgLines))/2)

	for i, line := range fgLines {
		row := y + i
		for row >= len(bgLines) {
			bgLines = append(bgLines, "")
		}
		bgLines[row] = spliceLine(bgLines[row], line, x, fgWidth)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLine replaces cells [x, x+w) of line with fg.
func spliceLine(line, fg string, x, w int) string {
	left := ansi.Truncate(line, x, "")
	if pad := x - ansi.StringWidth(left); pad > 0 {
		left += strings.Repeat(" ", pad)
	}
	if pad := w - ansi.StringWidth(fg); pad > 0 {
		fg += strings.Repeat(" ", pad)
	}

	var right string
	if ansi.StringWidth(line) > x+w {
		right = ansi.TruncateLeft(line, x+w, "")
	}
	return left + resetStyle + fg + resetStyle + right
}
