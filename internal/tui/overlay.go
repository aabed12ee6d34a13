package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// canvas is the line grid floating layers composite onto: the page renders
// first, then toasts and the modal overlay stamp over it. Widths are visual
// cells, so styled (ANSI-escaped) content measures correctly.
type canvas struct {
	lines  []string
	width  int
	height int
}

func newCanvas(page string, width, height int) *canvas {
	return &canvas{lines: splitLines(page), width: width, height: height}
}

func (c *canvas) String() string {
	return strings.Join(c.lines, "\n")
}

// stamp writes layer over the canvas with its top-left corner at (x, y).
// Rows outside the canvas are dropped; cells under the layer are replaced,
// cells beside it are kept.
func (c *canvas) stamp(layer string, x, y int) {
	if c.width <= 0 || x < 0 {
		return
	}
	rows := splitLines(layer)
	w := widest(rows)
	for i, row := range rows {
		n := y + i
		if n < 0 || n >= len(c.lines) || n >= c.height {
			continue
		}
		c.lines[n] = splice(c.lines[n], padTo(row, w), x, c.width)
	}
}

// stampCentered centers layer on the canvas, clamping to the top-left edge
// when the layer is larger than the canvas.
func (c *canvas) stampCentered(layer string) {
	rows := splitLines(layer)
	x := (c.width - widest(rows)) / 2
	y := (c.height - len(rows)) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	c.stamp(layer, x, y)
}

// splice replaces width(layer) cells of base starting at x, preserving the
// cells on either side out to the row width.
func splice(base, layer string, x, width int) string {
	base = padTo(base, width)
	left := ansi.Truncate(base, x, "")
	if short := x - ansi.StringWidth(left); short > 0 {
		left += strings.Repeat(" ", short)
	}
	end := x + ansi.StringWidth(layer)
	right := ansi.TruncateLeft(base, end, "")
	if gap := width - end - ansi.StringWidth(right); gap > 0 {
		right = strings.Repeat(" ", gap) + right
	}
	return left + layer + right
}

// splitLines splits on newlines, returning at least one element.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

// widest returns the visual width of the widest line.
func widest(lines []string) int {
	m := 0
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > m {
			m = w
		}
	}
	return m
}

// padTo pads s with spaces out to width cells.
func padTo(s string, width int) string {
	if gap := width - ansi.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// truncate shortens s to width cells, appending "…" if truncated.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
