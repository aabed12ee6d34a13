package tui

import (
	"strings"
	"testing"
)

func grid(rows ...string) string { return strings.Join(rows, "\n") }

func TestCanvasStampReplacesCoveredCells(t *testing.T) {
	cv := newCanvas(grid("aaaaaaaa", "bbbbbbbb", "cccccccc"), 8, 3)
	cv.stamp("XX", 3, 1)
	want := grid("aaaaaaaa", "bbbXXbbb", "cccccccc")
	if got := cv.String(); got != want {
		t.Fatalf("canvas =\n%s\nwant\n%s", got, want)
	}
}

func TestCanvasStampPadsShortRows(t *testing.T) {
	cv := newCanvas(grid("ab", "cd"), 6, 2)
	cv.stamp("XX", 4, 0)
	want := grid("ab  XX", "cd")
	if got := cv.String(); got != want {
		t.Fatalf("canvas = %q, want %q", got, want)
	}
}

func TestCanvasStampDropsRowsOutsideTheFrame(t *testing.T) {
	base := grid("aaaa", "bbbb")
	cv := newCanvas(base, 4, 2)
	cv.stamp(grid("X", "X", "X"), 0, 1) // third row falls off the canvas
	want := grid("aaaa", "Xbbb")
	if got := cv.String(); got != want {
		t.Fatalf("canvas = %q, want %q", got, want)
	}

	cv = newCanvas(base, 0, 0)
	cv.stamp("X", 0, 0)
	if got := cv.String(); got != base {
		t.Fatalf("zero-size canvas changed: %q", got)
	}
}

func TestCanvasStampCentered(t *testing.T) {
	cv := newCanvas(grid("..........", "..........", ".........."), 10, 3)
	cv.stampCentered("AB")
	want := grid("..........", "....AB....", "..........")
	if got := cv.String(); got != want {
		t.Fatalf("canvas =\n%s\nwant\n%s", got, want)
	}
}

func TestTruncateAddsEllipsis(t *testing.T) {
	if got := truncate("switchboard", 6); got != "switc…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("ok", 6); got != "ok" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("anything", 0); got != "" {
		t.Fatalf("truncate = %q", got)
	}
}
