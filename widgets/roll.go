package widgets

import (
	"strings"

	"go-midiedit/sequencer"
	"go-midiedit/theme"
)

// RollView selects the window of a piano roll.
type RollView struct {
	From         uint64 // first tick shown
	TicksPerCell uint64
	Columns      int
	Low, High    uint8 // key range, inclusive
	BeatTicks    uint64 // draw beat lines every BeatTicks, 0 for none
}

// RenderRoll draws note spans as text, highest key on top. Each row is
// prefixed with the key name.
func RenderRoll(spans []sequencer.NoteSpan, view RollView, sym theme.Symbols) string {
	if view.TicksPerCell == 0 || view.Columns <= 0 || view.High < view.Low {
		return ""
	}

	rows := int(view.High-view.Low) + 1
	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = make([]rune, view.Columns)
		for c := range grid[r] {
			grid[r][c] = sym.RollEmpty
			if view.BeatTicks > 0 && (view.From+uint64(c)*view.TicksPerCell)%view.BeatTicks == 0 {
				grid[r][c] = sym.RollBeat
			}
		}
	}

	end := view.From + uint64(view.Columns)*view.TicksPerCell
	for _, s := range spans {
		if s.Key < view.Low || s.Key > view.High || s.Start >= end {
			continue
		}
		last := s.End
		if last > s.Start {
			last--
		}
		if last < view.From {
			continue
		}
		row := grid[int(view.High-s.Key)]
		first := -1
		if s.Start >= view.From {
			first = int((s.Start - view.From) / view.TicksPerCell)
			row[first] = sym.RollStart
		}
		stop := min(int((last-view.From)/view.TicksPerCell), view.Columns-1)
		for c := max(first+1, 0); c <= stop; c++ {
			row[c] = sym.RollHold
		}
	}

	lines := make([]string, rows)
	for r, cells := range grid {
		lines[r] = padRight(NoteName(view.High-uint8(r)), 5) + string(cells)
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
