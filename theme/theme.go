package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"go-midiedit/midi"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Piano roll cells
	RollEmpty rune // · no note
	RollStart rune // ■ note starts in cell
	RollHold  rune // ━ note sustains through cell
	RollBeat  rune // ┊ empty cell on a beat line

	// Event list
	Cursor  rune // ▶ selected row
	Playing rune // ♪ row at the playback position
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			RollEmpty: '·',
			RollStart: '■',
			RollHold:  '━',
			RollBeat:  '┊',

			Cursor:  '▶',
			Playing: '♪',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleSurface = 0.1 // dark purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleCursor  = 0.6 // rose pink
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// KindColor picks the colour for an event kind in the event list.
func (t *Theme) KindColor(k midi.Kind) lipgloss.Color {
	switch k {
	case midi.KindNoteOn:
		return t.Success()
	case midi.KindNoteOff:
		return t.Active()
	case midi.KindTempo, midi.KindTimeSignature:
		return t.Warning()
	case midi.KindEndOfTrack:
		return t.Muted()
	default:
		return t.FG()
	}
}

// VelocityColor maps a MIDI velocity onto the palette.
func (t *Theme) VelocityColor(velocity uint8) lipgloss.Color {
	return t.Color(float64(velocity) / 127)
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
