package widgets

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"

	"go-midiedit/midi"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the scientific pitch name, middle C (60) is C4.
func NoteName(key uint8) string {
	return fmt.Sprintf("%s%d", noteNames[key%12], int(key)/12-1)
}

// FormatEvent returns the type and data columns of the event list.
func FormatEvent(msg smf.Message) (typ, data string) {
	if n, ok := midi.NoteOn(msg); ok {
		return "note on", fmt.Sprintf("%-4s %3d %3d ch%d", NoteName(n.Key), n.Key, n.Velocity, n.Channel+1)
	}
	if n, ok := midi.NoteOff(msg); ok {
		return "note off", fmt.Sprintf("%-4s %3d     ch%d", NoteName(n.Key), n.Key, n.Channel+1)
	}

	cmd, payload, ok := midi.MetaPayload(msg)
	if !ok {
		return "midi message", formatBytes(msg)
	}
	switch cmd {
	case midi.MetaTempo:
		if bpm, err := midi.DecodeTempo(payload); err == nil {
			return "tempo", fmt.Sprintf("%d bpm", bpm)
		}
	case midi.MetaTimeSignature:
		if num, denom, err := midi.DecodeTimeSignature(payload); err == nil {
			return "time signature", fmt.Sprintf("%d/%d", num, denom)
		}
	case midi.MetaEndOfTrack:
		return "end of track", ""
	case midi.MetaTrackName:
		return "track name", string(payload)
	}
	return fmt.Sprintf("meta 0x%02X", cmd), formatBytes(payload)
}

// formatBytes shows at most the first five bytes.
func formatBytes(b []byte) string {
	n := min(len(b), 5)
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("%02X", b[i])
	}
	s := strings.Join(parts, " ")
	if len(b) > n {
		s += " …"
	}
	return s
}

// FormatTick renders an absolute tick as beat.tick for the given
// resolution, e.g. 3.240.
func FormatTick(tick uint64, resolution uint16) string {
	if resolution == 0 {
		return fmt.Sprintf("%d", tick)
	}
	r := uint64(resolution)
	return fmt.Sprintf("%d.%03d", tick/r+1, tick%r)
}
