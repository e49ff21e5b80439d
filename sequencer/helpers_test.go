package sequencer

import (
	"testing"

	"gitlab.com/gomidi/midi/v2/smf"

	"go-midiedit/midi"
)

func noteOn(key, vel uint8) smf.Message { return midi.NewNote(0, key, vel) }
func noteOff(key uint8) smf.Message     { return smf.Message{0x80, key, 0} }

func ticks(t *Track) []uint64 {
	out := make([]uint64, 0, t.Len())
	for _, ev := range t.Events() {
		out = append(out, ev.Tick)
	}
	return out
}

func deltas(t *Track) []uint32 {
	out := make([]uint32, 0, t.Len())
	for _, ev := range t.Events() {
		out = append(out, ev.Event.Delta)
	}
	return out
}

func kinds(t *Track) []midi.Kind {
	out := make([]midi.Kind, 0, t.Len())
	for _, ev := range t.Events() {
		out = append(out, ev.Kind())
	}
	return out
}

func equalSlices[T comparable](t *testing.T, name string, got, want []T) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%s = %v, want %v", name, got, want)
		}
	}
}
