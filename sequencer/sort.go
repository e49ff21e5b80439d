package sequencer

import (
	"cmp"
	"slices"

	"go-midiedit/midi"
)

// compareEvents orders events for the wire. End-of-track sorts after
// everything else. Otherwise events go by tick, and at equal ticks note-offs
// (including velocity-0 note-ons) come first. All other ties keep their
// insertion order.
func compareEvents(a, b AbsEvent) int {
	aEnd := midi.IsEndOfTrack(a.Event.Message)
	bEnd := midi.IsEndOfTrack(b.Event.Message)
	switch {
	case aEnd && !bEnd:
		return 1
	case !aEnd && bEnd:
		return -1
	}
	if c := cmp.Compare(a.Tick, b.Tick); c != 0 {
		return c
	}
	aOff := midi.IsNoteOff(a.Event.Message)
	bOff := midi.IsNoteOff(b.Event.Message)
	switch {
	case aOff && !bOff:
		return -1
	case !aOff && bOff:
		return 1
	}
	return 0
}

func sortEvents(events []AbsEvent) {
	slices.SortStableFunc(events, compareEvents)
}

// dropExtraEndOfTrack keeps only the last of the trailing end-of-track
// events. Events must already be sorted.
func dropExtraEndOfTrack(events []AbsEvent) ([]AbsEvent, int) {
	first := len(events)
	for first > 0 && midi.IsEndOfTrack(events[first-1].Event.Message) {
		first--
	}
	extra := len(events) - first - 1
	if extra <= 0 {
		return events, 0
	}
	return slices.Delete(events, first, first+extra), extra
}

// fixEndOfTrack moves trailing end-of-track events to the tick of the last
// real event. Events must already be sorted.
func fixEndOfTrack(events []AbsEvent) {
	last := len(events) - 1
	for last >= 0 && midi.IsEndOfTrack(events[last].Event.Message) {
		last--
	}
	if last < 0 || last == len(events)-1 {
		return
	}
	tick := events[last].Tick
	for i := last + 1; i < len(events); i++ {
		events[i].Tick = tick
	}
}

func rebuildDelta(events []AbsEvent) {
	var prev uint64
	for i := range events {
		events[i].Event.Delta = uint32(events[i].Tick - prev)
		prev = events[i].Tick
	}
}
