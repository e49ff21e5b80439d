package sequencer

import (
	"slices"
	"sort"

	"go-midiedit/midi"
)

// DeleteNote removes the note that starts at tick with the given key and
// velocity, together with the next note-off for the same key and channel.
// It returns false when no such pair exists; a note-on without a matching
// note-off is left in place.
func (t *Track) DeleteNote(tick uint64, key, velocity uint8) bool {
	t.Clean()

	start := sort.Search(len(t.events), func(i int) bool { return t.events[i].Tick >= tick })
	for on := start; on < len(t.events) && t.events[on].Tick == tick; on++ {
		n, ok := midi.NoteOn(t.events[on].Event.Message)
		if !ok || n.Key != key || n.Velocity != velocity {
			continue
		}
		off := t.findNoteOff(on+1, n.Channel, n.Key)
		if off < 0 {
			notify(t.observer, LevelWarn, "note %d ch %d at tick %d has no note-off", key, n.Channel, tick)
			continue
		}
		// off > on, so removing off first leaves the on index valid.
		t.events = slices.Delete(t.events, off, off+1)
		t.events = slices.Delete(t.events, on, on+1)
		t.dirty = true
		return true
	}
	return false
}

func (t *Track) findNoteOff(from int, channel, key uint8) int {
	for i := from; i < len(t.events); i++ {
		n, ok := midi.NoteOff(t.events[i].Event.Message)
		if ok && n.Channel == channel && n.Key == key {
			return i
		}
	}
	return -1
}

// Notes pairs note-ons with note-offs per key and channel, oldest note
// first. A note that never ends lasts until LastTick.
func (t *Track) Notes() []NoteSpan {
	t.Clean()

	type voice struct{ channel, key uint8 }
	open := make(map[voice][]int)
	var spans []NoteSpan
	for _, ev := range t.events {
		if n, ok := midi.NoteOn(ev.Event.Message); ok {
			v := voice{n.Channel, n.Key}
			open[v] = append(open[v], len(spans))
			spans = append(spans, NoteSpan{Start: ev.Tick, Key: n.Key, Velocity: n.Velocity, Channel: n.Channel})
			continue
		}
		if n, ok := midi.NoteOff(ev.Event.Message); ok {
			v := voice{n.Channel, n.Key}
			if pending := open[v]; len(pending) > 0 {
				spans[pending[0]].End = ev.Tick
				open[v] = pending[1:]
			}
		}
	}

	last := t.LastTick()
	for _, pending := range open {
		for _, i := range pending {
			spans[i].End = last
		}
	}
	return spans
}
