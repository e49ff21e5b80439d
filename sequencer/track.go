package sequencer

import (
	"bytes"
	"fmt"
	"slices"

	"gitlab.com/gomidi/midi/v2/smf"

	"go-midiedit/midi"
)

// Track is an editable, absolute-tick view of one SMF track.
//
// While the track is clean its events are sorted by tick, note-offs come
// before other events at the same tick, a single end-of-track event sits
// last, and every Event.Delta matches the tick gap to its predecessor.
// Mutations only mark the track dirty; Clean restores the ordering.
type Track struct {
	events   []AbsEvent
	dirty    bool
	observer Observer
}

// NewTrack builds a track from events in any order. It is sorted on first
// use.
func NewTrack(events []AbsEvent) *Track {
	return &Track{events: events, dirty: true}
}

// FromDelta converts a delta-time stream into absolute ticks. The input is
// trusted to be in wire order, so the result is clean and is not re-sorted.
// Messages are copied; the track never aliases raw.
func FromDelta(raw smf.Track) *Track {
	events := make([]AbsEvent, len(raw))
	var tick uint64
	for i, ev := range raw {
		tick += uint64(ev.Delta)
		events[i] = AbsEvent{Tick: tick, Event: cloneEvent(ev)}
	}
	return &Track{events: events}
}

// SetObserver sets where diagnostics go. nil disables them.
func (t *Track) SetObserver(o Observer) {
	t.observer = o
}

// Events returns the events in their current order. Call Clean first to
// get the sorted order.
func (t *Track) Events() []AbsEvent {
	return slices.Clone(t.events)
}

func (t *Track) Len() int {
	return len(t.events)
}

// Dirty reports whether a mutation happened since the last Clean.
func (t *Track) Dirty() bool {
	return t.dirty
}

// Append inserts arbitrary events.
func (t *Track) Append(events ...AbsEvent) {
	if len(events) == 0 {
		return
	}
	t.events = append(t.events, events...)
	t.dirty = true
}

// AppendNote inserts a single note-on, or a note-off when Velocity is 0.
func (t *Track) AppendNote(n Note) {
	t.AppendNotes([]Note{n})
}

// AppendNotes inserts many notes in one batch. Deltas are placeholders until
// the next Clean.
func (t *Track) AppendNotes(notes []Note) {
	if len(notes) == 0 {
		return
	}
	t.events = slices.Grow(t.events, len(notes))
	for _, n := range notes {
		t.events = append(t.events, NewAbsEvent(n.Tick, midi.NewNote(n.Channel, n.Key, n.Velocity)))
	}
	t.dirty = true
}

// Remove deletes the first event at tick whose bytes equal msg.
func (t *Track) Remove(tick uint64, msg smf.Message) bool {
	for i, ev := range t.events {
		if ev.Tick == tick && bytes.Equal(ev.Event.Message, msg) {
			t.events = slices.Delete(t.events, i, i+1)
			t.dirty = true
			return true
		}
	}
	return false
}

// Clean sorts the events and rebuilds deltas if the track is dirty.
func (t *Track) Clean() {
	if !t.dirty {
		return
	}
	sortEvents(t.events)
	var dropped int
	t.events, dropped = dropExtraEndOfTrack(t.events)
	if dropped > 0 {
		notify(t.observer, LevelWarn, "dropped %d duplicate end-of-track events", dropped)
	}
	fixEndOfTrack(t.events)
	rebuildDelta(t.events)
	t.dirty = false
	notify(t.observer, LevelDebug, "track cleaned: %d events", len(t.events))
}

// Finalize prepares the track for writing: it leaves exactly one
// end-of-track event and cleans.
func (t *Track) Finalize() {
	eots := 0
	for _, ev := range t.events {
		if midi.IsEndOfTrack(ev.Event.Message) {
			eots++
		}
	}
	switch {
	case eots == 0:
		t.events = append(t.events, NewAbsEvent(maxTick(t.events), smf.EOT))
		t.dirty = true
		notify(t.observer, LevelInfo, "added missing end-of-track")
	case eots > 1:
		// Clean keeps only the last one
		t.dirty = true
	}
	t.Clean()
}

// Delta cleans the track and returns a detached copy of its delta-time
// stream. If a gap cannot be encoded the track stays dirty, since its
// Event.Delta values are not valid.
func (t *Track) Delta() (smf.Track, error) {
	t.Clean()
	out := make(smf.Track, len(t.events))
	var prev uint64
	for i, ev := range t.events {
		if gap := ev.Tick - prev; gap > MaxDelta {
			t.dirty = true
			return nil, fmt.Errorf("%w: %d ticks before event %d", ErrDeltaOverflow, gap, i)
		}
		out[i] = cloneEvent(ev.Event)
		prev = ev.Tick
	}
	return out, nil
}

// LastTick returns the tick of the final event, or 0 for an empty track.
func (t *Track) LastTick() uint64 {
	t.Clean()
	if len(t.events) == 0 {
		return 0
	}
	return t.events[len(t.events)-1].Tick
}

// Clone returns an independent copy.
func (t *Track) Clone() *Track {
	events := make([]AbsEvent, len(t.events))
	for i, ev := range t.events {
		events[i] = AbsEvent{Tick: ev.Tick, Event: cloneEvent(ev.Event)}
	}
	return &Track{events: events, dirty: t.dirty, observer: t.observer}
}

func maxTick(events []AbsEvent) uint64 {
	var m uint64
	for _, ev := range events {
		m = max(m, ev.Tick)
	}
	return m
}
