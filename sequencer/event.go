package sequencer

import (
	"gitlab.com/gomidi/midi/v2/smf"

	"go-midiedit/midi"
)

// MaxDelta is the largest delta a 4-byte variable-length quantity encodes.
const MaxDelta = 0x0FFFFFFF

// AbsEvent pairs an SMF event with its absolute tick. Event.Delta is only
// meaningful while the owning track is clean.
type AbsEvent struct {
	Tick  uint64
	Event smf.Event
}

// NewAbsEvent wraps msg at tick. The delta is fixed up on the next clean.
func NewAbsEvent(tick uint64, msg smf.Message) AbsEvent {
	return AbsEvent{Tick: tick, Event: smf.Event{Message: msg}}
}

func (e AbsEvent) Message() smf.Message { return e.Event.Message }

func (e AbsEvent) Kind() midi.Kind { return midi.KindOf(e.Event.Message) }

// Note is one note-on (or note-off when Velocity is 0) to insert.
type Note struct {
	Tick     uint64
	Key      uint8
	Velocity uint8
	Channel  uint8
}

// NoteSpan is a paired note-on/note-off.
type NoteSpan struct {
	Start    uint64
	End      uint64
	Key      uint8
	Velocity uint8
	Channel  uint8
}

func cloneEvent(ev smf.Event) smf.Event {
	return smf.Event{Delta: ev.Delta, Message: append(smf.Message(nil), ev.Message...)}
}
