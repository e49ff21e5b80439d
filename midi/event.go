package midi

import (
	"gitlab.com/gomidi/midi/v2/smf"
)

// Kind is the category of a message as far as track editing is concerned.
// Everything the editor does not reason about is KindOther.
type Kind uint8

const (
	KindOther Kind = iota
	KindNoteOn
	KindNoteOff
	KindTempo
	KindTimeSignature
	KindEndOfTrack
)

func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "note on"
	case KindNoteOff:
		return "note off"
	case KindTempo:
		return "tempo"
	case KindTimeSignature:
		return "time signature"
	case KindEndOfTrack:
		return "end of track"
	default:
		return "other"
	}
}

// KindOf classifies msg. A note-on with velocity 0 is a note-off.
func KindOf(msg smf.Message) Kind {
	if _, ok := NoteOn(msg); ok {
		return KindNoteOn
	}
	if _, ok := NoteOff(msg); ok {
		return KindNoteOff
	}
	cmd, _, ok := MetaPayload(msg)
	if !ok {
		return KindOther
	}
	switch cmd {
	case MetaEndOfTrack:
		return KindEndOfTrack
	case MetaTempo:
		return KindTempo
	case MetaTimeSignature:
		return KindTimeSignature
	}
	return KindOther
}

// IsNoteOn reports a note-on with a non-zero velocity.
func IsNoteOn(msg smf.Message) bool { return KindOf(msg) == KindNoteOn }

// IsNoteOff reports a note-off, including a note-on with velocity 0.
func IsNoteOff(msg smf.Message) bool { return KindOf(msg) == KindNoteOff }

func IsTempo(msg smf.Message) bool { return KindOf(msg) == KindTempo }

func IsTimeSignature(msg smf.Message) bool { return KindOf(msg) == KindTimeSignature }

func IsEndOfTrack(msg smf.Message) bool { return KindOf(msg) == KindEndOfTrack }
