package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// NoteMsg is a decoded note message. Channel is 0-15.
type NoteMsg struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
}

const (
	statusNoteOff = 0x80
	statusNoteOn  = 0x90
)

// decodeNote reads a note message from its wire bytes.
func decodeNote(msg smf.Message) (status uint8, n NoteMsg, ok bool) {
	if len(msg) < 3 {
		return 0, NoteMsg{}, false
	}
	status = msg[0] & 0xF0
	if status != statusNoteOff && status != statusNoteOn {
		return 0, NoteMsg{}, false
	}
	return status, NoteMsg{Channel: msg[0] & 0x0F, Key: msg[1], Velocity: msg[2]}, true
}

// NoteOn decodes a note start. A note-on with velocity 0 is not a start.
func NoteOn(msg smf.Message) (NoteMsg, bool) {
	status, n, ok := decodeNote(msg)
	if !ok || status != statusNoteOn || n.Velocity == 0 {
		return NoteMsg{}, false
	}
	return n, true
}

// NoteOff decodes a note end: an explicit note-off or a note-on with
// velocity 0.
func NoteOff(msg smf.Message) (NoteMsg, bool) {
	status, n, ok := decodeNote(msg)
	if !ok || (status == statusNoteOn && n.Velocity != 0) {
		return NoteMsg{}, false
	}
	return n, true
}

// NewNote builds a note-on, or a note-off when velocity is 0.
func NewNote(channel, key, velocity uint8) smf.Message {
	if velocity == 0 {
		return smf.Message(gomidi.NoteOff(channel, key))
	}
	return smf.Message(gomidi.NoteOn(channel, key, velocity))
}
