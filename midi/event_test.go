package midi

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		msg  smf.Message
		want Kind
	}{
		{"note on", smf.Message(gomidi.NoteOn(0, 60, 100)), KindNoteOn},
		{"note off", smf.Message{0x80, 60, 64}, KindNoteOff},
		{"note on velocity 0", smf.Message{0x93, 60, 0}, KindNoteOff},
		{"control change", smf.Message(gomidi.ControlChange(0, 7, 100)), KindOther},
		{"tempo", smf.Message{0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20}, KindTempo},
		{"time signature", smf.Message{0xFF, 0x58, 0x04, 4, 2, 24, 8}, KindTimeSignature},
		{"end of track", smf.Message{0xFF, 0x2F, 0x00}, KindEndOfTrack},
		{"track name", smf.Message{0xFF, 0x03, 0x02, 'h', 'i'}, KindOther},
		{"empty", nil, KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.msg); got != tt.want {
				t.Errorf("KindOf(% X) = %v, want %v", []byte(tt.msg), got, tt.want)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	off := smf.Message{0x90, 64, 0}
	if IsNoteOn(off) {
		t.Error("velocity 0 note-on reported as note on")
	}
	if !IsNoteOff(off) {
		t.Error("velocity 0 note-on not reported as note off")
	}
	if !IsEndOfTrack(smf.EOT) {
		t.Error("smf.EOT not recognised")
	}
	if !IsTempo(smf.MetaTempo(120)) {
		t.Error("smf.MetaTempo not recognised")
	}
	if !IsTimeSignature(smf.Message{0xFF, 0x58, 0x04, 3, 3, 24, 8}) {
		t.Error("time signature not recognised")
	}
}

func TestNoteDecode(t *testing.T) {
	n, ok := NoteOn(smf.Message{0x95, 61, 90})
	if !ok || n != (NoteMsg{Channel: 5, Key: 61, Velocity: 90}) {
		t.Errorf("NoteOn = %+v, %v", n, ok)
	}
	if _, ok := NoteOn(smf.Message{0x85, 61, 90}); ok {
		t.Error("NoteOn accepted a note-off")
	}
	n, ok = NoteOff(smf.Message{0x9F, 10, 0})
	if !ok || n.Channel != 15 || n.Key != 10 {
		t.Errorf("NoteOff = %+v, %v", n, ok)
	}
	if _, ok := NoteOff(smf.Message{0x90, 10}); ok {
		t.Error("NoteOff accepted a truncated message")
	}
}

func TestNewNote(t *testing.T) {
	on := NewNote(2, 60, 100)
	if n, ok := NoteOn(on); !ok || n != (NoteMsg{Channel: 2, Key: 60, Velocity: 100}) {
		t.Errorf("NewNote(2, 60, 100) = % X", []byte(on))
	}
	off := NewNote(2, 60, 0)
	if n, ok := NoteOff(off); !ok || n.Channel != 2 || n.Key != 60 {
		t.Errorf("NewNote(2, 60, 0) = % X", []byte(off))
	}
}
