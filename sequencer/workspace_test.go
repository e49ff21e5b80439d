package sequencer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2/smf"

	"go-midiedit/midi"
)

func TestNewWorkspace(t *testing.T) {
	ws := NewWorkspace()

	if ws.TrackCount() != 2 || ws.Resolution() != 480 || ws.Format() != FormatMultiTrack {
		t.Fatalf("tracks=%d resolution=%d format=%v", ws.TrackCount(), ws.Resolution(), ws.Format())
	}

	conductor, _ := ws.Checkout(0)
	equalSlices(t, "conductor kinds", kinds(conductor),
		[]midi.Kind{midi.KindTimeSignature, midi.KindTempo, midi.KindEndOfTrack})

	empty, _ := ws.Checkout(1)
	equalSlices(t, "track 1 kinds", kinds(empty), []midi.Kind{midi.KindEndOfTrack})

	tm, err := ws.TempoMap(0)
	if err != nil {
		t.Fatal(err)
	}
	if bpm, _ := tm.Lookup(0); bpm != 120 {
		t.Errorf("tempo = %d, want 120", bpm)
	}
	ts, err := ws.TimeSignatureMap(0)
	if err != nil {
		t.Fatal(err)
	}
	if sig, _ := ts.Lookup(0); sig != (TimeSignature{4, 4}) {
		t.Errorf("time signature = %v, want 4/4", sig)
	}
}

func TestCheckoutOutOfRange(t *testing.T) {
	ws := NewWorkspace()
	for _, i := range []int{99, 2, -1} {
		if tr, ok := ws.Checkout(i); ok || tr != nil {
			t.Errorf("Checkout(%d) = %v, %v", i, tr, ok)
		}
	}
}

func TestCommit(t *testing.T) {
	ws := NewWorkspace()
	tr, _ := ws.Checkout(1)
	tr.AppendNotes([]Note{{Tick: 0, Key: 60, Velocity: 100}, {Tick: 480, Key: 60}})

	// the checkout is detached until committed
	if again, _ := ws.Checkout(1); again.Len() != 1 {
		t.Fatalf("workspace changed before Commit: %d events", again.Len())
	}

	if err := ws.Commit(1, tr); err != nil {
		t.Fatal(err)
	}
	got, _ := ws.Checkout(1)
	equalSlices(t, "ticks", ticks(got), []uint64{0, 480, 480})
	equalSlices(t, "kinds", kinds(got), []midi.Kind{midi.KindNoteOn, midi.KindNoteOff, midi.KindEndOfTrack})

	var ie *IndexError
	if err := ws.Commit(5, tr); !errors.As(err, &ie) || ie.Index != 5 || ie.Len != 2 {
		t.Errorf("Commit(5) error = %v", err)
	}
}

func TestCommitCollapsesExtraEndOfTrack(t *testing.T) {
	ws := NewWorkspace()
	tr, _ := ws.Checkout(1)
	tr.Append(NewAbsEvent(960, smf.EOT))
	tr.AppendNote(Note{Tick: 100, Key: 60, Velocity: 90})
	tr.Clean()

	equalSlices(t, "kinds", kinds(tr), []midi.Kind{midi.KindNoteOn, midi.KindEndOfTrack})
	equalSlices(t, "ticks", ticks(tr), []uint64{100, 100})

	if err := ws.Commit(1, tr); err != nil {
		t.Fatal(err)
	}
	got, _ := ws.Checkout(1)
	equalSlices(t, "committed kinds", kinds(got), []midi.Kind{midi.KindNoteOn, midi.KindEndOfTrack})
}

func TestCommitOverflowLeavesWorkspace(t *testing.T) {
	ws := NewWorkspace()
	tr := NewTrack([]AbsEvent{NewAbsEvent(MaxDelta+1, noteOn(60, 1))})
	if err := ws.Commit(1, tr); !errors.Is(err, ErrDeltaOverflow) {
		t.Fatalf("Commit error = %v", err)
	}
	if got, _ := ws.Checkout(1); got.Len() != 1 {
		t.Error("failed Commit changed the stored track")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	ws := NewWorkspace()
	tr, _ := ws.Checkout(1)
	tr.AppendNotes([]Note{
		{Tick: 0, Key: 60, Velocity: 100},
		{Tick: 240, Key: 60},
		{Tick: 240, Key: 64, Velocity: 90},
		{Tick: 960, Key: 64},
	})
	if err := ws.Commit(1, tr); err != nil {
		t.Fatal(err)
	}

	data, err := ws.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	back, err := FromBytes(data)
	if err != nil {
		t.Fatal(err)
	}

	if back.TrackCount() != 2 || back.Resolution() != 480 {
		t.Fatalf("tracks=%d resolution=%d", back.TrackCount(), back.Resolution())
	}
	got, _ := back.Checkout(1)
	equalSlices(t, "ticks", ticks(got), []uint64{0, 240, 240, 960, 960})
	equalSlices(t, "kinds", kinds(got), []midi.Kind{
		midi.KindNoteOn, midi.KindNoteOff, midi.KindNoteOn, midi.KindNoteOff, midi.KindEndOfTrack,
	})
}

func TestSerializeDoesNotMutate(t *testing.T) {
	ws := NewWorkspace()
	// a stored stream without end-of-track gets one only in the output
	ws.tracks[1] = smf.Track{{Delta: 10, Message: noteOn(60, 1)}}

	if _, err := ws.Serialize(); err != nil {
		t.Fatal(err)
	}
	if len(ws.tracks[1]) != 1 {
		t.Error("Serialize modified the stored track")
	}
}

func TestFromBytesErrors(t *testing.T) {
	var de *DecodeError
	if _, err := FromBytes([]byte("not a midi file")); !errors.As(err, &de) {
		t.Errorf("garbage error = %v, want *DecodeError", err)
	}
	if _, err := FromBytes(nil); !errors.As(err, &de) {
		t.Errorf("empty error = %v, want *DecodeError", err)
	}
}

// singleTrackFile encodes a format 0 file with 96 ticks per quarter.
func singleTrackFile(body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("MThd")
	buf.Write([]byte{0, 0, 0, 6, 0, 0, 0, 1, 0, 96})
	buf.WriteString("MTrk")
	n := len(body)
	buf.Write([]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	buf.Write(body)
	return buf.Bytes()
}

func TestReadSingleTrackFile(t *testing.T) {
	data := singleTrackFile([]byte{
		0x00, 0xFF, 0x51, 0x03, 0x09, 0x27, 0xC0, // 100 bpm
		0x00, 0x90, 60, 100,
		0x00, 0x99, 36, 100,
		0x30, 0x80, 60, 0,
		0x30, 0x89, 36, 0,
		0x00, 0xFF, 0x2F, 0x00,
	})

	ws, err := FromBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if ws.Format() != FormatMultiTrack || ws.Resolution() != 96 {
		t.Errorf("Format = %v, Resolution = %d", ws.Format(), ws.Resolution())
	}
	if ws.TrackCount() != 3 {
		t.Fatalf("TrackCount = %d, want conductor plus two channels", ws.TrackCount())
	}
	tm, err := ws.TempoMap(0)
	if err != nil || tm.Len() != 1 {
		t.Fatalf("tempo map = %v, %v", tm, err)
	}
	piano, _ := ws.Checkout(1)
	equalSlices(t, "piano ticks", ticks(piano), []uint64{0, 48, 96})
	drums, _ := ws.Checkout(2)
	equalSlices(t, "drum ticks", ticks(drums), []uint64{0, 96, 96})
	equalSlices(t, "drum kinds", kinds(drums), []midi.Kind{midi.KindNoteOn, midi.KindNoteOff, midi.KindEndOfTrack})
}

func TestAddTrackAndInfo(t *testing.T) {
	ws := NewWorkspace()
	tr := NewTrack([]AbsEvent{
		NewAbsEvent(0, smf.Message{0xFF, 0x03, 0x04, 'B', 'a', 's', 's'}),
		NewAbsEvent(0, noteOn(40, 100)),
		NewAbsEvent(480, noteOff(40)),
	})
	if err := ws.AddTrack(tr); err != nil {
		t.Fatal(err)
	}
	if !tr.Dirty() {
		t.Error("AddTrack modified the caller's track")
	}

	infos := ws.TrackInfo()
	if len(infos) != 3 {
		t.Fatalf("TrackInfo len = %d", len(infos))
	}
	if infos[1].Name != "Track 1" {
		t.Errorf("unnamed track = %q", infos[1].Name)
	}
	if infos[2].Name != "Bass" || infos[2].Events != 4 {
		t.Errorf("added track info = %+v", infos[2])
	}

	var ie *IndexError
	if _, err := ws.TempoMap(7); !errors.As(err, &ie) {
		t.Errorf("TempoMap(7) error = %v", err)
	}
}

func TestSaveOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mid")
	ws := NewWorkspace()
	if err := ws.Save(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	back, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.TrackCount() != 2 {
		t.Errorf("TrackCount = %d", back.TrackCount())
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.mid")); !os.IsNotExist(err) {
		t.Errorf("Open missing error = %v", err)
	}
}

func TestNewConductorTrack(t *testing.T) {
	// 100 bpm is an exact microsecond count, so it reads back unchanged
	tr := NewConductorTrack(100, TimeSignature{3, 4})
	tm, _ := NewTempoMap(tr)
	ts, _ := NewTimeSignatureMap(tr)
	if bpm, _ := tm.Lookup(0); bpm != 100 {
		t.Errorf("bpm = %d", bpm)
	}
	if sig, _ := ts.Lookup(0); sig != (TimeSignature{3, 4}) {
		t.Errorf("time signature = %v", sig)
	}
}
