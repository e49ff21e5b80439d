package sequencer

import (
	"context"
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2/smf"

	"go-midiedit/midi"
)

func TestScheduleConstantTempo(t *testing.T) {
	tr := NewTrack([]AbsEvent{
		NewAbsEvent(0, smf.MetaTempo(120)),
		NewAbsEvent(0, noteOn(60, 100)),
		NewAbsEvent(480, noteOff(60)),
		NewAbsEvent(960, smf.EOT),
	})
	cues := Schedule(tr, nil, 480)

	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2 (meta events skipped)", len(cues))
	}
	if cues[0].At != 0 || cues[1].At != 500*time.Millisecond {
		t.Errorf("cue times = %v, %v; want 0, 500ms", cues[0].At, cues[1].At)
	}
	if cues[1].Tick != 480 {
		t.Errorf("cue tick = %d", cues[1].Tick)
	}
}

func TestScheduleTempoChange(t *testing.T) {
	tempo := NewChangeMap([]Change[uint16]{{0, 120}, {480, 60}}, false)
	tr := NewTrack([]AbsEvent{
		NewAbsEvent(0, noteOn(60, 100)),
		NewAbsEvent(480, noteOff(60)),
		NewAbsEvent(960, noteOn(62, 100)),
		NewAbsEvent(1200, noteOff(62)),
	})
	cues := Schedule(tr, tempo, 480)

	want := []time.Duration{0, 500 * time.Millisecond, 1500 * time.Millisecond, 2 * time.Second}
	for i, w := range want {
		if cues[i].At != w {
			t.Errorf("cue %d at %v, want %v", i, cues[i].At, w)
		}
	}
}

func TestScheduleTempoChangeBetweenEvents(t *testing.T) {
	tempo := NewChangeMap([]Change[uint16]{{240, 60}}, false)
	tr := NewTrack([]AbsEvent{NewAbsEvent(480, noteOn(60, 1))})
	cues := Schedule(tr, tempo, 480)

	// 240 ticks at the 120 default, then 240 at 60
	if want := 250*time.Millisecond + 500*time.Millisecond; cues[0].At != want {
		t.Errorf("At = %v, want %v", cues[0].At, want)
	}
}

func TestPlayerSendsCues(t *testing.T) {
	cues := []Cue{
		{At: 0, Tick: 0, Message: noteOn(60, 100)},
		{At: time.Millisecond, Tick: 1, Message: noteOff(60)},
	}
	out := make(chan midi.Command, 8)
	p := NewPlayer(cues, out)
	p.Play(context.Background())

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("player did not finish")
	}
	if p.Playing() {
		t.Error("still playing after Done")
	}
	if len(out) != 2 {
		t.Fatalf("sent %d commands, want 2", len(out))
	}
	first := <-out
	if first.Type != midi.CommandSend || !midi.IsNoteOn(first.Data) {
		t.Errorf("first command = %+v", first)
	}
}

func TestPlayerStopSilences(t *testing.T) {
	cues := []Cue{
		{At: 0, Tick: 0, Message: noteOn(60, 100)},
		{At: time.Hour, Tick: 1, Message: noteOff(60)},
	}
	out := make(chan midi.Command, 8)
	p := NewPlayer(cues, out)
	p.Play(context.Background())

	// wait for the note-on
	select {
	case <-out:
	case <-time.After(2 * time.Second):
		t.Fatal("note-on not sent")
	}
	p.Stop()

	if len(out) != 1 {
		t.Fatalf("got %d commands after Stop, want one note-off", len(out))
	}
	off := <-out
	if n, ok := midi.NoteOff(off.Data); !ok || n.Key != 60 {
		t.Errorf("stop sent % X, want note-off 60", off.Data)
	}
	if p.Playing() {
		t.Error("Playing after Stop")
	}
}

func TestPlayerContextCancel(t *testing.T) {
	cues := []Cue{{At: time.Hour, Message: noteOn(60, 1)}}
	out := make(chan midi.Command, 1)
	p := NewPlayer(cues, out)

	ctx, cancel := context.WithCancel(context.Background())
	p.Play(ctx)
	cancel()

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("player ignored cancellation")
	}
	if len(out) != 0 {
		t.Error("cancelled player sent a message")
	}
}
