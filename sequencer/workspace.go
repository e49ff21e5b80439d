package sequencer

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"

	"go-midiedit/midi"
)

// Format is the SMF header format.
type Format uint16

const (
	FormatSingleTrack   Format = 0
	FormatMultiTrack    Format = 1
	FormatMultiSequence Format = 2
)

func (f Format) String() string {
	switch f {
	case FormatSingleTrack:
		return "single-track"
	case FormatMultiTrack:
		return "multi-track"
	case FormatMultiSequence:
		return "multi-sequence"
	default:
		return fmt.Sprintf("format(%d)", uint16(f))
	}
}

// DefaultResolution is the ticks per quarter note of a new workspace.
const DefaultResolution uint16 = 480

// Workspace holds the raw delta streams of a multi-track file. Tracks are
// handed out as detached copies and written back with Commit.
type Workspace struct {
	tracks     []smf.Track
	resolution uint16
	format     Format
	observer   Observer
}

// TrackInfo describes one track for a track selector.
type TrackInfo struct {
	Index  int
	Name   string
	Events int
}

// NewWorkspace creates an empty two-track song: a conductor track with 4/4
// and 120 BPM, and one empty track.
func NewWorkspace() *Workspace {
	conductor := smf.Track{
		{Delta: 0, Message: timeSignatureMessage(DefaultTimeSignature)},
		{Delta: 0, Message: smf.MetaTempo(float64(DefaultTempo))},
		{Delta: 0, Message: smf.EOT},
	}
	empty := smf.Track{{Delta: 0, Message: smf.EOT}}
	return &Workspace{
		tracks:     []smf.Track{conductor, empty},
		resolution: DefaultResolution,
		format:     FormatMultiTrack,
	}
}

// NewConductorTrack returns a finalized track holding one time signature
// and one tempo at tick 0.
func NewConductorTrack(bpm uint16, ts TimeSignature) *Track {
	t := NewTrack([]AbsEvent{
		NewAbsEvent(0, timeSignatureMessage(ts)),
		NewAbsEvent(0, smf.MetaTempo(float64(bpm))),
	})
	t.Finalize()
	return t
}

func timeSignatureMessage(ts TimeSignature) smf.Message {
	var exp byte
	for d := ts.Denominator; d > 1; d >>= 1 {
		exp++
	}
	return smf.Message{0xFF, midi.MetaTimeSignature, 0x04, ts.Numerator, exp, 24, 8}
}

// ReadFrom parses a Standard MIDI File. Single-track files are split into
// multi-track form; any failure is a *DecodeError.
func ReadFrom(r io.Reader) (*Workspace, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, &DecodeError{Err: ErrUnsupportedTimeFormat}
	}

	tracks := s.Tracks
	switch Format(s.Format()) {
	case FormatMultiTrack:
	case FormatSingleTrack:
		if len(tracks) != 1 {
			return nil, &DecodeError{Err: fmt.Errorf("%w: single-track file has %d tracks", ErrUnsupportedFormat, len(tracks))}
		}
		tracks = splitSingleTrack(tracks[0])
	default:
		return nil, &DecodeError{Err: fmt.Errorf("%w: format %d", ErrUnsupportedFormat, s.Format())}
	}

	ws := &Workspace{
		tracks:     make([]smf.Track, len(tracks)),
		resolution: uint16(ticks),
		format:     FormatMultiTrack,
	}
	for i, tr := range tracks {
		ws.tracks[i] = cloneStream(tr)
	}
	return ws, nil
}

// FromBytes parses an in-memory file.
func FromBytes(data []byte) (*Workspace, error) {
	return ReadFrom(bytes.NewReader(data))
}

// Open reads a file from disk.
func Open(path string) (*Workspace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFrom(f)
}

// splitSingleTrack moves meta and system events to a conductor track and
// gives each MIDI channel its own track, in order of first use.
func splitSingleTrack(src smf.Track) []smf.Track {
	abs := FromDelta(src)
	conductor := &Track{}
	channels := map[uint8]*Track{}
	var order []uint8

	var end uint64
	for _, ev := range abs.events {
		end = max(end, ev.Tick)
		msg := ev.Event.Message
		if midi.IsEndOfTrack(msg) {
			continue
		}
		if len(msg) == 0 || msg[0] >= 0xF0 {
			conductor.events = append(conductor.events, ev)
			continue
		}
		ch := msg[0] & 0x0F
		t, ok := channels[ch]
		if !ok {
			t = &Track{}
			channels[ch] = t
			order = append(order, ch)
		}
		t.events = append(t.events, ev)
	}

	out := make([]smf.Track, 0, len(order)+1)
	for _, t := range append([]*Track{conductor}, channelTracks(channels, order)...) {
		t.events = append(t.events, NewAbsEvent(end, smf.EOT))
		rebuildDelta(t.events)
		out = append(out, t.stream())
	}
	return out
}

func channelTracks(channels map[uint8]*Track, order []uint8) []*Track {
	tracks := make([]*Track, len(order))
	for i, ch := range order {
		tracks[i] = channels[ch]
	}
	return tracks
}

// stream copies the events out with their current deltas.
func (t *Track) stream() smf.Track {
	out := make(smf.Track, len(t.events))
	for i, ev := range t.events {
		out[i] = cloneEvent(ev.Event)
	}
	return out
}

func cloneStream(tr smf.Track) smf.Track {
	out := make(smf.Track, len(tr))
	for i, ev := range tr {
		out[i] = cloneEvent(ev)
	}
	return out
}

// SetObserver sets the observer for the workspace and for tracks checked
// out afterwards.
func (w *Workspace) SetObserver(o Observer) {
	w.observer = o
}

func (w *Workspace) TrackCount() int {
	return len(w.tracks)
}

// Resolution returns the ticks per quarter note.
func (w *Workspace) Resolution() uint16 {
	return w.resolution
}

func (w *Workspace) Format() Format {
	return w.format
}

// Checkout returns a detached, editable copy of track i. ok is false when
// i is out of range.
func (w *Workspace) Checkout(i int) (*Track, bool) {
	if i < 0 || i >= len(w.tracks) {
		return nil, false
	}
	t := FromDelta(w.tracks[i])
	t.observer = w.observer
	return t, true
}

// Commit rebuilds t's deltas and stores them as track i. Nothing changes if
// i is out of range or a delta overflows.
func (w *Workspace) Commit(i int, t *Track) error {
	if i < 0 || i >= len(w.tracks) {
		return &IndexError{Index: i, Len: len(w.tracks)}
	}
	stream, err := t.Delta()
	if err != nil {
		return fmt.Errorf("commit track %d: %w", i, err)
	}
	w.tracks[i] = stream
	notify(w.observer, LevelDebug, "committed track %d: %d events", i, len(stream))
	return nil
}

// AddTrack finalizes t and appends it as a new track.
func (w *Workspace) AddTrack(t *Track) error {
	t = t.Clone()
	t.Finalize()
	stream, err := t.Delta()
	if err != nil {
		return fmt.Errorf("add track: %w", err)
	}
	w.tracks = append(w.tracks, stream)
	notify(w.observer, LevelInfo, "added track %d", len(w.tracks)-1)
	return nil
}

// TrackInfo lists every track with its display name and event count.
func (w *Workspace) TrackInfo() []TrackInfo {
	infos := make([]TrackInfo, len(w.tracks))
	for i, tr := range w.tracks {
		info := TrackInfo{Index: i, Name: fmt.Sprintf("Track %d", i), Events: len(tr)}
		for _, ev := range tr {
			if name, ok := midi.TrackName(ev.Message); ok && name != "" {
				info.Name = name
				break
			}
		}
		infos[i] = info
	}
	return infos
}

// TempoMap builds the tempo map of track i.
func (w *Workspace) TempoMap(i int) (*TempoMap, error) {
	t, ok := w.Checkout(i)
	if !ok {
		return nil, &IndexError{Index: i, Len: len(w.tracks)}
	}
	return NewTempoMap(t)
}

// TimeSignatureMap builds the time-signature map of track i.
func (w *Workspace) TimeSignatureMap(i int) (*TimeSignatureMap, error) {
	t, ok := w.Checkout(i)
	if !ok {
		return nil, &IndexError{Index: i, Len: len(w.tracks)}
	}
	return NewTimeSignatureMap(t)
}

// WriteTo encodes the workspace as a format 1 file. Every track is
// finalized on a copy; the stored streams are not touched.
func (w *Workspace) WriteTo(out io.Writer) (int64, error) {
	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(w.resolution)
	for i, raw := range w.tracks {
		t := FromDelta(raw)
		t.observer = w.observer
		t.Finalize()
		stream, err := t.Delta()
		if err != nil {
			return 0, fmt.Errorf("track %d: %w", i, err)
		}
		if err := s.Add(stream); err != nil {
			return 0, fmt.Errorf("track %d: %w", i, err)
		}
	}
	return s.WriteTo(out)
}

// Serialize returns the encoded file.
func (w *Workspace) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the file to path.
func (w *Workspace) Save(path string) error {
	data, err := w.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	notify(w.observer, LevelInfo, "saved %s (%d bytes)", path, len(data))
	return nil
}
