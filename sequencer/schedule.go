package sequencer

import (
	"time"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Cue is a channel message due at a wall-clock offset from the start.
type Cue struct {
	At      time.Duration
	Tick    uint64
	Message smf.Message
}

// Schedule converts the channel messages of t into cues. Meta and system
// events are skipped. tempo may be nil, in which case 120 BPM is used.
func Schedule(t *Track, tempo *TempoMap, resolution uint16) []Cue {
	t.Clean()
	if resolution == 0 {
		resolution = DefaultResolution
	}

	var (
		cues    []Cue
		curTick uint64
		curTime time.Duration
	)
	bpm := tempo.ValueAt(0, DefaultTempo)
	for _, ev := range t.events {
		msg := ev.Event.Message
		for curTick < ev.Tick {
			next, ok := tempo.Next(curTick)
			if !ok || next.Tick >= ev.Tick {
				curTime += ticksToDuration(ev.Tick-curTick, bpm, resolution)
				curTick = ev.Tick
				break
			}
			curTime += ticksToDuration(next.Tick-curTick, bpm, resolution)
			curTick = next.Tick
			bpm = tempo.ValueAt(curTick, bpm)
		}
		bpm = tempo.ValueAt(curTick, bpm)
		if len(msg) == 0 || msg[0] >= 0xF0 {
			continue
		}
		cues = append(cues, Cue{At: curTime, Tick: ev.Tick, Message: msg})
	}
	return cues
}

func ticksToDuration(ticks uint64, bpm, resolution uint16) time.Duration {
	if bpm == 0 {
		bpm = DefaultTempo
	}
	return time.Duration(float64(ticks) * float64(time.Minute) / (float64(bpm) * float64(resolution)))
}
