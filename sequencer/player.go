package sequencer

import (
	"context"
	"sync"
	"time"

	"go-midiedit/midi"
)

// Player sends a schedule to a midi.Receiver in real time.
type Player struct {
	cues []Cue
	out  chan<- midi.Command

	playing  bool
	stopChan chan struct{}
	done     chan struct{}
	mu       sync.Mutex

	// Channel to notify the UI of the tick just played
	PositionChan chan uint64
}

func NewPlayer(cues []Cue, out chan<- midi.Command) *Player {
	return &Player{
		cues:         cues,
		out:          out,
		PositionChan: make(chan uint64, 1),
	}
}

// Play starts playback in the background. It does nothing if already
// playing. Cancelling ctx stops playback like Stop.
func (p *Player) Play(ctx context.Context) {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = true
	p.stopChan = make(chan struct{})
	p.done = make(chan struct{})
	stop, done := p.stopChan, p.done
	p.mu.Unlock()

	go p.playLoop(ctx, stop, done)
}

// Stop halts playback and waits for the loop to silence sounding notes.
func (p *Player) Stop() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = false
	close(p.stopChan)
	done := p.done
	p.mu.Unlock()
	<-done
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Done is closed when the current playback ends. It is nil before the first
// Play.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

func (p *Player) playLoop(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	type voice struct{ channel, key uint8 }
	sounding := map[voice]int{}
	silence := func() {
		for v, n := range sounding {
			for i := 0; i < n; i++ {
				p.out <- midi.Send(midi.NewNote(v.channel, v.key, 0))
			}
		}
	}

	start := time.Now()
	for _, cue := range p.cues {
		if wait := cue.At - time.Since(start); wait > 0 {
			select {
			case <-stop:
				silence()
				return
			case <-ctx.Done():
				silence()
				p.finish()
				return
			case <-time.After(wait):
			}
		}

		if n, ok := midi.NoteOn(cue.Message); ok {
			sounding[voice{n.Channel, n.Key}]++
		} else if n, ok := midi.NoteOff(cue.Message); ok {
			v := voice{n.Channel, n.Key}
			if sounding[v] > 0 {
				sounding[v]--
			}
		}
		p.out <- midi.Send(append([]byte(nil), cue.Message...))

		select {
		case p.PositionChan <- cue.Tick:
		default:
		}
	}
	p.finish()
}

// finish marks playback over when the loop ends on its own.
func (p *Player) finish() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
}
