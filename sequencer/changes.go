package sequencer

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	"go-midiedit/midi"
)

// Fallbacks for callers that need a value before the first change point.
const DefaultTempo uint16 = 120

var DefaultTimeSignature = TimeSignature{Numerator: 4, Denominator: 4}

// TimeSignature is a decoded time-signature value, e.g. 6/8.
type TimeSignature struct {
	Numerator   uint8
	Denominator uint8
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}

// Change is one sample of a step function.
type Change[V comparable] struct {
	Tick  uint64
	Value V
}

// ChangeMap is a sparse, tick-sorted list of change points. It is a
// snapshot: it does not follow later edits to the track it came from.
type ChangeMap[V comparable] struct {
	changes []Change[V]
}

type (
	TempoMap         = ChangeMap[uint16]
	TimeSignatureMap = ChangeMap[TimeSignature]
)

// NewChangeMap copies changes, sorting them by tick when needSort is set.
func NewChangeMap[V comparable](changes []Change[V], needSort bool) *ChangeMap[V] {
	changes = slices.Clone(changes)
	if needSort {
		sortChanges(changes)
	}
	return &ChangeMap[V]{changes: changes}
}

func sortChanges[V comparable](changes []Change[V]) {
	slices.SortStableFunc(changes, func(a, b Change[V]) int { return cmp.Compare(a.Tick, b.Tick) })
}

// Append inserts c and re-sorts. Among equal ticks the newest wins lookups.
func (m *ChangeMap[V]) Append(c Change[V]) {
	m.changes = append(m.changes, c)
	sortChanges(m.changes)
}

// Delete removes every entry equal to c and returns how many went.
func (m *ChangeMap[V]) Delete(c Change[V]) int {
	before := len(m.changes)
	m.changes = slices.DeleteFunc(m.changes, func(x Change[V]) bool { return x == c })
	return before - len(m.changes)
}

// Lookup returns the value of the latest change at or before tick.
func (m *ChangeMap[V]) Lookup(tick uint64) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	i := sort.Search(len(m.changes), func(i int) bool { return m.changes[i].Tick > tick })
	if i == 0 {
		var zero V
		return zero, false
	}
	return m.changes[i-1].Value, true
}

// ValueAt is Lookup with a fallback for ticks before the first change.
func (m *ChangeMap[V]) ValueAt(tick uint64, fallback V) V {
	if v, ok := m.Lookup(tick); ok {
		return v
	}
	return fallback
}

// Next returns the first change strictly after tick.
func (m *ChangeMap[V]) Next(tick uint64) (Change[V], bool) {
	if m == nil {
		return Change[V]{}, false
	}
	i := sort.Search(len(m.changes), func(i int) bool { return m.changes[i].Tick > tick })
	if i == len(m.changes) {
		return Change[V]{}, false
	}
	return m.changes[i], true
}

func (m *ChangeMap[V]) Changes() []Change[V] {
	return slices.Clone(m.changes)
}

func (m *ChangeMap[V]) Len() int {
	return len(m.changes)
}

// NewTempoMap collects the tempo events of t as whole BPM values. A tempo
// event with a malformed payload fails the whole map.
func NewTempoMap(t *Track) (*TempoMap, error) {
	var changes []Change[uint16]
	for _, ev := range t.events {
		cmd, data, ok := midi.MetaPayload(ev.Event.Message)
		if !ok || cmd != midi.MetaTempo {
			continue
		}
		bpm, err := midi.DecodeTempo(data)
		if err != nil {
			return nil, fmt.Errorf("tempo at tick %d: %w", ev.Tick, err)
		}
		changes = append(changes, Change[uint16]{Tick: ev.Tick, Value: bpm})
	}
	return NewChangeMap(changes, t.dirty), nil
}

// NewTimeSignatureMap collects the time-signature events of t.
func NewTimeSignatureMap(t *Track) (*TimeSignatureMap, error) {
	var changes []Change[TimeSignature]
	for _, ev := range t.events {
		cmd, data, ok := midi.MetaPayload(ev.Event.Message)
		if !ok || cmd != midi.MetaTimeSignature {
			continue
		}
		num, denom, err := midi.DecodeTimeSignature(data)
		if err != nil {
			return nil, fmt.Errorf("time signature at tick %d: %w", ev.Tick, err)
		}
		changes = append(changes, Change[TimeSignature]{Tick: ev.Tick, Value: TimeSignature{num, denom}})
	}
	return NewChangeMap(changes, t.dirty), nil
}
