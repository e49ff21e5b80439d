package theme

import (
	"strings"
	"testing"

	"go-midiedit/midi"
)

const testGPL = `GIMP Palette
Name: Test
Columns: 2
# comment
  0   0   0	black
255 255 255	white
`

func TestParseGPL(t *testing.T) {
	p, err := ParseGPL(strings.NewReader(testGPL))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Test" || len(p.Colors) != 2 {
		t.Fatalf("palette = %+v", p)
	}
	if got := p.Lookup(0.5); got != (RGB{127, 127, 127}) {
		t.Errorf("Lookup(0.5) = %v", got)
	}
	if got := p.Index(9); got != (RGB{255, 255, 255}) {
		t.Errorf("Index(9) = %v", got)
	}
}

func TestParseGPLEmpty(t *testing.T) {
	if _, err := ParseGPL(strings.NewReader("GIMP Palette\nName: Empty\n")); err == nil {
		t.Error("expected error for palette without colors")
	}
}

func TestLoadDefault(t *testing.T) {
	p, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Colors) == 0 {
		t.Fatal("default palette is empty")
	}
	if _, err := Load("/nonexistent/palette.gpl"); err == nil {
		t.Error("expected error for missing palette file")
	}
}

func TestSingleColorLookup(t *testing.T) {
	p := &Palette{Colors: []RGB{{1, 2, 3}}}
	if got := p.Lookup(0.3); got != (RGB{1, 2, 3}) {
		t.Errorf("Lookup = %v", got)
	}
}

func TestKindColor(t *testing.T) {
	th := New(Default())
	if th.KindColor(midi.KindNoteOn) == th.KindColor(midi.KindNoteOff) {
		t.Error("note on and note off share a colour")
	}
	if th.KindColor(midi.KindOther) != th.FG() {
		t.Error("other events should use the foreground colour")
	}
	if th.VelocityColor(127) != th.Color(1) {
		t.Error("full velocity should map to the top of the palette")
	}
}
