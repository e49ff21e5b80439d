package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-midiedit/config"
	"go-midiedit/debug"
	"go-midiedit/midi"
	"go-midiedit/sequencer"
	"go-midiedit/theme"
	"go-midiedit/widgets"
)

const (
	defaultKey  = 60
	rollColumns = 64
	rollRows    = 24
)

var keyHelp = []widgets.KeyBinding{
	{Key: "[/]", Desc: "track"},
	{Key: "j/k", Desc: "move"},
	{Key: "n", Desc: "add note"},
	{Key: "+/-", Desc: "pitch"},
	{Key: "d", Desc: "delete note"},
	{Key: "a", Desc: "add track"},
	{Key: "r", Desc: "roll"},
	{Key: "p", Desc: "play"},
	{Key: "w", Desc: "save"},
	{Key: "q", Desc: "quit"},
}

type Model struct {
	Workspace *sequencer.Workspace
	Config    *config.Config
	Theme     *theme.Theme
	Path      string

	out    chan<- midi.Command
	player *sequencer.Player

	trackIdx int
	track    *sequencer.Track
	events   []sequencer.AbsEvent

	cursor   int
	offset   int
	height   int
	pitch    uint8
	showRoll bool
	playTick uint64
	status   string
	quitting bool
}

// PositionMsg carries the tick the player just sent.
type PositionMsg uint64

// StoppedMsg is sent when playback ends.
type StoppedMsg struct{}

// NewModel creates the editor. out may be nil, which disables playback.
func NewModel(ws *sequencer.Workspace, cfg *config.Config, th *theme.Theme, path string, out chan<- midi.Command) Model {
	m := Model{
		Workspace: ws,
		Config:    cfg,
		Theme:     th,
		Path:      path,
		out:       out,
		height:    20,
		pitch:     defaultKey,
	}
	if ws.TrackCount() > 1 {
		m.trackIdx = 1
	}
	m.checkout()
	return m
}

func (m *Model) checkout() {
	t, ok := m.Workspace.Checkout(m.trackIdx)
	if !ok {
		m.track = sequencer.NewTrack(nil)
		m.events = nil
		return
	}
	m.track = t
	m.refresh()
}

func (m *Model) refresh() {
	m.track.Clean()
	m.events = m.track.Events()
	m.cursor = min(m.cursor, max(len(m.events)-1, 0))
	m.scroll()
}

func (m *Model) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// commit writes the edited track back and re-reads it.
func (m *Model) commit() {
	if err := m.Workspace.Commit(m.trackIdx, m.track); err != nil {
		m.status = err.Error()
		debug.Log("tui", "commit failed: %v", err)
		return
	}
	m.refresh()
}

func listenPlayer(p *sequencer.Player) tea.Cmd {
	return func() tea.Msg {
		select {
		case tick := <-p.PositionChan:
			return PositionMsg(tick)
		case <-p.Done():
			return StoppedMsg{}
		}
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 1)
		m.scroll()

	case PositionMsg:
		m.playTick = uint64(msg)
		if m.player != nil {
			return m, listenPlayer(m.player)
		}

	case StoppedMsg:
		m.status = "stopped"

	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.stop()
			return m, tea.Quit

		case "j", "down":
			if m.cursor < len(m.events)-1 {
				m.cursor++
			}
			m.scroll()

		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
			m.scroll()

		case "g", "home":
			m.cursor = 0
			m.scroll()

		case "G", "end":
			m.cursor = max(len(m.events)-1, 0)
			m.scroll()

		case "]", "tab":
			m.switchTrack(1)

		case "[", "shift+tab":
			m.switchTrack(-1)

		case "+", "=":
			if m.pitch < 127 {
				m.pitch++
			}

		case "-", "_":
			if m.pitch > 0 {
				m.pitch--
			}

		case "n":
			m.addNote()

		case "d":
			m.deleteNote()

		case "a":
			m.addTrack()

		case "r":
			m.showRoll = !m.showRoll

		case "w":
			m.save()

		case "p":
			if m.player != nil && m.player.Playing() {
				m.stop()
				return m, nil
			}
			return m, m.play()
		}
	}

	return m, nil
}

func (m *Model) switchTrack(delta int) {
	n := m.Workspace.TrackCount()
	if n == 0 {
		return
	}
	m.trackIdx = (m.trackIdx + delta + n) % n
	m.cursor, m.offset = 0, 0
	m.checkout()
}

func (m *Model) cursorTick() uint64 {
	if m.cursor < len(m.events) {
		return m.events[m.cursor].Tick
	}
	return 0
}

func (m *Model) addNote() {
	tick := m.cursorTick()
	length := m.Config.NoteLength
	m.track.AppendNotes([]sequencer.Note{
		{Tick: tick, Key: m.pitch, Velocity: m.Config.NoteVelocity},
		{Tick: tick + length, Key: m.pitch, Velocity: 0},
	})
	m.commit()
	m.status = fmt.Sprintf("added %s at %s", widgets.NoteName(m.pitch), widgets.FormatTick(tick, m.Workspace.Resolution()))
}

func (m *Model) deleteNote() {
	if m.cursor >= len(m.events) {
		return
	}
	ev := m.events[m.cursor]
	n, ok := midi.NoteOn(ev.Message())
	if !ok {
		m.status = "not a note on"
		return
	}
	if !m.track.DeleteNote(ev.Tick, n.Key, n.Velocity) {
		m.status = "no matching note off"
		return
	}
	m.commit()
	m.status = fmt.Sprintf("deleted %s", widgets.NoteName(n.Key))
}

func (m *Model) addTrack() {
	if err := m.Workspace.AddTrack(sequencer.NewTrack(nil)); err != nil {
		m.status = err.Error()
		return
	}
	m.trackIdx = m.Workspace.TrackCount() - 1
	m.cursor, m.offset = 0, 0
	m.checkout()
}

func (m *Model) save() {
	if m.Path == "" {
		m.status = "no file name"
		return
	}
	if err := m.Workspace.Save(m.Path); err != nil {
		m.status = err.Error()
		debug.Log("tui", "save failed: %v", err)
		return
	}
	m.Config.AddRecentFile(m.Path)
	if err := m.Config.Save(); err != nil {
		debug.Log("tui", "config save failed: %v", err)
	}
	m.status = "saved " + m.Path
}

func (m *Model) play() tea.Cmd {
	if m.out == nil {
		m.status = "no output port"
		return nil
	}
	tempo, err := m.Workspace.TempoMap(0)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	cues := sequencer.Schedule(m.track.Clone(), tempo, m.Workspace.Resolution())
	m.player = sequencer.NewPlayer(cues, m.out)
	m.player.Play(context.Background())
	m.status = fmt.Sprintf("playing %d events", len(cues))
	return listenPlayer(m.player)
}

func (m *Model) stop() {
	if m.player != nil {
		m.player.Stop()
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	cursorStyle := lipgloss.NewStyle().Foreground(m.Theme.Cursor()).Bold(true)

	name := fmt.Sprintf("Track %d", m.trackIdx)
	if infos := m.Workspace.TrackInfo(); m.trackIdx < len(infos) {
		name = infos[m.trackIdx].Name
	}
	file := m.Path
	if file == "" {
		file = "(new)"
	}
	header := headerStyle.Render(fmt.Sprintf("go-midiedit  %s  [%d/%d] %s  ppq:%d  pitch:%s",
		file, m.trackIdx, m.Workspace.TrackCount()-1, name, m.Workspace.Resolution(), widgets.NoteName(m.pitch)))

	var body string
	if m.showRoll {
		body = m.viewRoll()
	} else {
		body = m.viewEvents(cursorStyle)
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(body)
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyLine(keyHelp)))
	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(lipgloss.NewStyle().Foreground(m.Theme.Warning()).Render(m.status))
	}
	return out.String()
}

func (m Model) viewEvents(cursorStyle lipgloss.Style) string {
	if len(m.events) == 0 {
		return "  (empty track)"
	}
	playing := m.player != nil && m.player.Playing()
	res := m.Workspace.Resolution()

	var lines []string
	end := min(m.offset+m.height, len(m.events))
	for i := m.offset; i < end; i++ {
		ev := m.events[i]
		typ, data := widgets.FormatEvent(ev.Message())

		marker := " "
		switch {
		case i == m.cursor:
			marker = string(m.Theme.Symbols.Cursor)
		case playing && ev.Tick == m.playTick:
			marker = string(m.Theme.Symbols.Playing)
		}
		line := fmt.Sprintf("%s %10s  %-15s %s", marker, widgets.FormatTick(ev.Tick, res), typ, data)

		style := lipgloss.NewStyle().Foreground(m.Theme.KindColor(ev.Kind()))
		if i == m.cursor {
			style = cursorStyle
		}
		lines = append(lines, style.Render(line))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewRoll() string {
	res := uint64(m.Workspace.Resolution())
	perCell := max(res/4, 1)
	from := m.cursorTick() / res * res

	low := uint8(max(int(m.pitch)-rollRows/2, 0))
	high := uint8(min(int(low)+rollRows-1, 127))
	view := widgets.RollView{
		From:         from,
		TicksPerCell: perCell,
		Columns:      rollColumns,
		Low:          low,
		High:         high,
		BeatTicks:    res,
	}
	return widgets.RenderRoll(m.track.Notes(), view, m.Theme.Symbols)
}
