package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-midiedit/config"
	"go-midiedit/debug"
	"go-midiedit/midi"
	"go-midiedit/sequencer"
	"go-midiedit/theme"
	"go-midiedit/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if cfg.Debug {
		if dir, err := config.ConfigDir(); err == nil {
			if err := debug.Enable(filepath.Join(dir, "debug.log")); err != nil {
				fmt.Printf("Error enabling debug log: %v\n", err)
			}
		}
		defer debug.Disable()
	}

	// Load theme
	palette, err := theme.Load(cfg.Palette)
	if err != nil {
		fmt.Printf("Error loading palette: %v\n", err)
		palette = theme.Default()
	}
	th := theme.New(palette)

	var path string
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	ws, err := openWorkspace(path, cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	ws.SetObserver(sequencer.ObserverFunc(func(level sequencer.Level, msg string) {
		debug.Log("seq/"+level.String(), "%s", msg)
	}))

	// The receiver goroutine owns the output port; the watcher (re)connects
	// it whenever the configured port shows up
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var commands chan midi.Command
	finished := make(chan struct{})
	watching := make(chan struct{})
	if cfg.OutputPort != "" {
		commands = make(chan midi.Command, 64)
		receiver := midi.NewReceiver(nil)
		receiver.OnError = func(err error) { debug.Log("midi", "%v", err) }
		go func() {
			receiver.Run(commands)
			close(finished)
		}()

		watcher := midi.NewPortWatcher(nil)
		go watcher.Run(ctx)
		go func() {
			defer close(watching)
			followPort(watcher, cfg.OutputPort, commands)
		}()
	} else {
		close(finished)
		close(watching)
	}

	// Create and run TUI
	m := tui.NewModel(ws, cfg, th, path, commands)
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, runErr := p.Run()

	cancel()
	<-watching
	if commands != nil {
		close(commands)
	}
	<-finished
	gomidi.CloseDriver()

	if runErr != nil {
		fmt.Printf("Error: %v\n", runErr)
		os.Exit(1)
	}
}

// openWorkspace loads path, or builds a new song from the config defaults
// when path is empty or does not exist yet.
func openWorkspace(path string, cfg *config.Config) (*sequencer.Workspace, error) {
	if path != "" {
		ws, err := sequencer.Open(path)
		if err == nil {
			debug.Log("main", "opened %s: %d tracks", path, ws.TrackCount())
			return ws, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
		debug.Log("main", "%s does not exist, starting a new file", path)
	}

	ws := sequencer.NewWorkspace()
	ts := sequencer.TimeSignature{
		Numerator:   cfg.DefaultTimeSignature.Numerator,
		Denominator: cfg.DefaultTimeSignature.Denominator,
	}
	if cfg.DefaultTempo != sequencer.DefaultTempo || ts != sequencer.DefaultTimeSignature {
		if err := ws.Commit(0, sequencer.NewConductorTrack(cfg.DefaultTempo, ts)); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

// followPort opens port when it appears and closes it when it vanishes.
func followPort(w *midi.PortWatcher, port string, commands chan<- midi.Command) {
	for ev := range w.Events() {
		if ev.Name != port {
			continue
		}
		switch ev.Type {
		case midi.PortAppeared:
			debug.Log("midi", "output port %s connected", port)
			commands <- midi.ChangePort(port)
		case midi.PortVanished:
			debug.Log("midi", "output port %s disconnected", port)
			commands <- midi.Close()
		}
	}
}
