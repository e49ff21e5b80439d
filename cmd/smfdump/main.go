package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-midiedit/midi"
	"go-midiedit/sequencer"
	"go-midiedit/widgets"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "ports":
		listPorts()
	case "dump":
		err = withFile(args, dump)
	case "tempo":
		err = withFile(args, tempo)
	case "roundtrip":
		if len(args) != 2 {
			usage()
			return
		}
		err = roundtrip(args[0], args[1])
	case "new":
		if len(args) != 1 {
			usage()
			return
		}
		err = sequencer.NewWorkspace().Save(args[0])
	case "play":
		if len(args) != 3 {
			usage()
			return
		}
		err = play(args[0], args[1], args[2])
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("SMF tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  ports                  - List MIDI output ports")
	fmt.Println("  dump FILE              - Print every event of every track")
	fmt.Println("  tempo FILE             - Print tempo and time signature maps")
	fmt.Println("  roundtrip IN OUT       - Load IN and write it back as OUT")
	fmt.Println("  new OUT                - Write an empty two-track file")
	fmt.Println("  play FILE TRACK PORT   - Play one track to an output port")
}

func withFile(args []string, fn func(*sequencer.Workspace) error) error {
	if len(args) != 1 {
		usage()
		return nil
	}
	ws, err := sequencer.Open(args[0])
	if err != nil {
		return err
	}
	return fn(ws)
}

func listPorts() {
	fmt.Println("=== MIDI Output Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ch := make(chan []string, 1)
	go func() {
		ch <- midi.ListOutPorts()
	}()

	select {
	case names := <-ch:
		for i, name := range names {
			fmt.Printf("  %d: %s\n", i, name)
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! MIDI driver did not answer.")
	}
}

func dump(ws *sequencer.Workspace) error {
	fmt.Printf("format %s, %d tracks, %d ticks per quarter\n", ws.Format(), ws.TrackCount(), ws.Resolution())
	for _, info := range ws.TrackInfo() {
		fmt.Printf("\n=== %d: %s (%d events) ===\n", info.Index, info.Name, info.Events)
		t, _ := ws.Checkout(info.Index)
		for _, ev := range t.Events() {
			typ, data := widgets.FormatEvent(ev.Message())
			fmt.Printf("  %8d  %-15s %s\n", ev.Tick, typ, data)
		}
	}
	return nil
}

func tempo(ws *sequencer.Workspace) error {
	for i := 0; i < ws.TrackCount(); i++ {
		tm, err := ws.TempoMap(i)
		if err != nil {
			return err
		}
		ts, err := ws.TimeSignatureMap(i)
		if err != nil {
			return err
		}
		if tm.Len() == 0 && ts.Len() == 0 {
			continue
		}
		fmt.Printf("=== track %d ===\n", i)
		for _, c := range tm.Changes() {
			fmt.Printf("  %8d  tempo %d bpm\n", c.Tick, c.Value)
		}
		for _, c := range ts.Changes() {
			fmt.Printf("  %8d  time signature %s\n", c.Tick, c.Value)
		}
	}
	return nil
}

func roundtrip(in, out string) error {
	ws, err := sequencer.Open(in)
	if err != nil {
		return err
	}
	ws.SetObserver(sequencer.ObserverFunc(func(level sequencer.Level, msg string) {
		if level >= sequencer.LevelInfo {
			fmt.Printf("[%s] %s\n", level, msg)
		}
	}))
	return ws.Save(out)
}

func play(path, track, port string) error {
	ws, err := sequencer.Open(path)
	if err != nil {
		return err
	}
	var idx int
	if _, err := fmt.Sscanf(track, "%d", &idx); err != nil {
		return fmt.Errorf("invalid track index %q", track)
	}
	t, ok := ws.Checkout(idx)
	if !ok {
		return &sequencer.IndexError{Index: idx, Len: ws.TrackCount()}
	}
	tm, err := ws.TempoMap(0)
	if err != nil {
		return err
	}
	defer gomidi.CloseDriver()

	commands := make(chan midi.Command, 16)
	receiver := midi.NewReceiver(nil)
	receiver.OnError = func(err error) { fmt.Printf("Error: %v\n", err) }
	finished := make(chan struct{})
	go func() {
		receiver.Run(commands)
		close(finished)
	}()
	commands <- midi.ChangePort(port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	player := sequencer.NewPlayer(sequencer.Schedule(t, tm, ws.Resolution()), commands)
	player.Play(ctx)
	select {
	case <-player.Done():
	case <-ctx.Done():
		player.Stop()
	}

	close(commands)
	<-finished
	return nil
}
