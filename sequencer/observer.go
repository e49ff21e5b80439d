package sequencer

import "fmt"

// Level is the severity passed to an Observer.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Observer receives diagnostics from tracks and workspaces. The package
// never logs on its own; a nil Observer discards everything.
type Observer interface {
	OnEvent(level Level, msg string)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(level Level, msg string)

func (f ObserverFunc) OnEvent(level Level, msg string) { f(level, msg) }

func notify(o Observer, level Level, format string, args ...any) {
	if o == nil {
		return
	}
	o.OnEvent(level, fmt.Sprintf(format, args...))
}
