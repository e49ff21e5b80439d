package midi

import (
	"errors"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrPortNotFound is returned when no output port has the requested name.
var ErrPortNotFound = errors.New("MIDI output port not found")

// CommandType selects what a Command asks the Receiver to do.
type CommandType int

const (
	CommandChangePort CommandType = iota
	CommandSend
	CommandClose
)

// Command is handed to the Receiver goroutine over a channel. Data is owned
// by the receiver once sent.
type Command struct {
	Type CommandType
	Port string // CommandChangePort
	Data []byte // CommandSend
}

func ChangePort(name string) Command { return Command{Type: CommandChangePort, Port: name} }
func Send(data []byte) Command       { return Command{Type: CommandSend, Data: data} }
func Close() Command                 { return Command{Type: CommandClose} }

// Opener opens an output port by name.
type Opener func(port string) (send func(gomidi.Message) error, closer func() error, err error)

// ListOutPorts returns the names of all MIDI output ports.
func ListOutPorts() []string {
	outs := gomidi.GetOutPorts()
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names
}

func findOutPort(name string) (drivers.Out, error) {
	for _, port := range gomidi.GetOutPorts() {
		if port.String() == name {
			return port, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPortNotFound, name)
}

// OpenPort is the default Opener. It looks the port up through the
// registered gomidi driver.
func OpenPort(name string) (func(gomidi.Message) error, func() error, error) {
	port, err := findOutPort(name)
	if err != nil {
		return nil, nil, err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open port %s: %w", name, err)
	}
	return send, port.Close, nil
}

// Receiver owns one live output connection. It is driven entirely by
// commands from a channel, so nothing else ever touches the port.
type Receiver struct {
	open  Opener
	send  func(gomidi.Message) error
	close func() error
	port  string

	// OnError is called for open and send failures. May be nil.
	OnError func(error)
}

// NewReceiver creates a receiver. A nil opener means OpenPort.
func NewReceiver(open Opener) *Receiver {
	if open == nil {
		open = OpenPort
	}
	return &Receiver{open: open}
}

// Port returns the name of the open port, or "" when closed.
func (r *Receiver) Port() string {
	return r.port
}

// Run processes commands until the channel is closed (blocking - run in
// goroutine). The port is closed on return.
func (r *Receiver) Run(commands <-chan Command) {
	for cmd := range commands {
		switch cmd.Type {
		case CommandChangePort:
			r.changePort(cmd.Port)
		case CommandSend:
			r.sendMessage(cmd.Data)
		case CommandClose:
			r.closePort()
		}
	}
	r.closePort()
}

func (r *Receiver) changePort(name string) {
	r.closePort()
	send, closer, err := r.open(name)
	if err != nil {
		r.report(err)
		return
	}
	r.send = send
	r.close = closer
	r.port = name
}

func (r *Receiver) sendMessage(data []byte) {
	if r.send == nil {
		return
	}
	if err := r.send(gomidi.Message(data)); err != nil {
		r.report(fmt.Errorf("midi send error: %w", err))
	}
}

func (r *Receiver) closePort() {
	if r.close != nil {
		if err := r.close(); err != nil {
			r.report(fmt.Errorf("close %s: %w", r.port, err))
		}
	}
	r.send = nil
	r.close = nil
	r.port = ""
}

func (r *Receiver) report(err error) {
	if r.OnError != nil {
		r.OnError(err)
	}
}
