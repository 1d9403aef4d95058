package synth

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// ListPorts returns the names of the available MIDI outputs. The
// caller's binary must link a gomidi driver.
func ListPorts() []string {
	outs := gomidi.GetOutPorts()
	names := make([]string, len(outs))
	for i, port := range outs {
		names[i] = port.String()
	}
	return names
}

// OpenPort returns a SendFunc for the named MIDI output. An empty name
// picks the first available port.
func OpenPort(name string) (SendFunc, error) {
	outs := gomidi.GetOutPorts()
	if len(outs) == 0 {
		return nil, fmt.Errorf("no MIDI output ports available")
	}
	if name == "" {
		send, err := gomidi.SendTo(outs[0])
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", outs[0].String(), err)
		}
		return SendFunc(send), nil
	}
	for _, port := range outs {
		if port.String() == name {
			send, err := gomidi.SendTo(port)
			if err != nil {
				return nil, fmt.Errorf("open %q: %w", name, err)
			}
			return SendFunc(send), nil
		}
	}
	return nil, fmt.Errorf("MIDI port %q not found", name)
}

// LazySender opens its port on first use and keeps retrying while the
// port is missing, so the instrument can start before the synthesizer
type LazySender struct {
	mu   sync.Mutex
	name string
	send SendFunc
}

func NewLazySender(name string) *LazySender {
	return &LazySender{name: name}
}

// TryOpen opens the port now, reporting whether it is reachable
func (l *LazySender) TryOpen() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open()
}

// open assumes the caller holds mu
func (l *LazySender) open() error {
	if l.send != nil {
		return nil
	}
	send, err := OpenPort(l.name)
	if err != nil {
		return err
	}
	l.send = send
	return nil
}

// Send satisfies SendFunc's shape; pass l.Send to NewPlayer
func (l *LazySender) Send(msg gomidi.Message) error {
	l.mu.Lock()
	if err := l.open(); err != nil {
		l.mu.Unlock()
		return err
	}
	send := l.send
	l.mu.Unlock()
	return send(msg)
}
