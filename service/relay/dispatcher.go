package relay

import (
	"fmt"

	"github.com/GitSid-glitch/cobuild/tools/safe"
)

type Dispatcher struct {
	handlers map[FrameType]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[FrameType]Handler)}
}

// Register wires a handler; call during startup, before serving.
func (d *Dispatcher) Register(h Handler) { d.handlers[h.Type()] = h }

// Dispatch runs the handler for the frame with panic isolation: one
// event's failure never takes down the connection loop or the process.
func (d *Dispatcher) Dispatch(ctx *Context, f *Frame, c *Client) error {
	h, ok := d.handlers[f.Type]
	if !ok {
		return fmt.Errorf("no handler for type=%s", f.Type)
	}
	return safe.Call(func() error {
		return h.Handle(ctx, f, c)
	})
}

func (d *Dispatcher) GetHandler(t FrameType) Handler {
	return d.handlers[t]
}
