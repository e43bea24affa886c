package relay

// Handler processes one inbound frame type.
type Handler interface {
	Type() FrameType
	Handle(ctx *Context, f *Frame, c *Client) error
}

type Context struct {
	S *Server
}
