package handlers

import (
	"github.com/GitSid-glitch/cobuild/service/relay"
)

type RegisterHandler struct{}

func NewRegisterHandler() relay.Handler { return &RegisterHandler{} }
func (h *RegisterHandler) Type() relay.FrameType { return relay.FrameRegister }

func (h *RegisterHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	var p relay.RegisterPayload
	if err := f.Decode(&p); err != nil {
		return err
	}
	if err := ctx.S.RegisterConn(c, p.UserID); err != nil {
		return err
	}
	ack, err := relay.BuildFrame(relay.FrameAck, relay.RegisterPayload{UserID: p.UserID})
	if err != nil {
		return err
	}
	c.Enqueue(ack)
	return nil
}
