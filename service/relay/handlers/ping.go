package handlers

import (
	"github.com/GitSid-glitch/cobuild/service/relay"
)

type PingHandler struct{}

func NewPingHandler() relay.Handler { return &PingHandler{} }
func (h *PingHandler) Type() relay.FrameType { return relay.FramePing }

func (h *PingHandler) Handle(_ *relay.Context, _ *relay.Frame, c *relay.Client) error {
	pong, err := relay.BuildFrame(relay.FramePong, nil)
	if err != nil {
		return err
	}
	c.Enqueue(pong)
	return nil
}
