package handlers

import (
	"context"

	"github.com/GitSid-glitch/cobuild/service/relay"
)

type SendMessageHandler struct{}

func NewSendMessageHandler() relay.Handler { return &SendMessageHandler{} }
func (h *SendMessageHandler) Type() relay.FrameType { return relay.FrameSendMessage }

// Handle persists then fans out; on success the persisted message
// (assigned id + timestamp) goes back to the sender as the ack.
func (h *SendMessageHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	var p relay.SendMessagePayload
	if err := f.Decode(&p); err != nil {
		return err
	}
	persisted, err := ctx.S.SendMessage(context.Background(), c, p)
	if err != nil {
		return err
	}
	ack, err := relay.BuildFrame(relay.FrameAck, persisted)
	if err != nil {
		return err
	}
	c.Enqueue(ack)
	return nil
}
