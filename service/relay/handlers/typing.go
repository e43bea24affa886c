package handlers

import (
	"github.com/GitSid-glitch/cobuild/service/relay"
)

type TypingHandler struct{}

func NewTypingHandler() relay.Handler { return &TypingHandler{} }
func (h *TypingHandler) Type() relay.FrameType { return relay.FrameTyping }

// Typing is ephemeral: no persistence, no ack, no error to the sender
// beyond payload decode problems.
func (h *TypingHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	var p relay.TypingPayload
	if err := f.Decode(&p); err != nil {
		return err
	}
	ctx.S.NotifyTyping(c, p.ChatID)
	return nil
}
