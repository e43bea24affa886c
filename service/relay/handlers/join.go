package handlers

import (
	"github.com/GitSid-glitch/cobuild/service/relay"
)

type JoinRoomHandler struct{}

func NewJoinRoomHandler() relay.Handler { return &JoinRoomHandler{} }
func (h *JoinRoomHandler) Type() relay.FrameType { return relay.FrameJoinRoom }

func (h *JoinRoomHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	var p relay.JoinRoomPayload
	if err := f.Decode(&p); err != nil {
		return err
	}
	return ctx.S.JoinRoom(c, p.RoomID)
}
