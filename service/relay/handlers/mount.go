package handlers

import (
	"github.com/GitSid-glitch/cobuild/service/relay"
)

// Mount registers every frame handler on the server's dispatcher.
func Mount(s *relay.Server) {
	s.Disp().Register(NewRegisterHandler())
	s.Disp().Register(NewJoinRoomHandler())
	s.Disp().Register(NewSendMessageHandler())
	s.Disp().Register(NewTypingHandler())
	s.Disp().Register(NewPingHandler())
}
