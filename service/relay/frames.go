package relay

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/GitSid-glitch/cobuild/tools/errs"
)

type FrameType string

// Inbound frame types.
const (
	FrameRegister    FrameType = "register"
	FrameJoinRoom    FrameType = "join_room"
	FrameSendMessage FrameType = "send_message"
	FrameTyping      FrameType = "typing"
	FramePing        FrameType = "ping"
)

// Outbound frame types.
const (
	FrameAck              FrameType = "ack"
	FrameError            FrameType = "error"
	FrameMessageDelivered FrameType = "message_delivered"
	FramePeerTyping       FrameType = "peer_typing"
	FramePong             FrameType = "pong"
)

type Frame struct {
	Type FrameType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type RegisterPayload struct {
	UserID string `json:"user_id"`
}

type JoinRoomPayload struct {
	RoomID string `json:"room_id"` // chat/conversation id
}

type SendMessagePayload struct {
	ChatID     string `json:"chat_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

type TypingPayload struct {
	ChatID string `json:"chat_id"`
}

type PeerTypingPayload struct {
	UserID string `json:"user_id"`
	ChatID string `json:"chat_id"`
}

type ErrorPayload struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func ParseFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parse frame")
	}
	if f.Type == "" {
		return nil, errors.New("frame type empty")
	}
	return &f, nil
}

func (f *Frame) Decode(v any) error {
	if len(f.Data) == 0 {
		return errors.New("frame data empty")
	}
	return errors.Wrapf(json.Unmarshal(f.Data, v), "decode %s payload", f.Type)
}

// BuildFrame marshals an outbound frame. Marshal of our own payload
// structs cannot fail; a failure here is a programming error and is
// surfaced to the caller.
func BuildFrame(t FrameType, v any) ([]byte, error) {
	var data json.RawMessage
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(err, "marshal %s payload", t)
		}
		data = b
	}
	out, err := json.Marshal(Frame{Type: t, Data: data})
	return out, errors.Wrap(err, "marshal frame")
}

// BuildError converts any error into an error frame; unknown errors
// map to the persistence code so clients know a retry may help.
func BuildError(err error) []byte {
	code := errs.CodeOf(err)
	if code == 0 {
		code = errs.PersistenceError
	}
	out, _ := BuildFrame(FrameError, ErrorPayload{Code: code, Msg: err.Error()})
	return out
}
