package relay

// RoomKind discriminates the two channel namespaces. String-concat room
// names ("user_<id>", "chat_<id>") invite collisions; a typed key rules
// that out.
type RoomKind uint8

const (
	RoomUser RoomKind = iota + 1
	RoomChat
)

// RoomKey is comparable and used directly as a map key.
type RoomKey struct {
	Kind RoomKind
	ID   string
}

func UserRoom(id string) RoomKey { return RoomKey{Kind: RoomUser, ID: id} }
func ChatRoom(id string) RoomKey { return RoomKey{Kind: RoomChat, ID: id} }

func (k RoomKey) String() string {
	switch k.Kind {
	case RoomUser:
		return "user/" + k.ID
	case RoomChat:
		return "chat/" + k.ID
	}
	return "?/" + k.ID
}
