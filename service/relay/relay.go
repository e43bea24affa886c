package relay

import (
	"context"
	"strings"
	"time"

	"github.com/GitSid-glitch/cobuild/logger"
	"github.com/GitSid-glitch/cobuild/service/storage"
	"github.com/GitSid-glitch/cobuild/tools/errs"
	"github.com/GitSid-glitch/cobuild/tools/ids"
	"github.com/GitSid-glitch/cobuild/tools/safe"
)

// RegisterConn binds a connection to a client-declared user id.
// The id is trusted as-is; there is no cryptographic binding on the
// socket (known weakness, inherited contract). Idempotent per
// connection.
func (s *Server) RegisterConn(c *Client, userID string) error {
	if userID == "" {
		return errs.ErrArgs.WithDetail("user_id empty")
	}
	first, ok := s.reg.Bind(c.ConnID, userID)
	if !ok {
		return errs.ErrRecordNotFound.WithDetail("conn " + c.ConnID)
	}
	if first {
		s.mirrorOnline(userID)
	}
	return nil
}

// JoinRoom subscribes the connection to a chat room for typing events.
func (s *Server) JoinRoom(c *Client, roomID string) error {
	if roomID == "" {
		return errs.ErrArgs.WithDetail("room_id empty")
	}
	s.rooms.Join(c, ChatRoom(roomID))
	return nil
}

// DropClient is the terminal state of a connection. It must run on
// every exit path, abnormal close included: it clears the registry,
// every joined room, and the presence mirror.
func (s *Server) DropClient(c *Client) {
	c.Close()
	s.rooms.LeaveAll(c.ConnID)
	_, last := s.reg.Remove(c.ConnID)
	if last && c.User() != "" {
		s.mirrorOffline(c.User())
	}
}

// SendMessage validates, persists, then fans out to the receiver's
// live connections. The persisted message is returned to the sender
// for optimistic UI reconciliation.
//
// The storage write may suspend; the registry lookup happens after it
// completes, so a receiver that connected during the write still gets
// the message, and a sender that disconnected does not break delivery.
// Enqueueing synchronously here (not via the fanout pool) makes
// persistence completion order the delivery order per connection.
func (s *Server) SendMessage(ctx context.Context, sender *Client, p SendMessagePayload) (*storage.Message, error) {
	if strings.TrimSpace(p.Content) == "" {
		return nil, errs.ErrArgs.WithDetail("content empty")
	}
	if p.ChatID == "" || p.ReceiverID == "" {
		return nil, errs.ErrArgs.WithDetail("chat_id/receiver_id required")
	}
	senderID := sender.User()
	if senderID == "" {
		return nil, errs.ErrArgs.WithDetail("connection not registered")
	}

	m := &storage.Message{
		ID:         ids.GenerateString(),
		ChatID:     p.ChatID,
		SenderID:   senderID,
		ReceiverID: p.ReceiverID,
		Content:    p.Content,
		CreatedAt:  time.Now().UnixMilli(),
	}

	// The write is detached from the connection's lifetime: a close
	// during the suspend does not cancel it.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.PersistTimeout)
	defer cancel()
	persisted, err := s.store.CreateMessage(pctx, m)
	if err != nil {
		if errs.CodeOf(err) == errs.ArgsError {
			return nil, err
		}
		return nil, errs.ErrPersistence.Wrap(err)
	}

	payload, err := BuildFrame(FrameMessageDelivered, persisted)
	if err != nil {
		// persisted but not encodable for push; receiver gets it on next fetch
		logger.Errorf("[relay] build message frame: %v", err)
		return persisted, nil
	}
	// fresh lookup after the suspend point
	for _, rc := range s.reg.ListByUser(p.ReceiverID) {
		if !rc.Enqueue(payload) {
			logger.Warnf("[relay] drop delivery conn=%s user=%s queue full", rc.ConnID, rc.User())
		}
	}
	return persisted, nil
}

// NotifyTyping fans a non-persisted typing event to the room, minus
// the sender. Empty room is a silent no-op.
func (s *Server) NotifyTyping(sender *Client, chatID string) {
	senderID := sender.User()
	if chatID == "" || senderID == "" {
		return
	}
	members := s.rooms.MembersOf(ChatRoom(chatID), sender.ConnID)
	if len(members) == 0 {
		return
	}
	payload, err := BuildFrame(FramePeerTyping, PeerTypingPayload{UserID: senderID, ChatID: chatID})
	if err != nil {
		logger.Errorf("[relay] build typing frame: %v", err)
		return
	}
	s.fanout.Broadcast(members, payload)
}

// ===== presence mirror (best effort) =====

func (s *Server) mirrorOnline(userID string) {
	if !s.opts.MirrorPresence {
		return
	}
	ttl := s.opts.PresenceTTL
	node := s.opts.NodeID
	safe.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := storage.PresenceOnline(ctx, userID, node, ttl); err != nil {
			logger.Warnf("[relay] presence online user=%s: %v", userID, err)
		}
	})
}

func (s *Server) mirrorOffline(userID string) {
	if !s.opts.MirrorPresence {
		return
	}
	safe.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := storage.PresenceOffline(ctx, userID); err != nil {
			logger.Warnf("[relay] presence offline user=%s: %v", userID, err)
		}
	})
}

// touchPresence renews the mirror TTL while the connection stays open.
func (s *Server) touchPresence(userID string) {
	if userID == "" {
		return
	}
	s.mirrorOnline(userID)
}
