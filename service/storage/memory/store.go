package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GitSid-glitch/cobuild/service/storage"
	"github.com/GitSid-glitch/cobuild/tools/errs"
)

// Store is the in-process implementation of storage.Store. It backs
// demo mode and the test suite; the mongodb package is the production
// twin behind the same interface.
type Store struct {
	mu            sync.RWMutex
	messages      map[string]*storage.Message
	chats         map[string]*storage.Chat
	ideas         map[string]*storage.Idea
	collabs       map[string]*storage.Collaboration
	notifications map[string]*storage.Notification
	users         map[string]*storage.User
	usersByEmail  map[string]string // email -> user id
}

func NewStore() *Store {
	return &Store{
		messages:      make(map[string]*storage.Message),
		chats:         make(map[string]*storage.Chat),
		ideas:         make(map[string]*storage.Idea),
		collabs:       make(map[string]*storage.Collaboration),
		notifications: make(map[string]*storage.Notification),
		users:         make(map[string]*storage.User),
		usersByEmail:  make(map[string]string),
	}
}

var _ storage.Store = (*Store)(nil)

// ===== messages =====

func (s *Store) CreateMessage(ctx context.Context, m *storage.Message) (*storage.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	if m.ID == "" {
		return nil, errs.ErrArgs.WithDetail("message id empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[m.ID]; ok {
		return nil, errs.ErrDuplicate.WithDetail("message " + m.ID)
	}
	cp := *m
	s.messages[m.ID] = &cp
	s.upsertChatLocked(&cp)
	out := cp
	return &out, nil
}

// caller holds s.mu
func (s *Store) upsertChatLocked(m *storage.Message) {
	ch, ok := s.chats[m.ChatID]
	if !ok {
		ch = &storage.Chat{
			ID:           m.ChatID,
			Participants: []string{m.SenderID, m.ReceiverID},
			CreatedAt:    m.CreatedAt,
		}
		s.chats[m.ChatID] = ch
	}
	ch.LastMessage = m.Content
	ch.LastMessageAt = m.CreatedAt
}

func (s *Store) MarkMessageRead(ctx context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok {
		return errs.ErrRecordNotFound.WithDetail("message " + messageID)
	}
	if m.ReadAt == 0 {
		m.ReadAt = time.Now().UnixMilli()
	}
	return nil
}

func (s *Store) ListMessages(ctx context.Context, chatID string) ([]*storage.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*storage.Message, 0)
	for _, m := range s.messages {
		if m.ChatID == chatID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) ListChats(ctx context.Context, userID string) ([]*storage.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*storage.Chat, 0)
	for _, ch := range s.chats {
		for _, p := range ch.Participants {
			if p == userID {
				cp := *ch
				out = append(out, &cp)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAt > out[j].LastMessageAt })
	return out, nil
}

// ===== ideas =====

func (s *Store) CreateIdea(ctx context.Context, idea *storage.Idea) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ideas[idea.ID]; ok {
		return errs.ErrDuplicate.WithDetail("idea " + idea.ID)
	}
	cp := *idea
	s.ideas[idea.ID] = &cp
	return nil
}

func (s *Store) GetIdea(ctx context.Context, id string) (*storage.Idea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idea, ok := s.ideas[id]
	if !ok {
		return nil, errs.ErrRecordNotFound.WithDetail("idea " + id)
	}
	cp := *idea
	return &cp, nil
}

func (s *Store) ListIdeas(ctx context.Context, f storage.IdeaFilter) ([]*storage.Idea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(f.Query)
	out := make([]*storage.Idea, 0)
	for _, idea := range s.ideas {
		if f.Category != "" && idea.Category != f.Category {
			continue
		}
		if f.OwnerID != "" && idea.OwnerID != f.OwnerID {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(idea.Title), q) &&
			!strings.Contains(strings.ToLower(idea.Description), q) {
			continue
		}
		cp := *idea
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (s *Store) IncCollaborators(ctx context.Context, ideaID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idea, ok := s.ideas[ideaID]
	if !ok {
		return errs.ErrRecordNotFound.WithDetail("idea " + ideaID)
	}
	idea.CollaboratorCount += delta
	idea.UpdatedAt = time.Now().UnixMilli()
	return nil
}

// ===== collaborations =====

func (s *Store) CreateCollab(ctx context.Context, c *storage.Collaboration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collabs[c.ID]; ok {
		return errs.ErrDuplicate.WithDetail("collab " + c.ID)
	}
	cp := *c
	s.collabs[c.ID] = &cp
	return nil
}

func (s *Store) GetCollab(ctx context.Context, id string) (*storage.Collaboration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collabs[id]
	if !ok {
		return nil, errs.ErrRecordNotFound.WithDetail("collab " + id)
	}
	cp := *c
	return &cp, nil
}

func (s *Store) FindCollab(ctx context.Context, ideaID, userID string) (*storage.Collaboration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.collabs {
		if c.IdeaID == ideaID && c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, errs.ErrRecordNotFound.WithDetail("collab for idea " + ideaID)
}

func (s *Store) UpdateCollabStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collabs[id]
	if !ok {
		return errs.ErrRecordNotFound.WithDetail("collab " + id)
	}
	c.Status = status
	c.UpdatedAt = time.Now().UnixMilli()
	return nil
}

func (s *Store) ListCollabsByUser(ctx context.Context, userID string) ([]*storage.Collaboration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*storage.Collaboration, 0)
	for _, c := range s.collabs {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

// ===== notifications =====

func (s *Store) CreateNotification(ctx context.Context, n *storage.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[n.ID]; ok {
		return errs.ErrDuplicate.WithDetail("notification " + n.ID)
	}
	cp := *n
	s.notifications[n.ID] = &cp
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string) ([]*storage.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*storage.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return errs.ErrRecordNotFound.WithDetail("notification " + id)
	}
	n.IsRead = true
	return nil
}

// ===== users =====

func (s *Store) CreateUser(ctx context.Context, u *storage.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usersByEmail[u.Email]; ok {
		return errs.ErrDuplicate.WithDetail("email " + u.Email)
	}
	cp := *u
	s.users[u.ID] = &cp
	s.usersByEmail[u.Email] = u.ID
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errs.ErrRecordNotFound.WithDetail("user " + id)
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, errs.ErrRecordNotFound.WithDetail("email " + email)
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *Store) UpdateProfile(ctx context.Context, u *storage.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return errs.ErrRecordNotFound.WithDetail("user " + u.ID)
	}
	cur.FullName = u.FullName
	cur.Bio = u.Bio
	cur.AvatarURL = u.AvatarURL
	cur.Skills = append([]string(nil), u.Skills...)
	cur.UpdatedAt = time.Now().UnixMilli()
	return nil
}
