package storage

import (
	"context"
)

// ===== status & type constants =====

const (
	IdeaStatusActive    = "active"
	IdeaStatusCompleted = "completed"

	CollabStatusPending  = "pending"
	CollabStatusActive   = "active"
	CollabStatusDeclined = "declined"

	NotifyCollabRequest  = "collaboration_request"
	NotifyCollabAccepted = "collaboration_accepted"
	NotifyCollabDeclined = "collaboration_declined"
	NotifyNewMessage     = "new_message"
)

// ===== models =====

// Message is a single chat message. Timestamps are Unix ms.
// ReadAt stays 0 until the receiver marks it read; nothing else is
// ever mutated after the insert.
type Message struct {
	ID         string `bson:"id" json:"id"`
	ChatID     string `bson:"chat_id" json:"chat_id"`
	SenderID   string `bson:"sender_id" json:"sender_id"`
	ReceiverID string `bson:"receiver_id" json:"receiver_id"`
	Content    string `bson:"content" json:"content"`
	CreatedAt  int64  `bson:"created_at" json:"created_at"`
	ReadAt     int64  `bson:"read_at,omitempty" json:"read_at,omitempty"`
}

// Chat is the conversation head: exactly two participants, plus a
// last-message snapshot for the conversation list.
type Chat struct {
	ID            string   `bson:"id" json:"id"`
	Participants  []string `bson:"participants" json:"participants"`
	LastMessage   string   `bson:"last_message" json:"last_message"`
	LastMessageAt int64    `bson:"last_message_at" json:"last_message_at"`
	CreatedAt     int64    `bson:"created_at" json:"created_at"`
}

type Idea struct {
	ID                string   `bson:"id" json:"id"`
	OwnerID           string   `bson:"owner_id" json:"owner_id"`
	Title             string   `bson:"title" json:"title"`
	Description       string   `bson:"description" json:"description"`
	Category          string   `bson:"category" json:"category"`
	Tags              []string `bson:"tags" json:"tags"`
	AttachmentURLs    []string `bson:"attachment_urls" json:"attachment_urls"`
	Status            string   `bson:"status" json:"status"`
	CollaboratorCount int      `bson:"collaborator_count" json:"collaborator_count"`
	CreatedAt         int64    `bson:"created_at" json:"created_at"`
	UpdatedAt         int64    `bson:"updated_at" json:"updated_at"`
}

type Collaboration struct {
	ID        string `bson:"id" json:"id"`
	IdeaID    string `bson:"idea_id" json:"idea_id"`
	UserID    string `bson:"user_id" json:"user_id"`
	Role      string `bson:"role" json:"role"`
	Status    string `bson:"status" json:"status"`
	CreatedAt int64  `bson:"created_at" json:"created_at"`
	UpdatedAt int64  `bson:"updated_at" json:"updated_at"`
}

type Notification struct {
	ID        string            `bson:"id" json:"id"`
	UserID    string            `bson:"user_id" json:"user_id"`
	Type      string            `bson:"type" json:"type"`
	Title     string            `bson:"title" json:"title"`
	Message   string            `bson:"message" json:"message"`
	IsRead    bool              `bson:"is_read" json:"is_read"`
	Metadata  map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt int64             `bson:"created_at" json:"created_at"`
}

type User struct {
	ID               string   `bson:"id" json:"id"`
	Email            string   `bson:"email" json:"email"`
	PasswordHash     string   `bson:"password_hash" json:"-"`
	FullName         string   `bson:"full_name" json:"full_name"`
	Bio              string   `bson:"bio" json:"bio"`
	AvatarURL        string   `bson:"avatar_url" json:"avatar_url"`
	Skills           []string `bson:"skills" json:"skills"`
	ReputationPoints int      `bson:"reputation_points" json:"reputation_points"`
	CreatedAt        int64    `bson:"created_at" json:"created_at"`
	UpdatedAt        int64    `bson:"updated_at" json:"updated_at"`
}

// ===== store contracts =====

// MessageStore is the relay's only storage collaborator. CreateMessage
// must either persist the whole message or fail; the relay never
// retries inside a single call.
type MessageStore interface {
	CreateMessage(ctx context.Context, m *Message) (*Message, error)
	MarkMessageRead(ctx context.Context, messageID string) error
	// ListMessages returns the chat's messages ordered by creation time.
	ListMessages(ctx context.Context, chatID string) ([]*Message, error)
	ListChats(ctx context.Context, userID string) ([]*Chat, error)
}

type IdeaFilter struct {
	Category string
	Query    string // matched against title/description
	OwnerID  string
}

type IdeaStore interface {
	CreateIdea(ctx context.Context, idea *Idea) error
	GetIdea(ctx context.Context, id string) (*Idea, error)
	ListIdeas(ctx context.Context, f IdeaFilter) ([]*Idea, error)
	IncCollaborators(ctx context.Context, ideaID string, delta int) error
}

type CollabStore interface {
	CreateCollab(ctx context.Context, c *Collaboration) error
	GetCollab(ctx context.Context, id string) (*Collaboration, error)
	FindCollab(ctx context.Context, ideaID, userID string) (*Collaboration, error)
	UpdateCollabStatus(ctx context.Context, id, status string) error
	ListCollabsByUser(ctx context.Context, userID string) ([]*Collaboration, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, userID string) ([]*Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, u *User) error
}

// Store bundles every collaborator. Exactly one implementation is
// selected at startup (mongodb or memory); nothing downstream branches
// on the mode again.
type Store interface {
	MessageStore
	IdeaStore
	CollabStore
	NotificationStore
	UserStore
}
