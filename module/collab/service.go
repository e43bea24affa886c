package collab

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/GitSid-glitch/cobuild/service/storage"
	"github.com/GitSid-glitch/cobuild/tools/errs"
)

// Join requests are moderated by the idea owner: a request stays
// pending until the owner accepts or declines through the endpoints
// below. Notification links carry the collab id so clients can land
// directly on the accept/decline actions.
type Service struct {
	store storage.Store
}

func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// Request creates a pending collaboration and notifies the idea owner.
func (s *Service) Request(ctx context.Context, ideaID, userID, role string) (*storage.Collaboration, error) {
	idea, err := s.store.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if idea.OwnerID == userID {
		return nil, errs.ErrArgs.WithDetail("cannot join own idea")
	}
	if existing, err := s.store.FindCollab(ctx, ideaID, userID); err == nil {
		return nil, errs.ErrDuplicate.WithDetail("already requested, status=" + existing.Status)
	}

	now := time.Now().UnixMilli()
	collab := &storage.Collaboration{
		ID:        uuid.NewString(),
		IdeaID:    ideaID,
		UserID:    userID,
		Role:      role,
		Status:    storage.CollabStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateCollab(ctx, collab); err != nil {
		return nil, err
	}

	n := &storage.Notification{
		ID:      uuid.NewString(),
		UserID:  idea.OwnerID,
		Type:    storage.NotifyCollabRequest,
		Title:   "New join request",
		Message: "Someone wants to join your project: " + idea.Title,
		Metadata: map[string]string{
			"collab_id": collab.ID,
			"idea_id":   ideaID,
			"status":    storage.CollabStatusPending,
		},
		CreatedAt: now,
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	return collab, nil
}

// Accept activates a pending collaboration. Owner-only; bumps the
// idea's collaborator count and notifies the requester.
func (s *Service) Accept(ctx context.Context, collabID, ownerID string) error {
	return s.decide(ctx, collabID, ownerID, storage.CollabStatusActive)
}

// Decline marks a pending collaboration declined and notifies the
// requester.
func (s *Service) Decline(ctx context.Context, collabID, ownerID string) error {
	return s.decide(ctx, collabID, ownerID, storage.CollabStatusDeclined)
}

func (s *Service) decide(ctx context.Context, collabID, ownerID, status string) error {
	collab, err := s.store.GetCollab(ctx, collabID)
	if err != nil {
		return err
	}
	idea, err := s.store.GetIdea(ctx, collab.IdeaID)
	if err != nil {
		return err
	}
	if idea.OwnerID != ownerID {
		return errs.ErrNoPermission.WithDetail("only the idea owner can moderate requests")
	}
	if collab.Status != storage.CollabStatusPending {
		return errs.ErrArgs.WithDetail("request already " + collab.Status)
	}

	if err := s.store.UpdateCollabStatus(ctx, collabID, status); err != nil {
		return err
	}
	if status == storage.CollabStatusActive {
		if err := s.store.IncCollaborators(ctx, idea.ID, 1); err != nil {
			return err
		}
	}

	notifType := storage.NotifyCollabAccepted
	title := "Request accepted"
	msg := "You joined the project: " + idea.Title
	if status == storage.CollabStatusDeclined {
		notifType = storage.NotifyCollabDeclined
		title = "Request declined"
		msg = "Your request to join " + idea.Title + " was declined"
	}
	return s.store.CreateNotification(ctx, &storage.Notification{
		ID:      uuid.NewString(),
		UserID:  collab.UserID,
		Type:    notifType,
		Title:   title,
		Message: msg,
		Metadata: map[string]string{
			"collab_id": collab.ID,
			"idea_id":   idea.ID,
			"status":    status,
		},
		CreatedAt: time.Now().UnixMilli(),
	})
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]*storage.Collaboration, error) {
	return s.store.ListCollabsByUser(ctx, userID)
}
