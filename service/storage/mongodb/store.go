package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/GitSid-glitch/cobuild/service/storage"
	"github.com/GitSid-glitch/cobuild/tools/errs"
)

type Config struct {
	URI      string
	Database string
}

// Store is the production storage.Store backed by MongoDB, one
// collection per entity.
type Store struct {
	msgColl    *mongo.Collection
	chatColl   *mongo.Collection
	ideaColl   *mongo.Collection
	collabColl *mongo.Collection
	notifColl  *mongo.Collection
	userColl   *mongo.Collection
}

var _ storage.Store = (*Store)(nil)

func Connect(ctx context.Context, cfg Config) (*Store, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cli.Ping(pingCtx, nil); err != nil {
		return nil, errors.Wrap(err, "mongo ping")
	}
	db := cli.Database(cfg.Database)
	s := &Store{
		msgColl:    db.Collection("messages"),
		chatColl:   db.Collection("chats"),
		ideaColl:   db.Collection("ideas"),
		collabColl: db.Collection("collaborations"),
		notifColl:  db.Collection("notifications"),
		userColl:   db.Collection("users"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.msgColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return errors.Wrap(err, "message indexes")
	}
	_, err = s.userColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true),
	})
	return errors.Wrap(err, "user indexes")
}

// ===== messages =====

func (s *Store) CreateMessage(ctx context.Context, m *storage.Message) (*storage.Message, error) {
	if m.ID == "" {
		return nil, errs.ErrArgs.WithDetail("message id empty")
	}
	if _, err := s.msgColl.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errs.ErrDuplicate.Wrap(err)
		}
		return nil, errs.ErrPersistence.Wrap(err)
	}
	// refresh the chat head; the message itself is already durable
	if err := s.upsertChat(ctx, m); err != nil {
		return nil, err
	}
	out := *m
	return &out, nil
}

func (s *Store) upsertChat(ctx context.Context, m *storage.Message) error {
	_, err := s.chatColl.UpdateOne(ctx,
		bson.M{"id": m.ChatID},
		bson.M{
			"$set": bson.M{
				"last_message":    m.Content,
				"last_message_at": m.CreatedAt,
			},
			"$setOnInsert": bson.M{
				"id":           m.ChatID,
				"participants": []string{m.SenderID, m.ReceiverID},
				"created_at":   m.CreatedAt,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return errs.ErrPersistence.Wrap(errors.Wrap(err, "upsert chat"))
	}
	return nil
}

func (s *Store) MarkMessageRead(ctx context.Context, messageID string) error {
	res, err := s.msgColl.UpdateOne(ctx,
		bson.M{"id": messageID, "read_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"read_at": time.Now().UnixMilli()}},
	)
	if err != nil {
		return errs.ErrPersistence.Wrap(err)
	}
	if res.MatchedCount == 0 {
		// already read or unknown id; distinguish for the caller
		n, cerr := s.msgColl.CountDocuments(ctx, bson.M{"id": messageID})
		if cerr == nil && n == 0 {
			return errs.ErrRecordNotFound.WithDetail("message " + messageID)
		}
	}
	return nil
}

func (s *Store) ListMessages(ctx context.Context, chatID string) ([]*storage.Message, error) {
	cur, err := s.msgColl.Find(ctx,
		bson.M{"chat_id": chatID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "id", Value: 1}}),
	)
	if err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	out := make([]*storage.Message, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	return out, nil
}

func (s *Store) ListChats(ctx context.Context, userID string) ([]*storage.Chat, error) {
	cur, err := s.chatColl.Find(ctx,
		bson.M{"participants": userID},
		options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}}),
	)
	if err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	out := make([]*storage.Chat, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	return out, nil
}

// ===== ideas =====

func (s *Store) CreateIdea(ctx context.Context, idea *storage.Idea) error {
	_, err := s.ideaColl.InsertOne(ctx, idea)
	return wrapWrite(err)
}

func (s *Store) GetIdea(ctx context.Context, id string) (*storage.Idea, error) {
	var idea storage.Idea
	err := s.ideaColl.FindOne(ctx, bson.M{"id": id}).Decode(&idea)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrRecordNotFound.WithDetail("idea " + id)
	}
	if err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	return &idea, nil
}

func (s *Store) ListIdeas(ctx context.Context, f storage.IdeaFilter) ([]*storage.Idea, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}
	if f.Query != "" {
		rx := bson.M{"$regex": f.Query, "$options": "i"}
		filter["$or"] = bson.A{bson.M{"title": rx}, bson.M{"description": rx}}
	}
	cur, err := s.ideaColl.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	out := make([]*storage.Idea, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	return out, nil
}

func (s *Store) IncCollaborators(ctx context.Context, ideaID string, delta int) error {
	res, err := s.ideaColl.UpdateOne(ctx,
		bson.M{"id": ideaID},
		bson.M{
			"$inc": bson.M{"collaborator_count": delta},
			"$set": bson.M{"updated_at": time.Now().UnixMilli()},
		},
	)
	if err != nil {
		return errs.ErrPersistence.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrRecordNotFound.WithDetail("idea " + ideaID)
	}
	return nil
}

// ===== collaborations =====

func (s *Store) CreateCollab(ctx context.Context, c *storage.Collaboration) error {
	_, err := s.collabColl.InsertOne(ctx, c)
	return wrapWrite(err)
}

func (s *Store) GetCollab(ctx context.Context, id string) (*storage.Collaboration, error) {
	var c storage.Collaboration
	err := s.collabColl.FindOne(ctx, bson.M{"id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrRecordNotFound.WithDetail("collab " + id)
	}
	if err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	return &c, nil
}

func (s *Store) FindCollab(ctx context.Context, ideaID, userID string) (*storage.Collaboration, error) {
	var c storage.Collaboration
	err := s.collabColl.FindOne(ctx, bson.M{"idea_id": ideaID, "user_id": userID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrRecordNotFound.WithDetail("collab for idea " + ideaID)
	}
	if err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	return &c, nil
}

func (s *Store) UpdateCollabStatus(ctx context.Context, id, status string) error {
	res, err := s.collabColl.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UnixMilli()}},
	)
	if err != nil {
		return errs.ErrPersistence.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrRecordNotFound.WithDetail("collab " + id)
	}
	return nil
}

func (s *Store) ListCollabsByUser(ctx context.Context, userID string) ([]*storage.Collaboration, error) {
	cur, err := s.collabColl.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	out := make([]*storage.Collaboration, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	return out, nil
}

// ===== notifications =====

func (s *Store) CreateNotification(ctx context.Context, n *storage.Notification) error {
	_, err := s.notifColl.InsertOne(ctx, n)
	return wrapWrite(err)
}

func (s *Store) ListNotifications(ctx context.Context, userID string) ([]*storage.Notification, error) {
	cur, err := s.notifColl.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	out := make([]*storage.Notification, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	return out, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := s.notifColl.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return errs.ErrPersistence.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrRecordNotFound.WithDetail("notification " + id)
	}
	return nil
}

// ===== users =====

func (s *Store) CreateUser(ctx context.Context, u *storage.User) error {
	_, err := s.userColl.InsertOne(ctx, u)
	return wrapWrite(err)
}

func (s *Store) GetUser(ctx context.Context, id string) (*storage.User, error) {
	var u storage.User
	err := s.userColl.FindOne(ctx, bson.M{"id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrRecordNotFound.WithDetail("user " + id)
	}
	if err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	var u storage.User
	err := s.userColl.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrRecordNotFound.WithDetail("email " + email)
	}
	if err != nil {
		return nil, errs.ErrPersistence.Wrap(err)
	}
	return &u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, u *storage.User) error {
	res, err := s.userColl.UpdateOne(ctx,
		bson.M{"id": u.ID},
		bson.M{"$set": bson.M{
			"full_name":  u.FullName,
			"bio":        u.Bio,
			"avatar_url": u.AvatarURL,
			"skills":     u.Skills,
			"updated_at": time.Now().UnixMilli(),
		}},
	)
	if err != nil {
		return errs.ErrPersistence.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrRecordNotFound.WithDetail("user " + u.ID)
	}
	return nil
}

func wrapWrite(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrDuplicate.Wrap(err)
	}
	return errs.ErrPersistence.Wrap(err)
}
