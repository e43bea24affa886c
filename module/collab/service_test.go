package collab_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GitSid-glitch/cobuild/module/collab"
	"github.com/GitSid-glitch/cobuild/service/storage"
	"github.com/GitSid-glitch/cobuild/service/storage/memory"
	"github.com/GitSid-glitch/cobuild/tools/errs"
)

func setup(t *testing.T) (*collab.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.CreateIdea(context.Background(), &storage.Idea{
		ID: "idea-1", OwnerID: "owner", Title: "Garden planner",
	}))
	return collab.NewService(store), store
}

func TestRequestCreatesPendingAndNotifiesOwner(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	c, err := svc.Request(ctx, "idea-1", "bob", "developer")
	require.NoError(t, err)
	require.Equal(t, storage.CollabStatusPending, c.Status)
	require.Equal(t, "developer", c.Role)

	ns, err := store.ListNotifications(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	require.Equal(t, storage.NotifyCollabRequest, ns[0].Type)
	require.Equal(t, c.ID, ns[0].Metadata["collab_id"])
}

func TestRequestOwnIdeaRejected(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.Request(context.Background(), "idea-1", "owner", "")
	require.ErrorIs(t, err, errs.ErrArgs)
}

func TestRequestUnknownIdea(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.Request(context.Background(), "missing", "bob", "")
	require.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestRequestDuplicate(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Request(ctx, "idea-1", "bob", "")
	require.NoError(t, err)
	_, err = svc.Request(ctx, "idea-1", "bob", "")
	require.ErrorIs(t, err, errs.ErrDuplicate)
}

func TestAcceptActivatesAndCounts(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	c, err := svc.Request(ctx, "idea-1", "bob", "")
	require.NoError(t, err)
	require.NoError(t, svc.Accept(ctx, c.ID, "owner"))

	got, err := store.GetCollab(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, storage.CollabStatusActive, got.Status)

	idea, err := store.GetIdea(ctx, "idea-1")
	require.NoError(t, err)
	require.Equal(t, 1, idea.CollaboratorCount)

	ns, err := store.ListNotifications(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	require.Equal(t, storage.NotifyCollabAccepted, ns[0].Type)
}

func TestDeclineNotifiesRequesterWithoutCounting(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	c, err := svc.Request(ctx, "idea-1", "bob", "")
	require.NoError(t, err)
	require.NoError(t, svc.Decline(ctx, c.ID, "owner"))

	idea, err := store.GetIdea(ctx, "idea-1")
	require.NoError(t, err)
	require.Zero(t, idea.CollaboratorCount)

	ns, err := store.ListNotifications(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	require.Equal(t, storage.NotifyCollabDeclined, ns[0].Type)
}

func TestDecideOwnerOnly(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	c, err := svc.Request(ctx, "idea-1", "bob", "")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Accept(ctx, c.ID, "mallory"), errs.ErrNoPermission)
	require.ErrorIs(t, svc.Decline(ctx, c.ID, "bob"), errs.ErrNoPermission)
}

func TestDecideOnlyOncePending(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	c, err := svc.Request(ctx, "idea-1", "bob", "")
	require.NoError(t, err)
	require.NoError(t, svc.Accept(ctx, c.ID, "owner"))

	require.ErrorIs(t, svc.Accept(ctx, c.ID, "owner"), errs.ErrArgs)
	require.ErrorIs(t, svc.Decline(ctx, c.ID, "owner"), errs.ErrArgs)
}

func TestListMine(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	require.NoError(t, store.CreateIdea(ctx, &storage.Idea{ID: "idea-2", OwnerID: "owner"}))

	_, err := svc.Request(ctx, "idea-1", "bob", "")
	require.NoError(t, err)
	_, err = svc.Request(ctx, "idea-2", "bob", "")
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, mine, 2)

	none, err := svc.ListMine(ctx, "carol")
	require.NoError(t, err)
	require.Empty(t, none)
}
