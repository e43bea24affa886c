package relay_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GitSid-glitch/cobuild/service/relay"
	"github.com/GitSid-glitch/cobuild/service/storage"
	"github.com/GitSid-glitch/cobuild/service/storage/memory"
	"github.com/GitSid-glitch/cobuild/tools/errs"
)

// countingStore tracks writes so tests can assert the storage
// collaborator was (not) invoked.
type countingStore struct {
	storage.MessageStore
	creates atomic.Int64
}

func (s *countingStore) CreateMessage(ctx context.Context, m *storage.Message) (*storage.Message, error) {
	s.creates.Add(1)
	return s.MessageStore.CreateMessage(ctx, m)
}

// failingStore rejects every write.
type failingStore struct {
	storage.MessageStore
}

func (s *failingStore) CreateMessage(ctx context.Context, m *storage.Message) (*storage.Message, error) {
	return nil, errs.ErrPersistence.WithDetail("backend down")
}

// gatedStore blocks each write until the per-content gate opens,
// simulating variable persistence latency.
type gatedStore struct {
	storage.MessageStore
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func newGatedStore(inner storage.MessageStore) *gatedStore {
	return &gatedStore{MessageStore: inner, gates: make(map[string]chan struct{})}
}

func (s *gatedStore) gate(content string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gates[content]
	if !ok {
		g = make(chan struct{})
		s.gates[content] = g
	}
	return g
}

func (s *gatedStore) CreateMessage(ctx context.Context, m *storage.Message) (*storage.Message, error) {
	<-s.gate(m.Content)
	return s.MessageStore.CreateMessage(ctx, m)
}

func newServer(store storage.MessageStore) *relay.Server {
	return relay.NewServer(store, relay.Options{
		SendQueueSize:  16,
		FanoutWorkers:  2,
		FanoutQueue:    64,
		PersistTimeout: 2 * time.Second,
	})
}

func register(t *testing.T, srv *relay.Server, connID, userID string) *relay.Client {
	t.Helper()
	c := relay.NewClient(connID, nil, 16)
	srv.Registry().Track(c)
	require.NoError(t, srv.RegisterConn(c, userID))
	return c
}

func recvFrame(t *testing.T, c *relay.Client) *relay.Frame {
	t.Helper()
	select {
	case b := <-c.Send:
		f, err := relay.ParseFrame(b)
		require.NoError(t, err)
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func recvMessage(t *testing.T, c *relay.Client) *storage.Message {
	t.Helper()
	f := recvFrame(t, c)
	require.Equal(t, relay.FrameMessageDelivered, f.Type)
	var m storage.Message
	require.NoError(t, json.Unmarshal(f.Data, &m))
	return &m
}

func requireNoFrame(t *testing.T, c *relay.Client) {
	t.Helper()
	select {
	case b := <-c.Send:
		t.Fatalf("unexpected frame: %s", b)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSendMessageValidation(t *testing.T) {
	cs := &countingStore{MessageStore: memory.NewStore()}
	srv := newServer(cs)
	sender := register(t, srv, "c1", "alice")

	cases := []relay.SendMessagePayload{
		{ChatID: "conv1", ReceiverID: "bob", Content: "   "},
		{ChatID: "", ReceiverID: "bob", Content: "hi"},
		{ChatID: "conv1", ReceiverID: "", Content: "hi"},
	}
	for _, p := range cases {
		_, err := srv.SendMessage(context.Background(), sender, p)
		require.ErrorIs(t, err, errs.ErrArgs)
	}
	require.Zero(t, cs.creates.Load(), "rejected input must not reach storage")
}

func TestSendMessageUnregisteredConn(t *testing.T) {
	srv := newServer(memory.NewStore())
	c := relay.NewClient("c1", nil, 16)
	srv.Registry().Track(c)

	_, err := srv.SendMessage(context.Background(), c, relay.SendMessagePayload{
		ChatID: "conv1", ReceiverID: "bob", Content: "hi",
	})
	require.ErrorIs(t, err, errs.ErrArgs)
}

func TestSendMessagePersistsAndReturns(t *testing.T) {
	mem := memory.NewStore()
	srv := newServer(mem)
	sender := register(t, srv, "c1", "alice")

	m, err := srv.SendMessage(context.Background(), sender, relay.SendMessagePayload{
		ChatID: "conv1", ReceiverID: "bob", Content: "hi",
	})
	require.NoError(t, err)
	require.NotEmpty(t, m.ID)
	require.NotZero(t, m.CreatedAt)
	require.Equal(t, "alice", m.SenderID)

	listed, err := mem.ListMessages(context.Background(), "conv1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, m.ID, listed[0].ID)
}

func TestSendMessageDeliversToAllReceiverConns(t *testing.T) {
	srv := newServer(memory.NewStore())
	sender := register(t, srv, "c1", "alice")
	rc1 := register(t, srv, "c2", "bob")
	rc2 := register(t, srv, "c3", "bob")

	m, err := srv.SendMessage(context.Background(), sender, relay.SendMessagePayload{
		ChatID: "conv1", ReceiverID: "bob", Content: "hi",
	})
	require.NoError(t, err)

	require.Equal(t, m.ID, recvMessage(t, rc1).ID)
	require.Equal(t, m.ID, recvMessage(t, rc2).ID)
	requireNoFrame(t, sender)
}

func TestSendMessageReceiverOffline(t *testing.T) {
	mem := memory.NewStore()
	srv := newServer(mem)
	sender := register(t, srv, "c1", "alice")

	m, err := srv.SendMessage(context.Background(), sender, relay.SendMessagePayload{
		ChatID: "conv1", ReceiverID: "bob", Content: "hi",
	})
	require.NoError(t, err, "offline receiver is not an error")

	listed, err := mem.ListMessages(context.Background(), "conv1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, m.ID, listed[0].ID, "message stays retrievable for the next fetch")
}

func TestSendMessagePersistenceFailure(t *testing.T) {
	srv := newServer(&failingStore{MessageStore: memory.NewStore()})
	sender := register(t, srv, "c1", "alice")
	receiver := register(t, srv, "c2", "bob")

	_, err := srv.SendMessage(context.Background(), sender, relay.SendMessagePayload{
		ChatID: "conv1", ReceiverID: "bob", Content: "hi",
	})
	require.ErrorIs(t, err, errs.ErrPersistence)
	requireNoFrame(t, receiver)
}

func TestTypingFanout(t *testing.T) {
	cs := &countingStore{MessageStore: memory.NewStore()}
	srv := newServer(cs)
	sender := register(t, srv, "c1", "alice")
	peer := register(t, srv, "c2", "bob")
	outsider := register(t, srv, "c3", "carol")

	require.NoError(t, srv.JoinRoom(sender, "conv1"))
	require.NoError(t, srv.JoinRoom(peer, "conv1"))

	srv.NotifyTyping(sender, "conv1")

	f := recvFrame(t, peer)
	require.Equal(t, relay.FramePeerTyping, f.Type)
	var p relay.PeerTypingPayload
	require.NoError(t, json.Unmarshal(f.Data, &p))
	require.Equal(t, "alice", p.UserID)
	require.Equal(t, "conv1", p.ChatID)

	requireNoFrame(t, sender)
	requireNoFrame(t, outsider)
	require.Zero(t, cs.creates.Load(), "typing must never persist anything")
}

func TestTypingEmptyRoomIsNoop(t *testing.T) {
	srv := newServer(memory.NewStore())
	sender := register(t, srv, "c1", "alice")
	srv.NotifyTyping(sender, "empty-room")
	requireNoFrame(t, sender)
}

func TestDisconnectCleansEverything(t *testing.T) {
	srv := newServer(memory.NewStore())
	c := register(t, srv, "c1", "alice")
	require.NoError(t, srv.JoinRoom(c, "conv1"))
	require.NoError(t, srv.JoinRoom(c, "conv2"))

	srv.DropClient(c)

	require.False(t, srv.IsOnline("alice"))
	require.Empty(t, srv.Rooms().MembersOf(relay.ChatRoom("conv1"), ""))
	require.Empty(t, srv.Rooms().MembersOf(relay.ChatRoom("conv2"), ""))
}

// Scenario from the conversation flow: two devices for A, one for B,
// then B drops and A keeps sending.
func TestConversationScenario(t *testing.T) {
	mem := memory.NewStore()
	srv := newServer(mem)

	a1 := register(t, srv, "c1", "userA")
	a2 := register(t, srv, "c2", "userA")
	b := register(t, srv, "c3", "userB")

	m1, err := srv.SendMessage(context.Background(), a1, relay.SendMessagePayload{
		ChatID: "conv1", ReceiverID: "userB", Content: "hi",
	})
	require.NoError(t, err)

	require.Equal(t, m1.ID, recvMessage(t, b).ID)
	requireNoFrame(t, a1)
	requireNoFrame(t, a2)

	srv.DropClient(b)

	m2, err := srv.SendMessage(context.Background(), a1, relay.SendMessagePayload{
		ChatID: "conv1", ReceiverID: "userB", Content: "still there?",
	})
	require.NoError(t, err)
	requireNoFrame(t, b)

	listed, err := mem.ListMessages(context.Background(), "conv1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, m1.ID, listed[0].ID)
	require.Equal(t, m2.ID, listed[1].ID)
}

// Delivery order is persistence completion order, not submission
// order: the slower write lands second even though it was sent first.
func TestDeliveryFollowsPersistenceCompletion(t *testing.T) {
	gs := newGatedStore(memory.NewStore())
	srv := newServer(gs)
	sender := register(t, srv, "c1", "alice")
	receiver := register(t, srv, "c2", "bob")

	slowGate := gs.gate("slow")
	fastGate := gs.gate("fast")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := srv.SendMessage(context.Background(), sender, relay.SendMessagePayload{
			ChatID: "conv1", ReceiverID: "bob", Content: "slow",
		})
		require.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := srv.SendMessage(context.Background(), sender, relay.SendMessagePayload{
			ChatID: "conv1", ReceiverID: "bob", Content: "fast",
		})
		require.NoError(t, err)
	}()

	close(fastGate)
	first := recvMessage(t, receiver)
	close(slowGate)
	second := recvMessage(t, receiver)
	wg.Wait()

	require.Equal(t, "fast", first.Content)
	require.Equal(t, "slow", second.Content)
}

// A receiver that connects while the write is suspended still gets the
// message: fan-out must use a fresh registry lookup, not a snapshot.
func TestFanoutUsesFreshLookupAfterPersistence(t *testing.T) {
	gs := newGatedStore(memory.NewStore())
	srv := newServer(gs)
	sender := register(t, srv, "c1", "alice")

	gate := gs.gate("hello")
	done := make(chan *storage.Message, 1)
	go func() {
		m, err := srv.SendMessage(context.Background(), sender, relay.SendMessagePayload{
			ChatID: "conv1", ReceiverID: "bob", Content: "hello",
		})
		require.NoError(t, err)
		done <- m
	}()

	// bob connects during the persistence window
	late := register(t, srv, "c2", "bob")
	close(gate)

	m := <-done
	require.Equal(t, m.ID, recvMessage(t, late).ID)
}

// A sender that disconnects during the persistence window must not
// break the write or the delivery.
func TestSenderDisconnectDuringPersistence(t *testing.T) {
	gs := newGatedStore(memory.NewStore())
	srv := newServer(gs)
	sender := register(t, srv, "c1", "alice")
	receiver := register(t, srv, "c2", "bob")

	gate := gs.gate("bye")
	done := make(chan error, 1)
	go func() {
		_, err := srv.SendMessage(context.Background(), sender, relay.SendMessagePayload{
			ChatID: "conv1", ReceiverID: "bob", Content: "bye",
		})
		done <- err
	}()

	srv.DropClient(sender)
	close(gate)

	require.NoError(t, <-done)
	require.Equal(t, "bye", recvMessage(t, receiver).Content)
}
