package relay

import (
	"time"

	"github.com/GitSid-glitch/cobuild/service/storage"
)

type Options struct {
	NodeID         string        // participates in presence mirror values
	SendQueueSize  int           // per-connection outbound queue
	FanoutWorkers  int
	FanoutQueue    int
	PersistTimeout time.Duration // cap on the storage write; expiry = persistence failure
	PresenceTTL    time.Duration
	MirrorPresence bool // requires InitRedis to have succeeded
}

func (o *Options) norm() {
	if o.SendQueueSize <= 0 {
		o.SendQueueSize = 256
	}
	if o.FanoutWorkers <= 0 {
		o.FanoutWorkers = 4
	}
	if o.FanoutQueue <= 0 {
		o.FanoutQueue = 1024
	}
	if o.PersistTimeout <= 0 {
		o.PersistTimeout = 5 * time.Second
	}
	if o.PresenceTTL <= 0 {
		o.PresenceTTL = 60 * time.Second
	}
}

// Server is the relay instance. It is constructed once by startup code
// and passed by reference to request handlers; there is no package
// global.
type Server struct {
	opts   Options
	reg    *Registry
	rooms  *Rooms
	fanout *Fanout
	disp   *Dispatcher
	store  storage.MessageStore
}

func NewServer(store storage.MessageStore, opts Options) *Server {
	opts.norm()
	return &Server{
		opts:   opts,
		reg:    NewRegistry(),
		rooms:  NewRooms(),
		fanout: NewFanout(opts.FanoutWorkers, opts.FanoutQueue),
		disp:   NewDispatcher(),
		store:  store,
	}
}

func (s *Server) Registry() *Registry { return s.reg }
func (s *Server) Rooms() *Rooms       { return s.rooms }
func (s *Server) Disp() *Dispatcher   { return s.disp }

// IsOnline answers presence from local registry occupancy.
func (s *Server) IsOnline(userID string) bool {
	return s.reg.IsOnline(userID)
}
