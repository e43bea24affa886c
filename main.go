package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GitSid-glitch/cobuild/global/config"
	"github.com/GitSid-glitch/cobuild/logger"
	mid "github.com/GitSid-glitch/cobuild/middleware"
	midsec "github.com/GitSid-glitch/cobuild/middleware/security"
	"github.com/GitSid-glitch/cobuild/module/chat"
	"github.com/GitSid-glitch/cobuild/module/collab"
	"github.com/GitSid-glitch/cobuild/module/idea"
	"github.com/GitSid-glitch/cobuild/module/notification"
	"github.com/GitSid-glitch/cobuild/module/user"
	"github.com/GitSid-glitch/cobuild/service/relay"
	"github.com/GitSid-glitch/cobuild/service/relay/handlers"
	"github.com/GitSid-glitch/cobuild/service/storage"
	"github.com/GitSid-glitch/cobuild/service/storage/memory"
	"github.com/GitSid-glitch/cobuild/service/storage/mongodb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("load config: %v", err)
		os.Exit(1)
	}
	cfg.ConfigIds()

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Errorf("open store: %v", err)
		os.Exit(1)
	}

	mirror := false
	if cfg.RedisAddr != "" {
		rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := storage.InitRedis(rctx, storage.RedisConfig{
			Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB,
		})
		cancel()
		if err != nil {
			logger.Warnf("redis unavailable, presence mirror disabled: %v", err)
		} else {
			mirror = true
		}
	}

	srv := relay.NewServer(store, relay.Options{
		NodeID:         "cobuild-" + strconv.FormatInt(cfg.NodeID, 10),
		SendQueueSize:  cfg.SendQueueSize,
		FanoutWorkers:  cfg.FanoutWorkers,
		FanoutQueue:    cfg.FanoutQueue,
		PersistTimeout: cfg.PersistTimeout,
		PresenceTTL:    cfg.PresenceTTL,
		MirrorPresence: mirror,
	})
	handlers.Mount(srv)

	mid.SetAuthOptions(midsec.Options{JWT: cfg.JWTOptions()})

	r := gin.New()
	r.Use(gin.Recovery())
	mountRoutes(r, cfg, store, srv)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Infof("cobuild listening on %s (storage=%s, presence mirror=%v)", addr, cfg.StorageMode, mirror)
	if err := r.Run(addr); err != nil {
		logger.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.AppConfig) (storage.Store, error) {
	switch cfg.StorageMode {
	case config.StorageModeMemory:
		s := memory.NewStore()
		if err := s.SeedDemo(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return mongodb.Connect(ctx, mongodb.Config{URI: cfg.MongoURI, Database: cfg.MongoDB})
	}
}

func mountRoutes(r *gin.Engine, cfg *config.AppConfig, store storage.Store, srv *relay.Server) {
	userH := user.NewHandler(store, cfg.JWTOptions())
	ideaH := idea.NewHandler(store)
	collabH := collab.NewHandler(collab.NewService(store))
	notifH := notification.NewHandler(store)
	chatH := chat.NewHandler(store, srv)

	r.GET("/ws", srv.HandleWS)

	api := r.Group("/api")
	mid.POST(api, "/auth/signup", userH.Signup, mid.RouteOpt{})
	mid.POST(api, "/auth/login", userH.Login, mid.RouteOpt{})
	mid.GET(api, "/profile", userH.GetProfile, mid.RouteOpt{IsAuth: true})
	mid.PUT(api, "/profile", userH.UpdateProfile, mid.RouteOpt{IsAuth: true})

	mid.GET(api, "/ideas", ideaH.List, mid.RouteOpt{})
	mid.POST(api, "/ideas", ideaH.Create, mid.RouteOpt{IsAuth: true})
	mid.GET(api, "/ideas/:id", ideaH.Get, mid.RouteOpt{})
	mid.POST(api, "/ideas/:id/join", collabH.Join, mid.RouteOpt{IsAuth: true})

	mid.GET(api, "/collabs", collabH.ListMine, mid.RouteOpt{IsAuth: true})
	mid.POST(api, "/collabs/:id/accept", collabH.Accept, mid.RouteOpt{IsAuth: true})
	mid.POST(api, "/collabs/:id/decline", collabH.Decline, mid.RouteOpt{IsAuth: true})

	mid.GET(api, "/notifications", notifH.List, mid.RouteOpt{IsAuth: true})
	mid.POST(api, "/notifications/:id/read", notifH.MarkRead, mid.RouteOpt{IsAuth: true})

	mid.GET(api, "/chats", chatH.ListChats, mid.RouteOpt{IsAuth: true})
	mid.GET(api, "/chats/:id/messages", chatH.ListMessages, mid.RouteOpt{IsAuth: true})
	mid.POST(api, "/messages/:id/read", chatH.MarkMessageRead, mid.RouteOpt{IsAuth: true})
	mid.GET(api, "/presence/:user_id", chatH.Presence, mid.RouteOpt{})
}
