package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/GitSid-glitch/cobuild/logger"
	"github.com/GitSid-glitch/cobuild/tools/ids"
	"github.com/GitSid-glitch/cobuild/tools/security"
)

const (
	StorageModeMongo  = "mongo"
	StorageModeMemory = "memory" // demo mode, no external services needed
)

type AppConfig struct {
	NodeID int64 `envconfig:"NODE_ID" default:"1"` // snowflake node, 0~1023
	Port   int   `envconfig:"PORT" default:"8080"`

	StorageMode string `envconfig:"STORAGE_MODE" default:"mongo"`

	MongoURI string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB  string `envconfig:"MONGO_DB" default:"cobuild"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:""` // empty disables the presence mirror
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"2h"`

	SendQueueSize  int           `envconfig:"SEND_QUEUE_SIZE" default:"256"`
	FanoutWorkers  int           `envconfig:"FANOUT_WORKERS" default:"4"`
	FanoutQueue    int           `envconfig:"FANOUT_QUEUE" default:"1024"`
	PersistTimeout time.Duration `envconfig:"PERSIST_TIMEOUT" default:"5s"`
	PresenceTTL    time.Duration `envconfig:"PRESENCE_TTL" default:"60s"`
}

// Load reads .env (if present) then the COBUILD_* environment.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debugf("no .env file loaded: %v", err)
	}
	var c AppConfig
	if err := envconfig.Process("cobuild", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *AppConfig) JWTOptions() security.Options {
	opts := security.DefaultOptions([]byte(c.JWTSecret))
	opts.TTL = c.JWTTTL
	return opts
}

// ConfigIds seeds the snowflake generator; call once at startup.
func (c *AppConfig) ConfigIds() {
	ids.SetNodeID(c.NodeID)
}
