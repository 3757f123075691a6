package internal

import (
	"fmt"
	"time"
	"wish-wall/domain/document"
	"wish-wall/domain/wall"
)

const (
	BackendBadger = "badger"
	BackendRedis  = "redis"

	minSecretLength = 16
)

type Config struct {
	LogLevel     string `env:"LOG_LEVEL,default=INFO"`
	AppID        string `env:"APP_ID,default=christmas-wall-sketch-layout"`
	StoreBackend string `env:"STORE_BACKEND,default=badger"`

	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/wall"`
	// An empty address with the redis backend starts an in-process server.
	RedisAddr      string `env:"REDIS_ADDR"`

	Host          string `env:"HOST,default=0.0.0.0"`
	GRPCPort      int    `env:"GRPC_PORT,required=true"`
	HTTPPort      int    `env:"HTTP_PORT,required=true"`
	DebugPort     int    `env:"DEBUG_PORT,default=8081"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL,required=true"`
	QRServiceURL  string `env:"QR_SERVICE_URL,default=https://api.qrserver.com/v1/create-qr-code/"`

	SessionSecret     string        `env:"SESSION_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=12h"`

	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,default=500ms"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=1s"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=15s"`
	StreamKeepAlive   time.Duration `env:"STREAM_KEEP_ALIVE,default=15s"`
}

// Validate reports settings the env tags cannot express.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendBadger:
		if c.BadgerFilepath == "" {
			return fmt.Errorf("BADGER_FILEPATH is required with the %s backend", BackendBadger)
		}
	case BackendRedis:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendBadger, BackendRedis, c.StoreBackend)
	}
	if len(c.SessionSecret) < minSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", minSecretLength)
	}
	if !document.ValidID(c.AppID) {
		return fmt.Errorf("APP_ID must be a single non-empty path segment, got %q", c.AppID)
	}
	return nil
}

// Collection is the wall collection of this deployment.
func (c Config) Collection() document.CollectionPath {
	return wall.Collection(c.AppID)
}
