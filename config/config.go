package config

import (
	"time"
)

type Configs struct {
	Env string `toml:"env"`

	GraphQL  GraphQLConfigs  `toml:"graphql"`
	Auth     AuthConfigs     `toml:"auth"`
	Realtime RealtimeConfigs `toml:"realtime"`
	Redis    RedisConfigs    `toml:"redis"`
	Search   SearchConfigs   `toml:"search"`
	Storage  S3Configs       `toml:"storage"`
	Sync     SyncConfigs     `toml:"sync"`
}

type GraphQLConfigs struct {
	// Endpoints lists equivalent GraphQL gateways. Requests pick one at
	// random and fall over to the next on transport errors.
	Endpoints []string      `toml:"endpoints"`
	Timeout   time.Duration `toml:"timeout"`
}

type AuthConfigs struct {
	TokenSecret string       `toml:"token_secret"`
	AccessToken TokenConfigs `toml:"access_token"`

	// RefreshURL is called when the cached access token is about to expire.
	RefreshURL string `toml:"refresh_url"`

	// RefreshLeeway is how long before expiry a token is considered stale.
	RefreshLeeway time.Duration `toml:"refresh_leeway"`
}

type TokenConfigs struct {
	Name       string        `toml:"name"`
	Expiration time.Duration `toml:"expiration"`
}

type RealtimeConfigs struct {
	URL            string        `toml:"url"`
	PingInterval   time.Duration `toml:"ping_interval"`
	ReconnectDelay time.Duration `toml:"reconnect_delay"`
	MaxReconnects  int           `toml:"max_reconnects"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`

	// InvalidationChannel is the pub/sub channel cache mirrors use to
	// propagate invalidations between processes. Empty disables the redis
	// mirror entirely.
	InvalidationChannel string `toml:"invalidation_channel"`
}

type SearchConfigs struct {
	IndexDir string `toml:"index_dir"`
}

type S3Configs struct {
	Region         string `toml:"region"`
	Endpoint       string `toml:"endpoint"`
	PublicEndpoint string `toml:"public_endpoint"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	Bucket         string `toml:"bucket"`
	SSLDisabled    bool   `toml:"ssl_disabled"`
}

type SyncConfigs struct {
	PageSize    int `toml:"page_size"`
	MaxPageSize int `toml:"max_page_size"`

	// RefreshDebounce batches invalidations of the same key arriving in a
	// short burst into a single refetch.
	RefreshDebounce time.Duration `toml:"refresh_debounce"`
}
