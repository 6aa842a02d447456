package main

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/zunou-lab/chatsync/config"
)

// loadConfigs reads the TOML file and applies environment overrides on top.
// Durations in the file are integers in nanoseconds; the overrides accept
// time.ParseDuration strings.
func loadConfigs(path string) (config.Configs, error) {
	var cfg config.Configs
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	if env := os.Getenv("CHATSYNC_ENV"); env != "" {
		cfg.Env = env
	}

	if endpoints := os.Getenv("GRAPHQL_ENDPOINTS"); endpoints != "" {
		cfg.GraphQL.Endpoints = strings.Split(endpoints, ",")
	}

	if secret := os.Getenv("TOKEN_SECRET"); secret != "" {
		cfg.Auth.TokenSecret = secret
	}

	if url := os.Getenv("AUTH_REFRESH_URL"); url != "" {
		cfg.Auth.RefreshURL = url
	}

	if url := os.Getenv("REALTIME_URL"); url != "" {
		cfg.Realtime.URL = url
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}

	if channel := os.Getenv("REDIS_INVALIDATION_CHANNEL"); channel != "" {
		cfg.Redis.InvalidationChannel = channel
	}

	if dir := os.Getenv("SEARCH_INDEX_DIR"); dir != "" {
		cfg.Search.IndexDir = dir
	}

	if d := os.Getenv("SYNC_REFRESH_DEBOUNCE"); d != "" {
		debounce, err := time.ParseDuration(d)
		if err != nil {
			return cfg, err
		}
		cfg.Sync.RefreshDebounce = debounce
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *config.Configs) {
	if cfg.Env == "" {
		cfg.Env = "local"
	}

	if cfg.GraphQL.Timeout <= 0 {
		cfg.GraphQL.Timeout = 15 * time.Second
	}

	if cfg.Auth.AccessToken.Name == "" {
		cfg.Auth.AccessToken.Name = "access_token"
	}

	if cfg.Auth.RefreshLeeway <= 0 {
		cfg.Auth.RefreshLeeway = time.Minute
	}

	if cfg.Realtime.PingInterval <= 0 {
		cfg.Realtime.PingInterval = 30 * time.Second
	}

	if cfg.Realtime.ReconnectDelay <= 0 {
		cfg.Realtime.ReconnectDelay = 2 * time.Second
	}

	if cfg.Sync.PageSize <= 0 {
		cfg.Sync.PageSize = 20
	}

	if cfg.Sync.MaxPageSize <= 0 {
		cfg.Sync.MaxPageSize = 100
	}

	if cfg.Sync.RefreshDebounce <= 0 {
		cfg.Sync.RefreshDebounce = 200 * time.Millisecond
	}
}
