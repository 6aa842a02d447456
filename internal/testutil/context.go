package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"github.com/zunou-lab/chatsync/config"
	"github.com/zunou-lab/chatsync/internal/entity"
	"github.com/zunou-lab/chatsync/pkg/logger"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
)

// MockContext carries the configs, logger and id generator the sync engine
// reads from its context during tests.
func MockContext(t *testing.T) context.Context {
	return MockContextWithConfigs(t, config.Configs{
		Env: "testing",
		GraphQL: config.GraphQLConfigs{
			Endpoints: []string{"http://localhost:8080/graphql"},
			Timeout:   time.Second,
		},
		Auth: config.AuthConfigs{
			TokenSecret:   "secret",
			AccessToken:   config.TokenConfigs{Name: "access_token", Expiration: time.Hour},
			RefreshLeeway: time.Minute,
		},
		Sync: config.SyncConfigs{
			PageSize:    20,
			MaxPageSize: 100,

			// Long enough that background refetches never race a test.
			RefreshDebounce: time.Minute,
		},
	})
}

func MockContextWithConfigs(t *testing.T, cfg config.Configs) context.Context {
	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.ERROR))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	ctx = xcontext.WithSnowFlake(ctx, node)

	return ctx
}

// SampleUser is the acting user most tests sign in as.
func SampleUser() entity.User {
	return entity.User{ID: "user-1", Name: "First User", Email: "first@example.com"}
}
