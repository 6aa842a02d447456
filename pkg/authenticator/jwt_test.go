package authenticator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zunou-lab/chatsync/config"
	"github.com/zunou-lab/chatsync/pkg/authenticator"
)

func TestJWT(t *testing.T) {
	engine := authenticator.NewTokenEngine[string](
		config.TokenConfigs{Expiration: time.Minute}, "secret")
	token, err := engine.Generate("user-1", "abc")
	require.NoError(t, err)

	msg, err := engine.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "abc", msg)
}

func TestJWTExpiration(t *testing.T) {
	engine := authenticator.NewTokenEngine[string](
		config.TokenConfigs{Expiration: -time.Minute}, "secret")
	token, err := engine.Generate("user-1", "abc")
	require.NoError(t, err)

	_, err = engine.Verify(token)
	require.Error(t, err)
}

func TestInspect(t *testing.T) {
	engine := authenticator.NewTokenEngine[string](
		config.TokenConfigs{Expiration: time.Hour}, "secret")
	token, err := engine.Generate("user-1", "abc")
	require.NoError(t, err)

	claims, err := authenticator.Inspect(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}
