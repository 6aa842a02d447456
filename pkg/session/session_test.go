package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zunou-lab/chatsync/config"
	"github.com/zunou-lab/chatsync/pkg/authenticator"
	"github.com/zunou-lab/chatsync/pkg/errorx"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
)

type testUser struct {
	ID   string
	Name string
}

func issueToken(t *testing.T, expiration time.Duration) string {
	t.Helper()

	engine := authenticator.NewTokenEngine[testUser](
		config.TokenConfigs{Name: "access_token", Expiration: expiration}, "secret")
	token, err := engine.Generate("u1", testUser{ID: "u1", Name: "One"})
	require.NoError(t, err)

	return token
}

func TestSessionStartAndCurrentUser(t *testing.T) {
	s := New[testUser]()

	_, ok := s.CurrentUser()
	require.False(t, ok)

	require.NoError(t, s.Start(issueToken(t, time.Hour), testUser{ID: "u1", Name: "One"}))

	user, ok := s.CurrentUser()
	require.True(t, ok)
	require.Equal(t, "u1", user.ID)

	s.Clear()
	_, ok = s.CurrentUser()
	require.False(t, ok)
}

func TestSessionAccessTokenWithoutSession(t *testing.T) {
	s := New[testUser]()

	_, err := s.AccessToken(context.Background())
	require.ErrorIs(t, err, errorx.Error{Code: errorx.Unauthenticated})
}

func TestSessionAccessTokenFreshTokenSkipsRefresh(t *testing.T) {
	ctx := xcontext.WithConfigs(context.Background(), config.Configs{
		Auth: config.AuthConfigs{
			RefreshURL:    "http://localhost/refresh",
			RefreshLeeway: time.Minute,
		},
	})

	s := New[testUser]()
	token := issueToken(t, time.Hour)
	require.NoError(t, s.Start(token, testUser{ID: "u1"}))

	got, err := s.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, token, got)
}

func TestSessionRejectsMalformedToken(t *testing.T) {
	s := New[testUser]()
	require.Error(t, s.Start("not-a-jwt", testUser{ID: "u1"}))
}
