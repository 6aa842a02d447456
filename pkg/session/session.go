package session

import (
	"context"
	"sync"
	"time"

	"github.com/zunou-lab/chatsync/pkg/api"
	"github.com/zunou-lab/chatsync/pkg/authenticator"
	"github.com/zunou-lab/chatsync/pkg/errorx"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
)

// Session holds the access token and the signed-in user for one client
// process. AccessToken transparently refreshes the token before it expires,
// so callers never attach a stale credential to a request.
type Session[U any] struct {
	mu      sync.Mutex
	token   string
	expires time.Time
	user    U
	hasUser bool
}

func New[U any]() *Session[U] {
	return &Session[U]{}
}

// Start installs a freshly issued token and the user it belongs to. The
// expiry is read from the token itself.
func (s *Session[U]) Start(token string, user U) error {
	claims, err := authenticator.Inspect(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expires = claims.ExpiresAt
	s.user = user
	s.hasUser = true
	return nil
}

func (s *Session[U]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero U
	s.token = ""
	s.expires = time.Time{}
	s.user = zero
	s.hasUser = false
}

func (s *Session[U]) CurrentUser() (U, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.hasUser
}

// AccessToken returns a token valid for at least the configured leeway,
// refreshing it first when needed. Concurrent callers share one refresh.
func (s *Session[U]) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return "", errorx.New(errorx.Unauthenticated, "No session established")
	}

	cfg := xcontext.Configs(ctx).Auth
	if cfg.RefreshURL == "" || s.expires.IsZero() || time.Until(s.expires) > cfg.RefreshLeeway {
		return s.token, nil
	}

	if err := s.refresh(ctx, cfg.RefreshURL); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot refresh the access token: %v", err)
		return "", errorx.New(errorx.Unauthenticated, "Session expired")
	}

	return s.token, nil
}

func (s *Session[U]) refresh(ctx context.Context, refreshURL string) error {
	resp, err := api.NewGenerator(refreshURL).New("").
		POST(ctx, api.OAuth2("Bearer", s.token))
	if err != nil {
		return err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return errorx.New(errorx.Internal, "Got an invalid refresh response")
	}

	token, err := body.GetString("accessToken")
	if err != nil {
		return err
	}

	claims, err := authenticator.Inspect(token)
	if err != nil {
		return err
	}

	s.token = token
	s.expires = claims.ExpiresAt
	return nil
}
