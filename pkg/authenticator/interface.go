package authenticator

import "time"

type TokenEngine[T any] interface {
	Generate(sub string, obj T) (string, error)
	Verify(token string) (T, error)
}

// Claims is the verification-free view of a token used by the session layer
// to decide when a refresh is due.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}
