package client

import (
	"context"
)

type MockGraphQLCaller struct {
	QueryFunc  func(ctx context.Context, doc string, variables any, out any) error
	MutateFunc func(ctx context.Context, doc string, variables any, out any) error
}

func (m *MockGraphQLCaller) Query(ctx context.Context, doc string, variables any, out any) error {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, doc, variables, out)
	}

	panic("not implemented")
}

func (m *MockGraphQLCaller) Mutate(ctx context.Context, doc string, variables any, out any) error {
	if m.MutateFunc != nil {
		return m.MutateFunc(ctx, doc, variables, out)
	}

	panic("not implemented")
}

type MockTokenSource struct {
	Token string
}

func (m *MockTokenSource) AccessToken(ctx context.Context) (string, error) {
	return m.Token, nil
}
