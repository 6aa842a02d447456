package client

import (
	"context"
	"time"

	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"
	"github.com/zunou-lab/chatsync/config"
	"github.com/zunou-lab/chatsync/pkg/api"
	"github.com/zunou-lab/chatsync/pkg/errorx"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
)

// TokenSource supplies the bearer token attached to every server call.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// GraphQLCaller executes one GraphQL document against the gateway. Variables
// can be an api.JSON or any struct with json tags; out receives the fields of
// the data object and may be nil when the caller only cares about errors.
type GraphQLCaller interface {
	Query(ctx context.Context, doc string, variables any, out any) error
	Mutate(ctx context.Context, doc string, variables any, out any) error
}

type graphQLCaller struct {
	generator api.Generator
	tokens    TokenSource
}

func NewGraphQLCaller(cfg config.GraphQLConfigs, tokens TokenSource) GraphQLCaller {
	return &graphQLCaller{
		generator: api.NewGenerator(cfg.Endpoints...),
		tokens:    tokens,
	}
}

func (c *graphQLCaller) Query(ctx context.Context, doc string, variables any, out any) error {
	return c.call(ctx, doc, variables, out)
}

func (c *graphQLCaller) Mutate(ctx context.Context, doc string, variables any, out any) error {
	return c.call(ctx, doc, variables, out)
}

func (c *graphQLCaller) call(ctx context.Context, doc string, variables any, out any) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	if timeout := xcontext.Configs(ctx).GraphQL.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := c.generator.New("").
		Body(api.JSON{"query": doc, "variables": toVariables(variables)}).
		POST(ctx, api.OAuth2("Bearer", token))
	if err != nil {
		return err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return errorx.New(errorx.Internal, "Got a non-object response")
	}

	// Status wins over the errors list: an unauthorized gateway still sends
	// a GraphQL error body, and that must surface as a session problem, not
	// a rejection.
	if resp.Code == 401 {
		return errorx.New(errorx.Unauthenticated, "Session expired")
	}

	if msg := firstErrorMessage(body); msg != "" {
		return errorx.New(errorx.Rejected, msg)
	}

	if resp.Code >= 400 {
		return errorx.New(errorx.TransportFailed, "Got status code %d", resp.Code)
	}

	if out == nil {
		return nil
	}

	data, err := body.GetJSON("data")
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot read the data object: %v", err)
		return errorx.New(errorx.Internal, "Got an invalid response")
	}

	return decode(data, out)
}

// toVariables turns a tagged request struct into the variables object. An
// api.JSON passes through so operations can build variables by hand.
func toVariables(variables any) api.JSON {
	switch v := variables.(type) {
	case nil:
		return api.JSON{}
	case api.JSON:
		return v
	case map[string]any:
		return api.JSON(v)
	default:
		s := structs.New(variables)
		s.TagName = "json"
		return s.Map()
	}
}

// firstErrorMessage pulls the first message out of the GraphQL errors list.
// A present, non-empty list marks the whole operation rejected even when the
// transport status is 200.
func firstErrorMessage(body api.JSON) string {
	list, err := body.GetArray("errors")
	if err != nil || len(list) == 0 {
		return ""
	}

	if obj, ok := list[0].(map[string]any); ok {
		if msg, err := api.JSON(obj).GetString("message"); err == nil && msg != "" {
			return msg
		}
	}

	return "Request rejected"
}

func decode(data api.JSON, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     out,
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return err
	}

	return decoder.Decode(map[string]any(data))
}
