package apiclient

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/homestay/homestay-client/internal/pkg/metrics"
)

const (
	LoginPath    = "/auth/login"
	RegisterPath = "/auth/register"
	RefreshPath  = "/auth/refresh"

	refreshTimeout = 15 * time.Second
)

var errEmptyAccessToken = errors.New("refresh returned no access token")

// Tokens is the token pair issued by login, register and refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

func isAuthEndpoint(path string) bool {
	p := "/" + strings.Trim(strings.SplitN(path, "?", 2)[0], "/")
	return p == LoginPath || p == RegisterPath || p == RefreshPath
}

// refresh obtains a new access token. stale is the token the failed request
// carried; when the session already holds a different one, another caller has
// refreshed in the meantime and the replay can go ahead directly. Concurrent
// callers share a single in-flight refresh call. The shared call is detached
// from ctx, so one caller giving up does not fail the others; that caller
// gets its own ctx error back.
func (c *Client) refresh(ctx context.Context, stale string) error {
	if current := c.session.AccessToken(); current != "" && current != stale {
		return nil
	}

	ch := c.refreshes.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return nil, c.doRefresh(rctx)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) doRefresh(ctx context.Context) error {
	var tokens Tokens
	_, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   RefreshPath,
		Body:   refreshRequest{RefreshToken: c.session.RefreshToken()},
	}, &tokens)
	if err != nil {
		metrics.ObserveRefresh("failed")
		return err
	}
	if tokens.AccessToken == "" {
		metrics.ObserveRefresh("failed")
		return errEmptyAccessToken
	}

	c.session.SetTokens(tokens.AccessToken, tokens.RefreshToken)
	metrics.ObserveRefresh("ok")
	c.log.Debug().Msg("Access token refreshed")
	return nil
}
