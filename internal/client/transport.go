// Package client is the authenticated request client every protected page
// and command uses to reach the backend. It attaches the current bearer
// credential and reacts to 401 and 403 responses centrally.
package client

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/tahsinratul/life-client/internal/logging"
	"github.com/tahsinratul/life-client/internal/navigation"
	"github.com/tahsinratul/life-client/internal/telemetry"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// Session is the part of the session holder the transport needs.
type Session interface {
	Current() *sdk.Identity
	SignOut(ctx context.Context) error
}

// Transport is an http.RoundTripper that authenticates outbound requests
// and turns authorization failures into navigation.
type Transport struct {
	Base      http.RoundTripper
	Session   Session
	Navigator navigation.Navigator
	Logger    zerolog.Logger
	Metrics   *telemetry.ClientMetrics
}

// RoundTrip implements http.RoundTripper. The caller's request is never
// modified and every response is returned unchanged.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	out := req.Clone(ctx)
	out.Header.Del("Authorization")

	identity := t.Session.Current()
	if identity.HasCredential() {
		token := &oauth2.Token{AccessToken: identity.AccessToken, TokenType: identity.TokenType}
		token.SetAuthHeader(out)
	}

	start := time.Now()
	resp, err := t.base().RoundTrip(out)
	if err != nil {
		t.Metrics.RecordRequest(ctx, req.Method, 0, msSince(start))
		return nil, err
	}
	t.Metrics.RecordRequest(ctx, req.Method, resp.StatusCode, msSince(start))

	switch resp.StatusCode {
	case http.StatusForbidden:
		t.forbidden(ctx, req)
	case http.StatusUnauthorized:
		t.unauthenticated(ctx, req)
	}
	return resp, nil
}

func (t *Transport) forbidden(ctx context.Context, req *http.Request) {
	from := navigation.LocationFromContext(ctx)
	t.Metrics.RecordForbidden(ctx)
	t.Logger.Info().
		Str(logging.FieldPath, req.URL.Path).
		Int(logging.FieldStatus, http.StatusForbidden).
		Msg("authorization denied; redirecting to forbidden view")
	t.navigate(ctx, navigation.RouteForbidden, from)
}

// unauthenticated signs the session out and sends the caller to sign in. A
// failed sign-out is logged and the redirect still happens.
func (t *Transport) unauthenticated(ctx context.Context, req *http.Request) {
	from := navigation.LocationFromContext(ctx)
	t.Metrics.RecordUnauthenticated(ctx)
	t.Logger.Info().
		Str(logging.FieldPath, req.URL.Path).
		Int(logging.FieldStatus, http.StatusUnauthorized).
		Msg("credential rejected; signing out")

	if err := t.Session.SignOut(context.WithoutCancel(ctx)); err != nil {
		t.Logger.Warn().Err(err).Msg("forced sign-out failed")
	}
	t.navigate(ctx, navigation.RouteLogin, from)
}

func (t *Transport) navigate(ctx context.Context, to, from string) {
	if t.Navigator != nil {
		t.Navigator.Navigate(ctx, to, from)
	}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
