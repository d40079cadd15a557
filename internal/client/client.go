package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tahsinratul/life-client/internal/logging"
	"github.com/tahsinratul/life-client/internal/navigation"
	"github.com/tahsinratul/life-client/internal/telemetry"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// Options configures a Client.
type Options struct {
	// Base carries requests after authentication. Defaults to http.DefaultTransport.
	Base    http.RoundTripper
	Timeout time.Duration
	Logger  zerolog.Logger
	Metrics *telemetry.ClientMetrics
}

// Client pairs the authenticating http.Client with the typed SDK built on it.
type Client struct {
	httpClient *http.Client
	sdk        *sdk.Client
}

// New returns a client for baseURL that authenticates from session and
// redirects through nav.
func New(baseURL string, session Session, nav navigation.Navigator, opts Options) (*Client, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	transport := &Transport{
		Base:      opts.Base,
		Session:   session,
		Navigator: nav,
		Logger:    logging.Component(opts.Logger, "client"),
		Metrics:   opts.Metrics,
	}
	httpClient := &http.Client{Transport: transport, Timeout: opts.Timeout}

	backend, err := sdk.NewClient(baseURL, sdk.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	return &Client{httpClient: httpClient, sdk: backend}, nil
}

// HTTPClient is the authenticating client for callers that build their own requests.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// SDK is the typed backend client routed through this client.
func (c *Client) SDK() *sdk.Client {
	return c.sdk
}

// Request sends one backend call and decodes the JSON response into out.
// 401 and 403 responses have already triggered their side effects when the
// returned *sdk.HTTPError reaches the caller.
func (c *Client) Request(ctx context.Context, method, path string, in, out any) error {
	return c.sdk.Do(ctx, method, path, nil, in, out)
}
