// Package gapy is a convenience client for the Google Analytics reporting
// and management APIs (v3). It authenticates via a service-account private
// key or an installed-application OAuth flow and exposes two sub-clients:
// one for account/webproperty/profile/segment metadata and one for report
// queries against the core reporting and multi-channel funnels endpoints.
package gapy

import (
	"net/http"
	"net/url"
)

// Hook is called with the final assembled query parameters immediately
// before each report query is executed. It exists for instrumentation only:
// the return value is ignored and the hook must not mutate the values.
type Hook func(params url.Values)

// Client is an authorized handle on the Analytics API. Use FromPrivateKey
// or FromSecretsFile to construct one with credentials; NewClient wraps an
// already-authorized HTTP client.
type Client struct {
	service *service
	hook    Hook
}

// NewClient wraps an already-authorized HTTP client. A nil hook installs a
// no-op.
func NewClient(httpClient *http.Client, hook Hook) *Client {
	if hook == nil {
		hook = func(url.Values) {}
	}
	return &Client{
		service: &service{http: httpClient, base: defaultBaseURL},
		hook:    hook,
	}
}

// Management returns the sub-client for account, web property, profile and
// segment metadata.
func (c *Client) Management() *ManagementClient {
	return &ManagementClient{service: c.service}
}

// Query returns the sub-client for report queries.
func (c *Client) Query() *QueryClient {
	return &QueryClient{service: c.service, hook: c.hook}
}
