package gapy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"google.golang.org/api/googleapi"
)

const defaultBaseURL = "https://www.googleapis.com/analytics/v3"

// service executes single calls against the Analytics REST surface and
// decodes the JSON document. It owns no retry, backoff or caching logic;
// backend failures propagate untouched as *googleapi.Error.
type service struct {
	http *http.Client
	base string
}

func (s *service) execute(ctx context.Context, path string, params url.Values, out any) error {
	u := s.base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Analytics API: %w", err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
