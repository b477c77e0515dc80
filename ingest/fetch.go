package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// FetchRoster performs the one-shot roster download. There is no retry: a
// failed or non-200 fetch is fatal for the session and surfaces to the
// caller immediately.
func FetchRoster(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building roster request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching roster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching roster: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading roster response: %w", err)
	}
	return data, nil
}
