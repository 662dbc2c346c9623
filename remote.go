package tld

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Get returns the body of the response for the given url
// by making an HTTP GET request.
func Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"unexpected status [%s] from [%s]",
			resp.Status, url,
		)
	}

	return io.ReadAll(resp.Body)
}
