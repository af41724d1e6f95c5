package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNotFound reports that a library has no file for a nuclide. It is never
// retried.
var ErrNotFound = errors.New("not found")

// Fetcher retrieves the raw reaction file of a nuclide from a named library.
type Fetcher interface {
	Fetch(ctx context.Context, library, nuclide string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, library, nuclide string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, library, nuclide string) ([]byte, error) {
	return f(ctx, library, nuclide)
}

// DefaultURLTemplates maps library keywords to download URLs. "{nuclide}" is
// replaced by the nuclide id.
var DefaultURLTemplates = map[string]string{
	"tendl-21":   "https://raw.githubusercontent.com/fusion-neutronics/cross_section_data_tendl_2021/refs/heads/main/tendl_2021/{nuclide}.json",
	"fendl-3.2c": "https://raw.githubusercontent.com/fusion-neutronics/cross_section_data_fendl_3.2c/refs/heads/main/fendl_3.2c/{nuclide}.json",
}

// HTTPFetcher downloads reaction files over HTTP. Deadlines come from the
// request context.
type HTTPFetcher struct {
	Client    *http.Client
	Templates map[string]string
}

// NewHTTPFetcher returns a fetcher using DefaultURLTemplates.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: http.DefaultClient, Templates: DefaultURLTemplates}
}

// URL returns the download location of a nuclide in a library.
func (f *HTTPFetcher) URL(library, nuclide string) (string, error) {
	tmpl, ok := f.Templates[library]
	if !ok {
		return "", fmt.Errorf("no URL template for library %q: %w", library, ErrNotFound)
	}
	return strings.ReplaceAll(tmpl, "{nuclide}", nuclide), nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, library, nuclide string) ([]byte, error) {
	url, err := f.URL(library, nuclide)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s has no %s (HTTP 404, %s): %w", library, nuclide, url, ErrNotFound)
	default:
		return nil, fmt.Errorf("unexpected HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}
