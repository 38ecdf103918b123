package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultChartURL is the remote service that rasterizes DOT text to PNG.
const DefaultChartURL = "https://chart.apis.google.com/chart"

// ChartRenderer renders DOT text to a PNG via a remote chart service.
type ChartRenderer struct {
	url        string
	httpClient *http.Client
}

// NewChartRenderer creates a renderer posting to the given endpoint; an
// empty endpoint uses DefaultChartURL.
func NewChartRenderer(endpoint string) *ChartRenderer {
	if endpoint == "" {
		endpoint = DefaultChartURL
	}
	return &ChartRenderer{url: endpoint, httpClient: &http.Client{}}
}

// Render posts the digraph text and returns the PNG bytes.
func (r *ChartRenderer) Render(ctx context.Context, dot string) ([]byte, error) {
	form := url.Values{}
	form.Set("cht", "gv")
	form.Set("chl", dot)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading chart response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("chart service HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
