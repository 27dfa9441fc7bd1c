package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/tidwall/gjson"
)

const maxResponseBytes = 8 << 20

// yearPattern finds a plausible milestone year in market question text.
var yearPattern = regexp.MustCompile(`\b(202[5-9]|20[3-9]\d|21\d\d)\b`)

// getJSON performs a GET request and returns the parsed JSON body.
func getJSON(ctx context.Context, client *http.Client, base, path string, params url.Values) (gjson.Result, error) {
	endpoint := base + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "aioracle/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, endpoint)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("invalid JSON from %s", endpoint)
	}

	return gjson.ParseBytes(body), nil
}

// yearInQuestion returns the first milestone year mentioned in text.
func yearInQuestion(text string) (int, bool) {
	m := yearPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func newHTTPClient(cfg ConnectorConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}
