// Package ingest posts transcript batches to a running ragstore
// service. Transcript fetching is left to external tooling; this
// package only reads prepared text and drives the upsert endpoint.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/embercloud/ragstore/internal/server"
	"github.com/embercloud/ragstore/internal/vector"
)

const defaultTimeout = 60 * time.Second

// Client talks to a ragstore HTTP endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL. A trailing slash
// is stripped so paths join cleanly.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Upsert posts a batch of texts to the given namespace and returns the
// number of items the service wrote. Blank texts are dropped before
// sending.
func (c *Client) Upsert(ctx context.Context, namespace string, texts []string) (int, error) {
	items := make([]vector.Item, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		items = append(items, vector.Item{Text: t})
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("no non-empty texts to upsert")
	}

	body, err := json.Marshal(server.UpsertRequest{Namespace: namespace, Items: items})
	if err != nil {
		return 0, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upsert", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("posting upsert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("upsert failed: %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	var result server.UpsertResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decoding response: %w", err)
	}
	return result.Upserted, nil
}

// ReadTexts reads one text per path. "-" reads from stdin. Unreadable
// files return an error rather than being skipped silently.
func ReadTexts(paths []string) ([]string, error) {
	texts := make([]string, 0, len(paths))
	for _, path := range paths {
		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		texts = append(texts, string(data))
	}
	return texts, nil
}

// ExtractVideoID pulls a video id from a YouTube watch or short URL.
// Anything unrecognized is returned as-is and treated as an id.
func ExtractVideoID(url string) string {
	if i := strings.Index(url, "v="); i >= 0 {
		id := url[i+2:]
		if j := strings.Index(id, "&"); j >= 0 {
			id = id[:j]
		}
		return id
	}
	if i := strings.Index(url, "youtu.be/"); i >= 0 {
		id := url[i+len("youtu.be/"):]
		if j := strings.Index(id, "?"); j >= 0 {
			id = id[:j]
		}
		return id
	}
	return url
}
