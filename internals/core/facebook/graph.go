// Package facebook publishes to a Facebook page through the Graph API.
package facebook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var ErrNotConfigured = errors.New("facebook page not configured")

type Client struct {
	pageID    string
	pageToken string
	graphURL  string
	http      *http.Client
}

func NewClient(pageID, pageToken, graphURL string) *Client {
	return &Client{
		pageID:    pageID,
		pageToken: pageToken,
		graphURL:  strings.TrimRight(graphURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.pageID != "" && c.pageToken != ""
}

// PublishPhoto posts imageURL with caption to the page feed and returns the post id.
func (c *Client) PublishPhoto(ctx context.Context, imageURL, caption string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}

	form := url.Values{}
	form.Set("url", imageURL)
	form.Set("caption", caption)
	form.Set("access_token", c.pageToken)

	endpoint := fmt.Sprintf("%s/%s/photos", c.graphURL, url.PathEscape(c.pageID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build graph request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("graph request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read graph response: %w", err)
	}

	parsed := gjson.ParseBytes(raw)
	if resp.StatusCode != http.StatusOK || parsed.Get("error").Exists() {
		return "", fmt.Errorf("graph returned %d: %s", resp.StatusCode, parsed.Get("error.message").String())
	}

	if postID := parsed.Get("post_id").String(); postID != "" {
		return postID, nil
	}
	if id := parsed.Get("id").String(); id != "" {
		return id, nil
	}
	return "", errors.New("graph response carried no post id")
}
