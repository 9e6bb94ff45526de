// Package medium cross-posts blog posts to Medium.
package medium

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yourusername/flatblog/internal/post"
)

// DefaultAPIURL is Medium's v1 API root.
const DefaultAPIURL = "https://api.medium.com/v1"

// Publisher is an interface for publishing posts to Medium.
type Publisher interface {
	Publish(ctx context.Context, p post.Post) (string, error)
}

// Client is the HTTP implementation of Publisher.
type Client struct {
	token         string
	publishStatus string
	client        *http.Client
	apiURL        string
	logger        *slog.Logger
}

// User represents a Medium user account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Submission is the body of a create-post request.
type Submission struct {
	Title         string   `json:"title"`
	ContentFormat string   `json:"contentFormat"`
	Content       string   `json:"content"`
	Tags          []string `json:"tags,omitempty"`
	PublishStatus string   `json:"publishStatus"`
}

// NewPublisher creates a Medium client. An empty apiURL means DefaultAPIURL;
// publishStatus is "public", "draft" or "unlisted".
func NewPublisher(token, apiURL, publishStatus string) *Client {
	return NewPublisherWithLogger(token, apiURL, publishStatus, slog.Default())
}

// NewPublisherWithLogger creates a Medium client with a custom logger.
func NewPublisherWithLogger(token, apiURL, publishStatus string, logger *slog.Logger) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if publishStatus == "" {
		publishStatus = "draft"
	}
	return &Client{
		token:         token,
		publishStatus: publishStatus,
		client:        &http.Client{Timeout: 30 * time.Second},
		apiURL:        strings.TrimRight(apiURL, "/"),
		logger:        logger.With("component", "medium.publisher"),
	}
}

// Publish sends p to Medium as HTML and returns the URL of the new story.
func (c *Client) Publish(ctx context.Context, p post.Post) (string, error) {
	logger := c.logger.With(
		"slug", p.Slug,
		"content_length", len(p.Content),
		"publish_status", c.publishStatus,
	)
	logger.InfoContext(ctx, "Starting post publication to Medium")

	user, err := c.getUser(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to get Medium user", "error", err)
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	submission := Submission{
		Title:         p.Title,
		ContentFormat: "html",
		Content:       "<h1>" + html.EscapeString(p.Title) + "</h1>" + p.Content,
		PublishStatus: c.publishStatus,
	}

	url := fmt.Sprintf("%s/users/%s/posts", c.apiURL, user.ID)
	body, status, err := c.do(ctx, http.MethodPost, url, submission)
	if err != nil {
		logger.ErrorContext(ctx, "HTTP request failed", "error", err)
		return "", err
	}
	if status != http.StatusCreated {
		logger.ErrorContext(ctx, "Publication failed",
			"status_code", status,
			"response_body", string(body))
		return "", fmt.Errorf("failed to publish (status %d): %s", status, string(body))
	}

	var result struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		logger.ErrorContext(ctx, "Failed to unmarshal response", "error", err)
		return "", err
	}

	logger.InfoContext(ctx, "Successfully published post to Medium", "published_url", result.Data.URL)
	return result.Data.URL, nil
}

func (c *Client) getUser(ctx context.Context) (*User, error) {
	body, status, err := c.do(ctx, http.MethodGet, c.apiURL+"/me", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to get user (status %d): %s", status, string(body))
	}

	var result struct {
		Data User `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "Retrieved Medium user",
		"user_id", result.Data.ID,
		"username", result.Data.Username)
	return &result.Data, nil
}

// do sends an authenticated request with an optional JSON payload and
// returns the response body and status code.
func (c *Client) do(ctx context.Context, method, url string, payload any) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	c.logger.DebugContext(ctx, "Medium API call",
		"method", method,
		"url", url,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

var _ Publisher = &Client{}
