// Package storyclient is a typed HTTP client for the story API. It carries
// an explicit Session instead of reading ambient current-user state, and it
// decodes the one fixed response schema the server emits.
package storyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Story is the annotated story shape returned by the listing endpoints
type Story struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	ImageURL  string    `json:"image_url"`
	Text      string    `json:"text,omitempty"`
	ViewerIDs []string  `json:"viewer_ids"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	UserImg   string    `json:"user_img,omitempty"`
}

// ViewedBy reports whether the viewer already appears in the viewer set
func (s Story) ViewedBy(viewerID string) bool {
	for _, id := range s.ViewerIDs {
		if id == viewerID {
			return true
		}
	}
	return false
}

// CreateStoryRequest is the request body for creating a story
type CreateStoryRequest struct {
	ImageURL      string `json:"image_url"`
	Text          string `json:"text,omitempty"`
	DurationHours int    `json:"duration_hours,omitempty"`
}

// Session identifies the local viewer. Constructed once at sign-in and
// passed to the client and playback controller explicitly.
type Session struct {
	UserID string
	Token  string
}

// APIError is a non-2xx response from the story API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("story api: %d %s", e.StatusCode, e.Message)
}

// Client talks to the story API over HTTP
type Client struct {
	baseURL    string
	session    Session
	httpClient *http.Client
}

// New creates a Client rooted at baseURL (e.g. "https://host/api")
// authenticating as the given session.
func New(baseURL string, session Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, session: session, httpClient: httpClient}
}

// Session returns the session the client was constructed with
func (c *Client) Session() Session {
	return c.session
}

// FetchStories retrieves all active stories in feed order (newest first)
func (c *Client) FetchStories(ctx context.Context) ([]Story, error) {
	var stories []Story
	if err := c.do(ctx, http.MethodGet, "/stories", nil, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// FetchUserStories retrieves one user's active stories
func (c *Client) FetchUserStories(ctx context.Context, userID string) ([]Story, error) {
	var stories []Story
	if err := c.do(ctx, http.MethodGet, "/stories/user/"+userID, nil, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// CreateStory posts a new story and returns it as created by the server
func (c *Client) CreateStory(ctx context.Context, req CreateStoryRequest) (*Story, error) {
	var story Story
	if err := c.do(ctx, http.MethodPost, "/stories", req, &story); err != nil {
		return nil, err
	}
	return &story, nil
}

// MarkViewed records the local viewer's view of a story. Self-views and
// repeat views succeed as no-ops server-side.
func (c *Client) MarkViewed(ctx context.Context, storyID string) error {
	return c.do(ctx, http.MethodPost, "/stories/"+storyID+"/view", nil, nil)
}

// DeleteStory deletes one of the local viewer's own stories
func (c *Client) DeleteStory(ctx context.Context, storyID string) error {
	return c.do(ctx, http.MethodDelete, "/stories/"+storyID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil {
			apiErr.Message = errBody.Message
		}
		return apiErr
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
