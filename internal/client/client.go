// Package client provides the HTTP API client for the Mailbrief server and
// the progress reconciler used by UI frontends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raphaelgruber/mailbrief/internal/brief"
	"github.com/raphaelgruber/mailbrief/internal/models"
	"github.com/raphaelgruber/mailbrief/internal/service"
)

// Client is a JSON API client for the Mailbrief server.
type Client struct {
	baseURL    string
	userID     string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout. Research calls are slow; the default is
// ten minutes.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithToken sets the shared internal token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates an API client. An empty baseURL falls back to the local
// default. Server URL, timeout and token all come from config.Load at the
// call site; this package never reads the environment.
func New(baseURL, userID string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8484"
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userID:     userID,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError is the server's error envelope.
type apiError struct {
	Error string `json:"error"`
}

// do sends a JSON request and decodes the JSON response into result.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", c.userID)
	if c.token != "" {
		req.Header.Set("X-Internal-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var ae apiError
		if json.Unmarshal(respBody, &ae) == nil && ae.Error != "" {
			return fmt.Errorf("server error: %s - %s", resp.Status, ae.Error)
		}
		return fmt.Errorf("server error: %s - %s", resp.Status, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// AnalyzeResponse is the analyze endpoint's payload.
type AnalyzeResponse struct {
	ThreadID   string                 `json:"threadId"`
	AnalysisID string                 `json:"analysisId"`
	Analysis   *models.Analysis       `json:"analysis"`
	Todos      []models.Todo          `json:"todos"`
	Events     []models.CalendarEvent `json:"events"`
	Degraded   bool                   `json:"degraded"`
}

// Analyze submits a thread for structured extraction.
func (c *Client) Analyze(ctx context.Context, title, content string) (*AnalyzeResponse, error) {
	var resp AnalyzeResponse
	err := c.do(ctx, http.MethodPost, "/api/analyze", map[string]string{
		"title":   title,
		"content": content,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// IdentifyResponse mirrors the identify endpoint's payload.
type IdentifyResponse struct {
	Success bool               `json:"success"`
	Count   int                `json:"count"`
	Topics  []models.TopicView `json:"topics"`
}

// Identify fetches (or triggers identification of) the analysis' topics.
func (c *Client) Identify(ctx context.Context, analysisID, emailContent string) (*IdentifyResponse, error) {
	var resp IdentifyResponse
	err := c.do(ctx, http.MethodPost, "/api/research/identify", map[string]string{
		"analysisId":   analysisID,
		"emailContent": emailContent,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProcessResponse mirrors the process endpoint's payload.
type ProcessResponse struct {
	Success bool         `json:"success"`
	Result  *brief.Brief `json:"result"`
}

// Process runs the research workflow for one topic.
func (c *Client) Process(ctx context.Context, req service.ProcessRequest) (*ProcessResponse, error) {
	var resp ProcessResponse
	if err := c.do(ctx, http.MethodPost, "/api/research/process", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ThreadResearch returns the research summary for a thread, nil when the
// thread was never analyzed.
func (c *Client) ThreadResearch(ctx context.Context, threadID string) (*service.Summary, error) {
	var resp *service.Summary
	if err := c.do(ctx, http.MethodGet, "/api/research/"+url.PathEscape(threadID), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListTodos returns the user's todos.
func (c *Client) ListTodos(ctx context.Context) ([]models.Todo, error) {
	var todos []models.Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos/", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// CreateTodo creates a todo.
func (c *Client) CreateTodo(ctx context.Context, in models.TodoInput) (*models.Todo, error) {
	var todo models.Todo
	if err := c.do(ctx, http.MethodPost, "/api/todos/", in, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// SetTodoCompleted toggles a todo's completion state.
func (c *Client) SetTodoCompleted(ctx context.Context, id string, completed bool) (*models.Todo, error) {
	var todo models.Todo
	err := c.do(ctx, http.MethodPatch, "/api/todos/"+url.PathEscape(id),
		map[string]bool{"completed": completed}, &todo)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// DeleteTodo removes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/todos/"+url.PathEscape(id), nil, nil)
}

// ListEvents returns calendar events, optionally bounded by RFC 3339 times.
func (c *Client) ListEvents(ctx context.Context, from, to string) ([]models.CalendarEvent, error) {
	path := "/api/calendar-events/"
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var events []models.CalendarEvent
	if err := c.do(ctx, http.MethodGet, path, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CreateEvent creates a calendar event.
func (c *Client) CreateEvent(ctx context.Context, in models.EventInput) (*models.CalendarEvent, error) {
	var ev models.CalendarEvent
	if err := c.do(ctx, http.MethodPost, "/api/calendar-events/", in, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// DeleteEvent removes a calendar event.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/calendar-events/"+url.PathEscape(id), nil, nil)
}

// Stats returns the combined record-count and LLM-usage snapshot as raw JSON
// for display.
func (c *Client) Stats(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Watch subscribes to the research watch websocket for an analysis and
// invokes onSummary for every snapshot until the server closes the stream
// (all topics settled) or the context is cancelled.
func (c *Client) Watch(ctx context.Context, analysisID string, onSummary func(service.Summary) error) error {
	wsURL := strings.Replace(c.baseURL, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)
	wsURL += "/api/research/watch/" + url.PathEscape(analysisID)

	header := http.Header{}
	header.Set("X-User-ID", c.userID)
	if c.token != "" {
		header.Set("X-Internal-Token", c.token)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return fmt.Errorf("websocket connect: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var summary service.Summary
		if err := conn.ReadJSON(&summary); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read summary: %w", err)
		}
		if err := onSummary(summary); err != nil {
			return err
		}
	}
}
