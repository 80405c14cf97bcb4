// Package client is a thin HTTP client for the winremote API, used by the
// CLI subcommands that talk to a running server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dddabtc/winremote-mcp/internal/errors"
	"github.com/dddabtc/winremote-mcp/internal/taskgate"
)

// Client talks to a winremote server.
type Client struct {
	baseURL string
	authKey string
	http    *http.Client
}

// New creates a Client for the given base URL, e.g. "http://127.0.0.1:8090".
// The client timeout is generous because a submit blocks until the tool
// finishes.
func New(baseURL, authKey string) *Client {
	return &Client{
		baseURL: baseURL,
		authKey: authKey,
		http:    &http.Client{Timeout: 10 * time.Minute},
	}
}

// Health reports the server's version string, or an error if it is not
// reachable.
func (c *Client) Health(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(body, "version").String(), nil
}

// Submit runs a tool by name and returns its outcome. Tool failures come
// back inside the Outcome, not as an error.
func (c *Client) Submit(ctx context.Context, tool string, args map[string]any) (taskgate.Outcome, error) {
	req, err := sjson.Set("", "tool", tool)
	if err != nil {
		return taskgate.Outcome{}, err
	}
	if len(args) > 0 {
		if req, err = sjson.Set(req, "args", args); err != nil {
			return taskgate.Outcome{}, err
		}
	}
	body, err := c.do(ctx, http.MethodPost, "/v1/tasks", []byte(req))
	if err != nil {
		return taskgate.Outcome{}, err
	}
	var out taskgate.Outcome
	if err := json.Unmarshal(body, &out); err != nil {
		return taskgate.Outcome{}, fmt.Errorf("decode outcome: %w", err)
	}
	return out, nil
}

// Task fetches a single task record by id.
func (c *Client) Task(ctx context.Context, id string) (taskgate.Record, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/tasks/"+id, nil)
	if err != nil {
		return taskgate.Record{}, err
	}
	var rec taskgate.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return taskgate.Record{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// Tasks fetches the task history, or only active tasks when active is set.
func (c *Client) Tasks(ctx context.Context, active bool) ([]taskgate.Record, error) {
	path := "/v1/tasks"
	if active {
		path += "?state=active"
	}
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Tasks []taskgate.Record `json:"tasks"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return resp.Tasks, nil
}

// ToolInfo describes one tool enabled on the server.
type ToolInfo struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Tier        string `json:"tier"`
	Description string `json:"description"`
}

// Tools lists the tools enabled on the server.
func (c *Client) Tools(ctx context.Context) ([]ToolInfo, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/tools", nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Tools []ToolInfo `json:"tools"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode tools: %w", err)
	}
	return resp.Tools, nil
}

// Cancel requests cancellation of a task.
func (c *Client) Cancel(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPost, "/v1/tasks/"+id+"/cancel", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authKey != "" {
		req.Header.Set("X-Auth-Key", c.authKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		msg := gjson.GetBytes(data, "error").String()
		if msg == "" {
			msg = resp.Status
		}
		return nil, c.statusError(resp.StatusCode, msg)
	}
	return data, nil
}

// statusError maps well-known HTTP statuses back onto the package's
// sentinel errors so callers can test with errors.Is.
func (c *Client) statusError(status int, msg string) error {
	switch status {
	case http.StatusNotFound:
		return errors.Wrap(errors.ErrTaskNotFound, msg)
	case http.StatusConflict:
		return errors.Wrap(errors.ErrAlreadyTerminal, msg)
	case http.StatusUnauthorized:
		return errors.Wrap(errors.ErrUnauthorized, msg)
	case http.StatusForbidden:
		return errors.Wrap(errors.ErrForbidden, msg)
	default:
		return fmt.Errorf("server error (%d): %s", status, msg)
	}
}
