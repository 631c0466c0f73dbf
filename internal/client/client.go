// Package client is a typed REST client for the habits API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"habits/internal/domain"
)

// ErrUnexpectedFormat is returned when the habit list is neither an array
// nor an object with a "habits" array.
var ErrUnexpectedFormat = errors.New("unexpected habits data format from API")

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Request failed with status code %d", e.StatusCode)
}

// Client talks to the habits API under a base URL such as
// "http://localhost:8080/api". It sends no authentication.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client. A zero timeout means no client-side timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// ListHabits fetches all habits.
func (c *Client) ListHabits(ctx context.Context) ([]domain.Habit, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/habits", nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeHabitList(raw)
}

// SearchHabits fetches habits whose name contains name.
func (c *Client) SearchHabits(ctx context.Context, name string) ([]domain.Habit, error) {
	var raw json.RawMessage
	q := url.Values{"name": {name}}
	if err := c.do(ctx, http.MethodGet, "/habits/search", q, nil, &raw); err != nil {
		return nil, err
	}
	return decodeHabitList(raw)
}

// GetHabit fetches a single habit.
func (c *Client) GetHabit(ctx context.Context, id string) (*domain.Habit, error) {
	var h domain.Habit
	if err := c.do(ctx, http.MethodGet, "/habits/"+url.PathEscape(id), nil, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// CreateHabit posts {name, description, targetFrequency}.
func (c *Client) CreateHabit(ctx context.Context, in domain.HabitInput) (*domain.Habit, error) {
	var h domain.Habit
	if err := c.do(ctx, http.MethodPost, "/habits", nil, in, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// UpdateHabit replaces the editable fields of a habit.
func (c *Client) UpdateHabit(ctx context.Context, id string, in domain.HabitInput) (*domain.Habit, error) {
	var h domain.Habit
	if err := c.do(ctx, http.MethodPut, "/habits/"+url.PathEscape(id), nil, in, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// DeleteHabit deletes a habit. Any 2xx response means it was removed.
func (c *Client) DeleteHabit(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/habits/"+url.PathEscape(id), nil, nil, nil)
}

// AddEntry sends date, completed and notes as query parameters and returns
// the server's merged habit.
func (c *Client) AddEntry(ctx context.Context, id, date string, completed bool, notes string) (*domain.Habit, error) {
	q := url.Values{
		"date":      {date},
		"completed": {strconv.FormatBool(completed)},
		"notes":     {notes},
	}
	var h domain.Habit
	if err := c.do(ctx, http.MethodPost, "/habits/"+url.PathEscape(id)+"/entries", q, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrUnexpectedFormat
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeHabitList accepts a bare array or {"habits": [...]}.
func decodeHabitList(raw json.RawMessage) ([]domain.Habit, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrUnexpectedFormat
	}
	switch trimmed[0] {
	case '[':
		var habits []domain.Habit
		if err := json.Unmarshal(trimmed, &habits); err != nil {
			return nil, fmt.Errorf("decode habits: %w", err)
		}
		if habits == nil {
			habits = []domain.Habit{}
		}
		return habits, nil
	case '{':
		var wrapped struct {
			Habits json.RawMessage `json:"habits"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("decode habits: %w", err)
		}
		inner := bytes.TrimSpace(wrapped.Habits)
		if len(inner) == 0 || inner[0] != '[' {
			return nil, ErrUnexpectedFormat
		}
		return decodeHabitList(inner)
	default:
		return nil, ErrUnexpectedFormat
	}
}
