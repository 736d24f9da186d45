// Package intervals is a read-only client for the intervals.icu API as exposed
// through the edge-worker proxy.
package intervals

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://intervals-icu-proxy.workers.dev"
	apiPrefix      = "/proxy/api/v1"
	dateLayout     = "2006-01-02"

	WellnessDays = 7
	ActivityDays = 30
)

// ErrMissingAthleteID is returned before any request when the athlete ID is blank
var ErrMissingAthleteID = errors.New("athlete ID required")

// RemoteAPIError is returned for any non-2xx answer from the proxy
type RemoteAPIError struct {
	StatusCode int
	Body       string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	http    *http.Client
	baseURL *url.URL
	apiKey  string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.baseURL = u
		}
	}
}

func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("apiKey required")
	}
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		http:    http.DefaultClient,
		baseURL: u,
		apiKey:  apiKey,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) newReq(ctx context.Context, p string, q map[string]string) (*http.Request, error) {
	u := *c.baseURL
	u.Path = path.Join(u.Path, apiPrefix, p)
	qq := u.Query()
	for k, v := range q {
		qq.Set(k, v)
	}
	u.RawQuery = qq.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// get returns the raw body of a 2xx response
func (c *Client) get(ctx context.Context, p string, q map[string]string) ([]byte, error) {
	req, err := c.newReq(ctx, p, q)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", p, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteAPIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// getList decodes a JSON array body. Any other 2xx body shape yields an empty list.
func getList[T any](ctx context.Context, c *Client, p string, q map[string]string) ([]T, error) {
	body, err := c.get(ctx, p, q)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// GetAthlete fetches the athlete profile including current CTL/ATL/TSB
func (c *Client) GetAthlete(ctx context.Context, athleteID string) (*Athlete, error) {
	p, err := athletePath(athleteID)
	if err != nil {
		return nil, err
	}
	body, err := c.get(ctx, p, nil)
	if err != nil {
		return nil, err
	}
	var a Athlete
	if err := json.Unmarshal(body, &a); err != nil {
		return nil, fmt.Errorf("decode athlete: %w", err)
	}
	return &a, nil
}

// GetWellness returns the daily wellness records between oldest and newest, inclusive
func (c *Client) GetWellness(ctx context.Context, athleteID string, oldest, newest time.Time) ([]Wellness, error) {
	p, err := athletePath(athleteID)
	if err != nil {
		return nil, err
	}
	return getList[Wellness](ctx, c, p+"/wellness", dateRange(oldest, newest))
}

// GetActivities returns the completed activities between oldest and newest, inclusive
func (c *Client) GetActivities(ctx context.Context, athleteID string, oldest, newest time.Time) ([]Activity, error) {
	p, err := athletePath(athleteID)
	if err != nil {
		return nil, err
	}
	return getList[Activity](ctx, c, p+"/activities", dateRange(oldest, newest))
}

// athletePath guards against path.Join collapsing a blank ID onto /athlete
func athletePath(athleteID string) (string, error) {
	if strings.TrimSpace(athleteID) == "" {
		return "", ErrMissingAthleteID
	}
	return "/athlete/" + athleteID, nil
}

func dateRange(oldest, newest time.Time) map[string]string {
	return map[string]string{
		"oldest": FormatDate(oldest),
		"newest": FormatDate(newest),
	}
}

// FormatDate renders t as a UTC calendar date
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// WellnessWindow is the trailing week ending at now
func WellnessWindow(now time.Time) (oldest, newest time.Time) {
	return now.Add(-WellnessDays * 24 * time.Hour), now
}

// ActivityWindow is the trailing 30 days ending at now
func ActivityWindow(now time.Time) (oldest, newest time.Time) {
	return now.Add(-ActivityDays * 24 * time.Hour), now
}
