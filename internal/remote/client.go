package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"academy-booking-client/config"
)

// TokenSource supplies the current access token for authenticated calls.
// An empty token means the request goes out without an Authorization header.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// APIError is a non-2xx response from the remote service. Fields carries the
// decoded response body so server-side validation messages can be surfaced
// to the user verbatim.
type APIError struct {
	Status int
	Fields map[string]any
}

func (e *APIError) Error() string {
	if msg, ok := e.Fields["error"].(string); ok {
		return fmt.Sprintf("remote service returned %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("remote service returned %d", e.Status)
}

// Client talks to the academy booking API.
type Client struct {
	cfg     *config.RemoteConfig
	client  *http.Client
	limiter *rate.Limiter
	tokens  TokenSource
}

// NewClient creates a client for the configured remote service.
func NewClient(cfg *config.RemoteConfig, tokens TokenSource) *Client {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Client will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst),
		tokens:  tokens,
	}
}

// do performs a JSON request against the remote service. A non-2xx status
// is returned as *APIError. out may be nil when the body is not needed.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, authed bool) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request payload: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.BaseURL, "/")+path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.cfg.Headers {
		req.Header.Set(key, value)
	}
	if authed {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to read access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Fields: map[string]any{}}
		if len(respBody) > 0 {
			if err := json.Unmarshal(respBody, &apiErr.Fields); err != nil {
				apiErr.Fields = map[string]any{"error": strings.TrimSpace(string(respBody))}
			}
		}
		return resp.StatusCode, apiErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// IssueToken exchanges credentials for an access/refresh token pair.
func (c *Client) IssueToken(ctx context.Context, username, password string) (TokenPair, error) {
	var pair TokenPair
	payload := map[string]string{"username": username, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/api/token/", payload, &pair, false); err != nil {
		return TokenPair{}, err
	}
	if pair.Access == "" || pair.Refresh == "" {
		return TokenPair{}, fmt.Errorf("token response missing access or refresh token")
	}
	return pair, nil
}

// RefreshToken obtains a new access token. Any non-200 response or an empty
// access token is an error.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (string, error) {
	var resp struct {
		Access string `json:"access"`
	}
	status, err := c.do(ctx, http.MethodPost, "/api/token/refresh/", map[string]string{"refresh": refresh}, &resp, false)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || resp.Access == "" {
		return "", fmt.Errorf("token refresh returned status %d without a new access token", status)
	}
	return resp.Access, nil
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	payload := map[string]string{"username": username, "password": password}
	_, err := c.do(ctx, http.MethodPost, "/api/user/register/", payload, nil, false)
	return err
}

// TrackLogin reports a login to the service. Callers treat failures as
// best-effort.
func (c *Client) TrackLogin(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/user/login/track/", nil, nil, true)
	return err
}

// FetchProfile returns the user profile with the raw order flags.
func (c *Client) FetchProfile(ctx context.Context) (Profile, error) {
	var profile Profile
	_, err := c.do(ctx, http.MethodGet, "/api/user/profile/", nil, &profile, true)
	return profile, err
}

// FetchStudyHours returns the available study-hour credit.
func (c *Client) FetchStudyHours(ctx context.Context) (int, error) {
	var resp struct {
		StudyHours int `json:"study_hours"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/api/user/study_hours/", nil, &resp, true); err != nil {
		return 0, err
	}
	return resp.StudyHours, nil
}

// ListReservations returns the full visible reservation list.
func (c *Client) ListReservations(ctx context.Context) ([]Reservation, error) {
	var reservations []Reservation
	if _, err := c.do(ctx, http.MethodGet, "/api/reservations/", nil, &reservations, true); err != nil {
		return nil, err
	}
	return reservations, nil
}

// CreateReservation books a slot.
func (c *Client) CreateReservation(ctx context.Context, start, end string) error {
	payload := map[string]string{"start_time": start, "end_time": end}
	_, err := c.do(ctx, http.MethodPost, "/api/reservation/create/", payload, nil, true)
	return err
}

// DeleteReservation removes a reservation by id.
func (c *Client) DeleteReservation(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/reservation/%d/", id), nil, nil, true)
	return err
}

// HideRejected asks the service to hide all rejected reservations.
func (c *Client) HideRejected(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/reservations/hide_rejected/", nil, nil, true)
	return err
}

// CreateOrder submits a study-hour purchase. The service answers 201 on
// success.
func (c *Client) CreateOrder(ctx context.Context, order HourOrder) error {
	status, err := c.do(ctx, http.MethodPost, "/api/order/create/", order, nil, true)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("order submission returned unexpected status %d", status)
	}
	return nil
}

// UpdateOrder submits an hour top-up for the pending order.
func (c *Client) UpdateOrder(ctx context.Context, hours int) error {
	_, err := c.do(ctx, http.MethodPost, "/api/order/update/", map[string]int{"hours": hours}, nil, true)
	return err
}
