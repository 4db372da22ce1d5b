// Package session is the client-side counterpart of the authentication API:
// it performs signup/login, keeps the issued token and user snapshot in a
// durable Store, attaches the bearer token to outgoing requests, and exposes
// the authentication state explicitly instead of through package globals.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// ErrNotAuthenticated is returned by Do when no token is stored.
var ErrNotAuthenticated = errors.New("authentication required")

// User is the account snapshot returned at login.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Snapshot is the authentication state delivered to subscribers. A zero
// Token means logged out.
type Snapshot struct {
	Token string
	User  *User
}

// APIError carries a server-reported failure. The message is surfaced
// verbatim from the server's error envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Client talks to the subscription API on behalf of one user session.
// Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	store   Store

	mu   sync.Mutex
	subs []chan Snapshot
}

// NewClient returns a Client rooted at baseURL (e.g. "http://localhost:5000").
// Pass a nil httpClient to use http.DefaultClient.
func NewClient(baseURL string, store Store, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		store:   store,
	}
}

// Signup registers a new account. It does not log in.
func (c *Client) Signup(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.request(ctx, http.MethodPost, "/api/auth/signup", "", body, nil)
}

// Login authenticates and persists the token and user snapshot.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var resp struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}

	body := map[string]string{"username": username, "password": password}
	if err := c.request(ctx, http.MethodPost, "/api/auth/login", "", body, &resp); err != nil {
		return nil, err
	}

	rawUser, err := json.Marshal(resp.User)
	if err != nil {
		return nil, fmt.Errorf("encode user snapshot: %w", err)
	}
	if err := c.store.Set(tokenKey, resp.Token); err != nil {
		return nil, err
	}
	if err := c.store.Set(userKey, string(rawUser)); err != nil {
		return nil, err
	}

	c.notify(Snapshot{Token: resp.Token, User: &resp.User})
	return &resp.User, nil
}

// Logout discards the stored token and snapshot. The server keeps no session
// state, so this is purely client-side; the token stays valid until expiry.
func (c *Client) Logout() error {
	if err := c.store.Delete(tokenKey); err != nil {
		return err
	}
	if err := c.store.Delete(userKey); err != nil {
		return err
	}
	c.notify(Snapshot{})
	return nil
}

// CurrentUser returns the stored user snapshot, or nil when logged out.
func (c *Client) CurrentUser() *User {
	raw, ok, err := c.store.Get(userKey)
	if err != nil || !ok {
		return nil
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	return &u
}

// IsAuthenticated reports whether a token is stored.
func (c *Client) IsAuthenticated() bool {
	_, ok, err := c.store.Get(tokenKey)
	return err == nil && ok
}

// IsAdmin reports whether the stored snapshot carries the admin flag. This
// reflects the state at login; the server re-checks on every admin request.
func (c *Client) IsAdmin() bool {
	u := c.CurrentUser()
	return u != nil && u.IsAdmin
}

// Do performs an authenticated request against path (e.g. "/api/user") and
// decodes the JSON response into out (pass nil to discard).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	token, ok, err := c.store.Get(tokenKey)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthenticated
	}
	return c.request(ctx, method, path, token, body, out)
}

// Subscribe returns a channel receiving an authentication snapshot after
// every login and logout. Slow consumers miss intermediate states rather
// than block the client.
func (c *Client) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}

func (c *Client) notify(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			// drop stale state, replace with the latest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (c *Client) request(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope struct {
			Error string `json:"error"`
		}
		msg := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
