// Package rest talks to the chat platform's REST API on behalf of the dispatch layer.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"interaction-lab/domain"
	"interaction-lab/errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Platform error codes meaning the bot lacks access or permissions.
const (
	codeMissingAccess      = 50001
	codeMissingPermissions = 50013
)

// APIError is a non-2xx answer of the platform.
type APIError struct {
	Status     int     `json:"-"`
	Code       int     `json:"code"`
	Message    string  `json:"message"`
	RetryAfter float64 `json:"retry_after,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform api: status %d code %d: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) permission() bool {
	return e.Status == http.StatusForbidden || e.Code == codeMissingAccess || e.Code == codeMissingPermissions
}

// ApplicationCommand is the payload published for each command a view answers to.
type ApplicationCommand struct {
	Name        string                     `json:"name"`
	Type        domain.CommandType         `json:"type"`
	Description string                     `json:"description,omitempty"`
	Options     []ApplicationCommandOption `json:"options,omitempty"`
}

type ApplicationCommandOption struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Type         int    `json:"type"`
	Required     bool   `json:"required,omitempty"`
	Autocomplete bool   `json:"autocomplete,omitempty"`
}

type Client struct {
	log           *slog.Logger
	http          *http.Client
	baseURL       string
	applicationID string
	botToken      string
	limiter       *rate.Limiter
}

// NewClient paces every call with a token bucket of perSecond requests and burst.
func NewClient(log *slog.Logger, httpClient *http.Client, baseURL, applicationID, botToken string, perSecond float64, burst int) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		log:           log,
		http:          httpClient,
		baseURL:       strings.TrimRight(baseURL, "/"),
		applicationID: applicationID,
		botToken:      botToken,
		limiter:       rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// CreateResponse answers an interaction out of band, as the HTTP response would.
func (c *Client) CreateResponse(ctx context.Context, interactionID, token string, resp *domain.Response) error {
	path := fmt.Sprintf("/interactions/%s/%s/callback", url.PathEscape(interactionID), url.PathEscape(token))
	_, err := mapPermissionErrors(func() (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodPost, path, resp, nil, false)
	})
	return err
}

// EditOriginal replaces the message the interaction was answered with.
func (c *Client) EditOriginal(ctx context.Context, token string, data *domain.ResponseData) error {
	path := fmt.Sprintf("/webhooks/%s/%s/messages/@original", url.PathEscape(c.applicationID), url.PathEscape(token))
	_, err := mapPermissionErrors(func() (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodPatch, path, data, nil, false)
	})
	return err
}

func (c *Client) CreateFollowup(ctx context.Context, token string, data *domain.ResponseData) error {
	path := fmt.Sprintf("/webhooks/%s/%s", url.PathEscape(c.applicationID), url.PathEscape(token))
	_, err := mapPermissionErrors(func() (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodPost, path, data, nil, false)
	})
	return err
}

// CreateMessage posts to a channel as the bot and returns the message id.
func (c *Client) CreateMessage(ctx context.Context, channelID string, data *domain.ResponseData) (string, error) {
	path := fmt.Sprintf("/channels/%s/messages", url.PathEscape(channelID))
	return mapPermissionErrors(func() (string, error) {
		var created struct {
			ID string `json:"id"`
		}
		if err := c.do(ctx, http.MethodPost, path, data, &created, true); err != nil {
			return "", err
		}
		return created.ID, nil
	})
}

// SyncCommands overwrites the commands of a guild, or the global ones when guildID is empty.
func (c *Client) SyncCommands(ctx context.Context, guildID string, commands []ApplicationCommand) error {
	path := fmt.Sprintf("/applications/%s/commands", url.PathEscape(c.applicationID))
	if guildID != "" {
		path = fmt.Sprintf("/applications/%s/guilds/%s/commands", url.PathEscape(c.applicationID), url.PathEscape(guildID))
	}
	if commands == nil {
		commands = []ApplicationCommand{}
	}
	_, err := mapPermissionErrors(func() (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodPut, path, commands, nil, true)
	})
	return err
}

// mapPermissionErrors is the single place turning platform permission failures into
// errors.ErrMissingPermissions, so that handlers never inspect API errors themselves.
func mapPermissionErrors[T any](call func() (T, error)) (T, error) {
	v, err := call()
	var apiErr *APIError
	if stderrors.As(err, &apiErr) && apiErr.permission() {
		return v, fmt.Errorf("%w: %w", errors.ErrMissingPermissions, err)
	}
	return v, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, asBot bool) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrRateLimited, err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if asBot && c.botToken != "" {
		req.Header.Set("Authorization", "Bot "+c.botToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		c.log.Debug("Platform API call failed", "method", method, "status", resp.StatusCode, "code", apiErr.Code)
		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %w", errors.ErrRateLimited, apiErr)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return nil
}
