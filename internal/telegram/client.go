// Package telegram is a minimal Telegram Bot API client covering the calls
// the gatekeeper consumes: member lookup, member removal, and message
// delivery. It does not reimplement platform semantics beyond that surface.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/degen8ball/tokengate/internal/domain"
)

const defaultBaseURL = "https://api.telegram.org"

// Client talks to the Telegram Bot API. Safe for concurrent use.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Bot API client. Calls are rate limited below the
// platform's documented ~30 requests/second bot-wide ceiling.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(25), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ domain.ChatService = (*Client)(nil)
	_ domain.AlertSender = (*Client)(nil)
)

// APIError is a non-ok response from the Bot API.
type APIError struct {
	Code        int
	Description string
	// RetryAfter is the server-requested backoff in seconds when rate
	// limited, zero otherwise. Surfaced for the caller's logs; nothing in
	// this process retries on it.
	RetryAfter int
}

func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("telegram api error %d: %s (retry after %ds)", e.Code, e.Description, e.RetryAfter)
	}
	return fmt.Sprintf("telegram api error %d: %s", e.Code, e.Description)
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Parameters  *apiParameters  `json:"parameters"`
	Result      json.RawMessage `json:"result"`
}

type apiParameters struct {
	RetryAfter int `json:"retry_after"`
}

type chatMember struct {
	Status string `json:"status"`
	User   struct {
		ID    int64 `json:"id"`
		IsBot bool  `json:"is_bot"`
	} `json:"user"`
}

// GetMember fetches the live membership state of a user in a chat.
func (c *Client) GetMember(ctx context.Context, chatID, userID string) (domain.MemberInfo, error) {
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return domain.MemberInfo{}, fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	result, err := c.call(ctx, "getChatMember", map[string]any{
		"chat_id": chatID,
		"user_id": uid,
	})
	if err != nil {
		return domain.MemberInfo{}, err
	}

	var member chatMember
	if err := json.Unmarshal(result, &member); err != nil {
		return domain.MemberInfo{}, fmt.Errorf("failed to decode chat member: %w", err)
	}

	return domain.MemberInfo{
		Status: domain.MemberStatus(member.Status),
		IsBot:  member.User.IsBot,
	}, nil
}

// RemoveMember bans a user from a chat. Banning an already-banned user is a
// no-op at the platform, which is what makes duplicate removals safe.
func (c *Client) RemoveMember(ctx context.Context, chatID, userID string) error {
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	_, err = c.call(ctx, "banChatMember", map[string]any{
		"chat_id": chatID,
		"user_id": uid,
	})
	return err
}

// SendMessage delivers a text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	_, err := c.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
	return err
}

func (c *Client) call(ctx context.Context, method string, params map[string]any) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s params: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	if !envelope.OK {
		apiErr := &APIError{Code: envelope.ErrorCode, Description: envelope.Description}
		if envelope.Parameters != nil {
			apiErr.RetryAfter = envelope.Parameters.RetryAfter
		}
		return nil, fmt.Errorf("%s: %w", method, apiErr)
	}

	return envelope.Result, nil
}
