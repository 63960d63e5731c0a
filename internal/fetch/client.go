package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const sessionCookie = "sessionKey"

// Cookie is one ambient session cookie supplied by the hosting
// environment.
type Cookie struct {
	Name  string
	Value string
}

// ClientConfig configures the HTTP fetcher.
type ClientConfig struct {
	// BaseURL is the organizations endpoint root, without trailing slash.
	BaseURL string
	// OrgID scopes every request; required.
	OrgID string
	// Cookies must include the sessionKey cookie.
	Cookies []Cookie
	// Timeout bounds each request.
	Timeout time.Duration
	// RatePerSecond throttles requests out of politeness. Zero disables
	// the limiter.
	RatePerSecond float64
}

// Client fetches conversations over HTTP with cookie authentication.
type Client struct {
	baseURL    string
	orgID      string
	cookies    []Cookie
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a fetcher against the chat backend. Credential
// presence is validated per request, not here, so a client can be
// constructed before the session is known.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		orgID:      cfg.OrgID,
		cookies:    cfg.Cookies,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     logger,
	}
}

// CheckSession verifies the run-level preconditions: an organization id
// and the required session cookie.
func (c *Client) CheckSession() error {
	if c.orgID == "" {
		return fmt.Errorf("%w: no organization id", ErrAuth)
	}
	for _, ck := range c.cookies {
		if ck.Name == sessionCookie && ck.Value != "" {
			return nil
		}
	}
	return fmt.Errorf("%w: missing required cookie %q", ErrAuth, sessionCookie)
}

type listResponse struct {
	Items []ConversationRef `json:"items"`
}

// ListConversations fetches the conversation list, most recent first.
func (c *Client) ListConversations(ctx context.Context) ([]ConversationRef, error) {
	var resp listResponse
	if err := c.get(ctx, "chat_conversations", &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return nil, fmt.Errorf("%w: conversation list has no items", ErrMalformed)
	}
	return resp.Items, nil
}

type conversationResponse struct {
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	Messages []struct {
		Sender string `json:"sender"`
		Text   string `json:"text"`
	} `json:"chat_messages"`
}

// GetConversation fetches one conversation body. Turns with unknown
// speakers or empty text are dropped.
func (c *Client) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var resp conversationResponse
	if err := c.get(ctx, "chat_conversations/"+id, &resp); err != nil {
		return nil, err
	}
	if resp.Messages == nil {
		return nil, fmt.Errorf("%w: conversation %s has no chat_messages", ErrMalformed, id)
	}

	conv := &Conversation{ID: resp.UUID, Title: resp.Name}
	if conv.ID == "" {
		conv.ID = id
	}
	for _, m := range resp.Messages {
		speaker := Speaker(m.Sender)
		if speaker != SpeakerHuman && speaker != SpeakerAssistant {
			continue
		}
		if m.Text == "" {
			continue
		}
		conv.Turns = append(conv.Turns, Turn{Speaker: speaker, Text: m.Text})
	}
	return conv, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	if err := c.CheckSession(); err != nil {
		return err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	url := c.baseURL + "/" + c.orgID + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range c.cookies {
		if ck.Name == "" || ck.Value == "" {
			continue
		}
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}

	c.logger.Debug("fetching", zap.String("endpoint", endpoint))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: backend returned %s", ErrAuth, resp.Status)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: backend returned %s: %s", ErrNetwork, resp.Status, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrMalformed, endpoint, err)
	}
	return nil
}

var _ Fetcher = (*Client)(nil)
