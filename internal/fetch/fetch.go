// Package fetch retrieves conversation lists and bodies from the chat
// site's private JSON endpoints, or from a local export file.
package fetch

import (
	"context"
	"errors"
	"time"
)

// Speaker identifies the author of a conversation turn.
type Speaker string

const (
	SpeakerHuman     Speaker = "human"
	SpeakerAssistant Speaker = "assistant"
)

// ConversationRef is a list entry: enough to fetch the full body later.
type ConversationRef struct {
	ID        string    `json:"uuid"`
	Title     string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Turn is one message in a conversation.
type Turn struct {
	Speaker Speaker `json:"sender"`
	Text    string  `json:"text"`
}

// Conversation is a full conversation body with ordered turns.
type Conversation struct {
	ID    string
	Title string
	Turns []Turn
}

// Fetcher retrieves conversations from an external source.
type Fetcher interface {
	// ListConversations returns the available conversations, most
	// recent first.
	ListConversations(ctx context.Context) ([]ConversationRef, error)

	// GetConversation returns the full body for one conversation.
	GetConversation(ctx context.Context, id string) (*Conversation, error)
}

// Error taxonomy. Callers classify with errors.Is: auth failures are
// terminal preconditions, network failures are transient and retryable,
// malformed responses skip the affected item.
var (
	ErrAuth      = errors.New("session credentials missing or rejected")
	ErrNetwork   = errors.New("network failure")
	ErrMalformed = errors.New("malformed response")
)
