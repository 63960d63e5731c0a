package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileFetcher serves conversations from a local JSON export, in the same
// shape as the backend's conversation responses. Extraction runs fully
// offline against it.
type FileFetcher struct {
	refs          []ConversationRef
	conversations map[string]*Conversation
}

type exportEntry struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	UpdatedAt string `json:"updated_at"`
	Messages  []struct {
		Sender string `json:"sender"`
		Text   string `json:"text"`
	} `json:"chat_messages"`
}

// NewFileFetcher loads a conversations export file.
func NewFileFetcher(path string) (*FileFetcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	var entries []exportEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: parse export %s: %v", ErrMalformed, path, err)
	}

	f := &FileFetcher{conversations: make(map[string]*Conversation)}
	for _, e := range entries {
		if e.UUID == "" {
			continue
		}
		conv := &Conversation{ID: e.UUID, Title: e.Name}
		for _, m := range e.Messages {
			speaker := Speaker(m.Sender)
			if speaker != SpeakerHuman && speaker != SpeakerAssistant {
				continue
			}
			if m.Text == "" {
				continue
			}
			conv.Turns = append(conv.Turns, Turn{Speaker: speaker, Text: m.Text})
		}
		f.refs = append(f.refs, ConversationRef{ID: e.UUID, Title: e.Name})
		f.conversations[e.UUID] = conv
	}
	return f, nil
}

func (f *FileFetcher) ListConversations(context.Context) ([]ConversationRef, error) {
	return f.refs, nil
}

func (f *FileFetcher) GetConversation(_ context.Context, id string) (*Conversation, error) {
	conv, ok := f.conversations[id]
	if !ok {
		return nil, fmt.Errorf("%w: conversation %s not in export", ErrMalformed, id)
	}
	return conv, nil
}

var _ Fetcher = (*FileFetcher)(nil)
