package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sessionCookies() []Cookie {
	return []Cookie{{Name: "sessionKey", Value: "sk-test"}, {Name: "other", Value: "x"}}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{
		BaseURL: srv.URL,
		OrgID:   "org-1",
		Cookies: sessionCookies(),
	}, zap.NewNop())
}

func TestListConversations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/org-1/chat_conversations", r.URL.Path)
		cookie, err := r.Cookie("sessionKey")
		require.NoError(t, err)
		assert.Equal(t, "sk-test", cookie.Value)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"uuid":"c1","name":"First"},{"uuid":"c2","name":"Second"}]}`))
	})

	refs, err := c.ListConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "c1", refs[0].ID)
	assert.Equal(t, "First", refs[0].Title)
}

func TestGetConversationFiltersTurns(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/org-1/chat_conversations/c1", r.URL.Path)
		w.Write([]byte(`{
			"uuid": "c1",
			"name": "First",
			"chat_messages": [
				{"sender": "human", "text": "I prefer tea"},
				{"sender": "assistant", "text": "Noted."},
				{"sender": "system", "text": "ignored"},
				{"sender": "human", "text": ""}
			]
		}`))
	})

	conv, err := c.GetConversation(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", conv.ID)
	assert.Equal(t, "First", conv.Title)
	require.Len(t, conv.Turns, 2)
	assert.Equal(t, SpeakerHuman, conv.Turns[0].Speaker)
	assert.Equal(t, SpeakerAssistant, conv.Turns[1].Speaker)
}

func TestMissingSessionCookieIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the backend without credentials")
	}))
	t.Cleanup(srv.Close)

	c := NewClient(ClientConfig{
		BaseURL: srv.URL,
		OrgID:   "org-1",
		Cookies: []Cookie{{Name: "other", Value: "x"}},
	}, zap.NewNop())

	_, err := c.ListConversations(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
}

func TestMissingOrgIDIsAuthError(t *testing.T) {
	c := NewClient(ClientConfig{
		BaseURL: "http://127.0.0.1:0",
		Cookies: sessionCookies(),
	}, zap.NewNop())

	_, err := c.ListConversations(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
}

func TestUnauthorizedStatusIsAuthError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.ListConversations(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
}

func TestServerErrorIsNetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ListConversations(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestUnreachableBackendIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(ClientConfig{
		BaseURL: srv.URL,
		OrgID:   "org-1",
		Cookies: sessionCookies(),
	}, zap.NewNop())

	_, err := c.ListConversations(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestBadJSONIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [`))
	})

	_, err := c.ListConversations(context.Background())
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestMissingItemsIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	})

	_, err := c.ListConversations(context.Background())
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestMissingChatMessagesIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"uuid": "c1", "name": "First"}`))
	})

	_, err := c.GetConversation(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFileFetcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	data := `[
		{"uuid": "c1", "name": "First", "chat_messages": [
			{"sender": "human", "text": "I live in Lisbon"},
			{"sender": "assistant", "text": "Nice."}
		]},
		{"uuid": "c2", "name": "Second", "chat_messages": []}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	f, err := NewFileFetcher(path)
	require.NoError(t, err)

	refs, err := f.ListConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 2)

	conv, err := f.GetConversation(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, conv.Turns, 2)
	assert.Equal(t, "I live in Lisbon", conv.Turns[0].Text)

	_, err = f.GetConversation(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMalformed)
}
