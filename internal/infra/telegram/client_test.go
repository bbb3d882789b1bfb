package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/infra/config"
)

type botCall struct {
	path string
	body map[string]any
}

func newBotServer(t *testing.T, result string) (*httptest.Server, *[]botCall) {
	t.Helper()

	var calls []botCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &body); err != nil {
				t.Errorf("bad request body: %v", err)
			}
		}
		calls = append(calls, botCall{path: r.URL.Path, body: body})
		_, _ = w.Write([]byte(result))
	}))
	return srv, &calls
}

func newTestBotClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(config.TelegramSettings{
		BotToken:    "123:abc",
		APIBaseURL:  baseURL,
		PollTimeout: time.Second,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(config.TelegramSettings{APIBaseURL: "https://api.telegram.org"}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error without bot token")
	}
}

func TestGetUpdates(t *testing.T) {
	srv, calls := newBotServer(t, `{"ok":true,"result":[
		{"update_id":7,"message":{"text":"/balance","chat":{"id":42,"type":"private"},"from":{"id":9,"username":"alice"}}},
		{"update_id":8}
	]}`)
	defer srv.Close()

	client := newTestBotClient(t, srv.URL)
	updates, err := client.GetUpdates(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetUpdates: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}

	first := updates[0]
	if first.UpdateID != 7 || first.ChatID != 42 || first.ChatType != "private" {
		t.Errorf("unexpected update %+v", first)
	}
	if first.UserID != 9 || first.Username != "alice" || first.Text != "/balance" {
		t.Errorf("unexpected sender fields %+v", first)
	}
	if updates[1].Text != "" {
		t.Errorf("message-less update should carry no text, got %q", updates[1].Text)
	}

	call := (*calls)[0]
	if call.path != "/bot123:abc/getUpdates" {
		t.Errorf("unexpected path %s", call.path)
	}
	if call.body["offset"] != float64(7) {
		t.Errorf("offset not forwarded: %v", call.body)
	}
}

func TestSendMessage(t *testing.T) {
	srv, calls := newBotServer(t, `{"ok":true,"result":{}}`)
	defer srv.Close()

	client := newTestBotClient(t, srv.URL)
	if err := client.SendMessage(context.Background(), 42, "hello"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	body := (*calls)[0].body
	if body["chat_id"] != float64(42) || body["text"] != "hello" {
		t.Errorf("unexpected payload %v", body)
	}
}

func TestSendLoginButton(t *testing.T) {
	srv, calls := newBotServer(t, `{"ok":true,"result":{}}`)
	defer srv.Close()

	client := newTestBotClient(t, srv.URL)
	err := client.SendLoginButton(context.Background(), 42, "Tap to sign in", "Sign in with Google", "https://accounts.google.com/o/oauth2/v2/auth")
	if err != nil {
		t.Fatalf("SendLoginButton: %v", err)
	}

	body := (*calls)[0].body
	markup, ok := body["reply_markup"].(map[string]any)
	if !ok {
		t.Fatalf("missing reply_markup in %v", body)
	}
	rows, ok := markup["inline_keyboard"].([]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("unexpected keyboard %v", markup)
	}
	button := rows[0].([]any)[0].(map[string]any)
	if button["text"] != "Sign in with Google" || button["url"] != "https://accounts.google.com/o/oauth2/v2/auth" {
		t.Errorf("unexpected button %v", button)
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	srv, _ := newBotServer(t, `{"ok":false,"description":"Unauthorized"}`)
	defer srv.Close()

	client := newTestBotClient(t, srv.URL)
	if err := client.SendMessage(context.Background(), 42, "hello"); err == nil {
		t.Fatal("expected api error to surface")
	}
}
