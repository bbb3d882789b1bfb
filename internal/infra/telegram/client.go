package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/port"
	"github.com/Singularity-Shift/sui-squad/internal/infra/config"
)

// Client is a thin Telegram Bot API wrapper: long-poll updates in, messages
// out. Command semantics live in the bot package, not here.
type Client struct {
	base        string
	pollTimeout time.Duration
	http        *http.Client
	logger      *zap.Logger
}

// Update is one inbound bot update, reduced to the fields the command layer
// consumes.
type Update struct {
	UpdateID int64
	ChatID   int64
	ChatType string
	UserID   int64
	Username string
	Text     string
}

// NewClient constructs a Bot API client.
func NewClient(cfg config.TelegramSettings, log *zap.Logger) (*Client, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 30 * time.Second
	}
	return &Client{
		base:        fmt.Sprintf("%s/bot%s", cfg.APIBaseURL, cfg.BotToken),
		pollTimeout: pollTimeout,
		// The HTTP timeout must exceed the long-poll hold time.
		http:   &http.Client{Timeout: pollTimeout + 10*time.Second},
		logger: log,
	}, nil
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *Client) post(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if !parsed.OK {
		return fmt.Errorf("%s: %s", method, parsed.Description)
	}
	if out != nil {
		if err := json.Unmarshal(parsed.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

// GetUpdates long-polls for updates after the given offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	var raw []struct {
		UpdateID int64 `json:"update_id"`
		Message  *struct {
			Text string `json:"text"`
			Chat struct {
				ID   int64  `json:"id"`
				Type string `json:"type"`
			} `json:"chat"`
			From struct {
				ID       int64  `json:"id"`
				Username string `json:"username"`
			} `json:"from"`
		} `json:"message"`
	}

	payload := map[string]any{
		"offset":  offset,
		"timeout": int(c.pollTimeout.Seconds()),
	}
	if err := c.post(ctx, "getUpdates", payload, &raw); err != nil {
		return nil, err
	}

	updates := make([]Update, 0, len(raw))
	for _, u := range raw {
		update := Update{UpdateID: u.UpdateID}
		if u.Message != nil {
			update.ChatID = u.Message.Chat.ID
			update.ChatType = u.Message.Chat.Type
			update.UserID = u.Message.From.ID
			update.Username = u.Message.From.Username
			update.Text = u.Message.Text
		}
		updates = append(updates, update)
	}
	return updates, nil
}

// SendMessage delivers plain text to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.post(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	}, nil)
}

// SendLoginButton delivers a message with a single URL button.
func (c *Client) SendLoginButton(ctx context.Context, chatID int64, text, label, url string) error {
	return c.post(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
		"reply_markup": map[string]any{
			"inline_keyboard": [][]map[string]string{
				{{"text": label, "url": url}},
			},
		},
	}, nil)
}

var _ port.Messenger = (*Client)(nil)
