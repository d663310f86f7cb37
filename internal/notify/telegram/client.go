package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
)

// Client talks to the Telegram Bot API. A zero-token configuration
// yields a disabled client; callers check Enabled before dispatching.
type Client struct {
	http        *resty.Client
	token       string
	adminChatID string
	logger      *zap.Logger
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// New builds a client from configuration.
func New(cfg config.TelegramConfig, logger *zap.Logger) *Client {
	return &Client{
		http:        resty.New().SetBaseURL("https://api.telegram.org/bot" + cfg.BotToken),
		token:       cfg.BotToken,
		adminChatID: cfg.AdminChatID,
		logger:      logger,
	}
}

// Enabled reports whether the channel is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.token != "" && c.adminChatID != ""
}

// AdminChatID returns the configured admin notification chat.
func (c *Client) AdminChatID() string {
	return c.adminChatID
}

// SendMessage posts an HTML text message, optionally with an inline keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID, text string, keyboard *InlineKeyboardMarkup) (*Message, error) {
	body := map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	if keyboard != nil {
		body["reply_markup"] = keyboard
	}
	return c.callMessage(ctx, "/sendMessage", body)
}

// SendPhoto posts an image-bearing message with an HTML caption.
func (c *Client) SendPhoto(ctx context.Context, chatID, photoURL, caption string, keyboard *InlineKeyboardMarkup) (*Message, error) {
	body := map[string]any{
		"chat_id":    chatID,
		"photo":      photoURL,
		"caption":    caption,
		"parse_mode": "HTML",
	}
	if keyboard != nil {
		body["reply_markup"] = keyboard
	}
	return c.callMessage(ctx, "/sendPhoto", body)
}

// EditMessageText rewrites a previously sent message in place.
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int64, text string, keyboard *InlineKeyboardMarkup) error {
	body := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if keyboard != nil {
		body["reply_markup"] = keyboard
	}
	_, err := c.call(ctx, "/editMessageText", body)
	return err
}

// EditMessageCaption rewrites the caption of a photo message in place.
func (c *Client) EditMessageCaption(ctx context.Context, chatID int64, messageID int64, caption string, keyboard *InlineKeyboardMarkup) error {
	body := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"caption":    caption,
		"parse_mode": "HTML",
	}
	if keyboard != nil {
		body["reply_markup"] = keyboard
	}
	_, err := c.call(ctx, "/editMessageCaption", body)
	return err
}

// AnswerCallbackQuery acknowledges a button press. The channel keeps
// its own pending-UI state until this is called, so it must run even
// when handling the callback failed.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	body := map[string]any{
		"callback_query_id": callbackID,
	}
	if text != "" {
		body["text"] = text
	}
	_, err := c.call(ctx, "/answerCallbackQuery", body)
	return err
}

func (c *Client) callMessage(ctx context.Context, method string, body map[string]any) (*Message, error) {
	result, err := c.call(ctx, method, body)
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := json.Unmarshal(result, &msg); err != nil {
		return nil, fmt.Errorf("telegram %s: decode result: %w", method, err)
	}
	return &msg, nil
}

func (c *Client) call(ctx context.Context, method string, body map[string]any) (json.RawMessage, error) {
	var parsed apiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&parsed).
		Post(method)
	if err != nil {
		return nil, fmt.Errorf("telegram %s: %w", method, err)
	}
	if resp.IsError() || !parsed.OK {
		desc := parsed.Description
		if desc == "" {
			desc = strings.TrimSpace(resp.String())
		}
		return nil, fmt.Errorf("telegram %s: %s", method, desc)
	}
	return parsed.Result, nil
}

// EscapeHTML sanitizes user-supplied text for HTML parse mode.
func EscapeHTML(text string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return replacer.Replace(text)
}
