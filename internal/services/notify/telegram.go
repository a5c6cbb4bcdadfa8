// Package notify delivers trade signals to operators.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/caisyy0514/sentinel/pkg/retrier"
)

const (
	telegramAPIBase = "https://api.telegram.org"
	telegramTimeout = 30 * time.Second
)

// Telegram sends alerts through the Telegram Bot API.
type Telegram struct {
	client *resty.Client
	chatID string
	retry  *retrier.Retrier
	logger *zap.Logger
}

// NewTelegram creates a notifier for the given bot token and chat.
func NewTelegram(token, chatID string, logger *zap.Logger) *Telegram {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(fmt.Sprintf("%s/bot%s", telegramAPIBase, token)).
		SetTimeout(telegramTimeout)

	return &Telegram{
		client: client,
		chatID: chatID,
		retry: retrier.New(
			retrier.WithMaxRetries(3),
			retrier.WithInitialInterval(time.Second),
		),
		logger: logger,
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// Alert delivers text to the configured chat, retrying transient errors.
func (t *Telegram) Alert(ctx context.Context, text string) error {
	return t.retry.Do(ctx, func(ctx context.Context) error {
		var out sendMessageResponse
		resp, err := t.client.R().
			SetContext(ctx).
			SetBody(sendMessageRequest{
				ChatID:                t.chatID,
				Text:                  text,
				DisableWebPagePreview: true,
			}).
			SetResult(&out).
			SetError(&out).
			Post("/sendMessage")
		if err != nil {
			return errors.Wrap(err, "telegram request failed")
		}
		if resp.IsError() || !out.OK {
			desc := out.Description
			if desc == "" {
				desc = resp.Status()
			}
			return errors.Errorf("telegram API error: %s", desc)
		}

		t.logger.Debug("telegram alert sent", zap.String("chat_id", t.chatID))
		return nil
	})
}

// Noop discards alerts. Used when no alert channel is configured.
type Noop struct{}

// Alert does nothing.
func (Noop) Alert(context.Context, string) error { return nil }
