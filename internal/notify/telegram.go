package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SatyamPundir/product-stock-tracker/internal/config"
	"github.com/SatyamPundir/product-stock-tracker/internal/stock"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramChannel posts alerts to a chat through the bot API.
type TelegramChannel struct {
	cfg     config.TelegramConfig
	client  *http.Client
	baseURL string
}

// NewTelegramChannel builds the chat channel. The channel is disabled when
// token or chat id are unset.
func NewTelegramChannel(cfg config.TelegramConfig) *TelegramChannel {
	return &TelegramChannel{
		cfg:     cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: telegramAPIBase,
	}
}

// Name identifies the channel in logs and metrics.
func (t *TelegramChannel) Name() string { return "telegram" }

// Enabled reports whether bot token and chat id are both configured.
func (t *TelegramChannel) Enabled() bool { return t.cfg.Configured() }

// Send posts a Markdown-formatted alert to the configured chat.
func (t *TelegramChannel) Send(ctx context.Context, event stock.Event) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.cfg.BotToken)
	form := url.Values{
		"chat_id":                  {t.cfg.ChatID},
		"text":                     {telegramText(event)},
		"parse_mode":               {"Markdown"},
		"disable_web_page_preview": {"false"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post telegram message: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func telegramText(event stock.Event) string {
	return fmt.Sprintf(
		"🚨 *STOCK ALERT*\n\n"+
			"✅ *%s* is now available!\n\n"+
			"🛒 [Buy Now](%s)\n"+
			"📦 Status: %s\n"+
			"⏰ %s",
		event.Product.Name,
		event.Product.URL,
		event.Verdict.Reason,
		event.CheckedAt.Format("2006-01-02 15:04:05"),
	)
}
