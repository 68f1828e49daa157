package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/SatyamPundir/product-stock-tracker/internal/config"
	"github.com/SatyamPundir/product-stock-tracker/internal/stock"
)

const emailSenderName = "Stock Bot"

// EmailChannel sends alerts over an authenticated SMTP session.
type EmailChannel struct {
	cfg    config.EmailConfig
	dialer func() sender
}

type sender interface {
	DialAndSend(...*gomail.Message) error
}

// NewEmailChannel builds the email channel.
func NewEmailChannel(cfg config.EmailConfig) *EmailChannel {
	return &EmailChannel{
		cfg: cfg,
		dialer: func() sender {
			return gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.SenderEmail, cfg.SenderPassword)
		},
	}
}

// Name identifies the channel in logs and metrics.
func (e *EmailChannel) Name() string { return "email" }

// Enabled is always true: unlike the chat channel, missing email settings
// are a configuration error worth surfacing, not a silent opt-out.
func (e *EmailChannel) Enabled() bool { return true }

// Send delivers the stock alert email. The STARTTLS upgrade is negotiated
// by the dialer.
func (e *EmailChannel) Send(_ context.Context, event stock.Event) error {
	if !e.cfg.Configured() {
		return fmt.Errorf("email channel missing sender or recipient address")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", e.cfg.SenderEmail, emailSenderName)
	m.SetHeader("To", e.cfg.RecipientEmail)
	m.SetHeader("Subject", emailSubject(event))
	m.SetBody("text/plain", emailBody(event))

	if err := e.dialer().DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func emailSubject(event stock.Event) string {
	return fmt.Sprintf("STOCK ALERT: %s is available!", event.Product.Name)
}

func emailBody(event stock.Event) string {
	return fmt.Sprintf(
		"✅ The product '%s' is now available!\n\n"+
			"🛒 Product URL: %s\n"+
			"📦 Status: %s\n"+
			"⏰ Checked at: %s\n\n"+
			"Visit the URL to buy it now.\n",
		event.Product.Name,
		event.Product.URL,
		event.Verdict.Reason,
		event.CheckedAt.Format("2006-01-02 15:04:05"),
	)
}
