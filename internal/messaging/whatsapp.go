// Package messaging sends WhatsApp messages and email, immediately or on a
// schedule.
package messaging

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/flynn-ai/deskpilot/internal/backend"
	"github.com/flynn-ai/deskpilot/internal/contact"
	"github.com/flynn-ai/deskpilot/internal/errors"
)

// WhatsApp delivery modes.
const (
	// ModeBrowser opens the prefilled chat and leaves sending to the user
	ModeBrowser = "browser"

	// ModeAutomate drives the user's Chrome profile and clicks send
	ModeAutomate = "automate"
)

const (
	whatsAppWebURL     = "https://web.whatsapp.com/send"
	sendButtonSelector = `span[data-icon="send"]`
	defaultWait        = 20 * time.Second
)

// WhatsAppConfig configures WhatsApp delivery.
type WhatsAppConfig struct {
	Mode string

	// Wait bounds how long automation waits for the chat to load
	Wait time.Duration
}

type automateFunc func(ctx context.Context, chatURL string, wait time.Duration) error

// WhatsApp sends messages through WhatsApp Web.
type WhatsApp struct {
	mode     string
	wait     time.Duration
	desktop  backend.Launcher
	automate automateFunc
	logger   *zap.Logger
}

// NewWhatsApp creates a WhatsApp sender. Unknown modes fall back to browser.
func NewWhatsApp(cfg WhatsAppConfig, desktop backend.Launcher, logger *zap.Logger) *WhatsApp {
	if logger == nil {
		logger = zap.NewNop()
	}
	mode := cfg.Mode
	if mode != ModeAutomate {
		mode = ModeBrowser
	}
	wait := cfg.Wait
	if wait <= 0 {
		wait = defaultWait
	}
	return &WhatsApp{
		mode:     mode,
		wait:     wait,
		desktop:  desktop,
		automate: sendWithRod,
		logger:   logger.Named("whatsapp"),
	}
}

// Mode returns the active delivery mode.
func (w *WhatsApp) Mode() string {
	return w.mode
}

// SendWhatsApp delivers message to a normalized phone number.
func (w *WhatsApp) SendWhatsApp(ctx context.Context, phone, message string) (string, error) {
	chat := ChatURL(phone, message)
	w.logger.Info("sending whatsapp message", zap.String("phone", phone), zap.String("mode", w.mode))

	if w.mode == ModeAutomate {
		if err := w.automate(ctx, chat, w.wait); err != nil {
			return "", errors.BackendFailure(err, "failed to send WhatsApp message")
		}
		return fmt.Sprintf("WhatsApp message sent to %s", phone), nil
	}

	if w.desktop == nil {
		return "", errors.NotConfigured("WhatsApp needs a desktop launcher.")
	}
	if err := w.desktop.OpenURL(ctx, chat); err != nil {
		return "", errors.BackendFailure(err, "failed to open WhatsApp")
	}
	return fmt.Sprintf("WhatsApp chat with %s opened with your message. Press send to deliver it.", phone), nil
}

// ChatURL builds the WhatsApp Web click-to-chat link.
func ChatURL(phone, message string) string {
	q := url.Values{}
	q.Set("phone", contact.PhoneDigits(phone))
	q.Set("text", message)
	return whatsAppWebURL + "?" + q.Encode()
}

// sendWithRod attaches to the user's Chrome profile, where WhatsApp Web is
// already logged in, and clicks the send button of the prefilled chat.
func sendWithRod(ctx context.Context, chatURL string, wait time.Duration) error {
	controlURL, err := launcher.NewUserMode().Launch()
	if err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}
	return sendInChrome(ctx, controlURL, chatURL, wait)
}

// sendSettle is how long the chat tab stays open after the click so WhatsApp
// Web can hand the message to its socket.
const sendSettle = time.Second

// sendInChrome opens chatURL in a new tab of the Chrome at controlURL and
// clicks send. The tab and the CDP connection are released before it
// returns; the browser belongs to the user and stays open.
func sendInChrome(ctx context.Context, controlURL, chatURL string, wait time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: chatURL})
	if err != nil {
		return fmt.Errorf("open chat: %w", err)
	}
	defer func() { _ = page.Close() }()

	el, err := page.Timeout(wait).Element(sendButtonSelector)
	if err != nil {
		return fmt.Errorf("send button not found: %w", err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click send: %w", err)
	}

	select {
	case <-time.After(sendSettle):
	case <-ctx.Done():
	}
	return nil
}
