// Package telephony places voice calls through Twilio.
package telephony

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/flynn-ai/deskpilot/internal/errors"
)

// DefaultGreeting is spoken when a call carries no message and no TwiML URL
// is configured.
const DefaultGreeting = "Hello, this is a call from your AI assistant."

// Config holds Twilio credentials.
type Config struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string

	// DefaultTwiMLURL is fetched by Twilio for calls without a message
	DefaultTwiMLURL string
}

// Configured reports whether credentials and a caller ID are present.
func (c Config) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.PhoneNumber != ""
}

type createCallFunc func(params *openapi.CreateCallParams) (string, error)

// Twilio implements backend.Telephony.
type Twilio struct {
	cfg    Config
	create createCallFunc
	logger *zap.Logger
}

// New creates a Twilio caller. Without credentials every call reports
// NOT_CONFIGURED.
func New(cfg Config, logger *zap.Logger) *Twilio {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Twilio{cfg: cfg, logger: logger.Named("telephony")}
	if cfg.Configured() {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
		t.create = func(params *openapi.CreateCallParams) (string, error) {
			resp, err := client.Api.CreateCall(params)
			if err != nil {
				return "", err
			}
			if resp.Sid == nil {
				return "", nil
			}
			return *resp.Sid, nil
		}
	}
	return t
}

// PlaceCall dials phone and speaks message. An empty message uses the
// configured TwiML URL, or the default greeting.
func (t *Twilio) PlaceCall(ctx context.Context, phone, message string) (string, error) {
	if !t.cfg.Configured() || t.create == nil {
		return "", errors.NotConfigured("Phone call service not configured. Please set up Twilio.")
	}
	if err := ctx.Err(); err != nil {
		return "", errors.BackendFailure(err, "failed to place call")
	}

	params := &openapi.CreateCallParams{}
	params.SetTo(phone)
	params.SetFrom(t.cfg.PhoneNumber)
	switch {
	case message != "":
		params.SetTwiml(SayTwiML(message))
	case t.cfg.DefaultTwiMLURL != "":
		params.SetUrl(t.cfg.DefaultTwiMLURL)
	default:
		params.SetTwiml(SayTwiML(DefaultGreeting))
	}

	t.logger.Info("placing call", zap.String("to", phone), zap.Bool("with_message", message != ""))
	sid, err := t.create(params)
	if err != nil {
		return "", errors.BackendFailure(err, "failed to place call")
	}
	if message != "" {
		return fmt.Sprintf("Call initiated to %s with message (SID: %s)", phone, sid), nil
	}
	return fmt.Sprintf("Call initiated to %s (SID: %s)", phone, sid), nil
}

// SayTwiML wraps message in a TwiML <Say> document.
func SayTwiML(message string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(message))
	return `<Response><Say voice="alice">` + b.String() + `</Say></Response>`
}
