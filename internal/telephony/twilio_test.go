package telephony

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/flynn-ai/deskpilot/internal/errors"
)

func TestPlaceCall_NotConfigured(t *testing.T) {
	tw := New(Config{AccountSID: "AC123"}, nil)

	_, err := tw.PlaceCall(context.Background(), "+233551234567", "i will be late")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotConfigured))
	assert.Equal(t, "Phone call service not configured. Please set up Twilio.", errors.UserMessage(err))
}

func configured() *Twilio {
	return New(Config{AccountSID: "AC123", AuthToken: "token", PhoneNumber: "+15005550006"}, nil)
}

func TestPlaceCall_WithMessage(t *testing.T) {
	tw := configured()

	var got *openapi.CreateCallParams
	tw.create = func(p *openapi.CreateCallParams) (string, error) {
		got = p
		return "CA42", nil
	}

	status, err := tw.PlaceCall(context.Background(), "+233551234567", "fish & chips <now>")
	require.NoError(t, err)
	assert.Equal(t, "Call initiated to +233551234567 with message (SID: CA42)", status)

	require.NotNil(t, got)
	assert.Equal(t, "+233551234567", *got.To)
	assert.Equal(t, "+15005550006", *got.From)
	assert.Equal(t, `<Response><Say voice="alice">fish &amp; chips &lt;now&gt;</Say></Response>`, *got.Twiml)
	assert.Nil(t, got.Url)
}

func TestPlaceCall_PlainCall(t *testing.T) {
	tw := configured()
	var got *openapi.CreateCallParams
	tw.create = func(p *openapi.CreateCallParams) (string, error) {
		got = p
		return "CA1", nil
	}

	status, err := tw.PlaceCall(context.Background(), "+233244123456", "")
	require.NoError(t, err)
	assert.Equal(t, "Call initiated to +233244123456 (SID: CA1)", status)
	assert.Equal(t, SayTwiML(DefaultGreeting), *got.Twiml)

	tw.cfg.DefaultTwiMLURL = "https://example.com/voice.xml"
	_, err = tw.PlaceCall(context.Background(), "+233244123456", "")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/voice.xml", *got.Url)
}

func TestPlaceCall_BackendFailure(t *testing.T) {
	tw := configured()
	tw.create = func(*openapi.CreateCallParams) (string, error) {
		return "", stderrors.New("Status: 401 - Authenticate")
	}

	_, err := tw.PlaceCall(context.Background(), "+233244123456", "hi")
	assert.True(t, errors.HasCode(err, errors.CodeBackendFailure))
	assert.Equal(t, "Status: 401 - Authenticate", errors.Cause(err))
}
