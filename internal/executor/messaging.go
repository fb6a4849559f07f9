package executor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/flynn-ai/deskpilot/internal/backend"
	"github.com/flynn-ai/deskpilot/internal/classifier"
	"github.com/flynn-ai/deskpilot/internal/contact"
	"github.com/flynn-ai/deskpilot/internal/errors"
	"github.com/flynn-ai/deskpilot/internal/intent"
	"github.com/flynn-ai/deskpilot/internal/messaging"
)

// ============================================================
// Validation
// ============================================================

func (d *Dispatcher) phone(raw string) (string, error) {
	phone, ok := d.cfg.Contacts.NormalizePhone(raw)
	if !ok {
		return "", errors.InvalidContact(fmt.Sprintf("Invalid phone number: %s", raw))
	}
	return phone, nil
}

func (d *Dispatcher) email(raw string) (string, error) {
	email, ok := d.cfg.Contacts.ExtractEmail(raw)
	if !ok {
		return "", errors.InvalidContact(fmt.Sprintf("Invalid email address: %s", raw))
	}
	return email, nil
}

func (d *Dispatcher) messenger() (backend.Messenger, error) {
	if d.cfg.Backends.Messenger == nil {
		return nil, errors.NotConfigured("Messaging service not configured.")
	}
	return d.cfg.Backends.Messenger, nil
}

func (d *Dispatcher) telephony() (backend.Telephony, error) {
	if d.cfg.Backends.Telephony == nil {
		return nil, errors.NotConfigured("Phone call service not configured. Please set up Twilio.")
	}
	return d.cfg.Backends.Telephony, nil
}

// ============================================================
// Messaging
// ============================================================

func (d *Dispatcher) sendWhatsApp(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	raw, ok := cmd.Param(intent.ParamPhone)
	if !ok {
		return "", errors.MissingParameter(intent.ParamPhone,
			"Please specify a phone number to send WhatsApp message to. Example: 'Send WhatsApp to +233123456789'")
	}
	phone, err := d.phone(raw)
	if err != nil {
		return "", err
	}
	return d.deliverWhatsApp(ctx, phone, cmd.Parameters.GetOr(intent.ParamMessage, classifier.DefaultWhatsAppMessage))
}

func (d *Dispatcher) deliverWhatsApp(ctx context.Context, phone, message string) (string, error) {
	m, err := d.messenger()
	if err != nil {
		return "", err
	}
	status, err := m.SendWhatsApp(ctx, phone, message)
	if err != nil {
		return "", failed("send WhatsApp message", err)
	}
	return status, nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	raw, ok := cmd.Param(intent.ParamEmail)
	if !ok {
		return "", errors.MissingParameter(intent.ParamEmail,
			"Please specify an email address to send message to. Example: 'Send email to example@gmail.com'")
	}
	to, err := d.email(raw)
	if err != nil {
		return "", err
	}
	return d.deliverEmail(ctx, to,
		cmd.Parameters.GetOr(intent.ParamSubject, messaging.DefaultEmailSubject),
		cmd.Parameters.GetOr(intent.ParamBody, messaging.DefaultEmailBody),
	)
}

func (d *Dispatcher) deliverEmail(ctx context.Context, to, subject, body string) (string, error) {
	m, err := d.messenger()
	if err != nil {
		return "", err
	}
	status, err := m.SendEmail(ctx, to, subject, body)
	if err != nil {
		return "", failed("send email", err)
	}
	return status, nil
}

func (d *Dispatcher) sendMessage(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	recipient, ok := cmd.Param(intent.ParamRecipient)
	if !ok {
		return "", errors.MissingParameter(intent.ParamRecipient, "Please specify a recipient for the message.")
	}

	message, hasMessage := cmd.Param(intent.ParamMessage)
	switch c := d.cfg.Contacts.Classify(recipient); c.Kind {
	case contact.KindPhone:
		if !hasMessage {
			message = classifier.DefaultWhatsAppMessage
		}
		return d.deliverWhatsApp(ctx, c.Value, message)
	case contact.KindEmail:
		if !hasMessage {
			message = messaging.DefaultEmailBody
		}
		return d.deliverEmail(ctx, c.Value, messaging.DefaultEmailSubject, message)
	default:
		return "", errors.InvalidContact("Please specify a valid phone number or email address.")
	}
}

func (d *Dispatcher) scheduleMessage(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	raw, ok := cmd.Param(intent.ParamPhone)
	if !ok {
		raw, ok = cmd.Param(intent.ParamRecipient)
	}
	if !ok {
		return "", errors.MissingParameter(intent.ParamPhone, "Please specify a recipient for the scheduled message.")
	}
	phone, err := d.phone(raw)
	if err != nil {
		return "", err
	}

	clock, ok := cmd.Param(intent.ParamTime)
	if !ok {
		return "", errors.MissingParameter(intent.ParamTime, "Please specify when to send the message. Example: 'at 5pm'")
	}
	at, err := messaging.NextOccurrence(clock, d.cfg.Clock())
	if err != nil {
		return "", errors.NewBuilder(errors.CodeUnsupported, fmt.Sprintf("Could not understand the time '%s'", clock)).
			User().
			Wrap(err).
			Build()
	}

	if d.cfg.Backends.Scheduler == nil {
		return "", errors.NotConfigured("Message scheduler not available.")
	}
	status, err := d.cfg.Backends.Scheduler.ScheduleWhatsApp(ctx, phone,
		cmd.Parameters.GetOr(intent.ParamMessage, classifier.DefaultWhatsAppMessage), at)
	if err != nil {
		return "", failed("schedule message", err)
	}
	return status, nil
}

// ============================================================
// Telephony
// ============================================================

func (d *Dispatcher) makePhoneCall(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	raw, ok := cmd.Param(intent.ParamPhone)
	if !ok {
		return "", errors.MissingParameter(intent.ParamPhone, "Please specify a phone number to call.")
	}
	phone, err := d.phone(raw)
	if err != nil {
		return "", err
	}
	status, err := d.call(ctx, phone, "")
	if errors.HasCode(err, errors.CodeNotConfigured) && len(d.cfg.Backends.Dialers) > 0 {
		return d.dial(ctx, phone)
	}
	return status, err
}

// dial tries each local dialer in order and returns the first success.
func (d *Dispatcher) dial(ctx context.Context, phone string) (string, error) {
	var last error
	for _, dialer := range d.cfg.Backends.Dialers {
		status, err := dialer.Dial(ctx, phone)
		if err == nil {
			d.logger.Info("call placed by local dialer", zap.String("dialer", dialer.Name()), zap.String("phone", phone))
			return status, nil
		}
		d.logger.Warn("local dialer failed", zap.String("dialer", dialer.Name()), zap.Error(err))
		last = err
	}
	return "", failed("make phone call", last)
}

func (d *Dispatcher) makePhoneCallWithMessage(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	raw, ok := cmd.Param(intent.ParamPhone)
	if !ok {
		return "", errors.MissingParameter(intent.ParamPhone, "Please specify a phone number to call.")
	}
	message, ok := cmd.Param(intent.ParamMessage)
	if !ok {
		return "", errors.MissingParameter(intent.ParamMessage, "Please specify a message to deliver.")
	}
	phone, err := d.phone(raw)
	if err != nil {
		return "", err
	}
	return d.call(ctx, phone, message)
}

func (d *Dispatcher) call(ctx context.Context, phone, message string) (string, error) {
	t, err := d.telephony()
	if err != nil {
		return "", err
	}
	status, err := t.PlaceCall(ctx, phone, message)
	if err != nil {
		return "", failed("make phone call", err)
	}
	return status, nil
}
