// Package contact normalizes free-text fragments into canonical phone numbers
// and email addresses.
package contact

import (
	"regexp"
	"strings"
)

// DefaultCountryCode is used when no country code is configured.
const DefaultCountryCode = "+233"

// minPhoneLength is the shortest accepted normalized number, '+' included.
const minPhoneLength = 10

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// Kind tags a classified contact.
type Kind int

const (
	KindNone Kind = iota
	KindPhone
	KindEmail
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPhone:
		return "phone"
	case KindEmail:
		return "email"
	default:
		return "none"
	}
}

// Contact is a canonical phone number or email address.
type Contact struct {
	Kind  Kind
	Value string
}

// Extractor normalizes contacts using a fixed default country code.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	countryCode string
}

// NewExtractor creates an extractor. An empty code falls back to
// DefaultCountryCode; a code without '+' gets one.
func NewExtractor(countryCode string) *Extractor {
	cc := strings.TrimSpace(countryCode)
	if cc == "" {
		cc = DefaultCountryCode
	}
	if !strings.HasPrefix(cc, "+") {
		cc = "+" + cc
	}
	return &Extractor{countryCode: cc}
}

// CountryCode returns the configured country code including the '+'.
func (e *Extractor) CountryCode() string {
	return e.countryCode
}

// NormalizePhone strips everything but digits and a leading '+', rejects
// numbers shorter than 10 characters and rewrites domestic numbers into
// international format with the configured country code.
func (e *Extractor) NormalizePhone(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	international := strings.HasPrefix(trimmed, "+")

	var sb strings.Builder
	if international {
		sb.WriteByte('+')
	}
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}

	cleaned := sb.String()
	if len(cleaned) < minPhoneLength {
		return "", false
	}
	if international {
		return cleaned, true
	}

	local := strings.TrimPrefix(cleaned, "0")
	return e.countryCode + local, true
}

// ExtractEmail returns the first user@domain.tld substring of text.
func (e *Extractor) ExtractEmail(text string) (string, bool) {
	match := emailRegex.FindString(text)
	if match == "" {
		return "", false
	}
	return match, true
}

// Classify resolves text to an email when it contains one, otherwise to a
// phone number when it normalizes, otherwise to KindNone.
func (e *Extractor) Classify(text string) Contact {
	if email, ok := e.ExtractEmail(text); ok {
		return Contact{Kind: KindEmail, Value: email}
	}
	if phone, ok := e.NormalizePhone(text); ok {
		return Contact{Kind: KindPhone, Value: phone}
	}
	return Contact{Kind: KindNone}
}

// PhoneDigits returns a normalized number without the leading '+', the form
// click-to-chat URLs expect.
func PhoneDigits(phone string) string {
	return strings.TrimPrefix(phone, "+")
}
