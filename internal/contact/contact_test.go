package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	e := NewExtractor("+233")

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"domestic with leading zero", "0244123456", "+233244123456", true},
		{"international with spaces", "+1 202 555 0123", "+12025550123", true},
		{"dashes and parens", "(024) 412-3456", "+233244123456", true},
		{"domestic without zero", "2441234567", "+2332441234567", true},
		{"too short", "5551234", "", false},
		{"empty", "", "", false},
		{"letters only", "call mom", "", false},
		{"surrounding whitespace", "  +233 55 123 4567 ", "+233551234567", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.NormalizePhone(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePhone_ConfiguredCountryCode(t *testing.T) {
	e := NewExtractor("44")
	assert.Equal(t, "+44", e.CountryCode())

	got, ok := e.NormalizePhone("07700900123")
	assert.True(t, ok)
	assert.Equal(t, "+447700900123", got)
}

func TestNewExtractor_DefaultCountryCode(t *testing.T) {
	assert.Equal(t, DefaultCountryCode, NewExtractor("").CountryCode())
}

func TestExtractEmail(t *testing.T) {
	e := NewExtractor("")

	got, ok := e.ExtractEmail("send email to jane.doe@example.co to discuss budget")
	assert.True(t, ok)
	assert.Equal(t, "jane.doe@example.co", got)

	_, ok = e.ExtractEmail("send email to jane at example dot com")
	assert.False(t, ok)

	_, ok = e.ExtractEmail("user@localhost")
	assert.False(t, ok, "a TLD is required")
}

func TestClassify(t *testing.T) {
	e := NewExtractor("+233")

	assert.Equal(t, Contact{Kind: KindEmail, Value: "bob@mail.com"}, e.Classify("bob@mail.com"))
	assert.Equal(t, Contact{Kind: KindPhone, Value: "+233244123456"}, e.Classify("0244123456"))
	assert.Equal(t, KindNone, e.Classify("bob").Kind)
	assert.Equal(t, "none", KindNone.String())
}

func TestPhoneDigits(t *testing.T) {
	assert.Equal(t, "233244123456", PhoneDigits("+233244123456"))
}
