// Package intent defines the structured command model shared by the parser
// and the dispatcher.
package intent

import (
	"fmt"
	"maps"
)

// Intent is the canonical action category a command is classified into.
type Intent string

const (
	OpenApplication          Intent = "open_application"
	OpenFolder               Intent = "open_folder"
	CreateFile               Intent = "create_file"
	CreateFolder             Intent = "create_folder"
	DeleteFile               Intent = "delete_file"
	DeleteFolder             Intent = "delete_folder"
	RenameFile               Intent = "rename_file"
	RenameFolder             Intent = "rename_folder"
	TakeScreenshot           Intent = "take_screenshot"
	OpenBrowser              Intent = "open_browser"
	SearchWeb                Intent = "search_web"
	SendWhatsApp             Intent = "send_whatsapp"
	SendEmail                Intent = "send_email"
	SendMessage              Intent = "send_message"
	MakePhoneCall            Intent = "make_phone_call"
	MakePhoneCallWithMessage Intent = "make_phone_call_with_message"
	ScheduleMessage          Intent = "schedule_message"
	Unknown                  Intent = "unknown"
)

var all = []Intent{
	OpenApplication,
	OpenFolder,
	CreateFile,
	CreateFolder,
	DeleteFile,
	DeleteFolder,
	RenameFile,
	RenameFolder,
	TakeScreenshot,
	OpenBrowser,
	SearchWeb,
	SendWhatsApp,
	SendEmail,
	SendMessage,
	MakePhoneCall,
	MakePhoneCallWithMessage,
	ScheduleMessage,
	Unknown,
}

// All returns every intent, unknown last.
func All() []Intent {
	out := make([]Intent, len(all))
	copy(out, all)
	return out
}

// Valid reports whether i is a member of the enumeration.
func (i Intent) Valid() bool {
	for _, known := range all {
		if i == known {
			return true
		}
	}
	return false
}

// String returns the intent name.
func (i Intent) String() string { return string(i) }

// Parse converts a name into an Intent. Unrecognized names map to Unknown.
func Parse(name string) Intent {
	i := Intent(name)
	if !i.Valid() {
		return Unknown
	}
	return i
}

// ============================================================
// Confidence
// ============================================================

// Confidence is the classifier's certainty in [0,1]. Only three tiers are
// produced, and nothing downstream branches on the value.
type Confidence float64

const (
	ConfidenceNone    Confidence = 0.0
	ConfidenceKeyword Confidence = 0.6
	ConfidencePattern Confidence = 0.8
)

// ============================================================
// Parameters
// ============================================================

// Parameter keys produced by the extractor.
const (
	ParamApplication = "application"
	ParamFolder      = "folder"
	ParamFilename    = "filename"
	ParamNewName     = "new_name"
	ParamPhone       = "phone"
	ParamEmail       = "email"
	ParamSubject     = "subject"
	ParamBody        = "body"
	ParamMessage     = "message"
	ParamQuery       = "query"
	ParamRecipient   = "recipient"
	ParamBrowser     = "browser"
	ParamTime        = "time"
)

// Parameters maps parameter keys to values. An absent key means the caller's
// default applies; values are never empty.
type Parameters map[string]string

// Get returns the value for key and whether it is present.
func (p Parameters) Get(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

// GetOr returns the value for key, or def when it is absent.
func (p Parameters) GetOr(key, def string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Clone returns an independent copy.
func (p Parameters) Clone() Parameters {
	if p == nil {
		return Parameters{}
	}
	return maps.Clone(p)
}

// ============================================================
// ParsedCommand
// ============================================================

// ParsedCommand is the structured result for one input line.
type ParsedCommand struct {
	Intent       Intent     `json:"intent" yaml:"intent"`
	Confidence   Confidence `json:"confidence" yaml:"confidence"`
	Parameters   Parameters `json:"parameters" yaml:"parameters"`
	OriginalText string     `json:"original_text" yaml:"original_text"`
}

// New builds a ParsedCommand that owns a private copy of params.
func New(i Intent, c Confidence, params Parameters, text string) ParsedCommand {
	return ParsedCommand{
		Intent:       i,
		Confidence:   c,
		Parameters:   params.Clone(),
		OriginalText: text,
	}
}

// Unrecognized builds the result for text that matched nothing.
func Unrecognized(text string) ParsedCommand {
	return New(Unknown, ConfidenceNone, nil, text)
}

// Param returns a parameter value.
func (c ParsedCommand) Param(key string) (string, bool) {
	return c.Parameters.Get(key)
}

// String formats the command for logs.
func (c ParsedCommand) String() string {
	return fmt.Sprintf("%s (%.1f) %v", c.Intent, float64(c.Confidence), map[string]string(c.Parameters))
}
