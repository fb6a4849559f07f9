package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/flynn-ai/deskpilot/internal/contact"
	"github.com/flynn-ai/deskpilot/internal/intent"
)

// Defaults substituted when the command names no value.
const (
	DefaultFilename        = "new_file.txt"
	DefaultFolderName      = "New Folder"
	DefaultWhatsAppMessage = "Hello from your AI assistant!"
)

// Extractor pulls intent-specific parameters out of a command. It holds no
// mutable state, so Extract is a pure function of its inputs.
type Extractor struct {
	catalog  *Catalog
	contacts *contact.Extractor
	logger   *zap.Logger
}

// NewExtractor creates a parameter extractor.
func NewExtractor(catalog *Catalog, contacts *contact.Extractor, logger *zap.Logger) *Extractor {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if contacts == nil {
		contacts = contact.NewExtractor("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{catalog: catalog, contacts: contacts, logger: logger.Named("extractor")}
}

// Contacts returns the contact normalizer the extractor uses.
func (e *Extractor) Contacts() *contact.Extractor {
	return e.contacts
}

// Extract returns the parameters found in text for intent i. A field that
// cannot be extracted is omitted; Extract never panics.
func (e *Extractor) Extract(text string, i intent.Intent) (params intent.Parameters) {
	params = intent.Parameters{}
	// fields filled before a failure are kept
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction failed", zap.Stringer("intent", i), zap.String("panic", fmt.Sprint(r)))
		}
	}()

	msg := strings.ToLower(strings.TrimSpace(text))
	if msg == "" {
		return params
	}

	switch i {
	case intent.OpenApplication:
		setIf(params, intent.ParamApplication, e.application(msg))
	case intent.OpenFolder:
		setIf(params, intent.ParamFolder, e.folder(msg))
	case intent.OpenBrowser:
		setIf(params, intent.ParamBrowser, firstCapture(browserRegexes, msg))
	case intent.CreateFile:
		params[intent.ParamFilename] = orDefault(entryName(firstCapture(createFileRegexes, msg)), DefaultFilename)
	case intent.CreateFolder:
		params[intent.ParamFolder] = orDefault(entryName(firstCapture(createFolderRegexes, msg)), DefaultFolderName)
	case intent.DeleteFile:
		setIf(params, intent.ParamFilename, entryName(firstCapture(deleteFileRegexes, msg)))
	case intent.DeleteFolder:
		setIf(params, intent.ParamFolder, entryName(firstCapture(deleteFolderRegexes, msg)))
	case intent.RenameFile:
		e.rename(params, renameFileRegexes, intent.ParamFilename, msg)
	case intent.RenameFolder:
		e.rename(params, renameFolderRegexes, intent.ParamFolder, msg)
	case intent.TakeScreenshot:
		setIf(params, intent.ParamFilename, entryName(firstCapture(screenshotNameRegexes, msg)))
	case intent.SearchWeb:
		setIf(params, intent.ParamQuery, searchQuery(e.catalog.PatternsFor(intent.SearchWeb), msg))
	case intent.SendWhatsApp:
		setIf(params, intent.ParamPhone, e.phone(whatsappPhoneRegexes, msg))
		params[intent.ParamMessage] = orDefault(message(msg), DefaultWhatsAppMessage)
	case intent.ScheduleMessage:
		setIf(params, intent.ParamPhone, e.phone(whatsappPhoneRegexes, msg))
		setIf(params, intent.ParamMessage, stripTrailingTime(message(msg)))
		setIf(params, intent.ParamTime, firstCapture(timeRegexes, msg))
	case intent.MakePhoneCall:
		setIf(params, intent.ParamPhone, e.phone(callPhoneRegexes, msg))
	case intent.MakePhoneCallWithMessage:
		setIf(params, intent.ParamPhone, e.phone(callWithMessagePhoneRegexes, msg))
		setIf(params, intent.ParamMessage, message(msg))
	case intent.SendMessage:
		setIf(params, intent.ParamRecipient, e.recipient(msg))
		setIf(params, intent.ParamMessage, message(msg))
	case intent.SendEmail:
		if email, ok := e.contacts.ExtractEmail(msg); ok {
			params[intent.ParamEmail] = email
		}
		setIf(params, intent.ParamSubject, firstCapture(subjectRegexes, msg))
		setIf(params, intent.ParamBody, firstCapture(bodyRegexes, msg))
	}

	return params
}

// ============================================================
// Extraction patterns
// ============================================================

const phoneCapture = `(\+?\d[\d\s\-().]*\d)`

var (
	fillerRegex = regexp.MustCompile(`\b(?:the|my|a|an)\b`)
	spaceRegex  = regexp.MustCompile(`\s+`)

	applicationRegexes = compileAll(
		`\bopen\s+(.+)`,
		`\blaunch\s+(.+)`,
		`\bstart\s+(.+)`,
		`\brun\s+(.+)`,
	)

	folderWordRegexes = compileAll(
		`\bopen\s+(?:my\s+|the\s+)?(\w+)\s*(?:folder|directory)\b`,
		`\bshow\s+me\s+the\s+(\w+)\s*(?:folder|directory)\b`,
		`\bgo\s+to\s+(?:my\s+)?(\w+)\s*(?:folder|directory)\b`,
	)
	openWordRegex = regexp.MustCompile(`\bopen\s+(\w+)`)

	browserRegexes = compileAll(`\b(chrome|firefox|edge|safari)\b`)

	createFileRegexes = compileAll(
		`\b(?:called|named)\s+["']?([\w.\-]+)`,
	)
	createFolderRegexes = compileAll(
		`\b(?:called|named)\s+["']?([\w.\- ]*[\w.\-])`,
	)
	deleteFileRegexes = compileAll(
		`\bfile\s+(?:called\s+|named\s+)?["']?([\w.\-]+)`,
		`\b(?:delete|remove|erase)\s+(?:the\s+|my\s+)?([\w\-]+\.\w{1,5})\b`,
	)
	deleteFolderRegexes = compileAll(
		`\b(?:folder|directory)\s+(?:called\s+|named\s+)?["']?([\w.\-]+)`,
		`\b(?:delete|remove)\s+(?:the\s+|my\s+)?([\w.\-]+)\s+(?:folder|directory)\b`,
	)
	renameFileRegexes = compileAll(
		`\brename\s+(?:the\s+)?(?:file\s+)?["']?([\w.\-]+)["']?\s+to\s+["']?([\w.\-]+)`,
	)
	renameFolderRegexes = compileAll(
		`\brename\s+(?:the\s+)?(?:folder|directory)\s+["']?([\w.\-]+)["']?\s+to\s+["']?([\w.\-]+)`,
		`\brename\s+(?:the\s+)?([\w.\-]+)\s+(?:folder|directory)\s+to\s+["']?([\w.\-]+)`,
	)
	screenshotNameRegexes = compileAll(
		`\b(?:as|named|called)\s+["']?([\w.\-]+)`,
	)

	whatsappPhoneRegexes = compileAll(
		`\bto\s+`+phoneCapture,
		`\bwhatsapp\s+`+phoneCapture,
		`\bmessage\s+`+phoneCapture,
		`\btext\s+`+phoneCapture,
	)
	callPhoneRegexes = compileAll(
		`\bto\s+`+phoneCapture,
		`\bcall\s+`+phoneCapture,
		`\bphone\s+`+phoneCapture,
		`\bdial\s+`+phoneCapture,
		`\bring\s+`+phoneCapture,
		`\bnumber\s+`+phoneCapture,
	)
	callWithMessagePhoneRegexes = compileAll(
		`\bcall\s+`+phoneCapture+`\s+and\s+(?:say|tell\s+them)\b`,
		`\bphone\s+`+phoneCapture+`\s+message\b`,
		`\bdial\s+`+phoneCapture+`\s+and\s+tell\s+them\b`,
		`\bcall\s+`+phoneCapture,
		`\bdial\s+`+phoneCapture,
		`\bto\s+`+phoneCapture,
	)
	recipientPhoneRegexes = compileAll(
		`\bto\s+`+phoneCapture,
		`\btext\s+`+phoneCapture,
		`\bmessage\s+`+phoneCapture,
		`\bcontact\s+`+phoneCapture,
		`\bsms\s+`+phoneCapture,
	)

	// Tried in order; the first non-empty capture is the message body.
	messageRegexes = compileAll(
		`\band\s+say\s+(.+)`,
		`\bsay\s+(.+)`,
		`\bsaying\s+(.+)`,
		`\band\s+tell\s+them\s+(.+)`,
		`\btell\s+them\s+(.+)`,
		`\bwith\s+(?:the\s+)?message\s+(.+)`,
		`\bthat\s+(.+)`,
		`\bmessage\s+(?:to\s+\+?[\d\s\-().]*\d\s*)?(.*)`,
	)

	timeRegexes = compileAll(
		`\bat\s+(\d{1,2}(?::\d{2})?\s*(?:am|pm)?)\b`,
	)
	trailingTimeRegex = regexp.MustCompile(`\s+at\s+\d{1,2}(?::\d{2})?\s*(?:am|pm)?$`)

	subjectRegexes = compileAll(`\bsubject\s+(.+?)(?:\s+body\s+.*)?$`)
	bodyRegexes    = compileAll(`\bbody\s+(.+)`)
)

// ============================================================
// Field helpers
// ============================================================

func (e *Extractor) application(msg string) string {
	name := firstCapture(applicationRegexes, msg)
	if name == "" {
		return ""
	}
	name = fillerRegex.ReplaceAllString(name, " ")
	return strings.TrimSpace(spaceRegex.ReplaceAllString(name, " "))
}

// folder resolves a folder name in three stages: synonym containment, then
// "<word> folder" phrasing, then the word right after "open".
func (e *Extractor) folder(msg string) string {
	for _, f := range e.catalog.folders {
		for _, s := range f.Synonyms {
			if strings.Contains(msg, s) {
				return f.Canonical
			}
		}
	}

	for _, re := range folderWordRegexes {
		if m := re.FindStringSubmatch(msg); len(m) > 1 {
			if canonical, ok := e.catalog.CanonicalFolder(m[1]); ok {
				return canonical
			}
		}
	}

	if m := openWordRegex.FindStringSubmatch(msg); len(m) > 1 {
		if canonical, ok := e.catalog.CanonicalFolder(m[1]); ok {
			return canonical
		}
	}
	return ""
}

func (e *Extractor) rename(params intent.Parameters, regexes []*regexp.Regexp, key, msg string) {
	for _, re := range regexes {
		if m := re.FindStringSubmatch(msg); len(m) > 2 {
			setIf(params, key, entryName(m[1]))
			setIf(params, intent.ParamNewName, entryName(m[2]))
			return
		}
	}
}

// phone returns the first capture, normalized when possible. An
// unnormalizable capture is kept raw so the dispatcher can report it.
func (e *Extractor) phone(regexes []*regexp.Regexp, msg string) string {
	raw := firstCapture(regexes, msg)
	if raw == "" {
		return ""
	}
	if normalized, ok := e.contacts.NormalizePhone(raw); ok {
		return normalized
	}
	return raw
}

func (e *Extractor) recipient(msg string) string {
	if email, ok := e.contacts.ExtractEmail(msg); ok {
		return email
	}
	return e.phone(recipientPhoneRegexes, msg)
}

func message(msg string) string {
	for _, re := range messageRegexes {
		m := re.FindStringSubmatch(msg)
		if len(m) < 2 {
			continue
		}
		v := strings.TrimSpace(m[1])
		if v == "" || strings.HasPrefix(v, "to ") {
			continue
		}
		return v
	}
	return ""
}

func searchQuery(regexes []*regexp.Regexp, msg string) string {
	q := firstCapture(regexes, msg)
	return strings.TrimSpace(strings.TrimRight(q, "?!."))
}

// entryName drops captures made only of dots; "." and ".." name a directory
// relative to the workspace, not an entry in it.
func entryName(name string) string {
	if strings.Trim(name, ".") == "" {
		return ""
	}
	return name
}

func stripTrailingTime(msg string) string {
	return strings.TrimSpace(trailingTimeRegex.ReplaceAllString(msg, ""))
}

func firstCapture(regexes []*regexp.Regexp, msg string) string {
	for _, re := range regexes {
		if m := re.FindStringSubmatch(msg); len(m) > 1 {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

func setIf(params intent.Parameters, key, value string) {
	if value != "" {
		params[key] = value
	}
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
