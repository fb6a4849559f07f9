// Package classifier provides rule-based intent pattern matching.
package classifier

import (
	"regexp"
	"sort"
	"strings"

	"github.com/flynn-ai/deskpilot/internal/intent"
)

// Rule maps an intent to an ordered list of patterns.
type Rule struct {
	Intent   intent.Intent
	Patterns []*regexp.Regexp
}

// Match returns the first pattern that matches the lowercased message.
func (r Rule) Match(msg string) (*regexp.Regexp, bool) {
	for _, p := range r.Patterns {
		if p.MatchString(msg) {
			return p, true
		}
	}
	return nil, false
}

// KeywordRule is a fallback: any keyword contained in the message selects
// the intent.
type KeywordRule struct {
	Intent   intent.Intent
	Keywords []string
}

// Matches reports whether any keyword is a substring of msg.
func (k KeywordRule) Matches(msg string) bool {
	for _, kw := range k.Keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// FolderSynonyms lists the words that refer to one well-known folder.
type FolderSynonyms struct {
	Canonical string
	Synonyms  []string
}

// Catalog is the ordered, read-only knowledge of how phrasings map to
// intents. Rules are tried top to bottom and the first match wins, so an
// intent whose patterns overlap a more generic one must come first.
type Catalog struct {
	rules    []Rule
	keywords []KeywordRule
	folders  []FolderSynonyms
}

// NewCatalog builds a catalog from explicit tables. The slices are copied.
func NewCatalog(rules []Rule, keywords []KeywordRule, folders []FolderSynonyms) *Catalog {
	c := &Catalog{
		rules:    make([]Rule, len(rules)),
		keywords: make([]KeywordRule, len(keywords)),
		folders:  make([]FolderSynonyms, len(folders)),
	}
	copy(c.rules, rules)
	copy(c.keywords, keywords)
	copy(c.folders, folders)
	return c
}

// Rules returns the pattern rules in priority order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Keywords returns the keyword fallback table in priority order.
func (c *Catalog) Keywords() []KeywordRule {
	out := make([]KeywordRule, len(c.keywords))
	copy(out, c.keywords)
	return out
}

// Folders returns the folder synonym table in priority order.
func (c *Catalog) Folders() []FolderSynonyms {
	out := make([]FolderSynonyms, len(c.folders))
	copy(out, c.folders)
	return out
}

// PatternsFor returns the patterns registered for i.
func (c *Catalog) PatternsFor(i intent.Intent) []*regexp.Regexp {
	for _, r := range c.rules {
		if r.Intent == i {
			return r.Patterns
		}
	}
	return nil
}

// CanonicalFolder maps an exact folder word or synonym to its canonical name.
func (c *Catalog) CanonicalFolder(word string) (string, bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	for _, f := range c.folders {
		if word == f.Canonical {
			return f.Canonical, true
		}
		for _, s := range f.Synonyms {
			if word == s {
				return f.Canonical, true
			}
		}
	}
	return "", false
}

// folderAlternation returns every folder word as a regexp alternation,
// longest first.
func folderAlternation(folders []FolderSynonyms) string {
	seen := map[string]bool{}
	var words []string
	for _, f := range folders {
		for _, w := range append([]string{f.Canonical}, f.Synonyms...) {
			if !seen[w] {
				seen[w] = true
				words = append(words, regexp.QuoteMeta(w))
			}
		}
	}
	sort.SliceStable(words, func(i, j int) bool { return len(words[i]) > len(words[j]) })
	return strings.Join(words, "|")
}

// ============================================================
// Default tables
// ============================================================

func defaultFolders() []FolderSynonyms {
	return []FolderSynonyms{
		{Canonical: "documents", Synonyms: []string{"documents", "docs", "document", "doc"}},
		{Canonical: "downloads", Synonyms: []string{"downloads", "download"}},
		{Canonical: "pictures", Synonyms: []string{"pictures", "pics", "pix", "photos", "images", "photo", "image", "picture"}},
		{Canonical: "music", Synonyms: []string{"music", "songs", "tunes"}},
		{Canonical: "videos", Synonyms: []string{"videos", "video", "movies", "films"}},
		{Canonical: "desktop", Synonyms: []string{"desktop", "desk"}},
	}
}

func defaultKeywords() []KeywordRule {
	return []KeywordRule{
		{intent.OpenApplication, []string{"open", "launch", "start", "run", "app", "application", "program", "software"}},
		{intent.OpenFolder, []string{"folder", "directory", "documents", "document", "downloads", "download", "pictures", "picture",
			"music", "videos", "video", "desktop", "photos", "images", "docs", "pics", "pix"}},
		{intent.CreateFile, []string{"create", "make", "new", "file", "document"}},
		{intent.TakeScreenshot, []string{"screenshot", "capture", "screen", "shot"}},
		{intent.OpenBrowser, []string{"browser", "chrome", "firefox", "edge", "safari", "internet", "web"}},
		{intent.SearchWeb, []string{"search", "google", "look up", "find", "query"}},
		{intent.SendWhatsApp, []string{"whatsapp", "message", "text", "send", "whats app"}},
		{intent.SendEmail, []string{"email", "mail", "send email", "compose", "gmail"}},
		{intent.SendMessage, []string{"message", "text", "contact", "reach", "sms"}},
		{intent.MakePhoneCall, []string{"call", "phone", "dial", "ring", "contact", "number"}},
	}
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

func defaultRules(folders []FolderSynonyms) []Rule {
	fw := folderAlternation(folders)

	return []Rule{
		// ============================================================
		// SCREEN
		// ============================================================
		{intent.TakeScreenshot, compileAll(
			`\btake\s+(?:a\s+)?screenshot`,
			`\bcapture\s+(?:the\s+|my\s+)?screen`,
			`\bscreenshot\b`,
			`\btake\s+(?:a\s+)?screen\s+shot`,
		)},

		// ============================================================
		// FILESYSTEM MUTATIONS
		// ============================================================
		{intent.CreateFolder, compileAll(
			`\b(?:create|make)\s+(?:a\s+)?(?:new\s+)?(?:folder|directory)\b`,
			`\bnew\s+(?:folder|directory)\s+(?:called|named)\b`,
		)},
		{intent.CreateFile, compileAll(
			`\b(?:create|make)\s+(?:a\s+)?new\s+(?:text\s+)?(?:file|document)\b`,
			`\b(?:create|make)\s+(?:a\s+)?(?:text\s+)?(?:file|document)\s+(?:called|named)\s+\S`,
			`^\s*new\s+(?:text\s+)?(?:file|document)\b`,
		)},
		{intent.DeleteFolder, compileAll(
			`\b(?:delete|remove)\s+(?:the\s+|my\s+)?(?:folder|directory)\s+\S`,
			`\b(?:delete|remove)\s+(?:the\s+|my\s+)?[\w.\-]+\s+(?:folder|directory)\b`,
		)},
		{intent.DeleteFile, compileAll(
			`\b(?:delete|remove|erase)\s+(?:the\s+|my\s+)?file\s+\S`,
			`\b(?:delete|remove|erase)\s+(?:the\s+|my\s+)?[\w\-]+\.\w{1,5}\b`,
		)},
		{intent.RenameFolder, compileAll(
			`\brename\s+(?:the\s+)?(?:folder|directory)\s+\S+\s+to\s+\S`,
			`\brename\s+(?:the\s+)?[\w.\-]+\s+(?:folder|directory)\s+to\s+\S`,
		)},
		{intent.RenameFile, compileAll(
			`\brename\s+(?:the\s+)?file\s+\S+\s+to\s+\S`,
			`\brename\s+(?:the\s+)?[\w\-]+\.\w{1,5}\s+to\s+\S`,
		)},

		// ============================================================
		// FOLDERS AND BROWSER
		// ============================================================
		{intent.OpenFolder, compileAll(
			`\bopen\s+(?:my\s+|the\s+)?(`+fw+`)\b`,
			`\bshow\s+(?:me\s+)?(?:my\s+|the\s+)?(`+fw+`)\b`,
			`\bview\s+(?:my\s+|the\s+)?(`+fw+`)\b`,
			`\bgo\s+to\s+(?:my\s+|the\s+)?(`+fw+`)\b`,
			`\bopen\s+(?:my\s+|the\s+)?(\w+)\s*(?:folder|directory)\b`,
			`\bshow\s+me\s+the\s+(\w+)\s*(?:folder|directory)\b`,
		)},
		{intent.OpenBrowser, compileAll(
			`\b(?:open|launch|start)\s+(?:the\s+|my\s+)?(?:web\s+)?(browser|chrome|firefox|edge|safari|internet|web)\b`,
		)},

		// ============================================================
		// WEB SEARCH
		// ============================================================
		{intent.SearchWeb, compileAll(
			`\bsearch\s+(?:the\s+)?(?:web|internet|online)\s+for\s+(.+)`,
			`\bsearch\s+for\s+(.+)`,
			`\bgoogle\s+(.+)`,
			`\blook\s+up\s+(.+)`,
			`\bfind\s+(.+)`,
			`\bsearch\s+(.+)`,
		)},

		// ============================================================
		// MESSAGING AND CALLS
		// ============================================================
		{intent.ScheduleMessage, compileAll(
			`\bschedule\s+(?:a\s+)?(?:whatsapp\s+)?(?:message|text)\b`,
			`\bschedule\s+.*\bto\s+\+?\d`,
		)},
		{intent.SendWhatsApp, compileAll(
			`\bsend\s+(?:a\s+)?whatsapp\s+(?:message|text)\s+to\s+(.+)`,
			`\bwhatsapp\s+(.+)`,
			`\bmessage\s+(.+)\s+on\s+whatsapp`,
			`\bsend\s+(?:a\s+)?message\s+to\s+(.+)\s+on\s+whatsapp`,
			`\btext\s+(.+)\s+on\s+whatsapp`,
		)},
		{intent.SendEmail, compileAll(
			`\bsend\s+(?:an\s+)?e-?mail\s+to\s+(.+)`,
			`\be-?mail\s+(.+)`,
			`\bcompose\s+(?:an\s+)?e-?mail\s+to\s+(.+)`,
			`\bsend\s+(?:a\s+)?mail\s+to\s+(.+)`,
			`\bwrite\s+(?:an\s+)?e-?mail\s+to\s+(.+)`,
		)},
		{intent.MakePhoneCallWithMessage, compileAll(
			`\bcall\s+(.+)\s+and\s+say\s+(.+)`,
			`\bphone\s+(.+)\s+message\s+(.+)`,
			`\bdial\s+(.+)\s+and\s+tell\s+them\s+(.+)`,
			`\bcall\s+(.+)\s+and\s+tell\s+them\s+(.+)`,
		)},
		{intent.MakePhoneCall, compileAll(
			`\bcall\s+(.+)`,
			`\bphone\s+call\s+to\s+(.+)`,
			`\bdial\s+(.+)`,
			`\bring\s+(.+)`,
			`\bmake\s+(?:a\s+)?call\s+to\s+(.+)`,
		)},
		{intent.SendMessage, compileAll(
			`\bsend\s+(?:a\s+)?message\s+to\s+(.+)`,
			`\btext\s+(.+)`,
			`\bmessage\s+(.+)`,
			`\bcontact\s+(.+)`,
			`\bsms\s+(.+)`,
		)},

		// ============================================================
		// CATCH-ALL
		// ============================================================
		{intent.OpenApplication, compileAll(
			`\bopen\s+(.+)$`,
			`\blaunch\s+(.+)$`,
			`\bstart\s+(.+)$`,
			`\brun\s+(.+)$`,
		)},
	}
}

// DefaultCatalog returns the built-in catalog. Each call builds a fresh value.
func DefaultCatalog() *Catalog {
	folders := defaultFolders()
	return NewCatalog(defaultRules(folders), defaultKeywords(), folders)
}
