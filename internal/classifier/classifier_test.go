package classifier

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flynn-ai/deskpilot/internal/intent"
)

func TestClassify_PatternTier(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		text string
		want intent.Intent
	}{
		{"take a screenshot", intent.TakeScreenshot},
		{"capture the screen", intent.TakeScreenshot},
		{"Screenshot now please", intent.TakeScreenshot},
		{"create a folder called projects", intent.CreateFolder},
		{"make a new directory", intent.CreateFolder},
		{"create a new file called todo.txt", intent.CreateFile},
		{"make a text file named notes.md", intent.CreateFile},
		{"delete the projects folder", intent.DeleteFolder},
		{"remove folder old-stuff", intent.DeleteFolder},
		{"delete the file notes.txt", intent.DeleteFile},
		{"erase report.pdf", intent.DeleteFile},
		{"rename folder drafts to final", intent.RenameFolder},
		{"rename file a.txt to b.txt", intent.RenameFile},
		{"rename notes.txt to todo.txt", intent.RenameFile},
		{"open downloads", intent.OpenFolder},
		{"Open my Documents", intent.OpenFolder},
		{"show me the desktop", intent.OpenFolder},
		{"go to music", intent.OpenFolder},
		{"view pictures", intent.OpenFolder},
		{"open the projects folder", intent.OpenFolder},
		{"open the browser", intent.OpenBrowser},
		{"launch chrome", intent.OpenBrowser},
		{"schedule a message to 0244123456 at 5pm saying happy birthday", intent.ScheduleMessage},
		{"send whatsapp message to 0244123456 say hello", intent.SendWhatsApp},
		{"whatsapp +233244123456 hi there", intent.SendWhatsApp},
		{"send email to jane.doe@example.co to discuss budget", intent.SendEmail},
		{"email bob@mail.com subject lunch body see you at noon", intent.SendEmail},
		{"call +233 55 123 4567 and say I will be late", intent.MakePhoneCallWithMessage},
		{"dial 0244123456 and tell them i'm running late", intent.MakePhoneCallWithMessage},
		{"call 0244123456", intent.MakePhoneCall},
		{"ring 0244123456", intent.MakePhoneCall},
		{"make a call to 0551234567", intent.MakePhoneCall},
		{"text 0244123456 say hi", intent.SendMessage},
		{"sms 0244123456 running late", intent.SendMessage},
		{"search for golang tutorials", intent.SearchWeb},
		{"google best pizza in accra", intent.SearchWeb},
		{"look up the weather", intent.SearchWeb},
		{"open notepad", intent.OpenApplication},
		{"launch spotify", intent.OpenApplication},
		{"start calculator", intent.OpenApplication},
		{"run vscode", intent.OpenApplication},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, conf := c.Classify(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, intent.ConfidencePattern, conf)
		})
	}
}

func TestClassify_KeywordTier(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		text string
		want intent.Intent
	}{
		{"make a file please", intent.CreateFile},
		{"browser please", intent.OpenBrowser},
		{"the screen is dark", intent.TakeScreenshot},
		{"gmail", intent.SendEmail},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, conf := c.Classify(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, intent.ConfidenceKeyword, conf)
		})
	}
}

func TestClassify_Unknown(t *testing.T) {
	c := NewClassifier(nil)

	for _, text := range []string{"", "   ", "\t\n", "hello"} {
		got, conf := c.Classify(text)
		assert.Equal(t, intent.Unknown, got, "text %q", text)
		assert.Equal(t, intent.ConfidenceNone, conf, "text %q", text)
	}
}

func TestDefaultCatalog_Order(t *testing.T) {
	rules := DefaultCatalog().Rules()

	index := map[intent.Intent]int{}
	for i, r := range rules {
		_, dup := index[r.Intent]
		require.False(t, dup, "duplicate rule for %s", r.Intent)
		index[r.Intent] = i
		assert.NotEmpty(t, r.Patterns, "no patterns for %s", r.Intent)
	}

	for _, i := range intent.All() {
		if i == intent.Unknown {
			continue
		}
		_, ok := index[i]
		assert.True(t, ok, "missing rule for %s", i)
	}

	before := [][2]intent.Intent{
		{intent.MakePhoneCallWithMessage, intent.MakePhoneCall},
		{intent.OpenFolder, intent.OpenApplication},
		{intent.OpenBrowser, intent.OpenApplication},
		{intent.TakeScreenshot, intent.OpenApplication},
		{intent.CreateFile, intent.OpenApplication},
		{intent.SendWhatsApp, intent.SendMessage},
		{intent.ScheduleMessage, intent.SendWhatsApp},
		{intent.SearchWeb, intent.ScheduleMessage},
		{intent.SearchWeb, intent.SendWhatsApp},
		{intent.SearchWeb, intent.SendEmail},
		{intent.SearchWeb, intent.SendMessage},
		{intent.SearchWeb, intent.MakePhoneCallWithMessage},
		{intent.SearchWeb, intent.MakePhoneCall},
	}
	for _, pair := range before {
		assert.Less(t, index[pair[0]], index[pair[1]], "%s must precede %s", pair[0], pair[1])
	}
}

func TestCatalog_Injected(t *testing.T) {
	catalog := NewCatalog(
		[]Rule{{Intent: intent.SearchWeb, Patterns: []*regexp.Regexp{regexp.MustCompile(`^what is (.+)`)}}},
		[]KeywordRule{{Intent: intent.TakeScreenshot, Keywords: []string{"snap"}}},
		nil,
	)
	c := NewClassifier(&Config{Catalog: catalog})

	got, conf := c.Classify("What is Go")
	assert.Equal(t, intent.SearchWeb, got)
	assert.Equal(t, intent.ConfidencePattern, conf)

	got, conf = c.Classify("snap it")
	assert.Equal(t, intent.TakeScreenshot, got)
	assert.Equal(t, intent.ConfidenceKeyword, conf)

	got, _ = c.Classify("open downloads")
	assert.Equal(t, intent.Unknown, got)
}

func TestCatalog_CanonicalFolder(t *testing.T) {
	catalog := DefaultCatalog()

	tests := map[string]string{
		"pics":      "pictures",
		"pix":       "pictures",
		"docs":      "documents",
		"download":  "downloads",
		"Desktop":   "desktop",
		"songs":     "music",
		"films":     "videos",
		"documents": "documents",
	}
	for word, want := range tests {
		got, ok := catalog.CanonicalFolder(word)
		assert.True(t, ok, word)
		assert.Equal(t, want, got, word)
	}

	_, ok := catalog.CanonicalFolder("projects")
	assert.False(t, ok)
}
