package classifier

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/flynn-ai/deskpilot/internal/intent"
)

func TestParse_Examples(t *testing.T) {
	p := NewParser(nil)

	tests := []struct {
		text   string
		intent intent.Intent
		params intent.Parameters
	}{
		{"open downloads", intent.OpenFolder, intent.Parameters{"folder": "downloads"}},
		{"open pics", intent.OpenFolder, intent.Parameters{"folder": "pictures"}},
		{"show me my docs", intent.OpenFolder, intent.Parameters{"folder": "documents"}},
		{
			"send email to jane.doe@example.co to discuss budget",
			intent.SendEmail,
			intent.Parameters{"email": "jane.doe@example.co"},
		},
		{
			"call +233 55 123 4567 and say I will be late",
			intent.MakePhoneCallWithMessage,
			intent.Parameters{"phone": "+233551234567", "message": "i will be late"},
		},
		{"open the spotify", intent.OpenApplication, intent.Parameters{"application": "spotify"}},
		{"launch chrome", intent.OpenBrowser, intent.Parameters{"browser": "chrome"}},
		{"create a new file called todo.txt", intent.CreateFile, intent.Parameters{"filename": "todo.txt"}},
		{"make a file please", intent.CreateFile, intent.Parameters{"filename": DefaultFilename}},
		{"create a folder called summer photos", intent.CreateFolder, intent.Parameters{"folder": "summer photos"}},
		{"create a new folder", intent.CreateFolder, intent.Parameters{"folder": DefaultFolderName}},
		{"delete the documents folder", intent.DeleteFolder, intent.Parameters{"folder": "documents"}},
		{"delete the file notes.txt", intent.DeleteFile, intent.Parameters{"filename": "notes.txt"}},
		{"rename file a.txt to b.txt", intent.RenameFile, intent.Parameters{"filename": "a.txt", "new_name": "b.txt"}},
		{"rename folder drafts to final", intent.RenameFolder, intent.Parameters{"folder": "drafts", "new_name": "final"}},
		{"search for golang tutorials?", intent.SearchWeb, intent.Parameters{"query": "golang tutorials"}},
		{"take a screenshot", intent.TakeScreenshot, intent.Parameters{}},
		{"take a screenshot named desk.png", intent.TakeScreenshot, intent.Parameters{"filename": "desk.png"}},
		{
			"send whatsapp message to 0244123456 say hello",
			intent.SendWhatsApp,
			intent.Parameters{"phone": "+233244123456", "message": "hello"},
		},
		{
			"send whatsapp message to 0244123456",
			intent.SendWhatsApp,
			intent.Parameters{"phone": "+233244123456", "message": DefaultWhatsAppMessage},
		},
		{
			"schedule a message to 0244123456 at 5pm saying happy birthday",
			intent.ScheduleMessage,
			intent.Parameters{"phone": "+233244123456", "message": "happy birthday", "time": "5pm"},
		},
		{
			"text 0244123456 say hi",
			intent.SendMessage,
			intent.Parameters{"recipient": "+233244123456", "message": "hi"},
		},
		{
			"send message to bob@mail.com say hi",
			intent.SendMessage,
			intent.Parameters{"recipient": "bob@mail.com", "message": "hi"},
		},
		{
			"email bob@mail.com subject lunch body see you at noon",
			intent.SendEmail,
			intent.Parameters{"email": "bob@mail.com", "subject": "lunch", "body": "see you at noon"},
		},
		{"call 12345", intent.MakePhoneCall, intent.Parameters{"phone": "12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd := p.Parse(tt.text)
			assert.Equal(t, tt.intent, cmd.Intent)
			assert.Equal(t, tt.text, cmd.OriginalText)
			if diff := cmp.Diff(tt.params, cmd.Parameters); diff != "" {
				t.Errorf("parameters mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_BlankInput(t *testing.T) {
	p := NewParser(nil)

	for _, text := range []string{"", "   "} {
		cmd := p.Parse(text)
		assert.Equal(t, intent.Unknown, cmd.Intent)
		assert.Equal(t, intent.ConfidenceNone, cmd.Confidence)
		assert.Empty(t, cmd.Parameters)
		assert.Equal(t, text, cmd.OriginalText)
	}
}

func TestParse_PreservesOriginalCasing(t *testing.T) {
	cmd := NewParser(nil).Parse("Open DOWNLOADS")
	assert.Equal(t, "Open DOWNLOADS", cmd.OriginalText)
	assert.Equal(t, intent.ConfidencePattern, cmd.Confidence)
}

func TestParse_CountryCode(t *testing.T) {
	p := NewParser(&Config{CountryCode: "1"})

	cmd := p.Parse("call 2025550123")
	assert.Equal(t, intent.MakePhoneCall, cmd.Intent)
	assert.Equal(t, "+12025550123", cmd.Parameters["phone"])
}

func TestExtract_Idempotent(t *testing.T) {
	e := NewExtractor(nil, nil, nil)

	inputs := []struct {
		text string
		i    intent.Intent
	}{
		{"call +233 55 123 4567 and say I will be late", intent.MakePhoneCallWithMessage},
		{"open pics", intent.OpenFolder},
		{"send whatsapp message to 0244123456", intent.SendWhatsApp},
		{"email bob@mail.com subject lunch body see you at noon", intent.SendEmail},
	}

	for _, in := range inputs {
		first := e.Extract(in.text, in.i)
		second := e.Extract(in.text, in.i)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%q: extraction not stable (-first +second):\n%s", in.text, diff)
		}
	}
}

func TestExtract_MismatchedIntentOmitsFields(t *testing.T) {
	e := NewExtractor(nil, nil, nil)

	assert.Empty(t, e.Extract("hello there", intent.MakePhoneCall))
	assert.Empty(t, e.Extract("", intent.OpenFolder))
	assert.Empty(t, e.Extract("open notepad", intent.Unknown))
}

func TestExtract_FolderCascade(t *testing.T) {
	e := NewExtractor(nil, nil, nil)

	tests := map[string]string{
		"open my photos":          "pictures",
		"go to the movies folder": "videos",
		"show me the desk":        "desktop",
		"open the downloads":      "downloads",
	}
	for text, want := range tests {
		assert.Equal(t, want, e.Extract(text, intent.OpenFolder)["folder"], text)
	}

	_, ok := e.Extract("open the projects folder", intent.OpenFolder)["folder"]
	assert.False(t, ok)
}

func TestParse_SearchBeatsMessagingAndCalls(t *testing.T) {
	p := NewParser(nil)

	tests := map[string]string{
		"search for how to text 0244123456":      "how to text 0244123456",
		"google how to call mom on her birthday": "how to call mom on her birthday",
		"look up email etiquette":                "email etiquette",
		"search for whatsapp web tips":           "whatsapp web tips",
		"find the dial code for ghana":           "the dial code for ghana",
	}
	for text, query := range tests {
		t.Run(text, func(t *testing.T) {
			cmd := p.Parse(text)
			assert.Equal(t, intent.SearchWeb, cmd.Intent)
			assert.Equal(t, intent.ConfidencePattern, cmd.Confidence)
			if diff := cmp.Diff(intent.Parameters{"query": query}, cmd.Parameters); diff != "" {
				t.Errorf("parameters mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtract_DotNamesOmitted(t *testing.T) {
	e := NewExtractor(nil, nil, nil)

	for _, text := range []string{"delete folder .", "delete folder ..", "remove the directory called ...", "delete folder ./"} {
		_, ok := e.Extract(text, intent.DeleteFolder)["folder"]
		assert.False(t, ok, text)
	}
	_, ok := e.Extract("delete the file ..", intent.DeleteFile)["filename"]
	assert.False(t, ok)

	assert.Equal(t, DefaultFolderName, e.Extract("create a folder called ..", intent.CreateFolder)["folder"])
	assert.Equal(t, DefaultFilename, e.Extract("create a file called .", intent.CreateFile)["filename"])
	assert.Equal(t, ".env", e.Extract("create a file called .env", intent.CreateFile)["filename"])
	assert.Equal(t, "old.stuff", e.Extract("delete folder old.stuff", intent.DeleteFolder)["folder"])
}

func TestExtract_LogsRecoveredPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	// a nil pattern makes extraction panic
	catalog := NewCatalog([]Rule{{Intent: intent.SearchWeb, Patterns: []*regexp.Regexp{nil}}}, nil, nil)
	e := NewExtractor(catalog, nil, zap.New(core))

	var params intent.Parameters
	require.NotPanics(t, func() { params = e.Extract("search for cats", intent.SearchWeb) })
	assert.Empty(t, params)

	entries := logs.FilterMessage("extraction failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "search_web", entries[0].ContextMap()["intent"])
}
