package executor

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flynn-ai/deskpilot/internal/backend"
	"github.com/flynn-ai/deskpilot/internal/classifier"
	"github.com/flynn-ai/deskpilot/internal/config"
	"github.com/flynn-ai/deskpilot/internal/errors"
	"github.com/flynn-ai/deskpilot/internal/intent"
	"github.com/flynn-ai/deskpilot/internal/safety"
	"github.com/flynn-ai/deskpilot/internal/telephony"
)

// ============================================================
// Fakes
// ============================================================

type fakeLauncher struct {
	spawned  []string
	opened   []string
	revealed []string
	urls     []string
	captured []string
	openErr  error
}

var _ backend.Launcher = (*fakeLauncher)(nil)

func (f *fakeLauncher) SpawnProcess(_ context.Context, path string, _ ...string) error {
	f.spawned = append(f.spawned, path)
	return nil
}

func (f *fakeLauncher) OpenPath(_ context.Context, path string) error {
	f.opened = append(f.opened, path)
	return f.openErr
}

func (f *fakeLauncher) RevealPath(_ context.Context, path string) error {
	f.revealed = append(f.revealed, path)
	return nil
}

func (f *fakeLauncher) OpenURL(_ context.Context, url string) error {
	f.urls = append(f.urls, url)
	return nil
}

func (f *fakeLauncher) CaptureScreen(_ context.Context, dest string) error {
	f.captured = append(f.captured, dest)
	return nil
}

// recordingFS passes through to the disk and records every mutating call.
type recordingFS struct {
	backend.OSFileSystem
	calls []string
}

func (r *recordingFS) CreateFile(path string) error {
	r.calls = append(r.calls, "create "+path)
	return r.OSFileSystem.CreateFile(path)
}

func (r *recordingFS) MkdirAll(path string) error {
	r.calls = append(r.calls, "mkdir "+path)
	return r.OSFileSystem.MkdirAll(path)
}

func (r *recordingFS) Remove(path string) error {
	r.calls = append(r.calls, "remove "+path)
	return r.OSFileSystem.Remove(path)
}

func (r *recordingFS) RemoveAll(path string) error {
	r.calls = append(r.calls, "removeall "+path)
	return r.OSFileSystem.RemoveAll(path)
}

type sent struct {
	kind, to, subject, body string
}

type fakeMessenger struct {
	sent []sent
	err  error
}

func (f *fakeMessenger) SendWhatsApp(_ context.Context, phone, message string) (string, error) {
	f.sent = append(f.sent, sent{kind: "whatsapp", to: phone, body: message})
	if f.err != nil {
		return "", f.err
	}
	return "WhatsApp message sent to " + phone, nil
}

func (f *fakeMessenger) SendEmail(_ context.Context, to, subject, body string) (string, error) {
	f.sent = append(f.sent, sent{kind: "email", to: to, subject: subject, body: body})
	if f.err != nil {
		return "", f.err
	}
	return "Email sent to " + to, nil
}

type fakeScheduler struct {
	phone, message string
	at             time.Time
}

func (f *fakeScheduler) ScheduleWhatsApp(_ context.Context, phone, message string, at time.Time) (string, error) {
	f.phone, f.message, f.at = phone, message, at
	return "Message scheduled for " + at.Format("15:04"), nil
}

type fakeTelephony struct {
	phone, message string
}

func (f *fakeTelephony) PlaceCall(_ context.Context, phone, message string) (string, error) {
	f.phone, f.message = phone, message
	return "Call initiated to " + phone + " (SID: CA123)", nil
}

type fakeDialer struct {
	name  string
	err   error
	dials []string
}

func (f *fakeDialer) Name() string { return f.name }

func (f *fakeDialer) Dial(_ context.Context, phone string) (string, error) {
	f.dials = append(f.dials, phone)
	if f.err != nil {
		return "", f.err
	}
	return "Attempting to call " + phone + " via " + f.name, nil
}

// ============================================================
// Fixture
// ============================================================

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.Local)

type fixture struct {
	workspace string
	home      string
	launcher  *fakeLauncher
	fs        *recordingFS
	messenger *fakeMessenger
	scheduler *fakeScheduler
	phone     *fakeTelephony
	cfg       Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		workspace: filepath.Join(root, "workspace"),
		home:      filepath.Join(root, "home"),
		launcher:  &fakeLauncher{},
		fs:        &recordingFS{},
		messenger: &fakeMessenger{},
		scheduler: &fakeScheduler{},
		phone:     &fakeTelephony{},
	}
	require.NoError(t, os.MkdirAll(f.workspace, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(f.home, "Downloads"), 0o755))

	f.cfg = Config{
		Backends: backend.Set{
			Launcher:  f.launcher,
			Files:     f.fs,
			Messenger: f.messenger,
			Scheduler: f.scheduler,
			Telephony: f.phone,
		},
		Policy:         safety.NewPolicy([]string{f.workspace}, []string{"rm -rf", "shutdown"}, nil),
		WorkspaceDir:   f.workspace,
		ScreenshotsDir: filepath.Join(root, "shots"),
		Folders: map[string]string{
			"downloads": filepath.Join(f.home, "Downloads"),
			"pictures":  filepath.Join(f.home, "Pictures"),
		},
		Applications: map[string]string{"notepad": "/usr/bin/gedit", "chrome": "/opt/chrome"},
		Clock:        func() time.Time { return fixedNow },
	}
	return f
}

func (f *fixture) dispatcher() *Dispatcher {
	return NewDispatcher(f.cfg)
}

func cmd(i intent.Intent, params intent.Parameters) intent.ParsedCommand {
	return intent.New(i, intent.ConfidencePattern, params, "")
}

// ============================================================
// Registry
// ============================================================

func TestRegistry_CoversEveryActionableIntent(t *testing.T) {
	d := NewDispatcher(Config{})
	for _, i := range intent.All() {
		_, ok := d.Registry().Get(i)
		assert.Equal(t, i != intent.Unknown, ok, "handler for %s", i)
	}
	assert.Len(t, d.Registry().List(), len(intent.All())-1)
}

func TestDispatch_Unknown(t *testing.T) {
	d := newFixture(t).dispatcher()

	res := d.Execute(context.Background(), intent.Unrecognized("sing me a song"))
	assert.False(t, res.Success)
	assert.Equal(t, NoMatchMessage, res.Message)
	assert.Equal(t, errors.CodeNoMatch, res.Code)
}

func TestDispatch_RecoversPanics(t *testing.T) {
	d := newFixture(t).dispatcher()
	d.Registry().Register(HandlerFunc{
		For: intent.OpenBrowser,
		Fn: func(context.Context, intent.ParsedCommand) (string, error) {
			panic("boom")
		},
	})

	assert.Equal(t, "Error: boom", d.Dispatch(context.Background(), cmd(intent.OpenBrowser, nil)))
}

// ============================================================
// Files and folders
// ============================================================

func TestCreateFile(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher()

	got := d.Dispatch(context.Background(), cmd(intent.CreateFile, intent.Parameters{"filename": "notes.txt"}))
	path := filepath.Join(f.workspace, "notes.txt")
	assert.Equal(t, "Created file: "+path, got)
	assert.FileExists(t, path)

	res := d.Execute(context.Background(), cmd(intent.CreateFile, intent.Parameters{"filename": "notes.txt"}))
	assert.False(t, res.Success)
	assert.Equal(t, "File notes.txt already exists", res.Message)
}

func TestUnsafePathsPerformNoIO(t *testing.T) {
	tests := []struct {
		name   string
		intent intent.Intent
		params intent.Parameters
		want   string
	}{
		{"create file outside", intent.CreateFile, intent.Parameters{"filename": "/etc/evil.txt"}, "Cannot create file in this location for security reasons"},
		{"create file traversal", intent.CreateFile, intent.Parameters{"filename": "../escape.txt"}, "Cannot create file in this location for security reasons"},
		{"create folder outside", intent.CreateFolder, intent.Parameters{"folder": "/tmp/outside"}, "Cannot create folder in this location for security reasons"},
		{"delete file outside", intent.DeleteFile, intent.Parameters{"filename": "/etc/hosts"}, "Cannot delete file from this location for security reasons"},
		{"delete folder outside", intent.DeleteFolder, intent.Parameters{"folder": "../../home"}, "Cannot delete folder from this location for security reasons"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			res := f.dispatcher().Execute(context.Background(), cmd(tt.intent, tt.params))
			assert.Equal(t, tt.want, res.Message)
			assert.Equal(t, errors.CodeSafetyRejection, res.Code)
			assert.Empty(t, f.fs.calls, "no filesystem calls after a refusal")
		})
	}
}

func TestWorkspaceRootsAreNeverTargets(t *testing.T) {
	tests := []struct {
		name   string
		intent intent.Intent
		param  string
		value  func(f *fixture) string
		want   string
	}{
		{"delete folder dot", intent.DeleteFolder, "folder", func(*fixture) string { return "." }, "Cannot delete folder from this location for security reasons"},
		{"delete folder dot dot", intent.DeleteFolder, "folder", func(*fixture) string { return ".." }, "Cannot delete folder from this location for security reasons"},
		{"delete folder workspace", intent.DeleteFolder, "folder", func(f *fixture) string { return f.workspace }, "Cannot delete folder from this location for security reasons"},
		{"delete folder workspace slash", intent.DeleteFolder, "folder", func(f *fixture) string { return f.workspace + "/" }, "Cannot delete folder from this location for security reasons"},
		{"delete folder known folder", intent.DeleteFolder, "folder", func(*fixture) string { return "projects" }, "Cannot delete folder from this location for security reasons"},
		{"delete folder dot slash", intent.DeleteFolder, "folder", func(*fixture) string { return "./" }, "Cannot delete folder from this location for security reasons"},
		{"delete file dot", intent.DeleteFile, "filename", func(*fixture) string { return "." }, "Cannot delete file from this location for security reasons"},
		{"create folder dot", intent.CreateFolder, "folder", func(*fixture) string { return "." }, "Cannot create folder in this location for security reasons"},
		{"create file dot", intent.CreateFile, "filename", func(*fixture) string { return "." }, "Cannot create file in this location for security reasons"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			projects := filepath.Join(f.workspace, "projects")
			require.NoError(t, os.MkdirAll(projects, 0o755))
			f.cfg.Folders["projects"] = projects

			res := f.dispatcher().Execute(context.Background(), cmd(tt.intent, intent.Parameters{tt.param: tt.value(f)}))
			assert.Equal(t, tt.want, res.Message)
			assert.Equal(t, errors.CodeSafetyRejection, res.Code)
			assert.Empty(t, f.fs.calls, "no filesystem calls after a refusal")
			assert.DirExists(t, f.workspace)
			assert.DirExists(t, projects)
		})
	}
}

func TestDeleteFolder_ParsedDotNames(t *testing.T) {
	parser := classifier.NewParser(nil)
	for _, text := range []string{"delete folder .", "delete folder ..", "remove the directory called ..", "delete folder ./"} {
		t.Run(text, func(t *testing.T) {
			f := newFixture(t)
			parsed := parser.Parse(text)
			require.Equal(t, intent.DeleteFolder, parsed.Intent)

			res := f.dispatcher().Execute(context.Background(), parsed)
			assert.False(t, res.Success)
			assert.Equal(t, errors.CodeMissingParameter, res.Code)
			assert.Empty(t, f.fs.calls)
			assert.DirExists(t, f.workspace)
		})
	}
}

func TestDeleteFolder_ProtectedNamesAlwaysRefused(t *testing.T) {
	for _, name := range []string{"documents", "Docs", "downloads", "pics", "music", "videos", "movies"} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			// Even an existing folder inside the workspace stays protected.
			require.NoError(t, os.MkdirAll(filepath.Join(f.workspace, name), 0o755))

			got := f.dispatcher().Dispatch(context.Background(), cmd(intent.DeleteFolder, intent.Parameters{"folder": name}))
			assert.Equal(t, "Cannot delete the "+name+" folder for security reasons", got)
			assert.Empty(t, f.fs.calls)
			assert.DirExists(t, filepath.Join(f.workspace, name))
		})
	}
}

func TestDeleteFileAndFolder(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher()
	ctx := context.Background()

	assert.Equal(t, "File gone.txt doesn't exist",
		d.Dispatch(ctx, cmd(intent.DeleteFile, intent.Parameters{"filename": "gone.txt"})))

	file := filepath.Join(f.workspace, "old.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.Equal(t, "Deleted file: "+file,
		d.Dispatch(ctx, cmd(intent.DeleteFile, intent.Parameters{"filename": "old.txt"})))
	assert.NoFileExists(t, file)

	dir := filepath.Join(f.workspace, "projects")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	assert.Equal(t, "Deleted folder: "+dir,
		d.Dispatch(ctx, cmd(intent.DeleteFolder, intent.Parameters{"folder": "projects"})))
	assert.NoDirExists(t, dir)

	assert.Equal(t, "Folder projects doesn't exist",
		d.Dispatch(ctx, cmd(intent.DeleteFolder, intent.Parameters{"folder": "projects"})))
}

func TestCreateFolder(t *testing.T) {
	f := newFixture(t)
	got := f.dispatcher().Dispatch(context.Background(), cmd(intent.CreateFolder, intent.Parameters{"folder": "reports"}))
	assert.Equal(t, "Created folder: "+filepath.Join(f.workspace, "reports"), got)
	assert.DirExists(t, filepath.Join(f.workspace, "reports"))
}

func TestMissingParameters(t *testing.T) {
	d := newFixture(t).dispatcher()
	tests := map[intent.Intent]string{
		intent.CreateFile:               "No filename specified",
		intent.CreateFolder:             "No folder name specified",
		intent.SendWhatsApp:             "Please specify a phone number to send WhatsApp message to. Example: 'Send WhatsApp to +233123456789'",
		intent.SendEmail:                "Please specify an email address to send message to. Example: 'Send email to example@gmail.com'",
		intent.SendMessage:              "Please specify a recipient for the message.",
		intent.ScheduleMessage:          "Please specify a recipient for the scheduled message.",
		intent.MakePhoneCall:            "Please specify a phone number to call.",
		intent.MakePhoneCallWithMessage: "Please specify a phone number to call.",
	}
	for i, want := range tests {
		res := d.Execute(context.Background(), cmd(i, nil))
		assert.Equal(t, want, res.Message, i)
		assert.Equal(t, errors.CodeMissingParameter, res.Code, i)
	}

	got := d.Dispatch(context.Background(), cmd(intent.MakePhoneCallWithMessage, intent.Parameters{"phone": "+233551234567"}))
	assert.Equal(t, "Please specify a message to deliver.", got)
}

func TestOpenFolder(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher()
	ctx := context.Background()

	assert.Equal(t, "Opened downloads folder", d.Dispatch(ctx, cmd(intent.OpenFolder, intent.Parameters{"folder": "downloads"})))
	assert.Equal(t, []string{filepath.Join(f.home, "Downloads")}, f.launcher.opened)

	assert.Equal(t, "Opened downloads folder", d.Dispatch(ctx, cmd(intent.OpenFolder, intent.Parameters{"folder": "download"})),
		"synonyms resolve through the catalog")

	assert.Equal(t, "pictures folder doesn't exist at: "+filepath.Join(f.home, "Pictures"),
		d.Dispatch(ctx, cmd(intent.OpenFolder, intent.Parameters{"folder": "pictures"})))

	assert.Equal(t, "Opened folder: "+f.workspace,
		d.Dispatch(ctx, cmd(intent.OpenFolder, intent.Parameters{"folder": f.workspace})))

	assert.Equal(t, "Folder 'secret stash' not supported. Try: documents, downloads, pictures, music, videos, desktop",
		d.Dispatch(ctx, cmd(intent.OpenFolder, intent.Parameters{"folder": "secret stash"})))
}

func TestOpenFolder_SingularFallback(t *testing.T) {
	f := newFixture(t)
	f.cfg.Folders["project"] = f.workspace
	got := f.dispatcher().Dispatch(context.Background(), cmd(intent.OpenFolder, intent.Parameters{"folder": "projects"}))
	assert.Equal(t, "Opened project folder", got)
}

func TestOpenFolder_FallsBackToFileManager(t *testing.T) {
	f := newFixture(t)
	f.launcher.openErr = stderrors.New("no handler")

	got := f.dispatcher().Dispatch(context.Background(), cmd(intent.OpenFolder, intent.Parameters{"folder": "downloads"}))
	assert.Equal(t, "Opened downloads folder", got)
	assert.Equal(t, []string{filepath.Join(f.home, "Downloads")}, f.launcher.revealed)
}

func TestRename(t *testing.T) {
	d := newFixture(t).dispatcher()
	for _, i := range []intent.Intent{intent.RenameFile, intent.RenameFolder} {
		got := d.Dispatch(context.Background(), cmd(i, intent.Parameters{"filename": "a", "new_name": "b"}))
		assert.Equal(t, "Rename functionality not yet implemented", got)
	}
}

// ============================================================
// System
// ============================================================

func TestOpenApplication(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher()
	ctx := context.Background()

	assert.Equal(t, "Opened Notepad", d.Dispatch(ctx, cmd(intent.OpenApplication, intent.Parameters{"application": "Notepad"})))
	assert.Equal(t, []string{"/usr/bin/gedit"}, f.launcher.spawned)

	res := d.Execute(ctx, cmd(intent.OpenApplication, intent.Parameters{"application": "spotify"}))
	assert.Equal(t, "Application 'spotify' not configured", res.Message)
	assert.Equal(t, errors.CodeNotConfigured, res.Code)
}

func TestOpenBrowser(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher()

	got := d.Dispatch(context.Background(), cmd(intent.OpenBrowser, intent.Parameters{"browser": "chrome"}))
	assert.Equal(t, "Opened default browser", got, "configured browser path does not exist")
	assert.Equal(t, []string{"https://www.google.com"}, f.launcher.urls)

	chrome := filepath.Join(f.workspace, "chrome")
	require.NoError(t, os.WriteFile(chrome, nil, 0o755))
	f.cfg.Applications["chrome"] = chrome
	got = f.dispatcher().Dispatch(context.Background(), cmd(intent.OpenBrowser, intent.Parameters{"browser": "chrome"}))
	assert.Equal(t, "Opened chrome", got)
	assert.Equal(t, []string{chrome}, f.launcher.spawned)
}

func TestSearchWeb(t *testing.T) {
	f := newFixture(t)
	got := f.dispatcher().Dispatch(context.Background(), cmd(intent.SearchWeb, intent.Parameters{"query": "golang generics & you"}))
	assert.Equal(t, "Searching for: golang generics & you", got)
	assert.Equal(t, []string{"https://www.google.com/search?q=golang+generics+%26+you"}, f.launcher.urls)
}

func TestTakeScreenshot(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher()

	want := filepath.Join(f.cfg.ScreenshotsDir, "screenshot_20261019_093000.png")
	assert.Equal(t, "Screenshot saved as: "+want, d.Dispatch(context.Background(), cmd(intent.TakeScreenshot, nil)))
	assert.DirExists(t, f.cfg.ScreenshotsDir)

	named := filepath.Join(f.cfg.ScreenshotsDir, "login.png")
	assert.Equal(t, "Screenshot saved as: "+named,
		d.Dispatch(context.Background(), cmd(intent.TakeScreenshot, intent.Parameters{"filename": "login"})))
	assert.Equal(t, []string{want, named}, f.launcher.captured)
}

func TestNoLauncher(t *testing.T) {
	f := newFixture(t)
	f.cfg.Backends.Launcher = nil
	res := f.dispatcher().Execute(context.Background(), cmd(intent.SearchWeb, intent.Parameters{"query": "go"}))
	assert.Equal(t, errors.CodeNotConfigured, res.Code)
}

func TestIsDangerousCommand(t *testing.T) {
	d := newFixture(t).dispatcher()
	assert.True(t, d.IsDangerousCommand("sudo RM -RF /"))
	assert.False(t, d.IsDangerousCommand("ls -la"))
}

// ============================================================
// Messaging and telephony
// ============================================================

func TestSendWhatsApp(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher()

	got := d.Dispatch(context.Background(), cmd(intent.SendWhatsApp, intent.Parameters{"phone": "0244123456"}))
	assert.Equal(t, "WhatsApp message sent to +233244123456", got)
	assert.Equal(t, []sent{{kind: "whatsapp", to: "+233244123456", body: classifier.DefaultWhatsAppMessage}}, f.messenger.sent)

	res := d.Execute(context.Background(), cmd(intent.SendWhatsApp, intent.Parameters{"phone": "12345"}))
	assert.Equal(t, "Invalid phone number: 12345", res.Message)
	assert.Equal(t, errors.CodeInvalidContact, res.Code)
}

func TestSendMessage_RoutesByRecipient(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher()
	ctx := context.Background()

	assert.Equal(t, "Email sent to ann@example.com",
		d.Dispatch(ctx, cmd(intent.SendMessage, intent.Parameters{"recipient": "ann@example.com", "message": "running late"})))
	assert.Equal(t, "WhatsApp message sent to +233244123456",
		d.Dispatch(ctx, cmd(intent.SendMessage, intent.Parameters{"recipient": "0244123456", "message": "hi"})))
	assert.Equal(t, []sent{
		{kind: "email", to: "ann@example.com", subject: "Message from AI Assistant", body: "running late"},
		{kind: "whatsapp", to: "+233244123456", body: "hi"},
	}, f.messenger.sent)

	assert.Equal(t, "Please specify a valid phone number or email address.",
		d.Dispatch(ctx, cmd(intent.SendMessage, intent.Parameters{"recipient": "bob"})))
}

func TestSendEmail_BackendFailure(t *testing.T) {
	f := newFixture(t)
	f.messenger.err = stderrors.New("connection refused")

	res := f.dispatcher().Execute(context.Background(), cmd(intent.SendEmail, intent.Parameters{"email": "ann@example.com"}))
	assert.Equal(t, "Failed to send email: connection refused", res.Message)
	assert.Equal(t, errors.CodeBackendFailure, res.Code)
	assert.Equal(t, []sent{{kind: "email", to: "ann@example.com", subject: "Message from AI Assistant",
		body: "This is an automated message from your AI assistant."}}, f.messenger.sent)
}

func TestSendEmail_NotConfiguredPassesThrough(t *testing.T) {
	f := newFixture(t)
	f.messenger.err = errors.NotConfigured("Email configuration not set up. Please configure email settings.")

	got := f.dispatcher().Dispatch(context.Background(), cmd(intent.SendEmail, intent.Parameters{"email": "ann@example.com"}))
	assert.Equal(t, "Email configuration not set up. Please configure email settings.", got)
}

func TestScheduleMessage(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher()

	got := d.Dispatch(context.Background(), cmd(intent.ScheduleMessage,
		intent.Parameters{"phone": "+233244123456", "message": "stand-up", "time": "5pm"}))
	assert.Equal(t, "Message scheduled for 17:00", got)
	assert.Equal(t, "+233244123456", f.scheduler.phone)
	assert.Equal(t, "stand-up", f.scheduler.message)
	assert.Equal(t, time.Date(2026, 10, 19, 17, 0, 0, 0, time.Local), f.scheduler.at)

	res := d.Execute(context.Background(), cmd(intent.ScheduleMessage,
		intent.Parameters{"phone": "+233244123456", "time": "teatime"}))
	assert.Equal(t, "Could not understand the time 'teatime'", res.Message)
}

func TestMakePhoneCall(t *testing.T) {
	f := newFixture(t)
	got := f.dispatcher().Dispatch(context.Background(), cmd(intent.MakePhoneCall, intent.Parameters{"phone": "0551234567"}))
	assert.Equal(t, "Call initiated to +233551234567 (SID: CA123)", got)
	assert.Empty(t, f.phone.message)
}

func TestPhoneCallWithMessage_WithoutCredentials(t *testing.T) {
	parser := classifier.NewParser(&classifier.Config{})
	parsed := parser.Parse("call +233 55 123 4567 and say I will be late")
	require.Equal(t, intent.MakePhoneCallWithMessage, parsed.Intent)
	require.Equal(t, intent.Parameters{"phone": "+233551234567", "message": "i will be late"}, parsed.Parameters)

	f := newFixture(t)
	f.cfg.Backends.Telephony = telephony.New(telephony.Config{}, nil)
	res := f.dispatcher().Execute(context.Background(), parsed)
	assert.Equal(t, "Phone call service not configured. Please set up Twilio.", res.Message)
	assert.Equal(t, errors.CodeNotConfigured, res.Code)

	f.cfg.Backends.Telephony = nil
	assert.Equal(t, "Phone call service not configured. Please set up Twilio.",
		f.dispatcher().Dispatch(context.Background(), parsed))
}

func TestMakePhoneCall_FallsBackToLocalDialers(t *testing.T) {
	ctx := context.Background()
	call := cmd(intent.MakePhoneCall, intent.Parameters{"phone": "0244123456"})

	t.Run("first working dialer wins", func(t *testing.T) {
		f := newFixture(t)
		skype := &fakeDialer{name: "skype", err: stderrors.New("no handler for skype:")}
		adb := &fakeDialer{name: "adb"}
		f.cfg.Backends.Telephony = telephony.New(telephony.Config{}, nil)
		f.cfg.Backends.Dialers = []backend.Dialer{skype, adb}

		res := f.dispatcher().Execute(ctx, call)
		assert.True(t, res.Success)
		assert.Equal(t, "Attempting to call +233244123456 via adb", res.Message)
		assert.Equal(t, []string{"+233244123456"}, skype.dials)
		assert.Equal(t, []string{"+233244123456"}, adb.dials)
	})

	t.Run("no telephony at all", func(t *testing.T) {
		f := newFixture(t)
		skype := &fakeDialer{name: "skype"}
		f.cfg.Backends.Telephony = nil
		f.cfg.Backends.Dialers = []backend.Dialer{skype}

		assert.Equal(t, "Attempting to call +233244123456 via skype", f.dispatcher().Dispatch(ctx, call))
	})

	t.Run("every dialer fails", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.Backends.Telephony = nil
		f.cfg.Backends.Dialers = []backend.Dialer{
			&fakeDialer{name: "skype", err: stderrors.New("no handler")},
			&fakeDialer{name: "adb", err: stderrors.New("no Android device connected")},
		}

		res := f.dispatcher().Execute(ctx, call)
		assert.False(t, res.Success)
		assert.Equal(t, errors.CodeBackendFailure, res.Code)
		assert.Equal(t, "Failed to make phone call: no Android device connected", res.Message)
	})

	t.Run("configured telephony skips dialers", func(t *testing.T) {
		f := newFixture(t)
		skype := &fakeDialer{name: "skype"}
		f.cfg.Backends.Dialers = []backend.Dialer{skype}

		assert.Equal(t, "Call initiated to +233244123456 (SID: CA123)", f.dispatcher().Dispatch(ctx, call))
		assert.Empty(t, skype.dials)
	})

	t.Run("spoken message never uses dialers", func(t *testing.T) {
		f := newFixture(t)
		skype := &fakeDialer{name: "skype"}
		f.cfg.Backends.Telephony = nil
		f.cfg.Backends.Dialers = []backend.Dialer{skype}

		res := f.dispatcher().Execute(ctx, cmd(intent.MakePhoneCallWithMessage,
			intent.Parameters{"phone": "0244123456", "message": "i will be late"}))
		assert.Equal(t, errors.CodeNotConfigured, res.Code)
		assert.Equal(t, "Phone call service not configured. Please set up Twilio.", res.Message)
		assert.Empty(t, skype.dials)
	})
}

func TestNewConfig_ApplicationsByLowercaseName(t *testing.T) {
	c := config.Default()
	c.Applications = map[string]string{"Spotify": "/usr/bin/spotify", " VLC ": "/usr/bin/vlc"}
	launcher := &fakeLauncher{}

	d := NewDispatcher(NewConfig(c, backend.Set{Launcher: launcher}, nil))
	ctx := context.Background()

	assert.Equal(t, "Opened SPOTIFY", d.Dispatch(ctx, cmd(intent.OpenApplication, intent.Parameters{"application": "SPOTIFY"})))
	assert.Equal(t, "Opened vlc", d.Dispatch(ctx, cmd(intent.OpenApplication, intent.Parameters{"application": "vlc"})))
	assert.Equal(t, []string{"/usr/bin/spotify", "/usr/bin/vlc"}, launcher.spawned)
}
