package executor

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/flynn-ai/deskpilot/internal/backend"
	"github.com/flynn-ai/deskpilot/internal/classifier"
	"github.com/flynn-ai/deskpilot/internal/config"
	"github.com/flynn-ai/deskpilot/internal/contact"
	"github.com/flynn-ai/deskpilot/internal/errors"
	"github.com/flynn-ai/deskpilot/internal/intent"
	"github.com/flynn-ai/deskpilot/internal/safety"
)

// NoMatchMessage is returned for commands no handler serves.
const NoMatchMessage = "Sorry, I didn't understand that command."

// Config wires a Dispatcher.
type Config struct {
	Backends backend.Set
	Policy   *safety.Policy
	Contacts *contact.Extractor
	Catalog  *classifier.Catalog

	// WorkspaceDir is where create and delete commands operate
	WorkspaceDir   string
	ScreenshotsDir string

	// Folders and Applications map lowercase names to paths
	Folders      map[string]string
	Applications map[string]string

	SearchURL string
	HomePage  string

	// Clock defaults to time.Now
	Clock  func() time.Time
	Logger *zap.Logger
}

// NewConfig derives a dispatcher configuration from the loaded settings.
func NewConfig(c *config.Config, backends backend.Set, logger *zap.Logger) Config {
	return Config{
		Backends:       backends,
		Policy:         safety.NewPolicy(c.Safety.AllowedDirectories, c.Safety.DangerousCommands, logger),
		Contacts:       contact.NewExtractor(c.Assistant.CountryCode),
		WorkspaceDir:   c.Assistant.WorkspaceDir,
		ScreenshotsDir: c.Paths.ScreenshotsDir,
		Folders:        c.FolderPaths(),
		Applications:   c.ApplicationPaths(),
		SearchURL:      c.Web.SearchURL,
		HomePage:       c.Web.HomePage,
		Logger:         logger,
	}
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Policy == nil {
		// An empty allow-list refuses every path.
		c.Policy = safety.NewPolicy(nil, nil, c.Logger)
	}
	if c.Contacts == nil {
		c.Contacts = contact.NewExtractor("")
	}
	if c.Catalog == nil {
		c.Catalog = classifier.DefaultCatalog()
	}
	if c.Backends.Files == nil {
		c.Backends.Files = backend.OSFileSystem{}
	}
	if c.SearchURL == "" {
		c.SearchURL = "https://www.google.com/search?q="
	}
	if c.HomePage == "" {
		c.HomePage = "https://www.google.com"
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

// Dispatcher executes parsed commands. It holds no mutable state of its own
// and is safe for concurrent use when its backends are.
type Dispatcher struct {
	cfg      Config
	registry *Registry
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher with a handler for every actionable
// intent.
func NewDispatcher(cfg Config) *Dispatcher {
	cfg = cfg.withDefaults()
	d := &Dispatcher{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   cfg.Logger.Named("executor"),
	}

	handlers := []HandlerFunc{
		{intent.OpenApplication, "Launch a configured application", d.openApplication},
		{intent.OpenFolder, "Open a well-known or literal folder", d.openFolder},
		{intent.CreateFile, "Create an empty file in the workspace", d.createFile},
		{intent.CreateFolder, "Create a folder in the workspace", d.createFolder},
		{intent.DeleteFile, "Delete a file from the workspace", d.deleteFile},
		{intent.DeleteFolder, "Delete a folder from the workspace", d.deleteFolder},
		{intent.RenameFile, "Rename a file", d.rename},
		{intent.RenameFolder, "Rename a folder", d.rename},
		{intent.TakeScreenshot, "Capture the screen to a PNG", d.takeScreenshot},
		{intent.OpenBrowser, "Open a web browser", d.openBrowser},
		{intent.SearchWeb, "Search the web", d.searchWeb},
		{intent.SendWhatsApp, "Send a WhatsApp message", d.sendWhatsApp},
		{intent.SendEmail, "Send an email", d.sendEmail},
		{intent.SendMessage, "Send a message by WhatsApp or email", d.sendMessage},
		{intent.MakePhoneCall, "Place a phone call", d.makePhoneCall},
		{intent.MakePhoneCallWithMessage, "Place a phone call that speaks a message", d.makePhoneCallWithMessage},
		{intent.ScheduleMessage, "Schedule a WhatsApp message", d.scheduleMessage},
	}
	for _, h := range handlers {
		d.registry.Register(h)
	}
	return d
}

// Registry returns the handler table.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// IsDangerousCommand reports whether a raw command contains a fragment from
// the dangerous-command list.
func (d *Dispatcher) IsDangerousCommand(command string) bool {
	return d.cfg.Policy.IsDangerousCommand(command)
}

// Dispatch runs cmd and returns the status line for the user.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd intent.ParsedCommand) string {
	return d.Execute(ctx, cmd).Message
}

// Execute runs cmd and returns the full result. It never panics.
func (d *Dispatcher) Execute(ctx context.Context, cmd intent.ParsedCommand) (res *Result) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked",
				zap.String("intent", string(cmd.Intent)),
				zap.Any("panic", r),
			)
			res = TimedResult(&Result{
				Intent:  cmd.Intent,
				Message: fmt.Sprintf("Error: %v", r),
				Code:    errors.CodeBackendFailure,
				Err:     fmt.Errorf("panic: %v", r),
			}, start)
		}
	}()

	message, err := d.registry.Execute(ctx, cmd)
	if err != nil {
		var notFound *HandlerNotFoundError
		if stderrors.As(err, &notFound) {
			err = errors.New(errors.CodeNoMatch, NoMatchMessage, errors.CategoryUser)
		}
		d.report(cmd, err)
		return TimedResult(&Result{
			Intent:  cmd.Intent,
			Message: render(err),
			Code:    codeOf(err),
			Err:     err,
		}, start)
	}

	d.logger.Info("command executed",
		zap.String("intent", string(cmd.Intent)),
		zap.String("result", message),
	)
	return TimedResult(&Result{
		Intent:  cmd.Intent,
		Success: true,
		Message: message,
	}, start)
}

// render turns a handler error into the user-facing status line.
func render(err error) string {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return "Error: " + err.Error()
	}
	if appErr.Code != errors.CodeBackendFailure {
		return appErr.Message
	}

	action := appErr.Message
	cause := errors.Cause(err)
	if cause == "" || cause == action {
		return "Failed to " + action
	}
	return "Failed to " + action + ": " + cause
}

func codeOf(err error) string {
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return errors.CodeBackendFailure
}

func (d *Dispatcher) report(cmd intent.ParsedCommand, err error) {
	fields := []zap.Field{
		zap.String("intent", string(cmd.Intent)),
		zap.String("code", codeOf(err)),
		zap.Error(err),
	}
	switch errors.GetCategory(err) {
	case errors.CategoryPolicy:
		d.logger.Warn("command refused", fields...)
	case errors.CategoryBackend:
		d.logger.Error("command failed", fields...)
	default:
		d.logger.Info("command not completed", fields...)
	}
}

// failed wraps a backend error under an action name such as "send email".
// Errors that already carry a non-backend code pass through unchanged, so
// their own message reaches the user.
func failed(action string, err error) error {
	if code := errors.GetCode(err); code != "" && code != errors.CodeBackendFailure {
		return err
	}
	return errors.BackendFailure(err, action)
}
