package executor

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/flynn-ai/deskpilot/internal/backend"
	"github.com/flynn-ai/deskpilot/internal/errors"
	"github.com/flynn-ai/deskpilot/internal/intent"
)

func (d *Dispatcher) launcher() (backend.Launcher, error) {
	if d.cfg.Backends.Launcher == nil {
		return nil, errors.NotConfigured("Desktop launcher not available on this system.")
	}
	return d.cfg.Backends.Launcher, nil
}

func (d *Dispatcher) openApplication(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	name, ok := cmd.Param(intent.ParamApplication)
	if !ok {
		return "", errors.MissingParameter(intent.ParamApplication, "No application specified")
	}

	path, ok := d.cfg.Applications[strings.ToLower(name)]
	if !ok {
		return "", errors.NewBuilder(errors.CodeNotConfigured, fmt.Sprintf("Application '%s' not configured", name)).
			Config().
			WithContext("application", name).
			Build()
	}

	l, err := d.launcher()
	if err != nil {
		return "", err
	}
	if err := l.SpawnProcess(ctx, path); err != nil {
		return "", failed("open "+name, err)
	}
	return "Opened " + name, nil
}

func (d *Dispatcher) openBrowser(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	l, err := d.launcher()
	if err != nil {
		return "", err
	}

	if name, ok := cmd.Param(intent.ParamBrowser); ok {
		if path, ok := d.cfg.Applications[strings.ToLower(name)]; ok && d.cfg.Backends.Files.Exists(path) {
			if err := l.SpawnProcess(ctx, path, d.cfg.HomePage); err != nil {
				return "", failed("open "+name, err)
			}
			return "Opened " + name, nil
		}
		d.logger.Debug("browser not installed, using default", zap.String("browser", name))
	}

	if err := l.OpenURL(ctx, d.cfg.HomePage); err != nil {
		return "", failed("open browser", err)
	}
	return "Opened default browser", nil
}

func (d *Dispatcher) searchWeb(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	query, ok := cmd.Param(intent.ParamQuery)
	if !ok {
		return "", errors.MissingParameter(intent.ParamQuery, "Please specify what to search for.")
	}

	l, err := d.launcher()
	if err != nil {
		return "", err
	}
	if err := l.OpenURL(ctx, d.cfg.SearchURL+url.QueryEscape(query)); err != nil {
		return "", failed("search", err)
	}
	return "Searching for: " + query, nil
}

func (d *Dispatcher) takeScreenshot(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	l, err := d.launcher()
	if err != nil {
		return "", err
	}

	name := cmd.Parameters.GetOr(intent.ParamFilename, "screenshot_"+d.cfg.Clock().Format("20060102_150405")+".png")
	if !strings.EqualFold(filepath.Ext(name), ".png") {
		name += ".png"
	}

	dir := d.cfg.ScreenshotsDir
	if dir == "" {
		dir = d.cfg.WorkspaceDir
	}
	if err := d.cfg.Backends.Files.MkdirAll(dir); err != nil {
		return "", failed("take screenshot", err)
	}

	dest := filepath.Join(dir, filepath.Base(name))
	if err := l.CaptureScreen(ctx, dest); err != nil {
		return "", failed("take screenshot", err)
	}
	return "Screenshot saved as: " + dest, nil
}
