package backend

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/flynn-ai/deskpilot/internal/backend/windows"
)

type runFunc func(ctx context.Context, name string, args ...string) error

// Desktop implements Launcher with the host's native tools: open on macOS,
// PowerShell and Explorer on Windows, xdg-open and friends elsewhere.
type Desktop struct {
	goos       string
	start      runFunc
	run        runFunc
	powershell windows.Runner
	lookPath   func(string) (string, error)
	logger     *zap.Logger
}

// NewDesktop creates a launcher for the running OS.
func NewDesktop(logger *zap.Logger) *Desktop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Desktop{
		goos:       runtime.GOOS,
		start:      startCommand,
		run:        runCommand,
		powershell: windows.RunPowerShell,
		lookPath:   exec.LookPath,
		logger:     logger.Named("desktop"),
	}
}

func (d *Desktop) SpawnProcess(ctx context.Context, path string, args ...string) error {
	d.logger.Debug("spawn", zap.String("path", path), zap.Strings("args", args))
	if d.goos == "windows" {
		_, err := d.powershell(ctx, windows.StartProcessScript(path, args...))
		return err
	}
	if d.goos == "darwin" && strings.HasSuffix(strings.TrimRight(path, "/"), ".app") {
		return d.start(ctx, "open", append([]string{"-a", path}, args...)...)
	}
	return d.start(ctx, path, args...)
}

func (d *Desktop) OpenPath(ctx context.Context, path string) error {
	d.logger.Debug("open path", zap.String("path", path))
	switch d.goos {
	case "darwin":
		return d.start(ctx, "open", path)
	case "windows":
		return d.start(ctx, "cmd", "/c", "start", "", path)
	default:
		return d.start(ctx, "xdg-open", path)
	}
}

var fileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}

func (d *Desktop) RevealPath(ctx context.Context, path string) error {
	d.logger.Debug("reveal path", zap.String("path", path))
	switch d.goos {
	case "darwin":
		return d.start(ctx, "open", "-R", path)
	case "windows":
		_, err := d.powershell(ctx, windows.RevealScript(path))
		return err
	default:
		name, ok := d.firstAvailable(fileManagers)
		if !ok {
			return fmt.Errorf("no file manager found (tried %s)", strings.Join(fileManagers, ", "))
		}
		return d.start(ctx, name, path)
	}
}

func (d *Desktop) OpenURL(ctx context.Context, url string) error {
	d.logger.Debug("open url", zap.String("url", url))
	switch d.goos {
	case "darwin":
		return d.start(ctx, "open", url)
	case "windows":
		_, err := d.powershell(ctx, windows.OpenURLScript(url))
		return err
	default:
		return d.start(ctx, "xdg-open", url)
	}
}

// screenshotTools are tried in order on Linux and BSD.
var screenshotTools = [][]string{
	{"gnome-screenshot", "-f"},
	{"import", "-window", "root"},
	{"scrot", "-o"},
}

func (d *Desktop) CaptureScreen(ctx context.Context, dest string) error {
	d.logger.Debug("capture screen", zap.String("dest", dest))
	switch d.goos {
	case "darwin":
		return d.run(ctx, "screencapture", "-x", dest)
	case "windows":
		_, err := d.powershell(ctx, windows.ScreenshotScript(dest))
		return err
	default:
		for _, tool := range screenshotTools {
			if _, err := d.lookPath(tool[0]); err != nil {
				continue
			}
			args := append(append([]string{}, tool[1:]...), dest)
			return d.run(ctx, tool[0], args...)
		}
		return fmt.Errorf("no screenshot tool found (install gnome-screenshot, imagemagick or scrot)")
	}
}

func (d *Desktop) firstAvailable(names []string) (string, bool) {
	for _, name := range names {
		if _, err := d.lookPath(name); err == nil {
			return name, true
		}
	}
	return "", false
}

// startCommand launches a detached process. The context only guards the
// start itself, so a launched app outlives the command that opened it.
func startCommand(ctx context.Context, name string, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
