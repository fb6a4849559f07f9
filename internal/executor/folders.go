package executor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/flynn-ai/deskpilot/internal/errors"
	"github.com/flynn-ai/deskpilot/internal/intent"
	"github.com/flynn-ai/deskpilot/internal/safety"
)

const unsupportedFolderHint = "Try: documents, downloads, pictures, music, videos, desktop"

// lookupFolder resolves a folder word to its configured path: exact key,
// catalog synonym, then the singular form of a trailing-s word.
func (d *Dispatcher) lookupFolder(word string) (string, string, bool) {
	key := strings.ToLower(strings.TrimSpace(word))
	if path, ok := d.cfg.Folders[key]; ok {
		return key, path, true
	}
	if canonical, ok := d.cfg.Catalog.CanonicalFolder(key); ok {
		if path, ok := d.cfg.Folders[canonical]; ok {
			return canonical, path, true
		}
	}
	if singular, ok := strings.CutSuffix(key, "s"); ok && singular != "" {
		if path, ok := d.cfg.Folders[singular]; ok {
			return singular, path, true
		}
	}
	return "", "", false
}

func (d *Dispatcher) openFolder(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	name, ok := cmd.Param(intent.ParamFolder)
	if !ok {
		return "", errors.MissingParameter(intent.ParamFolder, "No folder specified")
	}

	if _, err := d.launcher(); err != nil {
		return "", err
	}
	fs := d.cfg.Backends.Files

	key, path, known := d.lookupFolder(name)
	if known {
		if !fs.Exists(path) {
			return "", errors.New(errors.CodeNotFound,
				fmt.Sprintf("%s folder doesn't exist at: %s", key, path), errors.CategoryUser)
		}
		if err := d.open(ctx, path); err != nil {
			return "", failed("open folder", err)
		}
		return fmt.Sprintf("Opened %s folder", key), nil
	}

	literal, err := safety.ExpandHome(strings.TrimSpace(name))
	if err == nil && fs.IsDir(literal) {
		if err := d.open(ctx, literal); err != nil {
			return "", failed("open folder", err)
		}
		return "Opened folder: " + literal, nil
	}

	return "", errors.New(errors.CodeUnsupported,
		fmt.Sprintf("Folder '%s' not supported. %s", name, unsupportedFolderHint), errors.CategoryUser)
}

// open hands path to the default handler, falling back to the file manager.
func (d *Dispatcher) open(ctx context.Context, path string) error {
	l := d.cfg.Backends.Launcher
	err := l.OpenPath(ctx, path)
	if err == nil {
		return nil
	}
	d.logger.Debug("default open failed, revealing in file manager", zap.String("path", path), zap.Error(err))
	if revealErr := l.RevealPath(ctx, path); revealErr != nil {
		return err
	}
	return nil
}
