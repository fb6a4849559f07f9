package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/flynn-ai/deskpilot/internal/errors"
	"github.com/flynn-ai/deskpilot/internal/intent"
	"github.com/flynn-ai/deskpilot/internal/safety"
)

// protectedFolders can never be deleted, whatever the safety policy allows.
var protectedFolders = map[string]bool{
	"documents": true,
	"downloads": true,
	"pictures":  true,
	"music":     true,
	"videos":    true,
}

// workspacePath places a relative name under the workspace directory.
// Absolute and home-relative names are kept so the safety policy judges them.
func (d *Dispatcher) workspacePath(name string) string {
	if strings.HasPrefix(name, "~") {
		if expanded, err := safety.ExpandHome(name); err == nil {
			return expanded
		}
		return name
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(d.cfg.WorkspaceDir, name)
}

// guard refuses paths outside the allowed directories, and paths that are
// the workspace, a known folder or an allowed directory, or contain one.
func (d *Dispatcher) guard(path, refusal string) error {
	if !d.cfg.Policy.IsSafePath(path) {
		return refuse(path, refusal)
	}
	if safety.Encloses(path, d.roots()...) {
		d.logger.Warn("refused action on a root directory", zap.String("path", path))
		return refuse(path, refusal)
	}
	return nil
}

func (d *Dispatcher) roots() []string {
	roots := append([]string{d.cfg.WorkspaceDir}, d.cfg.Policy.AllowedDirectories()...)
	for _, path := range d.cfg.Folders {
		roots = append(roots, path)
	}
	return roots
}

func refuse(path, refusal string) error {
	return errors.NewBuilder(errors.CodeSafetyRejection, refusal).
		Policy().
		WithContext("path", path).
		Build()
}

func (d *Dispatcher) createFile(_ context.Context, cmd intent.ParsedCommand) (string, error) {
	name, ok := cmd.Param(intent.ParamFilename)
	if !ok {
		return "", errors.MissingParameter(intent.ParamFilename, "No filename specified")
	}

	path := d.workspacePath(name)
	if err := d.guard(path, "Cannot create file in this location for security reasons"); err != nil {
		return "", err
	}

	fs := d.cfg.Backends.Files
	if fs.Exists(path) {
		return "", errors.NewBuilder(errors.CodeUnsupported, fmt.Sprintf("File %s already exists", name)).User().Build()
	}
	if err := fs.MkdirAll(filepath.Dir(path)); err != nil {
		return "", failed("create file", err)
	}
	if err := fs.CreateFile(path); err != nil {
		return "", failed("create file", err)
	}
	return "Created file: " + path, nil
}

func (d *Dispatcher) createFolder(_ context.Context, cmd intent.ParsedCommand) (string, error) {
	name, ok := cmd.Param(intent.ParamFolder)
	if !ok {
		return "", errors.MissingParameter(intent.ParamFolder, "No folder name specified")
	}

	path := d.workspacePath(name)
	if err := d.guard(path, "Cannot create folder in this location for security reasons"); err != nil {
		return "", err
	}
	if err := d.cfg.Backends.Files.MkdirAll(path); err != nil {
		return "", failed("create folder", err)
	}
	return "Created folder: " + path, nil
}

func (d *Dispatcher) deleteFile(_ context.Context, cmd intent.ParsedCommand) (string, error) {
	name, ok := cmd.Param(intent.ParamFilename)
	if !ok {
		return "", errors.MissingParameter(intent.ParamFilename, "No filename specified")
	}

	path := d.workspacePath(name)
	if err := d.guard(path, "Cannot delete file from this location for security reasons"); err != nil {
		return "", err
	}

	fs := d.cfg.Backends.Files
	if !fs.Exists(path) {
		return "", errors.New(errors.CodeNotFound, fmt.Sprintf("File %s doesn't exist", name), errors.CategoryUser)
	}
	if err := fs.Remove(path); err != nil {
		return "", failed("delete file", err)
	}
	return "Deleted file: " + path, nil
}

func (d *Dispatcher) deleteFolder(_ context.Context, cmd intent.ParsedCommand) (string, error) {
	name, ok := cmd.Param(intent.ParamFolder)
	if !ok {
		return "", errors.MissingParameter(intent.ParamFolder, "No folder name specified")
	}

	canonical := strings.ToLower(strings.TrimSpace(name))
	if c, ok := d.cfg.Catalog.CanonicalFolder(canonical); ok {
		canonical = c
	}
	if protectedFolders[canonical] {
		d.logger.Warn("refused to delete protected folder", zap.String("folder", name))
		return "", errors.SafetyRejection(fmt.Sprintf("Cannot delete the %s folder for security reasons", name))
	}

	path := d.workspacePath(name)
	if err := d.guard(path, "Cannot delete folder from this location for security reasons"); err != nil {
		return "", err
	}

	fs := d.cfg.Backends.Files
	if !fs.Exists(path) {
		return "", errors.New(errors.CodeNotFound, fmt.Sprintf("Folder %s doesn't exist", name), errors.CategoryUser)
	}
	if !fs.IsDir(path) {
		return "", errors.New(errors.CodeUnsupported, fmt.Sprintf("%s is not a folder", name), errors.CategoryUser)
	}
	if err := fs.RemoveAll(path); err != nil {
		return "", failed("delete folder", err)
	}
	return "Deleted folder: " + path, nil
}

func (d *Dispatcher) rename(context.Context, intent.ParsedCommand) (string, error) {
	return "", errors.New(errors.CodeUnsupported, "Rename functionality not yet implemented", errors.CategoryUser)
}
