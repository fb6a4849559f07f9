// Package safety gates filesystem and shell actions behind an allow-list of
// directories and a deny-list of command fragments.
package safety

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Policy is built once at start-up and never modified.
type Policy struct {
	allowed   []string
	dangerous []string
	logger    *zap.Logger
}

// NewPolicy resolves the allowed directories up front. Directories that fail
// to resolve are dropped, so they can never grant access.
func NewPolicy(allowedDirs, dangerousCommands []string, logger *zap.Logger) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Policy{logger: logger.Named("safety")}
	for _, dir := range allowedDirs {
		abs, err := resolve(dir)
		if err != nil {
			p.logger.Warn("dropping unresolvable allowed directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		p.allowed = append(p.allowed, abs)
	}
	for _, cmd := range dangerousCommands {
		cmd = strings.ToLower(strings.TrimSpace(cmd))
		if cmd != "" {
			p.dangerous = append(p.dangerous, cmd)
		}
	}
	return p
}

// AllowedDirectories returns the resolved allow-list.
func (p *Policy) AllowedDirectories() []string {
	out := make([]string, len(p.allowed))
	copy(out, p.allowed)
	return out
}

// IsSafePath reports whether path lies inside an allowed directory. Any
// resolution error fails closed.
func (p *Policy) IsSafePath(path string) bool {
	abs, err := resolve(path)
	if err != nil {
		p.logger.Error("path resolution failed", zap.String("path", path), zap.Error(err))
		return false
	}

	for _, dir := range p.allowed {
		if within(abs, dir) {
			return true
		}
	}

	p.logger.Warn("blocked access to restricted path", zap.String("path", abs))
	return false
}

// IsDangerousCommand reports whether command contains a deny-listed fragment.
func (p *Policy) IsDangerousCommand(command string) bool {
	lower := strings.ToLower(command)
	for _, pattern := range p.dangerous {
		if strings.Contains(lower, pattern) {
			p.logger.Warn("blocked dangerous command", zap.String("command", command), zap.String("pattern", pattern))
			return true
		}
	}
	return false
}

// Encloses reports whether path is one of roots or an ancestor of one, so
// removing it would remove a root. Empty roots are skipped and a path that
// cannot be resolved counts as enclosing.
func Encloses(path string, roots ...string) bool {
	abs, err := resolve(path)
	if err != nil {
		return true
	}
	for _, root := range roots {
		r, err := resolve(root)
		if err != nil {
			continue
		}
		if within(r, abs) {
			return true
		}
	}
	return false
}

// within requires a separator boundary so /home/u/Documents2 is not inside
// /home/u/Documents.
func within(path, dir string) bool {
	if path == dir {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

func resolve(path string) (string, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", os.ErrInvalid
	}
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
