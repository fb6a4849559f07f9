package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_TeesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger, err := New(Options{Level: "info", Dir: dir, Console: &console})
	require.NoError(t, err)

	logger.Info("command dispatched", zap.String("intent", "open_folder"))
	logger.Warn("blocked access to restricted path")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"command dispatched"`)
	assert.Contains(t, string(data), `"intent":"open_folder"`)

	assert.NotContains(t, console.String(), "command dispatched", "info stays off the console")
	assert.Contains(t, console.String(), "blocked access to restricted path")
}

func TestNew_Verbose(t *testing.T) {
	var console bytes.Buffer

	logger, err := New(Options{Level: "error", Verbose: true, Console: &console})
	require.NoError(t, err)

	logger.Debug("pattern match")
	require.NoError(t, logger.Close())
	assert.Contains(t, console.String(), "pattern match")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}
