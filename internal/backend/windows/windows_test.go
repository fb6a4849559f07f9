package windows

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, "plain", escape("plain"))
	assert.Equal(t, "say `\"hi`\"", escape(`say "hi"`))
	assert.Equal(t, "`$env:PATH", escape("$env:PATH"))
	assert.Equal(t, "a``b", escape("a`b"))
}

func TestStartProcessScript(t *testing.T) {
	assert.Equal(t, `Start-Process -FilePath "notepad.exe"`, StartProcessScript("notepad.exe"))
	assert.Equal(t,
		`Start-Process -FilePath "code" -ArgumentList "--new-window","C:\work"`,
		StartProcessScript("code", "--new-window", `C:\work`))
}

func TestURLAndRevealScripts(t *testing.T) {
	assert.Equal(t, `Start-Process "https://www.google.com/search?q=go"`, OpenURLScript("https://www.google.com/search?q=go"))
	assert.Equal(t, `Start-Process -FilePath explorer.exe -ArgumentList "C:\Users\ama\Downloads"`, RevealScript(`C:\Users\ama\Downloads`))
}

func TestScreenshotScript(t *testing.T) {
	script := ScreenshotScript(`C:\shots\a "b".png`)
	assert.True(t, strings.HasPrefix(script, "Add-Type -AssemblyName System.Windows.Forms,System.Drawing"))
	assert.Contains(t, script, "CopyFromScreen")
	assert.Contains(t, script, "$bmp.Save(\"C:\\shots\\a `\"b`\".png\", [System.Drawing.Imaging.ImageFormat]::Png)")
}

func TestRunPowerShell_EmptyScript(t *testing.T) {
	_, err := RunPowerShell(context.Background(), "  ")
	assert.EqualError(t, err, "empty script")
}
