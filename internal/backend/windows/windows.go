// Package windows provides PowerShell helpers for the Windows desktop backend.
package windows

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes a PowerShell script and returns its trimmed output.
type Runner func(ctx context.Context, script string) (string, error)

// RunPowerShell executes a PowerShell command and returns output.
func RunPowerShell(ctx context.Context, script string) (string, error) {
	if strings.TrimSpace(script) == "" {
		return "", fmt.Errorf("empty script")
	}
	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return strings.TrimSpace(string(out)), fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

// StartProcessScript launches an executable, document or registered app name.
func StartProcessScript(target string, args ...string) string {
	script := fmt.Sprintf("Start-Process -FilePath %s", quote(target))
	if len(args) > 0 {
		quoted := make([]string, len(args))
		for i, a := range args {
			quoted[i] = quote(a)
		}
		script += " -ArgumentList " + strings.Join(quoted, ",")
	}
	return script
}

// OpenURLScript opens url in the default browser.
func OpenURLScript(url string) string {
	return fmt.Sprintf("Start-Process %s", quote(url))
}

// RevealScript opens path in File Explorer.
func RevealScript(path string) string {
	return fmt.Sprintf("Start-Process -FilePath explorer.exe -ArgumentList %s", quote(path))
}

// ScreenshotScript captures the whole virtual screen to a PNG at dest.
func ScreenshotScript(dest string) string {
	lines := []string{
		"Add-Type -AssemblyName System.Windows.Forms,System.Drawing",
		"$b = [System.Windows.Forms.SystemInformation]::VirtualScreen",
		"$bmp = New-Object System.Drawing.Bitmap $b.Width, $b.Height",
		"$g = [System.Drawing.Graphics]::FromImage($bmp)",
		"$g.CopyFromScreen($b.Left, $b.Top, 0, 0, $bmp.Size)",
		fmt.Sprintf("$bmp.Save(%s, [System.Drawing.Imaging.ImageFormat]::Png)", quote(dest)),
		"$g.Dispose()",
		"$bmp.Dispose()",
	}
	return strings.Join(lines, "; ")
}

func quote(s string) string {
	return `"` + escape(s) + `"`
}

// escape makes s safe inside a double-quoted PowerShell string.
func escape(s string) string {
	r := strings.NewReplacer("`", "``", `"`, "`\"", "$", "`$")
	return r.Replace(s)
}
