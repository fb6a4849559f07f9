package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/flynn-ai/deskpilot/internal/agent"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#A79BFF"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#1E8E3E", Dark: "#5AF78E"}
	colorError   = lipgloss.AdaptiveColor{Light: "#C5221F", Dark: "#FF5C57"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#B06000", Dark: "#F3F99D"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#8A8A8A"}
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	styleSuccess = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleLabel   = lipgloss.NewStyle().Bold(true)
	stylePrompt  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
)

// printResponse writes the status line of one command, plus the parsed
// intent when verbose.
func printResponse(w io.Writer, resp *agent.Response, verbose bool) {
	mark := styleSuccess.Render("✓")
	if !resp.Result.Success {
		mark = styleError.Render("✗")
	}
	fmt.Fprintf(w, "%s %s\n", mark, resp.Result.Message)

	if verbose {
		fmt.Fprintf(w, "  %s %s %s\n",
			styleMuted.Render("intent:"),
			styleLabel.Render(string(resp.Command.Intent)),
			styleMuted.Render(fmt.Sprintf("(%.1f, %dms)", float64(resp.Command.Confidence), resp.Result.DurationMs)),
		)
	}
}
