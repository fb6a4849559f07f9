package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flynn-ai/deskpilot/internal/agent"
)

const replHelp = `Type a command in plain English, for example:
  open my downloads
  create a new file called notes.txt
  search for go generics
  send whatsapp to 0244123456 saying on my way

Session commands:
  :stats    session statistics
  :history  recent commands
  :help     this text
  :quit     leave (also exit, quit, bye)`

func (c *cli) runREPL(cmd *cobra.Command) error {
	a, err := c.assistant(agent.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	in := cmd.InOrStdin()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, styleTitle.Render("DeskPilot"), styleMuted.Render("- type :help for examples, :quit to leave"))
	return repl(cmd, a, in, out, c.verbose)
}

func repl(cmd *cobra.Command, a *agent.Assistant, in io.Reader, out io.Writer, verbose bool) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, stylePrompt.Render("deskpilot> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case ":quit", ":q", "exit", "quit", "bye":
			fmt.Fprintln(out, styleMuted.Render("Goodbye."))
			return nil
		case ":help":
			fmt.Fprintln(out, replHelp)
			continue
		case ":stats":
			printStats(out, a)
			continue
		case ":history":
			entries, err := a.Recent(cmd.Context(), 10)
			if err != nil {
				fmt.Fprintln(out, styleError.Render(err.Error()))
				continue
			}
			printHistory(out, entries)
			continue
		}

		printResponse(out, a.Process(cmd.Context(), line), verbose)
	}
}

func printStats(w io.Writer, a *agent.Assistant) {
	s := a.Stats()
	fmt.Fprintln(w, styleTitle.Render("Session"))
	fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("uptime:      "), s.Uptime)
	fmt.Fprintf(w, "  %s %d\n", styleLabel.Render("commands:    "), s.CommandCount)
	fmt.Fprintf(w, "  %s %d\n", styleLabel.Render("failed:      "), s.ErrorCount)
	fmt.Fprintf(w, "  %s %d\n", styleLabel.Render("unrecognized:"), s.UnrecognizedCount)
	fmt.Fprintf(w, "  %s %.1fms\n", styleLabel.Render("avg latency: "), s.AvgLatencyMs)
	fmt.Fprintf(w, "  %s %.1fMB\n", styleLabel.Render("heap:        "), s.MemoryStats.HeapAllocMB)
	for _, is := range s.ByIntent {
		fmt.Fprintf(w, "    %s %d\n", styleMuted.Render(string(is.Intent)+":"), is.Count)
	}
}
