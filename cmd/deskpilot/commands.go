package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flynn-ai/deskpilot/internal/agent"
	"github.com/flynn-ai/deskpilot/internal/classifier"
	"github.com/flynn-ai/deskpilot/internal/config"
	"github.com/flynn-ai/deskpilot/internal/history"
	"github.com/flynn-ai/deskpilot/internal/intent"
	"github.com/flynn-ai/deskpilot/internal/safety"
)

// ============================================================
// run
// ============================================================

func (c *cli) newRunCmd() *cobra.Command {
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "run <command...>",
		Short: "Execute one command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.assistant(agent.Options{NoHistory: noHistory})
			if err != nil {
				return err
			}
			defer a.Close()

			resp := a.Process(cmd.Context(), strings.Join(args, " "))
			printResponse(cmd.OutOrStdout(), resp, c.verbose)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the command")
	return cmd
}

// ============================================================
// parse
// ============================================================

func (c *cli) newParseCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "parse <command...>",
		Short: "Show how a command is understood without running it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := classifier.NewParser(&classifier.Config{
				CountryCode: c.cfg.Assistant.CountryCode,
				Logger:      c.logger.Logger,
			})
			parsed := parser.Parse(strings.Join(args, " "))
			return writeParsed(cmd.OutOrStdout(), parsed, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	return cmd
}

func writeParsed(w io.Writer, parsed intent.ParsedCommand, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(parsed)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(parsed); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		fmt.Fprintf(w, "%s %s\n", styleLabel.Render("intent:    "), parsed.Intent)
		fmt.Fprintf(w, "%s %.1f\n", styleLabel.Render("confidence:"), float64(parsed.Confidence))
		keys := make([]string, 0, len(parsed.Parameters))
		for k := range parsed.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s %s\n", styleMuted.Render(k+":"), parsed.Parameters[k])
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// ============================================================
// batch
// ============================================================

func (c *cli) newBatchCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "batch <file|->",
		Short: "Execute one command per line of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readLines(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			a, err := c.assistant(agent.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			responses, err := a.ProcessBatch(ctx, lines, workers)
			out := cmd.OutOrStdout()
			for _, resp := range responses {
				if resp == nil {
					continue
				}
				fmt.Fprintln(out, styleMuted.Render("> "+resp.Command.OriginalText))
				printResponse(out, resp, c.verbose)
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", agent.DefaultWorkers, "commands run concurrently")
	return cmd
}

func readLines(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// ============================================================
// history
// ============================================================

func (c *cli) newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently executed commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(c.cfg.Paths.HistoryDB)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}

func printHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, styleMuted.Render("No commands recorded yet."))
		return
	}
	for _, e := range entries {
		mark := styleSuccess.Render("✓")
		if !e.Success() {
			mark = styleError.Render("✗")
		}
		fmt.Fprintf(w, "%s %s %s %s\n",
			styleMuted.Render(e.CreatedAt.Format(time.DateTime)),
			mark,
			styleLabel.Render(e.Text),
			styleMuted.Render("→ "+e.Result),
		)
	}
}

// ============================================================
// config
// ============================================================

func (c *cli) newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(c.cfgFile); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", c.cfgFile)
			}
			if err := config.Default().Save(c.cfgFile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styleSuccess.Render("Wrote"), c.cfgFile)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			masked := *c.cfg
			masked.Email.Password = mask(masked.Email.Password)
			masked.Telephony.TwilioAuthToken = mask(masked.Telephony.TwilioAuthToken)
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(masked)
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

// ============================================================
// check
// ============================================================

func (c *cli) newCheckCmd() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Ask the safety policy about a path or a shell command",
	}

	policy := func() *safety.Policy {
		return safety.NewPolicy(c.cfg.Safety.AllowedDirectories, c.cfg.Safety.DangerousCommands, c.logger.Logger)
	}

	pathCmd := &cobra.Command{
		Use:   "path <path>",
		Short: "Report whether a path lies inside an allowed directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if policy().IsSafePath(args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styleSuccess.Render("allowed"), args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styleError.Render("blocked"), args[0])
			}
			return nil
		},
	}

	commandCmd := &cobra.Command{
		Use:     "command <command...>",
		Short:   "Report whether a shell command contains a dangerous fragment",
		Example: "  deskpilot check command -- rm -rf /tmp/cache",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := strings.Join(args, " ")
			if policy().IsDangerousCommand(command) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styleWarning.Render("dangerous"), command)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styleSuccess.Render("ok"), command)
			}
			return nil
		},
	}

	checkCmd.AddCommand(pathCmd, commandCmd)
	return checkCmd
}
