package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/proto-event-contracts/protoeval/pkg/agent"
	"github.com/proto-event-contracts/protoeval/pkg/cases"
	"github.com/proto-event-contracts/protoeval/pkg/config"
	"github.com/proto-event-contracts/protoeval/pkg/report"
	"github.com/proto-event-contracts/protoeval/pkg/result"
	"github.com/proto-event-contracts/protoeval/pkg/runner"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "protoeval",
	Short: "Eval runner for the proto-event-contracts agent",
	Long: `Drives the opencode proto-event-contracts agent against a set of
fixture files and grades its output with deterministic keyword matching.

Cases are read from a case file (cases.json by default), the agent is
invoked once per case, and a pass/fail summary is printed at the end.
The exit code is non-zero if any case fails.`,
	SilenceUsage: true,
	RunE:         runEvals,
}

func runEvals(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	model, _ := cmd.Flags().GetString("model")
	noColor, _ := cmd.Flags().GetBool("no-color")

	log := newLogger(verbose)

	cfg, casesPath, err := loadSetup(cmd)
	if err != nil {
		return err
	}

	cs, err := cases.Load(casesPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color := !noColor
	fmt.Fprintf(out, "Loaded %d eval cases from %s\n\n", len(cs), casesPath)

	fixtureDir := cfg.FixtureDir
	if fixtureDir == "" {
		fixtureDir = filepath.Dir(casesPath)
	}

	r := &runner.Runner{
		Invoker:    agent.NewCLIInvoker(cfg.AgentBin, cfg.AgentName, cfg.Instruction, cfg.Timeout),
		FixtureDir: fixtureDir,
		Model:      model,
		Log:        log,
		OnStart: func(index, total int, c cases.Case) {
			report.PrintProgress(out, index, total, c.Fixture)
		},
		OnDone: func(index, total int, res result.Result, output string) {
			if verbose && output != "" {
				report.PrintOutput(out, output)
			}
			report.PrintStatus(out, res, color)
			if verbose && res.Status == result.StatusFail {
				fmt.Fprintf(out, "  agent output length: %d chars\n", len(output))
			}
		},
	}

	results, err := r.Run(cmd.Context(), cs)
	if err != nil {
		fmt.Fprintln(out)
		if errors.Is(err, agent.ErrAgentNotFound) {
			return fmt.Errorf("%w; install the agent CLI and ensure it is on your PATH", err)
		}
		return err
	}

	report.PrintSummary(out, results, color)

	stats := result.ComputeStats(results)
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d cases failed", stats.Failed, stats.Total)
	}
	return nil
}

// --- validate command ---

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate config and case files",
	Long: `Check the runner configuration and case file for errors.

Validates YAML/JSON syntax, required fields, and the severity/keywords
contract for finding cases.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, casesPath, err := loadSetup(cmd)
		if err != nil {
			return err
		}

		cs, err := cases.Load(casesPath)
		if err != nil {
			return fmt.Errorf("case validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Config is valid.\n")
		fmt.Fprintf(out, "Case file %q is valid (%d cases).\n", casesPath, len(cs))
		return nil
	},
}

// --- list command ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available resources",
}

var listCasesCmd = &cobra.Command{
	Use:          "cases",
	Short:        "List cases in the case file",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, casesPath, err := loadSetup(cmd)
		if err != nil {
			return err
		}
		cs, err := cases.Load(casesPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, c := range cs {
			if c.ExpectClean {
				fmt.Fprintf(out, "  %-40s %s\n", c.Fixture, c.Mode())
				continue
			}
			fmt.Fprintf(out, "  %-40s %-8s %-12s %d keywords\n", c.Fixture, c.Mode(), c.Severity, len(c.Keywords))
		}
		return nil
	},
}

// loadSetup loads the runner config and resolves the case file path, with
// the --cases flag taking precedence over the config file.
func loadSetup(cmd *cobra.Command) (*config.Config, string, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}

	casesPath, _ := cmd.Flags().GetString("cases")
	if casesPath == "" {
		casesPath = cfg.Cases
	}
	return cfg, casesPath, nil
}

func init() {
	// root command flags
	rootCmd.Flags().BoolP("verbose", "v", false, "Print full agent output for each case")
	rootCmd.Flags().StringP("model", "m", "", "Override the model used by the agent")
	rootCmd.Flags().StringP("cases", "c", "", "Path to case file (default from config)")
	rootCmd.Flags().String("config", "protoeval.yaml", "Path to config file")
	rootCmd.Flags().Bool("no-color", false, "Disable colored status output")

	// validate command flags
	validateCmd.Flags().StringP("cases", "c", "", "Path to case file to validate")
	validateCmd.Flags().String("config", "protoeval.yaml", "Path to config file to validate")

	// list command flags
	listCasesCmd.Flags().StringP("cases", "c", "", "Path to case file")
	listCasesCmd.Flags().String("config", "protoeval.yaml", "Path to config file")
	listCmd.AddCommand(listCasesCmd)

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
}
