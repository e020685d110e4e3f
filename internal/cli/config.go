package cli

import (
	"fmt"
	"io"

	goGate "github.com/MrEthical07/goGate"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	var failOn string
	lint := &cobra.Command{
		Use:   "lint",
		Short: "Validate the configuration and report questionable settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigLint(global, failOn, cmd.OutOrStdout())
		},
	}
	lint.Flags().StringVar(&failOn, "fail-on", "high", "lowest severity that fails the command: info, warn, high, none")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Session.JWT.Secret != "" {
				cfg.Session.JWT.Secret = "<redacted>"
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	cmd.AddCommand(lint, show)
	return cmd
}

func runConfigLint(global *globalOptions, failOn string, out io.Writer) error {
	threshold, enforce, err := parseSeverity(failOn)
	if err != nil {
		return err
	}

	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateRoutes(goGate.DefaultRoleTable()); err != nil {
		return err
	}

	result := cfg.Lint()
	failed := 0
	for _, w := range result {
		fmt.Fprintf(out, "%-5s %-28s %s\n", w.Severity, w.Code, w.Message)
		if enforce && w.Severity >= threshold {
			failed++
		}
	}
	if len(result) == 0 {
		fmt.Fprintln(out, "ok")
	}
	if failed > 0 {
		return fmt.Errorf("%d lint finding(s) at or above %s", failed, threshold)
	}
	return nil
}

func parseSeverity(s string) (goGate.LintSeverity, bool, error) {
	switch s {
	case "info":
		return goGate.LintInfo, true, nil
	case "warn":
		return goGate.LintWarn, true, nil
	case "high":
		return goGate.LintHigh, true, nil
	case "none":
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("invalid --fail-on %q", s)
	}
}
