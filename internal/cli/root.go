// Package cli implements the gogate command line: the guarding reverse proxy
// and offline tools for checking routes and configuration.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	goGate "github.com/MrEthical07/goGate"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand returns the gogate command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "gogate",
		Short: "Route access control for the AgriNews Talent web front end",
		Long: `gogate classifies page requests, resolves the visitor's session against the
auth backend and either passes the request through or redirects to the login
page or the visitor's own dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (defaults plus GOGATE_* env when empty)")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newServeCommand(opts),
		newCheckCommand(opts),
		newConfigCommand(opts),
		newTokenCommand(opts),
	)
	return root
}

func (o *globalOptions) loadConfig() (goGate.Config, error) {
	if o.configPath == "" {
		cfg := goGate.DefaultConfig()
		cfg.ApplyEnv(os.LookupEnv)
		return cfg, nil
	}
	return goGate.LoadConfigFile(o.configPath)
}

func (o *globalOptions) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", o.logLevel)
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(o.logFormat) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q", o.logFormat)
	}
}
