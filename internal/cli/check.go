package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	goGate "github.com/MrEthical07/goGate"
	"github.com/spf13/cobra"
)

type checkOptions struct {
	role   string
	format string
}

type checkResult struct {
	Path     string `json:"path"`
	Route    string `json:"route"`
	Owner    string `json:"owner,omitempty"`
	Role     string `json:"role"`
	Decision string `json:"decision"`
	Location string `json:"location,omitempty"`
}

func newCheckCommand(global *globalOptions) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check PATH...",
		Short: "Show how paths are classified and decided for a role",
		Long: `check applies the route classifier and the access table to each PATH without
contacting the auth backend. Without --role the visitor is anonymous.`,
		Example: `  gogate check /intranet/student/offers
  gogate check --role company /login /intranet/student/dashboard`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(global, opts, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.role, "role", "r", "", "session role (student, company, university, admin); empty for anonymous")
	cmd.Flags().StringVarP(&opts.format, "format", "o", "text", "output format: text or json")
	return cmd
}

func runCheck(global *globalOptions, opts *checkOptions, paths []string, out io.Writer) error {
	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}
	// Offline evaluation needs neither the budget nor audit output.
	cfg.RateLimit.Enabled = false
	cfg.Audit.Enabled = false

	engine, err := goGate.New().
		WithConfig(cfg).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	var sess *goGate.Session
	if opts.role != "" {
		role, err := goGate.ParseRole(opts.role)
		if err != nil {
			return err
		}
		sess = &goGate.Session{ID: "cli", Role: role}
	}

	results := make([]checkResult, 0, len(paths))
	for _, p := range paths {
		class := engine.Classify(p)
		d := engine.DecidePath(p, sess)
		res := checkResult{
			Path:     p,
			Route:    class.Kind.String(),
			Role:     "anonymous",
			Decision: d.Kind.String(),
			Location: engine.RedirectURL(d),
		}
		if class.Kind == goGate.RouteIntranet {
			res.Owner = class.Owner.String()
		}
		if sess != nil {
			res.Role = sess.Role.String()
		}
		results = append(results, res)
	}

	switch opts.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "text":
		for _, r := range results {
			route := r.Route
			if r.Owner != "" {
				route += "(" + r.Owner + ")"
			}
			line := fmt.Sprintf("%-40s %-20s %s", r.Path, route, r.Decision)
			if r.Location != "" {
				line += " -> " + r.Location
			}
			fmt.Fprintln(out, line)
		}
		return nil
	default:
		return fmt.Errorf("invalid --format %q", opts.format)
	}
}
