package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/spf13/cobra"
)

type tokenOptions struct {
	id     string
	email  string
	name   string
	role   string
	secret string
	ttl    time.Duration
	cookie bool
}

// newTokenCommand mints hs256 session cookies for local testing of the jwt
// resolver mode.
func newTokenCommand(global *globalOptions) *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development session token for the jwt resolver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runToken(global, opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.id, "id", "dev-user", "user id (token subject)")
	f.StringVar(&opts.email, "email", "", "user email")
	f.StringVar(&opts.name, "name", "", "display name")
	f.StringVarP(&opts.role, "role", "r", "", "session role (required)")
	f.StringVar(&opts.secret, "secret", "", "hs256 secret (default session.jwt.secret)")
	f.DurationVar(&opts.ttl, "ttl", time.Hour, "token lifetime")
	f.BoolVar(&opts.cookie, "cookie", false, "print as a Cookie header value")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func runToken(global *globalOptions, opts *tokenOptions, out io.Writer) error {
	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}
	role, err := goGate.ParseRole(opts.role)
	if err != nil {
		return err
	}

	secret := opts.secret
	if secret == "" {
		secret = cfg.Session.JWT.Secret
	}
	if secret == "" {
		return errors.New("no secret: pass --secret or set session.jwt.secret")
	}

	m, err := jwt.NewManager(jwt.Config{
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte(secret),
		Issuer:        cfg.Session.JWT.Issuer,
		Audience:      cfg.Session.JWT.Audience,
		TTL:           opts.ttl,
	})
	if err != nil {
		return err
	}

	token, err := m.Sign(opts.id, opts.email, role.String(), opts.name)
	if err != nil {
		return err
	}
	if opts.cookie {
		fmt.Fprintf(out, "%s=%s\n", cfg.Session.JWT.CookieName, token)
		return nil
	}
	fmt.Fprintln(out, token)
	return nil
}
