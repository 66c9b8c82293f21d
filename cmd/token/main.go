// Command token prints a signed bearer token for the taskboard API.
//
// The signing secret is read the same way the server reads it, from
// TASKBOARD_AUTH_JWT_SECRET, a .env file or config.yaml.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, config.Load); err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, load func() (*config.Config, error)) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	subject := fs.String("subject", "", "subject (caller name) to embed in the token")
	lifetime := fs.Int("lifetime", 0, "token lifetime in minutes (defaults to auth.token_lifetime_minutes)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *subject == "" {
		return errors.New("-subject is required")
	}
	if *lifetime < 0 {
		return fmt.Errorf("-lifetime must be positive, got %d", *lifetime)
	}

	cfg, err := load()
	if err != nil {
		return err
	}
	if !cfg.Auth.Enabled() {
		return errors.New("auth.jwt_secret is not configured")
	}

	authCfg := cfg.Auth
	if *lifetime > 0 {
		authCfg.TokenLifetimeMinutes = *lifetime
	}

	svc, err := auth.NewJWTService(authCfg)
	if err != nil {
		return err
	}

	token, err := svc.GenerateToken(context.Background(), *subject)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
