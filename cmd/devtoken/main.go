// Command devtoken prints a bearer token accepted by the server when it runs
// with AUTH_PROVIDER=local.
//
//	go run ./cmd/devtoken -email admin@example.com -ttl 2h
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/zapshift/parcel-server/internal/identity"
)

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Getenv("JWT_SECRET"), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
}

func run(args []string, secret string, out io.Writer) error {
	fs := flag.NewFlagSet("devtoken", flag.ContinueOnError)
	email := fs.String("email", "", "Email the token is issued for")
	ttl := fs.Duration("ttl", time.Hour, "Token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		return errors.New("-email is required")
	}
	if secret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if *ttl <= 0 {
		return errors.New("-ttl must be positive")
	}

	token, err := identity.NewLocalVerifier(secret).IssueToken(*email, *ttl)
	if err != nil {
		return errors.Wrap(err, "sign token")
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
