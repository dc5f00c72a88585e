// Command devtoken mints a bearer token for calling the API during
// development. The secret and lifetime default to the server configuration.
package main

import (
	"alcyxob/hyrox-trainer/internal/api"
	"alcyxob/hyrox-trainer/internal/config"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("devtoken", pflag.ContinueOnError)
	userID := flags.StringP("user", "u", "", "user id placed in the uid claim (required)")
	configPath := flags.String("config", ".", "directory containing config.yaml")
	ttl := flags.Duration("ttl", 0, "token lifetime (default jwt.expiration)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return errors.New("--user is required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *ttl == 0 {
		*ttl = cfg.JWT.Expiration
	}

	token, err := api.NewToken(cfg.JWT.Secret, *userID, *ttl, time.Now())
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
