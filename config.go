/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Seednode/impostor/game"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind     string
	database string
	policy   string
	port     int
	prefix   string
	profile  bool
	qr       bool
	tlsCert  string
	tlsKey   string
	verbose  bool
	version  bool
	words    string
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if strings.TrimSpace(c.database) == "" {
		return errors.New("--database must not be empty")
	}
	if _, err := game.ParsePolicy(c.policy); err != nil {
		return fmt.Errorf("invalid --policy %q (use a number, RANDOM_30, RANDOM_50 or RANDOM_MAX)", c.policy)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// wordBank returns the built-in catalog unless --words points at a JSON file.
func (c *Config) wordBank() (game.WordBank, error) {
	if c.words == "" {
		return game.DefaultWords, nil
	}

	f, err := os.Open(c.words)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bank, err := game.ReadWordBank(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.words, err)
	}

	return bank, nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("IMPOSTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "impostor",
		Short:         "Deals secret words and impostor roles for a party sharing one device.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: IMPOSTOR_BIND)")
	fs.StringVarP(&cfg.database, "database", "d", "impostor.db", "path to sqlite database, or :memory: (env: IMPOSTOR_DATABASE)")
	fs.StringVar(&cfg.policy, "policy", string(game.DefaultPolicy), "impostor policy used until one is chosen: a number, RANDOM_30, RANDOM_50 or RANDOM_MAX (env: IMPOSTOR_POLICY)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: IMPOSTOR_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: IMPOSTOR_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: IMPOSTOR_PROFILE)")
	fs.BoolVar(&cfg.qr, "qr", false, "print a QR code of the listening URL on startup (env: IMPOSTOR_QR)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: IMPOSTOR_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: IMPOSTOR_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: IMPOSTOR_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: IMPOSTOR_VERSION)")
	fs.StringVarP(&cfg.words, "words", "w", "", "path to a JSON word bank, [{\"id\":1,\"text\":\"...\"}] (env: IMPOSTOR_WORDS)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("impostor v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
