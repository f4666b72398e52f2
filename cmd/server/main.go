package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tinmancoding/calculator-as-a-service/internal/app"
	"github.com/tinmancoding/calculator-as-a-service/internal/config"
	"github.com/tinmancoding/calculator-as-a-service/internal/logging"
)

func main() {
	role := flag.String("role", envOr("SERVICE_ROLE", string(config.RoleAll)),
		"service to run: gateway, parser, addition, subtraction, multiplication, division or all")
	flag.Parse()

	if err := run(*role); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(roleName string) error {
	role, err := config.ParseRole(roleName)
	if err != nil {
		return err
	}
	cfg, err := config.Load(role)
	if err != nil {
		return err
	}

	servers, err := app.Servers(cfg, nil)
	if err != nil {
		return err
	}

	log := logging.New("server", cfg.Hostname, cfg.LogLevel, nil)
	ev := log.Info().Str("role", string(role)).Dur("delegation_timeout", cfg.DelegationTimeout)
	for r, svc := range cfg.Services {
		ev = ev.Str(string(r), svc.URL)
	}
	ev.Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx, servers)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
