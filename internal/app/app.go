// Package app assembles the services of the mesh from configuration.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tinmancoding/calculator-as-a-service/internal/agent"
	"github.com/tinmancoding/calculator-as-a-service/internal/config"
	"github.com/tinmancoding/calculator-as-a-service/internal/logging"
	"github.com/tinmancoding/calculator-as-a-service/internal/metrics"
	"github.com/tinmancoding/calculator-as-a-service/internal/orchestrator"
	"github.com/tinmancoding/calculator-as-a-service/internal/parser"
	"github.com/tinmancoding/calculator-as-a-service/internal/routing"
	"github.com/tinmancoding/calculator-as-a-service/internal/transport"
)

// Handler builds the HTTP handler of a single service role.
func Handler(cfg *config.Config, role config.Role, log zerolog.Logger) (http.Handler, error) {
	svc, ok := cfg.Services[role]
	if !ok {
		return nil, fmt.Errorf("app: no service configured for role %q", role)
	}
	m := metrics.New(svc.Name)
	info := transport.Info{Service: svc.Name, Hostname: cfg.Hostname}

	newResolver := func() (*agent.Resolver, error) {
		routes, err := routing.New(cfg.Routes())
		if err != nil {
			return nil, err
		}
		return agent.NewResolver(routes, cfg.DelegationTimeout, m), nil
	}

	switch role {
	case config.RoleGateway:
		resolver, err := newResolver()
		if err != nil {
			return nil, err
		}
		o := orchestrator.New(
			orchestrator.NewParserClient(cfg.Services[config.RoleParser].URL, cfg.DelegationTimeout, cfg.MaxDepth),
			resolver,
			orchestrator.NewHistory(cfg.HistorySize),
		)
		info.Endpoints = map[string]string{
			"calculate":    "POST /calculate",
			"calculations": "GET /calculations",
			"calculation":  "GET /calculations/{id}",
		}
		r := transport.NewRouter(info, log, m)
		o.Routes(r)
		return r, nil

	case config.RoleParser:
		p := parser.New(parser.Config{
			Service:   svc.Name,
			Hostname:  cfg.Hostname,
			MaxLength: cfg.MaxExpressionLength,
			MaxDepth:  cfg.MaxDepth,
		})
		info.Endpoints = map[string]string{"parse": "POST /parse"}
		r := transport.NewRouter(info, log, m)
		p.Routes(r)
		return r, nil
	}

	op, ok := role.Operator()
	if !ok {
		return nil, fmt.Errorf("app: role %q has no handler", role)
	}
	resolver, err := newResolver()
	if err != nil {
		return nil, err
	}
	node, err := agent.NewNode(agent.NodeConfig{
		Operator: op,
		Service:  svc.Name,
		Hostname: cfg.Hostname,
		MaxDepth: cfg.MaxDepth,
	}, resolver, m)
	if err != nil {
		return nil, err
	}
	info.Endpoints = map[string]string{"execute": "POST /execute"}
	r := transport.NewRouter(info, log, m)
	node.Routes(r)
	return r, nil
}

// Servers builds one server per role run by cfg. Logs go to out, or to
// stderr when out is nil.
func Servers(cfg *config.Config, out io.Writer) ([]*transport.Server, error) {
	roles := []config.Role{cfg.Role}
	if cfg.Role == config.RoleAll {
		roles = config.Roles
	}

	servers := make([]*transport.Server, 0, len(roles))
	for _, role := range roles {
		svc := cfg.Services[role]
		log := logging.New(svc.Name, cfg.Hostname, cfg.LogLevel, out)
		h, err := Handler(cfg, role, log)
		if err != nil {
			return nil, err
		}
		servers = append(servers, transport.NewServer(fmt.Sprintf(":%d", svc.Port), h, log))
	}
	return servers, nil
}

// Run serves every server until ctx is done or one of them fails, in which
// case the others are shut down too.
func Run(ctx context.Context, servers []*transport.Server) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			if err := s.Run(ctx); err != nil {
				return fmt.Errorf("serve %s: %w", s.Addr(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
