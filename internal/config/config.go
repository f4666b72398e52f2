// Package config reads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tinmancoding/calculator-as-a-service/pkg/expr"
)

// Role selects which service a process runs.
type Role string

const (
	RoleGateway        Role = "gateway"
	RoleParser         Role = "parser"
	RoleAddition       Role = "addition"
	RoleSubtraction    Role = "subtraction"
	RoleMultiplication Role = "multiplication"
	RoleDivision       Role = "division"
	// RoleAll runs every service in one process on their default ports.
	RoleAll Role = "all"
)

// Roles lists every single-service role in startup order.
var Roles = []Role{RoleParser, RoleAddition, RoleSubtraction, RoleMultiplication, RoleDivision, RoleGateway}

var defaults = map[Role]struct {
	name string
	port int
	env  string
	op   expr.Operator
}{
	RoleGateway:        {"gateway-service", 8080, "GATEWAY_SERVICE_URL", ""},
	RoleParser:         {"parser-service", 8081, "PARSER_SERVICE_URL", ""},
	RoleAddition:       {"addition-service", 8082, "ADDITION_SERVICE_URL", expr.Add},
	RoleSubtraction:    {"subtraction-service", 8083, "SUBTRACTION_SERVICE_URL", expr.Subtract},
	RoleMultiplication: {"multiplication-service", 8084, "MULTIPLICATION_SERVICE_URL", expr.Multiply},
	RoleDivision:       {"division-service", 8086, "DIVISION_SERVICE_URL", expr.Divide},
}

// ParseRole validates s as a role name.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r == RoleAll {
		return r, nil
	}
	if _, ok := defaults[r]; !ok {
		return "", fmt.Errorf("config: unknown service role %q", s)
	}
	return r, nil
}

// Operator returns the operator owned by r, if r is an operator service.
func (r Role) Operator() (expr.Operator, bool) {
	d, ok := defaults[r]
	return d.op, ok && d.op != ""
}

// RoleFor returns the operator service role owning op.
func RoleFor(op expr.Operator) (Role, bool) {
	for r, d := range defaults {
		if d.op != "" && d.op == op {
			return r, true
		}
	}
	return "", false
}

// Service describes how one service is named, where it listens and how peers
// reach it.
type Service struct {
	Name string
	Port int
	URL  string
}

type Config struct {
	Role     Role
	Hostname string
	LogLevel string

	Services map[Role]Service

	DelegationTimeout   time.Duration
	MaxExpressionLength int
	MaxDepth            int
	HistorySize         int
}

// Load reads the configuration for role. SERVICE_NAME and PORT only apply
// when a single service is run; in RoleAll mode peers default to localhost.
func Load(role Role) (*Config, error) {
	cfg := &Config{
		Role:     role,
		Hostname: getEnv("HOSTNAME", hostname()),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Services: make(map[Role]Service, len(defaults)),
	}

	host := func(r Role) string { return defaults[r].name }
	if role == RoleAll {
		host = func(Role) string { return "localhost" }
	}
	for r, d := range defaults {
		cfg.Services[r] = Service{
			Name: d.name,
			Port: d.port,
			URL:  strings.TrimRight(getEnv(d.env, fmt.Sprintf("http://%s:%d", host(r), d.port)), "/"),
		}
	}

	if role != RoleAll {
		svc, ok := cfg.Services[role]
		if !ok {
			return nil, fmt.Errorf("config: unknown service role %q", role)
		}
		svc.Name = getEnv("SERVICE_NAME", svc.Name)
		port, err := getEnvInt("PORT", svc.Port)
		if err != nil {
			return nil, err
		}
		svc.Port = port
		cfg.Services[role] = svc
	}

	timeoutMS, err := getEnvInt("DELEGATION_TIMEOUT_MS", 30000)
	if err != nil {
		return nil, err
	}
	cfg.DelegationTimeout = time.Duration(timeoutMS) * time.Millisecond

	if cfg.MaxExpressionLength, err = getEnvInt("MAX_EXPRESSION_LENGTH", 1000); err != nil {
		return nil, err
	}
	if cfg.MaxDepth, err = getEnvInt("MAX_EXPRESSION_DEPTH", expr.DefaultMaxDepth); err != nil {
		return nil, err
	}
	if cfg.HistorySize, err = getEnvInt("HISTORY_SIZE", 100); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Routes returns the operator to URL table for the routing layer.
func (c *Config) Routes() map[expr.Operator]string {
	routes := make(map[expr.Operator]string, len(expr.Operators))
	for r, svc := range c.Services {
		if op, ok := r.Operator(); ok {
			routes[op] = svc.URL
		}
	}
	return routes
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %d", key, v)
	}
	return v, nil
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
