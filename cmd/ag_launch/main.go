// Command ag_launch runs a single operator agent, selected by operator
// symbol rather than role name.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tinmancoding/calculator-as-a-service/internal/app"
	"github.com/tinmancoding/calculator-as-a-service/internal/config"
	"github.com/tinmancoding/calculator-as-a-service/pkg/expr"
)

func main() {
	op := os.Getenv("OPERATOR")
	flag.StringVar(&op, "op", op, "operator to serve: + - * or /")
	flag.Parse()

	role, ok := config.RoleFor(expr.Operator(op))
	if !ok {
		log.Fatalf("Invalid OPERATOR value: %q", op)
	}
	cfg, err := config.Load(role)
	if err != nil {
		log.Fatal(err)
	}
	servers, err := app.Servers(cfg, nil)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.Run(ctx, servers); err != nil {
		log.Fatal(err)
	}
}
