// Command calc parses expressions locally or sends them to a gateway.
//
//	calc parse [-repr] "2 + 3 * 4"
//	calc eval [-gateway URL] "2 + 3 * 4"
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/repr"
	jsoniter "github.com/json-iterator/go"
	"github.com/mattn/go-isatty"

	"github.com/tinmancoding/calculator-as-a-service/internal/orchestrator"
	"github.com/tinmancoding/calculator-as-a-service/internal/transport"
	"github.com/tinmancoding/calculator-as-a-service/pkg/expr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	version := flag.Bool("version", false, "print version and exit")
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Println(transport.Version)
		return
	}
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd, args := flag.Arg(0), flag.Args()[1:]; cmd {
	case "parse":
		err = parseCmd(args, os.Stdout)
	case "eval":
		err = evalCmd(args, os.Stdout)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "calc:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: calc [-version] parse [-repr] EXPR | eval [-gateway URL] [-timeout D] EXPR")
}

// pretty reports whether output goes to a terminal.
func pretty(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if pretty(w) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func parseCmd(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	useRepr := fs.Bool("repr", false, "print the Go representation of the AST")
	depth := fs.Int("max-depth", expr.DefaultMaxDepth, "maximum nesting depth")
	if err := fs.Parse(args); err != nil {
		return err
	}
	input := strings.Join(fs.Args(), " ")

	ast, err := expr.Parser{MaxDepth: *depth}.Parse(input)
	if err != nil {
		return err
	}
	if *useRepr {
		repr.New(w, repr.Indent("  "), repr.OmitEmpty(true)).Println(ast)
		return nil
	}
	return encode(w, ast)
}

func evalCmd(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	gateway := fs.String("gateway", envOr("GATEWAY_SERVICE_URL", "http://localhost:8080"), "gateway base URL")
	timeout := fs.Duration("timeout", 30*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	input := strings.Join(fs.Args(), " ")

	client := transport.NewClient(*timeout)
	status, body, err := client.PostJSON(context.Background(),
		strings.TrimRight(*gateway, "/")+"/calculate",
		orchestrator.CalculateRequest{Expression: input})
	if err != nil {
		return err
	}
	if status != 200 {
		var resp transport.ErrorResponse
		if json.Unmarshal(body, &resp) == nil && resp.Error != "" {
			return fmt.Errorf("%s (status %d)", resp.Error, status)
		}
		return fmt.Errorf("gateway returned status %d", status)
	}

	var resp orchestrator.CalculateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return err
	}
	if !pretty(w) {
		return encode(w, resp)
	}
	fmt.Fprintf(w, "%s = %v\n", resp.Expression, resp.Result)
	for _, e := range resp.EventLog {
		fmt.Fprintf(w, "  %s  %-24s %-4s %v (%dms)\n", e.Timestamp, e.Service, e.Operation, e.Result, e.Duration)
	}
	fmt.Fprintf(w, "%d services, %dms\n", resp.Metadata.TotalServices, resp.Metadata.TotalDuration)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
