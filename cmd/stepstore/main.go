// Command stepstore manages owner-keyed tables from the command line and
// serves them over HTTP.
//
//	stepstore [-config path] [-v] <command> [flags]
//
// Commands: schema, save, query, delete, serve.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"stepstore/internal/config"
	"stepstore/internal/metrics"
	"stepstore/internal/metrics/datadog"
	"stepstore/internal/metrics/prompush"

	// Register every dialect; the config picks one.
	_ "stepstore/internal/storage/all"
)

// errUsage marks errors already reported with usage text.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "stepstore: %v\n", err)
		}
		os.Exit(1)
	}
}

// env carries the process streams and effective config into commands.
type env struct {
	cfg    config.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("stepstore", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "config JSON path (defaults plus STEPSTORE_* env when empty)")
	verbose := fs.Bool("v", false, "enable verbose logs")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: stepstore [-config path] [-v] <schema|save|query|delete|serve> [flags]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *verbose {
		log.SetOutput(stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}
	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "stepstore: unknown command %q\n", fs.Arg(0))
		fs.Usage()
		return errUsage
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("configuration is invalid")
	}

	flush := setupMetrics(cfg.Metrics)
	defer flush()

	return cmd(ctx, env{cfg: cfg, stdin: stdin, stdout: stdout, stderr: stderr}, fs.Args()[1:])
}

// setupMetrics installs the configured backend and returns the flush to run
// on exit. A backend that fails to initialize leaves metrics disabled.
func setupMetrics(m config.Metrics) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch m.Backend {
	case "prometheus":
		b, err = prompush.NewBackend(m.Job, m.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       m.DatadogAddr,
			Namespace:  "stepstore.",
			GlobalTags: []string{"job:" + m.Job},
		})
	default:
		log.Printf("metrics: disabled (backend=%q)", m.Backend)
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", m.Backend, err)
		return func() {}
	}
	log.Printf("metrics: backend=%s job=%s", m.Backend, m.Job)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}
