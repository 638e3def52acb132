// Package main is the shirushi CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/shirushi/internal/cli"
	"github.com/hyperjump/shirushi/internal/config"
	"github.com/hyperjump/shirushi/internal/runner"
	"github.com/hyperjump/shirushi/internal/watcher"
	"github.com/hyperjump/shirushi/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "shirushi.yaml"

// loadConfig loads config from path. When path is the default and no such
// file exists, built-in defaults rooted at the current directory are used, so
// the tool works in any repository without a config file. An explicitly given
// path must exist.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if !explicit && path == defaultConfigPath {
		if _, err := os.Stat(path); err != nil {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "run":
		runPass(false)
	case "check":
		runPass(true)
	case "status":
		runStatus()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("shirushi version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// passFlags holds the flag values shared by run, check, status, and watch.
type passFlags struct {
	cfg    *config.Config
	logger *zap.Logger
	format cli.OutputFormat
}

func parsePassFlags(name string, args []string) *passFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	root := fs.String("root", "", "scan root (overrides config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging (visited files, extracted tokens, etc.)")
	_ = fs.Parse(args)

	explicit := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	cfg, err := loadConfig(*configPath, explicit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *root != "" {
		cfg.Root = *root
	}
	debugMode := cfg.Debug || *debug

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return &passFlags{cfg: cfg, logger: logger, format: format}
}

func runPass(checkOnly bool) {
	name := "run"
	if checkOnly {
		name = "check"
	}
	pf := parsePassFlags(name, os.Args[2:])
	defer pf.logger.Sync()

	report, err := runner.New(pf.cfg, pf.logger).Run(context.Background(), checkOnly)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteReport(os.Stdout, report, pf.format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	// check is a CI gate: anything a real run would change is a failure.
	if checkOnly && !report.Clean() {
		os.Exit(1)
	}
}

func runStatus() {
	pf := parsePassFlags("status", os.Args[2:])
	defer pf.logger.Sync()

	report, err := runner.New(pf.cfg, pf.logger).Run(context.Background(), true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteStatus(os.Stdout, report, pf.format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runWatch() {
	pf := parsePassFlags("watch", os.Args[2:])
	defer pf.logger.Sync()

	r := runner.New(pf.cfg, pf.logger)
	pass := func() {
		report, err := r.Run(context.Background(), false)
		if err != nil {
			// Watch mode stays alive through integrity errors so a fix on
			// disk is picked up by the next pass.
			pf.logger.Error("pass failed", zap.Error(err))
			return
		}
		if err := cli.WriteReport(os.Stdout, report, pf.format); err != nil {
			pf.logger.Error("output failed", zap.Error(err))
		}
	}
	pass()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	watchOpts := []watcher.Option{
		watcher.WithDebounce(time.Duration(pf.cfg.Watch.DebounceMS) * time.Millisecond),
	}
	if pf.cfg.Debug {
		watchOpts = append(watchOpts, watcher.WithLogger(pf.logger))
	}
	w := watcher.New(pf.cfg.Root, pf.cfg.Extensions, pf.cfg.IgnoreDirs, pass, watchOpts...)
	if err := w.Start(watchCtx); err != nil {
		pf.logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer w.Stop()
	pf.logger.Info("watching for changes", zap.String("root", pf.cfg.Root))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	pf.logger.Info("Shutting down...")
}

func printUsage() {
	fmt.Println(`shirushi - stable identifiers for text documents

Usage:
  shirushi run [flags]      Stamp unmarked documents and reconcile the mapping
  shirushi check [flags]    Verify without writing; non-zero exit on any drift
  shirushi status [flags]   Show tracked/scanned/unmarked counts
  shirushi watch [flags]    Re-run the full pass whenever documents change
  shirushi version          Show version
  shirushi help             Show this help

Flags (run, check, status, watch):
  --config string    Config file path (default: shirushi.yaml; built-in defaults when absent)
  --root string      Scan root, overriding the config
  --output string    Output format: text or json (default: text)
  --debug            Enable debug logging (visited files, extracted tokens, etc.)

Examples:
  shirushi run
  shirushi run --root docs --output json
  shirushi check                # CI gate: fails when anything would change
  shirushi status
  shirushi watch --debug`)
}
