// Package main is the entry point for the filekin command.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/filekin/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, extraExts := parseFlags()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: exactly one file argument required\n")
		flag.Usage()
		return 2
	}
	path := flag.Arg(0)

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	res, err := application.Find(ctx, path, extraExts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	for i, f := range res.Files {
		marker := " "
		if i == res.Index {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, f)
	}
	return 0
}

func parseFlags() (app.Options, []string) {
	var opts app.Options
	var pluginDir string
	var exts string
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&pluginDir, "plugins", "", "Directory of provider plugins")
	flag.StringVar(&pluginDir, "p", "", "Directory of provider plugins (shorthand)")
	flag.StringVar(&exts, "ext", "", "Comma-separated extension whitelist (e.g. .h,.hpp)")
	flag.DurationVar(&opts.Timeout, "timeout", 0, "Per-provider timeout (default 1s)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Filekin - related-file resolution for editor hosts\n\n")
		fmt.Fprintf(os.Stderr, "Usage: filekin [options] FILE\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  filekin src/Test.m              List files related to Test.m\n")
		fmt.Fprintf(os.Stderr, "  filekin -ext .h,.hpp src/a.cpp  Restrict matches to headers\n")
		fmt.Fprintf(os.Stderr, "  filekin -p ~/.filekin/plugins src/Test.m\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Filekin %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if pluginDir != "" {
		opts.PluginDirs = append(opts.PluginDirs, pluginDir)
	}

	var extraExts []string
	for _, e := range strings.Split(exts, ",") {
		if e = strings.TrimSpace(e); e != "" {
			extraExts = append(extraExts, e)
		}
	}

	return opts, extraExts
}
