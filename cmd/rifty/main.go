package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// errUsage marks command line mistakes; run exits with status 2 for them.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses global flags and dispatches to a subcommand.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rifty", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config.toml (default ~/.rifty/config.toml)")
	dbPath := fs.String("db", "", "Override the database path")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.BoolVar(debug, "d", false, "Enable debug logging (shorthand for -debug)")
	fs.Usage = func() { printUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		printUsage(stderr)
		return 2
	}

	cfg, err := loadConfig(*configPath, *dbPath, *debug)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	logger := newLogger(cfg.App, stderr)

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", fs.Arg(0))
		printUsage(stderr)
		return 2
	}

	env := &cmdEnv{cfg: cfg, logger: logger, stdout: stdout, stderr: stderr}
	if err := cmd.run(env, fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Usage: rifty %s %s\n", fs.Arg(0), cmd.usage)
			return 2
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Rifty - card collection manager")
	fmt.Fprintln(w, "===============================")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: rifty [-config path] [-db path] [-debug] <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-8s - %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  rifty bulk -set OGN 1 5 12 7a")
	fmt.Fprintln(w, "  rifty list -rarity Rare -sort cost -desc")
	fmt.Fprintln(w, "  rifty remove -set OGN -number 7 -alt")
	fmt.Fprintln(w, "  rifty serve")
	fmt.Fprintln(w)
}
