// A small file-serving command showing the declarative options API:
// attribute-bound options, inherited declarations through embedding,
// grouped help output and a handler-backed --version flag.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/squadron-dev/options"
)

const version = "1.4.2"

// Common carries the options every subcommand of the tool shares.
type Common struct {
	Verbose bool
	Config  string
}

// Serve is the file server command. Embedding Common inherits its
// declarations, so --verbose and --config work here too.
type Serve struct {
	Common

	Addr    string
	Port    int
	Root    string
	Headers []string
	Level   int
}

var serving = options.NewGroup("Serving", "Where and what to serve.", 1)

func init() {
	options.Attributes(&Common{}, options.Decls{
		"Verbose": {options.Set("--verbose", options.Alias("-v"),
			options.Value(true),
			options.Describe("Enable verbose output"))},
		"Config": {options.Set("--config", options.Alias("-c"),
			options.Type(options.String), options.Metavar("FILE"),
			options.Describe("Configuration file to load"))},
	})

	options.Attributes(&Serve{}, options.Decls{
		"Addr": {options.Set("--addr", options.Type(options.String),
			options.InGroup(serving),
			options.Describe("Address to listen on"))},
		"Port": {options.Set("--port", options.Alias("-p"),
			options.Type(options.Int), options.Check("min=1,max=65535"),
			options.InGroup(serving),
			options.Describe("Port to listen on"))},
		"Root": {options.Set("--root", options.Type(options.String),
			options.Metavar("DIR"), options.InGroup(serving),
			options.Describe("Directory to serve files from"))},
		"Headers": {options.Append("--header", options.Alias("-H"),
			options.Type(options.String),
			options.Describe("Extra response header, may repeat"))},
		"Level": {options.Add("--more", options.Value(1),
			options.Repeatable(true),
			options.Describe("Increase logging detail, may repeat"))},
	})

	options.Handlers(&Serve{},
		options.Handler("--version", showVersion, options.Value(nil),
			options.Describe("Print the version and exit")))
}

func showVersion(_ any, _ *options.Parser, _ string, _ any, _ *[]string) error {
	fmt.Println(version)

	return &options.ExitError{Status: 0}
}

func main() {
	cmd := &Serve{Addr: "127.0.0.1", Port: 8080, Root: "."}

	rest, err := options.Parse(cmd, os.Args[1:],
		options.Prog("fileserve"),
		options.Usage("[options] [PREFIX...]"),
		options.Description("Serve local files over HTTP."),
		options.WithHelp(true))
	if err != nil {
		var exit *options.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Status)
		}

		fmt.Fprintln(os.Stderr, "fileserve:", err)
		os.Exit(2)
	}

	fmt.Printf("serving %s on %s:%d (verbosity %d, prefixes %v, headers %v)\n",
		cmd.Root, cmd.Addr, cmd.Port, cmd.Level, rest, cmd.Headers)
}
