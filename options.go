// Package options provides a declarative way to describe command-line
// options once, attached to the attributes of a target struct type, and to
// get consistent parsing, validation, grouping and help formatting for
// free.
//
// Options are declared against a type with Attributes, Handlers and
// RejectInheritance. Embedded struct types act as base classes: their
// declarations are inherited, can be overridden by the embedding type, and
// can be suppressed by name or wholesale. At parse time the merged
// declarations for the target's type are compiled into a parser, backed by
// spf13/pflag for the actual argument scanning, and descriptor callbacks
// mutate the target's fields as options are matched:
//
//	type Server struct {
//		DBURL   string
//		Verbose bool
//	}
//
//	func init() {
//		options.Attributes(&Server{}, options.Decls{
//			"DBURL": {options.Set("--db",
//				options.Type(options.String), options.Metavar("URL"),
//				options.Describe("Database URL"))},
//			"Verbose": {options.Set("--verbose",
//				options.Alias("-v"), options.Value(true),
//				options.Describe("Verbose output"))},
//		})
//	}
//
//	srv := &Server{}
//	rest, err := options.Parse(srv, os.Args[1:], options.Prog("server"))
//
// Misuse of the declarative API itself (bad option names, conflicting
// value/type settings, declarations against unknown fields) panics with a
// *ConfigurationError at declaration time. Problems with the actual
// arguments are returned from Parse as *InvocationError values.
package options

import (
	"io"
	"os"
)

// settings collects the keyword configuration recognized by Parse, Help,
// MakeParser and Command.
type settings struct {
	usage        string
	prog         string
	description  string
	interspersed bool
	addHelp      bool
	helpOut      io.Writer
}

// Setting configures a parser under construction.
type Setting func(s *settings)

func newSettings(apply []Setting) settings {
	cfg := settings{helpOut: os.Stdout}
	for _, setting := range apply {
		setting(&cfg)
	}

	return cfg
}

// Usage sets the usage text displayed on the first line of help output.
// Empty by default, in which case no usage line is printed.
func Usage(text string) Setting {
	return func(s *settings) { s.usage = text }
}

// Prog sets the program name prefixed to the usage line and stripped from
// scanning-primitive error messages.
func Prog(name string) Setting {
	return func(s *settings) { s.prog = name }
}

// Description sets explanatory text printed between the usage line and the
// option listings.
func Description(text string) Setting {
	return func(s *settings) { s.description = text }
}

// InterspersedArgs allows options to appear after positional arguments.
// Disabled by default: scanning stops treating tokens as options once the
// first non-option token is seen.
func InterspersedArgs(ok bool) Setting {
	return func(s *settings) { s.interspersed = ok }
}

// WithHelp adds a -h/--help option that prints the rendered help text.
// Disabled by default.
func WithHelp(ok bool) Setting {
	return func(s *settings) { s.addHelp = ok }
}

// HelpOutput sets the writer the auto-added help option prints to. Default
// os.Stdout.
func HelpOutput(w io.Writer) Setting {
	return func(s *settings) { s.helpOut = w }
}

// Parse scans args into target, which must be a pointer to a struct whose
// type has options registered, and returns the non-option arguments.
// Matched options mutate the target's fields as a side effect; on error,
// mutations performed before the failing option are kept.
//
// Any parsing problem (unknown option, bad value, repeat violation,
// handler failure) is returned as an *InvocationError, except an
// *ExitError returned by a handler, which passes through unchanged.
func Parse(target any, args []string, apply ...Setting) ([]string, error) {
	parser, err := MakeParser(target, apply...)
	if err != nil {
		return nil, err
	}

	return parser.Parse(args)
}

// Help returns the formatted, whitespace-trimmed help text for the options
// registered for target's type: the usage line, then grouped option
// listings ordered by sort key and creation order.
func Help(target any, apply ...Setting) (string, error) {
	parser, err := MakeParser(target, apply...)
	if err != nil {
		return "", err
	}

	return parser.Help(), nil
}
