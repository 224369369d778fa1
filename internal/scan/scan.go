// Package scan adapts the spf13/pflag scanning primitive to the option
// specifications produced by the registry layer. Every declared alias is
// registered as its own pflag flag wrapping a shared specification, so
// callbacks always know which alias the user typed, and a specification
// shared between aliases fires a single callback per appearance.
//
// Specifications with a Handle function suspend the scan when matched: the
// scanner computes the not-yet-parsed remainder of the argument list,
// hands it to the callback as a mutable slice, and resumes scanning on the
// (possibly rewritten) remainder.
package scan

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"
)

// Spec describes one command-line option to the scanner. Exactly one of
// Apply or Handle must be set.
type Spec struct {
	// Aliases are the declared option tokens, dashes included
	// ("-v", "--verbose").
	Aliases []string

	// TakesArg marks the option as consuming one argument. Without it the
	// option is a bare flag and callbacks receive an empty raw string.
	TakesArg bool

	// Metavar is the display name of the option's argument.
	Metavar string

	// Help is the option's usage string, used by pflag only; callers
	// render their own help.
	Help string

	// Apply is invoked for each appearance of the option. alias is the
	// token the user typed, raw the argument text.
	Apply func(alias, raw string) error

	// Handle, when set, suspends the scan at each appearance. rest points
	// at the arguments not yet scanned and may be rewritten in place.
	Handle func(alias, raw string, rest *[]string) error
}

// pause records a suspension point raised from inside a pflag parse.
type pause struct {
	spec  *Spec
	alias string
	raw   string
	count int // appearances of spec earlier in the same round
}

// errSuspended aborts the current pflag round; it never escapes Parse.
var errSuspended = errors.New("scan suspended")

// Scanner scans argument lists against a set of option specifications.
type Scanner struct {
	fs           *pflag.FlagSet
	interspersed bool

	specs   []*Spec
	byLong  map[string]*Spec
	byShort map[string]*Spec

	fired   map[*Spec]int
	pending *pause
	failure error
}

// New returns a scanner named prog. With interspersed disabled, option
// scanning stops at the first non-option token and everything from there
// on is returned as leftover arguments.
func New(prog string, interspersed bool) *Scanner {
	fs := pflag.NewFlagSet(prog, pflag.ContinueOnError)
	fs.SetInterspersed(interspersed)

	// Callers render their own errors and usage.
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	return &Scanner{
		fs:           fs,
		interspersed: interspersed,
		byLong:       map[string]*Spec{},
		byShort:      map[string]*Spec{},
		fired:        map[*Spec]int{},
	}
}

// Add registers a specification under all of its aliases.
func (s *Scanner) Add(spec *Spec) error {
	for _, alias := range spec.Aliases {
		name := strings.TrimLeft(alias, "-")

		if s.fs.Lookup(name) != nil {
			return fmt.Errorf("option %s conflicts with an already registered name %q", alias, name)
		}

		val := &aliasValue{scanner: s, spec: spec, alias: alias}

		if strings.HasPrefix(alias, "--") {
			s.fs.Var(val, name, spec.Help)
			s.byLong[name] = spec
		} else {
			if utf8.RuneCountInString(name) != 1 {
				return fmt.Errorf("short option %s must be a single character", alias)
			}
			s.fs.VarP(val, name, name, spec.Help)
			s.byShort[name] = spec
			s.byLong[name] = spec
		}

		if !spec.TakesArg {
			s.fs.Lookup(name).NoOptDefVal = "true"
		}
	}

	s.specs = append(s.specs, spec)

	return nil
}

// Parse scans args, invoking the matching callbacks in order, and returns
// the non-option arguments. A callback error aborts the scan immediately;
// callbacks already invoked keep their effects.
func (s *Scanner) Parse(args []string) ([]string, error) {
	var positionals []string

	round := args

	for {
		s.pending = nil
		s.failure = nil
		clear(s.fired)

		err := s.fs.Parse(round)
		positionals = append(positionals, s.fs.Args()...)

		if susp := s.pending; susp != nil {
			rest := append([]string(nil), s.resumeArgs(round, susp)...)
			if err := susp.spec.Handle(susp.alias, susp.raw, &rest); err != nil {
				return nil, err
			}

			round = rest

			continue
		}

		if err != nil {
			if s.failure != nil {
				return nil, s.failure
			}

			return nil, err
		}

		return positionals, nil
	}
}

// resumeArgs walks the current round of arguments up to the suspension
// point and returns what remains to be scanned after it. The walk mirrors
// pflag's consumption rules for the registered specifications: "--name",
// "--name=value", "-n value", "-nvalue" and shorthand clusters.
func (s *Scanner) resumeArgs(round []string, susp *pause) []string {
	seen := 0

	for i := 0; i < len(round); i++ {
		tok := round[i]

		if tok == "--" {
			break
		}

		if !strings.HasPrefix(tok, "-") || tok == "-" {
			if s.interspersed {
				continue
			}

			break
		}

		if strings.HasPrefix(tok, "--") {
			name := tok[2:]
			inline := false

			if eq := strings.IndexByte(name, '='); eq >= 0 {
				name, inline = name[:eq], true
			}

			spec := s.byLong[name]
			consumed := 0

			if spec != nil && spec.TakesArg && !inline {
				consumed = 1
			}

			if spec == susp.spec {
				if seen == susp.count {
					return round[i+1+consumed:]
				}
				seen++
			}

			i += consumed

			continue
		}

		// Shorthand cluster: "-v", "-vz", "-p8080".
		chars := tok[1:]
		consumed := 0

		for ci := 0; ci < len(chars); ci++ {
			spec := s.byShort[string(chars[ci])]
			if spec == nil {
				break
			}

			if spec == susp.spec && seen == susp.count {
				rest := round[i+1:]

				if spec.TakesArg {
					// Inline value ends the cluster; a separate value
					// token is consumed by the option itself.
					if ci == len(chars)-1 && len(rest) > 0 {
						rest = rest[1:]
					}

					return rest
				}

				// Shorts packed after the suspension point have not been
				// scanned yet and are re-issued as their own token.
				if trailing := chars[ci+1:]; trailing != "" {
					return append([]string{"-" + trailing}, rest...)
				}

				return rest
			}

			if spec == susp.spec {
				seen++
			}

			if spec.TakesArg {
				if ci == len(chars)-1 {
					consumed = 1
				}

				break
			}
		}

		i += consumed
	}

	return nil
}

// aliasValue is the pflag.Value registered for one alias of one Spec.
type aliasValue struct {
	scanner *Scanner
	spec    *Spec
	alias   string
}

func (v *aliasValue) String() string { return "" }

func (v *aliasValue) Type() string {
	if v.spec.TakesArg {
		return v.spec.Metavar
	}

	return ""
}

func (v *aliasValue) Set(raw string) error {
	s := v.scanner

	count := s.fired[v.spec]
	s.fired[v.spec] = count + 1

	if !v.spec.TakesArg {
		raw = ""
	}

	if v.spec.Handle != nil {
		s.pending = &pause{spec: v.spec, alias: v.alias, raw: raw, count: count}

		return errSuspended
	}

	if err := v.spec.Apply(v.alias, raw); err != nil {
		s.failure = err

		return err
	}

	return nil
}
