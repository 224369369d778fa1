package options

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/squadron-dev/options/internal/scan"
)

// Parser is a concrete parser synthesized from the merged option registry
// of one target's type. It can scan several argument lists; repeat-check
// state is reset on every Parse call.
type Parser struct {
	target any
	tval   reflect.Value
	cfg    settings

	scanner  *scan.Scanner
	sections []*helpSection

	useCounts map[*Option]int
}

// rendered is one parser option: a descriptor together with the attribute
// it targets and the subset of its aliases that survived suppression.
type rendered struct {
	opt     *Option
	attr    string
	aliases []string
}

// MakeParser synthesizes a parser for target's type. The same keyword
// settings as Parse apply. Exposed so callers can scan several argument
// lists with one parser or render help without re-merging the registry.
func MakeParser(target any, apply ...Setting) (*Parser, error) {
	tval, err := targetValue(target)
	if err != nil {
		return nil, err
	}

	parser := &Parser{
		target: target,
		tval:   tval,
		cfg:    newSettings(apply),
	}

	if err := parser.build(registryFor(tval.Type())); err != nil {
		return nil, err
	}

	return parser, nil
}

// build renders the merged registry view into scan specifications and help
// sections: deduplicate shared descriptors, drop suppressed aliases,
// bucket by group, and order everything by (sort key, creation order).
func (p *Parser) build(view *classRecord) error {
	items := view.items()

	// The option map resolves, for every surviving name, which descriptor
	// owns it. An alias suppressed for this type must not be rendered even
	// though the descriptor object is shared with a base type.
	optmap := make(map[string]*Option, len(items))
	for _, item := range items {
		if !item.suppressed() {
			optmap[item.name] = item.opt
		}
	}

	buckets := map[*Group][]*rendered{}
	seen := map[*Option]bool{}

	for _, item := range items {
		if item.suppressed() || seen[item.opt] {
			continue
		}
		seen[item.opt] = true

		var aliases []string
		for _, name := range item.opt.names {
			if optmap[name] == item.opt {
				aliases = append(aliases, name)
			}
		}
		if len(aliases) == 0 {
			continue
		}

		buckets[item.opt.group] = append(buckets[item.opt.group], &rendered{
			opt:     item.opt,
			attr:    item.attr,
			aliases: aliases,
		})
	}

	for _, bucket := range buckets {
		sort.Slice(bucket, func(i, j int) bool {
			if bucket[i].opt.sortKey != bucket[j].opt.sortKey {
				return bucket[i].opt.sortKey < bucket[j].opt.sortKey
			}

			return bucket[i].opt.seq < bucket[j].opt.seq
		})
	}

	var groups []*Group
	for group := range buckets {
		if group != nil {
			groups = append(groups, group)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].SortKey != groups[j].SortKey {
			return groups[i].SortKey < groups[j].SortKey
		}

		return groups[i].seq < groups[j].seq
	})

	p.scanner = scan.New(p.cfg.prog, p.cfg.interspersed)

	// Ungrouped options render directly on the parser, ahead of any group
	// heading; the auto-added help option comes first among them.
	top := &helpSection{}
	p.sections = append(p.sections, top)

	if p.cfg.addHelp {
		if err := p.addHelpOption(top, optmap); err != nil {
			return err
		}
	}

	if err := p.addAll(top, buckets[nil]); err != nil {
		return err
	}

	for _, group := range groups {
		section := &helpSection{group: group}
		p.sections = append(p.sections, section)

		if err := p.addAll(section, buckets[group]); err != nil {
			return err
		}
	}

	return nil
}

func (p *Parser) addAll(section *helpSection, opts []*rendered) error {
	for _, ropt := range opts {
		if err := p.addOption(section, ropt); err != nil {
			return err
		}
	}

	return nil
}

// addOption wires one rendered option into the scanner and its section.
func (p *Parser) addOption(section *helpSection, ropt *rendered) error {
	spec := &scan.Spec{
		Aliases:  ropt.aliases,
		TakesArg: ropt.opt.TakesArg(),
		Metavar:  ropt.opt.metavar,
		Help:     ropt.opt.help,
	}

	opt, attr := ropt.opt, ropt.attr

	if opt.kind == kindHandler {
		spec.Handle = func(alias, raw string, rest *[]string) error {
			if err := p.checkRepeat(opt, alias); err != nil {
				return err
			}

			val, err := opt.convert(alias, raw)
			if err != nil {
				return err
			}

			if err := opt.fn(p.target, p, alias, val, rest); err != nil {
				return wrapInvocation(err)
			}

			return nil
		}
	} else {
		spec.Apply = func(alias, raw string) error {
			return opt.apply(p, attr, alias, raw)
		}
	}

	if err := p.scanner.Add(spec); err != nil {
		return &ConfigurationError{Message: err.Error()}
	}

	section.lines = append(section.lines, helpLine{
		aliases: ropt.aliases,
		metavar: metavarFor(ropt.opt),
		text:    ropt.opt.help,
	})

	return nil
}

// addHelpOption injects the -h/--help flag, skipping aliases the registry
// already claims.
func (p *Parser) addHelpOption(section *helpSection, optmap map[string]*Option) error {
	var aliases []string
	for _, alias := range []string{"-h", "--help"} {
		if _, taken := optmap[alias]; !taken {
			aliases = append(aliases, alias)
		}
	}
	if len(aliases) == 0 {
		return nil
	}

	spec := &scan.Spec{
		Aliases: aliases,
		Help:    "show this help message",
		Apply: func(string, string) error {
			fmt.Fprintln(p.cfg.helpOut, p.Help())

			return nil
		},
	}

	if err := p.scanner.Add(spec); err != nil {
		return &ConfigurationError{Message: err.Error()}
	}

	section.lines = append(section.lines, helpLine{
		aliases: aliases,
		text:    "show this help message",
	})

	return nil
}

// Parse scans args against the synthesized option set and returns the
// leftover non-option arguments. Descriptor callbacks mutate the target as
// a side effect; a failure aborts the scan without rolling back mutations
// already performed.
func (p *Parser) Parse(args []string) ([]string, error) {
	p.useCounts = map[*Option]int{}

	rest, err := p.scanner.Parse(args)
	if err != nil {
		return nil, p.translate(err)
	}

	return rest, nil
}

// checkRepeat enforces single use of non-repeatable options within one
// Parse call.
func (p *Parser) checkRepeat(opt *Option, name string) error {
	if opt.repeatable {
		return nil
	}

	p.useCounts[opt]++
	if p.useCounts[opt] > 1 {
		return newInvocationErrorf("%s can only be used once", name)
	}

	return nil
}

// translate maps scanning-primitive failures onto the error taxonomy:
// typed errors pass through, anything else becomes an InvocationError with
// the program-name prefix stripped.
func (p *Parser) translate(err error) error {
	var inv *InvocationError
	if errors.As(err, &inv) {
		return inv
	}

	var exit *ExitError
	if errors.As(err, &exit) {
		return exit
	}

	if errors.Is(err, pflag.ErrHelp) {
		return newInvocationErrorf("unknown option: --help")
	}

	msg := err.Error()
	if p.cfg.prog != "" {
		msg = strings.TrimSpace(strings.TrimPrefix(msg, p.cfg.prog+":"))
	}

	return &InvocationError{Message: msg}
}

//
// Target field mutation ------------------------------------------------- //
//

func (p *Parser) field(attr string) reflect.Value {
	return p.tval.FieldByName(attr)
}

// setField overwrites the attribute with val.
func (p *Parser) setField(attr, name string, val any) error {
	field := p.field(attr)

	rval := reflect.ValueOf(val)
	if !rval.IsValid() {
		field.Set(reflect.Zero(field.Type()))

		return nil
	}

	if !assignable(rval.Type(), field.Type()) {
		return newInvocationErrorf("%s: cannot assign %T to field %s", name, val, attr)
	}

	if rval.Type().AssignableTo(field.Type()) {
		field.Set(rval)
	} else {
		field.Set(rval.Convert(field.Type()))
	}

	return nil
}

// addToField accumulates val into the attribute: numeric addition, string
// or slice concatenation. No initial value is established by the
// framework; accumulation starts from the field's current value.
func (p *Parser) addToField(attr, name string, val any) error {
	field := p.field(attr)
	rval := reflect.ValueOf(val)

	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !rval.IsValid() || !rval.Type().ConvertibleTo(field.Type()) {
			break
		}
		field.SetInt(field.Int() + rval.Convert(field.Type()).Int())

		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if !rval.IsValid() || !rval.Type().ConvertibleTo(field.Type()) {
			break
		}
		field.SetUint(field.Uint() + rval.Convert(field.Type()).Uint())

		return nil

	case reflect.Float32, reflect.Float64:
		if !rval.IsValid() || !rval.Type().ConvertibleTo(field.Type()) {
			break
		}
		field.SetFloat(field.Float() + rval.Convert(field.Type()).Float())

		return nil

	case reflect.String:
		if !rval.IsValid() || rval.Kind() != reflect.String {
			break
		}
		field.SetString(field.String() + rval.String())

		return nil

	case reflect.Slice:
		if !rval.IsValid() || rval.Kind() != reflect.Slice ||
			!rval.Type().AssignableTo(field.Type()) {
			break
		}
		field.Set(reflect.AppendSlice(field, rval))

		return nil
	}

	return newInvocationErrorf("%s: cannot add %T to field %s", name, val, attr)
}

// appendToField appends val onto the slice stored in the attribute.
func (p *Parser) appendToField(attr, name string, val any) error {
	field := p.field(attr)
	if field.Kind() != reflect.Slice {
		return newInvocationErrorf("%s: field %s is not a slice", name, attr)
	}

	elem := field.Type().Elem()

	rval := reflect.ValueOf(val)
	if !rval.IsValid() {
		rval = reflect.Zero(elem)
	}

	if !assignable(rval.Type(), elem) {
		return newInvocationErrorf("%s: cannot append %T to field %s", name, val, attr)
	}

	if !rval.Type().AssignableTo(elem) {
		rval = rval.Convert(elem)
	}

	field.Set(reflect.Append(field, rval))

	return nil
}

func metavarFor(opt *Option) string {
	if opt.TakesArg() {
		return opt.metavar
	}

	return ""
}
