package options

import (
	"reflect"
	"strings"
	"sync/atomic"
)

// optionSeq numbers descriptors and groups in creation order, which breaks
// ties between equal sort keys when rendering.
var optionSeq atomic.Uint64

func nextSeq() uint64 { return optionSeq.Add(1) }

type optionKind uint8

const (
	kindSet optionKind = iota
	kindAdd
	kindAppend
	kindHandler
)

func (k optionKind) String() string {
	return [...]string{"Set", "Add", "Append", "Handler"}[k]
}

// HandlerFunc is the signature of a Handler option's function. It receives
// the target object, the parser performing the scan, the option name as it
// appeared on the command line, the converted (or fixed) value, and the
// arguments that remain unparsed. The function may rewrite *rest to
// influence how scanning continues.
type HandlerFunc func(target any, p *Parser, name string, value any, rest *[]string) error

// Option is the immutable metadata describing one logical command-line
// switch: its aliases, whether it takes an argument, how the argument is
// converted, and how the result is applied to the target object.
//
// Options are built with the Set, Add, Append and Handler constructors and
// are immutable once constructed. A single Option may be registered under
// several names (aliases), across several attributes, or for several
// target types.
type Option struct {
	kind       optionKind
	names      []string
	repeatable bool
	metavar    string
	help       string
	group      *Group
	sortKey    int
	seq        uint64

	value    any
	hasValue bool
	conv     Converter
	check    string

	fn HandlerFunc
}

// OptSetting configures an Option under construction.
type OptSetting func(o *Option)

// Alias adds extra names for the option. Each alias must begin with one or
// two dashes, like the primary name.
func Alias(names ...string) OptSetting {
	return func(o *Option) { o.names = append(o.names, names...) }
}

// Value makes the option a flag: it takes no argument and assigns (or
// passes) the fixed value v when present. Mutually exclusive with Type.
func Value(v any) OptSetting {
	return func(o *Option) { o.value, o.hasValue = v, true }
}

// Type makes the option take one argument, converted with c. Mutually
// exclusive with Value.
func Type(c Converter) OptSetting {
	return func(o *Option) { o.conv = c }
}

// Metavar sets the placeholder displayed for the option's argument in help
// output. Only valid together with Type; defaults to the uppercased
// converter name.
func Metavar(name string) OptSetting {
	return func(o *Option) { o.metavar = name }
}

// Describe sets the option's help text.
func Describe(text string) OptSetting {
	return func(o *Option) { o.help = text }
}

// InGroup places the option under the given group heading in help output.
func InGroup(g *Group) OptSetting {
	return func(o *Option) { o.group = g }
}

// SortKey orders the option within its group (lower keys first; equal keys
// keep creation order).
func SortKey(key int) OptSetting {
	return func(o *Option) { o.sortKey = key }
}

// Repeatable overrides the variant's default repeatability.
func Repeatable(ok bool) OptSetting {
	return func(o *Option) { o.repeatable = ok }
}

// Check validates converted argument values with go-playground/validator
// tag syntax, e.g. Check("min=1,max=65535"). Violations surface as
// invocation errors at parse time.
func Check(constraint string) OptSetting {
	return func(o *Option) { o.check = constraint }
}

// Set returns an option that overwrites the target attribute with the
// converted argument or the fixed value. Not repeatable by default.
func Set(name string, settings ...OptSetting) *Option {
	return construct(kindSet, false, name, settings)
}

// Add returns an option that accumulates into the target attribute:
// numeric attributes are summed, strings and slices concatenated. The
// framework establishes no initial value; accumulation starts from the
// attribute's current value. Repeatable by default.
func Add(name string, settings ...OptSetting) *Option {
	return construct(kindAdd, true, name, settings)
}

// Append returns an option that appends the converted argument (or fixed
// value) onto the slice stored in the target attribute. Repeatable by
// default.
func Append(name string, settings ...OptSetting) *Option {
	return construct(kindAppend, true, name, settings)
}

// Handler returns an option that invokes fn when the option is seen on the
// command line. Not repeatable by default. Handler options are attached
// with Handlers, or through Attributes when the handler should be
// associated with an attribute name.
func Handler(name string, fn HandlerFunc, settings ...OptSetting) *Option {
	opt := construct(kindHandler, false, name, settings)
	if fn == nil {
		panic(newConfErrorf("%s option %s requires a function", opt.kind, name))
	}
	opt.fn = fn

	return opt
}

// construct applies settings and enforces the construction contract,
// panicking with a *ConfigurationError on misuse.
func construct(kind optionKind, repeatable bool, name string, settings []OptSetting) *Option {
	opt := &Option{
		kind:       kind,
		names:      []string{name},
		repeatable: repeatable,
		seq:        nextSeq(),
	}

	for _, setting := range settings {
		setting(opt)
	}

	for _, optname := range opt.names {
		if !strings.HasPrefix(optname, "-") || strings.HasPrefix(optname, "---") {
			panic(newConfErrorf(
				"invalid option name %q: option names must begin with '-' or '--'",
				optname))
		}
		if strings.TrimLeft(optname, "-") == "" {
			panic(newConfErrorf("invalid option name %q: missing name after dashes", optname))
		}
	}

	if opt.conv.given() == opt.hasValue {
		panic(newConfErrorf(
			"%s option %s must have a value or a type, not both or neither",
			opt.kind, opt.names[0]))
	}

	if !opt.conv.given() && opt.metavar != "" {
		panic(newConfErrorf(
			"metavar is meaningless for option %s, which takes no argument",
			opt.names[0]))
	}

	if opt.conv.given() && opt.metavar == "" {
		opt.metavar = strings.ToUpper(opt.conv.Name)
	}

	return opt
}

// Names returns the option's declared aliases, primary name first.
func (o *Option) Names() []string {
	names := make([]string, len(o.names))
	copy(names, o.names)

	return names
}

// TakesArg reports whether the option consumes one argument (true when a
// converter was configured, false for fixed-value flags).
func (o *Option) TakesArg() bool { return o.conv.given() }

// convert resolves the value carried by one appearance of the option: the
// fixed value for flags, or the converted (and checked) argument text.
// name is the alias actually used, for error messages.
func (o *Option) convert(name, raw string) (any, error) {
	if o.hasValue {
		return o.value, nil
	}

	val, err := o.conv.Parse(raw)
	if err != nil {
		return nil, newInvocationErrorf("%s: %q is not a valid %s", name, raw, o.metavar)
	}

	if o.check != "" {
		if err := checkValue(val, o.check); err != nil {
			return nil, newInvocationErrorf("%s: %q %s", name, raw, err.Error())
		}
	}

	return val, nil
}

// apply performs the option's effect on the target for one appearance.
// Handler options never reach this path; the parser suspends the scan for
// them instead.
func (o *Option) apply(p *Parser, attr, name, raw string) error {
	if err := p.checkRepeat(o, name); err != nil {
		return err
	}

	val, err := o.convert(name, raw)
	if err != nil {
		return err
	}

	switch o.kind {
	case kindSet:
		return p.setField(attr, name, val)
	case kindAdd:
		return p.addToField(attr, name, val)
	case kindAppend:
		return p.appendToField(attr, name, val)
	default:
		return newInvocationErrorf("%s: option cannot be applied to an attribute", name)
	}
}

// register inserts (attr, o) into the registry under every one of the
// option's names.
func (o *Option) register(rec *classRecord, attr string) {
	for _, name := range o.names {
		rec.set(name, regEntry{attr: attr, opt: o})
	}
}

// assignable reports whether a value of type vt can land in a field of
// type ft, directly or through conversion.
func assignable(vt, ft reflect.Type) bool {
	return vt.AssignableTo(ft) || vt.ConvertibleTo(ft)
}
