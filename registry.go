package options

import (
	"reflect"
	"sync"
)

// regEntry associates an option name with the attribute it targets and the
// descriptor that handles it. A zero entry (nil opt) is the suppression
// sentinel: the name is explicitly not inherited and never rendered.
type regEntry struct {
	attr string
	opt  *Option
}

func (e regEntry) suppressed() bool { return e.opt == nil }

// classRecord holds the option declarations made directly against one
// target type, plus that type's inheritance policy. Merged views are built
// from records lazily, one per type, and cached for the life of the
// process.
type classRecord struct {
	names     []string
	entries   map[string]regEntry
	rejectAll bool
}

func newClassRecord() *classRecord {
	return &classRecord{entries: map[string]regEntry{}}
}

// set is the low-level mutation used both by registration and by
// suppression. First insertion of a name fixes its position in the
// record's iteration order.
func (r *classRecord) set(name string, entry regEntry) {
	if _, known := r.entries[name]; !known {
		r.names = append(r.names, name)
	}
	r.entries[name] = entry
}

// items returns the record's entries as an ordered sequence of
// (name, entry) pairs.
func (r *classRecord) items() []namedEntry {
	out := make([]namedEntry, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, namedEntry{name: name, regEntry: r.entries[name]})
	}

	return out
}

type namedEntry struct {
	name string
	regEntry
}

// The process-wide registry state: declarations per type, and memoized
// merged views. Go maps are not safe for concurrent mutation, so unlike
// the caller-serialized original, every access path takes the package
// lock.
var (
	regMu   sync.Mutex
	records = map[reflect.Type]*classRecord{}
	mergedL = map[reflect.Type]*classRecord{}
)

// recordFor returns (creating if needed) the declaration record for typ.
// Callers hold regMu.
func recordFor(typ reflect.Type) *classRecord {
	rec, ok := records[typ]
	if !ok {
		rec = newClassRecord()
		records[typ] = rec
	}

	return rec
}

// registryFor returns the merged registry view for typ, materializing and
// caching it on first access. The merge copies entries from the registries
// of embedded struct types first (most general first, so the embedding
// type's own declarations overwrite), honoring blanket rejection and
// per-name suppression.
func registryFor(typ reflect.Type) *classRecord {
	regMu.Lock()
	defer regMu.Unlock()

	return mergedLocked(typ)
}

func mergedLocked(typ reflect.Type) *classRecord {
	if view, ok := mergedL[typ]; ok {
		return view
	}

	rec := recordFor(typ)
	view := newClassRecord()

	// Embedded struct fields act as base classes. Later-processed entries
	// overwrite, and the first embedded base has priority among siblings,
	// so bases merge in reverse declaration order.
	var inherited []string

	for i := typ.NumField() - 1; i >= 0; i-- {
		field := typ.Field(i)
		if !field.Anonymous {
			continue
		}

		base := field.Type
		if base.Kind() == reflect.Ptr {
			base = base.Elem()
		}
		if base.Kind() != reflect.Struct {
			continue
		}

		for _, item := range mergedLocked(base).items() {
			if _, known := view.entries[item.name]; !known {
				inherited = append(inherited, item.name)
			}
			view.set(item.name, item.regEntry)
		}
	}

	if rec.rejectAll {
		for _, name := range inherited {
			view.set(name, regEntry{})
		}
	}

	for _, item := range rec.items() {
		view.set(item.name, item.regEntry)
	}

	mergedL[typ] = view

	return view
}

// Decls maps attribute (struct field) names to the option descriptors
// declared for them. Several descriptors may serve one attribute, and one
// descriptor may be declared for several attributes or types.
type Decls map[string][]*Option

// Attributes declares options for attributes of the target's type:
//
//	options.Attributes(&Server{}, options.Decls{
//		"DBURL": {options.Set("--db",
//			options.Type(options.String), options.Metavar("URL"))},
//		"User": {options.Set("--username", options.Type(options.String))},
//	})
//
// The target must be a pointer to a struct and every named attribute must
// be an exported field of it (possibly promoted from an embedded struct);
// Attributes panics with a *ConfigurationError otherwise. Declarations
// made after a parser was already synthesized for the exact same type
// still apply to that type, but not to already-materialized subtypes.
func Attributes(target any, decls Decls) {
	typ := mustStructType(target)

	regMu.Lock()
	defer regMu.Unlock()

	rec := recordFor(typ)
	view := mergedL[typ]

	for attr, opts := range decls {
		field, ok := typ.FieldByName(attr)
		if !ok || field.PkgPath != "" {
			panic(newConfErrorf("%s has no settable field %q", typ, attr))
		}

		for _, opt := range opts {
			if opt == nil {
				panic(newConfErrorf("nil option declared for %s.%s", typ, attr))
			}
			if opt.kind == kindAppend && field.Type.Kind() != reflect.Slice {
				panic(newConfErrorf(
					"Append option %s requires a slice field, %s.%s is %s",
					opt.names[0], typ, attr, field.Type))
			}

			opt.register(rec, attr)
			if view != nil {
				opt.register(view, attr)
			}
		}
	}
}

// Handlers attaches Handler options to the target's type. Handler options
// are bound to no attribute; their functions receive the parser state
// directly.
func Handlers(target any, handlers ...*Option) {
	typ := mustStructType(target)

	regMu.Lock()
	defer regMu.Unlock()

	rec := recordFor(typ)
	view := mergedL[typ]

	for _, opt := range handlers {
		if opt == nil || opt.kind != kindHandler {
			panic(newConfErrorf("Handlers accepts Handler options only"))
		}

		opt.register(rec, "")
		if view != nil {
			opt.register(view, "")
		}
	}
}

// RejectInheritance declares that the target's type does not inherit the
// named options from its embedded bases. With no names, all inherited
// options are rejected and the type keeps only its own declarations.
// Blanket rejection takes effect when the type's registry is materialized,
// so it must be declared before the first Parse or Help call against the
// type.
func RejectInheritance(target any, names ...string) {
	typ := mustStructType(target)

	regMu.Lock()
	defer regMu.Unlock()

	rec := recordFor(typ)
	view := mergedL[typ]

	if len(names) == 0 {
		rec.rejectAll = true

		return
	}

	for _, name := range names {
		rec.set(name, regEntry{})
		if view != nil {
			view.set(name, regEntry{})
		}
	}
}

func mustStructType(target any) reflect.Type {
	if target == nil {
		panic(newConfErrorf("%s", ErrNilTarget))
	}

	typ := reflect.TypeOf(target)
	if typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		panic(newConfErrorf("%s, got %T", ErrNotPointerToStruct, target))
	}

	return typ.Elem()
}

// targetValue validates a parse/help target and returns its addressable
// struct value.
func targetValue(target any) (reflect.Value, error) {
	if target == nil {
		return reflect.Value{}, ErrNilTarget
	}

	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.Type().Elem().Kind() != reflect.Struct {
		return reflect.Value{}, ErrNotPointerToStruct
	}
	if val.IsNil() {
		return reflect.Value{}, ErrNilTarget
	}

	return val.Elem(), nil
}
